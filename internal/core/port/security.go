package port

// PasswordHasher hashes and verifies secrets using the configured algorithm.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password string, encoded string) (bool, error)
}

// PasswordPolicyValidator enforces password strength requirements before a
// secret is hashed.
type PasswordPolicyValidator interface {
	Validate(password string, userInputs ...string) error
}

// TokenGenerator produces opaque single-use tokens for activation and
// password reset mails.
type TokenGenerator interface {
	Generate() (string, error)
}
