package security

import (
	"fmt"
	"unicode"

	zxcvbn "github.com/nbutton23/zxcvbn-go"

	"github.com/eddy-neller/shop-api-sub001/internal/core/port"
)

// PasswordValidationError represents a single password policy violation.
type PasswordValidationError struct {
	Code    string
	Message string
}

// Error implements error for PasswordValidationError.
func (e *PasswordValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// PasswordPolicy applies length, character-class, and strength rules before
// a password is hashed. User inputs (email, username) lower the zxcvbn
// score when the password resembles them.
type PasswordPolicy struct {
	minLength int
	minScore  int
}

// NewPasswordPolicy constructs a policy. minScore is clamped to the zxcvbn
// 0..4 range.
func NewPasswordPolicy(minLength, minScore int) *PasswordPolicy {
	if minLength <= 0 {
		minLength = 8
	}
	if minScore > 4 {
		minScore = 4
	}
	return &PasswordPolicy{minLength: minLength, minScore: minScore}
}

// Validate returns the first policy violation, or nil.
func (p *PasswordPolicy) Validate(password string, userInputs ...string) error {
	if len([]rune(password)) < p.minLength {
		return &PasswordValidationError{
			Code:    "min_length",
			Message: fmt.Sprintf("password must be at least %d characters long", p.minLength),
		}
	}

	if !containsLetter(password) {
		return &PasswordValidationError{
			Code:    "letter",
			Message: "password must include at least one letter",
		}
	}
	if !containsDigit(password) {
		return &PasswordValidationError{
			Code:    "digit",
			Message: "password must include at least one digit",
		}
	}

	if p.minScore > 0 {
		result := zxcvbn.PasswordStrength(password, userInputs)
		if result.Score < p.minScore {
			return &PasswordValidationError{
				Code:    "weak_password",
				Message: "password is too weak; choose a more complex value",
			}
		}
	}

	return nil
}

func containsLetter(password string) bool {
	for _, r := range password {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func containsDigit(password string) bool {
	for _, r := range password {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

var _ port.PasswordPolicyValidator = (*PasswordPolicy)(nil)
