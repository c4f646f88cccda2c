package usecase

import "errors"

var (
	// ErrEmailAlreadyUsed indicates another account owns the email address.
	ErrEmailAlreadyUsed = errors.New("email address already in use")
	// ErrInvalidCredentials indicates the password did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountNotActive indicates the account has not completed activation.
	ErrAccountNotActive = errors.New("account is not active")
	// ErrAccountAlreadyActive indicates activation was requested for an active account.
	ErrAccountAlreadyActive = errors.New("account is already active")
	// ErrPasswordPolicyViolation indicates the password does not satisfy complexity requirements.
	ErrPasswordPolicyViolation = errors.New("password does not meet complexity requirements")
)
