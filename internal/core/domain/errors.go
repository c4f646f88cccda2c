package domain

import (
	"errors"
	"fmt"
)

// TokenScope identifies which token flow an error belongs to.
type TokenScope string

const (
	ScopeActivation    TokenScope = "activation"
	ScopePasswordReset TokenScope = "password_reset"
)

// TokenFault distinguishes the two user-correctable token failures.
type TokenFault string

const (
	TokenExpired TokenFault = "expired"
	TokenInvalid TokenFault = "invalid"
)

// ErrAccountLocked indicates the operation was attempted on a blocked account.
var ErrAccountLocked = errors.New("account is blocked")

// ValidationError reports a value object that failed construction.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func newValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// RateLimitError indicates the token request ceiling was reached for a scope.
type RateLimitError struct {
	Scope TokenScope
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: request limit reached", e.Scope)
}

// TokenError indicates a supplied token could not be accepted.
type TokenError struct {
	Scope TokenScope
	Fault TokenFault
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("%s: token %s", e.Scope, e.Fault)
}

// IsRateLimited reports whether err is a RateLimitError for any scope.
func IsRateLimited(err error) bool {
	var rateErr *RateLimitError
	return errors.As(err, &rateErr)
}

// IsTokenFault reports whether err is a TokenError and returns its fault.
func IsTokenFault(err error) (TokenFault, bool) {
	var tokenErr *TokenError
	if errors.As(err, &tokenErr) {
		return tokenErr.Fault, true
	}
	return "", false
}
