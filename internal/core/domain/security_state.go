package domain

import "time"

// TokenRequestLimit caps outstanding activation/reset mails before the
// stored token must expire or be consumed.
const TokenRequestLimit = 3

// Security carries the per-account abuse counters. Values are immutable;
// the With methods return an adjusted copy.
type Security struct {
	TotalWrongPassword      int
	TotalWrongTwoFactorCode int
	TotalTwoFactorSmsSent   int
}

func (s Security) WithWrongPassword(count int) Security {
	s.TotalWrongPassword = count
	return s
}

func (s Security) WithWrongTwoFactorCode(count int) Security {
	s.TotalWrongTwoFactorCode = count
	return s
}

func (s Security) WithTwoFactorSmsSent(count int) Security {
	s.TotalTwoFactorSmsSent = count
	return s
}

// ActiveEmail tracks the pending email-activation token for an account.
// MailSent counts requests since the last expiry or successful activation.
type ActiveEmail struct {
	MailSent    int
	Token       string
	TokenTTL    time.Time
	LastAttempt time.Time
}

// Live reports whether a token is stored and has not expired at now.
func (a ActiveEmail) Live(now time.Time) bool {
	return a.Token != "" && !a.TokenTTL.IsZero() && a.TokenTTL.After(now)
}

// Expired reports whether a token was stored but its TTL has passed.
func (a ActiveEmail) Expired(now time.Time) bool {
	return !a.TokenTTL.IsZero() && !a.TokenTTL.After(now)
}

// WithRequest returns the state after one more activation mail was sent.
func (a ActiveEmail) WithRequest(token string, expiresAt, now time.Time) ActiveEmail {
	return ActiveEmail{
		MailSent:    a.MailSent + 1,
		Token:       token,
		TokenTTL:    expiresAt,
		LastAttempt: now,
	}
}

// ResetPassword tracks the pending password-reset token for an account.
type ResetPassword struct {
	MailSent int
	Token    string
	TokenTTL time.Time
}

// Live reports whether a token is stored and has not expired at now.
func (r ResetPassword) Live(now time.Time) bool {
	return r.Token != "" && !r.TokenTTL.IsZero() && r.TokenTTL.After(now)
}

// Expired reports whether a token was stored but its TTL has passed.
func (r ResetPassword) Expired(now time.Time) bool {
	return !r.TokenTTL.IsZero() && !r.TokenTTL.After(now)
}

// WithRequest returns the state after one more reset mail was sent.
func (r ResetPassword) WithRequest(token string, expiresAt time.Time) ResetPassword {
	return ResetPassword{
		MailSent: r.MailSent + 1,
		Token:    token,
		TokenTTL: expiresAt,
	}
}
