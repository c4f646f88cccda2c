package domain

import "time"

// DomainEvent is recorded by the aggregate during a mutating call and
// drained by the caller after persistence. Events are immutable records;
// EventName returns the dot-separated discriminator used for routing.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredOn() time.Time
}

// UserRegistered signals a self-service signup.
type UserRegistered struct {
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e UserRegistered) EventName() string     { return "user.registered" }
func (e UserRegistered) AggregateID() string   { return e.UserID }
func (e UserRegistered) OccurredOn() time.Time { return e.OccurredAt }

// UserCreatedByAdmin signals an account created through the admin surface.
type UserCreatedByAdmin struct {
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e UserCreatedByAdmin) EventName() string     { return "user.created_by_admin" }
func (e UserCreatedByAdmin) AggregateID() string   { return e.UserID }
func (e UserCreatedByAdmin) OccurredOn() time.Time { return e.OccurredAt }

// ActivationEmailRequested signals that an activation mail should be sent.
type ActivationEmailRequested struct {
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e ActivationEmailRequested) EventName() string     { return "user.activation.requested" }
func (e ActivationEmailRequested) AggregateID() string   { return e.UserID }
func (e ActivationEmailRequested) OccurredOn() time.Time { return e.OccurredAt }

// UserActivated signals a completed email activation.
type UserActivated struct {
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e UserActivated) EventName() string     { return "user.activated" }
func (e UserActivated) AggregateID() string   { return e.UserID }
func (e UserActivated) OccurredOn() time.Time { return e.OccurredAt }

// PasswordResetRequested signals that a reset mail should be sent.
type PasswordResetRequested struct {
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e PasswordResetRequested) EventName() string     { return "user.password_reset.requested" }
func (e PasswordResetRequested) AggregateID() string   { return e.UserID }
func (e PasswordResetRequested) OccurredOn() time.Time { return e.OccurredAt }

// PasswordResetCompleted signals a successful token-based password reset.
type PasswordResetCompleted struct {
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e PasswordResetCompleted) EventName() string     { return "user.password_reset.completed" }
func (e PasswordResetCompleted) AggregateID() string   { return e.UserID }
func (e PasswordResetCompleted) OccurredOn() time.Time { return e.OccurredAt }

// PasswordChanged signals a direct credential replacement.
type PasswordChanged struct {
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e PasswordChanged) EventName() string     { return "user.password.changed" }
func (e PasswordChanged) AggregateID() string   { return e.UserID }
func (e PasswordChanged) OccurredOn() time.Time { return e.OccurredAt }

// AvatarUpdated signals a profile avatar replacement.
type AvatarUpdated struct {
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e AvatarUpdated) EventName() string     { return "user.avatar.updated" }
func (e AvatarUpdated) AggregateID() string   { return e.UserID }
func (e AvatarUpdated) OccurredOn() time.Time { return e.OccurredAt }

// UserUpdatedByAdmin signals that at least one profile field changed through
// the admin surface.
type UserUpdatedByAdmin struct {
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e UserUpdatedByAdmin) EventName() string     { return "user.updated_by_admin" }
func (e UserUpdatedByAdmin) AggregateID() string   { return e.UserID }
func (e UserUpdatedByAdmin) OccurredOn() time.Time { return e.OccurredAt }

// UserBlocked signals a brute-force lockout.
type UserBlocked struct {
	UserID        string    `json:"user_id"`
	WrongAttempts int       `json:"wrong_attempts"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func (e UserBlocked) EventName() string     { return "user.blocked" }
func (e UserBlocked) AggregateID() string   { return e.UserID }
func (e UserBlocked) OccurredOn() time.Time { return e.OccurredAt }

// UserUnblocked signals a lockout being lifted.
type UserUnblocked struct {
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e UserUnblocked) EventName() string     { return "user.unblocked" }
func (e UserUnblocked) AggregateID() string   { return e.UserID }
func (e UserUnblocked) OccurredOn() time.Time { return e.OccurredAt }

// UserVisited signals a successful login for visit bookkeeping.
type UserVisited struct {
	UserID     string    `json:"user_id"`
	LoginCount int       `json:"login_count"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e UserVisited) EventName() string     { return "user.visited" }
func (e UserVisited) AggregateID() string   { return e.UserID }
func (e UserVisited) OccurredOn() time.Time { return e.OccurredAt }

// UserDeleted signals that removal was requested; erasure itself is a
// persistence concern.
type UserDeleted struct {
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e UserDeleted) EventName() string     { return "user.deleted" }
func (e UserDeleted) AggregateID() string   { return e.UserID }
func (e UserDeleted) OccurredOn() time.Time { return e.OccurredAt }
