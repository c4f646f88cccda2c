package domain

import (
	"crypto/subtle"
	"time"
)

// User is the aggregate root for the identity and security lifecycle. It
// owns the value objects above, enforces the cross-field invariants, and
// records domain events during mutating calls. A User instance belongs to
// exactly one use-case execution at a time; there is no internal locking.
// The aggregate never reads a clock: every mutating operation receives now
// from the caller.
type User struct {
	id            UserID
	username      Username
	firstname     *Firstname
	lastname      *Lastname
	email         EmailAddress
	password      HashedPassword
	roles         RoleSet
	status        UserStatus
	security      Security
	activeEmail   ActiveEmail
	resetPassword ResetPassword
	preferences   map[string]any
	avatar        string
	lastVisit     time.Time
	loginCount    int
	createdAt     time.Time
	updatedAt     time.Time

	events []DomainEvent
}

// Register creates a self-service signup: status inactive, default role,
// zeroed counters and token state. Records UserRegistered.
func Register(id UserID, username Username, email EmailAddress, password HashedPassword, preferences map[string]any, now time.Time, firstname *Firstname, lastname *Lastname) *User {
	u := newUser(id, username, email, password, DefaultRoleSet(), StatusInactive, preferences, now, firstname, lastname)
	u.record(UserRegistered{UserID: id.String(), Email: email.String(), OccurredAt: now})
	return u
}

// CreateByAdmin creates an account with caller-supplied roles and status.
// Records UserCreatedByAdmin.
func CreateByAdmin(id UserID, username Username, email EmailAddress, password HashedPassword, roles RoleSet, status UserStatus, now time.Time, firstname *Firstname, lastname *Lastname, preferences map[string]any) *User {
	u := newUser(id, username, email, password, roles, status, preferences, now, firstname, lastname)
	u.record(UserCreatedByAdmin{UserID: id.String(), Email: email.String(), OccurredAt: now})
	return u
}

func newUser(id UserID, username Username, email EmailAddress, password HashedPassword, roles RoleSet, status UserStatus, preferences map[string]any, now time.Time, firstname *Firstname, lastname *Lastname) *User {
	if preferences == nil {
		preferences = map[string]any{}
	}
	return &User{
		id:          id,
		username:    username,
		firstname:   firstname,
		lastname:    lastname,
		email:       email,
		password:    password,
		roles:       roles,
		status:      status,
		preferences: preferences,
		lastVisit:   now,
		createdAt:   now,
		updatedAt:   now,
	}
}

// UserSnapshot is the flat persisted representation of the aggregate.
type UserSnapshot struct {
	ID            string
	Username      string
	Firstname     *string
	Lastname      *string
	Email         string
	PasswordHash  string
	Roles         []string
	Status        string
	Security      Security
	ActiveEmail   ActiveEmail
	ResetPassword ResetPassword
	Preferences   map[string]any
	Avatar        string
	LastVisit     time.Time
	LoginCount    int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Reconstitute rebuilds an aggregate from its persisted snapshot. Value
// objects are revalidated; no event is recorded.
func Reconstitute(s UserSnapshot) (*User, error) {
	id, err := NewUserID(s.ID)
	if err != nil {
		return nil, err
	}
	username, err := NewUsername(s.Username)
	if err != nil {
		return nil, err
	}
	email, err := NewEmailAddress(s.Email)
	if err != nil {
		return nil, err
	}
	password, err := NewHashedPassword(s.PasswordHash)
	if err != nil {
		return nil, err
	}
	roles, err := NewRoleSet(s.Roles)
	if err != nil {
		return nil, err
	}
	status, err := ParseUserStatus(s.Status)
	if err != nil {
		return nil, err
	}

	var firstname *Firstname
	if s.Firstname != nil {
		parsed, err := NewFirstname(*s.Firstname)
		if err != nil {
			return nil, err
		}
		firstname = &parsed
	}
	var lastname *Lastname
	if s.Lastname != nil {
		parsed, err := NewLastname(*s.Lastname)
		if err != nil {
			return nil, err
		}
		lastname = &parsed
	}

	preferences := s.Preferences
	if preferences == nil {
		preferences = map[string]any{}
	}

	return &User{
		id:            id,
		username:      username,
		firstname:     firstname,
		lastname:      lastname,
		email:         email,
		password:      password,
		roles:         roles,
		status:        status,
		security:      s.Security,
		activeEmail:   s.ActiveEmail,
		resetPassword: s.ResetPassword,
		preferences:   preferences,
		avatar:        s.Avatar,
		lastVisit:     s.LastVisit,
		loginCount:    s.LoginCount,
		createdAt:     s.CreatedAt,
		updatedAt:     s.UpdatedAt,
	}, nil
}

// Snapshot returns the flat persisted representation of the aggregate.
func (u *User) Snapshot() UserSnapshot {
	var firstname *string
	if u.firstname != nil {
		value := u.firstname.String()
		firstname = &value
	}
	var lastname *string
	if u.lastname != nil {
		value := u.lastname.String()
		lastname = &value
	}

	preferences := make(map[string]any, len(u.preferences))
	for k, v := range u.preferences {
		preferences[k] = v
	}

	return UserSnapshot{
		ID:            u.id.String(),
		Username:      u.username.String(),
		Firstname:     firstname,
		Lastname:      lastname,
		Email:         u.email.String(),
		PasswordHash:  u.password.String(),
		Roles:         u.roles.Roles(),
		Status:        string(u.status),
		Security:      u.security,
		ActiveEmail:   u.activeEmail,
		ResetPassword: u.resetPassword,
		Preferences:   preferences,
		Avatar:        u.avatar,
		LastVisit:     u.lastVisit,
		LoginCount:    u.loginCount,
		CreatedAt:     u.createdAt,
		UpdatedAt:     u.updatedAt,
	}
}

func (u *User) ID() UserID                   { return u.id }
func (u *User) Username() Username           { return u.username }
func (u *User) Email() EmailAddress          { return u.email }
func (u *User) Password() HashedPassword     { return u.password }
func (u *User) Roles() RoleSet               { return u.roles }
func (u *User) Status() UserStatus           { return u.status }
func (u *User) Security() Security           { return u.security }
func (u *User) ActiveEmail() ActiveEmail     { return u.activeEmail }
func (u *User) ResetPassword() ResetPassword { return u.resetPassword }
func (u *User) Avatar() string               { return u.avatar }
func (u *User) LastVisit() time.Time         { return u.lastVisit }
func (u *User) LoginCount() int              { return u.loginCount }
func (u *User) CreatedAt() time.Time         { return u.createdAt }
func (u *User) UpdatedAt() time.Time         { return u.updatedAt }

func (u *User) IsActive() bool { return u.status.IsActive() }
func (u *User) IsLocked() bool { return u.status.IsBlocked() }

// Equal compares by identity. Users without an assigned identity are never
// equal to anything.
func (u *User) Equal(other *User) bool {
	if other == nil {
		return false
	}
	return u.id.Equal(other.id)
}

// RequestActivation stores a fresh activation token, enforcing the lock and
// the request ceiling. An expired stored token resets the counter first, so
// stale requests never count against the limit. Activation bookkeeping does
// not touch UpdatedAt.
func (u *User) RequestActivation(token string, expiresAt, now time.Time) error {
	if u.IsLocked() {
		return ErrAccountLocked
	}

	state := u.activeEmail
	if state.Expired(now) {
		state = ActiveEmail{}
	}
	if state.MailSent >= TokenRequestLimit {
		return &RateLimitError{Scope: ScopeActivation}
	}

	u.activeEmail = state.WithRequest(token, expiresAt, now)
	u.record(ActivationEmailRequested{UserID: u.id.String(), Email: u.email.String(), OccurredAt: now})
	return nil
}

// Activate consumes a live activation token, switching the account to
// active and clearing the token state.
func (u *User) Activate(token string, now time.Time) error {
	if u.IsLocked() {
		return ErrAccountLocked
	}
	if !u.activeEmail.Live(now) {
		return &TokenError{Scope: ScopeActivation, Fault: TokenExpired}
	}
	if subtle.ConstantTimeCompare([]byte(u.activeEmail.Token), []byte(token)) != 1 {
		return &TokenError{Scope: ScopeActivation, Fault: TokenInvalid}
	}

	u.status = StatusActive
	u.activeEmail = ActiveEmail{}
	u.touch(now)
	u.record(UserActivated{UserID: u.id.String(), OccurredAt: now})
	return nil
}

// ClearActivation unconditionally resets the activation token state. No
// event, no timestamp touch.
func (u *User) ClearActivation() {
	u.activeEmail = ActiveEmail{}
}

// RequestPasswordReset stores a fresh reset token under the same lock,
// expiry-reset, and ceiling rules as activation.
func (u *User) RequestPasswordReset(token string, expiresAt, now time.Time) error {
	if u.IsLocked() {
		return ErrAccountLocked
	}

	state := u.resetPassword
	if state.Expired(now) {
		state = ResetPassword{}
	}
	if state.MailSent >= TokenRequestLimit {
		return &RateLimitError{Scope: ScopePasswordReset}
	}

	u.resetPassword = state.WithRequest(token, expiresAt)
	u.record(PasswordResetRequested{UserID: u.id.String(), Email: u.email.String(), OccurredAt: now})
	return nil
}

// CompletePasswordReset consumes a live reset token and replaces the
// password, clearing the token state.
func (u *User) CompletePasswordReset(token string, password HashedPassword, now time.Time) error {
	if u.IsLocked() {
		return ErrAccountLocked
	}
	if !u.resetPassword.Live(now) {
		return &TokenError{Scope: ScopePasswordReset, Fault: TokenExpired}
	}
	if subtle.ConstantTimeCompare([]byte(u.resetPassword.Token), []byte(token)) != 1 {
		return &TokenError{Scope: ScopePasswordReset, Fault: TokenInvalid}
	}

	u.password = password
	u.resetPassword = ResetPassword{}
	u.touch(now)
	u.record(PasswordResetCompleted{UserID: u.id.String(), OccurredAt: now})
	return nil
}

// ChangePassword replaces the credential unconditionally.
func (u *User) ChangePassword(password HashedPassword, now time.Time) {
	u.password = password
	u.touch(now)
	u.record(PasswordChanged{UserID: u.id.String(), OccurredAt: now})
}

// UpdateAvatar replaces the avatar reference unconditionally.
func (u *User) UpdateAvatar(avatar string, now time.Time) {
	u.avatar = avatar
	u.touch(now)
	u.record(AvatarUpdated{UserID: u.id.String(), OccurredAt: now})
}

// AdminUpdate carries the optional fields of an admin-driven profile
// update; nil fields are left untouched.
type AdminUpdate struct {
	Username  *Username
	Email     *EmailAddress
	Firstname *Firstname
	Lastname  *Lastname
	Roles     *RoleSet
	Status    *UserStatus
	Password  *HashedPassword
}

// UpdateByAdmin applies the non-nil fields. When nothing actually changes
// the call is a no-op: no event, no timestamp touch.
func (u *User) UpdateByAdmin(update AdminUpdate, now time.Time) bool {
	changed := false

	if update.Username != nil && *update.Username != u.username {
		u.username = *update.Username
		changed = true
	}
	if update.Email != nil && !update.Email.Equal(u.email) {
		u.email = *update.Email
		changed = true
	}
	if update.Firstname != nil && (u.firstname == nil || *update.Firstname != *u.firstname) {
		value := *update.Firstname
		u.firstname = &value
		changed = true
	}
	if update.Lastname != nil && (u.lastname == nil || *update.Lastname != *u.lastname) {
		value := *update.Lastname
		u.lastname = &value
		changed = true
	}
	if update.Roles != nil && !update.Roles.Equal(u.roles) {
		u.roles = *update.Roles
		changed = true
	}
	if update.Status != nil && *update.Status != u.status {
		u.status = *update.Status
		changed = true
	}
	if update.Password != nil && !update.Password.Equal(u.password) {
		u.password = *update.Password
		changed = true
	}

	if !changed {
		return false
	}

	u.touch(now)
	u.record(UserUpdatedByAdmin{UserID: u.id.String(), OccurredAt: now})
	return true
}

// RegisterWrongPasswordAttempt increments the failed-login counter and
// blocks the account once the threshold is reached. Calling it on an
// already blocked account re-blocks idempotently.
func (u *User) RegisterWrongPasswordAttempt(maxAttempts int, now time.Time) {
	count := u.security.TotalWrongPassword + 1
	u.security = u.security.WithWrongPassword(count)

	if count >= maxAttempts && !u.IsLocked() {
		u.status = StatusBlocked
		u.record(UserBlocked{UserID: u.id.String(), WrongAttempts: count, OccurredAt: now})
	}

	u.touch(now)
}

// ResetWrongPasswordAttempts zeroes the failed-login counter and lifts a
// lockout. A zero counter makes the whole call a no-op.
func (u *User) ResetWrongPasswordAttempts(now time.Time) {
	if u.security.TotalWrongPassword == 0 {
		return
	}

	u.security = u.security.WithWrongPassword(0)
	if u.IsLocked() {
		u.status = StatusActive
		u.record(UserUnblocked{UserID: u.id.String(), OccurredAt: now})
	}
	u.touch(now)
}

// RecordVisit updates the login bookkeeping after a successful
// authentication.
func (u *User) RecordVisit(now time.Time) {
	u.lastVisit = now
	u.loginCount++
	u.touch(now)
	u.record(UserVisited{UserID: u.id.String(), LoginCount: u.loginCount, OccurredAt: now})
}

// Delete records the removal request. Actual erasure belongs to the
// persistence layer; the rest of the state is untouched.
func (u *User) Delete(now time.Time) {
	u.record(UserDeleted{UserID: u.id.String(), OccurredAt: now})
}

// DomainEvents returns the events recorded since the last drain, in call
// order.
func (u *User) DomainEvents() []DomainEvent {
	out := make([]DomainEvent, len(u.events))
	copy(out, u.events)
	return out
}

// ClearDomainEvents empties the event log.
func (u *User) ClearDomainEvents() {
	u.events = nil
}

// DrainEvents returns the recorded events and clears the log in one step.
func (u *User) DrainEvents() []DomainEvent {
	events := u.events
	u.events = nil
	return events
}

func (u *User) record(event DomainEvent) {
	u.events = append(u.events, event)
}

// touch keeps UpdatedAt monotonically non-decreasing.
func (u *User) touch(now time.Time) {
	if now.After(u.updatedAt) {
		u.updatedAt = now
	}
}
