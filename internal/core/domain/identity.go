package domain

import (
	"strings"
	"unicode/utf8"

	uuid "github.com/google/uuid"
)

const (
	usernameMinLength = 2
	usernameMaxLength = 20
	nameMinLength     = 2
	nameMaxLength     = 50
)

// UserID is the aggregate identity. It is either assigned (a valid RFC-4122
// UUID of version 1, 4, or 5) or unassigned, the transient state of an
// aggregate that has not been persisted yet. Unassigned identities never
// compare equal, not even to each other.
type UserID struct {
	value    string
	assigned bool
}

// NewUserID validates and wraps a UUID string.
func NewUserID(value string) (UserID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return UserID{}, newValidationError("user_id", "must be a valid UUID")
	}
	switch parsed.Version() {
	case 1, 4, 5:
	default:
		return UserID{}, newValidationError("user_id", "unsupported UUID version")
	}
	if parsed.Variant() != uuid.RFC4122 {
		return UserID{}, newValidationError("user_id", "unsupported UUID variant")
	}
	return UserID{value: parsed.String(), assigned: true}, nil
}

// UnassignedUserID returns the identity of a not-yet-persisted aggregate.
func UnassignedUserID() UserID {
	return UserID{}
}

// Assigned reports whether the identity has been assigned.
func (id UserID) Assigned() bool {
	return id.assigned
}

// String returns the UUID string, or "" when unassigned.
func (id UserID) String() string {
	return id.value
}

// Equal reports identity equality. Unassigned identities are never equal.
func (id UserID) Equal(other UserID) bool {
	return id.assigned && other.assigned && id.value == other.value
}

// Username is a trimmed display handle between 2 and 20 characters.
type Username struct {
	value string
}

func NewUsername(value string) (Username, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Username{}, newValidationError("username", "must not be empty")
	}
	if n := utf8.RuneCountInString(trimmed); n < usernameMinLength || n > usernameMaxLength {
		return Username{}, newValidationError("username", "must be between 2 and 20 characters")
	}
	return Username{value: trimmed}, nil
}

func (u Username) String() string {
	return u.value
}

// Firstname is an optional given name between 2 and 50 characters.
type Firstname struct {
	value string
}

func NewFirstname(value string) (Firstname, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Firstname{}, newValidationError("firstname", "must not be empty")
	}
	if n := utf8.RuneCountInString(trimmed); n < nameMinLength || n > nameMaxLength {
		return Firstname{}, newValidationError("firstname", "must be between 2 and 50 characters")
	}
	return Firstname{value: trimmed}, nil
}

func (f Firstname) String() string {
	return f.value
}

// Lastname is an optional family name between 2 and 50 characters.
type Lastname struct {
	value string
}

func NewLastname(value string) (Lastname, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Lastname{}, newValidationError("lastname", "must not be empty")
	}
	if n := utf8.RuneCountInString(trimmed); n < nameMinLength || n > nameMaxLength {
		return Lastname{}, newValidationError("lastname", "must be between 2 and 50 characters")
	}
	return Lastname{value: trimmed}, nil
}

func (l Lastname) String() string {
	return l.value
}

// EmailAddress is normalized to lowercase; equality is case-insensitive by
// construction.
type EmailAddress struct {
	value string
}

func NewEmailAddress(value string) (EmailAddress, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return EmailAddress{}, newValidationError("email", "must not be empty")
	}
	at := strings.Index(trimmed, "@")
	if at <= 0 || at == len(trimmed)-1 {
		return EmailAddress{}, newValidationError("email", "must contain a local and a domain part")
	}
	domainPart := trimmed[at+1:]
	if strings.HasPrefix(domainPart, ".") || !strings.Contains(domainPart, ".") {
		return EmailAddress{}, newValidationError("email", "domain part is malformed")
	}
	return EmailAddress{value: trimmed}, nil
}

func (e EmailAddress) String() string {
	return e.value
}

func (e EmailAddress) Equal(other EmailAddress) bool {
	return e.value == other.value
}

// HashedPassword wraps an opaque password digest. The aggregate never sees
// plaintext; callers hash before constructing one.
type HashedPassword struct {
	value string
}

func NewHashedPassword(value string) (HashedPassword, error) {
	if strings.TrimSpace(value) == "" {
		return HashedPassword{}, newValidationError("password", "hash must not be empty")
	}
	return HashedPassword{value: value}, nil
}

func (p HashedPassword) String() string {
	return p.value
}

func (p HashedPassword) Equal(other HashedPassword) bool {
	return p.value == other.value
}

// RoleUser is the role granted to every self-registered account.
const RoleUser = "ROLE_USER"

// RoleSet is a deduplicated, order-preserving list of role names.
type RoleSet struct {
	roles []string
}

// NewRoleSet builds a role set. An empty input defaults to {ROLE_USER};
// blank entries are rejected.
func NewRoleSet(roles []string) (RoleSet, error) {
	if len(roles) == 0 {
		return RoleSet{roles: []string{RoleUser}}, nil
	}

	deduped := make([]string, 0, len(roles))
	seen := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		trimmed := strings.TrimSpace(role)
		if trimmed == "" {
			return RoleSet{}, newValidationError("roles", "role name must not be blank")
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		deduped = append(deduped, trimmed)
	}

	return RoleSet{roles: deduped}, nil
}

// DefaultRoleSet returns the {ROLE_USER} set.
func DefaultRoleSet() RoleSet {
	return RoleSet{roles: []string{RoleUser}}
}

// Roles returns a copy of the role names in insertion order.
func (r RoleSet) Roles() []string {
	out := make([]string, len(r.roles))
	copy(out, r.roles)
	return out
}

func (r RoleSet) Contains(role string) bool {
	for _, candidate := range r.roles {
		if candidate == role {
			return true
		}
	}
	return false
}

func (r RoleSet) Equal(other RoleSet) bool {
	if len(r.roles) != len(other.roles) {
		return false
	}
	for i := range r.roles {
		if r.roles[i] != other.roles[i] {
			return false
		}
	}
	return true
}

// UserStatus enumerates the three mutually exclusive account states.
type UserStatus string

const (
	StatusInactive UserStatus = "inactive"
	StatusActive   UserStatus = "active"
	StatusBlocked  UserStatus = "blocked"
)

// ParseUserStatus validates a persisted status value.
func ParseUserStatus(value string) (UserStatus, error) {
	switch UserStatus(value) {
	case StatusInactive, StatusActive, StatusBlocked:
		return UserStatus(value), nil
	default:
		return "", newValidationError("status", "unknown status "+value)
	}
}

func (s UserStatus) IsActive() bool {
	return s == StatusActive
}

func (s UserStatus) IsBlocked() bool {
	return s == StatusBlocked
}
