package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestNewUserIDAcceptsSupportedVersions(t *testing.T) {
	cases := []string{
		"6ba7b810-9dad-11d1-80b4-00c04fd430c8", // v1
		"7d444840-9dc0-41a1-b227-fcf2045ec1b3", // v4
		"886313e1-3b8a-5372-9b90-0c9aee199e5d", // v5
	}

	for _, value := range cases {
		id, err := NewUserID(value)
		if err != nil {
			t.Fatalf("NewUserID(%s) returned error: %v", value, err)
		}
		if !id.Assigned() {
			t.Fatalf("expected %s to be assigned", value)
		}
		if id.String() != value {
			t.Fatalf("expected %s, got %s", value, id.String())
		}
	}
}

func TestNewUserIDRejectsInvalidInput(t *testing.T) {
	cases := []string{
		"",
		"not-a-uuid",
		"00000000-0000-0000-0000-000000000000",         // nil UUID, version 0
		"7d444840-9dc0-21a1-b227-fcf2045ec1b3",         // v2
		"7d444840-9dc0-41a1-1227-fcf2045ec1b3",         // reserved NCS variant
		"7d444840-9dc0-41a1-b227-fcf2045ec1b3-deadbeef",
	}

	for _, value := range cases {
		if _, err := NewUserID(value); err == nil {
			t.Fatalf("expected NewUserID(%q) to fail", value)
		}
	}
}

func TestUserIDEquality(t *testing.T) {
	a, err := NewUserID("7d444840-9dc0-41a1-b227-fcf2045ec1b3")
	if err != nil {
		t.Fatalf("NewUserID returned error: %v", err)
	}
	b, err := NewUserID("7D444840-9DC0-41A1-B227-FCF2045EC1B3")
	if err != nil {
		t.Fatalf("NewUserID returned error: %v", err)
	}

	if !a.Equal(b) {
		t.Fatalf("expected equal ids for the same UUID")
	}
	if UnassignedUserID().Equal(UnassignedUserID()) {
		t.Fatalf("unassigned ids must never be equal")
	}
	if a.Equal(UnassignedUserID()) || UnassignedUserID().Equal(a) {
		t.Fatalf("assigned id must not equal unassigned id")
	}
}

func TestNewUsernameBounds(t *testing.T) {
	if _, err := NewUsername("  jo "); err != nil {
		t.Fatalf("expected two-character username to pass, got %v", err)
	}
	if _, err := NewUsername("j"); err == nil {
		t.Fatalf("expected one-character username to fail")
	}
	if _, err := NewUsername(strings.Repeat("a", 21)); err == nil {
		t.Fatalf("expected 21-character username to fail")
	}
	if _, err := NewUsername("   "); err == nil {
		t.Fatalf("expected blank username to fail")
	}

	var validationErr *ValidationError
	_, err := NewUsername("")
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validationErr.Field != "username" {
		t.Fatalf("expected field username, got %s", validationErr.Field)
	}
}

func TestNewFirstnameCountsRunes(t *testing.T) {
	// 50 multibyte runes must pass even though the byte length exceeds 50.
	name := strings.Repeat("é", 50)
	if _, err := NewFirstname(name); err != nil {
		t.Fatalf("expected 50-rune name to pass, got %v", err)
	}
	if _, err := NewFirstname(strings.Repeat("é", 51)); err == nil {
		t.Fatalf("expected 51-rune name to fail")
	}
}

func TestNewEmailAddressNormalizes(t *testing.T) {
	email, err := NewEmailAddress("  John.Doe@Example.COM ")
	if err != nil {
		t.Fatalf("NewEmailAddress returned error: %v", err)
	}
	if email.String() != "john.doe@example.com" {
		t.Fatalf("expected lowercase email, got %s", email.String())
	}

	other, err := NewEmailAddress("JOHN.DOE@example.com")
	if err != nil {
		t.Fatalf("NewEmailAddress returned error: %v", err)
	}
	if !email.Equal(other) {
		t.Fatalf("expected case-insensitive equality")
	}
}

func TestNewEmailAddressRejectsMalformed(t *testing.T) {
	cases := []string{"", "plain", "@example.com", "user@", "user@domain"}
	for _, value := range cases {
		if _, err := NewEmailAddress(value); err == nil {
			t.Fatalf("expected NewEmailAddress(%q) to fail", value)
		}
	}
}

func TestNewRoleSetDefaultsAndDedupes(t *testing.T) {
	defaulted, err := NewRoleSet(nil)
	if err != nil {
		t.Fatalf("NewRoleSet(nil) returned error: %v", err)
	}
	if got := defaulted.Roles(); len(got) != 1 || got[0] != RoleUser {
		t.Fatalf("expected default {ROLE_USER}, got %v", got)
	}

	deduped, err := NewRoleSet([]string{"ROLE_ADMIN", "ROLE_USER", "ROLE_ADMIN"})
	if err != nil {
		t.Fatalf("NewRoleSet returned error: %v", err)
	}
	if got := deduped.Roles(); len(got) != 2 || got[0] != "ROLE_ADMIN" || got[1] != RoleUser {
		t.Fatalf("expected order-preserving dedupe, got %v", got)
	}

	if _, err := NewRoleSet([]string{"ROLE_ADMIN", "  "}); err == nil {
		t.Fatalf("expected blank role to fail")
	}
}

func TestRoleSetRolesReturnsCopy(t *testing.T) {
	set, err := NewRoleSet([]string{"ROLE_ADMIN"})
	if err != nil {
		t.Fatalf("NewRoleSet returned error: %v", err)
	}

	roles := set.Roles()
	roles[0] = "ROLE_MUTATED"

	if set.Roles()[0] != "ROLE_ADMIN" {
		t.Fatalf("mutating the returned slice must not affect the set")
	}
}

func TestParseUserStatus(t *testing.T) {
	for _, value := range []string{"inactive", "active", "blocked"} {
		if _, err := ParseUserStatus(value); err != nil {
			t.Fatalf("ParseUserStatus(%s) returned error: %v", value, err)
		}
	}
	if _, err := ParseUserStatus("disabled"); err == nil {
		t.Fatalf("expected unknown status to fail")
	}
	if !StatusBlocked.IsBlocked() || StatusActive.IsBlocked() {
		t.Fatalf("IsBlocked misreported")
	}
	if !StatusActive.IsActive() || StatusInactive.IsActive() {
		t.Fatalf("IsActive misreported")
	}
}
