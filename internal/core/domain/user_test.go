package domain

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func mustUserID(t *testing.T, value string) UserID {
	t.Helper()
	id, err := NewUserID(value)
	if err != nil {
		t.Fatalf("NewUserID returned error: %v", err)
	}
	return id
}

func registeredUser(t *testing.T) *User {
	t.Helper()

	id := mustUserID(t, "7d444840-9dc0-41a1-b227-fcf2045ec1b3")
	username, err := NewUsername("jdoe")
	if err != nil {
		t.Fatalf("NewUsername returned error: %v", err)
	}
	email, err := NewEmailAddress("a@b.com")
	if err != nil {
		t.Fatalf("NewEmailAddress returned error: %v", err)
	}
	password, err := NewHashedPassword("$argon2id$hash")
	if err != nil {
		t.Fatalf("NewHashedPassword returned error: %v", err)
	}

	return Register(id, username, email, password, nil, testNow, nil, nil)
}

func activeUser(t *testing.T) *User {
	t.Helper()
	user := registeredUser(t)
	if err := user.RequestActivation("boot", testNow.Add(time.Hour), testNow); err != nil {
		t.Fatalf("RequestActivation returned error: %v", err)
	}
	if err := user.Activate("boot", testNow); err != nil {
		t.Fatalf("Activate returned error: %v", err)
	}
	user.ClearDomainEvents()
	return user
}

func TestRegisterInitialState(t *testing.T) {
	user := registeredUser(t)

	if user.Status() != StatusInactive {
		t.Fatalf("expected inactive status, got %s", user.Status())
	}
	if got := user.Roles().Roles(); len(got) != 1 || got[0] != RoleUser {
		t.Fatalf("expected default role set, got %v", got)
	}
	if user.Security() != (Security{}) {
		t.Fatalf("expected zeroed security counters, got %+v", user.Security())
	}
	if !user.CreatedAt().Equal(testNow) || !user.UpdatedAt().Equal(testNow) || !user.LastVisit().Equal(testNow) {
		t.Fatalf("expected all timestamps to equal now")
	}

	events := user.DomainEvents()
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	registered, ok := events[0].(UserRegistered)
	if !ok {
		t.Fatalf("expected UserRegistered, got %T", events[0])
	}
	if registered.Email != "a@b.com" || !registered.OccurredAt.Equal(testNow) {
		t.Fatalf("unexpected event payload: %+v", registered)
	}
	if registered.EventName() != "user.registered" {
		t.Fatalf("unexpected event name %s", registered.EventName())
	}
}

func TestCreateByAdminKeepsSuppliedState(t *testing.T) {
	id := mustUserID(t, "7d444840-9dc0-41a1-b227-fcf2045ec1b3")
	username, _ := NewUsername("admin-made")
	email, _ := NewEmailAddress("staff@shop.example")
	password, _ := NewHashedPassword("hash")
	roles, _ := NewRoleSet([]string{"ROLE_ADMIN", "ROLE_USER"})

	user := CreateByAdmin(id, username, email, password, roles, StatusActive, testNow, nil, nil, nil)

	if user.Status() != StatusActive {
		t.Fatalf("expected supplied status, got %s", user.Status())
	}
	if !user.Roles().Contains("ROLE_ADMIN") {
		t.Fatalf("expected supplied roles, got %v", user.Roles().Roles())
	}

	events := user.DomainEvents()
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if _, ok := events[0].(UserCreatedByAdmin); !ok {
		t.Fatalf("expected UserCreatedByAdmin, got %T", events[0])
	}
}

func TestActivationRateLimit(t *testing.T) {
	user := registeredUser(t)
	user.ClearDomainEvents()
	expiresAt := testNow.Add(24 * time.Hour)

	for i := 1; i <= 3; i++ {
		if err := user.RequestActivation("tok", expiresAt, testNow); err != nil {
			t.Fatalf("request %d returned error: %v", i, err)
		}
		if got := user.ActiveEmail().MailSent; got != i {
			t.Fatalf("expected mail counter %d, got %d", i, got)
		}
	}

	err := user.RequestActivation("tok", expiresAt, testNow)
	var rateErr *RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	if rateErr.Scope != ScopeActivation {
		t.Fatalf("expected activation scope, got %s", rateErr.Scope)
	}
	if len(user.DomainEvents()) != 3 {
		t.Fatalf("rejected request must not record an event")
	}
}

func TestActivationExpiryResetsCounter(t *testing.T) {
	user := registeredUser(t)
	expiresAt := testNow.Add(time.Hour)

	for i := 0; i < 3; i++ {
		if err := user.RequestActivation("tok", expiresAt, testNow); err != nil {
			t.Fatalf("RequestActivation returned error: %v", err)
		}
	}

	// Past the TTL the stale requests stop counting against the ceiling.
	later := expiresAt.Add(time.Minute)
	if err := user.RequestActivation("fresh", later.Add(time.Hour), later); err != nil {
		t.Fatalf("expected post-expiry request to pass, got %v", err)
	}
	if got := user.ActiveEmail().MailSent; got != 1 {
		t.Fatalf("expected counter reset to 1, got %d", got)
	}
	if user.ActiveEmail().Token != "fresh" {
		t.Fatalf("expected fresh token to be stored")
	}
}

func TestRequestActivationDoesNotTouchUpdatedAt(t *testing.T) {
	user := registeredUser(t)
	before := user.UpdatedAt()

	if err := user.RequestActivation("tok", testNow.Add(time.Hour), testNow.Add(time.Minute)); err != nil {
		t.Fatalf("RequestActivation returned error: %v", err)
	}
	if !user.UpdatedAt().Equal(before) {
		t.Fatalf("activation bookkeeping must not touch UpdatedAt")
	}
}

func TestActivateRoundTrip(t *testing.T) {
	user := registeredUser(t)
	user.ClearDomainEvents()

	if err := user.RequestActivation("T", testNow.Add(24*time.Hour), testNow); err != nil {
		t.Fatalf("RequestActivation returned error: %v", err)
	}
	if err := user.Activate("T", testNow); err != nil {
		t.Fatalf("Activate returned error: %v", err)
	}

	if user.Status() != StatusActive {
		t.Fatalf("expected active status, got %s", user.Status())
	}
	state := user.ActiveEmail()
	if state.MailSent != 0 || state.Token != "" || !state.TokenTTL.IsZero() {
		t.Fatalf("expected cleared activation state, got %+v", state)
	}
	if !user.UpdatedAt().Equal(testNow) {
		t.Fatalf("expected UpdatedAt touch")
	}

	events := user.DomainEvents()
	if len(events) != 2 {
		t.Fatalf("expected request + activation events, got %d", len(events))
	}
	if _, ok := events[1].(UserActivated); !ok {
		t.Fatalf("expected UserActivated, got %T", events[1])
	}
}

func TestActivateRejectsExpiredAndInvalidTokens(t *testing.T) {
	user := registeredUser(t)

	// Nothing requested yet: treated as expired.
	err := user.Activate("T", testNow)
	if fault, ok := IsTokenFault(err); !ok || fault != TokenExpired {
		t.Fatalf("expected expired fault, got %v", err)
	}

	if err := user.RequestActivation("T", testNow.Add(time.Hour), testNow); err != nil {
		t.Fatalf("RequestActivation returned error: %v", err)
	}

	err = user.Activate("WRONG", testNow)
	if fault, ok := IsTokenFault(err); !ok || fault != TokenInvalid {
		t.Fatalf("expected invalid fault, got %v", err)
	}

	err = user.Activate("T", testNow.Add(2*time.Hour))
	if fault, ok := IsTokenFault(err); !ok || fault != TokenExpired {
		t.Fatalf("expected expired fault after TTL, got %v", err)
	}

	if user.Status() != StatusInactive {
		t.Fatalf("failed activation must not change status")
	}
}

func TestBlockedUserCannotRequestTokens(t *testing.T) {
	user := activeUser(t)
	user.RegisterWrongPasswordAttempt(1, testNow)
	user.ClearDomainEvents()

	if err := user.RequestActivation("tok", testNow.Add(time.Hour), testNow); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}
	if err := user.RequestPasswordReset("tok", testNow.Add(time.Hour), testNow); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}
	if err := user.Activate("tok", testNow); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}
	if len(user.DomainEvents()) != 0 {
		t.Fatalf("locked rejections must not record events")
	}
}

func TestPasswordResetScenario(t *testing.T) {
	user := registeredUser(t)
	user.ClearDomainEvents()

	if err := user.RequestPasswordReset("tok1", testNow.Add(15*time.Minute), testNow); err != nil {
		t.Fatalf("RequestPasswordReset returned error: %v", err)
	}
	if got := user.ResetPassword().MailSent; got != 1 {
		t.Fatalf("expected mail counter 1, got %d", got)
	}

	newHash, _ := NewHashedPassword("new-hash")
	completeAt := testNow.Add(5 * time.Minute)
	if err := user.CompletePasswordReset("tok1", newHash, completeAt); err != nil {
		t.Fatalf("CompletePasswordReset returned error: %v", err)
	}

	if !user.Password().Equal(newHash) {
		t.Fatalf("expected password replacement")
	}
	state := user.ResetPassword()
	if state.MailSent != 0 || state.Token != "" || !state.TokenTTL.IsZero() {
		t.Fatalf("expected cleared reset state, got %+v", state)
	}
	if !user.UpdatedAt().Equal(completeAt) {
		t.Fatalf("expected UpdatedAt touch")
	}

	var completed int
	for _, event := range user.DomainEvents() {
		if _, ok := event.(PasswordResetCompleted); ok {
			completed++
		}
	}
	if completed != 1 {
		t.Fatalf("expected exactly one PasswordResetCompleted event, got %d", completed)
	}
}

func TestPasswordResetRateLimitAndExpiry(t *testing.T) {
	user := registeredUser(t)
	expiresAt := testNow.Add(15 * time.Minute)

	for i := 0; i < 3; i++ {
		if err := user.RequestPasswordReset("tok", expiresAt, testNow); err != nil {
			t.Fatalf("RequestPasswordReset returned error: %v", err)
		}
	}

	err := user.RequestPasswordReset("tok", expiresAt, testNow)
	var rateErr *RateLimitError
	if !errors.As(err, &rateErr) || rateErr.Scope != ScopePasswordReset {
		t.Fatalf("expected password reset rate limit, got %v", err)
	}

	later := expiresAt.Add(time.Second)
	if err := user.RequestPasswordReset("tok2", later.Add(time.Hour), later); err != nil {
		t.Fatalf("expected post-expiry request to pass, got %v", err)
	}
	if got := user.ResetPassword().MailSent; got != 1 {
		t.Fatalf("expected counter reset to 1, got %d", got)
	}
}

func TestCompletePasswordResetValidatesToken(t *testing.T) {
	user := registeredUser(t)
	newHash, _ := NewHashedPassword("new-hash")

	err := user.CompletePasswordReset("tok", newHash, testNow)
	if fault, ok := IsTokenFault(err); !ok || fault != TokenExpired {
		t.Fatalf("expected expired fault with no token stored, got %v", err)
	}

	if err := user.RequestPasswordReset("tok", testNow.Add(time.Minute), testNow); err != nil {
		t.Fatalf("RequestPasswordReset returned error: %v", err)
	}

	err = user.CompletePasswordReset("other", newHash, testNow)
	if fault, ok := IsTokenFault(err); !ok || fault != TokenInvalid {
		t.Fatalf("expected invalid fault, got %v", err)
	}

	err = user.CompletePasswordReset("tok", newHash, testNow.Add(2*time.Minute))
	if fault, ok := IsTokenFault(err); !ok || fault != TokenExpired {
		t.Fatalf("expected expired fault after TTL, got %v", err)
	}
}

func TestClearActivationIsSilent(t *testing.T) {
	user := registeredUser(t)
	if err := user.RequestActivation("tok", testNow.Add(time.Hour), testNow); err != nil {
		t.Fatalf("RequestActivation returned error: %v", err)
	}
	user.ClearDomainEvents()
	before := user.UpdatedAt()

	user.ClearActivation()

	if user.ActiveEmail() != (ActiveEmail{}) {
		t.Fatalf("expected cleared activation state")
	}
	if len(user.DomainEvents()) != 0 {
		t.Fatalf("ClearActivation must not record events")
	}
	if !user.UpdatedAt().Equal(before) {
		t.Fatalf("ClearActivation must not touch UpdatedAt")
	}
}

func TestUpdateByAdminNoChangeIsNoOp(t *testing.T) {
	user := activeUser(t)
	before := user.UpdatedAt()

	if changed := user.UpdateByAdmin(AdminUpdate{}, testNow.Add(time.Hour)); changed {
		t.Fatalf("expected all-nil update to be a no-op")
	}
	if !user.UpdatedAt().Equal(before) {
		t.Fatalf("no-op update must not touch UpdatedAt")
	}
	if len(user.DomainEvents()) != 0 {
		t.Fatalf("no-op update must not record events")
	}

	// Same values supplied explicitly are still a no-op.
	sameUsername := user.Username()
	sameStatus := user.Status()
	if changed := user.UpdateByAdmin(AdminUpdate{Username: &sameUsername, Status: &sameStatus}, testNow.Add(time.Hour)); changed {
		t.Fatalf("expected identical values to be a no-op")
	}
	if len(user.DomainEvents()) != 0 {
		t.Fatalf("identical update must not record events")
	}
}

func TestUpdateByAdminAppliesChanges(t *testing.T) {
	user := activeUser(t)
	updateAt := testNow.Add(time.Hour)

	username, _ := NewUsername("renamed")
	roles, _ := NewRoleSet([]string{"ROLE_ADMIN"})
	changed := user.UpdateByAdmin(AdminUpdate{Username: &username, Roles: &roles}, updateAt)

	if !changed {
		t.Fatalf("expected update to report a change")
	}
	if user.Username().String() != "renamed" {
		t.Fatalf("expected username replacement")
	}
	if !user.Roles().Contains("ROLE_ADMIN") {
		t.Fatalf("expected role replacement")
	}
	if !user.UpdatedAt().Equal(updateAt) {
		t.Fatalf("expected UpdatedAt touch")
	}

	events := user.DomainEvents()
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if _, ok := events[0].(UserUpdatedByAdmin); !ok {
		t.Fatalf("expected UserUpdatedByAdmin, got %T", events[0])
	}
}

func TestLockoutThreshold(t *testing.T) {
	user := activeUser(t)

	user.RegisterWrongPasswordAttempt(2, testNow)
	if user.IsLocked() {
		t.Fatalf("first attempt must not lock with threshold 2")
	}
	if got := user.Security().TotalWrongPassword; got != 1 {
		t.Fatalf("expected counter 1, got %d", got)
	}

	user.RegisterWrongPasswordAttempt(2, testNow)
	if !user.IsLocked() {
		t.Fatalf("second attempt must lock with threshold 2")
	}

	// Re-blocking an already blocked account keeps counting silently.
	user.ClearDomainEvents()
	user.RegisterWrongPasswordAttempt(2, testNow)
	if got := user.Security().TotalWrongPassword; got != 3 {
		t.Fatalf("expected counter 3, got %d", got)
	}
	if len(user.DomainEvents()) != 0 {
		t.Fatalf("re-block must not record another UserBlocked event")
	}
}

func TestResetWrongPasswordAttemptsUnblocks(t *testing.T) {
	user := activeUser(t)
	user.RegisterWrongPasswordAttempt(1, testNow)
	if !user.IsLocked() {
		t.Fatalf("expected locked account")
	}
	user.ClearDomainEvents()

	resetAt := testNow.Add(time.Hour)
	user.ResetWrongPasswordAttempts(resetAt)

	if user.Security().TotalWrongPassword != 0 {
		t.Fatalf("expected counter zeroed")
	}
	if user.Status() != StatusActive {
		t.Fatalf("expected active status, got %s", user.Status())
	}
	if !user.UpdatedAt().Equal(resetAt) {
		t.Fatalf("expected UpdatedAt touch")
	}

	events := user.DomainEvents()
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if _, ok := events[0].(UserUnblocked); !ok {
		t.Fatalf("expected UserUnblocked, got %T", events[0])
	}
}

func TestResetWrongPasswordAttemptsNoOpAtZero(t *testing.T) {
	user := activeUser(t)
	before := user.UpdatedAt()

	user.ResetWrongPasswordAttempts(testNow.Add(time.Hour))

	if !user.UpdatedAt().Equal(before) {
		t.Fatalf("zero-counter reset must not touch UpdatedAt")
	}
	if len(user.DomainEvents()) != 0 {
		t.Fatalf("zero-counter reset must not record events")
	}
}

func TestChangePasswordAndAvatarTouchAndRecord(t *testing.T) {
	user := activeUser(t)
	changeAt := testNow.Add(time.Minute)

	newHash, _ := NewHashedPassword("replacement")
	user.ChangePassword(newHash, changeAt)
	user.UpdateAvatar("avatars/jdoe.png", changeAt.Add(time.Second))

	if !user.Password().Equal(newHash) {
		t.Fatalf("expected password replacement")
	}
	if user.Avatar() != "avatars/jdoe.png" {
		t.Fatalf("expected avatar replacement")
	}
	if !user.UpdatedAt().Equal(changeAt.Add(time.Second)) {
		t.Fatalf("expected UpdatedAt to follow the later touch")
	}

	events := user.DomainEvents()
	if len(events) != 2 {
		t.Fatalf("expected two events, got %d", len(events))
	}
	if _, ok := events[0].(PasswordChanged); !ok {
		t.Fatalf("expected PasswordChanged first, got %T", events[0])
	}
	if _, ok := events[1].(AvatarUpdated); !ok {
		t.Fatalf("expected AvatarUpdated second, got %T", events[1])
	}
}

func TestDeleteOnlyRecords(t *testing.T) {
	user := activeUser(t)
	before := user.Snapshot()

	user.Delete(testNow.Add(time.Hour))

	after := user.Snapshot()
	if after.Status != before.Status || after.Email != before.Email || !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Fatalf("delete must leave state untouched")
	}

	events := user.DomainEvents()
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if _, ok := events[0].(UserDeleted); !ok {
		t.Fatalf("expected UserDeleted, got %T", events[0])
	}
}

func TestRecordVisit(t *testing.T) {
	user := activeUser(t)
	visitAt := testNow.Add(time.Hour)

	user.RecordVisit(visitAt)

	if !user.LastVisit().Equal(visitAt) {
		t.Fatalf("expected LastVisit update")
	}
	if user.LoginCount() != 1 {
		t.Fatalf("expected login count 1, got %d", user.LoginCount())
	}

	events := user.DomainEvents()
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	visited, ok := events[0].(UserVisited)
	if !ok {
		t.Fatalf("expected UserVisited, got %T", events[0])
	}
	if visited.LoginCount != 1 {
		t.Fatalf("expected login count 1 in event, got %d", visited.LoginCount)
	}
}

func TestUserEqualityFollowsIdentity(t *testing.T) {
	a := registeredUser(t)
	b := registeredUser(t)

	if !a.Equal(b) {
		t.Fatalf("same assigned id must be equal regardless of other state")
	}

	username, _ := NewUsername("na")
	email, _ := NewEmailAddress("x@y.com")
	password, _ := NewHashedPassword("h")
	unassigned1 := Register(UnassignedUserID(), username, email, password, nil, testNow, nil, nil)
	unassigned2 := Register(UnassignedUserID(), username, email, password, nil, testNow, nil, nil)

	if unassigned1.Equal(unassigned2) {
		t.Fatalf("users without assigned ids must never be equal")
	}
	if unassigned1.Equal(a) || a.Equal(unassigned1) {
		t.Fatalf("assigned and unassigned users must not be equal")
	}
}

func TestDrainEventsEmptiesLog(t *testing.T) {
	user := registeredUser(t)

	drained := user.DrainEvents()
	if len(drained) != 1 {
		t.Fatalf("expected one drained event, got %d", len(drained))
	}
	if len(user.DomainEvents()) != 0 {
		t.Fatalf("expected empty log after drain")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	user := activeUser(t)
	user.RegisterWrongPasswordAttempt(5, testNow)
	if err := user.RequestPasswordReset("tok", testNow.Add(time.Hour), testNow); err != nil {
		t.Fatalf("RequestPasswordReset returned error: %v", err)
	}

	restored, err := Reconstitute(user.Snapshot())
	if err != nil {
		t.Fatalf("Reconstitute returned error: %v", err)
	}

	if !restored.Equal(user) {
		t.Fatalf("expected identical identity after round trip")
	}
	if restored.Status() != user.Status() || restored.Security() != user.Security() {
		t.Fatalf("expected identical state after round trip")
	}
	if restored.ResetPassword() != user.ResetPassword() {
		t.Fatalf("expected identical reset token state after round trip")
	}
	if len(restored.DomainEvents()) != 0 {
		t.Fatalf("reconstitution must not record events")
	}
}
