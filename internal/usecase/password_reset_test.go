package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eddy-neller/shop-api-sub001/internal/core/domain"
	"github.com/eddy-neller/shop-api-sub001/internal/repository"
)

func seedActiveUser(t *testing.T, repo *userRepoMock) *domain.User {
	t.Helper()

	id, err := domain.NewUserID("7d444840-9dc0-41a1-b227-fcf2045ec1b3")
	if err != nil {
		t.Fatalf("NewUserID returned error: %v", err)
	}
	username, _ := domain.NewUsername("jdoe")
	email, _ := domain.NewEmailAddress("jdoe@example.com")
	password, _ := domain.NewHashedPassword("hashed:OldPass123!")

	user := domain.CreateByAdmin(id, username, email, password, domain.DefaultRoleSet(), domain.StatusActive, testClock(), nil, nil, nil)
	user.ClearDomainEvents()
	repo.users[id.String()] = user
	return user
}

func newResetService(repo *userRepoMock, publisher *publisherMock) *PasswordResetService {
	svc := NewPasswordResetService(repo, publisher, hasherMock{}, policyMock{}, &tokenGenMock{}, 3, nil)
	svc.WithClock(testClock)
	return svc
}

func TestRequestPasswordReset(t *testing.T) {
	repo := newUserRepoMock()
	publisher := &publisherMock{}
	user := seedActiveUser(t, repo)
	svc := newResetService(repo, publisher)

	result, err := svc.RequestPasswordReset(context.Background(), "jdoe@example.com")
	if err != nil {
		t.Fatalf("RequestPasswordReset returned error: %v", err)
	}

	if result.Token != "token-1" {
		t.Fatalf("expected generated token, got %s", result.Token)
	}
	if !result.ExpiresAt.Equal(testClock().Add(15 * time.Minute)) {
		t.Fatalf("expected 15m reset TTL, got %v", result.ExpiresAt)
	}
	if user.ResetPassword().MailSent != 1 {
		t.Fatalf("expected mail counter 1, got %d", user.ResetPassword().MailSent)
	}

	names := publisher.eventNames()
	if len(names) != 1 || names[0] != "user.password_reset.requested" {
		t.Fatalf("unexpected events: %v", names)
	}
}

func TestRequestPasswordResetUnknownEmail(t *testing.T) {
	repo := newUserRepoMock()
	svc := newResetService(repo, &publisherMock{})

	_, err := svc.RequestPasswordReset(context.Background(), "ghost@example.com")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCompletePasswordReset(t *testing.T) {
	repo := newUserRepoMock()
	publisher := &publisherMock{}
	user := seedActiveUser(t, repo)
	svc := newResetService(repo, publisher)

	result, err := svc.RequestPasswordReset(context.Background(), "jdoe@example.com")
	if err != nil {
		t.Fatalf("RequestPasswordReset returned error: %v", err)
	}

	if err := svc.CompletePasswordReset(context.Background(), result.Token, "NewPass456!"); err != nil {
		t.Fatalf("CompletePasswordReset returned error: %v", err)
	}

	if user.Password().String() != "hashed:NewPass456!" {
		t.Fatalf("expected replaced password, got %s", user.Password().String())
	}
	if user.ResetPassword() != (domain.ResetPassword{}) {
		t.Fatalf("expected cleared reset state")
	}

	names := publisher.eventNames()
	if len(names) != 2 || names[1] != "user.password_reset.completed" {
		t.Fatalf("unexpected events: %v", names)
	}

	// The consumed token no longer resolves to a user.
	err = svc.CompletePasswordReset(context.Background(), result.Token, "NewPass789!")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for consumed token, got %v", err)
	}
}

func TestCompletePasswordResetExpiredToken(t *testing.T) {
	repo := newUserRepoMock()
	seedActiveUser(t, repo)
	svc := newResetService(repo, &publisherMock{})

	result, err := svc.RequestPasswordReset(context.Background(), "jdoe@example.com")
	if err != nil {
		t.Fatalf("RequestPasswordReset returned error: %v", err)
	}

	svc.WithClock(func() time.Time { return testClock().Add(time.Hour) })

	err = svc.CompletePasswordReset(context.Background(), result.Token, "NewPass456!")
	if fault, ok := domain.IsTokenFault(err); !ok || fault != domain.TokenExpired {
		t.Fatalf("expected expired fault, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	repo := newUserRepoMock()
	publisher := &publisherMock{}
	user := seedActiveUser(t, repo)
	svc := newResetService(repo, publisher)

	if err := svc.ChangePassword(context.Background(), user.ID().String(), "OldPass123!", "NewPass456!"); err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}

	if user.Password().String() != "hashed:NewPass456!" {
		t.Fatalf("expected replaced password, got %s", user.Password().String())
	}

	names := publisher.eventNames()
	if len(names) != 1 || names[0] != "user.password.changed" {
		t.Fatalf("unexpected events: %v", names)
	}
}

func TestChangePasswordWrongCurrentCountsTowardLockout(t *testing.T) {
	repo := newUserRepoMock()
	publisher := &publisherMock{}
	user := seedActiveUser(t, repo)
	svc := newResetService(repo, publisher)

	for i := 0; i < 2; i++ {
		err := svc.ChangePassword(context.Background(), user.ID().String(), "wrong", "NewPass456!")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	}

	// Third wrong attempt crosses the threshold of 3.
	err := svc.ChangePassword(context.Background(), user.ID().String(), "wrong", "NewPass456!")
	if !errors.Is(err, domain.ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}
	if !user.IsLocked() {
		t.Fatalf("expected locked account")
	}

	// Locked accounts refuse further changes outright.
	err = svc.ChangePassword(context.Background(), user.ID().String(), "OldPass123!", "NewPass456!")
	if !errors.Is(err, domain.ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}
}
