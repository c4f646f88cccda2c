package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eddy-neller/shop-api-sub001/internal/core/domain"
)

func newRegistrationService(repo *userRepoMock, publisher *publisherMock) *RegistrationService {
	gen := &tokenGenMock{}
	svc := NewRegistrationService(repo, publisher, hasherMock{}, policyMock{}, gen, nil)
	svc.WithClock(testClock)
	return svc
}

func TestRegisterCreatesInactiveUserWithActivationToken(t *testing.T) {
	repo := newUserRepoMock()
	publisher := &publisherMock{}
	svc := newRegistrationService(repo, publisher)

	result, err := svc.Register(context.Background(), RegisterInput{
		Username: "jdoe",
		Email:    "JDoe@Example.com",
		Password: "S3curePass!",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if result.User.Status() != domain.StatusInactive {
		t.Fatalf("expected inactive status, got %s", result.User.Status())
	}
	if result.User.Email().String() != "jdoe@example.com" {
		t.Fatalf("expected normalized email, got %s", result.User.Email().String())
	}
	if result.ActivationToken != "token-1" {
		t.Fatalf("expected generated token, got %s", result.ActivationToken)
	}
	if !result.ExpiresAt.Equal(testClock().Add(24 * time.Hour)) {
		t.Fatalf("expected 24h activation TTL, got %v", result.ExpiresAt)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("expected one save, got %d", len(repo.saved))
	}

	names := publisher.eventNames()
	if len(names) != 2 || names[0] != "user.registered" || names[1] != "user.activation.requested" {
		t.Fatalf("unexpected events: %v", names)
	}
	if len(result.User.DomainEvents()) != 0 {
		t.Fatalf("expected event log drained after publish")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := newUserRepoMock()
	publisher := &publisherMock{}
	svc := newRegistrationService(repo, publisher)

	if _, err := svc.Register(context.Background(), RegisterInput{
		Username: "jdoe",
		Email:    "jdoe@example.com",
		Password: "S3curePass!",
	}); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "other",
		Email:    "JDOE@example.com",
		Password: "S3curePass!",
	})
	if !errors.Is(err, ErrEmailAlreadyUsed) {
		t.Fatalf("expected ErrEmailAlreadyUsed, got %v", err)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	repo := newUserRepoMock()
	svc := NewRegistrationService(repo, &publisherMock{}, hasherMock{}, policyMock{err: errors.New("too weak")}, &tokenGenMock{}, nil)
	svc.WithClock(testClock)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "jdoe",
		Email:    "jdoe@example.com",
		Password: "weak",
	})
	if !errors.Is(err, ErrPasswordPolicyViolation) {
		t.Fatalf("expected ErrPasswordPolicyViolation, got %v", err)
	}
	if len(repo.saved) != 0 {
		t.Fatalf("rejected registration must not be saved")
	}
}

func TestCreateByAdminDefaultsToActive(t *testing.T) {
	repo := newUserRepoMock()
	publisher := &publisherMock{}
	svc := newRegistrationService(repo, publisher)

	user, err := svc.CreateByAdmin(context.Background(), CreateByAdminInput{
		Username: "staff",
		Email:    "staff@example.com",
		Password: "S3curePass!",
		Roles:    []string{"ROLE_ADMIN"},
	})
	if err != nil {
		t.Fatalf("CreateByAdmin returned error: %v", err)
	}

	if user.Status() != domain.StatusActive {
		t.Fatalf("expected active status, got %s", user.Status())
	}
	if !user.Roles().Contains("ROLE_ADMIN") {
		t.Fatalf("expected supplied roles")
	}

	names := publisher.eventNames()
	if len(names) != 1 || names[0] != "user.created_by_admin" {
		t.Fatalf("unexpected events: %v", names)
	}
}

func TestRequestActivationCeiling(t *testing.T) {
	repo := newUserRepoMock()
	publisher := &publisherMock{}
	svc := newRegistrationService(repo, publisher)

	if _, err := svc.Register(context.Background(), RegisterInput{
		Username: "jdoe",
		Email:    "jdoe@example.com",
		Password: "S3curePass!",
	}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	// Registration used one request; two more reach the ceiling.
	for i := 0; i < 2; i++ {
		if _, err := svc.RequestActivation(context.Background(), "jdoe@example.com"); err != nil {
			t.Fatalf("RequestActivation returned error: %v", err)
		}
	}

	_, err := svc.RequestActivation(context.Background(), "jdoe@example.com")
	var rateErr *domain.RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
}

func TestActivateFlow(t *testing.T) {
	repo := newUserRepoMock()
	publisher := &publisherMock{}
	svc := newRegistrationService(repo, publisher)

	result, err := svc.Register(context.Background(), RegisterInput{
		Username: "jdoe",
		Email:    "jdoe@example.com",
		Password: "S3curePass!",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	user, err := svc.Activate(context.Background(), "jdoe@example.com", result.ActivationToken)
	if err != nil {
		t.Fatalf("Activate returned error: %v", err)
	}
	if !user.IsActive() {
		t.Fatalf("expected active user after activation")
	}

	// A second activation with the consumed token fails as expired.
	_, err = svc.Activate(context.Background(), "jdoe@example.com", result.ActivationToken)
	if fault, ok := domain.IsTokenFault(err); !ok || fault != domain.TokenExpired {
		t.Fatalf("expected expired fault, got %v", err)
	}

	_, err = svc.RequestActivation(context.Background(), "jdoe@example.com")
	if !errors.Is(err, ErrAccountAlreadyActive) {
		t.Fatalf("expected ErrAccountAlreadyActive, got %v", err)
	}
}

func TestActivateRejectsWrongToken(t *testing.T) {
	repo := newUserRepoMock()
	svc := newRegistrationService(repo, &publisherMock{})

	if _, err := svc.Register(context.Background(), RegisterInput{
		Username: "jdoe",
		Email:    "jdoe@example.com",
		Password: "S3curePass!",
	}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	_, err := svc.Activate(context.Background(), "jdoe@example.com", "forged")
	if fault, ok := domain.IsTokenFault(err); !ok || fault != domain.TokenInvalid {
		t.Fatalf("expected invalid fault, got %v", err)
	}
}
