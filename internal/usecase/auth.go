package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eddy-neller/shop-api-sub001/internal/core/domain"
	"github.com/eddy-neller/shop-api-sub001/internal/core/port"
)

// AuthService verifies credentials and drives the brute-force lockout
// counters.
type AuthService struct {
	users     port.UserRepository
	publisher port.EventPublisher
	hasher    port.PasswordHasher
	logger    *zap.Logger

	maxWrongPasswords int
	now               func() time.Time
}

// NewAuthService constructs an authentication service.
func NewAuthService(users port.UserRepository, publisher port.EventPublisher, hasher port.PasswordHasher, maxWrongPasswords int, logger *zap.Logger) *AuthService {
	if maxWrongPasswords <= 0 {
		maxWrongPasswords = 5
	}
	return &AuthService{
		users:             users,
		publisher:         publisher,
		hasher:            hasher,
		logger:            logger,
		maxWrongPasswords: maxWrongPasswords,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// WithClock allows tests to override the clock used by the service.
func (s *AuthService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Authenticate checks the credentials against the stored hash. Failures
// feed the per-account wrong-password counter; crossing the threshold
// blocks the account. Success clears the counter and records the visit.
func (s *AuthService) Authenticate(ctx context.Context, emailAddress, password string) (*domain.User, error) {
	email, err := domain.NewEmailAddress(emailAddress)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.IsLocked() {
		return nil, domain.ErrAccountLocked
	}

	now := s.now()
	ok, err := s.hasher.Verify(password, user.Password().String())
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		user.RegisterWrongPasswordAttempt(s.maxWrongPasswords, now)
		if err := persistAndPublish(ctx, s.users, s.publisher, s.logger, user); err != nil {
			return nil, err
		}
		if user.IsLocked() {
			return nil, domain.ErrAccountLocked
		}
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive() {
		return nil, ErrAccountNotActive
	}

	user.ResetWrongPasswordAttempts(now)
	user.RecordVisit(now)

	if err := persistAndPublish(ctx, s.users, s.publisher, s.logger, user); err != nil {
		return nil, err
	}

	return user, nil
}
