package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eddy-neller/shop-api-sub001/internal/core/domain"
	"github.com/eddy-neller/shop-api-sub001/internal/core/port"
)

const defaultResetTTL = 15 * time.Minute

// PasswordResetService handles forgotten-password flows and direct
// password changes.
type PasswordResetService struct {
	users     port.UserRepository
	publisher port.EventPublisher
	hasher    port.PasswordHasher
	policy    port.PasswordPolicyValidator
	tokens    port.TokenGenerator
	logger    *zap.Logger

	resetTTL          time.Duration
	maxWrongPasswords int
	now               func() time.Time
}

// NewPasswordResetService constructs a password reset service.
func NewPasswordResetService(users port.UserRepository, publisher port.EventPublisher, hasher port.PasswordHasher, policy port.PasswordPolicyValidator, tokens port.TokenGenerator, maxWrongPasswords int, logger *zap.Logger) *PasswordResetService {
	if maxWrongPasswords <= 0 {
		maxWrongPasswords = 5
	}
	return &PasswordResetService{
		users:             users,
		publisher:         publisher,
		hasher:            hasher,
		policy:            policy,
		tokens:            tokens,
		logger:            logger,
		resetTTL:          defaultResetTTL,
		maxWrongPasswords: maxWrongPasswords,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// WithClock allows tests to override the clock used by the service.
func (s *PasswordResetService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// WithTTL overrides the reset token lifetime.
func (s *PasswordResetService) WithTTL(ttl time.Duration) {
	if ttl > 0 {
		s.resetTTL = ttl
	}
}

// ResetRequestResult couples the fresh reset token with its expiry. The
// token goes out by mail, never in the API response.
type ResetRequestResult struct {
	Token     string
	ExpiresAt time.Time
}

// RequestPasswordReset issues a reset token for the account owning the
// email address. Callers should mask a not-found error to avoid account
// enumeration.
func (s *PasswordResetService) RequestPasswordReset(ctx context.Context, emailAddress string) (*ResetRequestResult, error) {
	email, err := domain.NewEmailAddress(emailAddress)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate reset token: %w", err)
	}

	now := s.now()
	expiresAt := now.Add(s.resetTTL)
	if err := user.RequestPasswordReset(token, expiresAt, now); err != nil {
		return nil, err
	}

	if err := persistAndPublish(ctx, s.users, s.publisher, s.logger, user); err != nil {
		return nil, err
	}

	return &ResetRequestResult{Token: token, ExpiresAt: expiresAt}, nil
}

// CompletePasswordReset consumes a live reset token and installs the new
// password.
func (s *PasswordResetService) CompletePasswordReset(ctx context.Context, token, newPassword string) error {
	user, err := s.users.FindByResetToken(ctx, token)
	if err != nil {
		return err
	}

	if err := s.policy.Validate(newPassword, user.Email().String(), user.Username().String()); err != nil {
		return fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	encoded, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	password, err := domain.NewHashedPassword(encoded)
	if err != nil {
		return err
	}

	if err := user.CompletePasswordReset(token, password, s.now()); err != nil {
		return err
	}

	return persistAndPublish(ctx, s.users, s.publisher, s.logger, user)
}

// ChangePassword replaces the password of an authenticated user after
// verifying the current one. A wrong current password counts toward the
// lockout threshold.
func (s *PasswordResetService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	id, err := domain.NewUserID(userID)
	if err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user.IsLocked() {
		return domain.ErrAccountLocked
	}

	now := s.now()
	ok, err := s.hasher.Verify(currentPassword, user.Password().String())
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		user.RegisterWrongPasswordAttempt(s.maxWrongPasswords, now)
		if err := persistAndPublish(ctx, s.users, s.publisher, s.logger, user); err != nil {
			return err
		}
		if user.IsLocked() {
			return domain.ErrAccountLocked
		}
		return ErrInvalidCredentials
	}

	if err := s.policy.Validate(newPassword, user.Email().String(), user.Username().String()); err != nil {
		return fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	encoded, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	password, err := domain.NewHashedPassword(encoded)
	if err != nil {
		return err
	}

	user.ResetWrongPasswordAttempts(now)
	user.ChangePassword(password, now)

	return persistAndPublish(ctx, s.users, s.publisher, s.logger, user)
}
