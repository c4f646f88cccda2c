package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eddy-neller/shop-api-sub001/internal/core/domain"
	"github.com/eddy-neller/shop-api-sub001/internal/core/port"
	"github.com/eddy-neller/shop-api-sub001/internal/repository"
)

const defaultActivationTTL = 24 * time.Hour

// RegistrationService handles new account onboarding and email activation.
type RegistrationService struct {
	users     port.UserRepository
	publisher port.EventPublisher
	hasher    port.PasswordHasher
	policy    port.PasswordPolicyValidator
	tokens    port.TokenGenerator
	logger    *zap.Logger

	activationTTL time.Duration
	now           func() time.Time
}

// NewRegistrationService constructs a registration service.
func NewRegistrationService(users port.UserRepository, publisher port.EventPublisher, hasher port.PasswordHasher, policy port.PasswordPolicyValidator, tokens port.TokenGenerator, logger *zap.Logger) *RegistrationService {
	return &RegistrationService{
		users:         users,
		publisher:     publisher,
		hasher:        hasher,
		policy:        policy,
		tokens:        tokens,
		logger:        logger,
		activationTTL: defaultActivationTTL,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// WithClock allows tests to override the clock used by the service.
func (s *RegistrationService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// WithActivationTTL overrides the activation token lifetime.
func (s *RegistrationService) WithActivationTTL(ttl time.Duration) {
	if ttl > 0 {
		s.activationTTL = ttl
	}
}

// RegisterInput carries the self-service signup fields.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	Firstname string
	Lastname  string
}

// RegistrationResult couples the created user with the activation token
// that must be delivered by mail.
type RegistrationResult struct {
	User            *domain.User
	ActivationToken string
	ExpiresAt       time.Time
}

// Register creates an inactive account and issues its first activation
// token.
func (s *RegistrationService) Register(ctx context.Context, input RegisterInput) (*RegistrationResult, error) {
	username, err := domain.NewUsername(input.Username)
	if err != nil {
		return nil, err
	}
	email, err := domain.NewEmailAddress(input.Email)
	if err != nil {
		return nil, err
	}

	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	if err := s.policy.Validate(input.Password, input.Email, input.Username); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	encoded, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	password, err := domain.NewHashedPassword(encoded)
	if err != nil {
		return nil, err
	}

	var firstname *domain.Firstname
	if input.Firstname != "" {
		parsed, err := domain.NewFirstname(input.Firstname)
		if err != nil {
			return nil, err
		}
		firstname = &parsed
	}
	var lastname *domain.Lastname
	if input.Lastname != "" {
		parsed, err := domain.NewLastname(input.Lastname)
		if err != nil {
			return nil, err
		}
		lastname = &parsed
	}

	id, err := domain.NewUserID(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("generate user id: %w", err)
	}

	now := s.now()
	user := domain.Register(id, username, email, password, nil, now, firstname, lastname)

	token, err := s.tokens.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate activation token: %w", err)
	}
	expiresAt := now.Add(s.activationTTL)
	if err := user.RequestActivation(token, expiresAt, now); err != nil {
		return nil, err
	}

	if err := persistAndPublish(ctx, s.users, s.publisher, s.logger, user); err != nil {
		return nil, err
	}

	return &RegistrationResult{User: user, ActivationToken: token, ExpiresAt: expiresAt}, nil
}

// CreateByAdminInput carries the admin-created account fields.
type CreateByAdminInput struct {
	Username  string
	Email     string
	Password  string
	Firstname string
	Lastname  string
	Roles     []string
	Status    string
}

// CreateByAdmin creates an account with caller-supplied roles and status,
// bypassing activation.
func (s *RegistrationService) CreateByAdmin(ctx context.Context, input CreateByAdminInput) (*domain.User, error) {
	username, err := domain.NewUsername(input.Username)
	if err != nil {
		return nil, err
	}
	email, err := domain.NewEmailAddress(input.Email)
	if err != nil {
		return nil, err
	}

	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	if err := s.policy.Validate(input.Password, input.Email, input.Username); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}
	encoded, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	password, err := domain.NewHashedPassword(encoded)
	if err != nil {
		return nil, err
	}

	roles, err := domain.NewRoleSet(input.Roles)
	if err != nil {
		return nil, err
	}
	status := domain.StatusActive
	if input.Status != "" {
		status, err = domain.ParseUserStatus(input.Status)
		if err != nil {
			return nil, err
		}
	}

	var firstname *domain.Firstname
	if input.Firstname != "" {
		parsed, err := domain.NewFirstname(input.Firstname)
		if err != nil {
			return nil, err
		}
		firstname = &parsed
	}
	var lastname *domain.Lastname
	if input.Lastname != "" {
		parsed, err := domain.NewLastname(input.Lastname)
		if err != nil {
			return nil, err
		}
		lastname = &parsed
	}

	id, err := domain.NewUserID(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("generate user id: %w", err)
	}

	user := domain.CreateByAdmin(id, username, email, password, roles, status, s.now(), firstname, lastname, nil)

	if err := persistAndPublish(ctx, s.users, s.publisher, s.logger, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ActivationResult couples the fresh activation token with its expiry.
type ActivationResult struct {
	Token     string
	ExpiresAt time.Time
}

// RequestActivation issues a fresh activation token for an inactive
// account, subject to the per-user request ceiling.
func (s *RegistrationService) RequestActivation(ctx context.Context, emailAddress string) (*ActivationResult, error) {
	email, err := domain.NewEmailAddress(emailAddress)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.IsActive() {
		return nil, ErrAccountAlreadyActive
	}

	token, err := s.tokens.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate activation token: %w", err)
	}

	now := s.now()
	expiresAt := now.Add(s.activationTTL)
	if err := user.RequestActivation(token, expiresAt, now); err != nil {
		return nil, err
	}

	if err := persistAndPublish(ctx, s.users, s.publisher, s.logger, user); err != nil {
		return nil, err
	}

	return &ActivationResult{Token: token, ExpiresAt: expiresAt}, nil
}

// Activate consumes an activation token and switches the account to
// active.
func (s *RegistrationService) Activate(ctx context.Context, emailAddress, token string) (*domain.User, error) {
	email, err := domain.NewEmailAddress(emailAddress)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := user.Activate(token, s.now()); err != nil {
		return nil, err
	}

	if err := persistAndPublish(ctx, s.users, s.publisher, s.logger, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *RegistrationService) ensureEmailFree(ctx context.Context, email domain.EmailAddress) error {
	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return ErrEmailAlreadyUsed
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}
