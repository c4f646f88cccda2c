package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eddy-neller/shop-api-sub001/internal/core/domain"
	"github.com/eddy-neller/shop-api-sub001/internal/core/port"
)

// UserService covers profile reads and the admin-facing lifecycle
// operations.
type UserService struct {
	users     port.UserRepository
	publisher port.EventPublisher
	hasher    port.PasswordHasher
	policy    port.PasswordPolicyValidator
	logger    *zap.Logger

	now func() time.Time
}

// NewUserService constructs a user service.
func NewUserService(users port.UserRepository, publisher port.EventPublisher, hasher port.PasswordHasher, policy port.PasswordPolicyValidator, logger *zap.Logger) *UserService {
	return &UserService{
		users:     users,
		publisher: publisher,
		hasher:    hasher,
		policy:    policy,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock allows tests to override the clock used by the service.
func (s *UserService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Get loads a user by identifier.
func (s *UserService) Get(ctx context.Context, userID string) (*domain.User, error) {
	id, err := domain.NewUserID(userID)
	if err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, id)
}

// List returns users matching the query plus the unpaged total.
func (s *UserService) List(ctx context.Context, query port.ListUsersQuery) ([]*domain.User, int, error) {
	return s.users.List(ctx, query)
}

// AdminUpdateInput carries the optional admin-editable fields; nil fields
// are left untouched.
type AdminUpdateInput struct {
	Username  *string
	Email     *string
	Firstname *string
	Lastname  *string
	Roles     []string
	Status    *string
	Password  *string
}

// UpdateByAdmin applies the supplied fields. When nothing actually changes
// the aggregate stays untouched and no event goes out.
func (s *UserService) UpdateByAdmin(ctx context.Context, userID string, input AdminUpdateInput) (*domain.User, error) {
	id, err := domain.NewUserID(userID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var update domain.AdminUpdate

	if input.Username != nil {
		username, err := domain.NewUsername(*input.Username)
		if err != nil {
			return nil, err
		}
		update.Username = &username
	}
	if input.Email != nil {
		email, err := domain.NewEmailAddress(*input.Email)
		if err != nil {
			return nil, err
		}
		update.Email = &email
	}
	if input.Firstname != nil {
		firstname, err := domain.NewFirstname(*input.Firstname)
		if err != nil {
			return nil, err
		}
		update.Firstname = &firstname
	}
	if input.Lastname != nil {
		lastname, err := domain.NewLastname(*input.Lastname)
		if err != nil {
			return nil, err
		}
		update.Lastname = &lastname
	}
	if input.Roles != nil {
		roles, err := domain.NewRoleSet(input.Roles)
		if err != nil {
			return nil, err
		}
		update.Roles = &roles
	}
	if input.Status != nil {
		status, err := domain.ParseUserStatus(*input.Status)
		if err != nil {
			return nil, err
		}
		update.Status = &status
	}
	if input.Password != nil {
		if err := s.policy.Validate(*input.Password, user.Email().String(), user.Username().String()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
		}
		encoded, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		password, err := domain.NewHashedPassword(encoded)
		if err != nil {
			return nil, err
		}
		update.Password = &password
	}

	if changed := user.UpdateByAdmin(update, s.now()); !changed {
		return user, nil
	}

	if err := persistAndPublish(ctx, s.users, s.publisher, s.logger, user); err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateAvatar replaces the avatar reference.
func (s *UserService) UpdateAvatar(ctx context.Context, userID, avatar string) (*domain.User, error) {
	id, err := domain.NewUserID(userID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.UpdateAvatar(avatar, s.now())

	if err := persistAndPublish(ctx, s.users, s.publisher, s.logger, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Unblock lifts a brute-force lockout and zeroes the wrong-password
// counter.
func (s *UserService) Unblock(ctx context.Context, userID string) (*domain.User, error) {
	id, err := domain.NewUserID(userID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.ResetWrongPasswordAttempts(s.now())

	if err := persistAndPublish(ctx, s.users, s.publisher, s.logger, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Delete records the removal and erases the row.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	id, err := domain.NewUserID(userID)
	if err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	user.Delete(s.now())

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	events := user.DrainEvents()
	if s.publisher != nil && len(events) > 0 {
		if err := s.publisher.Publish(ctx, events...); err != nil && s.logger != nil {
			s.logger.Warn("failed to publish domain events",
				zap.String("user_id", user.ID().String()),
				zap.Error(err),
			)
		}
	}

	return nil
}
