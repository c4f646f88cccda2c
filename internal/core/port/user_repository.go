package port

import (
	"context"

	"github.com/eddy-neller/shop-api-sub001/internal/core/domain"
)

// ListUsersQuery narrows and pages an admin user listing.
type ListUsersQuery struct {
	Status *domain.UserStatus
	Search string
	Limit  int
	Offset int
}

// UserRepository exposes persistence behavior for the user aggregate.
type UserRepository interface {
	FindByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	FindByEmail(ctx context.Context, email domain.EmailAddress) (*domain.User, error)
	FindByResetToken(ctx context.Context, token string) (*domain.User, error)
	Save(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id domain.UserID) error
	List(ctx context.Context, query ListUsersQuery) ([]*domain.User, int, error)
}
