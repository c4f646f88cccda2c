package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/eddy-neller/shop-api-sub001/internal/core/domain"
	"github.com/eddy-neller/shop-api-sub001/internal/core/port"
	"github.com/eddy-neller/shop-api-sub001/internal/repository"
)

var testClock = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

type userRepoMock struct {
	users     map[string]*domain.User
	saved     []*domain.User
	deletedID string
	saveErr   error

	listUsers []*domain.User
	listTotal int
}

func newUserRepoMock(users ...*domain.User) *userRepoMock {
	m := &userRepoMock{users: make(map[string]*domain.User)}
	for _, user := range users {
		m.users[user.ID().String()] = user
	}
	return m
}

func (m *userRepoMock) FindByID(_ context.Context, id domain.UserID) (*domain.User, error) {
	if user, ok := m.users[id.String()]; ok {
		return user, nil
	}
	return nil, repository.ErrNotFound
}

func (m *userRepoMock) FindByEmail(_ context.Context, email domain.EmailAddress) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email().Equal(email) {
			return user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *userRepoMock) FindByResetToken(_ context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, repository.ErrNotFound
	}
	for _, user := range m.users {
		if user.ResetPassword().Token == token {
			return user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *userRepoMock) Save(_ context.Context, user *domain.User) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, user)
	m.users[user.ID().String()] = user
	return nil
}

func (m *userRepoMock) Delete(_ context.Context, id domain.UserID) error {
	if _, ok := m.users[id.String()]; !ok {
		return repository.ErrNotFound
	}
	delete(m.users, id.String())
	m.deletedID = id.String()
	return nil
}

func (m *userRepoMock) List(context.Context, port.ListUsersQuery) ([]*domain.User, int, error) {
	return m.listUsers, m.listTotal, nil
}

type publisherMock struct {
	events []domain.DomainEvent
	err    error
}

func (m *publisherMock) Publish(_ context.Context, events ...domain.DomainEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, events...)
	return nil
}

func (m *publisherMock) eventNames() []string {
	names := make([]string, len(m.events))
	for i, event := range m.events {
		names[i] = event.EventName()
	}
	return names
}

type hasherMock struct{}

func (hasherMock) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (hasherMock) Verify(password, encoded string) (bool, error) {
	return strings.TrimPrefix(encoded, "hashed:") == password, nil
}

type policyMock struct {
	err error
}

func (m policyMock) Validate(string, ...string) error {
	return m.err
}

type tokenGenMock struct {
	count int
}

func (m *tokenGenMock) Generate() (string, error) {
	m.count++
	return fmt.Sprintf("token-%d", m.count), nil
}
