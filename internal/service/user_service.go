package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/session-gateway/internal/auth"
	"github.com/spec-kit/session-gateway/internal/domain"
	"github.com/spec-kit/session-gateway/internal/events"
	"github.com/spec-kit/session-gateway/internal/repository"
	apperrors "github.com/spec-kit/session-gateway/pkg/util/errorutil"
)

const (
	defaultPageSize = 30
	maxPageSize     = 100
)

// UserService manages credential records.
type UserService struct {
	users      repository.UserRepository
	hasher     auth.PasswordHasher
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, hasher auth.PasswordHasher, dispatcher events.Dispatcher, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, hasher: hasher, dispatcher: dispatcher, logger: logger}
}

// CreateUser hashes the password and stores a new credential record.
func (s *UserService) CreateUser(ctx context.Context, username, password string, role domain.Role) (*domain.User, error) {
	username = strings.TrimSpace(username)
	details := map[string]any{}
	if username == "" {
		details["username"] = "required"
	}
	if password == "" {
		details["password"] = "required"
	}
	if !role.Valid() {
		details["role"] = "unknown role"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid user", details)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperrors.NewHashError(err)
	}

	user := &domain.User{Username: username, PasswordHash: hash, Role: role}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, apperrors.NewConflict("username already taken", map[string]any{"username": username})
		}
		return nil, apperrors.NewBackendError(err)
	}

	if s.dispatcher != nil {
		event := events.NewEvent(events.EventUserCreated, &user.ID, events.UserCreatedPayload{Username: user.Username, Role: int16(user.Role)})
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
		}
	}
	return user, nil
}

// EnsureAdmin creates an admin account unless username already exists.
// It reports whether a new account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	existing, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return false, apperrors.NewBackendError(err)
	}
	if existing != nil {
		return false, nil
	}

	user, err := s.CreateUser(ctx, username, password, domain.RoleAdmin)
	if err != nil {
		return false, err
	}
	s.logger.Info("admin account seeded", zap.String("username", user.Username))
	return true, nil
}

// GetUser loads a user by id.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id.String()})
		}
		return nil, apperrors.NewBackendError(err)
	}
	return user, nil
}

// ListUsers pages through users, optionally filtered by a username keyword.
func (s *UserService) ListUsers(ctx context.Context, filter domain.UserFilter) ([]*domain.User, error) {
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	filter.Keyword = strings.TrimSpace(filter.Keyword)

	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewBackendError(err)
	}
	return users, nil
}
