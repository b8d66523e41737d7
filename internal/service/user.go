// Package service contains the business logic layer.
//
// Handlers parse HTTP and write responses; services validate and orchestrate;
// repositories talk to the store. Services depend on repository interfaces,
// never on the sqlite package, so tests swap in in-memory mocks.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/smorgan/blog-api/internal/apperror"
	"github.com/smorgan/blog-api/internal/model"
	"github.com/smorgan/blog-api/internal/repository"
)

const (
	MaxNameLength  = 200
	MaxEmailLength = 320
)

// UserService handles business logic for user accounts.
type UserService struct {
	repo   repository.UserRepository
	logger *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(repo repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

func validateUserFields(name, email string) error {
	if name == "" {
		return apperror.ValidationFailed("name", "user name is required")
	}
	if len(name) > MaxNameLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("user name must be %d characters or less", MaxNameLength))
	}
	if email == "" {
		return apperror.ValidationFailed("email", "user email is required")
	}
	if len(email) > MaxEmailLength || !strings.Contains(email, "@") {
		return apperror.ValidationFailed("email", "user email is not a valid address")
	}
	return nil
}

// Create validates and stores a new user, returning the record as stored.
// A zero ID lets the store assign one; a negative ID is rejected.
func (s *UserService) Create(ctx context.Context, user *model.User) (*model.User, error) {
	if user.ID < 0 {
		return nil, apperror.ValidationFailed("id", "user id must not be negative")
	}
	user.Name = strings.TrimSpace(user.Name)
	user.Email = strings.TrimSpace(user.Email)
	if err := validateUserFields(user.Name, user.Email); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, user); err != nil {
		s.logger.Error("failed to create user",
			slog.Int64("id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user created", slog.Int64("id", user.ID))
	return user, nil
}

// GetByID retrieves a user. Returns apperror.ErrNotFound when absent.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// Update replaces the mutable fields (name, email, password) of the user
// with the given id. This is a full replace, not a patch: callers send the
// complete desired state.
func (s *UserService) Update(ctx context.Context, id int64, user *model.User) error {
	user.ID = id
	user.Name = strings.TrimSpace(user.Name)
	user.Email = strings.TrimSpace(user.Email)
	if err := validateUserFields(user.Name, user.Email); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info("user updated", slog.Int64("id", id))
	return nil
}

// Delete removes a user. Deleting an id that never existed succeeds.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", slog.Int64("id", id))
	return nil
}
