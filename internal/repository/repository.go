// Package repository declares the data-access interfaces the service layer
// depends on. The sqlite subpackage provides the real implementation; tests
// substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/smorgan/blog-api/internal/model"
)

// UserRepository is CRUD over user records.
//
// GetByID returns apperror.ErrNotFound for a missing row; connection and
// query failures are the only "real" errors. Delete is idempotent: deleting
// an id that never existed succeeds.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id int64) error
}

// PostRepository is CRUD over posts, plus the category/tag listing the
// public site uses for its archive pages. Same error contract as
// UserRepository.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id int64) (*model.Post, error)
	List(ctx context.Context) ([]model.Post, error)
	ListByCategory(ctx context.Context, category string) ([]model.Post, error)
	ListByTag(ctx context.Context, tag string) ([]model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id int64) error
}
