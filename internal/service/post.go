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
	MaxTitleLength = 300
	MaxBodyLength  = 200000 // ~200KB of markdown
)

// PostService handles business logic for posts.
type PostService struct {
	repo   repository.PostRepository
	logger *slog.Logger
}

// NewPostService creates a PostService.
func NewPostService(repo repository.PostRepository, logger *slog.Logger) *PostService {
	return &PostService{repo: repo, logger: logger}
}

func validatePostFields(title, body string) error {
	if title == "" {
		return apperror.ValidationFailed("title", "post title is required")
	}
	if len(title) > MaxTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("post title must be %d characters or less", MaxTitleLength))
	}
	if body == "" {
		return apperror.ValidationFailed("body", "post body is required")
	}
	if len(body) > MaxBodyLength {
		return apperror.ValidationFailed("body",
			fmt.Sprintf("post body must be %d characters or less", MaxBodyLength))
	}
	return nil
}

// Create validates and stores a new post, returning the record as stored
// (including the assigned id and created_at when the caller omitted them).
func (s *PostService) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	if post.ID < 0 {
		return nil, apperror.ValidationFailed("id", "post id must not be negative")
	}
	post.Title = strings.TrimSpace(post.Title)
	if err := validatePostFields(post.Title, post.Body); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, post); err != nil {
		s.logger.Error("failed to create post",
			slog.Int64("id", post.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.Int64("id", post.ID),
		slog.String("title", post.Title),
	)
	return post, nil
}

// GetByID retrieves a post. Returns apperror.ErrNotFound when absent.
func (s *PostService) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all posts.
func (s *PostService) List(ctx context.Context) ([]model.Post, error) {
	posts, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list posts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

// ListByCategory returns the posts filed under a category.
func (s *PostService) ListByCategory(ctx context.Context, category string) ([]model.Post, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, apperror.ValidationFailed("category", "category is required")
	}
	posts, err := s.repo.ListByCategory(ctx, category)
	if err != nil {
		s.logger.Error("failed to list posts by category",
			slog.String("category", category),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing posts by category: %w", err)
	}
	return posts, nil
}

// ListByTag returns the posts carrying a tag.
func (s *PostService) ListByTag(ctx context.Context, tag string) ([]model.Post, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, apperror.ValidationFailed("tag", "tag is required")
	}
	posts, err := s.repo.ListByTag(ctx, tag)
	if err != nil {
		s.logger.Error("failed to list posts by tag",
			slog.String("tag", tag),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing posts by tag: %w", err)
	}
	return posts, nil
}

// Update replaces the mutable fields of the post with the given id: a full
// replace of title, body and the optional display fields. id and created_at
// never change.
func (s *PostService) Update(ctx context.Context, id int64, post *model.Post) error {
	post.ID = id
	post.Title = strings.TrimSpace(post.Title)
	if err := validatePostFields(post.Title, post.Body); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, post); err != nil {
		return err
	}

	s.logger.Info("post updated", slog.Int64("id", id))
	return nil
}

// Delete removes a post. Deleting an id that never existed succeeds.
func (s *PostService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("post deleted", slog.Int64("id", id))
	return nil
}
