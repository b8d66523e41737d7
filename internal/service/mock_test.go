package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/smorgan/blog-api/internal/apperror"
	"github.com/smorgan/blog-api/internal/model"
	"github.com/smorgan/blog-api/internal/repository"
)

var (
	_ repository.UserRepository = (*mockUserRepo)(nil)
	_ repository.PostRepository = (*mockPostRepo)(nil)
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockUserRepo is an in-memory repository.UserRepository that mirrors the
// sqlite contract: conflict on duplicate id, not-found on missing id,
// idempotent delete. Set forcedErr to make every call fail.
type mockUserRepo struct {
	users     map[int64]model.User
	nextID    int64
	forcedErr error
	calls     []string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]model.User)}
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	m.calls = append(m.calls, "Create")
	if m.forcedErr != nil {
		return m.forcedErr
	}
	if user.ID == 0 {
		m.nextID++
		user.ID = m.nextID
	}
	if _, exists := m.users[user.ID]; exists {
		return apperror.Conflict("user", user.ID)
	}
	m.users[user.ID] = *user
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	m.calls = append(m.calls, "GetByID")
	if m.forcedErr != nil {
		return nil, m.forcedErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return &u, nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]model.User, error) {
	m.calls = append(m.calls, "List")
	if m.forcedErr != nil {
		return nil, m.forcedErr
	}
	users := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	return users, nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *model.User) error {
	m.calls = append(m.calls, "Update")
	if m.forcedErr != nil {
		return m.forcedErr
	}
	if _, ok := m.users[user.ID]; !ok {
		return apperror.NotFound("user", user.ID)
	}
	m.users[user.ID] = *user
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	m.calls = append(m.calls, "Delete")
	if m.forcedErr != nil {
		return m.forcedErr
	}
	delete(m.users, id)
	return nil
}

// mockPostRepo is the post-side twin of mockUserRepo.
type mockPostRepo struct {
	posts     map[int64]model.Post
	nextID    int64
	forcedErr error
	calls     []string
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{posts: make(map[int64]model.Post)}
}

func (m *mockPostRepo) Create(ctx context.Context, post *model.Post) error {
	m.calls = append(m.calls, "Create")
	if m.forcedErr != nil {
		return m.forcedErr
	}
	if post.ID == 0 {
		m.nextID++
		post.ID = m.nextID
	}
	if _, exists := m.posts[post.ID]; exists {
		return apperror.Conflict("post", post.ID)
	}
	m.posts[post.ID] = *post
	return nil
}

func (m *mockPostRepo) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	m.calls = append(m.calls, "GetByID")
	if m.forcedErr != nil {
		return nil, m.forcedErr
	}
	p, ok := m.posts[id]
	if !ok {
		return nil, apperror.NotFound("post", id)
	}
	return &p, nil
}

func (m *mockPostRepo) List(ctx context.Context) ([]model.Post, error) {
	m.calls = append(m.calls, "List")
	if m.forcedErr != nil {
		return nil, m.forcedErr
	}
	posts := make([]model.Post, 0, len(m.posts))
	for _, p := range m.posts {
		posts = append(posts, p)
	}
	return posts, nil
}

func (m *mockPostRepo) ListByCategory(ctx context.Context, category string) ([]model.Post, error) {
	m.calls = append(m.calls, "ListByCategory")
	if m.forcedErr != nil {
		return nil, m.forcedErr
	}
	posts := make([]model.Post, 0)
	for _, p := range m.posts {
		if p.Category != nil && *p.Category == category {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

func (m *mockPostRepo) ListByTag(ctx context.Context, tag string) ([]model.Post, error) {
	m.calls = append(m.calls, "ListByTag")
	if m.forcedErr != nil {
		return nil, m.forcedErr
	}
	posts := make([]model.Post, 0)
	for _, p := range m.posts {
		for _, t := range p.Tags {
			if t == tag {
				posts = append(posts, p)
				break
			}
		}
	}
	return posts, nil
}

func (m *mockPostRepo) Update(ctx context.Context, post *model.Post) error {
	m.calls = append(m.calls, "Update")
	if m.forcedErr != nil {
		return m.forcedErr
	}
	if _, ok := m.posts[post.ID]; !ok {
		return apperror.NotFound("post", post.ID)
	}
	m.posts[post.ID] = *post
	return nil
}

func (m *mockPostRepo) Delete(ctx context.Context, id int64) error {
	m.calls = append(m.calls, "Delete")
	if m.forcedErr != nil {
		return m.forcedErr
	}
	delete(m.posts, id)
	return nil
}
