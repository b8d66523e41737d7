package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/smorgan/blog-api/internal/apperror"
	"github.com/smorgan/blog-api/internal/model"
	"github.com/smorgan/blog-api/internal/repository"
)

// compile-time check that *PostStore implements repository.PostRepository
var _ repository.PostRepository = (*PostStore)(nil)

// PostStore implements repository.PostRepository over the shared pool.
type PostStore struct {
	db *DB
}

// NewPostStore returns a post repository backed by db.
func NewPostStore(db *DB) *PostStore {
	return &PostStore{db: db}
}

// postColumns is the canonical column order for post queries. scanPost,
// postArgs and the INSERT placeholders must all stay aligned with it.
const postColumns = "id, title, body, image, tags, category, company_name, company_logo, company_description, created_at"

// scanPost decodes one row into a Post. Optional columns tolerate NULL by
// producing nil; a NULL in a mandatory column (title, body) is a scan error.
// tags is stored as a JSON text array and decoded here.
func scanPost(row interface{ Scan(dest ...any) error }) (*model.Post, error) {
	var (
		p    model.Post
		tags sql.NullString
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.Body, &p.Image, &tags, &p.Category,
		&p.CompanyName, &p.CompanyLogo, &p.CompanyDescription, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &p.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags for post %d: %w", p.ID, err)
		}
	}
	return &p, nil
}

// postArgs encodes the non-id bind parameters for writes, in postColumns
// order. nil Tags encode as SQL NULL, not "[]", so a post created without
// tags reads back without tags.
func postArgs(p *model.Post) ([]any, error) {
	var tags any
	if p.Tags != nil {
		encoded, err := json.Marshal(p.Tags)
		if err != nil {
			return nil, fmt.Errorf("encoding tags: %w", err)
		}
		tags = string(encoded)
	}
	return []any{
		p.Title, p.Body, p.Image, tags, p.Category,
		p.CompanyName, p.CompanyLogo, p.CompanyDescription,
	}, nil
}

// Create inserts a post. Same id policy as users: positive ids are inserted
// verbatim, 0 means database-assigned. A nil CreatedAt defaults to now and
// is written back to the struct so the caller sees the record as stored.
func (s *PostStore) Create(ctx context.Context, post *model.Post) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if post.CreatedAt == nil {
		now := time.Now().UTC()
		post.CreatedAt = &now
	}

	args, err := postArgs(post)
	if err != nil {
		return fmt.Errorf("sqlite: inserting post: %w", err)
	}
	args = append(args, post.CreatedAt)

	var res sql.Result
	if post.ID > 0 {
		res, err = s.db.conn.ExecContext(ctx,
			`INSERT INTO posts (id, title, body, image, tags, category, company_name, company_logo, company_description, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			append([]any{post.ID}, args...)...,
		)
	} else {
		res, err = s.db.conn.ExecContext(ctx,
			`INSERT INTO posts (title, body, image, tags, category, company_name, company_logo, company_description, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			args...,
		)
	}
	if err != nil {
		if isConflict(err) {
			return apperror.Conflict("post", post.ID)
		}
		return fmt.Errorf("sqlite: inserting post: %w", err)
	}

	if post.ID == 0 {
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("sqlite: reading assigned post id: %w", err)
		}
		post.ID = id
	}
	return nil
}

// GetByID retrieves a post by id.
// Returns apperror.ErrNotFound if no post exists with that id.
func (s *PostStore) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	p, err := scanPost(s.db.conn.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`, id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %d: %w", id, err)
	}
	return p, nil
}

// List returns all posts in physical order.
func (s *PostStore) List(ctx context.Context) ([]model.Post, error) {
	return s.listWhere(ctx, `SELECT `+postColumns+` FROM posts`)
}

// ListByCategory returns the posts filed under the given category.
func (s *PostStore) ListByCategory(ctx context.Context, category string) ([]model.Post, error) {
	return s.listWhere(ctx,
		`SELECT `+postColumns+` FROM posts WHERE category = ?`, category)
}

// ListByTag returns the posts whose tags array contains the given tag.
// json_each expands the stored JSON array so we match whole tags, not
// substrings.
func (s *PostStore) ListByTag(ctx context.Context, tag string) ([]model.Post, error) {
	return s.listWhere(ctx,
		`SELECT `+postColumns+` FROM posts
		 WHERE tags IS NOT NULL
		   AND EXISTS (SELECT 1 FROM json_each(posts.tags) WHERE json_each.value = ?)`,
		tag)
}

func (s *PostStore) listWhere(ctx context.Context, query string, args ...any) ([]model.Post, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	rows, err := s.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}
	return posts, nil
}

// Update replaces the mutable fields of the post with the given id.
// id and created_at are immutable. Returns apperror.ErrNotFound when the id
// doesn't exist.
func (s *PostStore) Update(ctx context.Context, post *model.Post) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	args, err := postArgs(post)
	if err != nil {
		return fmt.Errorf("sqlite: updating post %d: %w", post.ID, err)
	}
	args = append(args, post.ID)

	res, err := s.db.conn.ExecContext(ctx,
		`UPDATE posts
		 SET title = ?, body = ?, image = ?, tags = ?, category = ?,
		     company_name = ?, company_logo = ?, company_description = ?
		 WHERE id = ?`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating post %d: %w", post.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("post", post.ID)
	}
	return nil
}

// Delete removes a post by id. Idempotent.
func (s *PostStore) Delete(ctx context.Context, id int64) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if _, err := s.db.conn.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting post %d: %w", id, err)
	}
	return nil
}
