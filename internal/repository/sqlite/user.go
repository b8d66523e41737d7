package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/smorgan/blog-api/internal/apperror"
	"github.com/smorgan/blog-api/internal/model"
	"github.com/smorgan/blog-api/internal/repository"
)

// compile-time check that *UserStore implements repository.UserRepository
var _ repository.UserRepository = (*UserStore)(nil)

// UserStore implements repository.UserRepository over the shared pool.
type UserStore struct {
	db *DB
}

// NewUserStore returns a user repository backed by db.
func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

// userColumns is the canonical column order for user queries. scanUser and
// the INSERT placeholders must stay aligned with this list; it is the
// row-to-record contract for the users table.
const userColumns = "id, name, email, password"

// scanUser decodes one row into a User. The password column is nullable;
// NULL becomes a nil pointer rather than a decode error.
func scanUser(row interface{ Scan(dest ...any) error }) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user.
//
// ID policy: a positive user.ID is inserted verbatim (the public API allows
// callers to pick their own ids); ID 0 means "assign one", in which case
// SQLite picks the next rowid and we write it back to the struct.
// A duplicate id surfaces as apperror.ErrConflict.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	var (
		res sql.Result
		err error
	)
	if user.ID > 0 {
		res, err = s.db.conn.ExecContext(ctx,
			`INSERT INTO users (id, name, email, password) VALUES (?, ?, ?, ?)`,
			user.ID, user.Name, user.Email, user.Password,
		)
	} else {
		res, err = s.db.conn.ExecContext(ctx,
			`INSERT INTO users (name, email, password) VALUES (?, ?, ?)`,
			user.Name, user.Email, user.Password,
		)
	}
	if err != nil {
		if isConflict(err) {
			return apperror.Conflict("user", user.ID)
		}
		return fmt.Errorf("sqlite: inserting user: %w", err)
	}

	if user.ID == 0 {
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("sqlite: reading assigned user id: %w", err)
		}
		user.ID = id
	}
	return nil
}

// GetByID retrieves a user by id.
// Returns apperror.ErrNotFound if no user exists with that id.
func (s *UserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	u, err := scanUser(s.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}
	return u, nil
}

// List returns all users in physical order. Each call re-reads current
// state; no cursor is retained between calls.
func (s *UserStore) List(ctx context.Context) ([]model.User, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	rows, err := s.db.conn.QueryContext(ctx, `SELECT `+userColumns+` FROM users`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}
	return users, nil
}

// Update replaces the mutable fields (name, email, password) of the user
// with the given id. Returns apperror.ErrNotFound when the id doesn't exist;
// an update that matches zero rows is not silent success.
func (s *UserStore) Update(ctx context.Context, user *model.User) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	res, err := s.db.conn.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, password = ? WHERE id = ?`,
		user.Name, user.Email, user.Password, user.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %d: %w", user.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("user", user.ID)
	}
	return nil
}

// Delete removes a user by id. Idempotent: deleting an id that never
// existed is not an error.
func (s *UserStore) Delete(ctx context.Context, id int64) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if _, err := s.db.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting user %d: %w", id, err)
	}
	return nil
}

// isConflict reports whether err is a SQLite uniqueness violation.
// modernc.org/sqlite doesn't export a stable sentinel for this, so we match
// the constraint message the engine produces.
func isConflict(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
