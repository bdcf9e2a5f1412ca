package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/manelromero/blog/internal/apperror"
	"github.com/manelromero/blog/internal/model"
	"github.com/manelromero/blog/internal/repository"
)

// Compile-time check that *DB implements repository.UserRepository.
// `var _ X = (*Y)(nil)` fails the build immediately if a method is missing,
// instead of at the call site much later.
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new user, assigning the ID and creation timestamp.
//
// The UNIQUE constraint on name is the authoritative uniqueness check: the
// service layer does a friendly GetByName first, but two concurrent signups
// with the same name can both pass that check — only one survives the
// INSERT, the other gets apperror.ErrConflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, password, email, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.Password,
		user.Email,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Name)
		}
		return fmt.Errorf("sqlite: creating user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, password, email, created_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(&u.ID, &u.Name, &u.Password, &u.Email, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}

	return &u, nil
}

// GetUserByName retrieves a user by login name. Names are unique, so this
// returns at most one row; a miss is apperror.ErrNotFound.
func (db *DB) GetUserByName(ctx context.Context, name string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, password, email, created_at
		 FROM users WHERE name = ?`,
		name,
	).Scan(&u.ID, &u.Name, &u.Password, &u.Email, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", name)
		}
		return nil, fmt.Errorf("sqlite: getting user by name %q: %w", name, err)
	}

	return &u, nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint error.
// The pure-Go driver doesn't export a typed error for this, so we match the
// stable "UNIQUE constraint failed" message SQLite emits.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
