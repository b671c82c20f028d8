package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/formlet/formlet/model"
)

// CreateUser provisions a users row for a new signup. The display name
// falls back to the local part of the email when none is provided,
// matching what the identity-provider trigger did in the original.
func (s *Store) CreateUser(ctx context.Context, email, name, passwordHash string) (model.User, error) {
	user := model.User{
		ID:        uuid.Must(uuid.NewV4()).String(),
		Email:     email,
		Name:      DeriveName(name, email),
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.Name,
		passwordHash,
		user.CreatedAt,
	)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return model.User{}, ErrEmailTaken
	}
	if err != nil {
		return model.User{}, errors.Wrap(err, "insert user")
	}
	return user, nil
}

// UserByEmail looks a user up by email, the login credential.
func (s *Store) UserByEmail(ctx context.Context, email string) (model.User, error) {
	var user model.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, created_at FROM users
		WHERE email = ?`,
		email,
	).Scan(&user.ID, &user.Email, &user.Name, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, errors.Wrap(err, "select user")
	}
	return user, nil
}

// DeriveName picks the provided display name, or falls back to the
// local part of the email.
func DeriveName(name, email string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}
