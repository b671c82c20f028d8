// Package store persists forms, responses and users. The access
// predicates the original encoded as row-level-security policies are
// enforced here: ownership on form mutation and response listing, the
// publish gate on public reads and response inserts.
package store

import (
	"database/sql"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when no row matches, including rows the
	// caller is not allowed to see. Mirrors row-level security, which
	// does not distinguish missing from forbidden.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a form that disallows multiple
	// submissions already holds one from the same submitter.
	ErrDuplicate = errors.New("already submitted")

	// ErrEmailTaken is returned on signup with an email already in use.
	ErrEmailTaken = errors.New("email already registered")
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}
