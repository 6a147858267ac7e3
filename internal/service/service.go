// Package service holds the use cases behind the HTTP API. Every call is
// scoped to the authenticated user.
package service

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUserRequired   = errors.New("user is required")
	ErrIDRequired     = errors.New("id is required")
	ErrNotFound       = errors.New("not found")
	ErrInvalidName    = errors.New("name must not be empty")
	ErrInvalidText    = errors.New("text must not be empty")
	ErrInvalidStatus  = errors.New("invalid status")
	ErrNotOpen        = errors.New("file is not open")
	ErrInvalidPayload = errors.New("invalid import payload")
)

var (
	now   = func() time.Time { return time.Now().UTC() }
	newID = uuid.NewString
)

// notFound maps a missing row to ErrNotFound and passes other errors through.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func cleanName(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalidName
	}
	return s, nil
}

func requireIDs(userID, id string) error {
	if userID == "" {
		return ErrUserRequired
	}
	if id == "" {
		return ErrIDRequired
	}
	return nil
}
