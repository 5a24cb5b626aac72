// Package store holds the user database abstraction and its backends.
package store

import (
	"context"
	"time"

	"github.com/Aidin1998/usersapi/common/errors"
	"github.com/Aidin1998/usersapi/pkg/models"
	"github.com/google/uuid"
)

// Store is the user database abstraction.
type Store interface {
	// Find returns every user, oldest first.
	Find(ctx context.Context) ([]models.User, error)
	// FindByID returns the user or errors.NotFound.
	FindByID(ctx context.Context, id string) (*models.User, error)
	// Insert stores a new user and returns its id.
	Insert(ctx context.Context, in models.UserInput) (models.InsertResult, error)
	// Update applies the changes and returns the number of updated records.
	Update(ctx context.Context, id string, in models.UserInput) (int64, error)
	// Remove deletes the user and returns the number of deleted records.
	Remove(ctx context.Context, id string) (int64, error)
}

// parseID reports whether id is a well formed user id. Malformed ids can never match a record.
func parseID(id string) (uuid.UUID, bool) {
	uid, err := uuid.Parse(id)
	if err != nil || uid == uuid.Nil {
		return uuid.Nil, false
	}
	return uid, true
}

func newUser(in models.UserInput) models.User {
	now := timestamp()
	return models.User{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      in.Name,
		Bio:       in.Bio,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// timestamp is truncated to microseconds so every backend round-trips it unchanged.
func timestamp() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func notFound() error {
	return errors.NotFound.Explain("user not found")
}
