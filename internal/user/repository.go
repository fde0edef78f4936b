package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when a user record is not found.
var ErrUserNotFound = errors.New("user not found")

// Repository provides read access to the users table.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}
