package roster

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrEntryNotFound is returned when a roster entry is not found.
var ErrEntryNotFound = errors.New("roster entry not found")

// ErrAlreadyOnRoster is returned when inserting a (team, user) pair that is
// already on the roster. The unique index reports it even when two requests
// pass a prior membership check concurrently.
var ErrAlreadyOnRoster = errors.New("user already on roster")

// Repository provides operations on the rosters table.
type Repository interface {
	Insert(ctx context.Context, e *Entry) error
	Get(ctx context.Context, teamID int, userID uuid.UUID) (*Entry, error)
	Delete(ctx context.Context, teamID int, userID uuid.UUID) error
	ListTeamRows(ctx context.Context, teamID int) ([]MembershipRow, error)
	ListVisibleRows(ctx context.Context, viewerID uuid.UUID) ([]MembershipRow, error)
}
