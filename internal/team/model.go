package team

import (
	"time"

	"github.com/google/uuid"
)

// Team represents a row in the teams table.
type Team struct {
	ID        int
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MemberRef pairs a directory user id with a display name. Inbound it carries
// the client-claimed name; outbound it always carries the stored username.
type MemberRef struct {
	ID   uuid.UUID
	Name string
}

// CreateInput is the payload for creating a team with its initial roster.
type CreateInput struct {
	TeamName string
	Managers []MemberRef
	Members  []MemberRef
}

// Summary is a team with its roster regrouped into the leader slot and the
// managers and members buckets.
type Summary struct {
	TeamID   int
	TeamName string
	Leader   *MemberRef
	Managers []MemberRef
	Members  []MemberRef
}
