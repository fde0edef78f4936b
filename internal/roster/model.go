package roster

import "github.com/google/uuid"

// Entry represents a row in the rosters table: one user's membership in one
// team, with the leader flag distinguishing the team's creator.
type Entry struct {
	RosterID int
	TeamID   int
	UserID   uuid.UUID
	IsLeader bool
}

// MembershipRow is the joined teams x rosters x users projection the read
// paths regroup into team summaries.
type MembershipRow struct {
	TeamID   int
	TeamName string
	UserID   uuid.UUID
	Username string
	Role     string
	IsLeader bool
}
