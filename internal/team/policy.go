package team

import (
	"errors"

	"github.com/kvnlft/team-service/internal/user"
)

// Action enumerates the team mutations governed by the authorization policy.
type Action int

const (
	ActionCreateTeam Action = iota
	ActionDeleteTeam
	ActionAddMember
	ActionRemoveMember
	ActionAddManager
	ActionRemoveManager
)

// ErrMemberForbidden is returned when a MEMBER caller attempts any team mutation.
var ErrMemberForbidden = errors.New("access to this route is not permitted for a member")

// ErrLeaderRequired is returned when a manager-level mutation is attempted by
// a manager who is not the team's leader.
var ErrLeaderRequired = errors.New("only the Lead Manager may perform this action")

// RequiresLeadership reports whether the action demands the caller be the
// team's leader, which the caller of Authorize must resolve from the roster.
func (a Action) RequiresLeadership() bool {
	switch a {
	case ActionDeleteTeam, ActionAddManager, ActionRemoveManager:
		return true
	}
	return false
}

// Authorize is the per-request authorization decision. It is pure: callerRole
// comes from the user directory, isLeader from the caller's roster entry for
// the target team (false when the action needs no leadership). MEMBER callers
// are rejected from every mutation; MANAGER callers pass unconditionally on
// member-level mutations and only as leader on manager-level ones.
func Authorize(callerRole string, isLeader bool, action Action) error {
	if callerRole != user.RoleManager {
		return ErrMemberForbidden
	}
	if action.RequiresLeadership() && !isLeader {
		return ErrLeaderRequired
	}
	return nil
}
