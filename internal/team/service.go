package team

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kvnlft/team-service/internal/roster"
	"github.com/kvnlft/team-service/internal/user"
)

// ErrNoTeams is returned when the caller has no teams to list.
var ErrNoTeams = errors.New("teams are not found")

// ErrNotOnTeam is returned when the caller has no roster entry for the team
// they are trying to view.
var ErrNotOnTeam = errors.New("you are not allowed to view this team")

// ErrRoleMismatch is returned when a candidate's directory role does not
// match the roster bucket of the route (manager vs member).
var ErrRoleMismatch = errors.New("user cannot be added or removed through this route")

// ErrNameMismatch is returned when the client-claimed display name does not
// equal the stored username. The claimed name proves the client actually
// knows the user it is enrolling, not just a guessed id.
var ErrNameMismatch = errors.New("username does not match")

// ErrLeaderSelfRemoval is returned when the leader tries to remove their own
// manager entry. Only whole-team deletion removes the leader.
var ErrLeaderSelfRemoval = errors.New("leader can't be removed from a team")

// TxManager runs a function inside a database transaction propagated through
// the context.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements the team commands: team creation with an atomic initial
// roster, roster reads regrouped into summaries, and single-entry roster
// mutations.
type Service struct {
	teams   Repository
	rosters roster.Repository
	users   user.Repository
	tx      TxManager
	lg      *slog.Logger
}

// NewService creates a new team Service.
func NewService(teams Repository, rosters roster.Repository, users user.Repository, tx TxManager, lg *slog.Logger) *Service {
	return &Service{
		teams:   teams,
		rosters: rosters,
		users:   users,
		tx:      tx,
		lg:      lg,
	}
}

// Create creates a team together with its initial roster in one transaction.
// The caller becomes the leader unconditionally; the managers list is
// enrolled before the members list, and the caller's own id is skipped in
// both. Any candidate failure rolls the whole creation back.
func (s *Service) Create(ctx context.Context, caller *user.User, input CreateInput) (*Summary, error) {
	var out *Summary

	err := s.tx.Do(ctx, func(ctx context.Context) error {
		_, err := s.teams.GetByName(ctx, input.TeamName)
		if err == nil {
			return ErrDuplicateTeamName
		}
		if !errors.Is(err, ErrTeamNotFound) {
			return err
		}

		t := &Team{Name: input.TeamName}
		if err := s.teams.Create(ctx, t); err != nil {
			return err
		}

		leader := &roster.Entry{TeamID: t.ID, UserID: caller.ID, IsLeader: true}
		if err := s.rosters.Insert(ctx, leader); err != nil {
			return err
		}

		managers, err := s.enroll(ctx, t.ID, input.Managers, caller.ID, user.RoleManager)
		if err != nil {
			return err
		}

		members, err := s.enroll(ctx, t.ID, input.Members, caller.ID, user.RoleMember)
		if err != nil {
			return err
		}

		out = &Summary{
			TeamID:   t.ID,
			TeamName: t.Name,
			Leader:   &MemberRef{ID: caller.ID, Name: caller.Username},
			Managers: managers,
			Members:  members,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.lg.Info("team created",
		"teamId", out.TeamID,
		"teamName", out.TeamName,
		"leaderId", out.Leader.ID,
		"managers", len(out.Managers),
		"members", len(out.Members))

	return out, nil
}

// enroll validates and inserts one candidate list during team creation,
// returning the refs with server-truth names.
func (s *Service) enroll(ctx context.Context, teamID int, refs []MemberRef, callerID uuid.UUID, role string) ([]MemberRef, error) {
	resolved := make([]MemberRef, 0, len(refs))
	for _, ref := range refs {
		if ref.ID == callerID {
			// The creator is already on the roster as leader.
			continue
		}

		u, err := s.users.GetByID(ctx, ref.ID)
		if err != nil {
			return nil, fmt.Errorf("candidate %s: %w", ref.ID, err)
		}
		if u.Role != role {
			return nil, fmt.Errorf("candidate %s: %w", ref.ID, ErrRoleMismatch)
		}
		if u.Username != ref.Name {
			return nil, fmt.Errorf("candidate %s: %w", ref.ID, ErrNameMismatch)
		}

		if err := s.rosters.Insert(ctx, &roster.Entry{TeamID: teamID, UserID: ref.ID}); err != nil {
			return nil, err
		}

		resolved = append(resolved, MemberRef{ID: u.ID, Name: u.Username})
	}
	return resolved, nil
}

// List returns a summary for every team the caller has a roster entry on.
func (s *Service) List(ctx context.Context, callerID uuid.UUID) ([]Summary, error) {
	rows, err := s.rosters.ListVisibleRows(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoTeams
	}

	return groupRows(rows), nil
}

// Get returns the summary for one team. The caller must be on that team's
// roster.
func (s *Service) Get(ctx context.Context, callerID uuid.UUID, teamID int) (*Summary, error) {
	if _, err := s.rosters.Get(ctx, teamID, callerID); err != nil {
		if errors.Is(err, roster.ErrEntryNotFound) {
			return nil, ErrNotOnTeam
		}
		return nil, err
	}

	rows, err := s.rosters.ListTeamRows(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrTeamNotFound
	}

	summaries := groupRows(rows)
	return &summaries[0], nil
}

// Remove deletes a team and, by cascade, its whole roster. Leadership is
// enforced by the authorization gate before this runs.
func (s *Service) Remove(ctx context.Context, teamID int) error {
	if err := s.teams.Delete(ctx, teamID); err != nil {
		return err
	}

	s.lg.Info("team removed", "teamId", teamID)
	return nil
}

// AddMember enrolls a MEMBER user on a team's roster and returns the ref
// with the stored username.
func (s *Service) AddMember(ctx context.Context, teamID int, ref MemberRef) (*MemberRef, error) {
	return s.add(ctx, teamID, ref, user.RoleMember)
}

// AddManager enrolls a MANAGER user on a team's roster and returns the ref
// with the stored username.
func (s *Service) AddManager(ctx context.Context, teamID int, ref MemberRef) (*MemberRef, error) {
	return s.add(ctx, teamID, ref, user.RoleManager)
}

func (s *Service) add(ctx context.Context, teamID int, ref MemberRef, role string) (*MemberRef, error) {
	u, err := s.users.GetByID(ctx, ref.ID)
	if err != nil {
		return nil, err
	}
	if u.Username != ref.Name {
		return nil, ErrNameMismatch
	}
	if u.Role != role {
		return nil, ErrRoleMismatch
	}

	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		return nil, err
	}

	// No membership pre-check: the unique index on (team_id, user_id) turns
	// the concurrent double-add into ErrAlreadyOnRoster at insert time.
	if err := s.rosters.Insert(ctx, &roster.Entry{TeamID: teamID, UserID: ref.ID}); err != nil {
		return nil, err
	}

	s.lg.Info("roster entry added", "teamId", teamID, "userId", u.ID, "role", role)

	return &MemberRef{ID: u.ID, Name: u.Username}, nil
}

// RemoveMember deletes a MEMBER user's roster entry.
func (s *Service) RemoveMember(ctx context.Context, teamID int, memberID uuid.UUID) error {
	if err := s.checkExistence(ctx, teamID, memberID, user.RoleMember); err != nil {
		return err
	}

	if err := s.rosters.Delete(ctx, teamID, memberID); err != nil {
		return err
	}

	s.lg.Info("roster entry removed", "teamId", teamID, "userId", memberID, "role", user.RoleMember)
	return nil
}

// RemoveManager deletes a MANAGER user's roster entry. The caller removing
// themself is rejected: the caller on this route is the leader, and the
// leader's entry only ever goes away with the team.
func (s *Service) RemoveManager(ctx context.Context, callerID uuid.UUID, teamID int, managerID uuid.UUID) error {
	if err := s.checkExistence(ctx, teamID, managerID, user.RoleManager); err != nil {
		return err
	}

	if managerID == callerID {
		return ErrLeaderSelfRemoval
	}

	if err := s.rosters.Delete(ctx, teamID, managerID); err != nil {
		return err
	}

	s.lg.Info("roster entry removed", "teamId", teamID, "userId", managerID, "role", user.RoleManager)
	return nil
}

// checkExistence verifies the team and user both exist and that the user's
// directory role matches the route's roster bucket.
func (s *Service) checkExistence(ctx context.Context, teamID int, userID uuid.UUID, role string) error {
	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		return err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.Role != role {
		return ErrRoleMismatch
	}

	return nil
}

// groupRows buckets joined membership rows into per-team summaries. Rows
// arrive ordered by team; the leader flag wins over the directory role.
func groupRows(rows []roster.MembershipRow) []Summary {
	var out []Summary
	index := make(map[int]int)

	for _, row := range rows {
		i, ok := index[row.TeamID]
		if !ok {
			out = append(out, Summary{
				TeamID:   row.TeamID,
				TeamName: row.TeamName,
				Managers: []MemberRef{},
				Members:  []MemberRef{},
			})
			i = len(out) - 1
			index[row.TeamID] = i
		}

		ref := MemberRef{ID: row.UserID, Name: row.Username}
		switch {
		case row.IsLeader:
			out[i].Leader = &ref
		case row.Role == user.RoleManager:
			out[i].Managers = append(out[i].Managers, ref)
		case row.Role == user.RoleMember:
			out[i].Members = append(out[i].Members, ref)
		}
	}

	return out
}
