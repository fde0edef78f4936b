package roster

import (
	"context"
	"errors"
	"fmt"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool, getter: trmpgx.DefaultCtxGetter}
}

// Insert adds a roster entry. The unique index on (team_id, user_id) maps to
// ErrAlreadyOnRoster.
func (r *PostgresRepository) Insert(ctx context.Context, e *Entry) error {
	query := `
		INSERT INTO rosters (team_id, user_id, is_leader)
		VALUES ($1, $2, $3)
		RETURNING roster_id`

	err := r.getter.DefaultTrOrDB(ctx, r.pool).QueryRow(ctx, query, e.TeamID, e.UserID, e.IsLeader).
		Scan(&e.RosterID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyOnRoster
		}
		return fmt.Errorf("inserting roster entry: %w", err)
	}

	return nil
}

// Get retrieves the roster entry for a (team, user) pair.
func (r *PostgresRepository) Get(ctx context.Context, teamID int, userID uuid.UUID) (*Entry, error) {
	query := `
		SELECT roster_id, team_id, user_id, is_leader
		FROM rosters
		WHERE team_id = $1 AND user_id = $2`

	var e Entry
	err := r.getter.DefaultTrOrDB(ctx, r.pool).QueryRow(ctx, query, teamID, userID).
		Scan(&e.RosterID, &e.TeamID, &e.UserID, &e.IsLeader)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("querying roster entry: %w", err)
	}

	return &e, nil
}

// Delete removes the roster entry for a (team, user) pair.
func (r *PostgresRepository) Delete(ctx context.Context, teamID int, userID uuid.UUID) error {
	query := `DELETE FROM rosters WHERE team_id = $1 AND user_id = $2`

	result, err := r.getter.DefaultTrOrDB(ctx, r.pool).Exec(ctx, query, teamID, userID)
	if err != nil {
		return fmt.Errorf("deleting roster entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrEntryNotFound
	}

	return nil
}

const membershipColumns = `
	SELECT t.team_id, t.team_name, u.user_id, u.username, u.role, r.is_leader
	FROM teams t
	INNER JOIN rosters r ON t.team_id = r.team_id
	INNER JOIN users u ON r.user_id = u.user_id`

// ListTeamRows retrieves the joined membership rows for one team.
func (r *PostgresRepository) ListTeamRows(ctx context.Context, teamID int) ([]MembershipRow, error) {
	query := membershipColumns + `
	WHERE t.team_id = $1
	ORDER BY r.roster_id`

	rows, err := r.getter.DefaultTrOrDB(ctx, r.pool).Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("listing team membership rows: %w", err)
	}
	defer rows.Close()

	return scanMembershipRows(rows)
}

// ListVisibleRows retrieves the joined membership rows for every team the
// viewer has a roster entry on.
func (r *PostgresRepository) ListVisibleRows(ctx context.Context, viewerID uuid.UUID) ([]MembershipRow, error) {
	query := membershipColumns + `
	WHERE t.team_id IN (SELECT team_id FROM rosters WHERE user_id = $1)
	ORDER BY t.team_id, r.roster_id`

	rows, err := r.getter.DefaultTrOrDB(ctx, r.pool).Query(ctx, query, viewerID)
	if err != nil {
		return nil, fmt.Errorf("listing visible membership rows: %w", err)
	}
	defer rows.Close()

	return scanMembershipRows(rows)
}

func scanMembershipRows(rows pgx.Rows) ([]MembershipRow, error) {
	var out []MembershipRow
	for rows.Next() {
		var m MembershipRow
		err := rows.Scan(&m.TeamID, &m.TeamName, &m.UserID, &m.Username, &m.Role, &m.IsLeader)
		if err != nil {
			return nil, fmt.Errorf("scanning membership row: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating membership rows: %w", err)
	}

	return out, nil
}
