package team

import (
	"context"
	"errors"
	"fmt"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
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

// Create inserts a new team record. The unique index on team_name is the
// final arbiter against concurrent creations with the same name.
func (r *PostgresRepository) Create(ctx context.Context, t *Team) error {
	query := `
		INSERT INTO teams (team_name)
		VALUES ($1)
		RETURNING team_id, created_at, updated_at`

	err := r.getter.DefaultTrOrDB(ctx, r.pool).QueryRow(ctx, query, t.Name).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateTeamName
		}
		return fmt.Errorf("inserting team: %w", err)
	}

	return nil
}

// GetByID retrieves a single team by its id.
func (r *PostgresRepository) GetByID(ctx context.Context, id int) (*Team, error) {
	query := `
		SELECT team_id, team_name, created_at, updated_at
		FROM teams
		WHERE team_id = $1`

	var t Team
	err := r.getter.DefaultTrOrDB(ctx, r.pool).QueryRow(ctx, query, id).
		Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("querying team: %w", err)
	}

	return &t, nil
}

// GetByName retrieves a single team by its unique name.
func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*Team, error) {
	query := `
		SELECT team_id, team_name, created_at, updated_at
		FROM teams
		WHERE team_name = $1`

	var t Team
	err := r.getter.DefaultTrOrDB(ctx, r.pool).QueryRow(ctx, query, name).
		Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("querying team by name: %w", err)
	}

	return &t, nil
}

// Delete removes a team by id. Roster rows cascade with the team.
func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM teams WHERE team_id = $1`

	result, err := r.getter.DefaultTrOrDB(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting team: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTeamNotFound
	}

	return nil
}
