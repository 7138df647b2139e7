package repository

import (
	"context"
	"fmt"
	"time"

	"kbo_pickem/server/internal/models"

	"github.com/rs/zerolog/log"
)

// TeamRepository handles team database operations
type TeamRepository struct {
	db *Database
}

// Upsert inserts or updates a team keyed by name
func (r *TeamRepository) Upsert(ctx context.Context, team *models.Team) (err error) {
	defer observe("upsert", "teams", time.Now(), &err)

	query := `
		INSERT INTO teams (name, short_name)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET
			short_name = EXCLUDED.short_name
		RETURNING id, created_at
	`

	err = r.db.Pool.QueryRow(ctx, query, team.Name, team.ShortName).Scan(&team.ID, &team.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert team: %w", err)
	}

	log.Debug().
		Int("id", team.ID).
		Str("name", team.Name).
		Str("short_name", team.ShortName).
		Msg("Team upserted")

	return nil
}

// List retrieves all teams
func (r *TeamRepository) List(ctx context.Context) (teams []*models.Team, err error) {
	defer observe("select", "teams", time.Now(), &err)

	query := `
		SELECT id, name, short_name, created_at
		FROM teams
		ORDER BY id
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t models.Team
		if err = rows.Scan(&t.ID, &t.Name, &t.ShortName, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, &t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}

	return teams, nil
}

// Count returns the total number of teams
func (r *TeamRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM teams`

	var count int
	err := r.db.Pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}

	return count, nil
}
