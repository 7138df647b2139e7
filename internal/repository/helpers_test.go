package repository

import (
	"context"
	"errors"
	"fmt"

	"kbo_pickem/server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Lookups used only to verify writes in the integration tests

// GetByID retrieves a team by its database ID
func (r *TeamRepository) GetByID(ctx context.Context, id int) (team *models.Team, err error) {
	query := `
		SELECT id, name, short_name, created_at
		FROM teams
		WHERE id = $1
	`

	var t models.Team
	err = r.db.Pool.QueryRow(ctx, query, id).Scan(&t.ID, &t.Name, &t.ShortName, &t.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: team id=%d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &t, nil
}

// Count returns the total number of games
func (r *GameRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM games`

	var count int
	err := r.db.Pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}

	return count, nil
}

// Get retrieves one user's pick for a game
func (r *PredictionRepository) Get(ctx context.Context, userID uuid.UUID, gameID int) (pred *models.Prediction, err error) {
	query := `
		SELECT user_id, game_id, predicted_winner_team_id, points_earned, is_settled, created_at, updated_at
		FROM predictions
		WHERE user_id = $1 AND game_id = $2
	`

	var p models.Prediction
	err = r.db.Pool.QueryRow(ctx, query, userID, gameID).Scan(
		&p.UserID, &p.GameID, &p.PredictedWinnerTeamID, &p.PointsEarned, &p.IsSettled,
		&p.CreatedAt, &p.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: prediction user_id=%s game_id=%d", ErrNotFound, userID, gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}

	return &p, nil
}
