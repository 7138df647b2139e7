package repository

import (
	"context"
	"fmt"
	"time"

	"kbo_pickem/server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// PredictionRepository handles prediction database operations
type PredictionRepository struct {
	db *Database
}

// UpsertMany stores a batch of picks for one user. An existing pick for the same game is
// overwritten. The batch is applied atomically.
func (r *PredictionRepository) UpsertMany(ctx context.Context, userID uuid.UUID, picks []models.PredictionInput) (saved int, err error) {
	defer observe("upsert", "predictions", time.Now(), &err)

	query := `
		INSERT INTO predictions (user_id, game_id, predicted_winner_team_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, game_id) DO UPDATE SET
			predicted_winner_team_id = EXCLUDED.predicted_winner_team_id,
			updated_at = NOW()
	`

	err = r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, pick := range picks {
			batch.Queue(query, userID, pick.GameID, pick.PredictedWinnerTeamID)
		}

		results := tx.SendBatch(ctx, batch)
		for _, pick := range picks {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("failed to upsert prediction for game %d: %w", pick.GameID, classify(err))
			}
		}
		return results.Close()
	})
	if err != nil {
		return 0, err
	}

	log.Debug().
		Str("user_id", userID.String()).
		Int("count", len(picks)).
		Msg("Predictions upserted")

	return len(picks), nil
}

// ListForUserGames retrieves the user's picks restricted to the given games
func (r *PredictionRepository) ListForUserGames(ctx context.Context, userID uuid.UUID, gameIDs []int) (preds []*models.Prediction, err error) {
	defer observe("select", "predictions", time.Now(), &err)

	if len(gameIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT user_id, game_id, predicted_winner_team_id, points_earned, is_settled, created_at, updated_at
		FROM predictions
		WHERE user_id = $1 AND game_id = ANY($2)
	`

	rows, err := r.db.Pool.Query(ctx, query, userID, gameIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Prediction
		if err = rows.Scan(
			&p.UserID, &p.GameID, &p.PredictedWinnerTeamID, &p.PointsEarned, &p.IsSettled,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		preds = append(preds, &p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating predictions: %w", err)
	}

	return preds, nil
}

// VotesByDate returns home/away pick counts for the started games of a date
func (r *PredictionRepository) VotesByDate(ctx context.Context, date time.Time) (votes []*models.PredictionVotes, err error) {
	defer observe("procedure", "predictions", time.Now(), &err)

	query := `
		SELECT game_id, home_team_name, away_team_name, home_votes, away_votes, total_votes
		FROM get_prediction_ratios_by_date_grouped($1)
	`

	rows, err := r.db.Pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction ratios: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v models.PredictionVotes
		if err = rows.Scan(&v.GameID, &v.HomeTeamName, &v.AwayTeamName, &v.HomeVotes, &v.AwayVotes, &v.TotalVotes); err != nil {
			return nil, fmt.Errorf("failed to scan prediction ratio: %w", err)
		}
		votes = append(votes, &v)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prediction ratios: %w", err)
	}

	return votes, nil
}

// SettleGame scores every pick of a finished game and returns the number of rows settled
func (r *PredictionRepository) SettleGame(ctx context.Context, gameID, points int) (settled int, err error) {
	defer observe("procedure", "predictions", time.Now(), &err)

	query := `SELECT settle_game_predictions($1, $2)`

	if err = r.db.Pool.QueryRow(ctx, query, gameID, points).Scan(&settled); err != nil {
		return 0, fmt.Errorf("failed to settle game %d: %w", gameID, err)
	}

	log.Debug().
		Int("game_id", gameID).
		Int("settled", settled).
		Msg("Game predictions settled")

	return settled, nil
}
