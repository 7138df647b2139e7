package repository

import (
	"context"
	"fmt"
	"time"

	"kbo_pickem/server/internal/models"

	"github.com/jackc/pgx/v5"
)

// ScoreRepository reads the leaderboard and maintains the aggregate score table
type ScoreRepository struct {
	db *Database
}

// Leaderboard ranks users by settled points earned on games within [from, to]
func (r *ScoreRepository) Leaderboard(ctx context.Context, from, to time.Time) (entries []*models.LeaderboardEntry, err error) {
	defer observe("procedure", "user_scores", time.Now(), &err)

	query := `
		SELECT rank, user_id, username, student_number, total_points
		FROM get_leaderboard($1, $2)
	`

	rows, err := r.db.Pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	entries, err = pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[models.LeaderboardEntry])
	if err != nil {
		return nil, fmt.Errorf("failed to collect leaderboard: %w", err)
	}

	return entries, nil
}

// ListUserScores returns the aggregate table joined with users, highest first
func (r *ScoreRepository) ListUserScores(ctx context.Context) (scores []*models.UserScore, err error) {
	defer observe("select", "user_scores", time.Now(), &err)

	query := `
		SELECT s.user_id, u.username, u.student_number, s.total_points, s.updated_at
		FROM user_scores s
		JOIN users u ON u.id = s.user_id
		ORDER BY s.total_points DESC, u.username
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list user scores: %w", err)
	}

	scores, err = pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[models.UserScore])
	if err != nil {
		return nil, fmt.Errorf("failed to collect user scores: %w", err)
	}

	return scores, nil
}

// Refresh recomputes user_scores from settled predictions
func (r *ScoreRepository) Refresh(ctx context.Context) (err error) {
	defer observe("procedure", "user_scores", time.Now(), &err)

	if _, err = r.db.Pool.Exec(ctx, `SELECT refresh_user_scores()`); err != nil {
		return fmt.Errorf("failed to refresh user scores: %w", err)
	}
	return nil
}
