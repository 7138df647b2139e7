package models

import (
	"time"

	"github.com/google/uuid"
)

// Prediction is a member's pick of the winner for one game
type Prediction struct {
	UserID                uuid.UUID `db:"user_id"`
	GameID                int       `db:"game_id"`
	PredictedWinnerTeamID int       `db:"predicted_winner_team_id"`
	PointsEarned          int       `db:"points_earned"`
	IsSettled             bool      `db:"is_settled"`
	CreatedAt             time.Time `db:"created_at"`
	UpdatedAt             time.Time `db:"updated_at"`
}

// PredictionInput is a single pick submitted by a member
type PredictionInput struct {
	GameID                int `json:"game_id"`
	PredictedWinnerTeamID int `json:"predicted_winner_team_id"`
}

// UserPick is the caller's own pick attached to a game view
type UserPick struct {
	GameID                int `json:"game_id"`
	PredictedWinnerTeamID int `json:"predicted_winner_team_id"`
}

// PredictionVotes is the per-game pick count for home and away
type PredictionVotes struct {
	GameID       int    `db:"game_id"`
	HomeTeamName string `db:"home_team_name"`
	AwayTeamName string `db:"away_team_name"`
	HomeVotes    int    `db:"home_votes"`
	AwayVotes    int    `db:"away_votes"`
	TotalVotes   int    `db:"total_votes"`
}
