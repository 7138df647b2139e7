package service

import (
	"context"
	"time"

	"kbo_pickem/server/internal/models"

	"github.com/google/uuid"
)

// UserStore defines the interface for member lookups
type UserStore interface {
	// GetByStudentNumber retrieves a member by the id printed on their student card
	GetByStudentNumber(ctx context.Context, studentNumber string) (*models.User, error)

	// GetByID retrieves a member by primary key
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// TeamStore defines the interface for the team reference table
type TeamStore interface {
	Upsert(ctx context.Context, team *models.Team) error
	List(ctx context.Context) ([]*models.Team, error)
	Count(ctx context.Context) (int, error)
}

// GameStore defines the interface for game data access
type GameStore interface {
	Create(ctx context.Context, game *models.Game) error
	Update(ctx context.Context, game *models.Game) error

	// SaveAll updates games with an id and inserts the rest, in one transaction
	SaveAll(ctx context.Context, games []*models.Game) error

	Delete(ctx context.Context, id int) error
	GetByID(ctx context.Context, id int) (*models.Game, error)
	ListByIDs(ctx context.Context, ids []int) ([]*models.Game, error)
	ListByDate(ctx context.Context, date time.Time) ([]*models.Game, error)
	ListByDateWithTeams(ctx context.Context, date time.Time) ([]*models.GameWithTeams, error)

	// ListFinishedWithUserPrediction returns finished games of the date left-joined with the user's pick
	ListFinishedWithUserPrediction(ctx context.Context, userID uuid.UUID, date time.Time) ([]*models.HistoryRow, error)
}

// PredictionStore defines the interface for pick data access
type PredictionStore interface {
	UpsertMany(ctx context.Context, userID uuid.UUID, picks []models.PredictionInput) (int, error)
	ListForUserGames(ctx context.Context, userID uuid.UUID, gameIDs []int) ([]*models.Prediction, error)
	VotesByDate(ctx context.Context, date time.Time) ([]*models.PredictionVotes, error)

	// SettleGame scores every pick of a finished game and returns how many rows were settled
	SettleGame(ctx context.Context, gameID, points int) (int, error)
}

// ScoreStore defines the interface for ranking reads and the aggregate score table
type ScoreStore interface {
	Leaderboard(ctx context.Context, from, to time.Time) ([]*models.LeaderboardEntry, error)
	ListUserScores(ctx context.Context) ([]*models.UserScore, error)
	Refresh(ctx context.Context) error
}

// Crawler fetches the published game sheet for a date
type Crawler interface {
	FetchGames(ctx context.Context, date string) ([]models.CrawledMatch, error)
}
