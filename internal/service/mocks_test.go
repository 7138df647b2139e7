package service

import (
	"context"
	"time"

	"kbo_pickem/server/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserStore is a mock implementation of UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByStudentNumber(ctx context.Context, studentNumber string) (*models.User, error) {
	args := m.Called(ctx, studentNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockTeamStore is a mock implementation of TeamStore
type MockTeamStore struct {
	mock.Mock
}

func (m *MockTeamStore) Upsert(ctx context.Context, team *models.Team) error {
	args := m.Called(ctx, team)
	return args.Error(0)
}

func (m *MockTeamStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockTeamStore) List(ctx context.Context) ([]*models.Team, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Team), args.Error(1)
}

// MockGameStore is a mock implementation of GameStore
type MockGameStore struct {
	mock.Mock
}

func (m *MockGameStore) Create(ctx context.Context, game *models.Game) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *MockGameStore) Update(ctx context.Context, game *models.Game) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *MockGameStore) SaveAll(ctx context.Context, games []*models.Game) error {
	args := m.Called(ctx, games)
	return args.Error(0)
}

func (m *MockGameStore) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGameStore) GetByID(ctx context.Context, id int) (*models.Game, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Game), args.Error(1)
}

func (m *MockGameStore) ListByIDs(ctx context.Context, ids []int) ([]*models.Game, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Game), args.Error(1)
}

func (m *MockGameStore) ListByDate(ctx context.Context, date time.Time) ([]*models.Game, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Game), args.Error(1)
}

func (m *MockGameStore) ListByDateWithTeams(ctx context.Context, date time.Time) ([]*models.GameWithTeams, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GameWithTeams), args.Error(1)
}

func (m *MockGameStore) ListFinishedWithUserPrediction(ctx context.Context, userID uuid.UUID, date time.Time) ([]*models.HistoryRow, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.HistoryRow), args.Error(1)
}

// MockPredictionStore is a mock implementation of PredictionStore
type MockPredictionStore struct {
	mock.Mock
}

func (m *MockPredictionStore) UpsertMany(ctx context.Context, userID uuid.UUID, picks []models.PredictionInput) (int, error) {
	args := m.Called(ctx, userID, picks)
	return args.Int(0), args.Error(1)
}

func (m *MockPredictionStore) ListForUserGames(ctx context.Context, userID uuid.UUID, gameIDs []int) ([]*models.Prediction, error) {
	args := m.Called(ctx, userID, gameIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Prediction), args.Error(1)
}

func (m *MockPredictionStore) VotesByDate(ctx context.Context, date time.Time) ([]*models.PredictionVotes, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PredictionVotes), args.Error(1)
}

func (m *MockPredictionStore) SettleGame(ctx context.Context, gameID, points int) (int, error) {
	args := m.Called(ctx, gameID, points)
	return args.Int(0), args.Error(1)
}

// MockScoreStore is a mock implementation of ScoreStore
type MockScoreStore struct {
	mock.Mock
}

func (m *MockScoreStore) Leaderboard(ctx context.Context, from, to time.Time) ([]*models.LeaderboardEntry, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LeaderboardEntry), args.Error(1)
}

func (m *MockScoreStore) ListUserScores(ctx context.Context) ([]*models.UserScore, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.UserScore), args.Error(1)
}

func (m *MockScoreStore) Refresh(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockCrawler is a mock implementation of Crawler
type MockCrawler struct {
	mock.Mock
}

func (m *MockCrawler) FetchGames(ctx context.Context, date string) ([]models.CrawledMatch, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CrawledMatch), args.Error(1)
}

// MockCache is a mock implementation of cache.Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func (m *MockCache) DeletePrefix(ctx context.Context, prefix string) error {
	args := m.Called(ctx, prefix)
	return args.Error(0)
}
