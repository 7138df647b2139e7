package api

import (
	"context"
	"time"

	"kbo_pickem/server/internal/models"
	"kbo_pickem/server/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockPredictionService is a mock implementation of PredictionService
type MockPredictionService struct {
	mock.Mock
	now time.Time
}

func (m *MockPredictionService) Now() time.Time { return m.now }

func (m *MockPredictionService) Login(ctx context.Context, studentID string) (*models.User, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockPredictionService) TodaysGames(ctx context.Context, userID uuid.UUID) []models.TodayGame {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.TodayGame)
}

func (m *MockPredictionService) SubmitPredictions(ctx context.Context, userID uuid.UUID, picks []models.PredictionInput) (int, error) {
	args := m.Called(ctx, userID, picks)
	return args.Int(0), args.Error(1)
}

func (m *MockPredictionService) HistoryForDate(ctx context.Context, userID uuid.UUID, date time.Time) *models.DailyHistory {
	args := m.Called(ctx, userID, date)
	return args.Get(0).(*models.DailyHistory)
}

func (m *MockPredictionService) PredictionRatios(ctx context.Context, date time.Time) []models.PredictionRatio {
	args := m.Called(ctx, date)
	return args.Get(0).([]models.PredictionRatio)
}

func (m *MockPredictionService) Leaderboard(ctx context.Context, from, to time.Time) ([]*models.LeaderboardEntry, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LeaderboardEntry), args.Error(1)
}

func (m *MockPredictionService) AllTimeScores(ctx context.Context) []*models.UserScore {
	args := m.Called(ctx)
	return args.Get(0).([]*models.UserScore)
}

// MockAdminService is a mock implementation of AdminService
type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) Teams(ctx context.Context) ([]*models.Team, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Team), args.Error(1)
}

func (m *MockAdminService) Game(ctx context.Context, id int) (*models.GameInput, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameInput), args.Error(1)
}

func (m *MockAdminService) GamesForDate(ctx context.Context, date time.Time) ([]models.GameInput, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GameInput), args.Error(1)
}

func (m *MockAdminService) CreateGame(ctx context.Context, in models.GameInput) (*models.Game, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Game), args.Error(1)
}

func (m *MockAdminService) UpdateGame(ctx context.Context, id int, in models.GameInput) (*models.Game, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Game), args.Error(1)
}

func (m *MockAdminService) DeleteGame(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAdminService) SaveDrafts(ctx context.Context, date time.Time, drafts []models.GameInput) ([]*models.Game, error) {
	args := m.Called(ctx, date, drafts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Game), args.Error(1)
}

func (m *MockAdminService) AutoFill(ctx context.Context, date time.Time, drafts []models.GameInput) (*models.AutoFillResult, error) {
	args := m.Called(ctx, date, drafts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AutoFillResult), args.Error(1)
}

func (m *MockAdminService) SettleDate(ctx context.Context, date time.Time) (*service.SettlementReport, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SettlementReport), args.Error(1)
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

// MockHealthChecker is a mock implementation of HealthChecker
type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) Health(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
