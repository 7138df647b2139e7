package api

import (
	"context"
	"net/http"
	"time"

	"kbo_pickem/server/internal/auth"
	"kbo_pickem/server/internal/models"
	"kbo_pickem/server/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// PredictionService is the member-facing API surface
type PredictionService interface {
	Now() time.Time
	Login(ctx context.Context, studentID string) (*models.User, error)
	TodaysGames(ctx context.Context, userID uuid.UUID) []models.TodayGame
	SubmitPredictions(ctx context.Context, userID uuid.UUID, picks []models.PredictionInput) (int, error)
	HistoryForDate(ctx context.Context, userID uuid.UUID, date time.Time) *models.DailyHistory
	PredictionRatios(ctx context.Context, date time.Time) []models.PredictionRatio
	Leaderboard(ctx context.Context, from, to time.Time) ([]*models.LeaderboardEntry, error)
	AllTimeScores(ctx context.Context) []*models.UserScore
}

// AdminService is the organizer API surface
type AdminService interface {
	Teams(ctx context.Context) ([]*models.Team, error)
	GamesForDate(ctx context.Context, date time.Time) ([]models.GameInput, error)
	Game(ctx context.Context, id int) (*models.GameInput, error)
	CreateGame(ctx context.Context, in models.GameInput) (*models.Game, error)
	UpdateGame(ctx context.Context, id int, in models.GameInput) (*models.Game, error)
	DeleteGame(ctx context.Context, id int) error
	SaveDrafts(ctx context.Context, date time.Time, drafts []models.GameInput) ([]*models.Game, error)
	AutoFill(ctx context.Context, date time.Time, drafts []models.GameInput) (*models.AutoFillResult, error)
	SettleDate(ctx context.Context, date time.Time) (*service.SettlementReport, error)
}

// Crawler proxies the game crawler for the public crawl endpoint
type Crawler interface {
	FetchGames(ctx context.Context, date string) ([]models.CrawledMatch, error)
}

// Gate authenticates the admin panel
type Gate interface {
	Login(password string) (*auth.Session, error)
	Validate(token string) (*jwt.RegisteredClaims, error)
}

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Options wires the server's collaborators
type Options struct {
	Predictions PredictionService
	Admin       AdminService
	Crawler     Crawler
	Gate        Gate
	Health      HealthChecker

	AllowedOrigins  []string
	LeaderboardFrom time.Time
	LeaderboardTo   time.Time
	RequestTimeout  time.Duration

	// CrawlBudget caps crawler calls so they fail inside RequestTimeout
	CrawlBudget time.Duration
}

// Server holds the HTTP handlers
type Server struct {
	predictions PredictionService
	admin       AdminService
	crawler     Crawler
	gate        Gate
	health      HealthChecker

	leaderboardFrom time.Time
	leaderboardTo   time.Time
	crawlBudget     time.Duration
}

// NewRouter builds the HTTP handler tree
func NewRouter(opts Options) http.Handler {
	s := &Server{
		predictions:     opts.Predictions,
		admin:           opts.Admin,
		crawler:         opts.Crawler,
		gate:            opts.Gate,
		health:          opts.Health,
		leaderboardFrom: opts.LeaderboardFrom,
		leaderboardTo:   opts.LeaderboardTo,
	}

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	s.crawlBudget = opts.CrawlBudget
	if s.crawlBudget <= 0 || s.crawlBudget >= timeout {
		s.crawlBudget = timeout * 3 / 4
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/crawl-games", s.handleCrawlGames)
		r.Get("/ratios", s.handleRatios)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/scores", s.handleScores)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/games/today", s.handleTodaysGames)
			r.Post("/predictions", s.handleSubmitPredictions)
			r.Get("/history", s.handleHistory)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", s.handleAdminLogin)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)

				r.Get("/teams", s.handleTeams)
				r.Get("/games", s.handleGamesForDate)
				r.Post("/games", s.handleCreateGame)
				r.Post("/games/batch", s.handleSaveDrafts)
				r.Get("/games/{id}", s.handleGame)
				r.Put("/games/{id}", s.handleUpdateGame)
				r.Delete("/games/{id}", s.handleDeleteGame)
				r.Post("/autofill", s.handleAutoFill)
				r.Post("/settle", s.handleSettle)
			})
		})
	})

	return r
}
