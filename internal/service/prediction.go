package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"kbo_pickem/server/internal/cache"
	"kbo_pickem/server/internal/metrics"
	"kbo_pickem/server/internal/models"
	"kbo_pickem/server/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// NoFinishedGamesMessage is returned with an empty history sheet
const NoFinishedGamesMessage = "No finished games on this date."

// leaderboardQueryTimeout bounds the shared leaderboard query once it is detached from its caller
const leaderboardQueryTimeout = 10 * time.Second

// Game results reported on history rows
const (
	ResultHomeWin = "HOME_WIN"
	ResultAwayWin = "AWAY_WIN"
	ResultDraw    = "DRAW"
)

// PredictionService assembles the member-facing views: today's board, history, ratios and rankings
type PredictionService struct {
	users       UserStore
	games       GameStore
	predictions PredictionStore
	scores      ScoreStore

	cache          cache.Cache
	leaderboardTTL time.Duration
	group          singleflight.Group

	now func() time.Time
}

// NewPredictionService creates a new prediction service. A nil cache disables caching.
func NewPredictionService(users UserStore, games GameStore, predictions PredictionStore, scores ScoreStore, c cache.Cache, leaderboardTTL time.Duration) *PredictionService {
	if c == nil {
		c = cache.Noop{}
	}
	return &PredictionService{
		users:          users,
		games:          games,
		predictions:    predictions,
		scores:         scores,
		cache:          c,
		leaderboardTTL: leaderboardTTL,
		now:            time.Now,
	}
}

// Now returns the service clock
func (s *PredictionService) Now() time.Time {
	return s.now()
}

// Login resolves a member by student id
func (s *PredictionService) Login(ctx context.Context, studentID string) (*models.User, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, fmt.Errorf("%w: student id is required", ErrInvalidInput)
	}

	user, err := s.users.GetByStudentNumber(ctx, studentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		log.Error().Err(err).Str("student_number", studentID).Msg("Failed to look up user")
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	return user, nil
}

// TodaysGames lists the games of the current KST date, each with the caller's pick or nil.
// Store failures degrade to an empty board, or to a board without picks.
func (s *PredictionService) TodaysGames(ctx context.Context, userID uuid.UUID) []models.TodayGame {
	date := Today(s.now())

	games, err := s.games.ListByDateWithTeams(ctx, date)
	if err != nil {
		log.Error().Err(err).Str("date", FormatDate(date)).Msg("Failed to load today's games")
		return []models.TodayGame{}
	}

	ids := make([]int, 0, len(games))
	for _, g := range games {
		ids = append(ids, g.ID)
	}

	picks := make(map[int]*models.Prediction, len(ids))
	preds, err := s.predictions.ListForUserGames(ctx, userID, ids)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("Failed to load picks, showing games without them")
	}
	for _, p := range preds {
		picks[p.GameID] = p
	}

	board := make([]models.TodayGame, 0, len(games))
	for _, g := range games {
		view := models.TodayGame{
			ID:          g.ID,
			GameDate:    FormatDate(g.GameDate),
			GameTime:    nullableString(g.GameTime.String, g.GameTime.Valid),
			Status:      g.Status,
			HomePitcher: nullableString(g.HomePitcher.String, g.HomePitcher.Valid),
			AwayPitcher: nullableString(g.AwayPitcher.String, g.AwayPitcher.Valid),
			HomeTeam:    g.HomeTeam,
			AwayTeam:    g.AwayTeam,
		}
		if p, ok := picks[g.ID]; ok {
			view.Prediction = &models.UserPick{GameID: p.GameID, PredictedWinnerTeamID: p.PredictedWinnerTeamID}
		}
		board = append(board, view)
	}

	return board
}

// SubmitPredictions stores a batch of picks. Every pick must name a participant of a game that
// is still SCHEDULED; a later pick for the same game in one batch replaces the earlier one.
func (s *PredictionService) SubmitPredictions(ctx context.Context, userID uuid.UUID, picks []models.PredictionInput) (int, error) {
	if len(picks) == 0 {
		return 0, fmt.Errorf("%w: no predictions submitted", ErrInvalidInput)
	}

	// Last pick wins, first-seen order is kept
	order := make([]int, 0, len(picks))
	latest := make(map[int]models.PredictionInput, len(picks))
	for _, p := range picks {
		if p.GameID <= 0 || p.PredictedWinnerTeamID <= 0 {
			return 0, fmt.Errorf("%w: game_id and predicted_winner_team_id are required", ErrInvalidInput)
		}
		if _, seen := latest[p.GameID]; !seen {
			order = append(order, p.GameID)
		}
		latest[p.GameID] = p
	}

	games, err := s.games.ListByIDs(ctx, order)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load games for submission")
		return 0, fmt.Errorf("failed to load games: %w", err)
	}
	byID := make(map[int]*models.Game, len(games))
	for _, g := range games {
		byID[g.ID] = g
	}

	batch := make([]models.PredictionInput, 0, len(order))
	for _, id := range order {
		pick := latest[id]
		game, ok := byID[id]
		switch {
		case !ok:
			return 0, fmt.Errorf("%w: id %d", ErrGameNotFound, id)
		case !game.IsScheduled():
			return 0, fmt.Errorf("%w: game %d is %s", ErrGameLocked, id, game.Status)
		case !game.HasTeam(pick.PredictedWinnerTeamID):
			return 0, fmt.Errorf("%w: team %d in game %d", ErrInvalidPick, pick.PredictedWinnerTeamID, id)
		}
		batch = append(batch, pick)
	}

	saved, err := s.predictions.UpsertMany(ctx, userID, batch)
	if errors.Is(err, repository.ErrInvalidReference) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to save predictions")
		return 0, fmt.Errorf("failed to save predictions: %w", err)
	}

	metrics.PredictionsSubmittedTotal.Add(float64(saved))
	log.Info().
		Str("user_id", userID.String()).
		Int("saved", saved).
		Msg("Predictions submitted")

	return saved, nil
}

// HistoryForDate builds the member's result sheet for the finished games of date.
// Only settled picks count toward the total.
func (s *PredictionService) HistoryForDate(ctx context.Context, userID uuid.UUID, date time.Time) *models.DailyHistory {
	rows, err := s.games.ListFinishedWithUserPrediction(ctx, userID, date)
	if err != nil {
		log.Error().Err(err).Str("date", FormatDate(date)).Msg("Failed to load history")
		rows = nil
	}

	history := &models.DailyHistory{Games: make([]models.HistoryGame, 0, len(rows))}
	if len(rows) == 0 {
		history.Message = NoFinishedGamesMessage
		return history
	}

	for _, row := range rows {
		history.Games = append(history.Games, historyGame(row))
		if row.Prediction != nil && row.Prediction.IsSettled {
			history.TotalPoints += row.Prediction.PointsEarned
		}
	}

	return history
}

func historyGame(row *models.HistoryRow) models.HistoryGame {
	game := models.HistoryGame{
		ID:        row.ID,
		HomeTeam:  row.HomeTeam,
		AwayTeam:  row.AwayTeam,
		HomeScore: scorePtr(row.HomeScore.Int32, row.HomeScore.Valid),
		AwayScore: scorePtr(row.AwayScore.Int32, row.AwayScore.Valid),
	}

	winner, decided := row.WinnerTeamID()
	switch {
	case decided && winner == row.HomeTeamID:
		game.GameResult = ResultHomeWin
	case decided:
		game.GameResult = ResultAwayWin
	case row.HomeScore.Valid && row.AwayScore.Valid:
		game.GameResult = ResultDraw
	}

	if p := row.Prediction; p != nil {
		pick := &models.HistoryPrediction{
			IsCorrect:    decided && p.PredictedWinnerTeamID == winner,
			PointsEarned: p.PointsEarned,
			IsSettled:    p.IsSettled,
		}
		switch p.PredictedWinnerTeamID {
		case row.HomeTeamID:
			pick.PredictedTeamName = row.HomeTeam.Name
		case row.AwayTeamID:
			pick.PredictedTeamName = row.AwayTeam.Name
		}
		game.Prediction = pick
	}

	return game
}

// PredictionRatios reports the share of picks per side for the active games of date
func (s *PredictionService) PredictionRatios(ctx context.Context, date time.Time) []models.PredictionRatio {
	votes, err := s.predictions.VotesByDate(ctx, date)
	if err != nil {
		log.Error().Err(err).Str("date", FormatDate(date)).Msg("Failed to load prediction ratios")
		return []models.PredictionRatio{}
	}

	ratios := make([]models.PredictionRatio, 0, len(votes))
	for _, v := range votes {
		ratios = append(ratios, models.PredictionRatio{
			GameID:        v.GameID,
			HomeTeamName:  v.HomeTeamName,
			AwayTeamName:  v.AwayTeamName,
			HomeTeamRatio: percent(v.HomeVotes, v.TotalVotes),
			AwayTeamRatio: percent(v.AwayVotes, v.TotalVotes),
			TotalVotes:    v.TotalVotes,
		})
	}

	return ratios
}

// percent returns part/total as a percentage rounded to one decimal; zero total is 0
func percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)*1000/float64(total)) / 10
}

// Leaderboard ranks members by settled points earned on games within [from, to].
// Results are cached; concurrent misses for the same window share one query, which runs
// detached from the first caller so its disconnect does not empty every sharer's result.
func (s *PredictionService) Leaderboard(ctx context.Context, from, to time.Time) ([]*models.LeaderboardEntry, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: from must not be after to", ErrInvalidInput)
	}

	key := cache.LeaderboardKey(FormatDate(from), FormatDate(to))

	var entries []*models.LeaderboardEntry
	if hit, err := s.cache.GetJSON(ctx, key, &entries); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Leaderboard cache read failed")
	} else if hit {
		return entries, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), leaderboardQueryTimeout)
		defer cancel()

		entries, err := s.scores.Leaderboard(ctx, from, to)
		if err != nil {
			return nil, err
		}
		if entries == nil {
			entries = []*models.LeaderboardEntry{}
		}
		if err := s.cache.SetJSON(ctx, key, entries, s.leaderboardTTL); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Leaderboard cache write failed")
		}
		return entries, nil
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to load leaderboard")
		return []*models.LeaderboardEntry{}, nil
	}

	return v.([]*models.LeaderboardEntry), nil
}

// AllTimeScores lists the aggregate score table, highest first
func (s *PredictionService) AllTimeScores(ctx context.Context) []*models.UserScore {
	var scores []*models.UserScore
	if hit, err := s.cache.GetJSON(ctx, cache.KeyUserScores, &scores); err == nil && hit {
		return scores
	}

	scores, err := s.scores.ListUserScores(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load user scores")
		return []*models.UserScore{}
	}
	if scores == nil {
		scores = []*models.UserScore{}
	}

	if err := s.cache.SetJSON(ctx, cache.KeyUserScores, scores, s.leaderboardTTL); err != nil {
		log.Warn().Err(err).Msg("User score cache write failed")
	}
	return scores
}

func nullableString(s string, valid bool) *string {
	if !valid {
		return nil
	}
	return &s
}

func scorePtr(v int32, valid bool) *int {
	if !valid {
		return nil
	}
	i := int(v)
	return &i
}
