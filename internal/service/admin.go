package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"kbo_pickem/server/internal/cache"
	"kbo_pickem/server/internal/models"
	"kbo_pickem/server/internal/repository"

	"github.com/rs/zerolog/log"
)

// AdminService backs the organizer panel: game CRUD, batch saves, crawler auto-fill and settlement
type AdminService struct {
	teams       TeamStore
	games       GameStore
	predictions PredictionStore
	scores      ScoreStore
	crawler     Crawler

	cache    cache.Cache
	teamsTTL time.Duration
	points   int
}

// SettlementReport summarizes a settlement run for one date
type SettlementReport struct {
	Date     string `json:"date"`
	Finished int    `json:"finished_games"`
	Settled  int    `json:"settled_predictions"`
}

// NewAdminService creates a new admin service. crawler may be nil when no crawler is configured.
func NewAdminService(teams TeamStore, games GameStore, predictions PredictionStore, scores ScoreStore, crawler Crawler, c cache.Cache, teamsTTL time.Duration, points int) *AdminService {
	if c == nil {
		c = cache.Noop{}
	}
	return &AdminService{
		teams:       teams,
		games:       games,
		predictions: predictions,
		scores:      scores,
		crawler:     crawler,
		cache:       c,
		teamsTTL:    teamsTTL,
		points:      points,
	}
}

// Teams lists every team, served from cache when possible
func (s *AdminService) Teams(ctx context.Context) ([]*models.Team, error) {
	var teams []*models.Team
	if hit, err := s.cache.GetJSON(ctx, cache.KeyTeams, &teams); err == nil && hit {
		return teams, nil
	}

	teams, err := s.teams.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list teams")
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	if err := s.cache.SetJSON(ctx, cache.KeyTeams, teams, s.teamsTTL); err != nil {
		log.Warn().Err(err).Msg("Team cache write failed")
	}
	return teams, nil
}

// KBOTeams returns the ten league clubs used to seed an empty teams table
func KBOTeams() []*models.Team {
	return []*models.Team{
		{Name: "LG 트윈스", ShortName: "LG"},
		{Name: "한화 이글스", ShortName: "한화"},
		{Name: "SSG 랜더스", ShortName: "SSG"},
		{Name: "삼성 라이온즈", ShortName: "삼성"},
		{Name: "NC 다이노스", ShortName: "NC"},
		{Name: "KT 위즈", ShortName: "KT"},
		{Name: "롯데 자이언츠", ShortName: "롯데"},
		{Name: "KIA 타이거즈", ShortName: "KIA"},
		{Name: "두산 베어스", ShortName: "두산"},
		{Name: "키움 히어로즈", ShortName: "키움"},
	}
}

// SeedTeams upserts teams by name and returns the size of the teams table afterwards
func (s *AdminService) SeedTeams(ctx context.Context, teams []*models.Team) (int, error) {
	for _, t := range teams {
		t.Name, t.ShortName = strings.TrimSpace(t.Name), strings.TrimSpace(t.ShortName)
		if t.Name == "" {
			return 0, fmt.Errorf("%w: team name is required", ErrInvalidInput)
		}
		if err := s.teams.Upsert(ctx, t); err != nil {
			log.Error().Err(err).Str("team", t.Name).Msg("Failed to upsert team")
			return 0, fmt.Errorf("failed to seed team %q: %w", t.Name, err)
		}
	}

	if err := s.cache.Delete(ctx, cache.KeyTeams); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate team cache")
	}

	total, err := s.teams.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}
	log.Info().Int("seeded", len(teams)).Int("total", total).Msg("Teams seeded")
	return total, nil
}

// Game returns one stored game in editable form
func (s *AdminService) Game(ctx context.Context, id int) (*models.GameInput, error) {
	g, err := s.games.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrGameNotFound, err)
		}
		log.Error().Err(err).Int("game_id", id).Msg("Failed to load game")
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	in := g.ToInput()
	return &in, nil
}

// GamesForDate returns the games of date in editable draft form
func (s *AdminService) GamesForDate(ctx context.Context, date time.Time) ([]models.GameInput, error) {
	games, err := s.games.ListByDateWithTeams(ctx, date)
	if err != nil {
		log.Error().Err(err).Str("date", FormatDate(date)).Msg("Failed to load games for date")
		return nil, fmt.Errorf("failed to load games: %w", err)
	}

	drafts := make([]models.GameInput, 0, len(games))
	for _, g := range games {
		in := g.Game.ToInput()
		home, away := g.HomeTeam, g.AwayTeam
		in.HomeTeam, in.AwayTeam = &home, &away
		drafts = append(drafts, in)
	}
	return drafts, nil
}

// CreateGame inserts a new game
func (s *AdminService) CreateGame(ctx context.Context, in models.GameInput) (*models.Game, error) {
	game, err := toGame(in, time.Time{})
	if err != nil {
		return nil, err
	}
	game.ID = 0

	if err := s.games.Create(ctx, game); err != nil {
		log.Error().Err(err).Msg("Failed to create game")
		return nil, storeError(err)
	}

	log.Info().Int("game_id", game.ID).Str("date", FormatDate(game.GameDate)).Msg("Game created")
	return game, nil
}

// UpdateGame replaces the editable fields of game id
func (s *AdminService) UpdateGame(ctx context.Context, id int, in models.GameInput) (*models.Game, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}
	game, err := toGame(in, time.Time{})
	if err != nil {
		return nil, err
	}
	game.ID = id

	if err := s.games.Update(ctx, game); err != nil {
		log.Error().Err(err).Int("game_id", id).Msg("Failed to update game")
		return nil, storeError(err)
	}
	return game, nil
}

// DeleteGame removes a game and, through the cascade, its picks
func (s *AdminService) DeleteGame(ctx context.Context, id int) error {
	if err := s.games.Delete(ctx, id); err != nil {
		log.Error().Err(err).Int("game_id", id).Msg("Failed to delete game")
		return storeError(err)
	}
	log.Info().Int("game_id", id).Msg("Game deleted")
	return nil
}

// SaveDrafts writes the draft list of date: drafts with an id are updated, the rest inserted.
// Either every draft is stored or none is.
func (s *AdminService) SaveDrafts(ctx context.Context, date time.Time, drafts []models.GameInput) ([]*models.Game, error) {
	games := make([]*models.Game, 0, len(drafts))
	for i, d := range drafts {
		g, err := toGame(d, date)
		if err != nil {
			return nil, fmt.Errorf("draft %d: %w", i, err)
		}
		games = append(games, g)
	}

	if len(games) == 0 {
		return games, nil
	}

	if err := s.games.SaveAll(ctx, games); err != nil {
		log.Error().Err(err).Str("date", FormatDate(date)).Int("drafts", len(games)).Msg("Failed to save drafts")
		return nil, storeError(err)
	}

	log.Info().Str("date", FormatDate(date)).Int("drafts", len(games)).Msg("Drafts saved")
	return games, nil
}

// AutoFill merges the crawler's games of date into drafts. With no drafts given, the stored
// games of the date are used. Nothing is saved.
func (s *AdminService) AutoFill(ctx context.Context, date time.Time, drafts []models.GameInput) (*models.AutoFillResult, error) {
	if s.crawler == nil {
		return nil, fmt.Errorf("%w: crawler is not configured", ErrCrawlerFailed)
	}

	if len(drafts) == 0 {
		stored, err := s.GamesForDate(ctx, date)
		if err != nil {
			return nil, err
		}
		drafts = stored
	}

	teams, err := s.Teams(ctx)
	if err != nil {
		return nil, err
	}

	day := FormatDate(date)
	matches, err := s.crawler.FetchGames(ctx, day)
	if err != nil {
		log.Error().Err(err).Str("date", day).Msg("Crawler request failed")
		return nil, fmt.Errorf("%w: %v", ErrCrawlerFailed, err)
	}

	merged := mergeCrawled(drafts, matches, teams, day)
	if len(merged.unmatched) > 0 {
		log.Warn().Strs("teams", merged.unmatched).Str("date", day).Msg("Crawled team names matched no team")
	}

	log.Info().
		Str("date", day).
		Int("crawled", len(matches)).
		Int("updated", merged.updated).
		Int("added", merged.added).
		Msg("Auto-fill merged")

	return &models.AutoFillResult{
		Drafts:         merged.drafts,
		UnmatchedTeams: merged.unmatched,
		Crawled:        len(matches),
		Updated:        merged.updated,
		Added:          merged.added,
	}, nil
}

// SyncDate runs auto-fill on the stored games of date and saves the result. Drafts whose teams
// could not be resolved are skipped so one unknown name does not block the rest of the day.
func (s *AdminService) SyncDate(ctx context.Context, date time.Time) (*models.AutoFillResult, error) {
	res, err := s.AutoFill(ctx, date, nil)
	if err != nil {
		return nil, err
	}

	keep := make([]models.GameInput, 0, len(res.Drafts))
	for _, d := range res.Drafts {
		if home, away := d.ResolvedTeamIDs(); home == 0 || away == 0 {
			log.Warn().Str("date", FormatDate(date)).Msg("Skipping draft with unresolved team")
			continue
		}
		keep = append(keep, d)
	}

	if _, err := s.SaveDrafts(ctx, date, keep); err != nil {
		return nil, err
	}
	return res, nil
}

// SettleDate scores every pick on the finished games of date and refreshes the aggregate table
func (s *AdminService) SettleDate(ctx context.Context, date time.Time) (*SettlementReport, error) {
	day := FormatDate(date)

	games, err := s.games.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load games: %w", err)
	}

	report := &SettlementReport{Date: day}
	for _, g := range games {
		if !g.IsFinal() {
			continue
		}
		report.Finished++

		n, err := s.predictions.SettleGame(ctx, g.ID, s.points)
		if err != nil {
			log.Error().Err(err).Int("game_id", g.ID).Msg("Failed to settle game")
			return nil, fmt.Errorf("failed to settle game %d: %w", g.ID, err)
		}
		report.Settled += n
	}

	if err := s.scores.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("failed to refresh user scores: %w", err)
	}

	if err := s.cache.DeletePrefix(ctx, cache.PrefixLeaderboard); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate leaderboard cache")
	}
	if err := s.cache.Delete(ctx, cache.KeyUserScores); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate user score cache")
	}

	log.Info().
		Str("date", day).
		Int("finished", report.Finished).
		Int("settled", report.Settled).
		Msg("Settlement complete")

	return report, nil
}

// toGame validates a draft and converts it to a storable game. def is used when the draft
// carries no date of its own.
func toGame(in models.GameInput, def time.Time) (*models.Game, error) {
	date := def
	if in.GameDate != "" {
		d, err := ParseDate(in.GameDate)
		if err != nil {
			return nil, err
		}
		date = d
	}
	if date.IsZero() {
		return nil, fmt.Errorf("%w: game_date is required", ErrInvalidInput)
	}

	if in.Status != "" && !in.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown game_status %q", ErrInvalidInput, in.Status)
	}

	if in.GameTime != nil {
		if *in.GameTime == "" {
			in.GameTime = nil
		} else {
			t, ok := normalizeClock(*in.GameTime)
			if !ok {
				return nil, fmt.Errorf("%w: game_time %q must be HH:MM", ErrInvalidInput, *in.GameTime)
			}
			in.GameTime = &t
		}
	}

	for _, score := range []*int{in.HomeScore, in.AwayScore} {
		if score == nil {
			continue
		}
		if *score < 0 {
			return nil, fmt.Errorf("%w: scores must not be negative", ErrInvalidInput)
		}
		if *score > math.MaxInt32 {
			return nil, fmt.Errorf("%w: score %d is out of range", ErrInvalidInput, *score)
		}
	}

	return in.ToGame(date), nil
}

// storeError maps repository sentinels onto service errors
func storeError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrGameNotFound, err)
	case errors.Is(err, repository.ErrInvalidReference):
		return fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	return fmt.Errorf("failed to save game: %w", err)
}
