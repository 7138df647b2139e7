package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"kbo_pickem/server/internal/models"
	"kbo_pickem/server/internal/service"

	"github.com/rs/zerolog/log"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.health.Health(ctx); err != nil {
			log.Warn().Err(err).Msg("Health check failed")
			writeJSON(w, http.StatusServiceUnavailable, jsonResponse{"status": "unhealthy", "database": "down"})
			return
		}
	}
	writeJSON(w, http.StatusOK, jsonResponse{"status": "ok"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		StudentID string `json:"student_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	user, err := s.predictions.Login(r.Context(), input.StudentID)
	if err != nil {
		mapServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleTodaysGames(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		mapServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, s.predictions.TodaysGames(r.Context(), userID))
}

func (s *Server) handleSubmitPredictions(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		mapServiceError(w, r, err)
		return
	}

	var input struct {
		Predictions []models.PredictionInput `json:"predictions"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	saved, err := s.predictions.SubmitPredictions(r.Context(), userID, input.Predictions)
	if err != nil {
		mapServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"saved": saved})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		mapServiceError(w, r, err)
		return
	}

	date, err := service.ParseDateOr(r.URL.Query().Get("date"), service.Yesterday(s.predictions.Now()))
	if err != nil {
		mapServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, s.predictions.HistoryForDate(r.Context(), userID, date))
}

func (s *Server) handleRatios(w http.ResponseWriter, r *http.Request) {
	date, err := service.ParseDateOr(r.URL.Query().Get("date"), service.Today(s.predictions.Now()))
	if err != nil {
		mapServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, s.predictions.PredictionRatios(r.Context(), date))
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	from, err := service.ParseDateOr(q.Get("from"), s.leaderboardFrom)
	if err != nil {
		mapServiceError(w, r, err)
		return
	}
	to, err := service.ParseDateOr(q.Get("to"), s.leaderboardTo)
	if err != nil {
		mapServiceError(w, r, err)
		return
	}

	entries, err := s.predictions.Leaderboard(r.Context(), from, to)
	if err != nil {
		mapServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.predictions.AllTimeScores(r.Context()))
}

// handleCrawlGames relays a crawl request for the admin panel's auto-fill button
func (s *Server) handleCrawlGames(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Date string `json:"date"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	if strings.TrimSpace(input.Date) == "" {
		errorResponse(w, http.StatusBadRequest, "Date is required")
		return
	}
	date, err := service.ParseDate(input.Date)
	if err != nil {
		mapServiceError(w, r, err)
		return
	}

	if s.crawler == nil {
		errorResponse(w, http.StatusInternalServerError, "Failed to fetch game data")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.crawlBudget)
	defer cancel()

	matches, err := s.crawler.FetchGames(ctx, service.FormatDate(date))
	if err != nil {
		log.Error().Err(err).Str("date", input.Date).Msg("Error in crawl-games")
		errorResponse(w, http.StatusInternalServerError, "Failed to fetch game data")
		return
	}
	if matches == nil {
		matches = []models.CrawledMatch{}
	}

	writeJSON(w, http.StatusOK, jsonResponse{"success": true, "data": matches})
}
