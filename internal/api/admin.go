package api

import (
	"context"
	"net/http"

	"kbo_pickem/server/internal/models"
	"kbo_pickem/server/internal/service"

	"github.com/rs/zerolog/log"
)

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	session, err := s.gate.Login(input.Password)
	if err != nil {
		log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("Admin login rejected")
		mapServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := s.admin.Teams(r.Context())
	if err != nil {
		mapServiceError(w, r, err)
		return
	}
	if teams == nil {
		teams = []*models.Team{}
	}
	writeJSON(w, http.StatusOK, teams)
}

func (s *Server) handleGamesForDate(w http.ResponseWriter, r *http.Request) {
	date, err := service.ParseDateOr(r.URL.Query().Get("date"), service.Today(s.predictions.Now()))
	if err != nil {
		mapServiceError(w, r, err)
		return
	}

	games, err := s.admin.GamesForDate(r.Context(), date)
	if err != nil {
		mapServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var input models.GameInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	game, err := s.admin.CreateGame(r.Context(), input)
	if err != nil {
		mapServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, game.ToInput())
}

func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	id, err := gameIDParam(r)
	if err != nil {
		mapServiceError(w, r, err)
		return
	}

	game, err := s.admin.Game(r.Context(), id)
	if err != nil {
		mapServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

func (s *Server) handleUpdateGame(w http.ResponseWriter, r *http.Request) {
	id, err := gameIDParam(r)
	if err != nil {
		mapServiceError(w, r, err)
		return
	}

	var input models.GameInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	game, err := s.admin.UpdateGame(r.Context(), id, input)
	if err != nil {
		mapServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, game.ToInput())
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	id, err := gameIDParam(r)
	if err != nil {
		mapServiceError(w, r, err)
		return
	}

	if err := s.admin.DeleteGame(r.Context(), id); err != nil {
		mapServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type draftsRequest struct {
	Date   string             `json:"date"`
	Games  []models.GameInput `json:"games"`
	Drafts []models.GameInput `json:"drafts"`
}

func (s *Server) handleSaveDrafts(w http.ResponseWriter, r *http.Request) {
	var input draftsRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	date, err := service.ParseDate(input.Date)
	if err != nil {
		mapServiceError(w, r, err)
		return
	}

	games, err := s.admin.SaveDrafts(r.Context(), date, input.Games)
	if err != nil {
		mapServiceError(w, r, err)
		return
	}

	saved := make([]models.GameInput, 0, len(games))
	for _, g := range games {
		saved = append(saved, g.ToInput())
	}
	writeJSON(w, http.StatusOK, jsonResponse{"saved": len(saved), "games": saved})
}

func (s *Server) handleAutoFill(w http.ResponseWriter, r *http.Request) {
	var input draftsRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	date, err := service.ParseDate(input.Date)
	if err != nil {
		mapServiceError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.crawlBudget)
	defer cancel()

	res, err := s.admin.AutoFill(ctx, date, input.Drafts)
	if err != nil {
		mapServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSettle(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Date string `json:"date"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	date, err := service.ParseDate(input.Date)
	if err != nil {
		mapServiceError(w, r, err)
		return
	}

	report, err := s.admin.SettleDate(r.Context(), date)
	if err != nil {
		mapServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
