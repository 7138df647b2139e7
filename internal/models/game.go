package models

import (
	"database/sql"
	"time"
)

// GameStatus is the lifecycle state of a game as entered by an admin
type GameStatus string

const (
	StatusScheduled  GameStatus = "SCHEDULED"
	StatusInProgress GameStatus = "IN_PROGRESS"
	StatusLive       GameStatus = "LIVE"
	StatusFinished   GameStatus = "FINISHED"
	StatusCanceled   GameStatus = "CANCELED"
)

// Valid reports whether s is one of the known statuses
func (s GameStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusLive, StatusFinished, StatusCanceled:
		return true
	}
	return false
}

// IsActive reports whether the game has started (in progress, live or finished)
func (s GameStatus) IsActive() bool {
	return s == StatusInProgress || s == StatusLive || s == StatusFinished
}

// Game represents a single KBO game
type Game struct {
	ID          int            `db:"id"`
	GameDate    time.Time      `db:"game_date"`
	GameTime    sql.NullString `db:"game_time"` // HH:MM, KST
	HomeTeamID  int            `db:"home_team_id"`
	AwayTeamID  int            `db:"away_team_id"`
	HomePitcher sql.NullString `db:"home_pitcher"`
	AwayPitcher sql.NullString `db:"away_pitcher"`
	HomeScore   sql.NullInt32  `db:"home_score"`
	AwayScore   sql.NullInt32  `db:"away_score"`
	Status      GameStatus     `db:"game_status"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// GameWithTeams is a game joined with both team rows
type GameWithTeams struct {
	Game
	HomeTeam TeamRef
	AwayTeam TeamRef
}

// WinnerTeamID returns the team with the higher score.
// The second result is false when either score is missing or the game is tied.
func (g *Game) WinnerTeamID() (int, bool) {
	if !g.HomeScore.Valid || !g.AwayScore.Valid {
		return 0, false
	}
	switch {
	case g.HomeScore.Int32 > g.AwayScore.Int32:
		return g.HomeTeamID, true
	case g.AwayScore.Int32 > g.HomeScore.Int32:
		return g.AwayTeamID, true
	}
	return 0, false
}

// HasTeam reports whether teamID is one of the two participants
func (g *Game) HasTeam(teamID int) bool {
	return teamID == g.HomeTeamID || teamID == g.AwayTeamID
}

// IsScheduled returns true if the game has not started
func (g *Game) IsScheduled() bool {
	return g.Status == StatusScheduled
}

// IsFinal returns true if the game is finished
func (g *Game) IsFinal() bool {
	return g.Status == StatusFinished
}

// GameInput is the admin-facing shape of a game row, also used for auto-fill drafts
type GameInput struct {
	ID          int        `json:"id,omitempty"`
	GameDate    string     `json:"game_date"`
	GameTime    *string    `json:"game_time"`
	HomeTeamID  int        `json:"home_team_id"`
	AwayTeamID  int        `json:"away_team_id"`
	HomeTeam    *TeamRef   `json:"home_team,omitempty"`
	AwayTeam    *TeamRef   `json:"away_team,omitempty"`
	HomePitcher *string    `json:"home_pitcher"`
	AwayPitcher *string    `json:"away_pitcher"`
	HomeScore   *int       `json:"home_score"`
	AwayScore   *int       `json:"away_score"`
	Status      GameStatus `json:"game_status"`
}

// ResolvedTeamIDs prefers the explicit ids and falls back to the embedded relations
func (gi *GameInput) ResolvedTeamIDs() (home, away int) {
	home, away = gi.HomeTeamID, gi.AwayTeamID
	if home == 0 && gi.HomeTeam != nil {
		home = gi.HomeTeam.ID
	}
	if away == 0 && gi.AwayTeam != nil {
		away = gi.AwayTeam.ID
	}
	return home, away
}

// ToGame converts a GameInput to the Game model. date must already be parsed.
func (gi *GameInput) ToGame(date time.Time) *Game {
	home, away := gi.ResolvedTeamIDs()
	game := &Game{
		ID:          gi.ID,
		GameDate:    date,
		HomeTeamID:  home,
		AwayTeamID:  away,
		GameTime:    nullString(gi.GameTime),
		HomePitcher: nullString(gi.HomePitcher),
		AwayPitcher: nullString(gi.AwayPitcher),
		HomeScore:   nullInt32(gi.HomeScore),
		AwayScore:   nullInt32(gi.AwayScore),
		Status:      gi.Status,
	}
	if game.Status == "" {
		game.Status = StatusScheduled
	}
	return game
}

// ToInput converts a stored game back into its editable form
func (g *Game) ToInput() GameInput {
	return GameInput{
		ID:          g.ID,
		GameDate:    g.GameDate.Format("2006-01-02"),
		GameTime:    stringPtr(g.GameTime),
		HomeTeamID:  g.HomeTeamID,
		AwayTeamID:  g.AwayTeamID,
		HomePitcher: stringPtr(g.HomePitcher),
		AwayPitcher: stringPtr(g.AwayPitcher),
		HomeScore:   intPtr(g.HomeScore),
		AwayScore:   intPtr(g.AwayScore),
		Status:      g.Status,
	}
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt32(i *int) sql.NullInt32 {
	if i == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*i), Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func intPtr(i sql.NullInt32) *int {
	if !i.Valid {
		return nil
	}
	v := int(i.Int32)
	return &v
}
