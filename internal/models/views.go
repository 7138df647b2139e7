package models

// TodayGame is a game of the current day with the caller's pick, if any
type TodayGame struct {
	ID          int        `json:"id"`
	GameDate    string     `json:"game_date"`
	GameTime    *string    `json:"game_time"`
	Status      GameStatus `json:"game_status"`
	HomePitcher *string    `json:"home_pitcher"`
	AwayPitcher *string    `json:"away_pitcher"`
	HomeTeam    TeamRef    `json:"home_team"`
	AwayTeam    TeamRef    `json:"away_team"`
	Prediction  *UserPick  `json:"prediction"`
}

// HistoryPrediction is the settled view of a member's pick on a finished game
type HistoryPrediction struct {
	PredictedTeamName string `json:"predicted_team_name"`
	IsCorrect         bool   `json:"is_correct"`
	PointsEarned      int    `json:"points_earned"`
	IsSettled         bool   `json:"is_settled"`
}

// HistoryGame is a finished game with the member's pick outcome
type HistoryGame struct {
	ID         int                `json:"id"`
	HomeTeam   TeamRef            `json:"home_team"`
	AwayTeam   TeamRef            `json:"away_team"`
	HomeScore  *int               `json:"home_score"`
	AwayScore  *int               `json:"away_score"`
	GameResult string             `json:"gameResult,omitempty"`
	Prediction *HistoryPrediction `json:"prediction"`
}

// DailyHistory is the member's result sheet for one date
type DailyHistory struct {
	Games       []HistoryGame `json:"games"`
	TotalPoints int           `json:"totalPoints"`
	Message     string        `json:"message,omitempty"`
}

// PredictionRatio is the share of picks per side for an active game, in percent
type PredictionRatio struct {
	GameID        int     `json:"game_id"`
	HomeTeamName  string  `json:"home_team_name"`
	AwayTeamName  string  `json:"away_team_name"`
	HomeTeamRatio float64 `json:"home_team_ratio"`
	AwayTeamRatio float64 `json:"away_team_ratio"`
	TotalVotes    int     `json:"total_votes"`
}

// HistoryRow is a finished game joined with the member's pick, as read from the store
type HistoryRow struct {
	GameWithTeams
	Prediction *Prediction
}
