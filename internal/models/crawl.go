package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CrawledResult is the score line of a crawled match
type CrawledResult struct {
	HomeTeam    string `json:"home_team"`
	AwayTeam    string `json:"away_team"`
	HomePitcher string `json:"home_pitcher"`
	AwayPitcher string `json:"away_pitcher"`
	HomeScore   *int   `json:"home_score"`
	AwayScore   *int   `json:"away_score"`
}

// CrawledMatch is one game as reported by the crawler
type CrawledMatch struct {
	Result     CrawledResult `json:"result"`
	IsFinished bool          `json:"is_finished"`
	StartTime  string        `json:"start_time"`
}

// CrawlResponse is the crawler envelope
type CrawlResponse struct {
	Success bool           `json:"success"`
	Data    CrawledMatches `json:"data"`
	Error   string         `json:"error,omitempty"`
}

// CrawledMatches decodes from either a list or a single match object
type CrawledMatches []CrawledMatch

// UnmarshalJSON implements json.Unmarshaler
func (m *CrawledMatches) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = nil
		return nil
	}

	if data[0] == '{' {
		var single CrawledMatch
		if err := json.Unmarshal(data, &single); err != nil {
			return fmt.Errorf("invalid crawled match: %w", err)
		}
		*m = CrawledMatches{single}
		return nil
	}

	var list []CrawledMatch
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("invalid crawled match list: %w", err)
	}
	*m = list
	return nil
}

// AutoFillResult is the merged draft list plus the crawled names that matched no team
type AutoFillResult struct {
	Drafts         []GameInput `json:"drafts"`
	UnmatchedTeams []string    `json:"unmatched_teams"`
	Crawled        int         `json:"crawled"`
	Updated        int         `json:"updated"`
	Added          int         `json:"added"`
}
