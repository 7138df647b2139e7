package service

import (
	"strings"
	"time"

	"kbo_pickem/server/internal/models"
)

// teamIndex resolves crawled team names to ids using both full and short names
type teamIndex struct {
	ids   map[string]int
	teams map[int]*models.Team
}

func newTeamIndex(teams []*models.Team) teamIndex {
	idx := teamIndex{
		ids:   make(map[string]int, len(teams)*2),
		teams: make(map[int]*models.Team, len(teams)),
	}
	for _, t := range teams {
		idx.teams[t.ID] = t
		if name := strings.TrimSpace(t.Name); name != "" {
			idx.ids[name] = t.ID
		}
		if short := strings.TrimSpace(t.ShortName); short != "" {
			if _, taken := idx.ids[short]; !taken {
				idx.ids[short] = t.ID
			}
		}
	}
	return idx
}

// lookup returns the team id for name, or 0 when no team matches
func (idx teamIndex) lookup(name string) (int, bool) {
	id, ok := idx.ids[strings.TrimSpace(name)]
	return id, ok
}

func (idx teamIndex) ref(id int, fallback string) *models.TeamRef {
	if t, ok := idx.teams[id]; ok {
		ref := t.Ref()
		return &ref
	}
	return &models.TeamRef{ID: id, Name: strings.TrimSpace(fallback)}
}

// mergeResult is the outcome of folding crawled matches into a draft list
type mergeResult struct {
	drafts    []models.GameInput
	unmatched []string
	updated   int
	added     int
}

// mergeCrawled folds crawled matches into drafts. A match updates the first draft not yet
// matched with the same (home, away) pair, keeping its id; other matches become new drafts.
// Names that resolve to no team are reported and stored as team id 0.
func mergeCrawled(drafts []models.GameInput, matches []models.CrawledMatch, teams []*models.Team, date string) mergeResult {
	idx := newTeamIndex(teams)

	res := mergeResult{
		drafts:    make([]models.GameInput, len(drafts), len(drafts)+len(matches)),
		unmatched: []string{},
	}
	copy(res.drafts, drafts)
	used := make([]bool, len(drafts))

	reported := make(map[string]bool)
	resolve := func(name string) int {
		id, ok := idx.lookup(name)
		if !ok {
			name = strings.TrimSpace(name)
			if !reported[name] {
				reported[name] = true
				res.unmatched = append(res.unmatched, name)
			}
		}
		return id
	}

	for _, m := range matches {
		homeID := resolve(m.Result.HomeTeam)
		awayID := resolve(m.Result.AwayTeam)

		target := -1
		for i := range drafts {
			if used[i] {
				continue
			}
			h, a := res.drafts[i].ResolvedTeamIDs()
			if h == homeID && a == awayID {
				target = i
				break
			}
		}

		if target >= 0 {
			used[target] = true
			applyCrawled(&res.drafts[target], m)
			res.updated++
			continue
		}

		draft := models.GameInput{
			GameDate:   date,
			HomeTeamID: homeID,
			AwayTeamID: awayID,
			HomeTeam:   idx.ref(homeID, m.Result.HomeTeam),
			AwayTeam:   idx.ref(awayID, m.Result.AwayTeam),
			Status:     models.StatusScheduled,
		}
		applyCrawled(&draft, m)
		res.drafts = append(res.drafts, draft)
		res.added++
	}

	return res
}

// applyCrawled overwrites the draft fields the crawler knows about
func applyCrawled(d *models.GameInput, m models.CrawledMatch) {
	if d.HomeTeamID == 0 && d.HomeTeam != nil {
		d.HomeTeamID = d.HomeTeam.ID
	}
	if d.AwayTeamID == 0 && d.AwayTeam != nil {
		d.AwayTeamID = d.AwayTeam.ID
	}

	if t, ok := normalizeClock(m.StartTime); ok {
		d.GameTime = &t
	}
	if p := strings.TrimSpace(m.Result.HomePitcher); p != "" {
		d.HomePitcher = &p
	}
	if p := strings.TrimSpace(m.Result.AwayPitcher); p != "" {
		d.AwayPitcher = &p
	}
	if m.Result.HomeScore != nil {
		v := *m.Result.HomeScore
		d.HomeScore = &v
	}
	if m.Result.AwayScore != nil {
		v := *m.Result.AwayScore
		d.AwayScore = &v
	}
	if m.IsFinished {
		d.Status = models.StatusFinished
	}
	if d.Status == "" {
		d.Status = models.StatusScheduled
	}
}

// normalizeClock accepts HH:MM or HH:MM:SS and returns HH:MM
func normalizeClock(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04"), true
		}
	}
	return "", false
}
