package matches

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/preston-bernstein/football-elo-service/internal/timeutil"
)

// ErrInvalidMatch is returned when a match record fails validation at ingestion.
var ErrInvalidMatch = errors.New("invalid match")

// Match is a completed fixture as supplied by the match feed.
// HomeRating/AwayRating hold the ratings each side carried into the match once the
// engine has processed it; nil means the match has not been rated yet.
type Match struct {
	ID         string `json:"match_id,omitempty"`
	Date       string `json:"date"`
	HomeTeam   string `json:"home_team"`
	AwayTeam   string `json:"away_team"`
	HomeGoals  int    `json:"home_goals"`
	AwayGoals  int    `json:"away_goals"`
	HomeRating *int   `json:"home_elo,omitempty"`
	AwayRating *int   `json:"away_elo,omitempty"`
}

// Validate checks the required fields of a match record.
func (m Match) Validate() error {
	if strings.TrimSpace(m.HomeTeam) == "" || strings.TrimSpace(m.AwayTeam) == "" {
		return fmt.Errorf("%w: team names required", ErrInvalidMatch)
	}
	if m.HomeTeam == m.AwayTeam {
		return fmt.Errorf("%w: %s cannot play itself", ErrInvalidMatch, m.HomeTeam)
	}
	if m.HomeGoals < 0 || m.AwayGoals < 0 {
		return fmt.Errorf("%w: negative goals %d-%d", ErrInvalidMatch, m.HomeGoals, m.AwayGoals)
	}
	if _, err := timeutil.ParseDate(m.Date); err != nil {
		return fmt.Errorf("%w: date %q (expected YYYY-MM-DD)", ErrInvalidMatch, m.Date)
	}
	return nil
}

// Key returns the ledger key for the match, deriving one from date and teams when no ID is set.
func (m Match) Key() string {
	if m.ID != "" {
		return m.ID
	}
	return m.Date + "|" + m.HomeTeam + "|" + m.AwayTeam
}

// Rated reports whether both pre-match ratings are attached.
func (m Match) Rated() bool {
	return m.HomeRating != nil && m.AwayRating != nil
}

// WithRatings returns a copy of the match carrying the given pre-match ratings.
func (m Match) WithRatings(home, away int) Match {
	m.HomeRating = &home
	m.AwayRating = &away
	return m
}

// TotalGoals returns the combined score.
func (m Match) TotalGoals() int {
	return m.HomeGoals + m.AwayGoals
}

// BothScored reports whether each side scored at least once.
func (m Match) BothScored() bool {
	return m.HomeGoals > 0 && m.AwayGoals > 0
}

// Result is the outcome of a match relative to the pre-match rating order.
type Result string

const (
	ResultStronger Result = "stronger"
	ResultDraw     Result = "draw"
	ResultWeaker   Result = "weaker"
)

// StrongerIsHome reports whether the home side carried the higher rating (ties favour home).
func (m Match) StrongerIsHome() bool {
	if !m.Rated() {
		return true
	}
	return *m.HomeRating >= *m.AwayRating
}

// Result classifies the match from the stronger side's perspective.
func (m Match) Result() Result {
	switch {
	case m.HomeGoals == m.AwayGoals:
		return ResultDraw
	case (m.HomeGoals > m.AwayGoals) == m.StrongerIsHome():
		return ResultStronger
	default:
		return ResultWeaker
	}
}

// SortChronological orders matches by date, keeping feed order within a day.
func SortChronological(ms []Match) {
	sort.SliceStable(ms, func(i, j int) bool {
		return ms[i].Date < ms[j].Date
	})
}
