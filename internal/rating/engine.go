package rating

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/preston-bernstein/football-elo-service/internal/domain/matches"
)

// ErrNotChronological is returned when a match predates the last processed match.
var ErrNotChronological = errors.New("match not in chronological order")

const (
	movDampening = 2.2
	movScale     = 0.001
	// Upsets larger than this are treated as this large; keeps the dampening denominator positive.
	movDiffFloor = -2000.0
)

// Update describes the outcome of processing one match.
type Update struct {
	Date       string  `json:"date"`
	HomeTeam   string  `json:"homeTeam"`
	AwayTeam   string  `json:"awayTeam"`
	HomeBefore int     `json:"homeBefore"`
	AwayBefore int     `json:"awayBefore"`
	HomeRating int     `json:"homeRating"`
	AwayRating int     `json:"awayRating"`
	HomeDelta  float64 `json:"homeDelta"`
	AwayDelta  float64 `json:"awayDelta"`
}

// Ranking is a team's position in the rating table.
type Ranking struct {
	Team   string `json:"team"`
	Rating int    `json:"elo"`
	Rank   int    `json:"rank"`
}

// Engine applies ELO updates to the Store it owns.
type Engine struct {
	cfg      Config
	store    *Store
	lastDate string
}

// NewEngine constructs an Engine. A nil store gets a fresh one at the configured default.
func NewEngine(cfg Config, store *Store) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		store = NewStore(cfg.DefaultRating)
	}
	return &Engine{
		cfg:      cfg,
		store:    store,
		lastDate: store.LatestDate(),
	}, nil
}

// Config returns the engine parameters.
func (e *Engine) Config() Config {
	return e.cfg
}

// Store exposes the owned store for read access.
func (e *Engine) Store() *Store {
	return e.store
}

// Seed loads persisted state into the store and moves the chronological cursor forward.
func (e *Engine) Seed(ratings map[string]int, history map[string][]HistoryEntry) {
	e.store.Seed(ratings, history)
	if latest := e.store.LatestDate(); latest > e.lastDate {
		e.lastDate = latest
	}
}

// LastProcessedDate returns the date of the most recent committed match.
func (e *Engine) LastProcessedDate() string {
	return e.lastDate
}

// ExpectedScore is the logistic win expectancy for team against opponent.
// Only the home side receives the home-advantage bonus.
func (e *Engine) ExpectedScore(team, opponent float64, isHome bool) float64 {
	teamEff, oppEff := team, opponent
	if isHome {
		teamEff += e.cfg.HomeAdvantage
	} else {
		oppEff += e.cfg.HomeAdvantage
	}
	return 1 / (1 + math.Pow(10, (oppEff-teamEff)/400))
}

// MOVMultiplier scales K by goal margin, dampened by how much stronger the winner already was.
// winnerMinusLoser is negative for upsets, which raises the multiplier.
func MOVMultiplier(goalDiff int, winnerMinusLoser float64) float64 {
	if goalDiff == 0 {
		return 1.0
	}
	if goalDiff < 0 {
		goalDiff = -goalDiff
	}
	if winnerMinusLoser < movDiffFloor {
		winnerMinusLoser = movDiffFloor
	}
	goalFactor := math.Log(float64(goalDiff) + 1)
	dampening := movDampening / (winnerMinusLoser*movScale + movDampening)
	return goalFactor * dampening
}

// RatingDelta is the signed rating change for team after scoring teamGoals against opponent.
func (e *Engine) RatingDelta(team, opponent float64, teamGoals, opponentGoals int, isHome bool) float64 {
	actual := 0.5
	switch {
	case teamGoals > opponentGoals:
		actual = 1
	case teamGoals < opponentGoals:
		actual = 0
	}

	k := e.cfg.KFactor
	if e.cfg.UseMOV && teamGoals != opponentGoals {
		winnerMinusLoser := team - opponent
		if teamGoals < opponentGoals {
			winnerMinusLoser = opponent - team
		}
		k *= MOVMultiplier(teamGoals-opponentGoals, winnerMinusLoser)
	}

	return k * (actual - e.ExpectedScore(team, opponent, isHome))
}

// Process applies one match, committing rounded ratings and history for both teams.
func (e *Engine) Process(m matches.Match) (Update, error) {
	if err := m.Validate(); err != nil {
		return Update{}, err
	}
	if m.Date < e.lastDate {
		return Update{}, fmt.Errorf("%w: %s before %s", ErrNotChronological, m.Date, e.lastDate)
	}

	home := e.store.Rating(m.HomeTeam)
	away := e.store.Rating(m.AwayTeam)

	homeDelta := e.RatingDelta(float64(home), float64(away), m.HomeGoals, m.AwayGoals, true)
	awayDelta := e.RatingDelta(float64(away), float64(home), m.AwayGoals, m.HomeGoals, false)

	newHome := int(math.Round(float64(home) + homeDelta))
	newAway := int(math.Round(float64(away) + awayDelta))

	e.store.set(m.HomeTeam, newHome)
	e.store.set(m.AwayTeam, newAway)
	e.store.appendHistory(m.HomeTeam, HistoryEntry{Date: m.Date, Rating: newHome})
	e.store.appendHistory(m.AwayTeam, HistoryEntry{Date: m.Date, Rating: newAway})
	e.lastDate = m.Date

	return Update{
		Date:       m.Date,
		HomeTeam:   m.HomeTeam,
		AwayTeam:   m.AwayTeam,
		HomeBefore: home,
		AwayBefore: away,
		HomeRating: newHome,
		AwayRating: newAway,
		HomeDelta:  roundTo(homeDelta, 1),
		AwayDelta:  roundTo(awayDelta, 1),
	}, nil
}

// Rankings orders teams by rating descending, breaking ties by team name ascending.
func (e *Engine) Rankings() []Ranking {
	ratings := e.store.Ratings()
	out := make([]Ranking, 0, len(ratings))
	for team, r := range ratings {
		out = append(out, Ranking{Team: team, Rating: r})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].Team < out[j].Team
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
