package calibration

import (
	"errors"
	"math"
	"time"

	"github.com/preston-bernstein/football-elo-service/internal/domain/matches"
	"github.com/preston-bernstein/football-elo-service/internal/rating"
	"github.com/preston-bernstein/football-elo-service/internal/timeutil"
	"github.com/preston-bernstein/football-elo-service/internal/venue"
)

// ErrInsufficientData is reported when either venue group has no informative matches.
var ErrInsufficientData = errors.New("insufficient data")

// insufficientDataMessage is the Error value published with fallback results.
const insufficientDataMessage = "Insufficient data"

// Result is the outcome of a calibration run.
// When Error is set only the multipliers are meaningful and they carry the defaults.
type Result struct {
	HomeMultiplier    float64 `json:"home_multiplier"`
	AwayMultiplier    float64 `json:"away_multiplier"`
	HomeWinRate       float64 `json:"home_win_rate,omitempty"`
	AwayWinRate       float64 `json:"away_win_rate,omitempty"`
	CombinedRate      float64 `json:"combined_rate,omitempty"`
	SampleSize        int     `json:"sample_size,omitempty"`
	StrongerHomeGames int     `json:"stronger_home_games,omitempty"`
	StrongerAwayGames int     `json:"stronger_away_games,omitempty"`
	LastUpdated       string  `json:"last_updated,omitempty"`
	Error             string  `json:"error,omitempty"`
}

// Err returns ErrInsufficientData when the result is a fallback.
func (r Result) Err() error {
	if r.Error != "" {
		return ErrInsufficientData
	}
	return nil
}

// Multipliers overlays the calibrated home/away multipliers on base, keeping its draw multipliers.
func (r Result) Multipliers(base venue.Multipliers) venue.Multipliers {
	base.Home = r.HomeMultiplier
	base.Away = r.AwayMultiplier
	return base
}

// Estimator recomputes venue multipliers from rated match history.
type Estimator struct {
	defaultRating int
	now           func() time.Time
}

// NewEstimator builds an Estimator that treats defaultRating as an unrated placeholder.
// A nil clock uses time.Now.
func NewEstimator(defaultRating int, now func() time.Time) Estimator {
	if defaultRating <= 0 {
		defaultRating = rating.DefaultRating
	}
	if now == nil {
		now = time.Now
	}
	return Estimator{defaultRating: defaultRating, now: now}
}

type group struct {
	wins  int
	total int
}

func (g group) rate() float64 {
	return float64(g.wins) / float64(g.total)
}

// Estimate partitions matches by whether the stronger side played at home and derives
// each group's multiplier as its stronger-side win rate over the combined rate.
func (e Estimator) Estimate(ms []matches.Match) Result {
	var home, away group
	for _, m := range ms {
		if !e.informative(m) {
			continue
		}
		if m.StrongerIsHome() {
			home.total++
			if m.HomeGoals > m.AwayGoals {
				home.wins++
			}
			continue
		}
		away.total++
		if m.AwayGoals > m.HomeGoals {
			away.wins++
		}
	}

	fallback := venue.DefaultMultipliers()
	if home.total == 0 || away.total == 0 {
		return Result{HomeMultiplier: fallback.Home, AwayMultiplier: fallback.Away, Error: insufficientDataMessage}
	}

	combined := group{wins: home.wins + away.wins, total: home.total + away.total}
	combinedRate := combined.rate()
	if combinedRate == 0 {
		return Result{HomeMultiplier: fallback.Home, AwayMultiplier: fallback.Away, Error: insufficientDataMessage}
	}

	return Result{
		HomeMultiplier:    roundTo(home.rate()/combinedRate, 3),
		AwayMultiplier:    roundTo(away.rate()/combinedRate, 3),
		HomeWinRate:       roundTo(home.rate(), 4),
		AwayWinRate:       roundTo(away.rate(), 4),
		CombinedRate:      roundTo(combinedRate, 4),
		SampleSize:        combined.total,
		StrongerHomeGames: home.total,
		StrongerAwayGames: away.total,
		LastUpdated:       timeutil.FormatDate(e.now()),
	}
}

func (e Estimator) informative(m matches.Match) bool {
	if !m.Rated() {
		return false
	}
	return *m.HomeRating != e.defaultRating && *m.AwayRating != e.defaultRating
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
