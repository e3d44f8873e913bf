package calibration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/preston-bernstein/football-elo-service/internal/domain/matches"
	"github.com/preston-bernstein/football-elo-service/internal/venue"
)

var fixedClock = func() time.Time { return time.Date(2024, 5, 19, 16, 0, 0, 0, time.UTC) }

func rated(home, away string, hg, ag, he, ae int) matches.Match {
	return matches.Match{
		Date: "2024-01-01", HomeTeam: home, AwayTeam: away, HomeGoals: hg, AwayGoals: ag,
		HomeRating: &he, AwayRating: &ae,
	}
}

func TestEstimateFallsBackWhenAllRatingsAreDefault(t *testing.T) {
	ms := []matches.Match{
		rated("A", "B", 2, 0, 1500, 1500),
		rated("C", "D", 0, 1, 1500, 1500),
	}
	got := NewEstimator(1500, fixedClock).Estimate(ms)

	assert.Equal(t, Result{HomeMultiplier: 1.11, AwayMultiplier: 0.89, Error: "Insufficient data"}, got)
	assert.ErrorIs(t, got.Err(), ErrInsufficientData)
}

func TestEstimateFallsBackWhenOneGroupIsEmpty(t *testing.T) {
	ms := []matches.Match{
		rated("A", "B", 2, 0, 1600, 1400),
		rated("C", "D", 1, 1, 1550, 1450),
	}
	got := NewEstimator(1500, fixedClock).Estimate(ms)
	assert.Equal(t, "Insufficient data", got.Error)
}

func TestEstimateFallsBackWhenNoStrongerSideWins(t *testing.T) {
	ms := []matches.Match{
		rated("A", "B", 0, 0, 1600, 1400),
		rated("C", "D", 1, 0, 1450, 1550),
	}
	got := NewEstimator(1500, fixedClock).Estimate(ms)
	assert.ErrorIs(t, got.Err(), ErrInsufficientData)
}

func TestEstimateComputesGroupMultipliers(t *testing.T) {
	ms := []matches.Match{
		// stronger at home: 3 of 4 won
		rated("A", "B", 2, 0, 1600, 1400),
		rated("A", "C", 1, 0, 1620, 1480),
		rated("D", "E", 3, 1, 1510, 1490),
		rated("F", "G", 0, 0, 1700, 1300),
		// stronger away: 1 of 4 won
		rated("B", "A", 0, 1, 1400, 1600),
		rated("C", "A", 1, 1, 1480, 1620),
		rated("E", "D", 2, 1, 1490, 1510),
		rated("G", "F", 1, 0, 1300, 1700),
		// skipped: default placeholder or unrated
		rated("H", "I", 5, 0, 1500, 1200),
		{Date: "2024-01-01", HomeTeam: "J", AwayTeam: "K", HomeGoals: 1, AwayGoals: 0},
	}

	got := NewEstimator(1500, fixedClock).Estimate(ms)

	assert.NoError(t, got.Err())
	assert.Equal(t, Result{
		HomeMultiplier:    1.5,
		AwayMultiplier:    0.5,
		HomeWinRate:       0.75,
		AwayWinRate:       0.25,
		CombinedRate:      0.5,
		SampleSize:        8,
		StrongerHomeGames: 4,
		StrongerAwayGames: 4,
		LastUpdated:       "2024-05-19",
	}, got)
}

func TestEstimateRoundsMultipliers(t *testing.T) {
	ms := []matches.Match{
		rated("A", "B", 1, 0, 1600, 1400),
		rated("A", "C", 1, 0, 1600, 1400),
		rated("A", "D", 0, 1, 1600, 1400),
		rated("B", "A", 0, 1, 1400, 1600),
	}
	got := NewEstimator(1500, fixedClock).Estimate(ms)

	// home 2/3, away 1/1, combined 3/4
	assert.Equal(t, 0.889, got.HomeMultiplier)
	assert.Equal(t, 1.333, got.AwayMultiplier)
	assert.Equal(t, 0.6667, got.HomeWinRate)
	assert.Equal(t, 0.75, got.CombinedRate)
}

func TestEstimateIsIdempotent(t *testing.T) {
	ms := []matches.Match{
		rated("A", "B", 2, 0, 1600, 1400),
		rated("B", "A", 0, 1, 1400, 1600),
	}
	est := NewEstimator(1500, fixedClock)
	assert.Equal(t, est.Estimate(ms), est.Estimate(ms))
}

func TestResultMultipliersKeepsDrawTerms(t *testing.T) {
	r := Result{HomeMultiplier: 1.2, AwayMultiplier: 0.8}
	got := r.Multipliers(venue.DefaultMultipliers())
	assert.Equal(t, venue.Multipliers{Home: 1.2, Away: 0.8, DrawHome: 0.95, DrawAway: 1.05}, got)
}
