package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preston-bernstein/football-elo-service/internal/domain/matches"
)

func match(date, home, away string, hg, ag int) matches.Match {
	return matches.Match{Date: date, HomeTeam: home, AwayTeam: away, HomeGoals: hg, AwayGoals: ag}
}

func ledger() []matches.Match {
	return []matches.Match{
		match("2024-08-01", "Arsenal", "Chelsea", 2, 0),
		match("2024-08-08", "Everton", "Arsenal", 1, 1),
		match("2024-08-15", "Arsenal", "Fulham", 3, 2),
		match("2024-08-22", "Chelsea", "Everton", 0, 1),
	}
}

func TestForTeam(t *testing.T) {
	got, ok := ForTeam(ledger(), "Arsenal", 0)
	require.True(t, ok)
	assert.Equal(t, TeamStats{Team: "Arsenal", Matches: 3, AvgGoalsFor: 2, AvgGoalsAgainst: 1}, got)

	recent, ok := ForTeam(ledger(), "Arsenal", 2)
	require.True(t, ok)
	assert.Equal(t, 2, recent.Matches)
	assert.Equal(t, 2.0, recent.AvgGoalsFor)
	assert.Equal(t, 1.5, recent.AvgGoalsAgainst)

	_, ok = ForTeam(ledger(), "Leeds", 0)
	assert.False(t, ok)
}

func TestBetween(t *testing.T) {
	ms := append(ledger(),
		match("2024-08-29", "Chelsea", "Arsenal", 1, 1),
		match("2024-09-05", "Arsenal", "Chelsea", 0, 2),
	)

	h := Between(ms, "Chelsea", "Arsenal")
	assert.Equal(t, HeadToHead{
		TeamA:      "Arsenal",
		TeamB:      "Chelsea",
		TotalGames: 3,
		TeamAWins:  1,
		TeamBWins:  1,
		Draws:      1,
		LastResult: "Arsenal 0-2 Chelsea",
		LastDate:   "2024-09-05",
	}, h)

	none := Between(ms, "Fulham", "Chelsea")
	assert.Equal(t, HeadToHead{TeamA: "Chelsea", TeamB: "Fulham"}, none)
}

func TestLeagueAverage(t *testing.T) {
	assert.Equal(t, 1.25, LeagueAverage(ledger()))
	assert.Equal(t, 1.3, LeagueAverage(nil))
	assert.Equal(t, 1.3, LeagueAverage([]matches.Match{match("2024-08-01", "A", "B", 0, 0)}))
}

func TestPredict(t *testing.T) {
	home := TeamStats{Team: "Arsenal", AvgGoalsFor: 2, AvgGoalsAgainst: 1}
	away := TeamStats{Team: "Chelsea", AvgGoalsFor: 1, AvgGoalsAgainst: 1}

	got := Predict(home, away, 1.5)
	assert.Equal(t, "Arsenal", got.HomeTeam)
	assert.Equal(t, "Chelsea", got.AwayTeam)
	assert.Equal(t, 1.47, got.HomeExpected)
	assert.Equal(t, 0.6, got.AwayExpected)

	require.Len(t, got.Matrix, MaxGoals+1)
	for _, row := range got.Matrix {
		require.Len(t, row, MaxGoals+1)
	}
	assert.InDelta(t, 0.1266, got.Matrix[0][0], 1e-9)
	assert.InDelta(t, 0.1857, got.Matrix[1][0], 1e-9)
	assert.InDelta(t, 0.0817, got.Matrix[2][1], 1e-9)

	sum := 0.0
	for _, row := range got.Matrix {
		for _, p := range row {
			sum += p
		}
	}
	assert.InDelta(t, 1, sum, 0.01)
}

func TestPredictWithScorelessSide(t *testing.T) {
	home := TeamStats{Team: "Arsenal", AvgGoalsFor: 1.5, AvgGoalsAgainst: 1}
	away := TeamStats{Team: "Chelsea", AvgGoalsFor: 0, AvgGoalsAgainst: 1.5}

	got := Predict(home, away, 0)
	assert.Equal(t, 0.0, got.AwayExpected)
	for h := range got.Matrix {
		for a := 1; a <= MaxGoals; a++ {
			assert.Equal(t, 0.0, got.Matrix[h][a])
		}
	}
	assert.Greater(t, got.Matrix[0][0], 0.0)
}

func TestPMF(t *testing.T) {
	assert.InDelta(t, 0.3679, PMF(0, 1), 1e-4)
	assert.InDelta(t, 0.251, PMF(2, 1.5), 1e-4)
	assert.Equal(t, 1.0, PMF(0, 0))
	assert.Equal(t, 0.0, PMF(3, 0))
	assert.Equal(t, 0.0, PMF(-1, 1))
}
