// Package stats derives goal-based team figures from the match ledger.
package stats

import (
	"github.com/shopspring/decimal"

	"github.com/preston-bernstein/football-elo-service/internal/domain/matches"
	"github.com/preston-bernstein/football-elo-service/internal/form"
)

// RecentWindow is how many of a team's latest matches feed its goal averages.
const RecentWindow = 10

// TeamStats is a team's recent scoring record.
type TeamStats struct {
	Team            string       `json:"team"`
	Matches         int          `json:"matches"`
	AvgGoalsFor     float64      `json:"last_10_avg_goals_for"`
	AvgGoalsAgainst float64      `json:"last_10_avg_goals_against"`
	Form            form.Metrics `json:"form"`
}

// ForTeam averages goals for and against over the team's last window matches.
// ms must be in chronological order. It reports false when the team has no matches.
func ForTeam(ms []matches.Match, team string, window int) (TeamStats, bool) {
	if window <= 0 {
		window = RecentWindow
	}
	var goalsFor, goalsAgainst, n int
	for i := len(ms) - 1; i >= 0 && n < window; i-- {
		m := ms[i]
		switch team {
		case m.HomeTeam:
			goalsFor += m.HomeGoals
			goalsAgainst += m.AwayGoals
		case m.AwayTeam:
			goalsFor += m.AwayGoals
			goalsAgainst += m.HomeGoals
		default:
			continue
		}
		n++
	}
	if n == 0 {
		return TeamStats{}, false
	}
	return TeamStats{
		Team:            team,
		Matches:         n,
		AvgGoalsFor:     mean(goalsFor, n, 1),
		AvgGoalsAgainst: mean(goalsAgainst, n, 1),
	}, true
}

func mean(total, n int, places int32) float64 {
	return decimal.NewFromInt(int64(total)).
		Div(decimal.NewFromInt(int64(n))).
		Round(places).
		InexactFloat64()
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
