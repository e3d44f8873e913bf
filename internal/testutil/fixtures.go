package testutil

import (
	"github.com/preston-bernstein/football-elo-service/internal/bands"
	"github.com/preston-bernstein/football-elo-service/internal/domain/matches"
)

// Match builds an unrated match record.
func Match(date, home, away string, homeGoals, awayGoals int) matches.Match {
	return matches.Match{Date: date, HomeTeam: home, AwayTeam: away, HomeGoals: homeGoals, AwayGoals: awayGoals}
}

// SampleMatches is a short opening run between four sides, in date order.
// Replayed from 1500 it leaves Arsenal 1522, Chelsea 1506, Fulham 1500 and Everton 1472.
func SampleMatches() []matches.Match {
	return []matches.Match{
		Match("2024-08-10", "Arsenal", "Chelsea", 1, 0),
		Match("2024-08-10", "Everton", "Fulham", 0, 0),
		Match("2024-08-17", "Chelsea", "Everton", 2, 0),
		Match("2024-08-24", "Everton", "Arsenal", 0, 3),
		Match("2024-08-31", "Fulham", "Chelsea", 1, 1),
	}
}

// SampleBands returns a complete band table with a fixed, valid distribution per band.
func SampleBands() bands.Table {
	entries := make([]bands.Band, 0, bands.DefaultCount)
	for n := 1; n <= bands.DefaultCount; n++ {
		entries = append(entries, bands.Band{
			Band:           n,
			Range:          bands.RangeLabel(n, bands.DefaultWidth, bands.DefaultCount),
			TotalGames:     100,
			StrongerWinPct: 0.45,
			DrawPct:        0.27,
			WeakerWinPct:   0.28,
		})
	}
	t, err := bands.NewTable(entries, bands.DefaultCount)
	if err != nil {
		panic(err)
	}
	return t
}
