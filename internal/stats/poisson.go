package stats

import (
	"math"

	"github.com/preston-bernstein/football-elo-service/internal/domain/matches"
)

const (
	// MaxGoals is the highest per-side score in a scoreline matrix.
	MaxGoals = 5

	defaultLeagueAverage = 1.3
	homeFactor           = 1.1
	awayFactor           = 0.9
	matrixPlaces         = 4
)

// Scorelines is an independent-Poisson score grid. Matrix[h][a] is the
// probability of the home side scoring h and the away side a.
type Scorelines struct {
	HomeTeam      string      `json:"home_team"`
	AwayTeam      string      `json:"away_team"`
	LeagueAverage float64     `json:"league_average"`
	HomeExpected  float64     `json:"home_expected_goals"`
	AwayExpected  float64     `json:"away_expected_goals"`
	Matrix        [][]float64 `json:"matrix"`
}

// LeagueAverage returns mean goals per side per match, or 1.3 when ms holds no goals.
func LeagueAverage(ms []matches.Match) float64 {
	if len(ms) == 0 {
		return defaultLeagueAverage
	}
	total := 0
	for _, m := range ms {
		total += m.TotalGoals()
	}
	if total == 0 {
		return defaultLeagueAverage
	}
	return float64(total) / float64(len(ms)) / 2
}

// Predict builds the scoreline grid from each side's attack and defence relative
// to the league average, with a home uplift and an away discount.
func Predict(home, away TeamStats, leagueAvg float64) Scorelines {
	if leagueAvg <= 0 || math.IsNaN(leagueAvg) {
		leagueAvg = defaultLeagueAverage
	}
	homeAttack := home.AvgGoalsFor / leagueAvg
	homeDefence := home.AvgGoalsAgainst / leagueAvg
	awayAttack := away.AvgGoalsFor / leagueAvg
	awayDefence := away.AvgGoalsAgainst / leagueAvg

	homeExp := homeAttack * awayDefence * leagueAvg * homeFactor
	awayExp := awayAttack * homeDefence * leagueAvg * awayFactor

	matrix := make([][]float64, MaxGoals+1)
	for h := range matrix {
		matrix[h] = make([]float64, MaxGoals+1)
		for a := range matrix[h] {
			matrix[h][a] = round(PMF(h, homeExp)*PMF(a, awayExp), matrixPlaces)
		}
	}

	return Scorelines{
		HomeTeam:      home.Team,
		AwayTeam:      away.Team,
		LeagueAverage: round(leagueAvg, 2),
		HomeExpected:  round(homeExp, 2),
		AwayExpected:  round(awayExp, 2),
		Matrix:        matrix,
	}
}

// PMF is the Poisson probability of exactly k events at rate lambda.
func PMF(k int, lambda float64) float64 {
	if k < 0 || lambda < 0 {
		return 0
	}
	if lambda == 0 {
		if k == 0 {
			return 1
		}
		return 0
	}
	logP := float64(k)*math.Log(lambda) - lambda
	lg, _ := math.Lgamma(float64(k + 1))
	return math.Exp(logP - lg)
}
