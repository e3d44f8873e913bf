package venue

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/preston-bernstein/football-elo-service/internal/bands"
)

const (
	oddsPlaces        = 2
	probabilityPlaces = 4
)

// Market is one priced outcome.
type Market struct {
	Probability float64 `json:"probability"`
	FairOdds    float64 `json:"fair_odds"`
}

// Odds holds fair prices for the three match markets.
type Odds struct {
	HomeWin Market `json:"home_win"`
	Draw    Market `json:"draw"`
	AwayWin Market `json:"away_win"`
}

// FairOdds inverts each probability into decimal odds rounded to 2 places.
func FairOdds(p Probabilities) (Odds, error) {
	home, err := market("home_win", p.HomeWin)
	if err != nil {
		return Odds{}, err
	}
	draw, err := market("draw", p.Draw)
	if err != nil {
		return Odds{}, err
	}
	away, err := market("away_win", p.AwayWin)
	if err != nil {
		return Odds{}, err
	}
	return Odds{HomeWin: home, Draw: draw, AwayWin: away}, nil
}

func market(name string, p float64) (Market, error) {
	if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
		return Market{}, fmt.Errorf("%w: %s=%v", ErrZeroProbability, name, p)
	}
	odds := decimal.NewFromInt(1).Div(decimal.NewFromFloat(p)).Round(oddsPlaces)
	return Market{
		Probability: round(p, probabilityPlaces),
		FairOdds:    odds.InexactFloat64(),
	}, nil
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Fixture is a priced fixture with the metadata used to produce it.
type Fixture struct {
	HomeTeam      string        `json:"home_team"`
	AwayTeam      string        `json:"away_team"`
	HomeRating    float64       `json:"home_elo"`
	AwayRating    float64       `json:"away_elo"`
	RatingGap     float64       `json:"rating_gap"`
	Band          int           `json:"band"`
	StrongerTeam  string        `json:"stronger_team"`
	Probabilities Probabilities `json:"probabilities"`
	Odds          Odds          `json:"odds"`
	Multipliers   Multipliers   `json:"multipliers"`
}

// Price computes probabilities, fair odds and metadata for a fixture.
func (m Model) Price(homeTeam, awayTeam string, home, away float64, table bands.Table) (Fixture, error) {
	probs := m.Probabilities(home, away, table)
	odds, err := FairOdds(probs)
	if err != nil {
		return Fixture{}, err
	}

	stronger := homeTeam
	if home < away {
		stronger = awayTeam
	}

	return Fixture{
		HomeTeam:     homeTeam,
		AwayTeam:     awayTeam,
		HomeRating:   home,
		AwayRating:   away,
		RatingGap:    math.Abs(home - away),
		Band:         m.Band(home - away),
		StrongerTeam: stronger,
		Probabilities: Probabilities{
			HomeWin: round(probs.HomeWin, probabilityPlaces),
			Draw:    round(probs.Draw, probabilityPlaces),
			AwayWin: round(probs.AwayWin, probabilityPlaces),
		},
		Odds:        odds,
		Multipliers: m.mult,
	}, nil
}
