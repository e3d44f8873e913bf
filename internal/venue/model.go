package venue

import (
	"errors"
	"fmt"
	"math"

	"github.com/preston-bernstein/football-elo-service/internal/bands"
)

// ErrZeroProbability is returned when a market probability cannot be inverted into odds.
var ErrZeroProbability = errors.New("probability must be positive")

// Outcome identifies a result from the stronger side's perspective.
type Outcome int

const (
	StrongerWin Outcome = iota
	Draw
	WeakerWin
)

func (o Outcome) String() string {
	switch o {
	case StrongerWin:
		return "stronger_win"
	case Draw:
		return "draw"
	case WeakerWin:
		return "weaker_win"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Multipliers are the venue corrections applied to band base probabilities.
type Multipliers struct {
	Home     float64 `json:"home_multiplier"`
	Away     float64 `json:"away_multiplier"`
	DrawHome float64 `json:"draw_home_multiplier"`
	DrawAway float64 `json:"draw_away_multiplier"`
}

// DefaultMultipliers are used until calibration has enough data.
func DefaultMultipliers() Multipliers {
	return Multipliers{Home: 1.11, Away: 0.89, DrawHome: 0.95, DrawAway: 1.05}
}

// Validate rejects multipliers that cannot yield a probability distribution.
func (m Multipliers) Validate() error {
	for name, v := range map[string]float64{
		"home": m.Home, "away": m.Away, "draw_home": m.DrawHome, "draw_away": m.DrawAway,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fmt.Errorf("invalid %s multiplier %v", name, v)
		}
	}
	return nil
}

// Config holds band geometry for the model.
type Config struct {
	BandWidth int
	BandCount int
}

// DefaultConfig returns 10 bands of 50 rating points.
func DefaultConfig() Config {
	return Config{BandWidth: bands.DefaultWidth, BandCount: bands.DefaultCount}
}

// Model turns a rating gap into venue-adjusted outcome probabilities.
// It is a value type; WithMultipliers returns a new model.
type Model struct {
	cfg  Config
	mult Multipliers
}

// NewModel constructs a Model, falling back to defaults for unset geometry.
func NewModel(cfg Config, mult Multipliers) (Model, error) {
	if cfg.BandWidth <= 0 {
		cfg.BandWidth = bands.DefaultWidth
	}
	if cfg.BandCount <= 0 {
		cfg.BandCount = bands.DefaultCount
	}
	if err := mult.Validate(); err != nil {
		return Model{}, err
	}
	return Model{cfg: cfg, mult: mult}, nil
}

// Multipliers returns the multipliers in use.
func (m Model) Multipliers() Multipliers {
	return m.mult
}

// WithMultipliers returns a copy of the model using mult.
func (m Model) WithMultipliers(mult Multipliers) (Model, error) {
	if err := mult.Validate(); err != nil {
		return m, err
	}
	m.mult = mult
	return m, nil
}

// Band maps a rating gap onto a band number.
func (m Model) Band(gap float64) int {
	return bands.Number(gap, m.cfg.BandWidth, m.cfg.BandCount)
}

// Adjust applies the venue multiplier for outcome to the base probability p.
func (m Model) Adjust(p float64, strongerIsHome bool, outcome Outcome) float64 {
	switch outcome {
	case StrongerWin:
		if strongerIsHome {
			return p * m.mult.Home
		}
		return p * m.mult.Away
	case WeakerWin:
		if strongerIsHome {
			return p * m.mult.Away
		}
		return p * m.mult.Home
	default:
		if strongerIsHome {
			return p * m.mult.DrawHome
		}
		return p * m.mult.DrawAway
	}
}

// Probabilities is a normalized home/draw/away distribution.
type Probabilities struct {
	HomeWin float64 `json:"home_win"`
	Draw    float64 `json:"draw"`
	AwayWin float64 `json:"away_win"`
}

// Sum returns HomeWin + Draw + AwayWin.
func (p Probabilities) Sum() float64 {
	return p.HomeWin + p.Draw + p.AwayWin
}

// Probabilities computes venue-adjusted probabilities for a fixture.
// A band missing from table degrades to the uniform distribution.
func (m Model) Probabilities(home, away float64, table bands.Table) Probabilities {
	strongerIsHome := home >= away
	band := m.Band(home - away)

	base := bands.Uniform
	if b, ok := table.Lookup(band); ok {
		base = b.Distribution()
	}

	stronger := m.Adjust(base.Stronger, strongerIsHome, StrongerWin)
	draw := m.Adjust(base.Draw, strongerIsHome, Draw)
	weaker := m.Adjust(base.Weaker, strongerIsHome, WeakerWin)

	total := stronger + draw + weaker
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		stronger, draw, weaker = bands.Uniform.Stronger, bands.Uniform.Draw, bands.Uniform.Weaker
		total = 1
	}
	stronger /= total
	draw /= total
	weaker /= total

	if strongerIsHome {
		return Probabilities{HomeWin: stronger, Draw: draw, AwayWin: weaker}
	}
	return Probabilities{HomeWin: weaker, Draw: draw, AwayWin: stronger}
}
