package bands

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/preston-bernstein/football-elo-service/internal/domain/matches"
)

const (
	DefaultWidth = 50
	DefaultCount = 10

	// Published pcts are rounded to 4 decimals, so sums drift slightly from 1.
	sumTolerance = 1e-3
)

// ErrInvalidBand is returned when a band entry fails validation.
var ErrInvalidBand = errors.New("invalid band")

// Uniform is the distribution used for bands with no historical games.
var Uniform = Distribution{Stronger: 0.333, Draw: 0.333, Weaker: 0.334}

// Distribution is an outcome frequency distribution from the stronger side's perspective.
type Distribution struct {
	Stronger float64
	Draw     float64
	Weaker   float64
}

// GoalMarkets holds the share of a band's games clearing each total-goals line and
// the share where both sides scored.
type GoalMarkets struct {
	Over05Pct float64 `json:"over_05_pct"`
	Over15Pct float64 `json:"over_15_pct"`
	Over25Pct float64 `json:"over_25_pct"`
	Over35Pct float64 `json:"over_35_pct"`
	Over45Pct float64 `json:"over_45_pct"`
	BTTSPct   float64 `json:"btts_pct"`
}

// DefaultGoalMarkets is used for bands with no historical games.
var DefaultGoalMarkets = GoalMarkets{
	Over05Pct: 0.9,
	Over15Pct: 0.75,
	Over25Pct: 0.5,
	Over35Pct: 0.25,
	Over45Pct: 0.1,
	BTTSPct:   0.5,
}

func (g GoalMarkets) values() []float64 {
	return []float64{g.Over05Pct, g.Over15Pct, g.Over25Pct, g.Over35Pct, g.Over45Pct, g.BTTSPct}
}

// Band is the historical outcome distribution for one rating-gap bucket.
type Band struct {
	Band           int     `json:"band"`
	Range          string  `json:"range"`
	TotalGames     int     `json:"total_games"`
	StrongerWinPct float64 `json:"stronger_win_pct"`
	DrawPct        float64 `json:"draw_pct"`
	WeakerWinPct   float64 `json:"weaker_win_pct"`
	GoalMarkets
}

// Distribution returns the band's base percentages.
func (b Band) Distribution() Distribution {
	return Distribution{Stronger: b.StrongerWinPct, Draw: b.DrawPct, Weaker: b.WeakerWinPct}
}

// Validate checks that the band carries a valid probability distribution.
func (b Band) Validate(count int) error {
	if b.Band < 1 || b.Band > count {
		return fmt.Errorf("%w: band number %d outside 1-%d", ErrInvalidBand, b.Band, count)
	}
	for _, p := range []float64{b.StrongerWinPct, b.DrawPct, b.WeakerWinPct} {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("%w: band %d percentage %v outside [0,1]", ErrInvalidBand, b.Band, p)
		}
	}
	sum := b.StrongerWinPct + b.DrawPct + b.WeakerWinPct
	if math.Abs(sum-1) > sumTolerance {
		return fmt.Errorf("%w: band %d percentages sum to %v", ErrInvalidBand, b.Band, sum)
	}
	for _, p := range b.GoalMarkets.values() {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("%w: band %d goal market %v outside [0,1]", ErrInvalidBand, b.Band, p)
		}
	}
	return nil
}

// Table is an immutable set of bands keyed by band number.
// A table may be incomplete; lookups for missing bands report false.
type Table struct {
	count int
	bands map[int]Band
}

// NewTable validates bands and builds a Table. Duplicate band numbers are rejected.
func NewTable(entries []Band, count int) (Table, error) {
	if count <= 0 {
		count = DefaultCount
	}
	t := Table{count: count, bands: make(map[int]Band, len(entries))}
	for _, b := range entries {
		if err := b.Validate(count); err != nil {
			return Table{}, err
		}
		if _, dup := t.bands[b.Band]; dup {
			return Table{}, fmt.Errorf("%w: duplicate band %d", ErrInvalidBand, b.Band)
		}
		t.bands[b.Band] = b
	}
	return t, nil
}

// Lookup returns the band with the given number.
func (t Table) Lookup(number int) (Band, bool) {
	b, ok := t.bands[number]
	return b, ok
}

// Complete reports whether every band 1..count is present.
func (t Table) Complete() bool {
	if t.count == 0 {
		return false
	}
	for n := 1; n <= t.count; n++ {
		if _, ok := t.bands[n]; !ok {
			return false
		}
	}
	return true
}

// Len returns the number of bands present.
func (t Table) Len() int {
	return len(t.bands)
}

// TotalGames sums the games behind every band in the table.
func (t Table) TotalGames() int {
	total := 0
	for _, b := range t.bands {
		total += b.TotalGames
	}
	return total
}

// Bands returns the bands ordered by number.
func (t Table) Bands() []Band {
	out := make([]Band, 0, len(t.bands))
	for _, b := range t.bands {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Band < out[j].Band })
	return out
}

// Number maps an absolute rating gap onto a band: min(floor(gap/width)+1, count).
func Number(gap float64, width, count int) int {
	if width <= 0 {
		width = DefaultWidth
	}
	if count <= 0 {
		count = DefaultCount
	}
	gap = math.Abs(gap)
	n := int(math.Floor(gap/float64(width))) + 1
	if n > count {
		return count
	}
	return n
}

// RangeLabel renders the inclusive gap range covered by a band.
func RangeLabel(number, width, count int) string {
	lo := (number - 1) * width
	if number >= count {
		return fmt.Sprintf("%d+", lo)
	}
	return fmt.Sprintf("%d-%d", lo, number*width-1)
}

// Aggregate builds a complete table from rated matches. Unrated matches are ignored and
// bands without games get the Uniform distribution and DefaultGoalMarkets.
func Aggregate(ms []matches.Match, width, count int) Table {
	if width <= 0 {
		width = DefaultWidth
	}
	if count <= 0 {
		count = DefaultCount
	}

	type tally struct {
		stronger, draw, weaker int
		over                   [5]int
		btts                   int
	}
	tallies := make(map[int]*tally, count)
	for _, m := range ms {
		if !m.Rated() {
			continue
		}
		n := Number(float64(*m.HomeRating-*m.AwayRating), width, count)
		tl, ok := tallies[n]
		if !ok {
			tl = &tally{}
			tallies[n] = tl
		}
		switch m.Result() {
		case matches.ResultStronger:
			tl.stronger++
		case matches.ResultDraw:
			tl.draw++
		default:
			tl.weaker++
		}
		goals := m.TotalGoals()
		for line := range tl.over {
			if goals > line {
				tl.over[line]++
			}
		}
		if m.BothScored() {
			tl.btts++
		}
	}

	t := Table{count: count, bands: make(map[int]Band, count)}
	for n := 1; n <= count; n++ {
		b := Band{Band: n, Range: RangeLabel(n, width, count)}
		tl, ok := tallies[n]
		if !ok {
			b.StrongerWinPct, b.DrawPct, b.WeakerWinPct = Uniform.Stronger, Uniform.Draw, Uniform.Weaker
			b.GoalMarkets = DefaultGoalMarkets
			t.bands[n] = b
			continue
		}
		total := tl.stronger + tl.draw + tl.weaker
		b.TotalGames = total
		b.StrongerWinPct = round4(float64(tl.stronger) / float64(total))
		b.DrawPct = round4(float64(tl.draw) / float64(total))
		b.WeakerWinPct = round4(float64(tl.weaker) / float64(total))
		share := func(k int) float64 { return round4(float64(k) / float64(total)) }
		b.GoalMarkets = GoalMarkets{
			Over05Pct: share(tl.over[0]),
			Over15Pct: share(tl.over[1]),
			Over25Pct: share(tl.over[2]),
			Over35Pct: share(tl.over[3]),
			Over45Pct: share(tl.over[4]),
			BTTSPct:   share(tl.btts),
		}
		t.bands[n] = b
	}
	return t
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
