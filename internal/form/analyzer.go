package form

import (
	"math"
	"sort"

	"github.com/preston-bernstein/football-elo-service/internal/rating"
)

// Trend labels.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

const (
	shortWindow    = 5
	longWindow     = 10
	trendThreshold = 15
	neutralForm    = 5.0
	maxForm        = 10.0
)

// Metrics summarises a team's short-term rating movement.
type Metrics struct {
	Change5    int     `json:"elo_change_last_5"`
	Change10   int     `json:"elo_change_last_10"`
	Trend      string  `json:"trend"`
	FormRating float64 `json:"form_rating"`
}

// Default is reported for teams with fewer than two history entries.
func Default() Metrics {
	return Metrics{Trend: TrendStable, FormRating: neutralForm}
}

// Analyze derives form metrics from a rating history in any order.
func Analyze(history []rating.HistoryEntry) Metrics {
	if len(history) < 2 {
		return Default()
	}

	sorted := make([]rating.HistoryEntry, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	// Consecutive deltas, most recent first.
	var changes []int
	for i := len(sorted) - 1; i > 0 && len(changes) < longWindow; i-- {
		changes = append(changes, sorted[i].Rating-sorted[i-1].Rating)
	}

	delta5 := sum(changes, shortWindow)
	delta10 := sum(changes, longWindow)

	trend := TrendStable
	switch {
	case delta5 > trendThreshold:
		trend = TrendImproving
	case delta5 < -trendThreshold:
		trend = TrendDeclining
	}

	base := neutralForm + float64(delta5)/10
	momentum := 0.0
	if delta10 != 0 {
		momentum = (float64(delta5) - float64(delta10)/2) / 10
	}
	score := base*0.6 + (neutralForm+momentum)*0.4
	score = math.Min(maxForm, math.Max(0, score))

	return Metrics{
		Change5:    delta5,
		Change10:   delta10,
		Trend:      trend,
		FormRating: math.Round(score*10) / 10,
	}
}

func sum(changes []int, n int) int {
	if n > len(changes) {
		n = len(changes)
	}
	total := 0
	for _, c := range changes[:n] {
		total += c
	}
	return total
}
