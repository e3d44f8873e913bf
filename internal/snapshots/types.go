package snapshots

import (
	"encoding/json"

	"github.com/preston-bernstein/football-elo-service/internal/bands"
	"github.com/preston-bernstein/football-elo-service/internal/calibration"
	"github.com/preston-bernstein/football-elo-service/internal/domain/matches"
	"github.com/preston-bernstein/football-elo-service/internal/rating"
)

// RatingEntry is the enriched per-team shape written to current_elo.json.
type RatingEntry struct {
	Elo  int `json:"elo"`
	Rank int `json:"rank"`
}

// Bundle is everything a refresh persists.
type Bundle struct {
	Rankings    []rating.Ranking
	History     map[string][]rating.HistoryEntry
	Bands       []bands.Band
	Calibration *calibration.Result
	Matches     []matches.Match
}

// RatingsFile converts rankings into the enriched {team: {elo, rank}} shape.
func RatingsFile(rankings []rating.Ranking) map[string]RatingEntry {
	out := make(map[string]RatingEntry, len(rankings))
	for _, r := range rankings {
		out[r.Team] = RatingEntry{Elo: r.Rating, Rank: r.Rank}
	}
	return out
}

// bandsFile is the on-disk band table, keyed by band number.
type bandsFile map[string]bands.Band

// bandRecord is one entry of a list-shaped band file. Bands without games may carry
// their fallback distribution as home/away percentages.
type bandRecord struct {
	bands.Band
	HomeWinPct *float64 `json:"home_win_pct,omitempty"`
	AwayWinPct *float64 `json:"away_win_pct,omitempty"`
}

func (r bandRecord) band() bands.Band {
	b := r.Band
	if b.StrongerWinPct == 0 && b.WeakerWinPct == 0 && r.HomeWinPct != nil && r.AwayWinPct != nil {
		b.StrongerWinPct, b.WeakerWinPct = *r.HomeWinPct, *r.AwayWinPct
	}
	return b
}

// matchRecord reads ledger entries whose match_id may be a string or a number.
type matchRecord struct {
	matches.Match
	ID json.RawMessage `json:"match_id,omitempty"`
}
