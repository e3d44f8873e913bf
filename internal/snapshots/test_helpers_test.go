package snapshots

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/preston-bernstein/football-elo-service/internal/bands"
	"github.com/preston-bernstein/football-elo-service/internal/calibration"
	"github.com/preston-bernstein/football-elo-service/internal/domain/matches"
	"github.com/preston-bernstein/football-elo-service/internal/rating"
)

func fixedNow(date string) func() time.Time {
	return func() time.Time {
		t, _ := time.Parse("2006-01-02", date)
		return t.Add(9 * time.Hour)
	}
}

func sampleBundle() Bundle {
	return Bundle{
		Rankings: []rating.Ranking{
			{Team: "Arsenal", Rating: 1712, Rank: 1},
			{Team: "Wolves", Rating: 1451, Rank: 2},
		},
		History: map[string][]rating.HistoryEntry{
			"Arsenal": {{Date: "2024-08-17", Rating: 1712}},
			"Wolves":  {{Date: "2024-08-17", Rating: 1451}},
		},
		Bands: bands.Aggregate(nil, 0, 0).Bands(),
		Calibration: &calibration.Result{
			HomeMultiplier: 1.08, AwayMultiplier: 0.9, SampleSize: 380, LastUpdated: "2024-08-18",
		},
		Matches: []matches.Match{
			{Date: "2024-08-17", HomeTeam: "Arsenal", AwayTeam: "Wolves", HomeGoals: 2, AwayGoals: 0},
		},
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func assertStringsEqual(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("mismatch at %d: got %v, want %v", i, got, want)
		}
	}
}
