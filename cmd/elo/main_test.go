package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/preston-bernstein/football-elo-service/internal/config"
	"github.com/preston-bernstein/football-elo-service/internal/snapshots"
	"github.com/preston-bernstein/football-elo-service/internal/testutil"
)

const sampleCSV = `Date,Home_Team,Away_Team,Home_Goals,Away_Goals
2024-08-10,Arsenal,Chelsea,1,0
2024-08-10,Everton,Fulham,0,0
2024-08-17,Chelsea,Everton,2,0
2024-08-24,Everton,Arsenal,0,3
2024-08-31,Fulham,Chelsea,1,1
`

func TestParseFlagsDefaultsFromConfig(t *testing.T) {
	cfg := config.Config{Storage: config.StorageConfig{DataDir: "data", MatchesCSV: "in.csv"}}

	opts, err := parseFlags([]string{"-top", "3"}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.dataDir != "data" || opts.csvPath != "in.csv" || opts.top != 3 {
		t.Fatalf("unexpected options %+v", opts)
	}
	if _, err := parseFlags([]string{"-bogus"}, cfg); err == nil {
		t.Fatalf("expected unknown flag to fail")
	}
}

func TestRunReplaysAndWritesSnapshots(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "matches.csv")
	if err := os.WriteFile(csvPath, []byte(sampleCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	opts := options{
		csvPath: csvPath,
		dataDir: filepath.Join(dir, "data"),
		dbPath:  filepath.Join(dir, "matches.db"),
		top:     2,
	}
	logger, _ := testutil.NewBufferLogger()
	var out bytes.Buffer

	if err := run(context.Background(), config.Config{}, opts, &out, logger); err != nil {
		t.Fatalf("run: %v", err)
	}

	text := out.String()
	if !strings.Contains(text, "Ratings as of 2024-08-31") {
		t.Fatalf("expected as-of line, got %q", text)
	}
	if !strings.Contains(text, "Arsenal") || !strings.Contains(text, "1522") || strings.Contains(text, "Everton") {
		t.Fatalf("expected top two only, got %q", text)
	}
	if _, err := os.Stat(snapshots.Path(opts.dataDir, snapshots.FileRatings)); err != nil {
		t.Fatalf("expected ratings snapshot: %v", err)
	}

	// A second run re-reads the same ledger and snapshots without changing the table.
	out.Reset()
	if err := run(context.Background(), config.Config{}, opts, &out, logger); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !strings.Contains(out.String(), "1522") {
		t.Fatalf("expected stable ratings on rerun, got %q", out.String())
	}
}

func TestRunWithoutMatchesFails(t *testing.T) {
	opts := options{dataDir: t.TempDir(), top: defaultTop}
	if err := run(context.Background(), config.Config{}, opts, &bytes.Buffer{}, nil); err == nil {
		t.Fatalf("expected error with no matches")
	}
}

func TestRunIncrementalInMemoryKeepsFullHistory(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "season.csv")
	next := filepath.Join(dir, "week.csv")
	if err := os.WriteFile(first, []byte(sampleCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	week := "Date,Home_Team,Away_Team,Home_Goals,Away_Goals\n2024-09-07,Chelsea,Fulham,2,1\n"
	if err := os.WriteFile(next, []byte(week), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	dataDir := filepath.Join(dir, "data")
	logger, _ := testutil.NewBufferLogger()

	if err := run(context.Background(), config.Config{}, options{csvPath: first, dataDir: dataDir, top: defaultTop}, &bytes.Buffer{}, logger); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := run(context.Background(), config.Config{}, options{csvPath: next, dataDir: dataDir, top: defaultTop}, &bytes.Buffer{}, logger); err != nil {
		t.Fatalf("second run: %v", err)
	}

	store := snapshots.NewFSStore(dataDir)
	ledger, err := store.LoadMatches()
	if err != nil || len(ledger) != 6 {
		t.Fatalf("expected six persisted matches, got %d (%v)", len(ledger), err)
	}
	tbl, err := store.LoadBands(10)
	if err != nil {
		t.Fatalf("load bands: %v", err)
	}
	if b1, _ := tbl.Lookup(1); b1.TotalGames != 6 {
		t.Fatalf("expected band 1 built from all six matches, got %+v", b1)
	}
}
