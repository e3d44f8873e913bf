package server

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/preston-bernstein/football-elo-service/internal/config"
	"github.com/preston-bernstein/football-elo-service/internal/store"
	"github.com/preston-bernstein/football-elo-service/internal/testutil"
)

func TestBuildLedgerDefaultsToMemory(t *testing.T) {
	ledger, closeFn, err := buildLedger(context.Background(), config.Config{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := ledger.(*store.MemoryStore); !ok {
		t.Fatalf("expected memory ledger, got %T", ledger)
	}
	if err := closeFn(); err != nil {
		t.Fatalf("expected no-op close, got %v", err)
	}
}

func TestBuildLedgerOpensSQLite(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{Storage: config.StorageConfig{MatchesDB: filepath.Join(t.TempDir(), "matches.db")}}

	ledger, closeFn, err := buildLedger(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeFn()

	if _, ok := ledger.(*store.SQLiteStore); !ok {
		t.Fatalf("expected sqlite ledger, got %T", ledger)
	}
	if err := ledger.UpsertMatches(ctx, testutil.SampleMatches()); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := ledger.ListMatches(ctx)
	if err != nil || len(got) != len(testutil.SampleMatches()) {
		t.Fatalf("expected sample matches persisted, got %d (%v)", len(got), err)
	}
}

func TestBuildLedgerFailsOnBadPath(t *testing.T) {
	cfg := config.Config{Storage: config.StorageConfig{MatchesDB: filepath.Join(t.TempDir(), "missing", "matches.db")}}
	if _, _, err := buildLedger(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for unreachable database path")
	}
}
