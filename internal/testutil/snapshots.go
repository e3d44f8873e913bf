package testutil

import (
	"context"
	"testing"

	"github.com/preston-bernstein/football-elo-service/internal/app/ratings"
	"github.com/preston-bernstein/football-elo-service/internal/snapshots"
)

// NewTempWriter returns a snapshot writer rooted in a temp dir.
func NewTempWriter(t *testing.T, retention int) *snapshots.Writer {
	t.Helper()
	return snapshots.NewWriter(t.TempDir(), retention)
}

// WriteServiceSnapshots persists the service's exported state through w.
func WriteServiceSnapshots(t *testing.T, w *snapshots.Writer, svc *ratings.Service) snapshots.WriteResult {
	t.Helper()
	bundle, err := svc.Export(context.Background())
	if err != nil {
		t.Fatalf("export service state: %v", err)
	}
	res, err := w.WriteBundle(bundle)
	if err != nil {
		t.Fatalf("failed to write snapshots to %s: %v", w.BasePath(), err)
	}
	return res
}
