package server

import (
	"testing"

	"github.com/preston-bernstein/football-elo-service/internal/config"
)

func TestBuildSnapshotsRespectsConfig(t *testing.T) {
	dir := t.TempDir()
	components := buildSnapshots(config.Config{Storage: config.StorageConfig{DataDir: dir}})
	if components.store == nil || components.writer == nil {
		t.Fatalf("expected snapshots components to be initialized")
	}
	if components.writer.BasePath() != dir {
		t.Fatalf("expected writer rooted at %s, got %s", dir, components.writer.BasePath())
	}
}
