package server

import (
	"github.com/preston-bernstein/football-elo-service/internal/config"
	"github.com/preston-bernstein/football-elo-service/internal/snapshots"
)

type snapshotComponents struct {
	store  *snapshots.FSStore
	writer *snapshots.Writer
}

func buildSnapshots(cfg config.Config) snapshotComponents {
	basePath := cfg.Storage.DataDir
	return snapshotComponents{
		store:  snapshots.NewFSStore(basePath),
		writer: snapshots.NewWriter(basePath, 0),
	}
}
