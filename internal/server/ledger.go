package server

import (
	"context"
	"log/slog"

	"github.com/preston-bernstein/football-elo-service/internal/config"
	"github.com/preston-bernstein/football-elo-service/internal/domain/matches"
	"github.com/preston-bernstein/football-elo-service/internal/logging"
	"github.com/preston-bernstein/football-elo-service/internal/store"
)

// buildLedger opens the sqlite ledger when configured and falls back to memory.
// The returned close func is never nil.
func buildLedger(ctx context.Context, cfg config.Config, logger *slog.Logger) (matches.Store, func() error, error) {
	path := cfg.Storage.MatchesDB
	if path == "" {
		logging.Info(logger, "match ledger in memory")
		return store.NewMemoryStore(), func() error { return nil }, nil
	}
	db, err := store.OpenSQLite(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	logging.Info(logger, "match ledger opened", slog.String(logging.FieldFile, path))
	return db, db.Close, nil
}
