package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/preston-bernstein/football-elo-service/internal/domain/matches"
)

const createMatchesSQL = `CREATE TABLE IF NOT EXISTS matches (
	match_key  TEXT PRIMARY KEY,
	match_id   TEXT NOT NULL DEFAULT '',
	date       TEXT NOT NULL,
	home_team  TEXT NOT NULL,
	away_team  TEXT NOT NULL,
	home_goals INTEGER NOT NULL,
	away_goals INTEGER NOT NULL,
	home_elo   INTEGER,
	away_elo   INTEGER
)`

const createMatchesDateIndexSQL = `CREATE INDEX IF NOT EXISTS idx_matches_date ON matches (date)`

const upsertMatchSQL = `INSERT INTO matches
	(match_key, match_id, date, home_team, away_team, home_goals, away_goals, home_elo, away_elo)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(match_key) DO UPDATE SET
		match_id = excluded.match_id,
		date = excluded.date,
		home_team = excluded.home_team,
		away_team = excluded.away_team,
		home_goals = excluded.home_goals,
		away_goals = excluded.away_goals,
		home_elo = excluded.home_elo,
		away_elo = excluded.away_elo`

// rowid preserves insertion order within a day; upserts keep the original rowid.
const listMatchesSQL = `SELECT match_id, date, home_team, away_team, home_goals, away_goals, home_elo, away_elo
	FROM matches ORDER BY date, rowid`

// SQLiteStore persists the match ledger in a sqlite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the ledger at path and ensures the schema exists.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite serialises writers; a single connection avoids SQLITE_BUSY under concurrent upserts.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	for _, stmt := range []string{createMatchesSQL, createMatchesDateIndexSQL} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create matches table: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ListMatches returns every stored match in chronological order.
func (s *SQLiteStore) ListMatches(ctx context.Context) ([]matches.Match, error) {
	rows, err := s.db.QueryContext(ctx, listMatchesSQL)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var result []matches.Match
	for rows.Next() {
		var (
			m                matches.Match
			homeElo, awayElo sql.NullInt64
		)
		if err := rows.Scan(&m.ID, &m.Date, &m.HomeTeam, &m.AwayTeam, &m.HomeGoals, &m.AwayGoals, &homeElo, &awayElo); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		if homeElo.Valid && awayElo.Valid {
			m = m.WithRatings(int(homeElo.Int64), int(awayElo.Int64))
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return result, nil
}

// UpsertMatches inserts or replaces matches by key in a single transaction.
func (s *SQLiteStore) UpsertMatches(ctx context.Context, ms []matches.Match) error {
	if len(ms) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, upsertMatchSQL)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, m := range ms {
		if _, err := stmt.ExecContext(ctx,
			m.Key(), m.ID, m.Date, m.HomeTeam, m.AwayTeam, m.HomeGoals, m.AwayGoals,
			nullableRating(m.HomeRating), nullableRating(m.AwayRating),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert match %s: %w", m.Key(), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

func nullableRating(r *int) sql.NullInt64 {
	if r == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*r), Valid: true}
}

var _ matches.Store = (*SQLiteStore)(nil)
