// Command elo replays match results once, writes snapshot files and prints the table.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/preston-bernstein/football-elo-service/internal/app/ratings"
	"github.com/preston-bernstein/football-elo-service/internal/config"
	"github.com/preston-bernstein/football-elo-service/internal/domain/matches"
	"github.com/preston-bernstein/football-elo-service/internal/feed"
	"github.com/preston-bernstein/football-elo-service/internal/logging"
	"github.com/preston-bernstein/football-elo-service/internal/snapshots"
	"github.com/preston-bernstein/football-elo-service/internal/store"
)

const defaultTop = 10

type options struct {
	csvPath string
	dataDir string
	dbPath  string
	top     int
}

func main() {
	cfg := config.Load()
	logger := logging.NewLogger(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts, err := parseFlags(os.Args[1:], cfg)
	if err != nil {
		os.Exit(2)
	}
	if err := run(ctx, cfg, opts, os.Stdout, logger); err != nil {
		logging.Error(logger, "elo run failed", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, cfg config.Config) (options, error) {
	fs := flag.NewFlagSet("elo", flag.ContinueOnError)
	opts := options{}
	fs.StringVar(&opts.csvPath, "csv", cfg.Storage.MatchesCSV, "match results CSV to import before replaying")
	fs.StringVar(&opts.dataDir, "data", cfg.Storage.DataDir, "snapshot directory to seed from and write to")
	fs.StringVar(&opts.dbPath, "db", cfg.Storage.MatchesDB, "sqlite match ledger; empty keeps it in memory")
	fs.IntVar(&opts.top, "top", defaultTop, "number of teams to print")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func run(ctx context.Context, cfg config.Config, opts options, out io.Writer, logger *slog.Logger) error {
	var ledger matches.Store = store.NewMemoryStore()
	if opts.dbPath != "" {
		db, err := store.OpenSQLite(ctx, opts.dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		ledger = db
	}

	svc, err := ratings.NewService(ratings.Options{
		Engine:      cfg.Rating.Engine,
		Venue:       cfg.Rating.Venue,
		Multipliers: cfg.Rating.Multipliers,
		Ledger:      ledger,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	if err := svc.SeedFromSnapshots(ctx, snapshots.NewFSStore(opts.dataDir)); err != nil {
		return err
	}

	if opts.csvPath != "" {
		ms, err := feed.NewFileSource(opts.csvPath, feed.NewImporter(nil, logger)).Matches(ctx)
		if err != nil {
			return err
		}
		imported, err := svc.Import(ctx, ms)
		if err != nil {
			return err
		}
		logging.Info(logger, "matches imported",
			"added", imported.Added,
			"duplicates", imported.Duplicates,
			"invalid", imported.Invalid,
		)
	}

	report, err := svc.Refresh(ctx)
	if err != nil {
		return err
	}
	if report.Processed == 0 && report.Pending == 0 && len(svc.Rankings()) == 0 {
		return errors.New("no matches to rate")
	}

	bundle, err := svc.Export(ctx)
	if err != nil {
		return err
	}
	written, err := snapshots.NewWriter(opts.dataDir, 0).WriteBundle(bundle)
	if err != nil {
		return err
	}
	logging.Info(logger, "snapshots written",
		logging.FieldCount, len(written.Written),
		logging.FieldSkipped, len(written.Unchanged),
	)

	printTable(out, svc, opts.top)
	return nil
}

func printTable(out io.Writer, svc *ratings.Service, top int) {
	rankings := svc.Rankings()
	if top > 0 && top < len(rankings) {
		rankings = rankings[:top]
	}
	fmt.Fprintf(out, "Ratings as of %s\n", svc.LastProcessedDate())
	for _, r := range rankings {
		fmt.Fprintf(out, "%3d. %-24s %5d\n", r.Rank, r.Team, r.Rating)
	}
	if result, ok := svc.Calibration(); ok {
		fmt.Fprintf(out, "Venue multipliers: home %.3f away %.3f (%d games)\n",
			result.HomeMultiplier, result.AwayMultiplier, result.SampleSize)
	}
}
