package ratings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/preston-bernstein/football-elo-service/internal/bands"
	"github.com/preston-bernstein/football-elo-service/internal/calibration"
	"github.com/preston-bernstein/football-elo-service/internal/domain/matches"
	"github.com/preston-bernstein/football-elo-service/internal/form"
	"github.com/preston-bernstein/football-elo-service/internal/logging"
	"github.com/preston-bernstein/football-elo-service/internal/metrics"
	"github.com/preston-bernstein/football-elo-service/internal/rating"
	"github.com/preston-bernstein/football-elo-service/internal/snapshots"
	"github.com/preston-bernstein/football-elo-service/internal/stats"
	"github.com/preston-bernstein/football-elo-service/internal/store"
	"github.com/preston-bernstein/football-elo-service/internal/venue"
)

var (
	// ErrUnknownTeam is returned by team lookups for teams without a rating.
	ErrUnknownTeam = errors.New("unknown team")
	// ErrInvalidFixture is returned when a fixture cannot be priced as requested.
	ErrInvalidFixture = errors.New("invalid fixture")
	// ErrNoMatchData is returned when a rated team has no matches in the ledger.
	ErrNoMatchData = errors.New("no match data")
)

// Options configures a Service. Zero values fall back to package defaults.
type Options struct {
	Engine      rating.Config
	Venue       venue.Config
	Multipliers venue.Multipliers
	Ledger      matches.Store
	Now         func() time.Time
	Logger      *slog.Logger
	Metrics     *metrics.Recorder
}

// Service owns the rating engine and everything derived from it.
// Mutations are serialized; readers only observe committed state.
type Service struct {
	mu sync.RWMutex

	engine      *rating.Engine
	model       venue.Model
	venueCfg    venue.Config
	table       bands.Table
	calibration *calibration.Result
	estimator   calibration.Estimator

	ledger  matches.Store
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// NewService constructs a Service with an empty rating store.
func NewService(opts Options) (*Service, error) {
	if opts.Engine == (rating.Config{}) {
		opts.Engine = rating.DefaultConfig()
	}
	if opts.Venue == (venue.Config{}) {
		opts.Venue = venue.DefaultConfig()
	}
	if opts.Multipliers == (venue.Multipliers{}) {
		opts.Multipliers = venue.DefaultMultipliers()
	}
	if opts.Ledger == nil {
		opts.Ledger = store.NewMemoryStore()
	}

	engine, err := rating.NewEngine(opts.Engine, nil)
	if err != nil {
		return nil, fmt.Errorf("rating engine: %w", err)
	}
	model, err := venue.NewModel(opts.Venue, opts.Multipliers)
	if err != nil {
		return nil, fmt.Errorf("venue model: %w", err)
	}
	table, _ := bands.NewTable(nil, opts.Venue.BandCount)

	return &Service{
		engine:    engine,
		model:     model,
		venueCfg:  opts.Venue,
		table:     table,
		estimator: calibration.NewEstimator(opts.Engine.DefaultRating, opts.Now),
		ledger:    opts.Ledger,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}, nil
}

// SeedFromSnapshots loads persisted ratings, history, bands, calibration and the match
// ledger. Missing files are skipped; a fallback calibration does not replace the
// configured multipliers.
func (s *Service) SeedFromSnapshots(ctx context.Context, src snapshots.Store) error {
	if src == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ratings, err := src.LoadRatings()
	if err != nil && !errors.Is(err, snapshots.ErrSnapshotMissing) {
		return fmt.Errorf("load ratings: %w", err)
	}
	history, err := src.LoadHistory()
	if err != nil && !errors.Is(err, snapshots.ErrSnapshotMissing) {
		return fmt.Errorf("load history: %w", err)
	}
	s.engine.Seed(ratings, history)

	table, err := src.LoadBands(s.venueCfg.BandCount)
	switch {
	case err == nil:
		s.table = table
	case !errors.Is(err, snapshots.ErrSnapshotMissing):
		return fmt.Errorf("load bands: %w", err)
	}

	result, err := src.LoadCalibration()
	switch {
	case err == nil:
		s.applyCalibration(result)
	case !errors.Is(err, snapshots.ErrSnapshotMissing):
		return fmt.Errorf("load calibration: %w", err)
	}

	ledger, err := src.LoadMatches()
	switch {
	case err == nil:
		if err := s.ledger.UpsertMatches(ctx, ledger); err != nil {
			return fmt.Errorf("restore match ledger: %w", err)
		}
	case !errors.Is(err, snapshots.ErrSnapshotMissing):
		return fmt.Errorf("load matches: %w", err)
	}

	logging.Info(s.logger, "seeded from snapshots",
		logging.FieldCount, s.engine.Store().Len(),
		"bands", s.table.Len(),
		"matches", len(ledger),
		"last_processed", s.engine.LastProcessedDate(),
	)
	return nil
}

// ImportResult summarises an Import call.
type ImportResult struct {
	Added      int `json:"added"`
	Duplicates int `json:"duplicates"`
	Invalid    int `json:"invalid"`
}

// Import validates matches and adds new ones to the ledger. Matches whose key is
// already stored are left untouched so their attached ratings survive re-imports.
func (s *Service) Import(ctx context.Context, ms []matches.Match) (ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.ledger.ListMatches(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("list matches: %w", err)
	}
	seen := make(map[string]struct{}, len(existing)+len(ms))
	for _, m := range existing {
		seen[m.Key()] = struct{}{}
	}

	var res ImportResult
	fresh := make([]matches.Match, 0, len(ms))
	for _, m := range ms {
		if err := m.Validate(); err != nil {
			res.Invalid++
			s.metrics.RecordMatchRejected(metrics.ReasonInvalid)
			logging.Warn(s.logger, "match rejected", logging.FieldDate, m.Date,
				logging.FieldHomeTeam, m.HomeTeam, logging.FieldAwayTeam, m.AwayTeam, "error", err)
			continue
		}
		if _, dup := seen[m.Key()]; dup {
			res.Duplicates++
			s.metrics.RecordMatchRejected(metrics.ReasonDuplicate)
			continue
		}
		seen[m.Key()] = struct{}{}
		fresh = append(fresh, m)
	}

	if len(fresh) > 0 {
		if err := s.ledger.UpsertMatches(ctx, fresh); err != nil {
			return ImportResult{}, fmt.Errorf("store matches: %w", err)
		}
	}
	res.Added = len(fresh)
	logging.Info(s.logger, "matches imported", logging.FieldCount, res.Added,
		logging.FieldSkipped, res.Duplicates+res.Invalid)
	return res, nil
}

// Report summarises one Refresh.
type Report struct {
	Pending            int                `json:"pending"`
	Processed          int                `json:"processed"`
	Rejected           int                `json:"rejected"`
	Updates            []rating.Update    `json:"updates,omitempty"`
	BandsUpdated       bool               `json:"bands_updated"`
	Calibration        calibration.Result `json:"calibration"`
	CalibrationApplied bool               `json:"calibration_applied"`
}

// Refresh replays pending ledger matches through the engine, rebuilds the band table
// and recalibrates the venue multipliers. Re-running without new matches changes nothing.
// A rebuild backed by less rated history than the table or calibration it would replace
// is discarded, so a partial ledger never overwrites seeded state.
func (s *Service) Refresh(ctx context.Context) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report Report
	if err := s.replay(ctx, &report); err != nil {
		return report, err
	}

	all, err := s.ledger.ListMatches(ctx)
	if err != nil {
		return report, fmt.Errorf("list matches: %w", err)
	}
	report.BandsUpdated = s.rebuildBands(all)

	report.Calibration = s.estimator.Estimate(all)
	if s.calibration != nil && report.Calibration.SampleSize < s.calibration.SampleSize {
		logging.Info(s.logger, "calibration kept current multipliers",
			"reason", "smaller sample than current calibration",
			logging.FieldCount, report.Calibration.SampleSize,
			"current_sample", s.calibration.SampleSize,
		)
	} else {
		report.CalibrationApplied = s.applyCalibration(report.Calibration)
	}
	s.metrics.RecordCalibration(!report.CalibrationApplied)
	return report, nil
}

// replay processes matches dated after either team's last history entry.
func (s *Service) replay(ctx context.Context, report *Report) error {
	all, err := s.ledger.ListMatches(ctx)
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}

	st := s.engine.Store()
	pending := make([]matches.Match, 0)
	for _, m := range all {
		if after(m.Date, st, m.HomeTeam) || after(m.Date, st, m.AwayTeam) {
			pending = append(pending, m)
		}
	}
	matches.SortChronological(pending)
	report.Pending = len(pending)

	rated := make([]matches.Match, 0, len(pending))
	for _, m := range pending {
		if err := ctx.Err(); err != nil {
			break
		}
		upd, err := s.engine.Process(m)
		if err != nil {
			report.Rejected++
			s.metrics.RecordMatchRejected(rejectReason(err))
			logging.Warn(s.logger, "match skipped", logging.FieldDate, m.Date,
				logging.FieldHomeTeam, m.HomeTeam, logging.FieldAwayTeam, m.AwayTeam, "error", err)
			continue
		}
		s.metrics.RecordMatchProcessed(upd.HomeDelta, upd.AwayDelta)
		logging.Debug(s.logger, "match processed", logging.FieldDate, upd.Date,
			logging.FieldHomeTeam, upd.HomeTeam, "home_delta", upd.HomeDelta,
			logging.FieldAwayTeam, upd.AwayTeam, "away_delta", upd.AwayDelta)
		report.Updates = append(report.Updates, upd)
		rated = append(rated, m.WithRatings(upd.HomeBefore, upd.AwayBefore))
	}
	report.Processed = len(rated)

	// Ratings already committed to the engine must reach the ledger even when ctx is done.
	if len(rated) > 0 {
		if err := s.ledger.UpsertMatches(context.WithoutCancel(ctx), rated); err != nil {
			return fmt.Errorf("store rated matches: %w", err)
		}
	}
	return ctx.Err()
}

func after(date string, st *rating.Store, team string) bool {
	last, ok := st.LastDate(team)
	return !ok || date > last
}

func rejectReason(err error) string {
	if errors.Is(err, rating.ErrNotChronological) {
		return metrics.ReasonNotChronological
	}
	return metrics.ReasonInvalid
}

func (s *Service) rebuildBands(all []matches.Match) bool {
	table := bands.Aggregate(all, s.venueCfg.BandWidth, s.venueCfg.BandCount)
	if table.TotalGames() == 0 {
		return false
	}
	if current := s.table.TotalGames(); table.TotalGames() < current {
		logging.Info(s.logger, "band table kept",
			logging.FieldCount, table.TotalGames(),
			"current_games", current,
		)
		return false
	}
	s.table = table
	return true
}

// applyCalibration swaps in calibrated multipliers. Fallback results and multipliers the
// model rejects (a venue group with no stronger-side wins yields zero) leave the model as is.
func (s *Service) applyCalibration(result calibration.Result) bool {
	if err := result.Err(); err != nil {
		logging.Info(s.logger, "calibration kept current multipliers", "reason", result.Error)
		return false
	}
	model, err := s.model.WithMultipliers(result.Multipliers(s.model.Multipliers()))
	if err != nil {
		logging.Warn(s.logger, "calibrated multipliers rejected", "error", err)
		return false
	}
	s.model = model
	s.calibration = &result
	logging.Info(s.logger, "venue multipliers calibrated",
		"home_multiplier", result.HomeMultiplier,
		"away_multiplier", result.AwayMultiplier,
		logging.FieldCount, result.SampleSize,
	)
	return true
}

// Rankings returns the current rating table.
func (s *Service) Rankings() []rating.Ranking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.Rankings()
}

// TeamView is a team's rating, rank and form.
type TeamView struct {
	Team          string       `json:"team"`
	Rating        int          `json:"elo"`
	Rank          int          `json:"rank"`
	MatchesPlayed int          `json:"matches_played"`
	LastPlayed    string       `json:"last_played,omitempty"`
	Form          form.Metrics `json:"form"`
}

// Team returns the view for a rated team.
func (s *Service) Team(team string) (TeamView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.engine.Rankings() {
		if r.Team != team {
			continue
		}
		history := s.engine.Store().History(team)
		view := TeamView{
			Team:          team,
			Rating:        r.Rating,
			Rank:          r.Rank,
			MatchesPlayed: len(history),
			Form:          form.Analyze(history),
		}
		if n := len(history); n > 0 {
			view.LastPlayed = history[n-1].Date
		}
		return view, nil
	}
	return TeamView{}, fmt.Errorf("%w: %s", ErrUnknownTeam, team)
}

// History returns a team's date-ordered rating history.
func (s *Service) History(team string) ([]rating.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.engine.Store()
	if !st.Has(team) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTeam, team)
	}
	return st.History(team), nil
}

// Form returns a team's form metrics.
func (s *Service) Form(team string) (form.Metrics, error) {
	history, err := s.History(team)
	if err != nil {
		return form.Metrics{}, err
	}
	return form.Analyze(history), nil
}

// Price prices a fixture from current ratings. Unrated teams play at the default rating.
func (s *Service) Price(homeTeam, awayTeam string) (venue.Fixture, error) {
	homeTeam, awayTeam, err := fixturePair(homeTeam, awayTeam)
	if err != nil {
		return venue.Fixture{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.engine.Store()
	return s.model.Price(homeTeam, awayTeam,
		float64(st.Rating(homeTeam)), float64(st.Rating(awayTeam)), s.table)
}

// TeamStats returns a rated team's recent goal averages and form.
func (s *Service) TeamStats(ctx context.Context, team string) (stats.TeamStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all, err := s.ledger.ListMatches(ctx)
	if err != nil {
		return stats.TeamStats{}, fmt.Errorf("list matches: %w", err)
	}
	return s.teamStats(all, team)
}

func (s *Service) teamStats(all []matches.Match, team string) (stats.TeamStats, error) {
	st := s.engine.Store()
	if !st.Has(team) {
		return stats.TeamStats{}, fmt.Errorf("%w: %s", ErrUnknownTeam, team)
	}
	ts, ok := stats.ForTeam(all, team, stats.RecentWindow)
	if !ok {
		return stats.TeamStats{}, fmt.Errorf("%w: %s", ErrNoMatchData, team)
	}
	ts.Form = form.Analyze(st.History(team))
	return ts, nil
}

// HeadToHead returns the record between two rated teams. Teams that never met get a zero record.
func (s *Service) HeadToHead(ctx context.Context, teamA, teamB string) (stats.HeadToHead, error) {
	teamA, teamB, err := fixturePair(teamA, teamB)
	if err != nil {
		return stats.HeadToHead{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.engine.Store()
	for _, team := range []string{teamA, teamB} {
		if !st.Has(team) {
			return stats.HeadToHead{}, fmt.Errorf("%w: %s", ErrUnknownTeam, team)
		}
	}
	all, err := s.ledger.ListMatches(ctx)
	if err != nil {
		return stats.HeadToHead{}, fmt.Errorf("list matches: %w", err)
	}
	return stats.Between(all, teamA, teamB), nil
}

// Scorelines returns a Poisson score grid for a fixture from both sides' recent goals.
func (s *Service) Scorelines(ctx context.Context, homeTeam, awayTeam string) (stats.Scorelines, error) {
	homeTeam, awayTeam, err := fixturePair(homeTeam, awayTeam)
	if err != nil {
		return stats.Scorelines{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all, err := s.ledger.ListMatches(ctx)
	if err != nil {
		return stats.Scorelines{}, fmt.Errorf("list matches: %w", err)
	}
	home, err := s.teamStats(all, homeTeam)
	if err != nil {
		return stats.Scorelines{}, err
	}
	away, err := s.teamStats(all, awayTeam)
	if err != nil {
		return stats.Scorelines{}, err
	}
	return stats.Predict(home, away, stats.LeagueAverage(all)), nil
}

func fixturePair(a, b string) (string, string, error) {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return "", "", fmt.Errorf("%w: home and away teams required", ErrInvalidFixture)
	}
	if a == b {
		return "", "", fmt.Errorf("%w: %s cannot play itself", ErrInvalidFixture, a)
	}
	return a, b, nil
}

// Calibration returns the last applied calibration, if any.
func (s *Service) Calibration() (calibration.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.calibration == nil {
		return calibration.Result{}, false
	}
	return *s.calibration, true
}

// Multipliers returns the venue multipliers currently used for pricing.
func (s *Service) Multipliers() venue.Multipliers {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model.Multipliers()
}

// Bands returns the band table ordered by band number.
func (s *Service) Bands() []bands.Band {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.Bands()
}

// LastProcessedDate returns the date of the most recent rated match.
func (s *Service) LastProcessedDate() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.LastProcessedDate()
}

// Export captures the state persisted after a refresh, including the match ledger.
func (s *Service) Export(ctx context.Context) (snapshots.Bundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ledger, err := s.ledger.ListMatches(ctx)
	if err != nil {
		return snapshots.Bundle{}, fmt.Errorf("list matches: %w", err)
	}
	b := snapshots.Bundle{
		Rankings: s.engine.Rankings(),
		History:  s.engine.Store().AllHistory(),
		Bands:    s.table.Bands(),
		Matches:  ledger,
	}
	if s.calibration != nil {
		c := *s.calibration
		b.Calibration = &c
	}
	return b, nil
}
