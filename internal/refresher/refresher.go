package refresher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/preston-bernstein/football-elo-service/internal/app/ratings"
	"github.com/preston-bernstein/football-elo-service/internal/domain/matches"
	"github.com/preston-bernstein/football-elo-service/internal/logging"
	"github.com/preston-bernstein/football-elo-service/internal/metrics"
	"github.com/preston-bernstein/football-elo-service/internal/snapshots"
)

const (
	defaultSchedule = "@every 1h"
	defaultTimeout  = 2 * time.Minute
	maxFailures     = 3
)

// ErrRunInProgress is returned by Trigger when another cycle holds the run lock.
var ErrRunInProgress = errors.New("refresh already running")

// Pipeline is the rating service surface a refresh cycle drives.
type Pipeline interface {
	Import(ctx context.Context, ms []matches.Match) (ratings.ImportResult, error)
	Refresh(ctx context.Context) (ratings.Report, error)
	Export(ctx context.Context) (snapshots.Bundle, error)
}

// Source supplies match results to import before each refresh.
type Source interface {
	Matches(ctx context.Context) ([]matches.Match, error)
}

// SnapshotWriter persists the exported state.
type SnapshotWriter interface {
	WriteBundle(b snapshots.Bundle) (snapshots.WriteResult, error)
}

// Options configures a Refresher. Source and Writer are optional.
type Options struct {
	Schedule   string
	RunOnStart bool
	Timeout    time.Duration
	Source     Source
	Writer     SnapshotWriter
	Logger     *slog.Logger
	Metrics    *metrics.Recorder
}

// Result describes one completed cycle.
type Result struct {
	RunID    string               `json:"run_id"`
	Imported ratings.ImportResult `json:"imported"`
	Report   ratings.Report       `json:"report"`
	Written  []string             `json:"written,omitempty"`
}

// Status describes the recent health of the refresh loop.
type Status struct {
	ConsecutiveFailures int
	LastError           string
	LastAttempt         time.Time
	LastSuccess         time.Time
	LastRunID           string
}

// IsReady reports whether a cycle has succeeded and the loop is not failing repeatedly.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < maxFailures
}

// Refresher runs import, replay, recalibration and snapshot writes on a cron schedule.
type Refresher struct {
	pipeline   Pipeline
	source     Source
	writer     SnapshotWriter
	logger     *slog.Logger
	metrics    *metrics.Recorder
	schedule   string
	timeout    time.Duration
	runOnStart bool
	now        func() time.Time
	newRunID   func() string

	cron     *cron.Cron
	startMu  sync.Mutex
	started  bool
	stopOnce sync.Once
	runMu    sync.Mutex

	statusMu sync.RWMutex
	status   Status
}

// New constructs a Refresher, validating the schedule up front.
func New(pipeline Pipeline, opts Options) (*Refresher, error) {
	if pipeline == nil {
		return nil, errors.New("refresher requires a pipeline")
	}
	if opts.Schedule == "" {
		opts.Schedule = defaultSchedule
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if _, err := cron.ParseStandard(opts.Schedule); err != nil {
		return nil, fmt.Errorf("refresh schedule %q: %w", opts.Schedule, err)
	}
	return &Refresher{
		pipeline:   pipeline,
		source:     opts.Source,
		writer:     opts.Writer,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		schedule:   opts.Schedule,
		timeout:    opts.Timeout,
		runOnStart: opts.RunOnStart,
		now:        time.Now,
		newRunID:   uuid.NewString,
		cron:       cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}, nil
}

// Start schedules refresh cycles until ctx is cancelled or Stop is called.
func (r *Refresher) Start(ctx context.Context) error {
	r.startMu.Lock()
	defer r.startMu.Unlock()
	if r.started {
		return nil
	}

	if _, err := r.cron.AddFunc(r.schedule, func() { r.runScheduled(ctx) }); err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}
	r.started = true
	r.cron.Start()
	logging.Info(r.logger, "refresher started", "schedule", r.schedule)

	if r.runOnStart {
		// Warm ratings on boot.
		go r.runScheduled(ctx)
	}
	go func() {
		<-ctx.Done()
		_ = r.Stop(context.Background())
	}()
	return nil
}

// Stop halts the schedule and waits for a running cycle until ctx is done.
func (r *Refresher) Stop(ctx context.Context) error {
	var err error
	r.stopOnce.Do(func() {
		done := r.cron.Stop()
		select {
		case <-done.Done():
		case <-ctx.Done():
			err = ctx.Err()
		}
		logging.Info(r.logger, "refresher stopped")
	})
	return err
}

func (r *Refresher) runScheduled(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	_, _ = r.RunOnce(ctx)
}

// Trigger runs a cycle now unless one is already in flight.
func (r *Refresher) Trigger(ctx context.Context) (Result, error) {
	if !r.runMu.TryLock() {
		return Result{}, ErrRunInProgress
	}
	defer r.runMu.Unlock()
	return r.run(ctx)
}

// RunOnce runs a cycle, waiting for any in-flight cycle to finish first.
func (r *Refresher) RunOnce(ctx context.Context) (Result, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()
	return r.run(ctx)
}

func (r *Refresher) run(parent context.Context) (Result, error) {
	ctx, cancel := context.WithTimeout(parent, r.timeout)
	defer cancel()

	start := r.now()
	res := Result{RunID: r.newRunID()}
	logger := logging.WithRun(r.logger, res.RunID)
	r.recordAttempt(start, res.RunID)

	err := r.cycle(ctx, logger, &res)
	elapsed := r.now().Sub(start)
	r.metrics.RecordRefreshCycle(elapsed, err)
	if err != nil {
		logging.Error(logger, "refresh cycle failed", err, slog.Int64(logging.FieldDurationMS, elapsed.Milliseconds()))
		r.recordFailure(err, start)
		return res, err
	}

	r.recordSuccess(start)
	logging.Info(logger, "refresh cycle complete",
		logging.FieldCount, res.Report.Processed,
		logging.FieldSkipped, res.Report.Rejected,
		"calibrated", res.Report.CalibrationApplied,
		slog.Int64(logging.FieldDurationMS, elapsed.Milliseconds()),
	)
	return res, nil
}

func (r *Refresher) cycle(ctx context.Context, logger *slog.Logger, res *Result) error {
	if r.source != nil {
		ms, err := r.source.Matches(ctx)
		if err != nil {
			return fmt.Errorf("read matches: %w", err)
		}
		if res.Imported, err = r.pipeline.Import(ctx, ms); err != nil {
			return fmt.Errorf("import matches: %w", err)
		}
	}

	report, err := r.pipeline.Refresh(ctx)
	res.Report = report
	if err != nil {
		return fmt.Errorf("refresh ratings: %w", err)
	}

	if r.writer != nil {
		bundle, err := r.pipeline.Export(ctx)
		if err != nil {
			return fmt.Errorf("export state: %w", err)
		}
		written, err := r.writer.WriteBundle(bundle)
		if err != nil {
			return fmt.Errorf("write snapshots: %w", err)
		}
		res.Written = written.Written
		logging.Debug(logger, "snapshots written", logging.FieldCount, len(written.Written),
			logging.FieldSkipped, len(written.Unchanged))
	}
	return nil
}

func (r *Refresher) recordAttempt(at time.Time, runID string) {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	r.status.LastAttempt = at
	r.status.LastRunID = runID
}

func (r *Refresher) recordSuccess(at time.Time) {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	r.status.ConsecutiveFailures = 0
	r.status.LastError = ""
	r.status.LastSuccess = at
}

func (r *Refresher) recordFailure(err error, at time.Time) {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	r.status.ConsecutiveFailures++
	if err != nil {
		r.status.LastError = err.Error()
	}
	r.status.LastAttempt = at
}

// Status returns a snapshot of the refresher's recent health.
func (r *Refresher) Status() Status {
	r.statusMu.RLock()
	defer r.statusMu.RUnlock()
	return r.status
}
