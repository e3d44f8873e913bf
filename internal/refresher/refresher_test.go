package refresher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/preston-bernstein/football-elo-service/internal/app/ratings"
	"github.com/preston-bernstein/football-elo-service/internal/domain/matches"
	"github.com/preston-bernstein/football-elo-service/internal/metrics"
	"github.com/preston-bernstein/football-elo-service/internal/rating"
	"github.com/preston-bernstein/football-elo-service/internal/snapshots"
)

type stubPipeline struct {
	refreshErr error
	importErr  error
	imported   []matches.Match
	calls      atomic.Int32
	notify     chan struct{}
	block      chan struct{}
}

func (p *stubPipeline) Import(ctx context.Context, ms []matches.Match) (ratings.ImportResult, error) {
	p.imported = append(p.imported, ms...)
	return ratings.ImportResult{Added: len(ms)}, p.importErr
}

func (p *stubPipeline) Refresh(ctx context.Context) (ratings.Report, error) {
	p.calls.Add(1)
	if p.notify != nil {
		select {
		case p.notify <- struct{}{}:
		default:
		}
	}
	if p.block != nil {
		<-p.block
	}
	return ratings.Report{Processed: 2}, p.refreshErr
}

func (p *stubPipeline) Export(context.Context) (snapshots.Bundle, error) {
	return snapshots.Bundle{Rankings: []rating.Ranking{{Team: "Arsenal", Rating: 1550, Rank: 1}}}, nil
}

type stubSource struct {
	ms  []matches.Match
	err error
}

func (s stubSource) Matches(context.Context) ([]matches.Match, error) {
	return s.ms, s.err
}

type stubWriter struct {
	bundles []snapshots.Bundle
	err     error
}

func (w *stubWriter) WriteBundle(b snapshots.Bundle) (snapshots.WriteResult, error) {
	w.bundles = append(w.bundles, b)
	return snapshots.WriteResult{Written: []string{snapshots.FileRatings}}, w.err
}

func newTestRefresher(t *testing.T, p Pipeline, opts Options) *Refresher {
	t.Helper()
	r, err := New(p, opts)
	if err != nil {
		t.Fatalf("new refresher: %v", err)
	}
	r.newRunID = func() string { return "run-1" }
	return r
}

func TestNewValidatesSchedule(t *testing.T) {
	if _, err := New(&stubPipeline{}, Options{Schedule: "every now and then"}); err == nil {
		t.Fatal("expected invalid schedule to fail")
	}
	if _, err := New(nil, Options{}); err == nil {
		t.Fatal("expected nil pipeline to fail")
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	r := newTestRefresher(t, &stubPipeline{}, Options{})
	if r.schedule != defaultSchedule || r.timeout != defaultTimeout {
		t.Fatalf("expected defaults, got %q %s", r.schedule, r.timeout)
	}
}

func TestRunOnceImportsRefreshesAndWrites(t *testing.T) {
	p := &stubPipeline{}
	w := &stubWriter{}
	rec := metrics.NewRecorder()
	src := stubSource{ms: []matches.Match{{Date: "2024-08-10", HomeTeam: "Arsenal", AwayTeam: "Chelsea"}}}
	r := newTestRefresher(t, p, Options{Source: src, Writer: w, Metrics: rec})

	res, err := r.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.RunID != "run-1" || res.Imported.Added != 1 || res.Report.Processed != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(res.Written) != 1 || res.Written[0] != snapshots.FileRatings {
		t.Fatalf("unexpected written files %v", res.Written)
	}
	if len(p.imported) != 1 || len(w.bundles) != 1 || w.bundles[0].Rankings[0].Team != "Arsenal" {
		t.Fatalf("expected import and write, got %+v %+v", p.imported, w.bundles)
	}

	status := r.Status()
	if !status.IsReady() || status.LastRunID != "run-1" || status.LastSuccess.IsZero() {
		t.Fatalf("unexpected status %+v", status)
	}
	if snap := rec.Snapshot(); snap.RefreshCycles != 1 || snap.RefreshErrors != 0 {
		t.Fatalf("unexpected metrics %+v", snap)
	}
}

func TestRunOnceWithoutSourceOrWriter(t *testing.T) {
	p := &stubPipeline{}
	r := newTestRefresher(t, p, Options{})
	if _, err := r.RunOnce(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if p.calls.Load() != 1 {
		t.Fatalf("expected one refresh, got %d", p.calls.Load())
	}
}

func TestRunOnceFailures(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		name string
		p    *stubPipeline
		opts Options
	}{
		{name: "source", p: &stubPipeline{}, opts: Options{Source: stubSource{err: boom}}},
		{name: "import", p: &stubPipeline{importErr: boom}, opts: Options{Source: stubSource{}}},
		{name: "refresh", p: &stubPipeline{refreshErr: boom}},
		{name: "write", p: &stubPipeline{}, opts: Options{Writer: &stubWriter{err: boom}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := metrics.NewRecorder()
			tc.opts.Metrics = rec
			tc.opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
			r := newTestRefresher(t, tc.p, tc.opts)

			if _, err := r.RunOnce(context.Background()); !errors.Is(err, boom) {
				t.Fatalf("expected boom, got %v", err)
			}
			status := r.Status()
			if status.ConsecutiveFailures != 1 || status.LastError == "" || status.IsReady() {
				t.Fatalf("unexpected status %+v", status)
			}
			if rec.Snapshot().RefreshErrors != 1 {
				t.Fatalf("expected refresh error recorded")
			}
		})
	}
}

func TestStatusReadinessAfterRepeatedFailures(t *testing.T) {
	p := &stubPipeline{}
	r := newTestRefresher(t, p, Options{})
	if _, err := r.RunOnce(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	p.refreshErr = errors.New("down")
	for i := 0; i < maxFailures-1; i++ {
		_, _ = r.RunOnce(context.Background())
	}
	if !r.Status().IsReady() {
		t.Fatalf("expected ready below failure threshold, got %+v", r.Status())
	}
	_, _ = r.RunOnce(context.Background())
	if r.Status().IsReady() {
		t.Fatalf("expected not ready at failure threshold, got %+v", r.Status())
	}

	p.refreshErr = nil
	_, _ = r.RunOnce(context.Background())
	if status := r.Status(); !status.IsReady() || status.ConsecutiveFailures != 0 {
		t.Fatalf("expected recovery, got %+v", status)
	}
}

func TestTriggerRejectsConcurrentRun(t *testing.T) {
	p := &stubPipeline{notify: make(chan struct{}, 1), block: make(chan struct{})}
	r := newTestRefresher(t, p, Options{})

	done := make(chan struct{})
	go func() {
		_, _ = r.RunOnce(context.Background())
		close(done)
	}()
	select {
	case <-p.notify:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for run to start")
	}

	if _, err := r.Trigger(context.Background()); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("expected run in progress, got %v", err)
	}
	close(p.block)
	<-done

	if _, err := r.Trigger(context.Background()); err != nil {
		t.Fatalf("expected trigger to run once idle, got %v", err)
	}
}

func TestStartRunsOnBootAndStops(t *testing.T) {
	p := &stubPipeline{notify: make(chan struct{}, 1)}
	r := newTestRefresher(t, p, Options{RunOnStart: true, Schedule: "@every 1h"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := r.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := r.Start(ctx); err != nil {
		t.Fatalf("second start should no-op, got %v", err)
	}

	select {
	case <-p.notify:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for boot refresh")
	}

	if err := r.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := r.Stop(context.Background()); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}

func TestScheduledRunSkipsCancelledContext(t *testing.T) {
	p := &stubPipeline{}
	r := newTestRefresher(t, p, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r.runScheduled(ctx)
	if p.calls.Load() != 0 {
		t.Fatalf("expected no refresh after cancellation, got %d", p.calls.Load())
	}
}
