package testutil

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/preston-bernstein/football-elo-service/internal/snapshots"
)

func TestClockHelpers(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := NowAt(now)(); !got.Equal(now) {
		t.Fatalf("expected fixed time, got %v", got)
	}
	if got := MustParseDate("2024-08-10"); got.Day() != 10 || got.Month() != time.August {
		t.Fatalf("unexpected parsed date %v", got)
	}
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic on invalid date")
		}
	}()
	MustParseDate("10/08/2024")
}

func TestFixturesHelper(t *testing.T) {
	ms := SampleMatches()
	for _, m := range ms {
		if err := m.Validate(); err != nil {
			t.Fatalf("sample match invalid: %v", err)
		}
	}
	table := SampleBands()
	if !table.Complete() {
		t.Fatalf("expected complete sample band table")
	}
}

func TestNewRatingsService(t *testing.T) {
	svc := NewRatingsService(t, SampleMatches())
	rankings := svc.Rankings()
	if len(rankings) != 4 {
		t.Fatalf("expected four ranked teams, got %+v", rankings)
	}
	want := []struct {
		team string
		elo  int
	}{{"Arsenal", 1522}, {"Chelsea", 1506}, {"Fulham", 1500}, {"Everton", 1472}}
	for i, w := range want {
		if rankings[i].Team != w.team || rankings[i].Rating != w.elo {
			t.Fatalf("rank %d: expected %s %d, got %+v", i+1, w.team, w.elo, rankings[i])
		}
	}

	if empty := NewRatingsService(t, nil); len(empty.Rankings()) != 0 {
		t.Fatalf("expected empty service")
	}
}

func TestServeHelpers(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"auth":"` + r.Header.Get("Authorization") + `"}`))
	})

	rr := Serve(handler, http.MethodPost, "/test", strings.NewReader("{}"))
	AssertStatus(t, rr, http.StatusCreated)

	rr = ServeRequest(handler, BearerRequest(http.MethodPost, "/admin", "secret"))
	AssertStatus(t, rr, http.StatusCreated)
	var body map[string]string
	DecodeJSON(t, rr, &body)
	if body["auth"] != "Bearer secret" {
		t.Fatalf("expected bearer header, got %+v", body)
	}
	if req := BearerRequest(http.MethodGet, "/", ""); req.Header.Get("Authorization") != "" {
		t.Fatalf("expected no auth header for empty token")
	}
}

func TestSnapshotHelpers(t *testing.T) {
	w := NewTempWriter(t, 5)
	res := WriteServiceSnapshots(t, w, NewRatingsService(t, SampleMatches()))
	if len(res.Written) == 0 {
		t.Fatalf("expected snapshot files written")
	}

	ratings, err := snapshots.NewFSStore(w.BasePath()).LoadRatings()
	if err != nil {
		t.Fatalf("load ratings: %v", err)
	}
	if ratings["Arsenal"] != 1522 {
		t.Fatalf("unexpected ratings %+v", ratings)
	}
}

func TestServerStubs(t *testing.T) {
	r := &StubRefresher{Err: errors.New("stop"), TriggerErr: errors.New("busy")}
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("unexpected start error %v", err)
	}
	if err := r.Stop(context.Background()); !errors.Is(err, r.Err) {
		t.Fatalf("expected stop error")
	}
	if _, err := r.Trigger(context.Background()); !errors.Is(err, r.TriggerErr) {
		t.Fatalf("expected trigger error")
	}
	if r.StartCalls != 1 || r.StopCalls != 1 || r.TriggerCalls != 1 {
		t.Fatalf("unexpected call counts %+v", r)
	}
	if r.Status() != r.StatusVal {
		t.Fatalf("expected status passthrough")
	}

	sh := &StubHTTPServer{ListenErr: errors.New("boom"), ShutdownErr: errors.New("down")}
	sh.HandlerVal = http.NewServeMux()
	_ = sh.ListenAndServe()
	_ = sh.Shutdown(context.Background())
	_ = sh.Handler()
	_ = sh.Addr()
	if sh.ListenCalls != 1 || sh.ShutdownCalls != 1 {
		t.Fatalf("expected listen/shutdown calls, got %+v", sh)
	}

	b := &BlockingHTTPServer{Unblock: make(chan struct{}), HandlerVal: http.NewServeMux()}
	if err := b.ListenAndServe(); err != nil {
		t.Fatalf("expected nil listen error for blocking server")
	}
	done := make(chan error, 1)
	go func() { done <- b.Shutdown(context.Background()) }()
	close(b.Unblock)
	if err := <-done; err != nil {
		t.Fatalf("expected nil shutdown err, got %v", err)
	}

	e := &ErrHTTPServer{}
	if err := e.ListenAndServe(); err == nil {
		t.Fatalf("expected listen error")
	}
	_ = e.Shutdown(context.Background())
	if e.Addr() == "" || e.Handler() == nil || e.ShutdownCalls != 1 {
		t.Fatalf("unexpected ErrHTTPServer state %+v", e)
	}
}

func TestLoggerAndMetricsHelpers(t *testing.T) {
	logger, buf := NewBufferLogger()
	logger.Debug("hello", "k", "v")
	if buf.Len() == 0 {
		t.Fatalf("expected buffered debug output")
	}
	rec, shutdown := NewRecorderWithShutdown()
	if rec == nil || shutdown == nil {
		t.Fatalf("expected recorder and shutdown")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("expected nil shutdown error, got %v", err)
	}
}
