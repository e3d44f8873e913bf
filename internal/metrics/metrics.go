package metrics

import (
	"math"
	"sync"
	"time"
)

// Snapshot is a copy of the in-memory counters.
type Snapshot struct {
	MatchesProcessed     int
	MatchesRejected      map[string]int
	CalibrationRuns      int
	CalibrationFallbacks int
	RefreshCycles        int
	RefreshErrors        int
	LastRefreshLatency   time.Duration
	LargestDelta         float64
	HTTPRequests         int
}

// Recorder captures lightweight, in-memory rating pipeline metrics and forwards them
// to OpenTelemetry instruments when configured.
type Recorder struct {
	mu    sync.Mutex
	stats Snapshot
	otel  *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats: Snapshot{MatchesRejected: make(map[string]int)},
		otel:  otel,
	}
}

// RecordMatchProcessed counts a committed match and the size of the larger rating move.
func (r *Recorder) RecordMatchProcessed(homeDelta, awayDelta float64) {
	if r == nil {
		return
	}
	largest := math.Max(math.Abs(homeDelta), math.Abs(awayDelta))

	r.mu.Lock()
	r.stats.MatchesProcessed++
	if largest > r.stats.LargestDelta {
		r.stats.LargestDelta = largest
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordMatch(largest)
	}
}

// RecordMatchRejected counts a match the engine refused, keyed by reason.
func (r *Recorder) RecordMatchRejected(reason string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.stats.MatchesRejected[reason]++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordRejected(reason)
	}
}

// RecordCalibration counts a calibration run; fallback marks runs that kept the defaults.
func (r *Recorder) RecordCalibration(fallback bool) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.stats.CalibrationRuns++
	if fallback {
		r.stats.CalibrationFallbacks++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordCalibration(fallback)
	}
}

// RecordRefreshCycle tracks refresh cycles, their latency and failures.
func (r *Recorder) RecordRefreshCycle(duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.stats.RefreshCycles++
	r.stats.LastRefreshLatency = duration
	if err != nil {
		r.stats.RefreshErrors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordRefresh(duration, err)
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.stats.HTTPRequests++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordHTTPRequest(method, path, status, duration)
	}
}

// Snapshot returns a copy of the current stats.
func (r *Recorder) Snapshot() Snapshot {
	if r == nil {
		return Snapshot{MatchesRejected: map[string]int{}}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.stats
	out.MatchesRejected = make(map[string]int, len(r.stats.MatchesRejected))
	for k, v := range r.stats.MatchesRejected {
		out.MatchesRejected[k] = v
	}
	return out
}
