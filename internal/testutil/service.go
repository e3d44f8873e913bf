package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/preston-bernstein/football-elo-service/internal/app/ratings"
	"github.com/preston-bernstein/football-elo-service/internal/domain/matches"
)

// NewRatingsService builds a ratings service over an in-memory ledger, imports ms and
// runs one refresh. The calibration clock is fixed at 2024-09-01.
func NewRatingsService(t *testing.T, ms []matches.Match) *ratings.Service {
	t.Helper()
	svc, err := ratings.NewService(ratings.Options{
		Now: NowAt(time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)),
	})
	if err != nil {
		t.Fatalf("new ratings service: %v", err)
	}
	if len(ms) == 0 {
		return svc
	}
	ctx := context.Background()
	if _, err := svc.Import(ctx, ms); err != nil {
		t.Fatalf("import matches: %v", err)
	}
	if _, err := svc.Refresh(ctx); err != nil {
		t.Fatalf("refresh ratings: %v", err)
	}
	return svc
}
