package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/preston-bernstein/football-elo-service/internal/app/ratings"
	"github.com/preston-bernstein/football-elo-service/internal/testutil"
)

func benchService(b *testing.B) *ratings.Service {
	b.Helper()
	svc, err := ratings.NewService(ratings.Options{})
	if err != nil {
		b.Fatalf("new service: %v", err)
	}
	ctx := context.Background()
	if _, err := svc.Import(ctx, testutil.SampleMatches()); err != nil {
		b.Fatalf("import: %v", err)
	}
	if _, err := svc.Refresh(ctx); err != nil {
		b.Fatalf("refresh: %v", err)
	}
	return svc
}

func BenchmarkRankings(b *testing.B) {
	h := NewHandler(benchService(b), nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/rankings", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rr := httptest.NewRecorder()
		h.Rankings(rr, req)
	}
}

func BenchmarkTeam(b *testing.B) {
	h := NewHandler(benchService(b), nil, nil)
	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/teams/Arsenal", nil), map[string]string{"team": "Arsenal"})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rr := httptest.NewRecorder()
		h.Team(rr, req)
	}
}

func BenchmarkFixture(b *testing.B) {
	h := NewHandler(benchService(b), nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/fixtures?home=Arsenal&away=Everton", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rr := httptest.NewRecorder()
		h.Fixture(rr, req)
	}
}
