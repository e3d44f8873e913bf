package http

import (
	"log/slog"
	nethttp "net/http"

	"github.com/gorilla/mux"

	"github.com/preston-bernstein/football-elo-service/internal/http/handlers"
	"github.com/preston-bernstein/football-elo-service/internal/http/middleware"
	"github.com/preston-bernstein/football-elo-service/internal/metrics"
)

// NewRouter registers HTTP routes. Admin routes are mounted only when admin is non-nil.
func NewRouter(h *handlers.Handler, admin *handlers.AdminHandler, logger *slog.Logger, recorder *metrics.Recorder) nethttp.Handler {
	logged := middleware.Logging(logger, recorder)

	r := mux.NewRouter()
	// mux skips Use middleware for unmatched requests.
	r.NotFoundHandler = logged(nethttp.HandlerFunc(h.NotFound))
	r.MethodNotAllowedHandler = logged(nethttp.HandlerFunc(h.MethodNotAllowed))

	routes := []struct {
		path    string
		handler nethttp.HandlerFunc
	}{
		{"/health", h.Health},
		{"/ready", h.Ready},
		{"/rankings", h.Rankings},
		{"/teams/{team}", h.Team},
		{"/teams/{team}/history", h.TeamHistory},
		{"/teams/{team}/form", h.TeamForm},
		{"/teams/{team}/stats", h.TeamStats},
		{"/teams/{team}/h2h/{opponent}", h.HeadToHead},
		{"/fixtures", h.Fixture},
		{"/fixtures/scorelines", h.Scorelines},
		{"/calibration", h.Calibration},
		{"/bands", h.Bands},
	}
	for _, rt := range routes {
		r.HandleFunc(rt.path, rt.handler).Methods(nethttp.MethodGet)
	}

	if admin != nil {
		r.HandleFunc("/admin/refresh", admin.Refresh).Methods(nethttp.MethodPost)
	}

	r.Use(logged)
	return r
}
