package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/preston-bernstein/football-elo-service/internal/app/ratings"
	"github.com/preston-bernstein/football-elo-service/internal/bands"
	"github.com/preston-bernstein/football-elo-service/internal/calibration"
	"github.com/preston-bernstein/football-elo-service/internal/form"
	"github.com/preston-bernstein/football-elo-service/internal/logging"
	"github.com/preston-bernstein/football-elo-service/internal/rating"
	"github.com/preston-bernstein/football-elo-service/internal/refresher"
	"github.com/preston-bernstein/football-elo-service/internal/stats"
	"github.com/preston-bernstein/football-elo-service/internal/venue"
)

// RatingsService is the read surface the HTTP layer serves.
type RatingsService interface {
	Rankings() []rating.Ranking
	Team(team string) (ratings.TeamView, error)
	History(team string) ([]rating.HistoryEntry, error)
	Form(team string) (form.Metrics, error)
	Price(homeTeam, awayTeam string) (venue.Fixture, error)
	TeamStats(ctx context.Context, team string) (stats.TeamStats, error)
	HeadToHead(ctx context.Context, teamA, teamB string) (stats.HeadToHead, error)
	Scorelines(ctx context.Context, homeTeam, awayTeam string) (stats.Scorelines, error)
	Calibration() (calibration.Result, bool)
	Multipliers() venue.Multipliers
	Bands() []bands.Band
	LastProcessedDate() string
}

// RankingsResponse is the payload for GET /rankings.
type RankingsResponse struct {
	AsOf     string           `json:"as_of,omitempty"`
	Count    int              `json:"count"`
	Rankings []rating.Ranking `json:"rankings"`
}

// HistoryResponse is the payload for GET /teams/{team}/history.
type HistoryResponse struct {
	Team    string                `json:"team"`
	History []rating.HistoryEntry `json:"history"`
}

// FormResponse is the payload for GET /teams/{team}/form.
type FormResponse struct {
	Team string `json:"team"`
	form.Metrics
}

// CalibrationResponse reports the multipliers in use and the calibration that produced them.
type CalibrationResponse struct {
	Multipliers venue.Multipliers   `json:"multipliers"`
	Calibration *calibration.Result `json:"calibration,omitempty"`
}

// BandsResponse is the payload for GET /bands.
type BandsResponse struct {
	Bands []bands.Band `json:"bands"`
}

// Handler wires HTTP routes to the ratings service.
type Handler struct {
	svc      RatingsService
	logger   *slog.Logger
	statusFn func() refresher.Status
}

// NewHandler constructs a Handler. statusFn may be nil when no refresher runs.
func NewHandler(svc RatingsService, logger *slog.Logger, statusFn func() refresher.Status) *Handler {
	return &Handler{
		svc:      svc,
		logger:   logger,
		statusFn: statusFn,
	}
}

// Health reports the service health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet, h.logger) {
		return
	}
	if err := r.Context().Err(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness for traffic (e.g., for Kubernetes probes).
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet, h.logger) {
		return
	}
	if h.statusFn == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	status := h.statusFn()
	if status.IsReady() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	msg := status.LastError
	if msg == "" {
		msg = "not ready"
	}
	writeError(w, r, http.StatusServiceUnavailable, msg, h.logger)
}

// Rankings returns the rating table, optionally truncated with ?limit=N.
func (h *Handler) Rankings(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet, h.logger) {
		return
	}
	rankings := h.svc.Rankings()
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			writeError(w, r, http.StatusBadRequest, "limit must be a positive integer", h.logger)
			return
		}
		if limit < len(rankings) {
			rankings = rankings[:limit]
		}
	}
	writeJSON(w, http.StatusOK, RankingsResponse{
		AsOf:     h.svc.LastProcessedDate(),
		Count:    len(rankings),
		Rankings: rankings,
	}, h.logger)
}

// Team returns a team's rating, rank and form.
func (h *Handler) Team(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet, h.logger) {
		return
	}
	team, ok := h.teamParam(w, r)
	if !ok {
		return
	}
	view, err := h.svc.Team(team)
	if err != nil {
		h.writeTeamError(w, r, team, err)
		return
	}
	writeJSON(w, http.StatusOK, view, h.logger)
}

// TeamHistory returns a team's rating history.
func (h *Handler) TeamHistory(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet, h.logger) {
		return
	}
	team, ok := h.teamParam(w, r)
	if !ok {
		return
	}
	history, err := h.svc.History(team)
	if err != nil {
		h.writeTeamError(w, r, team, err)
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Team: team, History: history}, h.logger)
}

// TeamForm returns a team's form metrics.
func (h *Handler) TeamForm(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet, h.logger) {
		return
	}
	team, ok := h.teamParam(w, r)
	if !ok {
		return
	}
	metrics, err := h.svc.Form(team)
	if err != nil {
		h.writeTeamError(w, r, team, err)
		return
	}
	writeJSON(w, http.StatusOK, FormResponse{Team: team, Metrics: metrics}, h.logger)
}

// Fixture prices ?home=&away= from current ratings.
func (h *Handler) Fixture(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet, h.logger) {
		return
	}
	q := r.URL.Query()
	home, away := strings.TrimSpace(q.Get("home")), strings.TrimSpace(q.Get("away"))
	if home == "" || away == "" {
		writeError(w, r, http.StatusBadRequest, "home and away query parameters are required", h.logger)
		return
	}

	logger := loggerFromContext(r, h.logger)
	fixture, err := h.svc.Price(home, away)
	switch {
	case errors.Is(err, ratings.ErrInvalidFixture):
		writeError(w, r, http.StatusBadRequest, err.Error(), logger)
		return
	case errors.Is(err, venue.ErrZeroProbability):
		// Sparse bands can carry a 0% outcome; no finite fair price exists.
		logging.Warn(logger, "fixture has a zero-probability outcome", logging.FieldHomeTeam, home, logging.FieldAwayTeam, away)
		writeError(w, r, http.StatusUnprocessableEntity, "fixture cannot be priced", logger)
		return
	case err != nil:
		logging.Error(logger, "fixture pricing failed", err, logging.FieldHomeTeam, home, logging.FieldAwayTeam, away)
		writeError(w, r, http.StatusInternalServerError, "internal error", logger)
		return
	}
	writeJSON(w, http.StatusOK, fixture, logger)
}

// TeamStats returns a team's recent goal averages and form.
func (h *Handler) TeamStats(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet, h.logger) {
		return
	}
	team, ok := h.teamParam(w, r)
	if !ok {
		return
	}
	ts, err := h.svc.TeamStats(r.Context(), team)
	if errors.Is(err, ratings.ErrNoMatchData) {
		writeError(w, r, http.StatusNotFound, "no match data", h.logger)
		return
	}
	if err != nil {
		h.writeTeamError(w, r, team, err)
		return
	}
	writeJSON(w, http.StatusOK, ts, h.logger)
}

// HeadToHead returns the record between {team} and {opponent}.
func (h *Handler) HeadToHead(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet, h.logger) {
		return
	}
	team, ok := h.teamParam(w, r)
	if !ok {
		return
	}
	opponent := strings.TrimSpace(mux.Vars(r)["opponent"])
	record, err := h.svc.HeadToHead(r.Context(), team, opponent)
	if errors.Is(err, ratings.ErrInvalidFixture) {
		writeError(w, r, http.StatusBadRequest, err.Error(), h.logger)
		return
	}
	if err != nil {
		h.writeTeamError(w, r, team, err)
		return
	}
	writeJSON(w, http.StatusOK, record, h.logger)
}

// Scorelines returns the Poisson score grid for ?home=&away=.
func (h *Handler) Scorelines(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet, h.logger) {
		return
	}
	q := r.URL.Query()
	home, away := strings.TrimSpace(q.Get("home")), strings.TrimSpace(q.Get("away"))
	if home == "" || away == "" {
		writeError(w, r, http.StatusBadRequest, "home and away query parameters are required", h.logger)
		return
	}

	logger := loggerFromContext(r, h.logger)
	grid, err := h.svc.Scorelines(r.Context(), home, away)
	switch {
	case errors.Is(err, ratings.ErrInvalidFixture):
		writeError(w, r, http.StatusBadRequest, err.Error(), logger)
		return
	case errors.Is(err, ratings.ErrUnknownTeam):
		writeError(w, r, http.StatusNotFound, "team not found", logger)
		return
	case errors.Is(err, ratings.ErrNoMatchData):
		writeError(w, r, http.StatusUnprocessableEntity, "not enough match data", logger)
		return
	case err != nil:
		logging.Error(logger, "scoreline prediction failed", err, logging.FieldHomeTeam, home, logging.FieldAwayTeam, away)
		writeError(w, r, http.StatusInternalServerError, "internal error", logger)
		return
	}
	writeJSON(w, http.StatusOK, grid, logger)
}

// Calibration returns the venue multipliers in use and their calibration, if any.
func (h *Handler) Calibration(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet, h.logger) {
		return
	}
	resp := CalibrationResponse{Multipliers: h.svc.Multipliers()}
	if result, ok := h.svc.Calibration(); ok {
		resp.Calibration = &result
	}
	writeJSON(w, http.StatusOK, resp, h.logger)
}

// Bands returns the historical band table.
func (h *Handler) Bands(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet, h.logger) {
		return
	}
	writeJSON(w, http.StatusOK, BandsResponse{Bands: h.svc.Bands()}, h.logger)
}

// NotFound renders unknown routes in the JSON error shape.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, "not found", h.logger)
}

// MethodNotAllowed renders method mismatches in the JSON error shape.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", h.logger)
}

func (h *Handler) teamParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	team := strings.TrimSpace(mux.Vars(r)["team"])
	if team == "" {
		writeError(w, r, http.StatusBadRequest, "invalid team", h.logger)
		return "", false
	}
	return team, true
}

func (h *Handler) writeTeamError(w http.ResponseWriter, r *http.Request, team string, err error) {
	if errors.Is(err, ratings.ErrUnknownTeam) {
		writeError(w, r, http.StatusNotFound, "team not found", h.logger)
		return
	}
	logging.Error(loggerFromContext(r, h.logger), "team lookup failed", err, logging.FieldTeam, team)
	writeError(w, r, http.StatusInternalServerError, "internal error", h.logger)
}
