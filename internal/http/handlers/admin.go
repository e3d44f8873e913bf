package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/football-elo-service/internal/http/requestutil"
	"github.com/preston-bernstein/football-elo-service/internal/logging"
	"github.com/preston-bernstein/football-elo-service/internal/refresher"
)

// Trigger runs a refresh cycle on demand.
type Trigger interface {
	Trigger(ctx context.Context) (refresher.Result, error)
}

// AdminHandler exposes admin-only endpoints.
type AdminHandler struct {
	trigger Trigger
	token   string
	logger  *slog.Logger
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(trigger Trigger, token string, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		trigger: trigger,
		token:   token,
		logger:  logger,
	}
}

// Refresh runs import, replay, recalibration and snapshot writes immediately.
// Guarded by ADMIN_TOKEN; returns 401 if missing/invalid and 409 while a cycle is running.
func (h *AdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost, h.logger) {
		return
	}
	if !h.authorize(r) {
		logging.Warn(h.logger, "admin unauthorized",
			slog.String(logging.FieldPath, r.URL.Path),
			slog.String("client_ip", requestutil.ClientIP(r)),
		)
		writeError(w, r, http.StatusUnauthorized, "unauthorized", h.logger)
		return
	}
	if h.trigger == nil {
		writeError(w, r, http.StatusServiceUnavailable, "refresher not configured", h.logger)
		return
	}

	logger := loggerFromContext(r, h.logger)
	res, err := h.trigger.Trigger(r.Context())
	switch {
	case errors.Is(err, refresher.ErrRunInProgress):
		writeError(w, r, http.StatusConflict, err.Error(), logger)
		return
	case err != nil:
		logging.Warn(logger, "admin refresh failed", slog.String(logging.FieldRunID, res.RunID), slog.Any("error", err))
		writeError(w, r, http.StatusInternalServerError, "refresh failed", logger)
		return
	}

	logging.Info(logger, "admin refresh complete",
		slog.String(logging.FieldRunID, res.RunID),
		slog.Int(logging.FieldCount, res.Report.Processed),
	)
	writeJSON(w, http.StatusOK, res, logger)
}

func (h *AdminHandler) authorize(r *http.Request) bool {
	if h.token == "" {
		return false
	}
	token, ok := requestutil.BearerToken(r)
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.token)) == 1
}
