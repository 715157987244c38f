package handlers

import (
	"context"
	"net/http"

	"github.com/wonny/betafolio/backend/internal/history"
	"github.com/wonny/betafolio/backend/pkg/logger"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// HistoryReader lists recorded runs; *history.Repository satisfies it
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]history.Run, error)
}

// HistoryHandler serves the optimization run log.
// reader is nil when Postgres is not configured.
type HistoryHandler struct {
	reader HistoryReader
	logger *logger.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(reader HistoryReader, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{
		reader: reader,
		logger: log,
	}
}

// GetHistory returns the latest runs
// GET /api/history?limit=20
func (h *HistoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.reader == nil {
		respondError(w, http.StatusServiceUnavailable, "History is not enabled (DATABASE_URL not set)")
		return
	}

	limit, ok := queryInt(r, "limit")
	if !ok {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	runs, err := h.reader.Recent(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get history")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}
