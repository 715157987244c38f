package handlers

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/wonny/betafolio/backend/internal/cache"
	"github.com/wonny/betafolio/backend/pkg/logger"
)

// ResultCache is the cache surface exposed over HTTP; *cache.Memoizer satisfies it
type ResultCache interface {
	Stats(ctx context.Context) (cache.Stats, error)
	Clear(ctx context.Context) (int, error)
}

// SystemInfo is static service metadata
type SystemInfo struct {
	Version     string
	ConfigHash  string
	TotalStocks int
	StartedAt   time.Time
}

// SystemHandler serves health, stats and cache management.
// cache may be nil when result caching is disabled.
type SystemHandler struct {
	cache  ResultCache
	info   SystemInfo
	now    func() time.Time
	logger *logger.Logger
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(resultCache ResultCache, info SystemInfo, log *logger.Logger) *SystemHandler {
	return &SystemHandler{
		cache:  resultCache,
		info:   info,
		now:    time.Now,
		logger: log,
	}
}

// cacheSize returns 0 when caching is disabled or the store is unreachable
func (h *SystemHandler) cacheSize(ctx context.Context) int {
	if h.cache == nil {
		return 0
	}
	stats, err := h.cache.Stats(ctx)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to read cache stats")
		return 0
	}
	return stats.Size
}

// Health reports service liveness
// GET /api/health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "healthy",
		"message":    "Portfolio optimizer API is running",
		"version":    h.info.Version,
		"timestamp":  h.now().Format(time.RFC3339),
		"cache_size": h.cacheSize(r.Context()),
	})
}

// StatsResponse is the service statistics payload
type StatsResponse struct {
	CacheSize   int     `json:"cache_size"`
	CacheHits   int64   `json:"cache_hits"`
	CacheMisses int64   `json:"cache_misses"`
	TotalStocks int     `json:"total_stocks"`
	Uptime      float64 `json:"uptime"` // seconds
	Version     string  `json:"version"`
	ConfigHash  string  `json:"config_hash"`
}

// GetStats reports cache and catalog statistics
// GET /api/stats
func (h *SystemHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{
		TotalStocks: h.info.TotalStocks,
		Uptime:      math.Round(h.now().Sub(h.info.StartedAt).Seconds()*1000) / 1000,
		Version:     h.info.Version,
		ConfigHash:  h.info.ConfigHash,
	}

	if h.cache != nil {
		stats, err := h.cache.Stats(r.Context())
		if err != nil {
			h.logger.WithError(err).Error("Failed to read cache stats")
			respondError(w, http.StatusInternalServerError, "Failed to read cache stats")
			return
		}
		resp.CacheSize = stats.Size
		resp.CacheHits = stats.Hits
		resp.CacheMisses = stats.Misses
	}

	respondJSON(w, http.StatusOK, resp)
}

// ClearCache empties the result cache
// POST /api/clear-cache
func (h *SystemHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	removed := 0
	if h.cache != nil {
		n, err := h.cache.Clear(r.Context())
		if err != nil {
			h.logger.WithError(err).Error("Failed to clear cache")
			respondError(w, http.StatusInternalServerError, "Failed to clear cache")
			return
		}
		removed = n
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Cache cleared successfully",
		"removed": removed,
	})
}
