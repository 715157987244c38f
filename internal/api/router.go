package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/betafolio/backend/internal/api/handlers"
	"github.com/wonny/betafolio/backend/pkg/logger"
)

// Handlers groups the endpoint handlers mounted by NewRouter
type Handlers struct {
	Optimize *handlers.OptimizeHandler
	Stocks   *handlers.StockHandler
	System   *handlers.SystemHandler
	History  *handlers.HistoryHandler
}

// NewRouter creates and configures the HTTP router.
// rl.Limiter may be nil to disable rate limiting.
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, rl RateLimit, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", h.System.Health).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Service endpoints
	api.HandleFunc("/health", h.System.Health).Methods("GET")
	api.HandleFunc("/stats", h.System.GetStats).Methods("GET")
	api.HandleFunc("/clear-cache", h.System.ClearCache).Methods("POST")

	// Catalog + history
	api.HandleFunc("/stocks", h.Stocks.GetStocks).Methods("GET")
	api.HandleFunc("/history", h.History.GetHistory).Methods("GET")

	// Optimization (rate limited)
	var optimize http.Handler = http.HandlerFunc(h.Optimize.Optimize)
	if rl.Limiter != nil {
		optimize = rateLimitMiddleware(rl, log)(optimize)
	}
	api.Handle("/optimize", optimize).Methods("POST")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}
