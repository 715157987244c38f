package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/betafolio/backend/internal/api"
	"github.com/wonny/betafolio/backend/internal/api/handlers"
	"github.com/wonny/betafolio/backend/internal/scheduler"
	"github.com/wonny/betafolio/backend/internal/scheduler/jobs"
	"github.com/wonny/betafolio/backend/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 결과 캐시 (메모리 또는 Redis) 및 실행 이력 (Postgres) 연결
- 유지보수 스케줄러 (캐시 만료 정리, 이력 보존 기간 정리) 시작

Endpoints:
  GET  /api/health        - Health check
  GET  /api/stocks        - 종목 카탈로그 (sector, limit)
  POST /api/optimize      - 포트폴리오 최적화
  POST /api/clear-cache   - 결과 캐시 비우기
  GET  /api/stats         - 캐시/카탈로그 통계
  GET  /api/history       - 최근 최적화 이력

Example:
  go run ./cmd/betafolio api
  go run ./cmd/betafolio api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본값: PORT 환경변수)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Betafolio API Server ===")

	// 1. Wire dependencies
	a, err := newApp(appOptions{storage: true})
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	log := a.log
	log.WithFields(map[string]interface{}{
		"port":        a.cfg.Port,
		"env":         a.cfg.Env,
		"config_hash": a.engine.ConfigHash(),
		"workers":     a.engine.Workers(),
	}).Info("Initializing API server")

	// 2. Create handlers
	var resultCache handlers.ResultCache
	if a.memo != nil {
		resultCache = a.memo
	}
	var runs handlers.HistoryReader
	if a.runs != nil {
		runs = a.runs
	}

	info := handlers.SystemInfo{
		Version:     api.Version,
		ConfigHash:  a.engine.ConfigHash(),
		TotalStocks: a.engine.Catalog().Len(),
		StartedAt:   time.Now(),
	}

	h := api.Handlers{
		Optimize: handlers.NewOptimizeHandler(a.optimizer, log),
		Stocks:   handlers.NewStockHandler(a.engine.Catalog()),
		System:   handlers.NewSystemHandler(resultCache, info, log),
		History:  handlers.NewHistoryHandler(runs, log),
	}

	// 3. Rate limiter: Redis sliding window when available, in-process otherwise
	clients, err := api.NewClientIdentifier(a.cfg.RateLimit.TrustedProxies)
	if err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	rl := api.RateLimit{Clients: clients}
	var local *api.LocalLimiter
	switch {
	case a.redis.Enabled():
		rl.Limiter = api.NewRedisLimiter(redis.NewRateLimiter(a.redis, "betafolio"), a.cfg.RateLimit.RPS)
	case a.cfg.RateLimit.RPS > 0:
		local = api.NewLocalLimiter(a.cfg.RateLimit.RPS, a.cfg.RateLimit.Burst, a.cfg.RateLimit.IdleTTL)
		rl.Limiter = local
	}

	// 4. Create router + server
	router := api.NewRouter(h, rl, log)
	server := api.New(a.cfg, log, router)

	// 5. Maintenance scheduler
	sched := scheduler.New(log)
	if local != nil {
		if err := sched.AddJob(jobs.NewLimiterPurgeJob(local, log)); err != nil {
			return err
		}
	}
	if a.memo != nil {
		if err := sched.AddJob(jobs.NewCachePurgeJob(a.memo, log)); err != nil {
			return err
		}
	}
	if a.runs != nil {
		if err := sched.AddJob(jobs.NewHistoryRetentionJob(a.runs, a.cfg.Database.HistoryRetention, log)); err != nil {
			return err
		}
	}
	sched.Start()
	defer sched.Stop()

	// 6. Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /api/health")
	fmt.Println("  GET  /api/stocks")
	fmt.Println("  POST /api/optimize")
	fmt.Println("  POST /api/clear-cache")
	fmt.Println("  GET  /api/stats")
	fmt.Println("  GET  /api/history")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal or server failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
