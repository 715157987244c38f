package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/betafolio/backend/internal/cache"
	"github.com/wonny/betafolio/backend/internal/catalog"
	"github.com/wonny/betafolio/backend/internal/contracts"
	"github.com/wonny/betafolio/backend/internal/engine"
	"github.com/wonny/betafolio/backend/internal/history"
	"github.com/wonny/betafolio/backend/internal/strategyconfig"
	"github.com/wonny/betafolio/backend/pkg/config"
	"github.com/wonny/betafolio/backend/pkg/database"
	"github.com/wonny/betafolio/backend/pkg/logger"
	"github.com/wonny/betafolio/backend/pkg/redis"
)

// appOptions selects which collaborators a command needs
type appOptions struct {
	storage bool // Postgres history + Redis (api 서버 전용)
	quiet   bool // CLI 출력용: warn 이상만 로그
}

// app is the wired dependency graph shared by the commands
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	engine    *engine.Engine
	optimizer contracts.Optimizer // Memoizer → Recorder → Engine
	memo      *cache.Memoizer     // nil when CACHE_TTL=0
	db        *database.DB        // nil when DATABASE_URL unset
	runs      *history.Repository // nil when DATABASE_URL unset
	redis     *redis.Client
}

// loadConfig reads env config and applies global flag overrides
func loadConfig(opts appOptions) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if engineConfig != "" {
		cfg.Engine.ConfigFile = engineConfig
	}
	if catalogFile != "" {
		cfg.Engine.CatalogFile = catalogFile
	}

	switch {
	case verbose:
		cfg.LogLevel = "debug"
	case opts.quiet:
		cfg.LogLevel = "warn"
	}

	return cfg, nil
}

// newApp wires config → logger → catalog → tuning → engine → history → cache
// ⭐ SSOT: 의존성 조립은 여기서만
func newApp(opts appOptions) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg)

	eng, err := buildEngine(cfg, log)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		log:       log,
		engine:    eng,
		optimizer: eng,
	}

	if opts.storage {
		if err := a.connectStorage(); err != nil {
			a.Close()
			return nil, err
		}
	} else {
		a.redis, _ = redis.New(&config.Config{}) // disabled client
	}

	if cfg.Engine.CacheTTL > 0 {
		var store cache.Store = cache.NewMemoryStore(cfg.Engine.CacheTTL)
		if a.redis.Enabled() {
			store = cache.NewRedisStore(a.redis, cfg.Engine.CacheTTL)
		}
		a.memo = cache.NewMemoizer(a.optimizer, store, log)
		a.optimizer = a.memo

		log.WithFields(map[string]interface{}{
			"ttl":   cfg.Engine.CacheTTL.String(),
			"redis": a.redis.Enabled(),
		}).Info("Result cache enabled")
	}

	return a, nil
}

// buildEngine loads the catalog and engine tuning and creates the engine
func buildEngine(cfg *config.Config, log *logger.Logger) (*engine.Engine, error) {
	cat, err := catalog.Load(cfg.Engine.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	tuning, err := strategyconfig.LoadOrDefault(cfg.Engine.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("load engine config: %w", err)
	}

	for _, w := range strategyconfig.Warn(tuning) {
		log.WithFields(map[string]interface{}{
			"code":    w.Code,
			"message": w.Message,
		}).Warn("Engine config warning")
	}

	eng, err := engine.New(cat, tuning, engine.Config{
		Seed:    cfg.Engine.Seed,
		Workers: cfg.Engine.Workers,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	return eng, nil
}

// connectStorage opens optional Postgres and Redis
func (a *app) connectStorage() error {
	db, err := database.New(a.cfg)
	switch {
	case errors.Is(err, database.ErrDisabled):
		a.log.Info("History disabled (DATABASE_URL not set)")
	case err != nil:
		return fmt.Errorf("connect to database: %w", err)
	default:
		a.db = db
		a.runs = history.NewRepository(db.Pool)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.runs.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure history schema: %w", err)
		}

		a.optimizer = history.NewRecorder(a.optimizer, a.runs, a.engine.ConfigHash(), a.log)
		a.log.Info("Connected to database, history enabled")
	}

	rc, err := redis.New(a.cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	a.redis = rc

	return nil
}

// Close releases storage connections
func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	a.db.Close()
}
