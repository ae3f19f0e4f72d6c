package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/habitflow-engine/internal/adapters/ai"
	"github.com/comitanigiacomo/habitflow-engine/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/habitflow-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/habitflow-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/habitflow-engine/internal/config"
	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
	"github.com/comitanigiacomo/habitflow-engine/internal/core/services"
	"github.com/comitanigiacomo/habitflow-engine/internal/core/workers"
)

type application struct {
	router *gin.Engine
	worker *workers.StreakWorker
	stores *repository.Stores
	redis  *redis.Client
}

func openStores(ctx context.Context, cfg *config.Config) (*repository.Stores, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		log.Println("Using in-memory storage; data is lost on restart.")
		return repository.NewMemoryStores(), nil
	case config.StorageSQLite:
		log.Printf("Opening SQLite database at %s...", cfg.SQLitePath)
		return repository.OpenSQLStores(ctx, repository.DriverSQLite, cfg.SQLitePath)
	default:
		log.Printf("Connecting to Postgres via %s driver...", cfg.Database.Driver)
		return repository.OpenSQLStores(ctx, cfg.Database.Driver, cfg.Database.DSN())
	}
}

// openRedis returns nil when Redis is disabled or unreachable; the API then runs
// without cache and rate limiting.
func openRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}

	rdb, err := cache.NewRedisClient(ctx, cache.Options{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		URL:      cfg.Redis.URL,
	})
	if err != nil {
		log.Printf("Warning: Redis unavailable, continuing without cache: %v", err)
		return nil
	}
	return rdb
}

func newApplication(ctx context.Context, cfg *config.Config, startTime time.Time) (*application, error) {
	stores, err := openStores(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	rdb := openRedis(ctx, cfg)

	var habitRepo domain.HabitRepository = stores.Habits
	if rdb != nil {
		habitRepo = repository.NewCachedHabitRepository(stores.Habits, rdb, cfg.Redis.CacheTTL)
	}

	clock := services.SystemClock(cfg.Location)

	registry := ai.NewRegistryFromConfig(cfg.AI)
	if names := registry.Names(); len(names) > 0 {
		log.Printf("[AI] Providers configured: %v", names)
	}

	worker := workers.NewStreakWorker(habitRepo, clock)
	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTDuration, stores.Users)

	habitService := services.NewHabitService(habitRepo, worker, clock)
	statsService := services.NewStatsService(habitRepo)
	reviewService := services.NewReviewService(stores.Reviews, habitRepo)
	aiService := services.NewAIInsightService(habitRepo, registry, cfg.AI.Timeout, clock)
	authService := services.NewAuthService(stores.Users, tokenService)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:     adapterHTTP.NewAuthHandler(authService),
		HabitHandler:    adapterHTTP.NewHabitHandler(habitService, clock),
		StatsHandler:    adapterHTTP.NewStatsHandler(statsService, clock),
		InsightHandler:  adapterHTTP.NewInsightHandler(statsService, aiService, clock),
		ReviewHandler:   adapterHTTP.NewReviewHandler(reviewService, statsService, clock),
		Tokens:          tokenService,
		DB:              stores.DB,
		Redis:           rdb,
		RateLimit:       cfg.RateLimit,
		RateLimitWindow: cfg.RateLimitWindow,
		CORSOrigins:     cfg.CORSOrigins,
		StartTime:       startTime,
	})

	return &application{
		router: router,
		worker: worker,
		stores: stores,
		redis:  rdb,
	}, nil
}

func (a *application) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Printf("Redis close error: %v", err)
		}
	}
	if err := a.stores.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}
}
