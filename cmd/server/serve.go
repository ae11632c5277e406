package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/simaogato/planwise-backend/internal/adapter/cache"
	"github.com/simaogato/planwise-backend/internal/adapter/repository/memory"
	"github.com/simaogato/planwise-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/planwise-backend/internal/adapter/rest"
	"github.com/simaogato/planwise-backend/internal/auth"
	"github.com/simaogato/planwise-backend/internal/config"
	"github.com/simaogato/planwise-backend/internal/domain"
	"github.com/simaogato/planwise-backend/internal/logger"
	"github.com/simaogato/planwise-backend/internal/usecase/plan"
	"github.com/simaogato/planwise-backend/internal/usecase/recommendation"
	"github.com/simaogato/planwise-backend/internal/usecase/resolver"
	"github.com/simaogato/planwise-backend/internal/usecase/sharelink"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return errors.New("auth.jwt_secret is required")
	}

	// 1. Storage
	var (
		planRepo domain.PlanRepository
		checks   = map[string]rest.Pinger{}
	)
	if cfg.DB.DSN == "" {
		log.Warn("no database configured, plans are kept in memory")
		planRepo = memory.NewPlanRepository()
	} else {
		db, err := postgres.NewDB(ctx, cfg.DB)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		if cfg.DB.AutoMigrate {
			if err := postgres.AutoMigrate(ctx, db); err != nil {
				return err
			}
		}
		planRepo = postgres.NewPlanRepository(db)
		checks["db"] = db
	}

	// 2. Shared-plan cache
	store, closeStore, err := openCacheStore(ctx, cfg.Cache, log)
	if err != nil {
		return err
	}
	defer closeStore()
	if rs, ok := store.(*cache.RedisStore); ok {
		checks["redis"] = rs
	}

	// 3. Allocation
	res := resolver.NewAllocationResolver(newFetcher(ctx, cfg.Recommendation, log), cfg.Recommendation.Timeout, log)

	// 4. Services and transport
	policy := sharelink.NewPolicy(cfg.Server.PublicBaseURL)
	planService := plan.NewPlanService(planRepo, res, policy, cache.NewPlanCache(store, cfg.Cache.SharedPlanTTL), log)

	jwt := auth.JWT{Secret: []byte(cfg.Auth.JWTSecret), TokenTTL: cfg.Auth.TokenTTL, Issuer: cfg.Auth.Issuer}
	mode := gin.ReleaseMode
	if strings.EqualFold(cfg.App.Env, "dev") {
		mode = gin.DebugMode
	}
	engine := rest.NewRouter(rest.RouterConfig{
		Mode:        mode,
		CORSOrigins: corsOrigins(cfg.Server),
		Logger:      log,
		Plans:       &rest.PlanHandler{Service: planService, Auth: rest.RequireOwner(jwt), Logger: log},
		Health:      &rest.HealthHandler{Checks: checks},
	})

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openCacheStore returns the configured cache backend and its release function
func openCacheStore(ctx context.Context, cfg config.CacheConfig, log *zap.Logger) (cache.Store, func(), error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "memory":
		return cache.NewMemoryStore(), func() {}, nil
	case "redis":
		rs := cache.NewRedisStore(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		log.Info("shared plan cache on redis", zap.String("addr", cfg.RedisAddr))
		return rs, func() { _ = rs.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}

// newFetcher builds the recommendation provider. A nil fetcher sends every request to the rule table.
func newFetcher(ctx context.Context, cfg config.RecommendationConfig, log *zap.Logger) resolver.Fetcher {
	if !cfg.Enabled {
		log.Info("recommendation provider disabled, using rule-based allocations")
		return nil
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		log.Warn("recommendation api key missing, every plan will fall back to rule-based allocation")
		return recommendation.NewProvider(recommendation.DisabledGenerator{})
	}

	gen, err := recommendation.NewGeminiGenerator(ctx, recommendation.GeminiConfig{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
	})
	if err != nil {
		log.Warn("recommendation provider unavailable", zap.Error(err))
		return recommendation.NewProvider(recommendation.DisabledGenerator{})
	}
	log.Info("recommendation provider ready", zap.String("generator", gen.Name()))
	return recommendation.NewProvider(gen)
}

// corsOrigins allows the public frontend in addition to the configured origins
func corsOrigins(cfg config.ServerConfig) []string {
	origins := append([]string{}, cfg.CORSOrigins...)
	if cfg.PublicBaseURL != "" {
		origins = append(origins, cfg.PublicBaseURL)
	}
	return origins
}
