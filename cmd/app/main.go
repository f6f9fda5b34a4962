package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"workrank/internal/infra/handler"
	infraPostgres "workrank/internal/infra/postgres"
	infraRedis "workrank/internal/infra/redis"
	"workrank/internal/pkg/timeutil"
	"workrank/internal/platform/cache"
	"workrank/internal/platform/config"
	"workrank/internal/platform/database"
	"workrank/internal/platform/logger"
	"workrank/internal/platform/metrics"
	"workrank/internal/platform/server"
	usecaseAnalytics "workrank/internal/usecase/analytics"
	usecaseClick "workrank/internal/usecase/click"
	usecaseRanking "workrank/internal/usecase/ranking"
	usecaseRecalc "workrank/internal/usecase/recalc"
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  logger.Level(cfg.App.LogLevel),
		Format: logger.Format(cfg.App.LogFormat),
	})
	logger.SetDefault(log)

	if err := timeutil.SetLocation(cfg.App.TimeZone); err != nil {
		return fmt.Errorf("set timezone: %w", err)
	}

	db, err := database.New(ctx, database.Config{
		ConnectionString: cfg.Database.ConnectionString(),
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		ConnectTimeout:   cfg.Database.ConnectTimeout,
		TimeZone:         cfg.App.TimeZone,
	}, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	redisClient, err := cache.New(cache.Config{
		Address:      cfg.Redis.Address(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, log)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("failed to close redis", "error", err)
		}
	}()

	clickRepo := infraPostgres.NewClickEventRepository(db.Pool)
	rankingRepo := infraPostgres.NewRankingRepository(db.Pool)
	workRepo := infraPostgres.NewWorkRepository(db.Pool)

	var appMetrics *metrics.Metrics
	if cfg.App.EnableMetrics {
		appMetrics = metrics.New()
	}

	var rankingCache *infraRedis.RankingCache
	if cfg.App.CacheEnabled {
		rankingCache = infraRedis.NewRankingCache(redisClient, cfg.App.RankingCacheTTL)
	}

	clickService := usecaseClick.NewService(clickRepo, observerOrNil(appMetrics), timeutil.Now)
	rankingService := usecaseRanking.NewService(rankingRepo, workRepo, cacheOrNil(rankingCache))
	recalcService := usecaseRecalc.NewService(clickRepo, rankingRepo, invalidatorOrNil(rankingCache), recalcObserverOrNil(appMetrics), timeutil.Now, log)
	analyticsService := usecaseAnalytics.NewService(clickRepo, workRepo)

	routerCfg := handler.RouterConfig{
		ClickHandler:   handler.NewClickHandler(clickService),
		RankingHandler: handler.NewRankingHandler(rankingService),
		AdminHandler:   handler.NewAdminHandler(recalcService, analyticsService, cfg.Recalc.ManualTopN, cfg.Recalc.Timeout),
		CronHandler:    handler.NewCronHandler(recalcService, cfg.Recalc.CronTopN, cfg.Recalc.Timeout, timeutil.Now),
		HealthHandler: &handler.HealthHandler{
			DB:    db,
			Cache: redisClient,
		},
		APIBasePath: cfg.App.APIBasePath,
		Middlewares: []func(http.Handler) http.Handler{
			server.RequestLogger(log),
			server.Recoverer(log),
			server.SecurityHeaders(),
			server.CORS(cfg.App.CORSAllowedOrigins),
		},
		AdminAuth: server.AdminKeyAuth(cfg.Auth.AdminAPIKeyHash, log),
		CronAuth:  server.CronSecretAuth(cfg.Auth.CronSecret, cfg.App.IsProduction(), log),
	}
	if appMetrics != nil {
		routerCfg.Middlewares = append(routerCfg.Middlewares, appMetrics.Middleware)
		routerCfg.PrometheusHandler = appMetrics.Handler()
	}

	srv := server.New(server.Config{
		Address:      cfg.Server.Address(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}, handler.NewRouter(routerCfg), log)

	return srv.ListenAndServeWithGracefulShutdown()
}

// Typed nil interface guards: a nil *metrics.Metrics must become a nil
// interface so the services skip observer calls entirely.

func observerOrNil(m *metrics.Metrics) usecaseClick.Observer {
	if m == nil {
		return nil
	}
	return m
}

func recalcObserverOrNil(m *metrics.Metrics) usecaseRecalc.Observer {
	if m == nil {
		return nil
	}
	return m
}

func cacheOrNil(c *infraRedis.RankingCache) usecaseRanking.Cache {
	if c == nil {
		return nil
	}
	return c
}

func invalidatorOrNil(c *infraRedis.RankingCache) usecaseRecalc.CacheInvalidator {
	if c == nil {
		return nil
	}
	return c
}
