package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	infraPostgres "workrank/internal/infra/postgres"
	infraRedis "workrank/internal/infra/redis"
	"workrank/internal/pkg/batchutil"
	"workrank/internal/pkg/timeutil"
	"workrank/internal/platform/cache"
	"workrank/internal/platform/config"
	"workrank/internal/platform/database"
	platformLogger "workrank/internal/platform/logger"
	usecaseRecalc "workrank/internal/usecase/recalc"
)

// cmd/recalc runs one ranking recalculation directly, for scheduler
// hosts that invoke the binary instead of the cron HTTP endpoint.
func main() {
	os.Exit(run())
}

func run() int {
	var (
		lockName          = flag.String("lock", "", "advisory lock name (default: calc-rankings)")
		topN              = flag.Int("top-n", 0, "ranking rows per period (default: configured cron top n)")
		executionDeadline = flag.Duration("deadline", 3*time.Minute, "overall execution deadline")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *executionDeadline)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := timeutil.SetLocation(cfg.App.TimeZone); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return 1
	}

	log := platformLogger.New(platformLogger.Config{
		Level:  platformLogger.Level(cfg.App.LogLevel),
		Format: platformLogger.Format(cfg.App.LogFormat),
	})
	platformLogger.SetDefault(log)

	limit := *topN
	if limit <= 0 {
		limit = cfg.Recalc.CronTopN
	}

	startedAt := time.Now()
	log.Info("recalc started", "top_n", limit, "deadline", *executionDeadline)
	defer func() {
		if ctx.Err() == context.DeadlineExceeded {
			log.Error("recalc deadline exceeded", "elapsed", time.Since(startedAt), "err", ctx.Err())
		}
	}()

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
		log.Error("db connect failed", "err", err)
		return 1
	}
	defer db.Close()

	jobLock := strings.TrimSpace(*lockName)
	if jobLock == "" {
		jobLock = "calc-rankings"
	}

	locked, unlock, err := batchutil.TryAdvisoryLock(ctx, db.Pool, jobLock)
	if err != nil {
		log.Error("lock failed", "err", err)
		return 1
	}
	if !locked {
		log.Info("lock not acquired; skip")
		return 0
	}
	defer func() {
		unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := unlock(unlockCtx); err != nil {
			log.Warn("unlock failed", "err", err)
		}
	}()

	// Cache invalidation is best effort here: rankings land in Postgres
	// either way, and stale cache entries expire on TTL.
	var invalidator usecaseRecalc.CacheInvalidator
	if cfg.App.CacheEnabled {
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
			log.Warn("redis connect failed; running without cache invalidation", "err", err)
		} else {
			defer func() {
				if err := redisClient.Close(); err != nil {
					log.Warn("failed to close redis", "err", err)
				}
			}()
			invalidator = infraRedis.NewRankingCache(redisClient, cfg.App.RankingCacheTTL)
		}
	}

	clickRepo := infraPostgres.NewClickEventRepository(db.Pool)
	rankingRepo := infraPostgres.NewRankingRepository(db.Pool)
	service := usecaseRecalc.NewService(clickRepo, rankingRepo, invalidator, nil, timeutil.Now, log)

	stats, err := service.Recalculate(ctx, limit)
	if err != nil {
		log.Error("recalc failed", "err", err, "elapsed", time.Since(startedAt))
		return 1
	}

	logPeriod(log, stats.Weekly)
	logPeriod(log, stats.Monthly)
	log.Info("recalc finished",
		"weekly_rows", stats.Weekly.Count,
		"monthly_rows", stats.Monthly.Count,
		"elapsed", time.Since(startedAt),
	)
	return 0
}

func logPeriod(log interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}, res usecaseRecalc.PeriodResult) {
	if res.Err != nil {
		log.Warn("period pipeline failed", "period_type", res.PeriodType, "err", res.Err)
		return
	}
	log.Info("period pipeline succeeded", "period_type", res.PeriodType, "period_start", res.PeriodStart, "rows", res.Count)
}
