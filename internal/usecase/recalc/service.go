package recalc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainRanking "workrank/internal/domain/ranking"
)

// DefaultManualTopN is the per-period limit for the admin trigger,
// DefaultCronTopN for the scheduled trigger.
const (
	DefaultManualTopN = 50
	DefaultCronTopN   = 100
)

// ClickRepository aggregates click counts per work.
type ClickRepository interface {
	CountByWork(ctx context.Context, since time.Time, topN int) ([]domainRanking.Entry, error)
}

// RankingRepository persists ranking rows.
type RankingRepository interface {
	Upsert(ctx context.Context, row *domainRanking.Ranking) error
}

// CacheInvalidator drops cached read payloads after a bucket changes.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, periodType string) error
}

// Observer is notified about completed pipeline runs.
type Observer interface {
	RecalculationRun(periodType string, success bool, duration time.Duration)
}

// Service orchestrates one recalculation: resolve bucket, aggregate,
// commit, for the weekly and then the monthly period.
type Service struct {
	clicks      ClickRepository
	rankings    RankingRepository
	invalidator CacheInvalidator
	observer    Observer
	now         func() time.Time
	logger      *slog.Logger
}

// PeriodResult reports one period pipeline's outcome.
type PeriodResult struct {
	PeriodType  domainRanking.PeriodType
	PeriodStart time.Time
	// Count is the number of ranking rows written.
	Count int
	Err   error
}

// Stats bundles both pipelines' outcomes.
type Stats struct {
	Weekly  PeriodResult
	Monthly PeriodResult
}

// ErrAllPipelinesFailed signals that neither period produced a snapshot.
var ErrAllPipelinesFailed = errors.New("all ranking pipelines failed")

// NewService builds a recalculation service. invalidator, observer and
// logger may be nil.
func NewService(clicks ClickRepository, rankings RankingRepository, invalidator CacheInvalidator, observer Observer, now func() time.Time, logger *slog.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		clicks:      clicks,
		rankings:    rankings,
		invalidator: invalidator,
		observer:    observer,
		now:         now,
		logger:      logger,
	}
}

// Recalculate runs the weekly pipeline, then the monthly pipeline.
// Each pipeline has its own failure boundary: one period's failure does
// not abort the other. The returned error is non-nil only when both
// pipelines fail; partial failure is reported via Stats. Callers bound
// the run with a context deadline.
func (s *Service) Recalculate(ctx context.Context, topN int) (Stats, error) {
	if topN <= 0 {
		topN = DefaultManualTopN
	}
	now := s.now()

	stats := Stats{
		Weekly:  s.runPeriod(ctx, domainRanking.PeriodWeekly, now, topN),
		Monthly: s.runPeriod(ctx, domainRanking.PeriodMonthly, now, topN),
	}

	if stats.Weekly.Err != nil && stats.Monthly.Err != nil {
		return stats, fmt.Errorf("%w: weekly: %v; monthly: %v",
			ErrAllPipelinesFailed, stats.Weekly.Err, stats.Monthly.Err)
	}
	return stats, nil
}

func (s *Service) runPeriod(ctx context.Context, periodType domainRanking.PeriodType, now time.Time, topN int) PeriodResult {
	started := time.Now()
	result := s.recalculatePeriod(ctx, periodType, now, topN)

	if s.observer != nil {
		s.observer.RecalculationRun(string(periodType), result.Err == nil, time.Since(started))
	}
	if result.Err != nil {
		s.logger.Error("ranking pipeline failed",
			"period_type", periodType,
			"error", result.Err,
		)
		return result
	}
	s.logger.Info("ranking pipeline completed",
		"period_type", periodType,
		"period_start", result.PeriodStart,
		"rows", result.Count,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return result
}

func (s *Service) recalculatePeriod(ctx context.Context, periodType domainRanking.PeriodType, now time.Time, topN int) PeriodResult {
	result := PeriodResult{PeriodType: periodType}

	bucket, err := domainRanking.ResolveBucket(periodType, now)
	if err != nil {
		result.Err = err
		return result
	}
	result.PeriodStart = bucket.PeriodStart

	entries, err := s.clicks.CountByWork(ctx, bucket.WindowStart, topN)
	if err != nil {
		result.Err = fmt.Errorf("aggregate clicks: %w", err)
		return result
	}

	// Upserts run in rank order. Each row is atomic on its own; a
	// failure part-way leaves earlier rows written, which the next run
	// overwrites because the bucket anchor is stable.
	for i, entry := range entries {
		row := &domainRanking.Ranking{
			ID:          uuid.New(),
			PeriodType:  periodType,
			PeriodStart: bucket.PeriodStart,
			WorkID:      entry.WorkID,
			Rank:        i + 1,
			ClickCount:  entry.Count,
		}
		if err := s.rankings.Upsert(ctx, row); err != nil {
			result.Err = fmt.Errorf("upsert rank %d (work %d): %w", i+1, entry.WorkID, err)
			result.Count = i
			return result
		}
	}
	result.Count = len(entries)

	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, string(periodType)); err != nil {
			// Stale cache self-heals on TTL expiry; the snapshot itself
			// is committed, so this is not a pipeline failure.
			s.logger.Warn("ranking cache invalidation failed",
				"period_type", periodType,
				"error", err,
			)
		}
	}
	return result
}
