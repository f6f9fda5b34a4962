package ranking

import (
	"context"
	"fmt"
	"time"

	domainRanking "workrank/internal/domain/ranking"
	domainWork "workrank/internal/domain/work"
)

// DefaultLimit is applied when the caller does not specify one.
const DefaultLimit = 20

// maxBucketRows caps how many rows are read and cached per bucket. It
// matches the largest top-N the recalculation ever writes.
const maxBucketRows = 100

// Repository describes ranking reads required by the service.
type Repository interface {
	LatestPeriodStart(ctx context.Context, periodType domainRanking.PeriodType) (time.Time, bool, error)
	ListBucket(ctx context.Context, periodType domainRanking.PeriodType, periodStart time.Time, limit int) ([]*domainRanking.Ranking, error)
}

// WorkRepository joins work display data onto ranking rows.
type WorkRepository interface {
	ListByIDs(ctx context.Context, ids []domainWork.ID) ([]*domainWork.Work, error)
}

// Cache stores the latest bucket payload per period type.
type Cache interface {
	Get(ctx context.Context, periodType string, out any) (bool, error)
	Set(ctx context.Context, periodType string, value any) error
}

// Service serves the public ranking read path.
type Service struct {
	rankings Repository
	works    WorkRepository
	cache    Cache
}

// Item is one leaderboard position joined with its work.
type Item struct {
	Ranking *domainRanking.Ranking `json:"ranking"`
	Work    *domainWork.Work       `json:"work,omitempty"`
}

// Result bundles the latest bucket's rows for one period type.
type Result struct {
	Items []Item
	// PeriodStart is the bucket anchor the items belong to. Zero when
	// no bucket exists yet.
	PeriodStart time.Time
}

// NewService creates a ranking read service. cache may be nil.
func NewService(rankings Repository, works WorkRepository, cache Cache) *Service {
	return &Service{
		rankings: rankings,
		works:    works,
		cache:    cache,
	}
}

// Latest returns the most recent bucket for the period type, ordered by
// rank ascending and truncated to limit. An empty result (no error) is
// returned when no recalculation has run yet.
func (s *Service) Latest(ctx context.Context, periodType domainRanking.PeriodType, limit int) (Result, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > maxBucketRows {
		limit = maxBucketRows
	}

	if s.cache != nil {
		var cached cachePayload
		ok, err := s.cache.Get(ctx, string(periodType), &cached)
		if err != nil {
			return Result{}, err
		}
		if ok {
			return Result{
				Items:       sliceLimit(cached.Items, limit),
				PeriodStart: cached.PeriodStart,
			}, nil
		}
	}

	result, err := s.loadLatest(ctx, periodType)
	if err != nil {
		return Result{}, err
	}

	if s.cache != nil && len(result.Items) > 0 {
		_ = s.cache.Set(ctx, string(periodType), cachePayload{
			Items:       result.Items,
			PeriodStart: result.PeriodStart,
		})
	}

	return Result{
		Items:       sliceLimit(result.Items, limit),
		PeriodStart: result.PeriodStart,
	}, nil
}

func (s *Service) loadLatest(ctx context.Context, periodType domainRanking.PeriodType) (Result, error) {
	periodStart, ok, err := s.rankings.LatestPeriodStart(ctx, periodType)
	if err != nil {
		return Result{}, fmt.Errorf("latest period start: %w", err)
	}
	if !ok {
		return Result{Items: []Item{}}, nil
	}

	rows, err := s.rankings.ListBucket(ctx, periodType, periodStart, maxBucketRows)
	if err != nil {
		return Result{}, fmt.Errorf("list bucket: %w", err)
	}

	items := make([]Item, 0, len(rows))
	worksByID, err := s.loadWorks(ctx, rows)
	if err != nil {
		return Result{}, err
	}
	for _, row := range rows {
		items = append(items, Item{
			Ranking: row,
			Work:    worksByID[row.WorkID],
		})
	}

	return Result{Items: items, PeriodStart: periodStart}, nil
}

func (s *Service) loadWorks(ctx context.Context, rows []*domainRanking.Ranking) (map[domainWork.ID]*domainWork.Work, error) {
	if s.works == nil || len(rows) == 0 {
		return nil, nil
	}
	ids := make([]domainWork.ID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.WorkID)
	}
	works, err := s.works.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load works: %w", err)
	}
	byID := make(map[domainWork.ID]*domainWork.Work, len(works))
	for _, w := range works {
		byID[w.ID] = w
	}
	return byID, nil
}

type cachePayload struct {
	Items       []Item    `json:"items"`
	PeriodStart time.Time `json:"period_start"`
}

func sliceLimit(items []Item, limit int) []Item {
	if limit <= 0 || limit >= len(items) {
		return items
	}
	return items[:limit]
}
