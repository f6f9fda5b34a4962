package repository

import (
	"context"
	"time"

	"workrank/internal/domain/click"
	"workrank/internal/domain/ranking"
	"workrank/internal/domain/work"
)

// ClickEventRepository stores the append-only click log and answers
// aggregate queries over it.
type ClickEventRepository interface {
	// Insert appends one click event. CreatedAt is assigned by the
	// repository when the event does not carry one.
	Insert(ctx context.Context, event *click.Event) error
	// CountByWork groups clicks with created_at >= since and a non-null
	// work reference, ordered by count descending then work id
	// ascending, truncated to topN.
	CountByWork(ctx context.Context, since time.Time, topN int) ([]ranking.Entry, error)
	// CountByLinkType groups all clicks by link type, most clicked first.
	CountByLinkType(ctx context.Context) ([]LinkTypeCount, error)
}

// RankingRepository stores leaderboard snapshot rows.
type RankingRepository interface {
	// Upsert writes one ranking row keyed by
	// (periodType, periodStart, workId), overwriting rank and click
	// count when the row already exists.
	Upsert(ctx context.Context, row *ranking.Ranking) error
	// LatestPeriodStart returns the most recent bucket anchor for the
	// period type. ok is false when no bucket exists yet.
	LatestPeriodStart(ctx context.Context, periodType ranking.PeriodType) (periodStart time.Time, ok bool, err error)
	// ListBucket returns the rows of one bucket ordered by rank
	// ascending, truncated to limit.
	ListBucket(ctx context.Context, periodType ranking.PeriodType, periodStart time.Time, limit int) ([]*ranking.Ranking, error)
}

// WorkRepository reads catalog works. The analytics core never writes works.
type WorkRepository interface {
	Get(ctx context.Context, id work.ID) (*work.Work, error)
	// ListByIDs returns the works that exist among ids, in no
	// particular order. Missing ids are skipped, not an error.
	ListByIDs(ctx context.Context, ids []work.ID) ([]*work.Work, error)
}

// LinkTypeCount is an aggregated click count per link type.
type LinkTypeCount struct {
	LinkType string
	Count    int64
}
