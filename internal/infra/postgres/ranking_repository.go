package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workrank/internal/domain/ranking"
	"workrank/internal/domain/repository"
)

var _ repository.RankingRepository = (*RankingRepository)(nil)

// RankingRepository stores leaderboard snapshot rows.
type RankingRepository struct {
	pool *pgxpool.Pool
}

// NewRankingRepository creates a new repository.
func NewRankingRepository(pool *pgxpool.Pool) *RankingRepository {
	return &RankingRepository{pool: pool}
}

// Upsert writes one ranking row. The (period_type, period_start,
// work_id) key is unique; rank and click count are overwritten in place
// when the row already exists, so repeated recomputation of a bucket
// never duplicates rows.
func (r *RankingRepository) Upsert(ctx context.Context, row *ranking.Ranking) error {
	if row == nil {
		return fmt.Errorf("ranking is nil")
	}
	if row.Rank < 1 {
		return fmt.Errorf("rank must be >= 1")
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}

	const stmt = `
INSERT INTO rankings (id, period_type, period_start, work_id, rank, click_count, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now(), now())
ON CONFLICT (period_type, period_start, work_id) DO UPDATE
SET rank = EXCLUDED.rank,
	click_count = EXCLUDED.click_count,
	updated_at = now()`

	_, err := r.pool.Exec(ctx, stmt,
		row.ID,
		string(row.PeriodType),
		row.PeriodStart,
		row.WorkID,
		row.Rank,
		row.ClickCount,
	)
	if err != nil {
		return fmt.Errorf("upsert ranking: %w", err)
	}
	return nil
}

// LatestPeriodStart returns the most recent bucket anchor for the
// period type; ok is false when no bucket exists.
func (r *RankingRepository) LatestPeriodStart(ctx context.Context, periodType ranking.PeriodType) (time.Time, bool, error) {
	const query = `
SELECT period_start
FROM rankings
WHERE period_type = $1
ORDER BY period_start DESC
LIMIT 1`

	var periodStart time.Time
	err := r.pool.QueryRow(ctx, query, string(periodType)).Scan(&periodStart)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("latest period start: %w", err)
	}
	return periodStart, true, nil
}

// ListBucket returns one bucket's rows ordered by rank ascending.
func (r *RankingRepository) ListBucket(ctx context.Context, periodType ranking.PeriodType, periodStart time.Time, limit int) ([]*ranking.Ranking, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	const query = `
SELECT id, period_type, period_start, work_id, rank, click_count, created_at, updated_at
FROM rankings
WHERE period_type = $1 AND period_start = $2
ORDER BY rank ASC
LIMIT $3`

	rows, err := r.pool.Query(ctx, query, string(periodType), periodStart, limit)
	if err != nil {
		return nil, fmt.Errorf("list ranking bucket: %w", err)
	}
	defer rows.Close()

	var result []*ranking.Ranking
	for rows.Next() {
		var row ranking.Ranking
		var pt string
		if err := rows.Scan(&row.ID, &pt, &row.PeriodStart, &row.WorkID, &row.Rank, &row.ClickCount, &row.CreatedAt, &row.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan ranking: %w", err)
		}
		row.PeriodType = ranking.PeriodType(pt)
		result = append(result, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rankings: %w", err)
	}
	return result, nil
}
