package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"workrank/internal/domain/click"
	"workrank/internal/domain/ranking"
	"workrank/internal/domain/repository"
)

var _ repository.ClickEventRepository = (*ClickEventRepository)(nil)

// ClickEventRepository stores the append-only click log.
type ClickEventRepository struct {
	pool *pgxpool.Pool
}

// NewClickEventRepository creates a new repository.
func NewClickEventRepository(pool *pgxpool.Pool) *ClickEventRepository {
	return &ClickEventRepository{pool: pool}
}

// Insert appends one click event.
func (r *ClickEventRepository) Insert(ctx context.Context, event *click.Event) error {
	if event == nil {
		return fmt.Errorf("event is nil")
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	const stmt = `
INSERT INTO click_events (id, page_type, page_id, link_type, destination, work_id, user_agent, referer, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, stmt,
		event.ID,
		event.PageType,
		event.PageID,
		event.LinkType,
		event.Destination,
		event.WorkID,
		nullableString(event.UserAgent),
		nullableString(event.Referer),
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert click event: %w", err)
	}
	return nil
}

// CountByWork aggregates clicks per work since the given instant,
// ordered by count descending with work id as the deterministic
// tie-break. A zero since puts no lower bound on created_at.
func (r *ClickEventRepository) CountByWork(ctx context.Context, since time.Time, topN int) ([]ranking.Entry, error) {
	if topN <= 0 {
		return nil, fmt.Errorf("topN must be positive")
	}

	const query = `
SELECT work_id, COUNT(*) AS clicks
FROM click_events
WHERE work_id IS NOT NULL
  AND ($1::timestamptz IS NULL OR created_at >= $1)
GROUP BY work_id
ORDER BY clicks DESC, work_id ASC
LIMIT $2`

	var lower *time.Time
	if !since.IsZero() {
		lower = &since
	}

	rows, err := r.pool.Query(ctx, query, lower, topN)
	if err != nil {
		return nil, fmt.Errorf("count clicks by work: %w", err)
	}
	defer rows.Close()

	var entries []ranking.Entry
	for rows.Next() {
		var entry ranking.Entry
		if err := rows.Scan(&entry.WorkID, &entry.Count); err != nil {
			return nil, fmt.Errorf("scan click aggregate: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate click aggregates: %w", err)
	}
	return entries, nil
}

// CountByLinkType aggregates all clicks per link type, most clicked first.
func (r *ClickEventRepository) CountByLinkType(ctx context.Context) ([]repository.LinkTypeCount, error) {
	const query = `
SELECT link_type, COUNT(*) AS clicks
FROM click_events
GROUP BY link_type
ORDER BY clicks DESC, link_type ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count clicks by link type: %w", err)
	}
	defer rows.Close()

	var counts []repository.LinkTypeCount
	for rows.Next() {
		var c repository.LinkTypeCount
		if err := rows.Scan(&c.LinkType, &c.Count); err != nil {
			return nil, fmt.Errorf("scan link type aggregate: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate link type aggregates: %w", err)
	}
	return counts, nil
}

func nullableString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
