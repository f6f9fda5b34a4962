package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workrank/internal/domain/repository"
	"workrank/internal/domain/work"
)

var _ repository.WorkRepository = (*WorkRepository)(nil)

// WorkRepository reads catalog works. Writes belong to the catalog
// sync, not to the analytics core.
type WorkRepository struct {
	pool *pgxpool.Pool
}

// NewWorkRepository creates a new repository.
func NewWorkRepository(pool *pgxpool.Pool) *WorkRepository {
	return &WorkRepository{pool: pool}
}

const workColumns = `id, external_id, title, COALESCE(description, ''), COALESCE(thumbnail_url, ''), affiliate_url, COALESCE(maker_name, ''), is_published, created_at, updated_at`

// Get retrieves a single work by id.
func (r *WorkRepository) Get(ctx context.Context, id work.ID) (*work.Work, error) {
	query := `SELECT ` + workColumns + ` FROM works WHERE id = $1`

	var w work.Work
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&w.ID, &w.ExternalID, &w.Title, &w.Description, &w.ThumbnailURL,
		&w.AffiliateURL, &w.MakerName, &w.IsPublished, &w.CreatedAt, &w.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("work %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get work: %w", err)
	}
	return &w, nil
}

// ListByIDs returns the works that exist among ids. Missing ids are
// skipped.
func (r *WorkRepository) ListByIDs(ctx context.Context, ids []work.ID) ([]*work.Work, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + workColumns + ` FROM works WHERE id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("list works: %w", err)
	}
	defer rows.Close()

	var works []*work.Work
	for rows.Next() {
		var w work.Work
		if err := rows.Scan(
			&w.ID, &w.ExternalID, &w.Title, &w.Description, &w.ThumbnailURL,
			&w.AffiliateURL, &w.MakerName, &w.IsPublished, &w.CreatedAt, &w.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan work: %w", err)
		}
		works = append(works, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate works: %w", err)
	}
	return works, nil
}
