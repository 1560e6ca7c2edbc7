package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/invensight/invensight/internal/domain"
	"github.com/invensight/invensight/internal/repository"
	"github.com/jmoiron/sqlx"
)

type reorderRepository struct {
	db *sqlx.DB
}

func NewReorderRepository(db *sqlx.DB) repository.ReorderRepository {
	return &reorderRepository{db: db}
}

// CreatePendingIfAbsent inserts in a single statement: the NOT EXISTS subquery
// applies the dedup window across all statuses, and the partial unique index
// uq_reorder_pending rejects a second PENDING row per key under concurrent
// writers.
func (r *reorderRepository) CreatePendingIfAbsent(ctx context.Context, rec domain.ReorderRecommendation, dedupWindow time.Duration) (bool, error) {
	query := `
		INSERT INTO reorder_recommendations (
			item_id, location_id, recommended_qty, economic_order_qty,
			priority_score, urgent, estimated_value, status, created_at, updated_at
		)
		SELECT $1, $2, $3, $4, $5, $6, $7, 'PENDING', $8, $8
		WHERE NOT EXISTS (
			SELECT 1 FROM reorder_recommendations
			WHERE item_id = $1 AND location_id = $2
			  AND (status = 'PENDING' OR created_at > $9)
		)
		ON CONFLICT DO NOTHING
	`

	res, err := r.db.ExecContext(ctx, query,
		rec.ItemID, rec.LocationID, rec.RecommendedQty, rec.EconomicOrderQty,
		rec.PriorityScore, rec.Urgent, rec.EstimatedValue, rec.CreatedAt,
		rec.CreatedAt.Add(-dedupWindow),
	)
	if err != nil {
		return false, fmt.Errorf("error creating reorder recommendation for %s/%s: %w", rec.ItemID, rec.LocationID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading reorder insert result: %w", err)
	}

	return n > 0, nil
}

func (r *reorderRepository) Pending(ctx context.Context) ([]domain.ReorderRecommendation, error) {
	query := `
		SELECT id, item_id, location_id, recommended_qty, economic_order_qty,
			priority_score, urgent, estimated_value, status, created_at, updated_at
		FROM reorder_recommendations
		WHERE status = 'PENDING'
		ORDER BY priority_score DESC, created_at ASC
	`

	var recs []domain.ReorderRecommendation
	if err := r.db.SelectContext(ctx, &recs, query); err != nil {
		return nil, fmt.Errorf("error getting pending reorder recommendations: %w", err)
	}

	return recs, nil
}

func (r *reorderRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `
		UPDATE reorder_recommendations
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("error updating reorder recommendation %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading reorder update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("reorder recommendation %d not found", id)
	}

	return nil
}

func (r *reorderRepository) PendingCount(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM reorder_recommendations WHERE status = 'PENDING'`
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("error counting pending reorder recommendations: %w", err)
	}

	return count, nil
}
