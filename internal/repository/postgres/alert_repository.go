package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/invensight/invensight/internal/domain"
	"github.com/invensight/invensight/internal/repository"
	"github.com/jmoiron/sqlx"
)

type alertRepository struct {
	db *sqlx.DB
}

func NewAlertRepository(db *sqlx.DB) repository.AlertRepository {
	return &alertRepository{db: db}
}

// OpenIfAbsent inserts in a single statement: the NOT EXISTS subquery applies
// the dedup window, and the partial unique index uq_alerts_open rejects a
// second open alert for the same key under concurrent writers.
func (r *alertRepository) OpenIfAbsent(ctx context.Context, alert domain.Alert, dedupWindow time.Duration) (bool, error) {
	query := `
		INSERT INTO alerts (
			item_id, location_id, alert_type, priority,
			current_stock, days_until_stockout, opened_at, resolved
		)
		SELECT $1, $2, $3, $4, $5, $6, $7, FALSE
		WHERE NOT EXISTS (
			SELECT 1 FROM alerts
			WHERE item_id = $1 AND location_id = $2
			  AND (NOT resolved OR opened_at > $8)
		)
		ON CONFLICT DO NOTHING
	`

	res, err := r.db.ExecContext(ctx, query,
		alert.ItemID, alert.LocationID, alert.AlertType, alert.Priority,
		alert.CurrentStock, alert.DaysUntilStockout, alert.OpenedAt,
		alert.OpenedAt.Add(-dedupWindow),
	)
	if err != nil {
		return false, fmt.Errorf("error opening alert for %s/%s: %w", alert.ItemID, alert.LocationID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading alert insert result: %w", err)
	}

	return n > 0, nil
}

func (r *alertRepository) Resolve(ctx context.Context, key domain.ItemKey, resolvedAt time.Time) (bool, error) {
	query := `
		UPDATE alerts
		SET resolved = TRUE, resolved_at = $3
		WHERE item_id = $1 AND location_id = $2 AND NOT resolved
	`

	res, err := r.db.ExecContext(ctx, query, key.ItemID, key.LocationID, resolvedAt)
	if err != nil {
		return false, fmt.Errorf("error resolving alert for %s/%s: %w", key.ItemID, key.LocationID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading alert resolve result: %w", err)
	}

	return n > 0, nil
}

func (r *alertRepository) OpenAlerts(ctx context.Context) ([]domain.Alert, error) {
	query := `
		SELECT id, item_id, location_id, alert_type, priority,
			current_stock, days_until_stockout, opened_at, resolved, resolved_at
		FROM alerts
		WHERE NOT resolved
		ORDER BY
			CASE priority
				WHEN 'CRITICAL' THEN 0
				WHEN 'HIGH' THEN 1
				WHEN 'MEDIUM' THEN 2
				ELSE 3
			END,
			opened_at ASC
	`

	var alerts []domain.Alert
	if err := r.db.SelectContext(ctx, &alerts, query); err != nil {
		return nil, fmt.Errorf("error getting open alerts: %w", err)
	}

	return alerts, nil
}

func (r *alertRepository) List(ctx context.Context, includeResolved bool, limit int) ([]domain.Alert, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, item_id, location_id, alert_type, priority,
			current_stock, days_until_stockout, opened_at, resolved, resolved_at
		FROM alerts
		WHERE ($1 OR NOT resolved)
		ORDER BY opened_at DESC
		LIMIT $2
	`

	var alerts []domain.Alert
	if err := r.db.SelectContext(ctx, &alerts, query, includeResolved, limit); err != nil {
		return nil, fmt.Errorf("error listing alerts: %w", err)
	}

	return alerts, nil
}

func (r *alertRepository) ArchiveResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM alerts
		WHERE resolved AND resolved_at IS NOT NULL AND resolved_at < $1
	`

	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("error archiving resolved alerts: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading alert archive result: %w", err)
	}

	return n, nil
}
