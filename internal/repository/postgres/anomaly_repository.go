package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/invensight/invensight/internal/domain"
	"github.com/invensight/invensight/internal/repository"
	"github.com/jmoiron/sqlx"
)

type anomalyRepository struct {
	db *sqlx.DB
}

func NewAnomalyRepository(db *sqlx.DB) repository.AnomalyRepository {
	return &anomalyRepository{db: db}
}

func (r *anomalyRepository) Upsert(ctx context.Context, records []domain.AnomalyRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := `
		INSERT INTO anomaly_records (
			item_id, location_id, observed_at, quantity_delta,
			mean_delta, stddev_delta, z_score, severity
		) VALUES (
			:item_id, :location_id, :observed_at, :quantity_delta,
			:mean_delta, :stddev_delta, :z_score, :severity
		)
		ON CONFLICT (item_id, location_id, observed_at) DO UPDATE SET
			quantity_delta = EXCLUDED.quantity_delta,
			mean_delta = EXCLUDED.mean_delta,
			stddev_delta = EXCLUDED.stddev_delta,
			z_score = EXCLUDED.z_score,
			severity = EXCLUDED.severity
	`

	for _, record := range records {
		if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
			return fmt.Errorf("error upserting anomaly for %s/%s: %w", record.ItemID, record.LocationID, err)
		}
	}

	return nil
}

func (r *anomalyRepository) Recent(ctx context.Context, since time.Time, limit int) ([]domain.AnomalyRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT item_id, location_id, observed_at, quantity_delta,
			mean_delta, stddev_delta, z_score, severity
		FROM anomaly_records
		WHERE observed_at >= $1
		ORDER BY observed_at DESC, ABS(z_score) DESC
		LIMIT $2
	`

	var records []domain.AnomalyRecord
	if err := r.db.SelectContext(ctx, &records, query, since, limit); err != nil {
		return nil, fmt.Errorf("error getting recent anomalies: %w", err)
	}

	return records, nil
}
