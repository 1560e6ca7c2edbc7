package postgres

import (
	"context"
	"fmt"

	"github.com/invensight/invensight/internal/domain"
	"github.com/invensight/invensight/internal/repository"
	"github.com/jmoiron/sqlx"
)

type forecastRepository struct {
	db *DB
}

func NewForecastRepository(db *DB) repository.ForecastRepository {
	return &forecastRepository{db: db}
}

// ReplaceAll supersedes the previous prediction set in one transaction, so
// readers never observe a partially refreshed table.
func (r *forecastRepository) ReplaceAll(ctx context.Context, predictions []domain.ForecastPrediction) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM forecast_predictions`); err != nil {
			return fmt.Errorf("error clearing forecast predictions: %w", err)
		}

		query := `
			INSERT INTO forecast_predictions (
				item_id, location_id, horizon_days, current_stock,
				predicted_consumption, predicted_stock,
				confidence_interval_lower, confidence_interval_upper,
				model_accuracy, stockout_risk, generated_at
			) VALUES (
				:item_id, :location_id, :horizon_days, :current_stock,
				:predicted_consumption, :predicted_stock,
				:confidence_interval_lower, :confidence_interval_upper,
				:model_accuracy, :stockout_risk, :generated_at
			)
		`

		for _, prediction := range predictions {
			if _, err := tx.NamedExecContext(ctx, query, prediction); err != nil {
				return fmt.Errorf("error inserting forecast for %s/%s: %w", prediction.ItemID, prediction.LocationID, err)
			}
		}

		return nil
	})
}

func (r *forecastRepository) List(ctx context.Context, filter domain.InventoryFilter) ([]domain.ForecastPrediction, error) {
	query := `
        SELECT item_id, location_id, horizon_days, current_stock,
            predicted_consumption, predicted_stock,
            confidence_interval_lower, confidence_interval_upper,
            model_accuracy, stockout_risk, generated_at
        FROM forecast_predictions
        WHERE 1=1
    `

	whereClause, args, _ := buildForecastFilter(filter, 1)
	query += whereClause

	query += `
        ORDER BY
            CASE stockout_risk
                WHEN 'HIGH' THEN 0
                WHEN 'MODERATE' THEN 1
                ELSE 2
            END,
            predicted_stock ASC
    `

	var predictions []domain.ForecastPrediction
	if err := r.db.SelectContext(ctx, &predictions, query, args...); err != nil {
		return nil, fmt.Errorf("error listing forecasts: %w", err)
	}

	return predictions, nil
}

func (r *forecastRepository) CountByRisk(ctx context.Context, risk string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM forecast_predictions WHERE stockout_risk = $1`
	if err := r.db.GetContext(ctx, &count, query, risk); err != nil {
		return 0, fmt.Errorf("error counting forecasts by risk: %w", err)
	}

	return count, nil
}

func buildForecastFilter(filter domain.InventoryFilter, firstArg int) (string, []interface{}, int) {
	narrowed := domain.InventoryFilter{
		LocationIDs: filter.LocationIDs,
		ItemIDs:     filter.ItemIDs,
	}
	return buildHealthFilter(narrowed, firstArg)
}
