package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/invensight/invensight/internal/domain"
	"github.com/invensight/invensight/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type healthRepository struct {
	db *sqlx.DB
}

func NewHealthRepository(db *sqlx.DB) repository.HealthRepository {
	return &healthRepository{db: db}
}

func (r *healthRepository) UpsertRecords(ctx context.Context, records []domain.HealthRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := `
		INSERT INTO health_records (
			item_id, location_id, category, item_name, stock_status,
			stock_percentage, quantity_available, days_until_stockout,
			observed_at, computed_at
		) VALUES (
			:item_id, :location_id, :category, :item_name, :stock_status,
			:stock_percentage, :quantity_available, :days_until_stockout,
			:observed_at, :computed_at
		)
		ON CONFLICT (item_id, location_id) DO UPDATE SET
			category = EXCLUDED.category,
			item_name = EXCLUDED.item_name,
			stock_status = EXCLUDED.stock_status,
			stock_percentage = EXCLUDED.stock_percentage,
			quantity_available = EXCLUDED.quantity_available,
			days_until_stockout = EXCLUDED.days_until_stockout,
			observed_at = EXCLUDED.observed_at,
			computed_at = EXCLUDED.computed_at
	`

	for _, record := range records {
		if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
			return fmt.Errorf("error upserting health record %s/%s: %w", record.ItemID, record.LocationID, err)
		}
	}

	return nil
}

func (r *healthRepository) All(ctx context.Context) ([]domain.HealthRecord, error) {
	query := `
		SELECT item_id, location_id, category, item_name, stock_status,
			stock_percentage, quantity_available, days_until_stockout,
			observed_at, computed_at
		FROM health_records
		ORDER BY item_id, location_id
	`

	var records []domain.HealthRecord
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("error getting health records: %w", err)
	}

	return records, nil
}

func (r *healthRepository) Records(ctx context.Context, filter domain.InventoryFilter) ([]domain.HealthRecord, int, error) {
	countQuery := `
        SELECT COUNT(*)
        FROM health_records
        WHERE 1=1
    `

	query := `
        SELECT item_id, location_id, category, item_name, stock_status,
            stock_percentage, quantity_available, days_until_stockout,
            observed_at, computed_at
        FROM health_records
        WHERE 1=1
    `

	whereClause, args, argCounter := buildHealthFilter(filter, 1)
	query += whereClause
	countQuery += whereClause

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("error counting health records: %w", err)
	}

	query += " ORDER BY days_until_stockout ASC, item_id, location_id"
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCounter, argCounter+1)
		args = append(args, filter.PageSize, (page-1)*filter.PageSize)
	}

	var records []domain.HealthRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("error getting health records: %w", err)
	}

	return records, total, nil
}

func (r *healthRepository) Summary(ctx context.Context, filter domain.InventoryFilter) ([]domain.StatusSummary, error) {
	query := `
        SELECT stock_status, COUNT(*) AS count
        FROM health_records
        WHERE 1=1
    `

	whereClause, args, _ := buildHealthFilter(filter, 1)
	query += whereClause + " GROUP BY stock_status"

	var summaries []domain.StatusSummary
	if err := r.db.SelectContext(ctx, &summaries, query, args...); err != nil {
		return nil, fmt.Errorf("error getting health summary: %w", err)
	}

	return summaries, nil
}

func (r *healthRepository) LocationSummaries(ctx context.Context) ([]domain.LocationSummary, error) {
	query := `
		SELECT
			location_id,
			COUNT(*) AS total_items,
			COUNT(*) FILTER (WHERE stock_status IN ('OUT_OF_STOCK', 'CRITICAL')) AS critical_items,
			COUNT(*) FILTER (WHERE stock_status = 'LOW') AS low_items,
			COUNT(*) FILTER (WHERE stock_status = 'MODERATE') AS moderate_items,
			COUNT(*) FILTER (WHERE stock_status = 'GOOD') AS good_items,
			COALESCE(AVG(stock_percentage), 0) AS avg_stock_percentage
		FROM health_records
		GROUP BY location_id
		ORDER BY critical_items DESC, low_items DESC
	`

	var summaries []domain.LocationSummary
	if err := r.db.SelectContext(ctx, &summaries, query); err != nil {
		return nil, fmt.Errorf("error getting location summaries: %w", err)
	}

	return summaries, nil
}

// buildHealthFilter builds the shared WHERE tail for health queries, starting
// placeholder numbering at firstArg.
func buildHealthFilter(filter domain.InventoryFilter, firstArg int) (string, []interface{}, int) {
	var conditions []string
	var args []interface{}
	argCounter := firstArg

	if len(filter.LocationIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("location_id = ANY($%d::text[])", argCounter))
		args = append(args, pq.Array(filter.LocationIDs))
		argCounter++
	}

	if len(filter.ItemIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("item_id = ANY($%d::text[])", argCounter))
		args = append(args, pq.Array(filter.ItemIDs))
		argCounter++
	}

	if len(filter.Categories) > 0 {
		conditions = append(conditions, fmt.Sprintf("category = ANY($%d::text[])", argCounter))
		args = append(args, pq.Array(filter.Categories))
		argCounter++
	}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("stock_status = $%d", argCounter))
		args = append(args, strings.ToUpper(filter.Status))
		argCounter++
	}

	if len(conditions) == 0 {
		return "", nil, argCounter
	}

	return " AND " + strings.Join(conditions, " AND "), args, argCounter
}
