package postgres

import (
	"context"
	"fmt"

	"github.com/invensight/invensight/internal/domain"
	"github.com/invensight/invensight/internal/repository"
	"github.com/jmoiron/sqlx"
)

type snapshotRepository struct {
	db *sqlx.DB
}

func NewSnapshotRepository(db *sqlx.DB) repository.SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) InsertFacts(ctx context.Context, facts []domain.InventoryFact) (int, error) {
	if len(facts) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO inventory_facts (
			item_id, location_id, category, item_name,
			quantity_on_hand, quantity_reserved, quantity_committed,
			avg_daily_demand, reorder_point, safety_stock, lead_time_days,
			unit_cost, max_capacity, lifecycle_status, observed_at
		) VALUES (
			:item_id, :location_id, :category, :item_name,
			:quantity_on_hand, :quantity_reserved, :quantity_committed,
			:avg_daily_demand, :reorder_point, :safety_stock, :lead_time_days,
			:unit_cost, :max_capacity, :lifecycle_status, :observed_at
		)
		ON CONFLICT ON CONSTRAINT uq_facts_observation DO NOTHING
	`

	inserted := 0
	for _, fact := range facts {
		res, err := r.db.NamedExecContext(ctx, query, fact)
		if err != nil {
			return inserted, fmt.Errorf("error inserting inventory fact %s/%s: %w", fact.ItemID, fact.LocationID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	return inserted, nil
}

func (r *snapshotRepository) LatestFacts(ctx context.Context) ([]domain.InventoryFact, error) {
	query := `
		SELECT DISTINCT ON (item_id, location_id)
			id, item_id, location_id, category, item_name,
			quantity_on_hand, quantity_reserved, quantity_committed,
			avg_daily_demand, reorder_point, safety_stock, lead_time_days,
			unit_cost, max_capacity, lifecycle_status, observed_at
		FROM inventory_facts
		ORDER BY item_id, location_id, observed_at DESC
	`

	var facts []domain.InventoryFact
	if err := r.db.SelectContext(ctx, &facts, query); err != nil {
		return nil, fmt.Errorf("error getting latest facts: %w", err)
	}

	return facts, nil
}

func (r *snapshotRepository) RecentHistory(ctx context.Context, limit int) (map[domain.ItemKey][]domain.InventoryFact, error) {
	if limit <= 0 {
		limit = 30
	}

	query := `
		SELECT id, item_id, location_id, category, item_name,
			quantity_on_hand, quantity_reserved, quantity_committed,
			avg_daily_demand, reorder_point, safety_stock, lead_time_days,
			unit_cost, max_capacity, lifecycle_status, observed_at
		FROM (
			SELECT f.*,
				ROW_NUMBER() OVER (
					PARTITION BY item_id, location_id
					ORDER BY observed_at DESC
				) AS rn
			FROM inventory_facts f
		) ranked
		WHERE rn <= $1
		ORDER BY item_id, location_id, observed_at ASC
	`

	var facts []domain.InventoryFact
	if err := r.db.SelectContext(ctx, &facts, query, limit); err != nil {
		return nil, fmt.Errorf("error getting fact history: %w", err)
	}

	history := make(map[domain.ItemKey][]domain.InventoryFact)
	for _, fact := range facts {
		key := fact.Key()
		history[key] = append(history[key], fact)
	}

	return history, nil
}
