package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemKey identifies one tracked item at one location.
type ItemKey struct {
	ItemID     string
	LocationID string
}

// InventoryFact is one immutable observation of an item at a location.
// Facts are append-only; the latest fact per key is the input to every
// derived computation.
type InventoryFact struct {
	ID                int64     `json:"id" db:"id"`
	ItemID            string    `json:"item_id" db:"item_id"`
	LocationID        string    `json:"location_id" db:"location_id"`
	Category          string    `json:"category" db:"category"`
	ItemName          string    `json:"item_name" db:"item_name"`
	QuantityOnHand    float64   `json:"quantity_on_hand" db:"quantity_on_hand"`
	QuantityReserved  float64   `json:"quantity_reserved" db:"quantity_reserved"`
	QuantityCommitted float64   `json:"quantity_committed" db:"quantity_committed"`
	AvgDailyDemand    float64   `json:"avg_daily_demand" db:"avg_daily_demand"`
	ReorderPoint      float64   `json:"reorder_point" db:"reorder_point"`
	SafetyStock       float64   `json:"safety_stock" db:"safety_stock"`
	LeadTimeDays      float64   `json:"lead_time_days" db:"lead_time_days"`
	UnitCost          float64   `json:"unit_cost" db:"unit_cost"`
	MaxCapacity       float64   `json:"max_capacity" db:"max_capacity"`
	LifecycleStatus   string    `json:"lifecycle_status" db:"lifecycle_status"`
	ObservedAt        time.Time `json:"observed_at" db:"observed_at"`
}

// QuantityAvailable is on-hand minus reserved and committed stock. A negative
// result is a data-quality signal and is returned as-is; derived metrics clamp
// where they must, the fact itself is never corrected.
func (f InventoryFact) QuantityAvailable() float64 {
	return f.QuantityOnHand - f.QuantityReserved - f.QuantityCommitted
}

func (f InventoryFact) Key() ItemKey {
	return ItemKey{ItemID: f.ItemID, LocationID: f.LocationID}
}

// HealthRecord is the classified state of one key, derived from its latest
// fact. Stock percentage is measured against max capacity.
type HealthRecord struct {
	ItemID            string    `json:"item_id" db:"item_id"`
	LocationID        string    `json:"location_id" db:"location_id"`
	Category          string    `json:"category" db:"category"`
	ItemName          string    `json:"item_name" db:"item_name"`
	StockStatus       string    `json:"stock_status" db:"stock_status"`
	StockPercentage   float64   `json:"stock_percentage" db:"stock_percentage"`
	QuantityAvailable float64   `json:"quantity_available" db:"quantity_available"`
	DaysUntilStockout float64   `json:"days_until_stockout" db:"days_until_stockout"`
	ObservedAt        time.Time `json:"observed_at" db:"observed_at"`
	ComputedAt        time.Time `json:"computed_at" db:"computed_at"`
}

// Alert tracks a degraded key from open to resolved. At most one open alert
// exists per key at any time.
type Alert struct {
	ID                int64      `json:"id" db:"id"`
	ItemID            string     `json:"item_id" db:"item_id"`
	LocationID        string     `json:"location_id" db:"location_id"`
	AlertType         string     `json:"alert_type" db:"alert_type"`
	Priority          string     `json:"priority" db:"priority"`
	CurrentStock      float64    `json:"current_stock" db:"current_stock"`
	DaysUntilStockout float64    `json:"days_until_stockout" db:"days_until_stockout"`
	OpenedAt          time.Time  `json:"opened_at" db:"opened_at"`
	Resolved          bool       `json:"resolved" db:"resolved"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty" db:"resolved_at"`
}

// AgeDays reports how long the alert has been open, in whole days.
func (a Alert) AgeDays(now time.Time) int {
	end := now
	if a.Resolved && a.ResolvedAt != nil {
		end = *a.ResolvedAt
	}
	return int(end.Sub(a.OpenedAt).Hours() / 24)
}

// AnomalyRecord flags a statistically unusual day-over-day quantity movement.
// Purely informational; anomalies never open alerts.
type AnomalyRecord struct {
	ItemID        string    `json:"item_id" db:"item_id"`
	LocationID    string    `json:"location_id" db:"location_id"`
	ObservedAt    time.Time `json:"observed_at" db:"observed_at"`
	QuantityDelta float64   `json:"quantity_delta" db:"quantity_delta"`
	MeanDelta     float64   `json:"mean_delta" db:"mean_delta"`
	StddevDelta   float64   `json:"stddev_delta" db:"stddev_delta"`
	ZScore        float64   `json:"z_score" db:"z_score"`
	Severity      string    `json:"severity" db:"severity"`
}

// ForecastPrediction is the current near-term projection for a key. Each run
// fully supersedes the previous prediction; there is no incremental merge.
type ForecastPrediction struct {
	ItemID               string    `json:"item_id" db:"item_id"`
	LocationID           string    `json:"location_id" db:"location_id"`
	HorizonDays          int       `json:"horizon_days" db:"horizon_days"`
	CurrentStock         float64   `json:"current_stock" db:"current_stock"`
	PredictedConsumption float64   `json:"predicted_consumption" db:"predicted_consumption"`
	PredictedStock       float64   `json:"predicted_stock" db:"predicted_stock"`
	ConfidenceLower      float64   `json:"confidence_interval_lower" db:"confidence_interval_lower"`
	ConfidenceUpper      float64   `json:"confidence_interval_upper" db:"confidence_interval_upper"`
	ModelAccuracy        float64   `json:"model_accuracy" db:"model_accuracy"`
	StockoutRisk         string    `json:"stockout_risk" db:"stockout_risk"`
	GeneratedAt          time.Time `json:"generated_at" db:"generated_at"`
}

// ReorderRecommendation is a pending procurement suggestion for a key.
type ReorderRecommendation struct {
	ID               int64           `json:"id" db:"id"`
	ItemID           string          `json:"item_id" db:"item_id"`
	LocationID       string          `json:"location_id" db:"location_id"`
	RecommendedQty   float64         `json:"recommended_qty" db:"recommended_qty"`
	EconomicOrderQty float64         `json:"economic_order_qty" db:"economic_order_qty"`
	PriorityScore    int             `json:"priority_score" db:"priority_score"`
	Urgent           bool            `json:"urgent" db:"urgent"`
	EstimatedValue   decimal.Decimal `json:"estimated_value" db:"estimated_value"`
	Status           string          `json:"status" db:"status"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// InventoryFilter narrows dashboard queries.
type InventoryFilter struct {
	LocationIDs []string `json:"location_ids"`
	ItemIDs     []string `json:"item_ids"`
	Categories  []string `json:"categories"`
	Status      string   `json:"status"`
	Page        int      `json:"page"`
	PageSize    int      `json:"page_size"`
}

// StatusSummary is a count of keys per stock status.
type StatusSummary struct {
	StockStatus string `json:"stock_status" db:"stock_status"`
	Count       int    `json:"count" db:"count"`
}

// LocationSummary aggregates health per location for the dashboard.
type LocationSummary struct {
	LocationID         string  `json:"location_id" db:"location_id"`
	TotalItems         int     `json:"total_items" db:"total_items"`
	CriticalItems      int     `json:"critical_items" db:"critical_items"`
	LowItems           int     `json:"low_items" db:"low_items"`
	ModerateItems      int     `json:"moderate_items" db:"moderate_items"`
	GoodItems          int     `json:"good_items" db:"good_items"`
	AvgStockPercentage float64 `json:"avg_stock_percentage" db:"avg_stock_percentage"`
}

// Overview is the cached dashboard payload.
type Overview struct {
	Summary        []StatusSummary   `json:"summary"`
	Locations      []LocationSummary `json:"locations"`
	OpenAlerts     int               `json:"open_alerts"`
	HighRiskItems  int               `json:"high_risk_items"`
	PendingReorder int               `json:"pending_reorders"`
}
