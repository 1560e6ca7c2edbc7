package engine

import (
	"github.com/invensight/invensight/internal/domain"
)

// Days-until-stockout bounds for the HIGH and MEDIUM priority tiers.
const (
	highPriorityStockoutDays   = 3
	mediumPriorityStockoutDays = 7
)

// AlertPriorityFor assigns an alert priority to a degraded health record
// using the fact's thresholds.
func AlertPriorityFor(record domain.HealthRecord, safetyStock, reorderPoint float64) string {
	switch {
	case record.QuantityAvailable <= 0:
		return domain.PriorityCritical
	case record.QuantityAvailable <= safetyStock || record.DaysUntilStockout <= highPriorityStockoutDays:
		return domain.PriorityHigh
	case record.QuantityAvailable <= reorderPoint || record.DaysUntilStockout <= mediumPriorityStockoutDays:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

// ShouldOpenAlert decides the NONE -> OPEN transition: any degraded status
// calls for an open alert. The single-open invariant and the dedup window are
// enforced by the store at insert time, so they are not re-checked here.
func ShouldOpenAlert(record domain.HealthRecord) bool {
	return domain.IsDegradedStatus(record.StockStatus)
}

// ShouldResolveAlert decides the OPEN -> RESOLVED transition: a later record
// for the key evaluates healthy. MODERATE counts as recovered.
func ShouldResolveAlert(record domain.HealthRecord) bool {
	return domain.IsHealthyStatus(record.StockStatus)
}

// NewAlertFor builds the OPEN alert for a degraded record.
func NewAlertFor(record domain.HealthRecord, safetyStock, reorderPoint float64) domain.Alert {
	return domain.Alert{
		ItemID:            record.ItemID,
		LocationID:        record.LocationID,
		AlertType:         record.StockStatus,
		Priority:          AlertPriorityFor(record, safetyStock, reorderPoint),
		CurrentStock:      record.QuantityAvailable,
		DaysUntilStockout: record.DaysUntilStockout,
		OpenedAt:          record.ObservedAt,
	}
}
