package engine

import (
	"time"

	"github.com/invensight/invensight/internal/domain"
)

// StockoutSentinelDays is reported as days-until-stockout when average daily
// demand is zero or unknown, instead of dividing by zero.
const StockoutSentinelDays = 999

// HealthClassifier derives a HealthRecord from the latest fact for a key.
// Pure and idempotent: the same fact always classifies the same way.
type HealthClassifier struct {
	goodPercentThreshold float64
}

// NewHealthClassifier creates a classifier. goodPercentThreshold splits the
// healthy band into MODERATE (below) and GOOD (at or above).
func NewHealthClassifier(goodPercentThreshold float64) *HealthClassifier {
	if goodPercentThreshold <= 0 {
		goodPercentThreshold = 50
	}
	return &HealthClassifier{goodPercentThreshold: goodPercentThreshold}
}

// Classify evaluates the status rules in priority order, first match wins.
func (hc *HealthClassifier) Classify(fact domain.InventoryFact, now time.Time) domain.HealthRecord {
	available := fact.QuantityAvailable()

	record := domain.HealthRecord{
		ItemID:            fact.ItemID,
		LocationID:        fact.LocationID,
		Category:          fact.Category,
		ItemName:          fact.ItemName,
		QuantityAvailable: available,
		StockPercentage:   stockPercentage(fact),
		DaysUntilStockout: daysUntilStockout(available, fact.AvgDailyDemand),
		ObservedAt:        fact.ObservedAt,
		ComputedAt:        now,
	}

	switch {
	case available <= 0:
		record.StockStatus = domain.StatusOutOfStock
	case available <= fact.SafetyStock:
		record.StockStatus = domain.StatusCritical
	case available <= fact.ReorderPoint:
		record.StockStatus = domain.StatusLow
	case fact.MaxCapacity > 0 && fact.QuantityOnHand > fact.MaxCapacity:
		record.StockStatus = domain.StatusOverstock
	case record.StockPercentage < hc.goodPercentThreshold:
		record.StockStatus = domain.StatusModerate
	default:
		record.StockStatus = domain.StatusGood
	}

	return record
}

// stockPercentage measures on-hand stock against max capacity. Capacity is the
// one consistent denominator used everywhere in this pipeline.
func stockPercentage(fact domain.InventoryFact) float64 {
	if fact.MaxCapacity <= 0 {
		return 0
	}
	pct := fact.QuantityOnHand / fact.MaxCapacity * 100
	if pct < 0 {
		return 0
	}
	return pct
}

func daysUntilStockout(available, avgDailyDemand float64) float64 {
	if avgDailyDemand <= 0 {
		return StockoutSentinelDays
	}
	days := available / avgDailyDemand
	if days < 0 {
		return 0
	}
	if days > StockoutSentinelDays {
		return StockoutSentinelDays
	}
	return days
}
