package engine

import (
	"math"
	"time"

	"github.com/invensight/invensight/internal/domain"
	"github.com/shopspring/decimal"
)

// Buffer multiplier over raw lead-time demand coverage.
const leadTimeBuffer = 1.5

// Recommendations scoring 8 or higher are urgent.
const urgentScoreThreshold = 8

// ReorderCalculator computes order quantities and priority scores for keys at
// or below their reorder point. The EOQ cost inputs are configuration, never
// derived from the data.
type ReorderCalculator struct {
	orderingCost    float64
	holdingCostRate float64
}

func NewReorderCalculator(orderingCost, holdingCostRate float64) *ReorderCalculator {
	if orderingCost <= 0 {
		orderingCost = 50
	}
	if holdingCostRate <= 0 {
		holdingCostRate = 0.2
	}
	return &ReorderCalculator{orderingCost: orderingCost, holdingCostRate: holdingCostRate}
}

// Evaluate returns a PENDING recommendation for the fact, or false when the
// key does not need one (stock above the reorder point, or the item is
// discontinued/obsolete).
func (rc *ReorderCalculator) Evaluate(fact domain.InventoryFact, now time.Time) (domain.ReorderRecommendation, bool) {
	if domain.TerminalLifecycle(fact.LifecycleStatus) {
		return domain.ReorderRecommendation{}, false
	}

	available := fact.QuantityAvailable()
	if available > fact.ReorderPoint {
		return domain.ReorderRecommendation{}, false
	}

	qty := fact.SafetyStock + fact.AvgDailyDemand*fact.LeadTimeDays*leadTimeBuffer - available
	if qty < 0 {
		qty = 0
	}

	score := rc.priorityScore(fact, available)

	rec := domain.ReorderRecommendation{
		ItemID:           fact.ItemID,
		LocationID:       fact.LocationID,
		RecommendedQty:   math.Ceil(qty),
		EconomicOrderQty: rc.economicOrderQty(fact),
		PriorityScore:    score,
		Urgent:           score >= urgentScoreThreshold || fact.QuantityOnHand <= fact.SafetyStock,
		EstimatedValue:   estimatedOrderValue(math.Ceil(qty), fact.UnitCost),
		Status:           domain.RecommendationPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	return rec, true
}

// economicOrderQty computes the classic EOQ from annualized demand, the
// ordering-cost proxy and the holding cost per unit. Falls back to the
// reorder point when demand or unit cost leaves the formula undefined.
func (rc *ReorderCalculator) economicOrderQty(fact domain.InventoryFact) float64 {
	if fact.AvgDailyDemand <= 0 || fact.UnitCost <= 0 {
		return fact.ReorderPoint
	}

	annualDemand := fact.AvgDailyDemand * 365
	holdingCost := rc.holdingCostRate * fact.UnitCost

	return math.Ceil(math.Sqrt(2 * annualDemand * rc.orderingCost / holdingCost))
}

// priorityScore maps stock adequacy to 5..10, monotone: less stock never
// scores lower.
func (rc *ReorderCalculator) priorityScore(fact domain.InventoryFact, available float64) int {
	switch {
	case fact.QuantityOnHand <= 0:
		return 10
	case available <= fact.SafetyStock*0.5:
		return 9
	case available <= fact.SafetyStock:
		return 8
	case available <= fact.ReorderPoint*0.75:
		return 7
	case available <= fact.ReorderPoint:
		return 6
	default:
		return 5
	}
}

func estimatedOrderValue(qty, unitCost float64) decimal.Decimal {
	if qty <= 0 || unitCost <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(qty).Mul(decimal.NewFromFloat(unitCost)).Round(2)
}
