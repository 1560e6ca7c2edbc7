package engine

import (
	"math"
	"testing"
	"time"

	"github.com/invensight/invensight/internal/domain"
)

func TestEvaluate_NotTriggeredAboveReorderPoint(t *testing.T) {
	rc := NewReorderCalculator(50, 0.2)

	fact := testFact()
	fact.QuantityOnHand = 400 // well above reorder point 100

	if _, ok := rc.Evaluate(fact, time.Now()); ok {
		t.Error("no recommendation expected above the reorder point")
	}
}

func TestEvaluate_TerminalLifecycleSkipped(t *testing.T) {
	rc := NewReorderCalculator(50, 0.2)

	for _, lifecycle := range []string{domain.LifecycleDiscontinued, domain.LifecycleObsolete} {
		fact := testFact()
		fact.QuantityOnHand = 0
		fact.LifecycleStatus = lifecycle

		if _, ok := rc.Evaluate(fact, time.Now()); ok {
			t.Errorf("%s item must not be recommended for reorder", lifecycle)
		}
	}
}

func TestEvaluate_RecommendedQty(t *testing.T) {
	rc := NewReorderCalculator(50, 0.2)

	fact := testFact()
	fact.QuantityOnHand = 30
	fact.SafetyStock = 50
	fact.AvgDailyDemand = 10
	fact.LeadTimeDays = 7
	fact.ReorderPoint = 120

	rec, ok := rc.Evaluate(fact, time.Now())
	if !ok {
		t.Fatal("expected a recommendation")
	}

	// 50 + 10*7*1.5 - 30 = 125
	if rec.RecommendedQty != 125 {
		t.Errorf("expected recommended qty 125, got %v", rec.RecommendedQty)
	}
	if rec.Status != domain.RecommendationPending {
		t.Errorf("new recommendation must be PENDING, got %s", rec.Status)
	}
}

func TestEvaluate_RecommendedQtyMonotone(t *testing.T) {
	rc := NewReorderCalculator(50, 0.2)

	prev := math.Inf(1)
	for available := 0.0; available <= 100; available += 10 {
		fact := testFact()
		fact.QuantityOnHand = available
		fact.QuantityReserved = 0
		fact.QuantityCommitted = 0

		rec, ok := rc.Evaluate(fact, time.Now())
		if !ok {
			t.Fatalf("expected a recommendation at available=%v", available)
		}
		if rec.RecommendedQty > prev {
			t.Errorf("recommended qty increased from %v to %v as available rose to %v", prev, rec.RecommendedQty, available)
		}
		prev = rec.RecommendedQty
	}
}

func TestEvaluate_PriorityScoreTable(t *testing.T) {
	rc := NewReorderCalculator(50, 0.2)

	cases := []struct {
		name      string
		onHand    float64
		wantScore int
	}{
		{"out of stock", 0, 10},
		{"half safety stock", 20, 9},
		{"at safety stock", 40, 8},
		{"three quarters of reorder point", 75, 7},
		{"at reorder point", 100, 6},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fact := testFact()
			fact.QuantityOnHand = tc.onHand
			fact.QuantityReserved = 0
			fact.QuantityCommitted = 0

			rec, ok := rc.Evaluate(fact, time.Now())
			if !ok {
				t.Fatal("expected a recommendation")
			}
			if rec.PriorityScore != tc.wantScore {
				t.Errorf("on_hand=%v: expected score %d, got %d", tc.onHand, tc.wantScore, rec.PriorityScore)
			}
		})
	}
}

func TestEvaluate_UrgentFlag(t *testing.T) {
	rc := NewReorderCalculator(50, 0.2)

	fact := testFact()
	fact.QuantityOnHand = 40 // at safety stock, score 8

	rec, ok := rc.Evaluate(fact, time.Now())
	if !ok {
		t.Fatal("expected a recommendation")
	}
	if !rec.Urgent {
		t.Error("score 8 must be urgent")
	}

	fact.QuantityOnHand = 100 // at reorder point, score 6, above safety
	rec, ok = rc.Evaluate(fact, time.Now())
	if !ok {
		t.Fatal("expected a recommendation")
	}
	if rec.Urgent {
		t.Error("score 6 above safety stock must not be urgent")
	}
}

func TestEvaluate_EconomicOrderQty(t *testing.T) {
	rc := NewReorderCalculator(50, 0.2)

	fact := testFact()
	fact.QuantityOnHand = 50
	fact.AvgDailyDemand = 10
	fact.UnitCost = 2.5

	rec, ok := rc.Evaluate(fact, time.Now())
	if !ok {
		t.Fatal("expected a recommendation")
	}

	// sqrt(2 * 3650 * 50 / (0.2 * 2.5)) = sqrt(730000) ~ 854.4, ceiled
	want := math.Ceil(math.Sqrt(2 * 10 * 365 * 50 / (0.2 * 2.5)))
	if rec.EconomicOrderQty != want {
		t.Errorf("expected EOQ %v, got %v", want, rec.EconomicOrderQty)
	}
}

func TestEvaluate_EOQFallbackOnZeroDemand(t *testing.T) {
	rc := NewReorderCalculator(50, 0.2)

	fact := testFact()
	fact.QuantityOnHand = 50
	fact.AvgDailyDemand = 0
	fact.ReorderPoint = 100

	rec, ok := rc.Evaluate(fact, time.Now())
	if !ok {
		t.Fatal("expected a recommendation")
	}
	if rec.EconomicOrderQty != 100 {
		t.Errorf("expected EOQ fallback to reorder point 100, got %v", rec.EconomicOrderQty)
	}
}

func TestEvaluate_EstimatedValue(t *testing.T) {
	rc := NewReorderCalculator(50, 0.2)

	fact := testFact()
	fact.QuantityOnHand = 30
	fact.SafetyStock = 50
	fact.AvgDailyDemand = 10
	fact.LeadTimeDays = 7
	fact.ReorderPoint = 120
	fact.UnitCost = 1.25

	rec, ok := rc.Evaluate(fact, time.Now())
	if !ok {
		t.Fatal("expected a recommendation")
	}

	// 125 units x 1.25 = 156.25
	if rec.EstimatedValue.String() != "156.25" {
		t.Errorf("expected estimated value 156.25, got %s", rec.EstimatedValue)
	}
}
