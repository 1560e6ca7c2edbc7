package engine

import (
	"math"
	"testing"
	"time"

	"github.com/invensight/invensight/internal/domain"
)

func TestForecast_ZeroDemandExcluded(t *testing.T) {
	f := NewForecaster(14)
	fact := testFact()

	if _, ok := f.Forecast(fact, nil, time.Now()); ok {
		t.Error("no consumption history should exclude the item from forecasting")
	}
	if _, ok := f.Forecast(fact, []float64{0, 0, 0, 0, 0, 0, 0}, time.Now()); ok {
		t.Error("all-zero consumption should exclude the item from forecasting")
	}
}

func TestForecast_PredictedStockClamped(t *testing.T) {
	f := NewForecaster(14)

	fact := testFact()
	fact.QuantityOnHand = 50

	// 20 units/day for 14 days far exceeds 50 on hand.
	consumption := []float64{20, 20, 20, 20, 20, 20, 20}

	prediction, ok := f.Forecast(fact, consumption, time.Now())
	if !ok {
		t.Fatal("expected a prediction")
	}
	if prediction.PredictedStock != 0 {
		t.Errorf("predicted stock must clamp to 0, got %v", prediction.PredictedStock)
	}
	if prediction.StockoutRisk != domain.RiskHigh {
		t.Errorf("depleted stock should be HIGH risk, got %s", prediction.StockoutRisk)
	}
}

func TestForecast_UsesTrailingWindows(t *testing.T) {
	f := NewForecaster(14)

	fact := testFact()
	fact.QuantityOnHand = 1000
	fact.ReorderPoint = 100

	// Older values must not affect the 7-observation average.
	consumption := []float64{500, 500, 500, 10, 10, 10, 10, 10, 10, 10}

	prediction, ok := f.Forecast(fact, consumption, time.Now())
	if !ok {
		t.Fatal("expected a prediction")
	}
	if prediction.PredictedConsumption != 10 {
		t.Errorf("expected avg consumption 10 over last 7, got %v", prediction.PredictedConsumption)
	}
	if prediction.PredictedStock != 1000-10*14 {
		t.Errorf("expected predicted stock 860, got %v", prediction.PredictedStock)
	}
	if prediction.StockoutRisk != domain.RiskLow {
		t.Errorf("expected LOW risk, got %s", prediction.StockoutRisk)
	}
}

func TestForecast_ConfidenceBoundsNonNegative(t *testing.T) {
	f := NewForecaster(14)

	fact := testFact()
	fact.QuantityOnHand = 5000

	// Wildly volatile consumption drives the lower bound negative before
	// clamping.
	consumption := []float64{1, 200, 1, 180, 2, 190, 1, 210, 2, 170, 1, 220, 3, 160}

	prediction, ok := f.Forecast(fact, consumption, time.Now())
	if !ok {
		t.Fatal("expected a prediction")
	}
	if prediction.ConfidenceLower < 0 {
		t.Errorf("lower bound must clamp to >= 0, got %v", prediction.ConfidenceLower)
	}
	if prediction.ConfidenceUpper < prediction.ConfidenceLower {
		t.Errorf("upper bound %v below lower bound %v", prediction.ConfidenceUpper, prediction.ConfidenceLower)
	}
}

func TestForecast_StddevFallback(t *testing.T) {
	f := NewForecaster(14)

	fact := testFact()
	fact.QuantityOnHand = 1000

	// A single observation leaves stddev undefined; the heuristic floor of
	// 0.2 x avg applies, giving CI = 10 +/- 1.96*2.
	prediction, ok := f.Forecast(fact, []float64{10}, time.Now())
	if !ok {
		t.Fatal("expected a prediction")
	}

	wantLower := 10 - confidenceZ*2
	wantUpper := 10 + confidenceZ*2
	if math.Abs(prediction.ConfidenceLower-wantLower) > 1e-9 {
		t.Errorf("expected lower bound %v, got %v", wantLower, prediction.ConfidenceLower)
	}
	if math.Abs(prediction.ConfidenceUpper-wantUpper) > 1e-9 {
		t.Errorf("expected upper bound %v, got %v", wantUpper, prediction.ConfidenceUpper)
	}
}

func TestForecast_ModelAccuracyBounded(t *testing.T) {
	f := NewForecaster(14)

	fact := testFact()
	fact.QuantityOnHand = 10000

	// Volatility far above the mean: accuracy floors at 0, never negative.
	consumption := []float64{1, 500, 1, 500, 1, 500, 1, 500, 1, 500, 1, 500, 1, 500}

	prediction, ok := f.Forecast(fact, consumption, time.Now())
	if !ok {
		t.Fatal("expected a prediction")
	}
	if prediction.ModelAccuracy < 0 || prediction.ModelAccuracy > 100 {
		t.Errorf("model accuracy out of range: %v", prediction.ModelAccuracy)
	}
}

func TestForecast_ModerateRiskBelowReorderPoint(t *testing.T) {
	f := NewForecaster(14)

	fact := testFact()
	fact.QuantityOnHand = 200
	fact.ReorderPoint = 100

	// 10/day over 14 days leaves 60, below the reorder point but above zero.
	consumption := []float64{10, 10, 10, 10, 10, 10, 10}

	prediction, ok := f.Forecast(fact, consumption, time.Now())
	if !ok {
		t.Fatal("expected a prediction")
	}
	if prediction.PredictedStock != 60 {
		t.Errorf("expected predicted stock 60, got %v", prediction.PredictedStock)
	}
	if prediction.StockoutRisk != domain.RiskModerate {
		t.Errorf("expected MODERATE risk, got %s", prediction.StockoutRisk)
	}
}
