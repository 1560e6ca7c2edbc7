package engine

import (
	"math"
	"time"

	"github.com/invensight/invensight/internal/domain"
)

const (
	avgConsumptionWindow    = 7
	stddevConsumptionWindow = 14
	// Heuristic volatility floor used when the stddev is undefined.
	stddevFallbackRatio = 0.2
	// 95% confidence interval.
	confidenceZ = 1.96
)

// Forecaster projects near-term consumption and stock from a trailing window
// of observed consumption. Moving-average based, not model-trained.
type Forecaster struct {
	horizonDays int
}

func NewForecaster(horizonDays int) *Forecaster {
	if horizonDays <= 0 {
		horizonDays = 14
	}
	return &Forecaster{horizonDays: horizonDays}
}

// Forecast computes the prediction for one key. consumption must be ordered
// oldest first. Items with no observed demand are excluded from forecasting
// entirely; the second return value reports whether a prediction was made.
func (f *Forecaster) Forecast(fact domain.InventoryFact, consumption []float64, now time.Time) (domain.ForecastPrediction, bool) {
	avg7 := mean(lastN(consumption, avgConsumptionWindow))
	if avg7 <= 0 {
		return domain.ForecastPrediction{}, false
	}

	stddev, ok := sampleStddev(lastN(consumption, stddevConsumptionWindow))
	if !ok {
		stddev = avg7 * stddevFallbackRatio
	}

	predictedStock := fact.QuantityOnHand - avg7*float64(f.horizonDays)
	if predictedStock < 0 {
		predictedStock = 0
	}

	prediction := domain.ForecastPrediction{
		ItemID:               fact.ItemID,
		LocationID:           fact.LocationID,
		HorizonDays:          f.horizonDays,
		CurrentStock:         fact.QuantityOnHand,
		PredictedConsumption: avg7,
		PredictedStock:       predictedStock,
		ConfidenceLower:      math.Max(0, avg7-confidenceZ*stddev),
		ConfidenceUpper:      math.Max(0, avg7+confidenceZ*stddev),
		ModelAccuracy:        100 - math.Min(100, stddev/avg7*100),
		StockoutRisk:         stockoutRisk(predictedStock, fact.ReorderPoint),
		GeneratedAt:          now,
	}

	return prediction, true
}

func stockoutRisk(predictedStock, reorderPoint float64) string {
	switch {
	case predictedStock <= 0:
		return domain.RiskHigh
	case predictedStock < reorderPoint:
		return domain.RiskModerate
	default:
		return domain.RiskLow
	}
}
