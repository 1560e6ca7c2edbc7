package engine

import (
	"math"
	"time"

	"github.com/invensight/invensight/internal/domain"
)

// Severity thresholds on the absolute z-score of a day-over-day delta.
const (
	severeZThreshold   = 3.0
	moderateZThreshold = 2.0
)

// Deltas backed by fewer trailing deltas than this are not scored. A two- or
// three-point baseline makes ordinary noise look like an outlier.
const minBaselineDeltas = 5

// Observation is one point of a key's on-hand quantity history, ordered by
// observation time.
type Observation struct {
	ObservedAt     time.Time
	QuantityOnHand float64
}

// AnomalyDetector scores day-over-day quantity deltas against their trailing
// window. Output is informational only; anomalies never open alerts.
type AnomalyDetector struct {
	windowSize int
}

// NewAnomalyDetector creates a detector with the given trailing window size
// (number of prior deltas a point is scored against).
func NewAnomalyDetector(windowSize int) *AnomalyDetector {
	if windowSize <= 0 {
		windowSize = 14
	}
	return &AnomalyDetector{windowSize: windowSize}
}

// Detect scores each observation's delta against the trailing window of
// earlier deltas (the scored point itself is excluded) and returns records
// for the MODERATE and SEVERE outliers. Observations must be ordered oldest
// first; a constant series has stddev 0 and is never flagged, and points
// without enough trailing baseline are skipped.
func (d *AnomalyDetector) Detect(itemID, locationID string, observations []Observation) []domain.AnomalyRecord {
	if len(observations) < 2 {
		return nil
	}

	deltas := make([]float64, 0, len(observations)-1)
	for i := 1; i < len(observations); i++ {
		deltas = append(deltas, observations[i].QuantityOnHand-observations[i-1].QuantityOnHand)
	}

	var records []domain.AnomalyRecord
	for i, delta := range deltas {
		start := i - d.windowSize
		if start < 0 {
			start = 0
		}
		window := deltas[start:i]
		if len(window) < minBaselineDeltas {
			continue
		}

		windowMean := mean(window)
		stddev, ok := sampleStddev(window)

		z := 0.0
		if ok && stddev > 0 {
			z = (delta - windowMean) / stddev
		}

		severity := severityForZ(z)
		if severity == "" {
			continue
		}

		records = append(records, domain.AnomalyRecord{
			ItemID:        itemID,
			LocationID:    locationID,
			ObservedAt:    observations[i+1].ObservedAt,
			QuantityDelta: delta,
			MeanDelta:     windowMean,
			StddevDelta:   stddev,
			ZScore:        z,
			Severity:      severity,
		})
	}

	return records
}

func severityForZ(z float64) string {
	switch abs := math.Abs(z); {
	case abs > severeZThreshold:
		return domain.SeveritySevere
	case abs > moderateZThreshold:
		return domain.SeverityModerate
	default:
		return ""
	}
}
