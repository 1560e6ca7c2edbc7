package engine

import (
	"math"
	"testing"
	"time"
)

func observationSeries(quantities ...float64) []Observation {
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	obs := make([]Observation, len(quantities))
	for i, q := range quantities {
		obs[i] = Observation{ObservedAt: start.AddDate(0, 0, i), QuantityOnHand: q}
	}
	return obs
}

func TestDetect_ConstantSeriesNeverFlagged(t *testing.T) {
	d := NewAnomalyDetector(14)

	series := make([]float64, 30)
	for i := range series {
		series[i] = 250
	}

	records := d.Detect("SKU-1", "loc-1", observationSeries(series...))
	if len(records) != 0 {
		t.Errorf("constant series produced %d anomalies, expected none", len(records))
	}
}

func TestDetect_SteadyDeclineNeverFlagged(t *testing.T) {
	d := NewAnomalyDetector(14)

	// Constant daily consumption: every delta is -10, stddev of the window
	// is 0, so z is defined as 0.
	series := make([]float64, 20)
	for i := range series {
		series[i] = 500 - float64(i)*10
	}

	records := d.Detect("SKU-1", "loc-1", observationSeries(series...))
	if len(records) != 0 {
		t.Errorf("steady decline produced %d anomalies, expected none", len(records))
	}
}

func TestDetect_FlagsLargeSpike(t *testing.T) {
	d := NewAnomalyDetector(14)

	// Mild noise around -10/day, then a massive one-day drain.
	quantities := []float64{500, 490, 481, 471, 460, 451, 441, 430, 421, 411, 400, 391, 381, 370, 360, 100}

	records := d.Detect("SKU-9", "ngo-center", observationSeries(quantities...))
	if len(records) != 1 {
		t.Fatalf("expected 1 anomaly, got %d", len(records))
	}

	rec := records[0]
	if rec.Severity != "SEVERE" {
		t.Errorf("expected SEVERE severity, got %s", rec.Severity)
	}
	if math.Abs(rec.ZScore) <= moderateZThreshold {
		t.Errorf("flagged anomaly must have |z| > %v, got %v", moderateZThreshold, rec.ZScore)
	}
	if rec.QuantityDelta != -260 {
		t.Errorf("expected delta -260, got %v", rec.QuantityDelta)
	}
	if rec.ItemID != "SKU-9" || rec.LocationID != "ngo-center" {
		t.Errorf("anomaly carries wrong key: %s/%s", rec.ItemID, rec.LocationID)
	}
}

func TestDetect_ShortBaselineNotScored(t *testing.T) {
	d := NewAnomalyDetector(14)

	// Four deltas of ordinary noise. With only three trailing deltas the -11
	// would score z ~ -2.3 against the near-flat baseline, which is not a
	// real anomaly. Nothing may be flagged until the baseline fills.
	quantities := []float64{500, 490, 481, 471, 460}

	records := d.Detect("SKU-1", "loc-1", observationSeries(quantities...))
	if len(records) != 0 {
		t.Errorf("short baseline produced %d anomalies, expected none", len(records))
	}
}

func TestDetect_WindowExcludesScoredPoint(t *testing.T) {
	d := NewAnomalyDetector(5)

	// The spike delta must not dilute its own baseline: if it were included
	// in the window, the z-score would shrink below the threshold.
	quantities := []float64{100, 99, 101, 100, 98, 100, 99, 20}

	records := d.Detect("SKU-2", "loc-1", observationSeries(quantities...))
	if len(records) != 1 {
		t.Fatalf("expected the spike to be flagged, got %d records", len(records))
	}
}

func TestDetect_TooShortSeries(t *testing.T) {
	d := NewAnomalyDetector(14)

	if records := d.Detect("SKU-1", "loc-1", nil); records != nil {
		t.Errorf("nil series should produce no anomalies")
	}
	if records := d.Detect("SKU-1", "loc-1", observationSeries(100)); records != nil {
		t.Errorf("single observation should produce no anomalies")
	}
	// Two observations give one delta but no window to score against.
	if records := d.Detect("SKU-1", "loc-1", observationSeries(100, 0)); len(records) != 0 {
		t.Errorf("one delta with empty window should not be flagged")
	}
}

func TestSampleStddev(t *testing.T) {
	if _, ok := sampleStddev(nil); ok {
		t.Error("stddev of empty slice should be undefined")
	}
	if _, ok := sampleStddev([]float64{4}); ok {
		t.Error("stddev of one value should be undefined")
	}

	stddev, ok := sampleStddev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if !ok {
		t.Fatal("stddev should be defined")
	}
	if math.Abs(stddev-2.138) > 0.001 {
		t.Errorf("expected sample stddev ~2.138, got %v", stddev)
	}
}

func TestLastN(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}

	got := lastN(values, 3)
	if len(got) != 3 || got[0] != 3 || got[2] != 5 {
		t.Errorf("lastN(5 values, 3) = %v", got)
	}
	if got := lastN(values, 10); len(got) != 5 {
		t.Errorf("lastN should return all values when n exceeds length, got %v", got)
	}
}
