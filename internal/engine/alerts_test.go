package engine

import (
	"testing"
	"time"

	"github.com/invensight/invensight/internal/domain"
)

func degradedRecord(status string, available, days float64) domain.HealthRecord {
	return domain.HealthRecord{
		ItemID:            "SKU-100",
		LocationID:        "city-hospital",
		StockStatus:       status,
		QuantityAvailable: available,
		DaysUntilStockout: days,
		ObservedAt:        time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestAlertPriorityFor(t *testing.T) {
	cases := []struct {
		name         string
		available    float64
		days         float64
		wantPriority string
	}{
		{"nothing available", 0, 0, domain.PriorityCritical},
		{"negative available", -5, 0, domain.PriorityCritical},
		{"within safety stock", 20, 10, domain.PriorityHigh},
		{"stockout within three days", 60, 2, domain.PriorityHigh},
		{"within reorder point", 80, 10, domain.PriorityMedium},
		{"stockout within a week", 200, 6, domain.PriorityMedium},
		{"otherwise", 300, 30, domain.PriorityLow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			record := degradedRecord(domain.StatusLow, tc.available, tc.days)
			got := AlertPriorityFor(record, 40, 100)
			if got != tc.wantPriority {
				t.Errorf("expected %s, got %s", tc.wantPriority, got)
			}
		})
	}
}

func TestShouldOpenAlert(t *testing.T) {
	if !ShouldOpenAlert(degradedRecord(domain.StatusCritical, 5, 1)) {
		t.Error("critical record must open an alert")
	}
	if !ShouldOpenAlert(degradedRecord(domain.StatusOutOfStock, 0, 0)) {
		t.Error("out-of-stock record must open an alert")
	}
	if !ShouldOpenAlert(degradedRecord(domain.StatusOverstock, 600, 30)) {
		t.Error("overstock is degraded and must open an alert")
	}
	if ShouldOpenAlert(degradedRecord(domain.StatusGood, 400, 20)) {
		t.Error("healthy record must never open an alert")
	}
	if ShouldOpenAlert(degradedRecord(domain.StatusModerate, 200, 10)) {
		t.Error("moderate record must never open an alert")
	}
}

func TestShouldResolveAlert(t *testing.T) {
	if !ShouldResolveAlert(degradedRecord(domain.StatusGood, 400, 20)) {
		t.Error("healthy record must resolve the open alert")
	}
	if !ShouldResolveAlert(degradedRecord(domain.StatusModerate, 200, 10)) {
		t.Error("moderate record must resolve the open alert")
	}
	if ShouldResolveAlert(degradedRecord(domain.StatusLow, 80, 4)) {
		t.Error("still-degraded record must not resolve the alert")
	}
	if ShouldResolveAlert(degradedRecord(domain.StatusOverstock, 600, 30)) {
		t.Error("overstock must keep its alert open")
	}
}

func TestNewAlertFor(t *testing.T) {
	record := degradedRecord(domain.StatusCritical, 5, 1)

	alert := NewAlertFor(record, 22, 51)
	if alert.AlertType != domain.StatusCritical {
		t.Errorf("expected alert type CRITICAL, got %s", alert.AlertType)
	}
	if alert.Priority != domain.PriorityHigh {
		t.Errorf("expected HIGH priority, got %s", alert.Priority)
	}
	if alert.Resolved {
		t.Error("new alert must not be resolved")
	}
	if !alert.OpenedAt.Equal(record.ObservedAt) {
		t.Errorf("alert opened_at must track the observation time")
	}
}
