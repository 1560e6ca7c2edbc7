package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestReadSnapshots_LooseHeaders(t *testing.T) {
	input := strings.Join([]string{
		"SKU,Location,Product Name,Stock,Daily Sales,Reorder Point,Safety Stock,Lead Time,Cost,Capacity,Date",
		"SKU-100,city-hospital,IV Catheter 20G,400,20,100,40,5,1.25,500,2026-03-01",
		"SKU-200,rural-clinic,Gauze Pad,\"1,200\",15,80,30,7,0.40,2000,2026-03-01",
	}, "\n")

	facts, err := readSnapshots(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(facts) != 2 {
		t.Fatalf("facts = %d, want 2", len(facts))
	}

	first := facts[0]
	if first.ItemID != "SKU-100" || first.LocationID != "city-hospital" {
		t.Errorf("key = %s/%s", first.ItemID, first.LocationID)
	}
	if first.QuantityOnHand != 400 || first.AvgDailyDemand != 20 {
		t.Errorf("quantities = %v/%v", first.QuantityOnHand, first.AvgDailyDemand)
	}
	if first.LifecycleStatus != "active" {
		t.Errorf("lifecycle defaulted to %q, want active", first.LifecycleStatus)
	}
	want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if !first.ObservedAt.Equal(want) {
		t.Errorf("observed_at = %v, want %v", first.ObservedAt, want)
	}

	// Thousands separators are stripped before parsing.
	if facts[1].QuantityOnHand != 1200 {
		t.Errorf("grouped number parsed as %v, want 1200", facts[1].QuantityOnHand)
	}
}

func TestReadSnapshots_SkipsRowsWithoutKey(t *testing.T) {
	input := strings.Join([]string{
		"item_id,location_id,quantity_on_hand,observed_at",
		",depot,50,2026-03-01",
		"SKU-1,,50,2026-03-01",
		"SKU-1,depot,50,2026-03-01",
	}, "\n")

	facts, err := readSnapshots(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(facts) != 1 {
		t.Fatalf("facts = %d, want 1", len(facts))
	}
}

func TestReadSnapshots_MissingRequiredColumns(t *testing.T) {
	input := "category,item_name\nconsumables,Gauze"
	if _, err := readSnapshots(strings.NewReader(input)); err == nil {
		t.Fatal("expected error for missing required columns")
	}
}

func TestReadSnapshots_BadDate(t *testing.T) {
	input := strings.Join([]string{
		"item_id,location_id,quantity_on_hand,observed_at",
		"SKU-1,depot,50,not-a-date",
	}, "\n")
	if _, err := readSnapshots(strings.NewReader(input)); err == nil {
		t.Fatal("expected error for unparseable date")
	}
}

func TestReadSnapshotCSV_ValidatesExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.txt")
	if err := os.WriteFile(path, []byte("item_id,location_id,quantity_on_hand\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadSnapshotCSV(path); err == nil {
		t.Fatal("expected error for non-csv extension")
	}
}

func TestReadSnapshotCSV_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.csv")
	content := strings.Join([]string{
		"item_id,location_id,quantity_on_hand,avg_daily_demand,observed_at",
		"SKU-9,ngo-center,120,4,2026-03-02T08:00:00Z",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	facts, err := ReadSnapshotCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(facts) != 1 {
		t.Fatalf("facts = %d, want 1", len(facts))
	}
	if facts[0].ObservedAt.Hour() != 8 {
		t.Errorf("observed_at = %v", facts[0].ObservedAt)
	}
}
