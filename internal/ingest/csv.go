package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/invensight/invensight/internal/domain"
)

// ReadSnapshotCSV loads inventory observations from a CSV file. Header names
// are matched loosely (case, spacing and separators are ignored) so exports
// from different systems load without remapping.
func ReadSnapshotCSV(path string) ([]domain.InventoryFact, error) {
	if err := validateInput(path); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer file.Close()

	facts, err := readSnapshots(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return facts, nil
}

func validateInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot stat input file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("input path %s is a directory, expected file", path)
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".csv" {
		return fmt.Errorf("unsupported file extension %s for %s", ext, path)
	}
	return nil
}

func readSnapshots(r io.Reader) ([]domain.InventoryFact, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	colIndex := func(names ...string) int {
		targets := make(map[string]struct{}, len(names))
		for _, name := range names {
			targets[normalizeColumnName(name)] = struct{}{}
		}
		for i, h := range header {
			if _, ok := targets[normalizeColumnName(h)]; ok {
				return i
			}
		}
		return -1
	}

	idxItemID := colIndex("item_id", "sku", "item")
	idxLocationID := colIndex("location_id", "location", "site", "store")
	idxCategory := colIndex("category")
	idxItemName := colIndex("item_name", "name", "product name")
	idxOnHand := colIndex("quantity_on_hand", "on_hand", "stock")
	idxReserved := colIndex("quantity_reserved", "reserved")
	idxCommitted := colIndex("quantity_committed", "committed")
	idxDemand := colIndex("avg_daily_demand", "daily_demand", "daily sales")
	idxReorderPoint := colIndex("reorder_point", "rop")
	idxSafetyStock := colIndex("safety_stock")
	idxLeadTime := colIndex("lead_time_days", "lead_time", "lead time")
	idxUnitCost := colIndex("unit_cost", "cost")
	idxCapacity := colIndex("max_capacity", "capacity")
	idxLifecycle := colIndex("lifecycle_status", "lifecycle")
	idxObservedAt := colIndex("observed_at", "snapshot_date", "date")

	if idxItemID < 0 || idxLocationID < 0 || idxOnHand < 0 {
		return nil, fmt.Errorf("missing required columns item_id, location_id or quantity_on_hand")
	}

	var facts []domain.InventoryFact
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		get := func(idx int) string {
			if idx < 0 || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		parseFloat := func(idx int) float64 {
			v := get(idx)
			if v == "" {
				return 0
			}
			v = strings.ReplaceAll(v, ",", "")
			f, _ := strconv.ParseFloat(v, 64)
			return f
		}

		itemID := get(idxItemID)
		locationID := get(idxLocationID)
		if itemID == "" || locationID == "" {
			continue
		}

		observedAt, err := parseObservedAt(get(idxObservedAt))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		lifecycle := get(idxLifecycle)
		if lifecycle == "" {
			lifecycle = domain.LifecycleActive
		}

		facts = append(facts, domain.InventoryFact{
			ItemID:            itemID,
			LocationID:        locationID,
			Category:          get(idxCategory),
			ItemName:          get(idxItemName),
			QuantityOnHand:    parseFloat(idxOnHand),
			QuantityReserved:  parseFloat(idxReserved),
			QuantityCommitted: parseFloat(idxCommitted),
			AvgDailyDemand:    parseFloat(idxDemand),
			ReorderPoint:      parseFloat(idxReorderPoint),
			SafetyStock:       parseFloat(idxSafetyStock),
			LeadTimeDays:      parseFloat(idxLeadTime),
			UnitCost:          parseFloat(idxUnitCost),
			MaxCapacity:       parseFloat(idxCapacity),
			LifecycleStatus:   strings.ToLower(lifecycle),
			ObservedAt:        observedAt,
		})
	}

	return facts, nil
}

var observedAtLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"20060102",
}

func parseObservedAt(value string) (time.Time, error) {
	if value == "" {
		return time.Now().UTC(), nil
	}
	for _, layout := range observedAtLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable observation time %q", value)
}

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return columnNameSanitizer.Replace(name)
}
