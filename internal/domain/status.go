package domain

import "strings"

// Stock status values, ordered from worst to best.
const (
	StatusOutOfStock = "OUT_OF_STOCK"
	StatusCritical   = "CRITICAL"
	StatusLow        = "LOW"
	StatusOverstock  = "OVERSTOCK"
	StatusModerate   = "MODERATE"
	StatusGood       = "GOOD"
)

// Alert priorities.
const (
	PriorityCritical = "CRITICAL"
	PriorityHigh     = "HIGH"
	PriorityMedium   = "MEDIUM"
	PriorityLow      = "LOW"
)

// Stockout risk tiers.
const (
	RiskHigh     = "HIGH"
	RiskModerate = "MODERATE"
	RiskLow      = "LOW"
)

// Anomaly severities. Anything milder than MODERATE is not surfaced.
const (
	SeverityModerate = "MODERATE"
	SeveritySevere   = "SEVERE"
)

// Recommendation lifecycle.
const (
	RecommendationPending   = "PENDING"
	RecommendationOrdered   = "ORDERED"
	RecommendationDelivered = "DELIVERED"
	RecommendationCancelled = "CANCELLED"
)

// Item lifecycle statuses. Discontinued and obsolete items never produce
// reorder recommendations.
const (
	LifecycleActive       = "active"
	LifecycleDiscontinued = "discontinued"
	LifecycleObsolete     = "obsolete"
)

var degradedStatuses = map[string]bool{
	StatusOutOfStock: true,
	StatusCritical:   true,
	StatusLow:        true,
	StatusOverstock:  true,
}

// IsDegradedStatus reports whether a stock status should have an open alert.
func IsDegradedStatus(status string) bool {
	return degradedStatuses[status]
}

// IsHealthyStatus reports whether a stock status resolves an open alert.
func IsHealthyStatus(status string) bool {
	return status == StatusModerate || status == StatusGood
}

var priorityRanks = map[string]int{
	PriorityCritical: 0,
	PriorityHigh:     1,
	PriorityMedium:   2,
	PriorityLow:      3,
}

// PriorityRank returns a sortable rank for an alert priority, most urgent
// first. Unknown priorities sort last.
func PriorityRank(priority string) int {
	if rank, ok := priorityRanks[strings.ToUpper(priority)]; ok {
		return rank
	}
	return len(priorityRanks)
}

var stockStatuses = map[string]string{
	"out_of_stock": StatusOutOfStock,
	"critical":     StatusCritical,
	"low":          StatusLow,
	"overstock":    StatusOverstock,
	"moderate":     StatusModerate,
	"good":         StatusGood,
}

// ParseStockStatus returns the canonical stock status for a label
// (case-insensitive).
func ParseStockStatus(label string) (string, bool) {
	status, ok := stockStatuses[strings.ToLower(strings.TrimSpace(label))]

	return status, ok
}

// TerminalLifecycle reports whether an item is discontinued or obsolete.
func TerminalLifecycle(lifecycle string) bool {
	switch strings.ToLower(strings.TrimSpace(lifecycle)) {
	case LifecycleDiscontinued, LifecycleObsolete:
		return true
	}
	return false
}
