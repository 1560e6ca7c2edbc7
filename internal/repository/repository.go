package repository

import (
	"context"
	"time"

	"github.com/invensight/invensight/internal/domain"
)

// SnapshotRepository is the append-only store of inventory observations.
type SnapshotRepository interface {
	// InsertFacts appends a batch of observations, skipping exact duplicates
	// of (item, location, observed_at). Returns the number inserted.
	InsertFacts(ctx context.Context, facts []domain.InventoryFact) (int, error)
	// LatestFacts returns the most recent fact per key.
	LatestFacts(ctx context.Context) ([]domain.InventoryFact, error)
	// RecentHistory returns up to limit trailing observations per key,
	// ordered oldest first within each key.
	RecentHistory(ctx context.Context, limit int) (map[domain.ItemKey][]domain.InventoryFact, error)
}

// HealthRepository stores the classified health of every key.
type HealthRepository interface {
	UpsertRecords(ctx context.Context, records []domain.HealthRecord) error
	All(ctx context.Context) ([]domain.HealthRecord, error)
	Records(ctx context.Context, filter domain.InventoryFilter) ([]domain.HealthRecord, int, error)
	Summary(ctx context.Context, filter domain.InventoryFilter) ([]domain.StatusSummary, error)
	LocationSummaries(ctx context.Context) ([]domain.LocationSummary, error)
}

// AlertRepository stores the alert lifecycle. The single-open-alert and
// dedup-window invariants are enforced inside OpenIfAbsent, atomically with
// the insert.
type AlertRepository interface {
	// OpenIfAbsent opens the alert unless the key already has an open alert
	// or any alert opened within the dedup window. Reports whether a row was
	// inserted.
	OpenIfAbsent(ctx context.Context, alert domain.Alert, dedupWindow time.Duration) (bool, error)
	// Resolve marks the key's open alert resolved at the given time. Reports
	// whether an open alert existed.
	Resolve(ctx context.Context, key domain.ItemKey, resolvedAt time.Time) (bool, error)
	OpenAlerts(ctx context.Context) ([]domain.Alert, error)
	List(ctx context.Context, includeResolved bool, limit int) ([]domain.Alert, error)
	// ArchiveResolvedBefore removes resolved alerts whose resolved_at is
	// older than the cutoff. Returns the number archived.
	ArchiveResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ForecastRepository holds the current prediction per key; every refresh run
// fully supersedes the previous set.
type ForecastRepository interface {
	ReplaceAll(ctx context.Context, predictions []domain.ForecastPrediction) error
	List(ctx context.Context, filter domain.InventoryFilter) ([]domain.ForecastPrediction, error)
	CountByRisk(ctx context.Context, risk string) (int, error)
}

// ReorderRepository stores reorder recommendations.
type ReorderRepository interface {
	// CreatePendingIfAbsent inserts the recommendation unless a PENDING one
	// for the key exists within the dedup window. Reports whether a row was
	// inserted.
	CreatePendingIfAbsent(ctx context.Context, rec domain.ReorderRecommendation, dedupWindow time.Duration) (bool, error)
	Pending(ctx context.Context) ([]domain.ReorderRecommendation, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	PendingCount(ctx context.Context) (int, error)
}

// AnomalyRepository stores the informational anomaly stream.
type AnomalyRepository interface {
	Upsert(ctx context.Context, records []domain.AnomalyRecord) error
	Recent(ctx context.Context, since time.Time, limit int) ([]domain.AnomalyRecord, error)
}
