package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/invensight/invensight/internal/cache"
	"github.com/invensight/invensight/internal/domain"
	"github.com/invensight/invensight/internal/repository"
	"github.com/rs/zerolog/log"
)

// InventoryService is the read side of the pipeline plus snapshot ingestion.
type InventoryService struct {
	snapshots repository.SnapshotRepository
	health    repository.HealthRepository
	alerts    repository.AlertRepository
	forecasts repository.ForecastRepository
	reorders  repository.ReorderRepository
	anomalies repository.AnomalyRepository
	cache     cache.OverviewCache

	// onChange fires after a successful ingest so the scheduler can run an
	// out-of-cadence alert pass.
	onChange func()
}

func NewInventoryService(
	snapshots repository.SnapshotRepository,
	health repository.HealthRepository,
	alerts repository.AlertRepository,
	forecasts repository.ForecastRepository,
	reorders repository.ReorderRepository,
	anomalies repository.AnomalyRepository,
	cacheImpl cache.OverviewCache,
) *InventoryService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopOverviewCache()
	}
	return &InventoryService{
		snapshots: snapshots,
		health:    health,
		alerts:    alerts,
		forecasts: forecasts,
		reorders:  reorders,
		anomalies: anomalies,
		cache:     cacheImpl,
	}
}

// OnChange registers the callback fired after each ingest that inserted rows.
func (s *InventoryService) OnChange(fn func()) {
	s.onChange = fn
}

// Ingest appends a batch of observations. Exact duplicates of an already
// stored (item, location, observed_at) are skipped; the returned count is the
// number of rows actually inserted.
func (s *InventoryService) Ingest(ctx context.Context, facts []domain.InventoryFact) (int, error) {
	for i := range facts {
		if facts[i].ItemID == "" || facts[i].LocationID == "" {
			return 0, fmt.Errorf("fact %d: item_id and location_id are required", i)
		}
		if facts[i].ObservedAt.IsZero() {
			facts[i].ObservedAt = time.Now().UTC()
		}
		if facts[i].LifecycleStatus == "" {
			facts[i].LifecycleStatus = domain.LifecycleActive
		}
	}

	inserted, err := s.snapshots.InsertFacts(ctx, facts)
	if err != nil {
		return inserted, err
	}

	if inserted > 0 && s.onChange != nil {
		s.onChange()
	}

	return inserted, nil
}

func (s *InventoryService) HealthRecords(ctx context.Context, filter domain.InventoryFilter) ([]domain.HealthRecord, int, error) {
	return s.health.Records(ctx, filter)
}

func (s *InventoryService) Summary(ctx context.Context, filter domain.InventoryFilter) ([]domain.StatusSummary, error) {
	if summaries, ok, err := s.cache.GetSummary(ctx, filter); err == nil && ok {
		return summaries, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("cache get summary failed")
	}

	summaries, err := s.health.Summary(ctx, filter)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetSummary(ctx, filter, summaries); err != nil {
		log.Warn().Err(err).Msg("cache set summary failed")
	}

	return summaries, nil
}

func (s *InventoryService) LocationSummaries(ctx context.Context) ([]domain.LocationSummary, error) {
	return s.health.LocationSummaries(ctx)
}

// Overview aggregates the dashboard headline numbers, cached between
// pipeline runs.
func (s *InventoryService) Overview(ctx context.Context) (*domain.Overview, error) {
	if overview, ok, err := s.cache.GetOverview(ctx); err == nil && ok {
		return overview, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("cache get overview failed")
	}

	summary, err := s.health.Summary(ctx, domain.InventoryFilter{})
	if err != nil {
		return nil, err
	}

	locations, err := s.health.LocationSummaries(ctx)
	if err != nil {
		return nil, err
	}

	openAlerts, err := s.alerts.OpenAlerts(ctx)
	if err != nil {
		return nil, err
	}

	highRisk, err := s.forecasts.CountByRisk(ctx, domain.RiskHigh)
	if err != nil {
		return nil, err
	}

	pending, err := s.reorders.PendingCount(ctx)
	if err != nil {
		return nil, err
	}

	overview := &domain.Overview{
		Summary:        summary,
		Locations:      locations,
		OpenAlerts:     len(openAlerts),
		HighRiskItems:  highRisk,
		PendingReorder: pending,
	}

	if err := s.cache.SetOverview(ctx, overview); err != nil {
		log.Warn().Err(err).Msg("cache set overview failed")
	}

	return overview, nil
}

func (s *InventoryService) Alerts(ctx context.Context, includeResolved bool, limit int) ([]domain.Alert, error) {
	return s.alerts.List(ctx, includeResolved, limit)
}

func (s *InventoryService) OpenAlerts(ctx context.Context) ([]domain.Alert, error) {
	return s.alerts.OpenAlerts(ctx)
}

func (s *InventoryService) Forecasts(ctx context.Context, filter domain.InventoryFilter) ([]domain.ForecastPrediction, error) {
	return s.forecasts.List(ctx, filter)
}

func (s *InventoryService) PendingReorders(ctx context.Context) ([]domain.ReorderRecommendation, error) {
	return s.reorders.Pending(ctx)
}

// UpdateReorderStatus transitions one recommendation through its lifecycle.
func (s *InventoryService) UpdateReorderStatus(ctx context.Context, id int64, status string) error {
	normalized := strings.ToUpper(strings.TrimSpace(status))
	switch normalized {
	case domain.RecommendationPending, domain.RecommendationOrdered,
		domain.RecommendationDelivered, domain.RecommendationCancelled:
	default:
		return fmt.Errorf("invalid recommendation status: %s", status)
	}

	if err := s.reorders.UpdateStatus(ctx, id, normalized); err != nil {
		return err
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("cache invalidation failed")
	}

	return nil
}

func (s *InventoryService) RecentAnomalies(ctx context.Context, since time.Time, limit int) ([]domain.AnomalyRecord, error) {
	return s.anomalies.Recent(ctx, since, limit)
}
