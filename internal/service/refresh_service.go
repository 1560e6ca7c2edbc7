package service

import (
	"context"
	"fmt"
	"time"

	"github.com/invensight/invensight/internal/cache"
	"github.com/invensight/invensight/internal/config"
	"github.com/invensight/invensight/internal/domain"
	"github.com/invensight/invensight/internal/engine"
	"github.com/invensight/invensight/internal/repository"
	"github.com/rs/zerolog/log"
)

// Refresh components addressable by name.
const (
	ComponentHealth    = "health"
	ComponentAlerts    = "alerts"
	ComponentAnomalies = "anomalies"
	ComponentForecasts = "forecasts"
	ComponentReorders  = "reorders"
)

// RefreshService recomputes derived data from the latest inventory facts.
// Every pass is idempotent: re-running against unchanged facts produces no
// new rows and no state transitions. A failure on one key is logged and never
// aborts the pass for the remaining keys.
type RefreshService struct {
	snapshots repository.SnapshotRepository
	health    repository.HealthRepository
	alerts    repository.AlertRepository
	forecasts repository.ForecastRepository
	reorders  repository.ReorderRepository
	anomalies repository.AnomalyRepository
	cache     cache.OverviewCache
	cfg       config.PipelineConfig

	classifier *engine.HealthClassifier
	detector   *engine.AnomalyDetector
	forecaster *engine.Forecaster
	calculator *engine.ReorderCalculator

	now func() time.Time
}

func NewRefreshService(
	snapshots repository.SnapshotRepository,
	health repository.HealthRepository,
	alerts repository.AlertRepository,
	forecasts repository.ForecastRepository,
	reorders repository.ReorderRepository,
	anomalies repository.AnomalyRepository,
	cacheImpl cache.OverviewCache,
	cfg config.PipelineConfig,
) *RefreshService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopOverviewCache()
	}
	return &RefreshService{
		snapshots:  snapshots,
		health:     health,
		alerts:     alerts,
		forecasts:  forecasts,
		reorders:   reorders,
		anomalies:  anomalies,
		cache:      cacheImpl,
		cfg:        cfg,
		classifier: engine.NewHealthClassifier(cfg.GoodPercentThreshold),
		detector:   engine.NewAnomalyDetector(cfg.AnomalyWindowSize),
		forecaster: engine.NewForecaster(cfg.ForecastHorizonDays),
		calculator: engine.NewReorderCalculator(cfg.OrderingCost, cfg.HoldingCostRate),
		now:        time.Now,
	}
}

// Refresh runs one named component pass.
func (s *RefreshService) Refresh(ctx context.Context, component string) error {
	switch component {
	case ComponentHealth:
		return s.RefreshHealth(ctx)
	case ComponentAlerts:
		return s.RefreshAlerts(ctx)
	case ComponentAnomalies:
		return s.RefreshAnomalies(ctx)
	case ComponentForecasts:
		return s.RefreshForecasts(ctx)
	case ComponentReorders:
		return s.RefreshReorders(ctx)
	default:
		return fmt.Errorf("unknown refresh component: %s", component)
	}
}

// RefreshAll runs every pass in dependency order: health first, since the
// alert pass reads health records.
func (s *RefreshService) RefreshAll(ctx context.Context) error {
	passes := []struct {
		name string
		run  func(context.Context) error
	}{
		{ComponentHealth, s.RefreshHealth},
		{ComponentAlerts, s.RefreshAlerts},
		{ComponentAnomalies, s.RefreshAnomalies},
		{ComponentForecasts, s.RefreshForecasts},
		{ComponentReorders, s.RefreshReorders},
	}

	for _, pass := range passes {
		if err := pass.run(ctx); err != nil {
			return fmt.Errorf("refresh %s: %w", pass.name, err)
		}
	}

	return nil
}

// RefreshHealth classifies the latest fact of every key and upserts the
// resulting health records.
func (s *RefreshService) RefreshHealth(ctx context.Context) error {
	started := s.now()

	facts, err := s.snapshots.LatestFacts(ctx)
	if err != nil {
		return fmt.Errorf("refresh health: %w", err)
	}

	records := make([]domain.HealthRecord, 0, len(facts))
	for _, fact := range facts {
		records = append(records, s.classifier.Classify(fact, started))
	}

	if err := s.health.UpsertRecords(ctx, records); err != nil {
		return fmt.Errorf("refresh health: %w", err)
	}

	s.invalidateCache(ctx)
	log.Info().
		Int("keys", len(records)).
		Dur("took", s.now().Sub(started)).
		Msg("health refresh complete")

	return nil
}

// RefreshAlerts walks every health record and applies the alert lifecycle:
// degraded keys open alerts (deduplicated by the repository), healthy keys
// resolve them, and resolved alerts past retention are archived.
func (s *RefreshService) RefreshAlerts(ctx context.Context) error {
	started := s.now()

	records, err := s.health.All(ctx)
	if err != nil {
		return fmt.Errorf("refresh alerts: %w", err)
	}

	facts, err := s.snapshots.LatestFacts(ctx)
	if err != nil {
		return fmt.Errorf("refresh alerts: %w", err)
	}
	factByKey := make(map[domain.ItemKey]domain.InventoryFact, len(facts))
	for _, fact := range facts {
		factByKey[fact.Key()] = fact
	}

	opened, resolved := 0, 0
	for _, record := range records {
		key := domain.ItemKey{ItemID: record.ItemID, LocationID: record.LocationID}

		switch {
		case engine.ShouldOpenAlert(record):
			fact, ok := factByKey[key]
			if !ok {
				log.Warn().
					Str("item_id", key.ItemID).
					Str("location_id", key.LocationID).
					Msg("health record without a latest fact, skipping alert")
				continue
			}

			alert := engine.NewAlertFor(record, fact.SafetyStock, fact.ReorderPoint)
			alert.OpenedAt = started
			inserted, err := s.alerts.OpenIfAbsent(ctx, alert, s.cfg.AlertDedupWindow)
			if err != nil {
				log.Error().Err(err).
					Str("item_id", key.ItemID).
					Str("location_id", key.LocationID).
					Msg("could not open alert")
				continue
			}
			if inserted {
				opened++
			}

		case engine.ShouldResolveAlert(record):
			done, err := s.alerts.Resolve(ctx, key, started)
			if err != nil {
				log.Error().Err(err).
					Str("item_id", key.ItemID).
					Str("location_id", key.LocationID).
					Msg("could not resolve alert")
				continue
			}
			if done {
				resolved++
			}
		}
	}

	archived, err := s.alerts.ArchiveResolvedBefore(ctx, started.Add(-s.cfg.AlertRetention))
	if err != nil {
		log.Error().Err(err).Msg("could not archive resolved alerts")
	}

	s.invalidateCache(ctx)
	log.Info().
		Int("opened", opened).
		Int("resolved", resolved).
		Int64("archived", archived).
		Dur("took", s.now().Sub(started)).
		Msg("alert refresh complete")

	return nil
}

// RefreshAnomalies scores day-over-day quantity movements per key and upserts
// the flagged outliers.
func (s *RefreshService) RefreshAnomalies(ctx context.Context) error {
	started := s.now()

	history, err := s.snapshots.RecentHistory(ctx, s.historyLimit())
	if err != nil {
		return fmt.Errorf("refresh anomalies: %w", err)
	}

	flagged := 0
	for key, facts := range history {
		observations := make([]engine.Observation, 0, len(facts))
		for _, fact := range facts {
			observations = append(observations, engine.Observation{
				ObservedAt:     fact.ObservedAt,
				QuantityOnHand: fact.QuantityOnHand,
			})
		}

		records := s.detector.Detect(key.ItemID, key.LocationID, observations)
		if len(records) == 0 {
			continue
		}

		if err := s.anomalies.Upsert(ctx, records); err != nil {
			log.Error().Err(err).
				Str("item_id", key.ItemID).
				Str("location_id", key.LocationID).
				Msg("could not upsert anomalies")
			continue
		}
		flagged += len(records)
	}

	log.Info().
		Int("keys", len(history)).
		Int("flagged", flagged).
		Dur("took", s.now().Sub(started)).
		Msg("anomaly refresh complete")

	return nil
}

// RefreshForecasts projects near-term stock per key and replaces the full
// prediction set in one transaction.
func (s *RefreshService) RefreshForecasts(ctx context.Context) error {
	started := s.now()

	facts, err := s.snapshots.LatestFacts(ctx)
	if err != nil {
		return fmt.Errorf("refresh forecasts: %w", err)
	}

	history, err := s.snapshots.RecentHistory(ctx, s.historyLimit())
	if err != nil {
		return fmt.Errorf("refresh forecasts: %w", err)
	}

	predictions := make([]domain.ForecastPrediction, 0, len(facts))
	for _, fact := range facts {
		consumption := consumptionSeries(history[fact.Key()])
		if prediction, ok := s.forecaster.Forecast(fact, consumption, started); ok {
			predictions = append(predictions, prediction)
		}
	}

	if err := s.forecasts.ReplaceAll(ctx, predictions); err != nil {
		return fmt.Errorf("refresh forecasts: %w", err)
	}

	s.invalidateCache(ctx)
	log.Info().
		Int("keys", len(facts)).
		Int("predictions", len(predictions)).
		Dur("took", s.now().Sub(started)).
		Msg("forecast refresh complete")

	return nil
}

// RefreshReorders evaluates the latest fact of every key and creates pending
// recommendations, deduplicated by the repository.
func (s *RefreshService) RefreshReorders(ctx context.Context) error {
	started := s.now()

	facts, err := s.snapshots.LatestFacts(ctx)
	if err != nil {
		return fmt.Errorf("refresh reorders: %w", err)
	}

	created := 0
	for _, fact := range facts {
		rec, ok := s.calculator.Evaluate(fact, started)
		if !ok {
			continue
		}

		inserted, err := s.reorders.CreatePendingIfAbsent(ctx, rec, s.cfg.ReorderDedupWindow)
		if err != nil {
			log.Error().Err(err).
				Str("item_id", fact.ItemID).
				Str("location_id", fact.LocationID).
				Msg("could not create reorder recommendation")
			continue
		}
		if inserted {
			created++
		}
	}

	s.invalidateCache(ctx)
	log.Info().
		Int("keys", len(facts)).
		Int("created", created).
		Dur("took", s.now().Sub(started)).
		Msg("reorder refresh complete")

	return nil
}

func (s *RefreshService) historyLimit() int {
	limit := s.cfg.ForecastWindowSize
	if s.cfg.AnomalyWindowSize+1 > limit {
		limit = s.cfg.AnomalyWindowSize + 1
	}
	return limit
}

func (s *RefreshService) invalidateCache(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("cache invalidation failed")
	}
}

// consumptionSeries derives daily consumption from an on-hand history ordered
// oldest first. Consumption is the observed drawdown between consecutive
// observations, floored at zero so restocks do not read as negative demand.
func consumptionSeries(facts []domain.InventoryFact) []float64 {
	if len(facts) < 2 {
		return nil
	}

	series := make([]float64, 0, len(facts)-1)
	for i := 1; i < len(facts); i++ {
		delta := facts[i-1].QuantityOnHand - facts[i].QuantityOnHand
		if delta < 0 {
			delta = 0
		}
		series = append(series, delta)
	}

	return series
}
