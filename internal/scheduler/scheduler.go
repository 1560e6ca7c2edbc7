package scheduler

import (
	"context"
	"time"

	"github.com/invensight/invensight/internal/config"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Refresher runs the derived-data passes. Satisfied by service.RefreshService.
type Refresher interface {
	RefreshHealth(ctx context.Context) error
	RefreshAlerts(ctx context.Context) error
	RefreshAnomalies(ctx context.Context) error
	RefreshForecasts(ctx context.Context) error
	RefreshReorders(ctx context.Context) error
}

const (
	defaultAlertInterval    = 5 * time.Minute
	defaultHealthInterval   = 10 * time.Minute
	defaultAnomalyInterval  = 15 * time.Minute
	defaultReorderInterval  = 15 * time.Minute
	defaultForecastInterval = 30 * time.Minute
)

// Scheduler drives the refresh passes on their cadences and reacts to
// snapshot ingests between ticks. Change notifications are coalesced: any
// number of ingests while a pass is running collapse into one follow-up run.
type Scheduler struct {
	refresher Refresher
	cfg       config.PipelineConfig
	changes   chan struct{}
}

func New(refresher Refresher, cfg config.PipelineConfig) *Scheduler {
	return &Scheduler{
		refresher: refresher,
		cfg:       cfg,
		changes:   make(chan struct{}, 1),
	}
}

// NotifyChange requests an out-of-cadence health and alert pass. Never blocks.
func (s *Scheduler) NotifyChange() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

// Run blocks until the context is cancelled. Pass failures are logged and the
// cadence keeps going; only context cancellation stops the scheduler.
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.runEvery(ctx, "health", orDefault(s.cfg.HealthInterval, defaultHealthInterval), s.refresher.RefreshHealth)
	})
	g.Go(func() error {
		return s.runEvery(ctx, "alerts", orDefault(s.cfg.AlertInterval, defaultAlertInterval), s.refresher.RefreshAlerts)
	})
	g.Go(func() error {
		return s.runEvery(ctx, "anomalies", orDefault(s.cfg.AnomalyInterval, defaultAnomalyInterval), s.refresher.RefreshAnomalies)
	})
	g.Go(func() error {
		return s.runEvery(ctx, "reorders", orDefault(s.cfg.ReorderInterval, defaultReorderInterval), s.refresher.RefreshReorders)
	})
	g.Go(func() error {
		return s.runEvery(ctx, "forecasts", orDefault(s.cfg.ForecastInterval, defaultForecastInterval), s.refresher.RefreshForecasts)
	})
	g.Go(func() error {
		return s.watchChanges(ctx)
	})

	return g.Wait()
}

func (s *Scheduler) runEvery(ctx context.Context, name string, interval time.Duration, pass func(context.Context) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := pass(ctx); err != nil {
				log.Error().Err(err).Str("pass", name).Msg("scheduled refresh failed")
			}
		}
	}
}

// watchChanges runs a health and alert pass whenever an ingest lands, so a
// snapshot that degrades a key raises its alert without waiting for the next
// tick.
func (s *Scheduler) watchChanges(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.changes:
			if err := s.refresher.RefreshHealth(ctx); err != nil {
				log.Error().Err(err).Msg("change-triggered health refresh failed")
				continue
			}
			if err := s.refresher.RefreshAlerts(ctx); err != nil {
				log.Error().Err(err).Msg("change-triggered alert refresh failed")
			}
		}
	}
}

func orDefault(interval, fallback time.Duration) time.Duration {
	if interval <= 0 {
		return fallback
	}
	return interval
}
