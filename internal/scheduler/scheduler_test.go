package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/invensight/invensight/internal/config"
)

type countingRefresher struct {
	mu     sync.Mutex
	counts map[string]int
	fail   map[string]bool
}

func newCountingRefresher() *countingRefresher {
	return &countingRefresher{
		counts: make(map[string]int),
		fail:   make(map[string]bool),
	}
}

func (r *countingRefresher) bump(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[name]++
	if r.fail[name] {
		return errors.New("refresh failed")
	}
	return nil
}

func (r *countingRefresher) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[name]
}

func (r *countingRefresher) RefreshHealth(ctx context.Context) error    { return r.bump("health") }
func (r *countingRefresher) RefreshAlerts(ctx context.Context) error    { return r.bump("alerts") }
func (r *countingRefresher) RefreshAnomalies(ctx context.Context) error { return r.bump("anomalies") }
func (r *countingRefresher) RefreshForecasts(ctx context.Context) error { return r.bump("forecasts") }
func (r *countingRefresher) RefreshReorders(ctx context.Context) error  { return r.bump("reorders") }

func shortConfig() config.PipelineConfig {
	return config.PipelineConfig{
		AlertInterval:    5 * time.Millisecond,
		HealthInterval:   5 * time.Millisecond,
		AnomalyInterval:  5 * time.Millisecond,
		ReorderInterval:  5 * time.Millisecond,
		ForecastInterval: 5 * time.Millisecond,
	}
}

func TestRunTicksEveryPass(t *testing.T) {
	refresher := newCountingRefresher()
	s := New(refresher, shortConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := s.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run returned %v, want deadline exceeded", err)
	}

	for _, pass := range []string{"health", "alerts", "anomalies", "forecasts", "reorders"} {
		if refresher.count(pass) == 0 {
			t.Errorf("pass %s never ran", pass)
		}
	}
}

func TestPassFailureKeepsCadence(t *testing.T) {
	refresher := newCountingRefresher()
	refresher.fail["alerts"] = true
	s := New(refresher, shortConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	if refresher.count("alerts") < 2 {
		t.Errorf("failing pass ran %d times, want at least 2", refresher.count("alerts"))
	}
}

func TestNotifyChangeTriggersHealthAndAlerts(t *testing.T) {
	refresher := newCountingRefresher()
	// Long cadences so only the change channel can trigger runs.
	cfg := config.PipelineConfig{
		AlertInterval:    time.Hour,
		HealthInterval:   time.Hour,
		AnomalyInterval:  time.Hour,
		ReorderInterval:  time.Hour,
		ForecastInterval: time.Hour,
	}
	s := New(refresher, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	go s.Run(ctx)
	time.Sleep(10 * time.Millisecond)
	s.NotifyChange()
	<-ctx.Done()

	if refresher.count("health") != 1 || refresher.count("alerts") != 1 {
		t.Errorf("change trigger ran health=%d alerts=%d, want 1 each",
			refresher.count("health"), refresher.count("alerts"))
	}
}

func TestNotifyChangeNeverBlocks(t *testing.T) {
	s := New(newCountingRefresher(), shortConfig())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			s.NotifyChange()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("NotifyChange blocked")
	}
}
