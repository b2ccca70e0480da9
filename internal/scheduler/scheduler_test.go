package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/smallbiznis/civitas/internal/clock"
	"github.com/smallbiznis/civitas/internal/observability/metrics"
	taxdomain "github.com/smallbiznis/civitas/internal/taxes/domain"
	"go.uber.org/zap"
)

// fakeTaxes implements the reminder entry point only.
type fakeTaxes struct {
	taxdomain.Service
	calls    []time.Time
	notified int
	err      error
	block    bool
}

func (f *fakeTaxes) RunReminders(ctx context.Context, now time.Time) (int, error) {
	f.calls = append(f.calls, now)
	if f.block {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	return f.notified, f.err
}

var _ taxdomain.Service = (*fakeTaxes)(nil)

func newScheduler(t *testing.T, taxes *fakeTaxes, cfg Config) (*Scheduler, *prometheus.Registry) {
	t.Helper()
	registry := prometheus.NewRegistry()
	m, err := metrics.NewReminderMetrics(registry, metrics.Config{ServiceName: "civitas", Environment: "test"})
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	s, err := New(Params{
		Log:     zap.NewNop(),
		Clock:   clock.NewFakeClock(time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)),
		TaxSvc:  taxes,
		Metrics: m,
		Config:  cfg,
	})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return s, registry
}

func TestRunRemindersRecordsSuccess(t *testing.T) {
	taxes := &fakeTaxes{notified: 2}
	s, registry := newScheduler(t, taxes, Config{})

	if err := s.RunReminders(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(taxes.calls) != 1 || !taxes.calls[0].Equal(time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected one call at the clock time, got %v", taxes.calls)
	}
	labels := map[string]string{"service": "civitas", "env": "test"}
	if got := getCounterValue(t, registry, "civitas_reminder_runs_total", labels); got != 1 {
		t.Fatalf("expected 1 run, got %v", got)
	}
	if got := getCounterValue(t, registry, "civitas_reminder_guilds_notified_total", labels); got != 2 {
		t.Fatalf("expected 2 guilds notified, got %v", got)
	}
}

func TestRunRemindersTimeout(t *testing.T) {
	taxes := &fakeTaxes{block: true}
	s, registry := newScheduler(t, taxes, Config{JobTimeout: 5 * time.Millisecond})

	err := s.RunReminders(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	labels := map[string]string{"service": "civitas", "env": "test", "reason": "timeout"}
	if got := getCounterValue(t, registry, "civitas_reminder_failures_total", labels); got != 1 {
		t.Fatalf("expected 1 timeout, got %v", got)
	}
}

func TestRunRemindersError(t *testing.T) {
	boom := errors.New("boom")
	taxes := &fakeTaxes{err: boom}
	s, registry := newScheduler(t, taxes, Config{})

	if err := s.RunReminders(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	labels := map[string]string{"service": "civitas", "env": "test", "reason": "error"}
	if got := getCounterValue(t, registry, "civitas_reminder_failures_total", labels); got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}
}

func TestNewRejectsBadSpec(t *testing.T) {
	_, err := New(Params{
		Log:    zap.NewNop(),
		Clock:  clock.NewSystemClock(),
		TaxSvc: &fakeTaxes{},
		Config: Config{ReminderSpec: "every hour"},
	})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected invalid config, got %v", err)
	}

	if _, err := New(Params{Log: zap.NewNop()}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected invalid config, got %v", err)
	}
}

func TestStartStop(t *testing.T) {
	s, _ := newScheduler(t, &fakeTaxes{}, Config{})
	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func getCounterValue(t *testing.T, registry *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metricFamilies {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.Metric {
			if !labelsMatch(metric, labels) {
				continue
			}
			if metric.Counter == nil {
				t.Fatalf("metric %s is not a counter", name)
			}
			return metric.GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, labels)
	return 0
}

func labelsMatch(metric *dto.Metric, labels map[string]string) bool {
	if len(metric.Label) != len(labels) {
		return false
	}
	for _, label := range metric.Label {
		if labels[label.GetName()] != label.GetValue() {
			return false
		}
	}
	return true
}
