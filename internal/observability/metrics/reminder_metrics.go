package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReminderMetrics tracks the periodic tax reminder job. These are pulled by
// Prometheus from /metrics rather than pushed over OTLP.
type ReminderMetrics struct {
	runs           prometheus.Counter
	failures       *prometheus.CounterVec
	guildsNotified prometheus.Counter
	duration       prometheus.Histogram
	lastSuccess    prometheus.Gauge
}

// NewReminderMetrics registers the reminder collectors on registerer. A nil
// registerer uses the Prometheus default registry.
func NewReminderMetrics(registerer prometheus.Registerer, cfg Config) (*ReminderMetrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "civitas"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{"service": serviceName, "env": environment}

	m := &ReminderMetrics{
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "civitas_reminder_runs_total",
			Help:        "Tax reminder job runs.",
			ConstLabels: constLabels,
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "civitas_reminder_failures_total",
			Help:        "Tax reminder job failures by reason.",
			ConstLabels: constLabels,
		}, []string{"reason"}),
		guildsNotified: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "civitas_reminder_guilds_notified_total",
			Help:        "Guilds that received a tax reminder.",
			ConstLabels: constLabels,
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "civitas_reminder_duration_seconds",
			Help:        "Tax reminder job latency.",
			Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			ConstLabels: constLabels,
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "civitas_reminder_last_success_timestamp_seconds",
			Help:        "Unix time of the last successful reminder run.",
			ConstLabels: constLabels,
		}),
	}

	for _, c := range []prometheus.Collector{m.runs, m.failures, m.guildsNotified, m.duration, m.lastSuccess} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveRun records one job run. reason is empty on success.
func (m *ReminderMetrics) ObserveRun(started time.Time, notified int, reason string) {
	if m == nil {
		return
	}
	m.runs.Inc()
	m.duration.Observe(time.Since(started).Seconds())
	if notified > 0 {
		m.guildsNotified.Add(float64(notified))
	}
	if reason != "" {
		m.failures.WithLabelValues(reason).Inc()
		return
	}
	m.lastSuccess.SetToCurrentTime()
}
