package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes the tax workflow instruments. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	submissions   metric.Int64Counter
	decisions     metric.Int64Counter
	settlements   metric.Int64Counter
	taxRemitted   metric.Float64Counter
	itemsRemitted metric.Int64Counter
	rateChanges   metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(15*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return provider.Shutdown(ctx)
			},
		})
	}

	log.Info("metrics initialized",
		zap.String("endpoint", cfg.ExporterEndpoint),
		zap.String("protocol", cfg.ExporterProtocol),
	)

	return provider, nil
}

// New registers the domain instruments on provider.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "civitas"
	}
	meter := provider.Meter(name)

	submissions, err := meter.Int64Counter("civitas_sales_submitted_total",
		metric.WithDescription("Sales and contracts submitted for approval."))
	if err != nil {
		return nil, err
	}
	decisions, err := meter.Int64Counter("civitas_records_decided_total",
		metric.WithDescription("Pending records approved or rejected."))
	if err != nil {
		return nil, err
	}
	settlements, err := meter.Int64Counter("civitas_settlements_total",
		metric.WithDescription("Tax settlement attempts by result."))
	if err != nil {
		return nil, err
	}
	taxRemitted, err := meter.Float64Counter("civitas_tax_remitted",
		metric.WithDescription("Country tax remitted through settlements."))
	if err != nil {
		return nil, err
	}
	itemsRemitted, err := meter.Int64Counter("civitas_items_remitted_total",
		metric.WithDescription("Records flagged as country tax paid."))
	if err != nil {
		return nil, err
	}
	rateChanges, err := meter.Int64Counter("civitas_country_rate_changes_total",
		metric.WithDescription("Country tax rate updates."))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		submissions:   submissions,
		decisions:     decisions,
		settlements:   settlements,
		taxRemitted:   taxRemitted,
		itemsRemitted: itemsRemitted,
		rateChanges:   rateChanges,
	}, nil
}

func (m *Metrics) RecordSubmission(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.submissions.Add(ctx, 1, metric.WithAttributes(FilterAttributes(attribute.String("kind", kind))...))
}

func (m *Metrics) RecordDecision(ctx context.Context, kind, decision string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("kind", kind),
		attribute.String("decision", decision),
	)
	m.decisions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSettlement counts one settlement call; amount and items are only
// added when the settlement succeeded.
func (m *Metrics) RecordSettlement(ctx context.Context, result string, amount float64, items int) {
	if m == nil {
		return
	}
	m.settlements.Add(ctx, 1, metric.WithAttributes(FilterAttributes(attribute.String("result", result))...))
	if amount > 0 {
		m.taxRemitted.Add(ctx, amount)
	}
	if items > 0 {
		m.itemsRemitted.Add(ctx, int64(items))
	}
}

func (m *Metrics) RecordRateChange(ctx context.Context) {
	if m == nil {
		return
	}
	m.rateChanges.Add(ctx, 1)
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

// guild and actor ids are deliberately absent: one series per guild would
// explode cardinality on large communities.
var allowedLabelKeys = map[attribute.Key]struct{}{
	"kind":     {},
	"decision": {},
	"result":   {},
	"job":      {},
	"reason":   {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
