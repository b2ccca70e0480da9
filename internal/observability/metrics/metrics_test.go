package metrics

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("guild_id", "123"),
		attribute.String("decision", "approve"),
		attribute.String("kind", "sale"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	for _, attr := range attrs {
		if attr.Key == "guild_id" {
			t.Fatalf("guild_id must be dropped")
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordSubmission(context.Background(), "sale")
	m.RecordDecision(context.Background(), "sale", "approve")
	m.RecordSettlement(context.Background(), "ok", 10, 2)
	m.RecordRateChange(context.Background())
}

func TestRecordSettlement(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := New(Config{ServiceName: "civitas-test"}, provider)
	if err != nil {
		t.Fatalf("new metrics: %v", err)
	}

	m.RecordSettlement(context.Background(), "ok", 10.5, 2)
	m.RecordSettlement(context.Background(), "insufficient_payment", 0, 0)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	found := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			found[md.Name] = true
			if md.Name == "civitas_tax_remitted" {
				sum, ok := md.Data.(metricdata.Sum[float64])
				if !ok || len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 10.5 {
					t.Fatalf("unexpected remitted data: %#v", md.Data)
				}
			}
			if md.Name == "civitas_settlements_total" {
				sum, ok := md.Data.(metricdata.Sum[int64])
				if !ok || len(sum.DataPoints) != 2 {
					t.Fatalf("expected one series per result, got %#v", md.Data)
				}
			}
		}
	}
	if !found["civitas_settlements_total"] || !found["civitas_items_remitted_total"] {
		t.Fatalf("expected settlement metrics, got %v", found)
	}
}
