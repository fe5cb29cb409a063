package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func mustGather(t *testing.T, registry *prometheus.Registry) []*dto.MetricFamily {
	t.Helper()

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	return families
}

func counterValue(families []*dto.MetricFamily, name string) float64 {
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		var sum float64
		for _, metric := range family.GetMetric() {
			sum += metric.GetCounter().GetValue()
		}
		return sum
	}
	return 0
}

func labeledCounterValue(families []*dto.MetricFamily, name, label, value string) float64 {
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if pair.GetName() == label && pair.GetValue() == value {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestOrderMetricsCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewOrderMetricsWithRegisterer(registry)

	m.RecordCreated()
	m.RecordCreated()
	m.RecordRateLimited()
	m.RecordStatusChange("confirmed")
	m.RecordBulkOperation("cancel", 3)

	families := mustGather(t, registry)

	if got := counterValue(families, "storefront_orders_created_total"); got != 2 {
		t.Fatalf("expected 2 created, got %v", got)
	}
	if got := counterValue(families, "storefront_orders_rate_limited_total"); got != 1 {
		t.Fatalf("expected 1 rate limited, got %v", got)
	}
	if got := labeledCounterValue(families, "storefront_order_status_changes_total", "status", "confirmed"); got != 1 {
		t.Fatalf("expected 1 confirmed transition, got %v", got)
	}
	if got := labeledCounterValue(families, "storefront_order_bulk_modified_total", "operation", "cancel"); got != 3 {
		t.Fatalf("expected 3 bulk-cancelled orders, got %v", got)
	}
}

func TestOrderMetricsReregistration(t *testing.T) {
	registry := prometheus.NewRegistry()

	first := NewOrderMetricsWithRegisterer(registry)
	second := NewOrderMetricsWithRegisterer(registry)

	first.RecordCreated()
	second.RecordCreated()

	// Повторная регистрация переиспользует существующие коллекторы.
	families := mustGather(t, registry)
	if got := counterValue(families, "storefront_orders_created_total"); got != 2 {
		t.Fatalf("expected shared counter value 2, got %v", got)
	}
}
