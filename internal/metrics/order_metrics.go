package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит счётчики заказной подсистемы.
type OrderMetrics struct {
	ordersCreated     prometheus.Counter
	ordersRateLimited prometheus.Counter
	statusChanges     *prometheus.CounterVec
	bulkOperations    *prometheus.CounterVec
	bulkModified      *prometheus.CounterVec
}

// NewOrderMetrics создаёт и регистрирует метрики в default registerer.
func NewOrderMetrics() *OrderMetrics {
	return NewOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewOrderMetricsWithRegisterer создаёт метрики с явным registerer (для тестов).
func NewOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_created_total",
			Help: "Total number of orders accepted and persisted",
		}),
		ordersRateLimited: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_rate_limited_total",
			Help: "Total number of order submissions rejected by the rate limiter",
		}),
		statusChanges: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_order_status_changes_total",
			Help: "Total number of single-order status transitions grouped by target status",
		}, []string{"status"}),
		bulkOperations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_order_bulk_operations_total",
			Help: "Total number of bulk order operations grouped by operation",
		}, []string{"operation"}),
		bulkModified: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_order_bulk_modified_total",
			Help: "Total number of orders modified by bulk operations grouped by operation",
		}, []string{"operation"}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordCreated увеличивает счётчик принятых заказов.
func (m *OrderMetrics) RecordCreated() {
	m.ordersCreated.Inc()
}

// RecordRateLimited увеличивает счётчик заблокированных отправок.
func (m *OrderMetrics) RecordRateLimited() {
	m.ordersRateLimited.Inc()
}

// RecordStatusChange учитывает одиночный переход в целевой статус.
func (m *OrderMetrics) RecordStatusChange(status string) {
	m.statusChanges.WithLabelValues(status).Inc()
}

// RecordBulkOperation учитывает массовую операцию и число затронутых заказов.
func (m *OrderMetrics) RecordBulkOperation(operation string, modified int64) {
	m.bulkOperations.WithLabelValues(operation).Inc()
	m.bulkModified.WithLabelValues(operation).Add(float64(modified))
}
