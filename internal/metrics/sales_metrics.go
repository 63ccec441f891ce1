package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SalesMetrics содержит метрики движка обработки продаж.
type SalesMetrics struct {
	// Счётчики операций
	ordersCommitted prometheus.Counter
	ordersRejected  *prometheus.CounterVec
	ordersCancelled prometheus.Counter

	// Гистограмма времени сборки заказа
	commitDuration prometheus.Histogram

	// Счётчики событий и компенсаций
	outboxEvents      prometheus.Counter
	stockShortages    prometheus.Counter
	reserveRollbacks  prometheus.Counter
}

// NewSalesMetrics создаёт новый экземпляр метрик продаж.
func NewSalesMetrics() *SalesMetrics {
	return newSalesMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newSalesMetricsWithRegisterer(registerer prometheus.Registerer) *SalesMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &SalesMetrics{
		ordersCommitted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "vendify_orders_committed_total",
			Help: "Total number of orders committed",
		}),
		ordersRejected: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "vendify_orders_rejected_total",
			Help: "Total number of rejected order requests by reason",
		}, []string{"reason"}),
		ordersCancelled: registerCounter(registerer, prometheus.CounterOpts{
			Name: "vendify_orders_cancelled_total",
			Help: "Total number of orders cancelled",
		}),
		commitDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "vendify_order_commit_duration_seconds",
			Help:    "Duration of order assembly and commit in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "vendify_outbox_events_total",
			Help: "Total number of outbox events enqueued",
		}),
		stockShortages: registerCounter(registerer, prometheus.CounterOpts{
			Name: "vendify_stock_shortages_total",
			Help: "Total number of reservations rejected for insufficient stock",
		}),
		reserveRollbacks: registerCounter(registerer, prometheus.CounterOpts{
			Name: "vendify_reserve_rollbacks_total",
			Help: "Total number of compensating stock releases after a failed commit",
		}),
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

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderCommitted увеличивает счётчик зафиксированных заказов.
func (m *SalesMetrics) RecordOrderCommitted() {
	m.ordersCommitted.Inc()
}

// RecordOrderRejected увеличивает счётчик отклонённых запросов по причине.
func (m *SalesMetrics) RecordOrderRejected(reason string) {
	m.ordersRejected.WithLabelValues(reason).Inc()
}

// RecordOrderCancelled увеличивает счётчик отменённых заказов.
func (m *SalesMetrics) RecordOrderCancelled() {
	m.ordersCancelled.Inc()
}

// RecordCommitDuration записывает время сборки и фиксации заказа.
func (m *SalesMetrics) RecordCommitDuration(duration time.Duration) {
	m.commitDuration.Observe(duration.Seconds())
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *SalesMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}

// RecordStockShortage увеличивает счётчик отказов по нехватке остатка.
func (m *SalesMetrics) RecordStockShortage() {
	m.stockShortages.Inc()
}

// RecordReserveRollback увеличивает счётчик компенсирующих возвратов резерва.
func (m *SalesMetrics) RecordReserveRollback() {
	m.reserveRollbacks.Inc()
}
