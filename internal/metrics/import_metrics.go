package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ImportMetrics содержит метрики пакетного импорта заказов
type ImportMetrics struct {
	imported      prometheus.Counter
	rejected      prometheus.Counter
	violations    *prometheus.CounterVec
	batches       *prometheus.CounterVec
	batchDuration prometheus.Histogram
}

// NewImportMetrics регистрирует метрики импорта в registerer
// nil означает prometheus.DefaultRegisterer
func NewImportMetrics(registerer prometheus.Registerer) *ImportMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &ImportMetrics{
		imported: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oqs_import_records_imported_total",
			Help: "Total number of order records persisted by bulk import",
		})),
		rejected: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oqs_import_records_rejected_total",
			Help: "Total number of order records rejected by validation during bulk import",
		})),
		violations: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oqs_import_violations_total",
			Help: "Total number of validation violations found during bulk import",
		}, []string{"field"})),
		batches: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oqs_import_batches_total",
			Help: "Total number of bulk import batches by outcome",
		}, []string{"outcome"})),
		batchDuration: register(registerer, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "oqs_import_batch_duration_seconds",
			Help:    "Duration of bulk import batches in seconds",
			Buckets: prometheus.DefBuckets,
		})),
	}
}

// register регистрирует коллектор или возвращает уже зарегистрированный с тем же описанием
func register[T prometheus.Collector](registerer prometheus.Registerer, collector T) T {
	if err := registerer.Register(collector); err != nil {
		var alreadyRegistered prometheus.AlreadyRegisteredError
		if errors.As(err, &alreadyRegistered) {
			existing, ok := alreadyRegistered.ExistingCollector.(T)
			if !ok {
				panic(fmt.Sprintf("collector already registered with unexpected type %T", alreadyRegistered.ExistingCollector))
			}
			return existing
		}
		panic(fmt.Sprintf("register collector: %v", err))
	}
	return collector
}

// RecordImported увеличивает счётчик сохранённых записей
func (m *ImportMetrics) RecordImported() {
	m.imported.Inc()
}

// RecordRejected увеличивает счётчик отклонённых записей и нарушений по полям
func (m *ImportMetrics) RecordRejected(fields []string) {
	m.rejected.Inc()
	for _, field := range fields {
		m.violations.WithLabelValues(field).Inc()
	}
}

// RecordBatch фиксирует завершение пакета, outcome равен "completed" или "aborted"
func (m *ImportMetrics) RecordBatch(outcome string, duration time.Duration) {
	m.batches.WithLabelValues(outcome).Inc()
	m.batchDuration.Observe(duration.Seconds())
}
