package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec
	AuthAttempts        *prometheus.CounterVec
	StockMovements      *prometheus.CounterVec
	LedgerOperations    *prometheus.CounterVec
}

// New registers every collector on reg under prefix.
func New(prefix string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HttpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HttpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		AuthAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_auth_attempts_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
		StockMovements: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_stock_movement_units_total",
				Help: "Units of stock moved by ledger and direction",
			},
			[]string{"ledger", "direction"},
		),
		LedgerOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_ledger_operations_total",
				Help: "Ledger mutations by ledger and operation",
			},
			[]string{"ledger", "operation"},
		),
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, path, status string, started time.Time) {
	if m == nil {
		return
	}
	m.HttpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HttpRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(started).Seconds())
}

// RecordAuth counts a login attempt. result is "success", "failure" or "inactive".
func (m *Metrics) RecordAuth(result string) {
	if m == nil {
		return
	}
	m.AuthAttempts.WithLabelValues(result).Inc()
}

// RecordStock counts units moved. Positive delta is "in", negative "out".
func (m *Metrics) RecordStock(ledger string, delta int) {
	if m == nil || delta == 0 {
		return
	}
	direction := "in"
	if delta < 0 {
		direction = "out"
		delta = -delta
	}
	m.StockMovements.WithLabelValues(ledger, direction).Add(float64(delta))
}

func (m *Metrics) RecordLedger(ledger, operation string) {
	if m == nil {
		return
	}
	m.LedgerOperations.WithLabelValues(ledger, operation).Inc()
}
