package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestRecordStock(t *testing.T) {
	m := New("test", prometheus.NewRegistry())

	m.RecordStock("sale", -3)
	m.RecordStock("purchase", 10)
	m.RecordStock("purchase", 0)

	assert.Equal(t, 3.0, counterValue(t, m.StockMovements.WithLabelValues("sale", "out")))
	assert.Equal(t, 10.0, counterValue(t, m.StockMovements.WithLabelValues("purchase", "in")))
}

func TestObserveRequestAndAuth(t *testing.T) {
	m := New("test", prometheus.NewRegistry())
	m.ObserveRequest("GET", "/api/v1/products", "200", time.Now())
	m.RecordAuth("success")

	assert.Equal(t, 1.0, counterValue(t, m.HttpRequestsTotal.WithLabelValues("GET", "/api/v1/products", "200")))
	assert.Equal(t, 1.0, counterValue(t, m.AuthAttempts.WithLabelValues("success")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordStock("sale", 1)
		m.RecordAuth("failure")
		m.RecordLedger("sale", "create")
		m.ObserveRequest("GET", "/", "200", time.Now())
	})
}
