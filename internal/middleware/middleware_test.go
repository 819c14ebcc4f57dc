package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-inventory-mt/internal/metrics"
)

func TestRequestIDReusesClientHeader(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID(zap.NewNop()))
	app.Get("/", func(c *fiber.Ctx) error {
		assert.NotNil(t, LoggerFrom(c))
		return c.SendString(c.Locals(requestIDKey).(string))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Len(t, resp.Header.Get(RequestIDHeader), 36)
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	m := metrics.New("test", prometheus.NewRegistry())
	app := fiber.New()
	app.Use(Metrics(m))
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	for _, id := range []string{"1", "2"} {
		_, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/"+id, nil), -1)
		require.NoError(t, err)
	}

	var out dto.Metric
	require.NoError(t, m.HttpRequestsTotal.WithLabelValues("GET", "/items/:id", "204").Write(&out))
	assert.Equal(t, 2.0, out.GetCounter().GetValue())
}

func TestRequireAuthRejectsMalformedHeader(t *testing.T) {
	app := fiber.New()
	app.Use(RequireAuth(nil))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Token abc")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
