package middleware

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"go-inventory-mt/internal/metrics"
)

// Metrics records request count and latency per route pattern.
func Metrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
		m.ObserveRequest(c.Method(), c.Route().Path, strconv.Itoa(status), start)
		return err
	}
}
