package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-inventory-mt/internal/apperr"
	"go-inventory-mt/internal/authz"
	"go-inventory-mt/internal/middleware"
	"go-inventory-mt/internal/repository"
)

// StatusFor maps an error kind to the HTTP status it is reported with.
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.ErrValidation, apperr.ErrInsufficientStock:
		return fiber.StatusBadRequest
	case apperr.ErrUnauthenticated:
		return fiber.StatusUnauthorized
	case apperr.ErrPermissionDenied:
		return fiber.StatusForbidden
	case apperr.ErrNotFound:
		return fiber.StatusNotFound
	case apperr.ErrDuplicateKey, apperr.ErrHasDependents:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// fail writes err as {"error": message}. Storage failures are logged and
// reported without their cause.
func fail(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		var cause error = err
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Err != nil {
			cause = appErr.Err
		}
		middleware.LoggerFrom(c).Error("request failed", zap.Error(cause))
		message = "internal server error"
	}
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

func invalidJSON(c *fiber.Ctx) error {
	return badRequest(c, "invalid JSON")
}

func caller(c *fiber.Ctx) *authz.Caller {
	return middleware.CallerFrom(c)
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid %s", name)
	}
	return id, nil
}

// queryID parses an optional uuid query parameter.
func queryID(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.Validation("invalid %s", name)
	}
	return &id, nil
}

// queryTime accepts RFC 3339 timestamps or plain dates.
func queryTime(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperr.Validation("invalid %s: use YYYY-MM-DD or RFC 3339", name)
}

func queryPage(c *fiber.Ctx) repository.Page {
	return repository.Page{
		Skip:  c.QueryInt("skip", 0),
		Limit: c.QueryInt("limit", repository.DefaultLimit),
	}
}
