package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-inventory-mt/internal/apperr"
	"go-inventory-mt/internal/authz"
	"go-inventory-mt/internal/model"
	"go-inventory-mt/internal/repository"
)

// PageResult is one window of a listing plus the size of the whole result.
type PageResult[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	Skip    int   `json:"skip"`
	Limit   int   `json:"limit"`
	HasMore bool  `json:"has_more"`
}

func newPageResult[T any](items []T, total int64, page repository.Page) *PageResult[T] {
	if items == nil {
		items = []T{}
	}
	return &PageResult[T]{
		Items:   items,
		Total:   total,
		Skip:    page.Skip,
		Limit:   page.Limit,
		HasMore: int64(page.Skip+len(items)) < total,
	}
}

// StockNotifier receives committed stock changes for one tenant.
type StockNotifier interface {
	Publish(companyID uuid.UUID, payload interface{})
}

// StockEvent is the payload published after every committed stock mutation.
type StockEvent struct {
	Type    string       `json:"type"`
	Action  string       `json:"action"`
	Product StockProduct `json:"product"`
	Delta   int          `json:"delta"`
	User    EventUser    `json:"user"`
	Message string       `json:"message"`
	At      time.Time    `json:"at"`
}

type StockProduct struct {
	ID           uuid.UUID `json:"id"`
	CompanyID    uuid.UUID `json:"company_id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	CurrentStock int       `json:"current_stock"`
}

type EventUser struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// SessionRevoker ends the live connections of an account whose tokens were
// invalidated.
type SessionRevoker interface {
	RevokeUser(userID uuid.UUID)
}

func revoke(r SessionRevoker, userID uuid.UUID) {
	if r != nil {
		r.RevokeUser(userID)
	}
}

// publisher sends stock events when a notifier is configured.
type publisher struct {
	notifier StockNotifier
}

func (p publisher) stockChanged(c *authz.Caller, action string, product *model.Product, delta int, message string) {
	if p.notifier == nil {
		return
	}
	ev := StockEvent{
		Type:   "stock_update",
		Action: action,
		Product: StockProduct{
			ID:           product.ID,
			CompanyID:    product.CompanyID,
			Code:         product.Code,
			Name:         product.Name,
			CurrentStock: product.CurrentStock,
		},
		Delta:   delta,
		Message: message,
		At:      time.Now().UTC(),
	}
	if c != nil {
		ev.User = EventUser{ID: c.UserID, Username: c.Username}
	}
	p.notifier.Publish(product.CompanyID, ev)
}

// storeErr maps a repository error onto the error taxonomy. entity names the
// row for NotFound and DuplicateKey messages.
func storeErr(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(entity)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Duplicate(entity)
	default:
		return apperr.Storage(err)
	}
}

// exists treats NotFound as false and any other failure as an error.
func exists(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return false, nil
	default:
		return false, apperr.Storage(err)
	}
}

func requireCaller(c *authz.Caller) error {
	if c == nil {
		return apperr.Unauthenticated("authentication required")
	}
	return nil
}

func actor(c *authz.Caller) zap.Field {
	if c == nil {
		return zap.Skip()
	}
	return zap.String("actor", c.Username)
}

func orNow(t *time.Time, now time.Time) time.Time {
	if t == nil || t.IsZero() {
		return now
	}
	return t.UTC()
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func units(q int, name string) string {
	return fmt.Sprintf("%d units of '%s'", q, name)
}
