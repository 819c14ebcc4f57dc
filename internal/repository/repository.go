package repository

import (
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Page is an offset window over an ordered list.
type Page struct {
	Skip  int
	Limit int
}

// Normalize clamps the window to sane bounds.
func (p Page) Normalize() Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	return q.Offset(p.Skip).Limit(p.Limit)
}

// containsPattern builds a case-insensitive LIKE pattern for a LOWER(column) match.
func containsPattern(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}
