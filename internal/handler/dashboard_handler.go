package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-inventory-mt/internal/service"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetStockMovement returns stock movement data for charts
// Query params: days (default 7), company_id (super admin only)
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	days := c.QueryInt("days", 7)
	if days <= 0 {
		days = 7
	}
	companyID, err := queryID(c, "company_id")
	if err != nil {
		return fail(c, err)
	}

	data, err := h.service.GetStockMovement(caller(c), companyID, days)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"period": len(data),
		"data":   data,
	})
}

// GetDashboardStats returns overview statistics
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	companyID, err := queryID(c, "company_id")
	if err != nil {
		return fail(c, err)
	}
	stats, err := h.service.GetDashboardStats(caller(c), companyID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(stats)
}

// GetLowStock lists products at or below their minimum stock
func (h *DashboardHandler) GetLowStock(c *fiber.Ctx) error {
	companyID, err := queryID(c, "company_id")
	if err != nil {
		return fail(c, err)
	}
	products, err := h.service.GetLowStock(caller(c), companyID, c.QueryInt("limit", 20))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(products)
}
