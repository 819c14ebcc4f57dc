package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-inventory-mt/internal/model"
	"go-inventory-mt/internal/service"
)

type SaleHandler struct {
	service service.SaleService
}

func NewSaleHandler(s service.SaleService) *SaleHandler {
	return &SaleHandler{service: s}
}

// GetSales lists sale records
// GET /api/v1/sales?product_id=&customer=&from=&to=&status=&payment_status=&skip=&limit=
func (h *SaleHandler) GetSales(c *fiber.Ctx) error {
	productID, err := queryID(c, "product_id")
	if err != nil {
		return fail(c, err)
	}
	from, err := queryTime(c, "from")
	if err != nil {
		return fail(c, err)
	}
	to, err := queryTime(c, "to")
	if err != nil {
		return fail(c, err)
	}

	result, err := h.service.ListSales(caller(c), service.SaleQuery{
		ProductID:     productID,
		Customer:      c.Query("customer"),
		From:          from,
		To:            to,
		Status:        model.SaleStatus(c.Query("status")),
		PaymentStatus: model.SalePaymentStatus(c.Query("payment_status")),
		Page:          queryPage(c),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}

// GET /api/v1/sales/:id
func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	sale, err := h.service.GetSale(caller(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(sale)
}

// POST /api/v1/sales
func (h *SaleHandler) CreateSale(c *fiber.Ctx) error {
	var req service.CreateSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	sale, err := h.service.CreateSale(caller(c), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "sale recorded successfully",
		"data":    sale,
	})
}

// PUT /api/v1/sales/:id
func (h *SaleHandler) UpdateSale(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.UpdateSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	sale, err := h.service.UpdateSale(caller(c), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "sale updated successfully",
		"data":    sale,
	})
}

// DELETE /api/v1/sales/:id
func (h *SaleHandler) DeleteSale(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.service.DeleteSale(caller(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "sale deleted successfully"})
}

// POST /api/v1/sales/:id/payments
func (h *SaleHandler) RecordPayment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	sale, err := h.service.RecordPayment(caller(c), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "payment recorded successfully",
		"data":    sale,
	})
}
