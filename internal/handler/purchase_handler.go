package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-inventory-mt/internal/model"
	"go-inventory-mt/internal/service"
)

type PurchaseHandler struct {
	service service.PurchaseService
}

func NewPurchaseHandler(s service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{service: s}
}

// GetPurchases lists purchase records
// GET /api/v1/purchases?product_id=&supplier=&from=&to=&payment_status=&skip=&limit=
func (h *PurchaseHandler) GetPurchases(c *fiber.Ctx) error {
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

	result, err := h.service.ListPurchases(caller(c), service.PurchaseQuery{
		ProductID:     productID,
		Supplier:      c.Query("supplier"),
		From:          from,
		To:            to,
		PaymentStatus: model.PaymentStatus(c.Query("payment_status")),
		Page:          queryPage(c),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}

// GET /api/v1/purchases/:id
func (h *PurchaseHandler) GetPurchase(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	purchase, err := h.service.GetPurchase(caller(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(purchase)
}

// POST /api/v1/purchases
func (h *PurchaseHandler) CreatePurchase(c *fiber.Ctx) error {
	var req service.CreatePurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	purchase, err := h.service.CreatePurchase(caller(c), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "purchase recorded successfully",
		"data":    purchase,
	})
}

// PUT /api/v1/purchases/:id
func (h *PurchaseHandler) UpdatePurchase(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.UpdatePurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	purchase, err := h.service.UpdatePurchase(caller(c), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "purchase updated successfully",
		"data":    purchase,
	})
}

// DELETE /api/v1/purchases/:id
func (h *PurchaseHandler) DeletePurchase(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.service.DeletePurchase(caller(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "purchase deleted successfully"})
}

// POST /api/v1/purchases/:id/payments
func (h *PurchaseHandler) RecordPayment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	purchase, err := h.service.RecordPayment(caller(c), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "payment recorded successfully",
		"data":    purchase,
	})
}
