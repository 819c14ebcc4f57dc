package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-inventory-mt/internal/service"
)

type ProductHandler struct {
	service service.ProductService
}

func NewProductHandler(s service.ProductService) *ProductHandler {
	return &ProductHandler{service: s}
}

// GetProducts lists the catalog
// GET /api/v1/products?search=&company_id=&low_stock=&skip=&limit=
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	companyID, err := queryID(c, "company_id")
	if err != nil {
		return fail(c, err)
	}
	result, err := h.service.ListProducts(caller(c), service.ProductQuery{
		Search:    c.Query("search"),
		CompanyID: companyID,
		LowStock:  c.QueryBool("low_stock", false),
		Page:      queryPage(c),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}

// GET /api/v1/products/:id
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	product, err := h.service.GetProduct(caller(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(product)
}

// POST /api/v1/products
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	product, err := h.service.CreateProduct(caller(c), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "product created successfully",
		"data":    product,
	})
}

// PUT /api/v1/products/:id
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	product, err := h.service.UpdateProduct(caller(c), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "product updated successfully",
		"data":    product,
	})
}

// DELETE /api/v1/products/:id
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.service.DeleteProduct(caller(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "product deleted successfully"})
}
