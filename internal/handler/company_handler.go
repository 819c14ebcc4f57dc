package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-inventory-mt/internal/service"
)

type CompanyHandler struct {
	companyService service.CompanyService
}

func NewCompanyHandler(s service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: s}
}

// GetCompanies lists the companies visible to the caller
// GET /api/v1/companies?search=&skip=&limit=
func (h *CompanyHandler) GetCompanies(c *fiber.Ctx) error {
	result, err := h.companyService.ListCompanies(caller(c), c.Query("search"), queryPage(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}

// GET /api/v1/companies/:id
func (h *CompanyHandler) GetCompany(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	company, err := h.companyService.GetCompany(caller(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(company)
}

// POST /api/v1/companies
func (h *CompanyHandler) CreateCompany(c *fiber.Ctx) error {
	var req service.CreateCompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	company, err := h.companyService.CreateCompany(caller(c), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "company created successfully",
		"data":    company,
	})
}

// PUT /api/v1/companies/:id
func (h *CompanyHandler) UpdateCompany(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.UpdateCompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	company, err := h.companyService.UpdateCompany(caller(c), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "company updated successfully",
		"data":    company,
	})
}

// DELETE /api/v1/companies/:id
func (h *CompanyHandler) DeleteCompany(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.companyService.DeleteCompany(caller(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "company deleted successfully"})
}
