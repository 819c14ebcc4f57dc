package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-inventory-mt/internal/model"
)

// RoleInfo describes one assignable role.
type RoleInfo struct {
	Code  model.Role `json:"code"`
	Label string     `json:"label"`
}

type RoleHandler struct{}

func NewRoleHandler() *RoleHandler {
	return &RoleHandler{}
}

// GetRoles returns all available roles
// GET /api/v1/roles
func (h *RoleHandler) GetRoles(c *fiber.Ctx) error {
	roles := make([]RoleInfo, 0, len(model.Roles))
	for _, r := range model.Roles {
		roles = append(roles, RoleInfo{Code: r, Label: r.Label()})
	}
	return c.JSON(roles)
}
