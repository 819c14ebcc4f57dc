package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-inventory-mt/internal/service"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me returns the authenticated account
// GET /api/v1/users/me
func (h *UserHandler) Me(c *fiber.Ctx) error {
	who := caller(c)
	user, err := h.userService.GetUser(who, who.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user.ToResponse())
}

// CreateUser handles user creation
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	user, err := h.userService.CreateUser(caller(c), req)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "user created successfully",
		"data":    user.ToResponse(),
	})
}

// GetUsers returns the users visible to the caller
// GET /api/v1/users?company_id=&skip=&limit=
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	companyID, err := queryID(c, "company_id")
	if err != nil {
		return fail(c, err)
	}
	result, err := h.userService.ListUsers(caller(c), companyID, queryPage(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}

// GetUser returns a single user by ID
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	user, err := h.userService.GetUser(caller(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user.ToResponse())
}

// UpdateUser handles user update
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req service.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	user, err := h.userService.UpdateUser(caller(c), id, req)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "user updated successfully",
		"data":    user.ToResponse(),
	})
}

// DeleteUser deactivates an account
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.userService.DeactivateUser(caller(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "user deactivated successfully"})
}

// PurgeUser permanently removes a deactivated account
// DELETE /api/v1/users/:id/purge
func (h *UserHandler) PurgeUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.userService.PurgeUser(caller(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "user deleted successfully"})
}

// ChangePassword updates the caller's own password
// POST /api/v1/users/me/password
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	var req service.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	if err := h.userService.ChangePassword(caller(c), req); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "password updated, log in again"})
}
