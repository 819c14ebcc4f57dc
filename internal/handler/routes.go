package handler

import (
	"github.com/gofiber/fiber/v2"
)

// Handlers groups every HTTP handler the API serves.
type Handlers struct {
	Auth      *AuthHandler
	Company   *CompanyHandler
	User      *UserHandler
	Role      *RoleHandler
	Product   *ProductHandler
	Purchase  *PurchaseHandler
	Sale      *SaleHandler
	Dashboard *DashboardHandler
	WS        *WSHandler
}

// SetupRoutes mounts the API under /api/v1. requireAuth guards every route
// outside /auth.
func SetupRoutes(app *fiber.App, h Handlers, requireAuth fiber.Handler) {
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", h.Auth.Login)
	auth.Post("/register", h.Auth.Register)
	auth.Post("/validate-token", h.Auth.ValidateToken)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)

	protected.Get("/dashboard/stats", h.Dashboard.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", h.Dashboard.GetStockMovement)
	protected.Get("/dashboard/low-stock", h.Dashboard.GetLowStock)

	protected.Get("/companies", h.Company.GetCompanies)
	protected.Get("/companies/:id", h.Company.GetCompany)
	protected.Post("/companies", h.Company.CreateCompany)
	protected.Put("/companies/:id", h.Company.UpdateCompany)
	protected.Delete("/companies/:id", h.Company.DeleteCompany)

	protected.Get("/users/me", h.User.Me)
	protected.Post("/users/me/password", h.User.ChangePassword)
	protected.Get("/users", h.User.GetUsers)
	protected.Get("/users/:id", h.User.GetUser)
	protected.Post("/users", h.User.CreateUser)
	protected.Put("/users/:id", h.User.UpdateUser)
	protected.Delete("/users/:id", h.User.DeleteUser)
	protected.Delete("/users/:id/purge", h.User.PurgeUser)

	protected.Get("/roles", h.Role.GetRoles)

	protected.Get("/products", h.Product.GetProducts)
	protected.Get("/products/:id", h.Product.GetProduct)
	protected.Post("/products", h.Product.CreateProduct)
	protected.Put("/products/:id", h.Product.UpdateProduct)
	protected.Delete("/products/:id", h.Product.DeleteProduct)

	protected.Get("/purchases", h.Purchase.GetPurchases)
	protected.Get("/purchases/:id", h.Purchase.GetPurchase)
	protected.Post("/purchases", h.Purchase.CreatePurchase)
	protected.Put("/purchases/:id", h.Purchase.UpdatePurchase)
	protected.Delete("/purchases/:id", h.Purchase.DeletePurchase)
	protected.Post("/purchases/:id/payments", h.Purchase.RecordPayment)

	protected.Get("/sales", h.Sale.GetSales)
	protected.Get("/sales/:id", h.Sale.GetSale)
	protected.Post("/sales", h.Sale.CreateSale)
	protected.Put("/sales/:id", h.Sale.UpdateSale)
	protected.Delete("/sales/:id", h.Sale.DeleteSale)
	protected.Post("/sales/:id/payments", h.Sale.RecordPayment)

	if h.WS != nil {
		app.Use("/ws", h.WS.Upgrade)
		app.Get("/ws", h.WS.Stream())
	}
}
