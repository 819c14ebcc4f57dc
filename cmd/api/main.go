package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-inventory-mt/internal/handler"
	"go-inventory-mt/internal/metrics"
	"go-inventory-mt/internal/middleware"
	"go-inventory-mt/internal/repository"
	"go-inventory-mt/internal/service"
	"go-inventory-mt/internal/ws"
	"go-inventory-mt/pkg/config"
	"go-inventory-mt/pkg/database"
	"go-inventory-mt/pkg/jwt"
	"go-inventory-mt/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// 1. Load config (.env first, then environment)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	zlog.Info("starting inventory service",
		zap.String("environment", cfg.AppEnv),
		zap.String("port", cfg.Port),
		zap.String("db_driver", cfg.DB.Driver))

	// 2. Setup Database
	db, err := database.Open(cfg.DB, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zlog.Fatal("failed to migrate database", zap.Error(err))
	}

	// 3. Observability and realtime
	m := metrics.New(cfg.MetricsPrefix, prometheus.DefaultRegisterer)
	wsHub := ws.NewHub(zlog.Named("ws"))
	go wsHub.Run()

	// 4. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	companyRepo := repository.NewCompanyRepo(db)
	productRepo := repository.NewProductRepo(db)
	purchaseRepo := repository.NewPurchaseRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	dashboardRepo := repository.NewDashboardRepo(db)

	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Issuer)

	authService := service.NewAuthService(userRepo, tokens, m, wsHub, zlog)
	userService := service.NewUserService(db, userRepo, companyRepo, wsHub, zlog)
	companyService := service.NewCompanyService(db, companyRepo, zlog)
	productService := service.NewProductService(db, productRepo, companyRepo, purchaseRepo, wsHub, m, zlog)
	purchaseService := service.NewPurchaseService(db, purchaseRepo, productRepo, wsHub, m, zlog)
	saleService := service.NewSaleService(db, saleRepo, productRepo, wsHub, m, zlog)
	dashService := service.NewDashboardService(dashboardRepo)

	// 5. Seed the bootstrap super admin on an empty database
	created, err := userService.EnsureSuperAdmin(cfg.Seed)
	if err != nil {
		zlog.Fatal("failed to seed super admin", zap.Error(err))
	}
	if created && cfg.Seed.Password == "admin123" {
		zlog.Warn("super admin created with the default password, change it now", zap.String("username", cfg.Seed.Username))
	}

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.AppName,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(middleware.RequestID(zlog))
	app.Use(fiberlogger.New())
	app.Use(cors.New())
	app.Use(middleware.Metrics(m))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "ws_clients": wsHub.ClientCount()})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// 7. Routes
	handler.SetupRoutes(app, handler.Handlers{
		Auth:      handler.NewAuthHandler(authService, userService),
		Company:   handler.NewCompanyHandler(companyService),
		User:      handler.NewUserHandler(userService),
		Role:      handler.NewRoleHandler(),
		Product:   handler.NewProductHandler(productService),
		Purchase:  handler.NewPurchaseHandler(purchaseService),
		Sale:      handler.NewSaleHandler(saleService),
		Dashboard: handler.NewDashboardHandler(dashService),
		WS:        handler.NewWSHandler(authService, wsHub, zlog.Named("ws")),
	}, middleware.RequireAuth(authService))

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Panic("server stopped", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")
	wsHub.Stop()
	if err := app.Shutdown(); err != nil {
		zlog.Fatal("server forced to shutdown", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	zlog.Info("server exited")
}
