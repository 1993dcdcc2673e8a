// Package app assembles the HTTP API from the storefront services.
package app

import (
	"time"

	"vastraa/internal/handlers"
	"vastraa/internal/logger"
	"vastraa/internal/middleware"
	"vastraa/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

// Services are the dependencies of the HTTP API.
type Services struct {
	Auth       *services.AuthService
	Products   *services.ProductService
	Categories *services.CategoryService
	Carts      *services.CartService
	Wishlist   *services.WishlistService
	Orders     *services.OrderService
	Admin      *services.AdminService
}

// New builds the Fiber app with every route under /api/v1.
func New(svc Services, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "vastraa",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.RequestLogger(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	apiV1 := app.Group("/api/v1", middleware.Session(svc.Auth, log))

	handlers.NewAuthHandler(svc.Auth, log).RegisterRoutes(apiV1)
	handlers.NewProductHandler(svc.Products, svc.Categories, svc.Wishlist, log).RegisterRoutes(apiV1)
	handlers.NewCartHandler(svc.Carts, svc.Wishlist, log).RegisterRoutes(apiV1)
	handlers.NewOrderHandler(svc.Orders, log).RegisterRoutes(apiV1)

	admin := apiV1.Group("/admin", middleware.AdminOnly())
	handlers.NewAdminHandler(svc.Admin, svc.Orders, log).RegisterRoutes(admin)

	return app
}
