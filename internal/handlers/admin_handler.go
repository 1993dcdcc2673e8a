package handlers

import (
	"bytes"

	"vastraa/internal/export"
	"vastraa/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AdminHandler handles HTTP requests for the back-office. Every route requires the admin role.
type AdminHandler struct {
	admin  *services.AdminService
	orders *services.OrderService
	log    *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(admin *services.AdminService, orders *services.OrderService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, orders: orders, log: log}
}

// RegisterRoutes registers the back-office routes. The caller guards router with AdminOnly.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/dashboard", h.HandleDashboard)

	categories := router.Group("/categories")
	categories.Get("/", h.HandleListCategories)
	categories.Post("/", h.HandleCreateCategory)
	categories.Put("/:id", h.HandleUpdateCategory)
	categories.Delete("/:id", h.HandleDeleteCategory)

	products := router.Group("/products")
	products.Get("/export", h.HandleExportProducts)
	products.Post("/", h.HandleCreateProduct)
	products.Put("/:id", h.HandleUpdateProduct)
	products.Delete("/:id", h.HandleDeleteProduct)
	products.Post("/:id/images", h.HandleAddProductImage)

	router.Get("/users", h.HandleUsersSummary)

	orders := router.Group("/orders")
	orders.Get("/", h.HandleListOrders)
	orders.Patch("/:id/status", h.HandleUpdateOrderStatus)
}

func (h *AdminHandler) HandleDashboard(c *fiber.Ctx) error {
	dashboard, err := h.admin.Dashboard(c.UserContext())
	if err != nil {
		return respondError(c, h.log, "Could not load dashboard", err)
	}
	return c.JSON(dashboard)
}

func (h *AdminHandler) HandleListCategories(c *fiber.Ctx) error {
	categories, err := h.admin.ListCategories(c.UserContext())
	if err != nil {
		return respondError(c, h.log, "Could not retrieve categories", err)
	}
	return c.JSON(categories)
}

func (h *AdminHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var in services.CategoryInput
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	category, err := h.admin.CreateCategory(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, "Could not create category", err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func (h *AdminHandler) HandleUpdateCategory(c *fiber.Ctx) error {
	var in services.CategoryInput
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	category, err := h.admin.UpdateCategory(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, "Could not update category", err)
	}
	return c.JSON(category)
}

func (h *AdminHandler) HandleDeleteCategory(c *fiber.Ctx) error {
	if err := h.admin.DeleteCategory(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, h.log, "Could not delete category", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdminHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var in services.ProductInput
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	product, err := h.admin.CreateProduct(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *AdminHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var in services.ProductInput
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	product, err := h.admin.UpdateProduct(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, "Could not update product", err)
	}
	return c.JSON(product)
}

func (h *AdminHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.admin.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, h.log, "Could not delete product", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdminHandler) HandleAddProductImage(c *fiber.Ctx) error {
	var in services.ImageInput
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	image, err := h.admin.AddProductImage(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, "Could not add product image", err)
	}
	return c.Status(fiber.StatusCreated).JSON(image)
}

// HandleExportProducts downloads the catalog as an xlsx workbook.
func (h *AdminHandler) HandleExportProducts(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.admin.ExportProducts(c.UserContext(), &buf); err != nil {
		return respondError(c, h.log, "Could not export products", err)
	}
	c.Set(fiber.HeaderContentType, export.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="products.xlsx"`)
	return c.Send(buf.Bytes())
}

func (h *AdminHandler) HandleUsersSummary(c *fiber.Ctx) error {
	users, err := h.admin.UsersSummary(c.UserContext())
	if err != nil {
		return respondError(c, h.log, "Could not retrieve users", err)
	}
	return c.JSON(users)
}

func (h *AdminHandler) HandleListOrders(c *fiber.Ctx) error {
	orders, err := h.orders.ListAll(c.UserContext())
	if err != nil {
		return respondError(c, h.log, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleUpdateOrderStatus advances an order to the next status.
func (h *AdminHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var body struct {
		Status string `json:"status" validate:"required"`
	}
	if ok, err := parseBody(c, &body); !ok {
		return err
	}
	order, err := h.orders.AdvanceStatus(c.UserContext(), c.Params("id"), body.Status)
	if err != nil {
		return respondError(c, h.log, "Order update failed", err)
	}
	return c.JSON(order)
}
