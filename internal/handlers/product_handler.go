package handlers

import (
	"vastraa/internal/services"
	"vastraa/internal/session"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	products   *services.ProductService
	categories *services.CategoryService
	wishlist   *services.WishlistService
	log        *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(products *services.ProductService, categories *services.CategoryService, wishlist *services.WishlistService, log *zap.Logger) *ProductHandler {
	return &ProductHandler{
		products:   products,
		categories: categories,
		wishlist:   wishlist,
		log:        log,
	}
}

// RegisterRoutes registers the catalog routes. They are public.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/products", h.HandleListProducts)
	router.Get("/products/:id", h.HandleGetProduct)
	router.Get("/categories", h.HandleListCategories)
}

// HandleListProducts lists the catalog. Query parameters: category (slug), fabric, sort.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	products, err := h.products.List(c.UserContext(), services.ListQuery{
		CategorySlug: c.Query("category"),
		Fabric:       c.Query("fabric"),
		Sort:         c.Query("sort"),
	})
	if err != nil {
		return respondError(c, h.log, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

// HandleGetProduct returns one product. Signed-in callers also learn whether they saved it.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	product, err := h.products.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, "Could not retrieve product", err)
	}

	saved, err := h.wishlist.Contains(c.UserContext(), session.From(c), id)
	if err != nil {
		h.log.Warn("wishlist lookup failed", zap.String("product_id", id), zap.Error(err))
	}
	return c.JSON(fiber.Map{
		"product":     product,
		"in_wishlist": saved,
	})
}

func (h *ProductHandler) HandleListCategories(c *fiber.Ctx) error {
	categories, err := h.categories.List(c.UserContext())
	if err != nil {
		return respondError(c, h.log, "Could not retrieve categories", err)
	}
	return c.JSON(categories)
}
