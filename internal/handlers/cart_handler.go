package handlers

import (
	"vastraa/internal/services"
	"vastraa/internal/session"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CartHandler handles HTTP requests for the cart and the wishlist.
type CartHandler struct {
	carts    *services.CartService
	wishlist *services.WishlistService
	log      *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(carts *services.CartService, wishlist *services.WishlistService, log *zap.Logger) *CartHandler {
	return &CartHandler{carts: carts, wishlist: wishlist, log: log}
}

// RegisterRoutes registers the cart and wishlist routes. Reads are allowed anonymously and
// return empty collections; the services reject anonymous writes.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cart := router.Group("/cart")
	cart.Get("/", h.HandleGetCart)
	cart.Post("/", h.HandleAddItem)
	cart.Patch("/:id", h.HandleUpdateQuantity)
	cart.Delete("/:id", h.HandleRemoveItem)

	wishlist := router.Group("/wishlist")
	wishlist.Get("/", h.HandleGetWishlist)
	wishlist.Post("/:productId/toggle", h.HandleToggleWishlist)
}

// HandleGetCart returns the cart lines and their price summary.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	items, err := h.carts.List(c.UserContext(), session.From(c))
	if err != nil {
		return respondError(c, h.log, "Could not retrieve cart", err)
	}
	return c.JSON(fiber.Map{
		"items":   items,
		"summary": h.carts.Summary(items),
	})
}

func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var in services.AddCartItemInput
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	item, err := h.carts.Add(c.UserContext(), session.From(c), in)
	if err != nil {
		return respondError(c, h.log, "Could not add item to cart", err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *CartHandler) HandleUpdateQuantity(c *fiber.Ctx) error {
	var body struct {
		Quantity int `json:"quantity"`
	}
	if ok, err := parseBody(c, &body); !ok {
		return err
	}
	if err := h.carts.UpdateQuantity(c.UserContext(), session.From(c), c.Params("id"), body.Quantity); err != nil {
		return respondError(c, h.log, "Could not update cart item", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	if err := h.carts.Remove(c.UserContext(), session.From(c), c.Params("id")); err != nil {
		return respondError(c, h.log, "Could not remove cart item", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CartHandler) HandleGetWishlist(c *fiber.Ctx) error {
	items, err := h.wishlist.List(c.UserContext(), session.From(c))
	if err != nil {
		return respondError(c, h.log, "Could not retrieve wishlist", err)
	}
	return c.JSON(items)
}

// HandleToggleWishlist flips membership and reports the resulting state.
func (h *CartHandler) HandleToggleWishlist(c *fiber.Ctx) error {
	state, err := h.wishlist.Toggle(c.UserContext(), session.From(c), c.Params("productId"))
	if err != nil {
		return respondError(c, h.log, "Could not update wishlist", err)
	}
	return c.JSON(fiber.Map{"state": state})
}
