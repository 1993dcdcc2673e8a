package services

import (
	"context"

	"vastraa/internal/apperrors"
	"vastraa/internal/cache"
	"vastraa/internal/models"
	"vastraa/internal/pricing"
	"vastraa/internal/repositories"
	"vastraa/internal/session"

	"go.uber.org/zap"
)

// AddCartItemInput describes a line to add to the cart.
type AddCartItemInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size" validate:"omitempty,max=20"`
	Color     string `json:"color" validate:"omitempty,max=30"`
}

// CartService keeps the signed-in user's cart in the store.
type CartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
	cache    *cache.Cache
	log      *zap.Logger
}

// NewCartService creates a new CartService.
func NewCartService(carts repositories.CartRepository, products repositories.ProductRepository, c *cache.Cache, log *zap.Logger) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		cache:    c,
		log:      log,
	}
}

// List returns the caller's cart lines with products. Anonymous callers have an empty cart.
func (s *CartService) List(ctx context.Context, sess session.Session) ([]models.CartItem, error) {
	if !sess.Authenticated() {
		return []models.CartItem{}, nil
	}
	return cache.Fetch(ctx, s.cache, cartKey(sess.UserID), func(ctx context.Context) ([]models.CartItem, error) {
		items, err := s.carts.ListByUser(ctx, sess.UserID)
		if err != nil {
			return nil, err
		}
		for i := range items {
			if items[i].Product != nil {
				items[i].Product.Resolve()
			}
		}
		return items, nil
	})
}

// Add inserts a new cart line for the caller. Lines are never merged, even when product,
// size and color match an existing one.
func (s *CartService) Add(ctx context.Context, sess session.Session, in AddCartItemInput) (*models.CartItem, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	if in.Quantity < 1 {
		return nil, apperrors.Validation("quantity must be at least 1")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}

	item := &models.CartItem{
		UserID:    sess.UserID,
		ProductID: product.ID,
		Quantity:  in.Quantity,
		Size:      in.Size,
		Color:     in.Color,
	}
	if err := s.carts.Create(ctx, item); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cartKey(sess.UserID))

	product.Resolve()
	item.Product = product
	s.log.Info("cart item added",
		zap.String("user_id", sess.UserID),
		zap.String("product_id", product.ID),
		zap.Int("quantity", in.Quantity),
	)
	return item, nil
}

// UpdateQuantity sets the quantity of one of the caller's lines.
func (s *CartService) UpdateQuantity(ctx context.Context, sess session.Session, itemID string, quantity int) error {
	if err := sess.Require(); err != nil {
		return err
	}
	if quantity <= 0 {
		return apperrors.Validation("quantity must be at least 1")
	}
	if err := s.carts.UpdateQuantity(ctx, sess.UserID, itemID, quantity); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cartKey(sess.UserID))
	return nil
}

// Remove deletes one of the caller's lines. Removing a missing line succeeds.
func (s *CartService) Remove(ctx context.Context, sess session.Session, itemID string) error {
	if err := sess.Require(); err != nil {
		return err
	}
	if err := s.carts.Delete(ctx, sess.UserID, itemID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cartKey(sess.UserID))
	return nil
}

// Summary prices the given lines at their products' current prices.
func (s *CartService) Summary(items []models.CartItem) pricing.Summary {
	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		if it.Product == nil {
			continue
		}
		lines = append(lines, pricing.Line{UnitPrice: it.Product.Price, Quantity: it.Quantity})
	}
	return pricing.Summarize(lines)
}
