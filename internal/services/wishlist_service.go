package services

import (
	"context"

	"vastraa/internal/cache"
	"vastraa/internal/models"
	"vastraa/internal/repositories"
	"vastraa/internal/session"

	"go.uber.org/zap"
)

// WishlistService manages the products a user has saved for later.
type WishlistService struct {
	wishlist repositories.WishlistRepository
	products repositories.ProductRepository
	cache    *cache.Cache
	log      *zap.Logger
}

// NewWishlistService creates a new WishlistService.
func NewWishlistService(wishlist repositories.WishlistRepository, products repositories.ProductRepository, c *cache.Cache, log *zap.Logger) *WishlistService {
	return &WishlistService{
		wishlist: wishlist,
		products: products,
		cache:    c,
		log:      log,
	}
}

// List returns the caller's saved products. Anonymous callers have an empty wishlist.
func (s *WishlistService) List(ctx context.Context, sess session.Session) ([]models.WishlistItem, error) {
	if !sess.Authenticated() {
		return []models.WishlistItem{}, nil
	}
	return cache.Fetch(ctx, s.cache, wishlistKey(sess.UserID), func(ctx context.Context) ([]models.WishlistItem, error) {
		items, err := s.wishlist.ListByUser(ctx, sess.UserID)
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

// Toggle adds the product when absent and removes it when present.
func (s *WishlistService) Toggle(ctx context.Context, sess session.Session, productID string) (repositories.WishlistState, error) {
	if err := sess.Require(); err != nil {
		return "", err
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return "", err
	}

	state, err := s.wishlist.Toggle(ctx, sess.UserID, productID)
	if err != nil {
		return "", err
	}
	s.cache.Invalidate(ctx, wishlistKey(sess.UserID))
	s.log.Debug("wishlist toggled",
		zap.String("user_id", sess.UserID),
		zap.String("product_id", productID),
		zap.String("state", string(state)),
	)
	return state, nil
}

// Contains reports whether the caller has saved the product. Anonymous callers have saved nothing.
func (s *WishlistService) Contains(ctx context.Context, sess session.Session, productID string) (bool, error) {
	if !sess.Authenticated() {
		return false, nil
	}
	return s.wishlist.Exists(ctx, sess.UserID, productID)
}
