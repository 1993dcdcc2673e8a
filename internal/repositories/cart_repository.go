package repositories

import (
	"context"

	"vastraa/internal/apperrors"
	"vastraa/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository defines the interface for cart data access. Every method is scoped to one user.
type CartRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.CartItem, error)
	Create(ctx context.Context, item *models.CartItem) error
	UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) error
	Delete(ctx context.Context, userID, itemID string) error
}

// WishlistState is the membership of a product after a toggle.
type WishlistState string

const (
	WishlistAdded   WishlistState = "added"
	WishlistRemoved WishlistState = "removed"
)

// WishlistRepository defines the interface for wishlist data access.
type WishlistRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.WishlistItem, error)
	Toggle(ctx context.Context, userID, productID string) (WishlistState, error)
	Exists(ctx context.Context, userID, productID string) (bool, error)
}

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

// ListByUser returns the user's cart lines joined with product and images, oldest first.
func (r *GORMCartRepository) ListByUser(ctx context.Context, userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Images", withImages).
		Where("user_id = ?", userID).
		Order("created_at ASC").Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, apperrors.Remote("failed to list cart items", err)
	}
	return items, nil
}

// Create inserts a new line. Identical lines are not merged.
func (r *GORMCartRepository) Create(ctx context.Context, item *models.CartItem) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error; err != nil {
		return apperrors.Remote("failed to add cart item", err)
	}
	return nil
}

// UpdateQuantity changes the quantity of a line owned by userID.
func (r *GORMCartRepository) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) error {
	res := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Update("quantity", quantity)
	if res.Error != nil {
		return apperrors.Remote("failed to update cart item", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("cart item %s not found", itemID)
	}
	return nil
}

// Delete removes a line owned by userID. Deleting a missing line is not an error.
func (r *GORMCartRepository) Delete(ctx context.Context, userID, itemID string) error {
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&models.CartItem{}).Error
	if err != nil {
		return apperrors.Remote("failed to remove cart item", err)
	}
	return nil
}

// GORMWishlistRepository is a GORM implementation of WishlistRepository.
type GORMWishlistRepository struct {
	db *gorm.DB
}

// NewGORMWishlistRepository creates a new instance of GORMWishlistRepository.
func NewGORMWishlistRepository(db *gorm.DB) *GORMWishlistRepository {
	return &GORMWishlistRepository{db: db}
}

// ListByUser returns the user's saved products, most recent first.
func (r *GORMWishlistRepository) ListByUser(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Images", withImages).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&items).Error
	if err != nil {
		return nil, apperrors.Remote("failed to list wishlist", err)
	}
	return items, nil
}

// Toggle flips membership of (userID, productID) in one transaction.
// The delete reports whether a row existed; otherwise the insert relies on the unique
// (user_id, product_id) index, so two racing toggles can never leave a duplicate row.
func (r *GORMWishlistRepository) Toggle(ctx context.Context, userID, productID string) (WishlistState, error) {
	var state WishlistState
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.WishlistItem{})
		if res.Error != nil {
			return apperrors.Remote("failed to remove wishlist item", res.Error)
		}
		if res.RowsAffected > 0 {
			state = WishlistRemoved
			return nil
		}

		item := models.WishlistItem{UserID: userID, ProductID: productID}
		err := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&item).Error
		if err != nil {
			return apperrors.Remote("failed to add wishlist item", err)
		}
		state = WishlistAdded
		return nil
	})
	if err != nil {
		return "", err
	}
	return state, nil
}

// Exists reports whether the product is in the user's wishlist.
func (r *GORMWishlistRepository) Exists(ctx context.Context, userID, productID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&n).Error
	if err != nil {
		return false, apperrors.Remote("failed to check wishlist", err)
	}
	return n > 0, nil
}
