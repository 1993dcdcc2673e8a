package repositories

import (
	"context"

	"vastraa/internal/models"
)

// PlaceOrderParams describes a checkout. Prices are always taken from the products
// as they are read inside the placing transaction.
type PlaceOrderParams struct {
	UserID        string
	Address       models.Address
	PaymentMethod string
	// ExpectedTotal, when set, must match the computed total or the checkout is rejected.
	ExpectedTotal *float64
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	PlaceOrder(ctx context.Context, params PlaceOrderParams) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	// GetByID loads an order with items, products and address. An empty userID skips the
	// ownership check.
	GetByID(ctx context.Context, userID, id string) (*models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id, from, to string) error
	Count(ctx context.Context) (int64, error)
	Revenue(ctx context.Context) (float64, error)
}

// AddressRepository defines the interface for address data access.
type AddressRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Address, error)
	ListAll(ctx context.Context) ([]models.Address, error)
}
