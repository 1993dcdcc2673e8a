package repositories

import (
	"context"
	"sort"

	"vastraa/internal/apperrors"
	"vastraa/internal/models"
	"vastraa/internal/pricing"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// PlaceOrder converts the user's cart into an order in a single transaction:
// address, order, order items, stock and cart clearing either all commit or none do.
func (r *GORMOrderRepository) PlaceOrder(ctx context.Context, params PlaceOrderParams) (*models.Order, error) {
	var order *models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart []models.CartItem
		if err := tx.Where("user_id = ?", params.UserID).Order("created_at ASC").Order("id ASC").Find(&cart).Error; err != nil {
			return apperrors.Remote("failed to load cart", err)
		}
		if len(cart) == 0 {
			return apperrors.Validation("cart is empty")
		}

		wanted := make(map[string]int)
		for _, item := range cart {
			wanted[item.ProductID] += item.Quantity
		}
		ids := make([]string, 0, len(wanted))
		for id := range wanted {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		var products []models.Product
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", ids).
			Order("id ASC").
			Find(&products).Error
		if err != nil {
			return apperrors.Remote("failed to load cart products", err)
		}
		byID := make(map[string]models.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		lines := make([]pricing.Line, 0, len(cart))
		for _, item := range cart {
			p, ok := byID[item.ProductID]
			if !ok {
				return apperrors.Validation("product %s is no longer available", item.ProductID)
			}
			lines = append(lines, pricing.Line{UnitPrice: p.Price, Quantity: item.Quantity})
		}
		summary := pricing.Summarize(lines)
		if params.ExpectedTotal != nil && !pricing.Equal(*params.ExpectedTotal, summary.Total) {
			return apperrors.Validation("prices changed: expected total %.2f, current total %.2f", *params.ExpectedTotal, summary.Total)
		}

		for _, id := range ids {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock_quantity >= ?", id, wanted[id]).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", wanted[id]))
			if res.Error != nil {
				return apperrors.Remote("failed to reserve stock", res.Error)
			}
			if res.RowsAffected == 0 {
				p := byID[id]
				return apperrors.Validation("insufficient stock for %s (requested: %d, available: %d)", p.Name, wanted[id], p.StockQuantity)
			}
		}

		address := params.Address
		address.ID = ""
		address.UserID = params.UserID
		address.IsDefault = true
		if err := tx.Create(&address).Error; err != nil {
			return apperrors.Remote("failed to save shipping address", err)
		}

		order = &models.Order{
			UserID:            params.UserID,
			TotalPrice:        summary.Total,
			PaymentMethod:     params.PaymentMethod,
			ShippingAddressID: address.ID,
			Status:            models.OrderStatusPlaced,
		}
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return apperrors.Remote("failed to create order", err)
		}

		items := make([]models.OrderItem, 0, len(cart))
		for _, item := range cart {
			items = append(items, models.OrderItem{
				OrderID:         order.ID,
				ProductID:       item.ProductID,
				Quantity:        item.Quantity,
				PriceAtPurchase: byID[item.ProductID].Price,
			})
		}
		if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
			return apperrors.Remote("failed to create order items", err)
		}

		if err := tx.Where("user_id = ?", params.UserID).Delete(&models.CartItem{}).Error; err != nil {
			return apperrors.Remote("failed to clear cart", err)
		}

		order.Items = items
		order.ShippingAddress = &address
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func orderDetail(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC").Order("id ASC")
	}).
		Preload("Items.Product").
		Preload("Items.Product.Images", withImages)
}

// ListByUser returns the user's orders, newest first, with items and products.
func (r *GORMOrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := orderDetail(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, apperrors.Remote("failed to list orders", err)
	}
	return orders, nil
}

// GetByID returns a single order with its shipping address.
func (r *GORMOrderRepository) GetByID(ctx context.Context, userID, id string) (*models.Order, error) {
	q := orderDetail(r.db.WithContext(ctx)).Preload("ShippingAddress").Where("id = ?", id)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	var order models.Order
	if err := q.First(&order).Error; err != nil {
		return nil, classify(err, apperrors.NotFound("order with ID %s not found", id), "failed to get order")
	}
	return &order, nil
}

// ListAll returns every order, newest first, without items.
func (r *GORMOrderRepository) ListAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, apperrors.Remote("failed to list orders", err)
	}
	return orders, nil
}

// UpdateStatus moves an order from one status to another. It fails with NotFound when the
// order is not in status from, so concurrent transitions cannot both apply.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id, from, to string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return apperrors.Remote("failed to update order status", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("order with ID %s not found in status %s", id, from)
	}
	return nil
}

func (r *GORMOrderRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&n).Error; err != nil {
		return 0, apperrors.Remote("failed to count orders", err)
	}
	return n, nil
}

// Revenue sums the totals of all orders.
func (r *GORMOrderRepository) Revenue(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, apperrors.Remote("failed to sum revenue", err)
	}
	return total, nil
}

// GORMAddressRepository is a GORM implementation of AddressRepository.
type GORMAddressRepository struct {
	db *gorm.DB
}

// NewGORMAddressRepository creates a new instance of GORMAddressRepository.
func NewGORMAddressRepository(db *gorm.DB) *GORMAddressRepository {
	return &GORMAddressRepository{db: db}
}

func (r *GORMAddressRepository) ListByUser(ctx context.Context, userID string) ([]models.Address, error) {
	var addresses []models.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&addresses).Error
	if err != nil {
		return nil, apperrors.Remote("failed to list addresses", err)
	}
	return addresses, nil
}

// ListAll returns every address in creation order.
func (r *GORMAddressRepository) ListAll(ctx context.Context) ([]models.Address, error) {
	var addresses []models.Address
	if err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&addresses).Error; err != nil {
		return nil, apperrors.Remote("failed to list addresses", err)
	}
	return addresses, nil
}
