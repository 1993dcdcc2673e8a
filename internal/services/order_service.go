package services

import (
	"context"

	"vastraa/internal/apperrors"
	"vastraa/internal/cache"
	"vastraa/internal/models"
	"vastraa/internal/repositories"
	"vastraa/internal/session"

	"go.uber.org/zap"
)

// CheckoutRequest is what the shopper submits to place an order from their cart.
type CheckoutRequest struct {
	Address       models.Address `json:"address"`
	PaymentMethod string         `json:"payment_method" validate:"required,oneof=upi card netbanking cod"`
	// ExpectedTotal is the total the shopper saw. When set, checkout fails if prices moved.
	ExpectedTotal *float64 `json:"expected_total,omitempty" validate:"omitempty,gte=0"`
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orders repositories.OrderRepository
	cache  *cache.Cache
	events EventPublisher
	log    *zap.Logger
}

// NewOrderService creates a new OrderService. A nil publisher disables order events.
func NewOrderService(orders repositories.OrderRepository, c *cache.Cache, events EventPublisher, log *zap.Logger) *OrderService {
	return &OrderService{
		orders: orders,
		cache:  c,
		events: events,
		log:    log,
	}
}

// Checkout turns the caller's cart into an order. Address, order, items, stock and the
// emptied cart are committed together or not at all.
func (s *OrderService) Checkout(ctx context.Context, sess session.Session, req CheckoutRequest) (*models.Order, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	if err := validateInput(req); err != nil {
		return nil, err
	}

	order, err := s.orders.PlaceOrder(ctx, repositories.PlaceOrderParams{
		UserID:        sess.UserID,
		Address:       req.Address,
		PaymentMethod: req.PaymentMethod,
		ExpectedTotal: req.ExpectedTotal,
	})
	if err != nil {
		s.log.Warn("checkout failed", zap.String("user_id", sess.UserID), zap.Error(err))
		return nil, err
	}
	s.cache.Invalidate(ctx, cartKey(sess.UserID), ordersKey(sess.UserID))

	s.log.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("user_id", sess.UserID),
		zap.Float64("total", order.TotalPrice),
	)
	publishEvent(s.log, s.events, EventOrderPlaced, OrderPlacedEvent{
		OrderID:       order.ID,
		UserID:        order.UserID,
		Total:         order.TotalPrice,
		PaymentMethod: order.PaymentMethod,
		ItemCount:     order.ItemCount(),
		PlacedAt:      order.CreatedAt,
	})
	return order, nil
}

// List returns the caller's orders, newest first. Anonymous callers have no orders.
func (s *OrderService) List(ctx context.Context, sess session.Session) ([]models.Order, error) {
	if !sess.Authenticated() {
		return []models.Order{}, nil
	}
	return cache.Fetch(ctx, s.cache, ordersKey(sess.UserID), func(ctx context.Context) ([]models.Order, error) {
		orders, err := s.orders.ListByUser(ctx, sess.UserID)
		if err != nil {
			return nil, err
		}
		for i := range orders {
			resolveOrder(&orders[i])
		}
		return orders, nil
	})
}

// Get returns one of the caller's orders with items and shipping address.
func (s *OrderService) Get(ctx context.Context, sess session.Session, id string) (*models.Order, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	order, err := cache.Fetch(ctx, s.cache, orderKey(id), func(ctx context.Context) (*models.Order, error) {
		o, err := s.orders.GetByID(ctx, sess.UserID, id)
		if err != nil {
			return nil, err
		}
		resolveOrder(o)
		return o, nil
	})
	if err != nil {
		return nil, err
	}
	if order.UserID != sess.UserID {
		return nil, apperrors.NotFound("order with ID %s not found", id)
	}
	return order, nil
}

// ListAll returns every order for the back-office.
func (s *OrderService) ListAll(ctx context.Context) ([]models.Order, error) {
	return s.orders.ListAll(ctx)
}

// AdvanceStatus moves an order forward along placed, processing, shipped, delivered.
func (s *OrderService) AdvanceStatus(ctx context.Context, id, status string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, apperrors.Validation("invalid order status: %s", status)
	}
	order, err := s.orders.GetByID(ctx, "", id)
	if err != nil {
		return nil, err
	}
	from := order.Status
	if !models.CanTransition(from, status) {
		return nil, apperrors.Validation("order %s cannot move from %s to %s", id, from, status)
	}
	if err := s.orders.UpdateStatus(ctx, id, from, status); err != nil {
		return nil, err
	}
	order.Status = status
	s.cache.Invalidate(ctx, orderKey(id), ordersKey(order.UserID))

	s.log.Info("order status changed",
		zap.String("order_id", id),
		zap.String("from", from),
		zap.String("to", status),
	)
	publishEvent(s.log, s.events, EventOrderStatusChanged, OrderStatusChangedEvent{
		OrderID: id,
		UserID:  order.UserID,
		From:    from,
		To:      status,
	})
	return order, nil
}

func resolveOrder(o *models.Order) {
	for i := range o.Items {
		if o.Items[i].Product != nil {
			o.Items[i].Product.Resolve()
		}
	}
}
