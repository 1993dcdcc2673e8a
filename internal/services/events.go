package services

import (
	"time"

	"go.uber.org/zap"
)

// Routing keys of the events published on the message bus.
const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
	EventOTPRequested       = "auth.otp_requested"
)

// EventPublisher delivers domain events to the message bus.
type EventPublisher interface {
	PublishEvent(routingKey string, payload any) error
}

// OrderPlacedEvent is published after a checkout commits.
type OrderPlacedEvent struct {
	OrderID       string    `json:"order_id"`
	UserID        string    `json:"user_id"`
	Total         float64   `json:"total"`
	PaymentMethod string    `json:"payment_method"`
	ItemCount     int       `json:"item_count"`
	PlacedAt      time.Time `json:"placed_at"`
}

// OrderStatusChangedEvent is published when the back-office advances an order.
type OrderStatusChangedEvent struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// OTPRequestedEvent carries a sign-in code to the mail worker.
type OTPRequestedEvent struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// publishEvent sends an event if a publisher is configured. Publishing never fails the
// operation that produced the event.
func publishEvent(log *zap.Logger, pub EventPublisher, routingKey string, payload any) {
	if pub == nil {
		return
	}
	if err := pub.PublishEvent(routingKey, payload); err != nil {
		log.Warn("failed to publish event", zap.String("routing_key", routingKey), zap.Error(err))
		return
	}
	log.Debug("event published", zap.String("routing_key", routingKey))
}
