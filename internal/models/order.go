package models

import "slices"

// Order statuses, in the only order they may be reached.
const (
	OrderStatusPlaced     = "placed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
)

var orderStatusFlow = []string{
	OrderStatusPlaced,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
}

// Payment methods accepted at checkout.
var PaymentMethods = []string{"upi", "card", "netbanking", "cod"}

// Address is a shipping address owned by a user.
type Address struct {
	Base
	UserID    string `json:"user_id" gorm:"type:varchar(36);index;not null"`
	FullName  string `json:"full_name" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"required,max=20"`
	Street    string `json:"street" validate:"required,max=200"`
	City      string `json:"city" validate:"omitempty,max=100"`
	State     string `json:"state" validate:"omitempty,max=100"`
	Pincode   string `json:"pincode" validate:"required,max=10"`
	IsDefault bool   `json:"is_default"`
}

// OrderItem represents a single item within an order.
type OrderItem struct {
	Base
	OrderID         string   `json:"order_id" gorm:"type:varchar(36);index;not null"`
	ProductID       string   `json:"product_id" gorm:"type:varchar(36);index;not null"`
	Quantity        int      `json:"quantity" gorm:"not null"`
	PriceAtPurchase float64  `json:"price_at_purchase" gorm:"not null"` // snapshot, independent of live price
	Product         *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// Order represents a customer order.
type Order struct {
	Base
	UserID            string      `json:"user_id" gorm:"type:varchar(36);index;not null"`
	TotalPrice        float64     `json:"total_price" gorm:"not null"`
	PaymentMethod     string      `json:"payment_method" gorm:"type:varchar(20);not null"`
	ShippingAddressID string      `json:"shipping_address_id" gorm:"type:varchar(36)"`
	Status            string      `json:"status" gorm:"type:varchar(20);not null;index"`
	Items             []OrderItem `json:"order_items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingAddress   *Address    `json:"address,omitempty" gorm:"foreignKey:ShippingAddressID"`
}

// ItemCount sums the quantities of all lines.
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// ValidOrderStatus reports whether s is a known status.
func ValidOrderStatus(s string) bool {
	return slices.Contains(orderStatusFlow, s)
}

// CanTransition reports whether an order may move from one status to another.
// Transitions only go forward; a status cannot be re-entered.
func CanTransition(from, to string) bool {
	i := slices.Index(orderStatusFlow, from)
	j := slices.Index(orderStatusFlow, to)
	return i >= 0 && j > i
}
