// Package pricing computes cart and order amounts.
package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

var (
	// FreeDeliveryThreshold is the subtotal from which delivery is free.
	FreeDeliveryThreshold = decimal.NewFromInt(999)
	// FlatDeliveryFee is charged below the threshold.
	FlatDeliveryFee = decimal.NewFromInt(49)
)

// Line is one priced cart or order line.
type Line struct {
	UnitPrice float64
	Quantity  int
}

// Summary is the price breakdown shown at cart and checkout.
type Summary struct {
	ItemCount int     `json:"item_count"`
	Subtotal  float64 `json:"subtotal"`
	Delivery  float64 `json:"delivery"`
	Total     float64 `json:"total"`
}

// Discount returns round((original - price) / original * 100), or 0 when original <= price.
func Discount(price, original float64) int {
	if original <= 0 || original <= price {
		return 0
	}
	return int(math.Round((original - price) / original * 100))
}

func subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(decimal.NewFromFloat(l.UnitPrice).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

// deliveryFee is free for an empty cart or a subtotal of at least 999, otherwise a flat 49.
func deliveryFee(sub decimal.Decimal) decimal.Decimal {
	if sub.IsZero() || sub.GreaterThanOrEqual(FreeDeliveryThreshold) {
		return decimal.Zero
	}
	return FlatDeliveryFee
}

// Summarize builds the full breakdown for a set of lines.
func Summarize(lines []Line) Summary {
	sub := subtotal(lines)
	fee := deliveryFee(sub)
	count := 0
	for _, l := range lines {
		count += l.Quantity
	}
	return Summary{
		ItemCount: count,
		Subtotal:  sub.InexactFloat64(),
		Delivery:  fee.InexactFloat64(),
		Total:     sub.Add(fee).InexactFloat64(),
	}
}

// Equal compares two amounts to the paisa.
func Equal(a, b float64) bool {
	return decimal.NewFromFloat(a).Round(2).Equal(decimal.NewFromFloat(b).Round(2))
}
