// Package pricing computes quotation figures: the volume discount tier and the
// subtotal, discount, GST and total assembled from rate schedule lines.
package pricing

import "github.com/shopspring/decimal"

// Discount tiers in percent.
var (
	DiscountNone     = decimal.Zero
	DiscountSingle   = decimal.RequireFromString("2.5")
	DiscountBoth     = decimal.NewFromInt(5)
	DiscountBothBulk = decimal.NewFromInt(10)

	hundred = decimal.NewFromInt(100)
)

// Container count thresholds. Both are strict lower bounds.
const (
	discountMinContainers     = 5
	discountBulkMinContainers = 10
)

// Factors are the request attributes the discount depends on.
type Factors struct {
	Containers int
	Quarantine bool
	Fumigation bool
}

// CalculateDiscount returns the discount percentage for a request. Rules are
// evaluated in order and the first match wins.
func CalculateDiscount(f Factors) decimal.Decimal {
	both := f.Quarantine && f.Fumigation
	switch {
	case f.Containers > discountBulkMinContainers && both:
		return DiscountBothBulk
	case f.Containers > discountMinContainers && both:
		return DiscountBoth
	case f.Containers > discountMinContainers && (f.Quarantine || f.Fumigation):
		return DiscountSingle
	default:
		return DiscountNone
	}
}

// CalculateDiscountAmount returns subtotal × percentage / 100.
func CalculateDiscountAmount(subtotal, percentage decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(percentage).Div(hundred)
}
