// Package rates serves the rate schedule: per-service charges for 20 and 40
// foot containers plus the GST percentage row.
package rates

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/interport-cargo/interport/internal/quotation/pricing"
	"github.com/interport-cargo/interport/internal/shared"
)

// ErrNotFound indicates no rate schedule row for a service type.
var ErrNotFound = fmt.Errorf("%w: rate schedule", shared.ErrNotFound)

// ErrInactive indicates the requested service type is switched off.
var ErrInactive = errors.New("rate schedule is inactive")

// RateSchedule is one service line of the rate table.
type RateSchedule struct {
	ID          int64           `json:"id"`
	ServiceType string          `json:"service_type"`
	Rate20Feet  decimal.Decimal `json:"rate_20_feet"`
	Rate40Feet  decimal.Decimal `json:"rate_40_feet"`
	Description string          `json:"description,omitempty"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
}

// IsGST reports whether the row carries the tax percentage.
func (r RateSchedule) IsGST() bool {
	return pricing.IsGST(r.ServiceType)
}

// Line converts the row into a pricing input line.
func (r RateSchedule) Line() pricing.RateLine {
	return pricing.RateLine{ServiceType: r.ServiceType, Rate20Feet: r.Rate20Feet, Rate40Feet: r.Rate40Feet}
}
