package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/interport-cargo/interport/internal/shared"
)

// GSTServiceType is the rate schedule row holding the tax percentage. It is
// never a selectable charge.
const GSTServiceType = "GST"

// ContainerType selects which rate column applies.
type ContainerType string

const (
	Container20Feet ContainerType = "20 Feet Container"
	Container40Feet ContainerType = "40 Feet Container"
)

// IsValid checks the container type against the closed set.
func (c ContainerType) IsValid() bool {
	return c == Container20Feet || c == Container40Feet
}

// ContainerTypes lists the selectable container types.
func ContainerTypes() []ContainerType {
	return []ContainerType{Container20Feet, Container40Feet}
}

// IsGST reports whether serviceType names the tax row.
func IsGST(serviceType string) bool {
	return strings.EqualFold(strings.TrimSpace(serviceType), GSTServiceType)
}

// RateLine is one rate schedule entry offered to the officer.
type RateLine struct {
	ServiceType string
	Rate20Feet  decimal.Decimal
	Rate40Feet  decimal.Decimal
}

// RateFor returns the rate for the container type.
func (l RateLine) RateFor(ct ContainerType) (decimal.Decimal, error) {
	switch ct {
	case Container20Feet:
		return l.Rate20Feet, nil
	case Container40Feet:
		return l.Rate40Feet, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown container type %q", shared.ErrValidation, ct)
	}
}

// Charge is a priced line stored with the quotation.
type Charge struct {
	ServiceType string          `json:"service_type"`
	Rate        decimal.Decimal `json:"rate"`
}

// Input feeds Assemble.
type Input struct {
	Factors       Factors
	ContainerType ContainerType
	Lines         []RateLine
	GSTPercent    decimal.Decimal
}

// Breakdown holds every monetary figure of a quotation.
type Breakdown struct {
	Subtotal            decimal.Decimal `json:"subtotal"`
	DiscountPercentage  decimal.Decimal `json:"discount_percentage"`
	DiscountAmount      decimal.Decimal `json:"discount_amount"`
	AmountAfterDiscount decimal.Decimal `json:"amount_after_discount"`
	GST                 decimal.Decimal `json:"gst"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	Charges             []Charge        `json:"charges"`
}

// Assemble prices the selected lines for the container type, then applies the
// discount tier and GST.
func Assemble(in Input) (Breakdown, error) {
	if !in.ContainerType.IsValid() {
		return Breakdown{}, fmt.Errorf("%w: unknown container type %q", shared.ErrValidation, in.ContainerType)
	}
	if len(in.Lines) == 0 {
		return Breakdown{}, fmt.Errorf("%w: at least one rate line is required", shared.ErrValidation)
	}
	if in.GSTPercent.IsNegative() {
		return Breakdown{}, fmt.Errorf("%w: GST percentage cannot be negative", shared.ErrValidation)
	}

	seen := make(map[string]struct{}, len(in.Lines))
	charges := make([]Charge, 0, len(in.Lines))
	subtotal := decimal.Zero
	for _, line := range in.Lines {
		if IsGST(line.ServiceType) {
			return Breakdown{}, fmt.Errorf("%w: GST cannot be selected as a charge", shared.ErrValidation)
		}
		key := strings.ToLower(strings.TrimSpace(line.ServiceType))
		if _, dup := seen[key]; dup {
			return Breakdown{}, fmt.Errorf("%w: service type %q selected twice", shared.ErrValidation, line.ServiceType)
		}
		seen[key] = struct{}{}

		rate, err := line.RateFor(in.ContainerType)
		if err != nil {
			return Breakdown{}, err
		}
		if rate.IsNegative() {
			return Breakdown{}, fmt.Errorf("%w: rate for %q is negative", shared.ErrValidation, line.ServiceType)
		}
		subtotal = subtotal.Add(rate)
		charges = append(charges, Charge{ServiceType: line.ServiceType, Rate: rate})
	}

	b := Summarize(subtotal, CalculateDiscount(in.Factors), in.GSTPercent)
	b.Charges = charges
	return b, nil
}

// Summarize derives discount, GST and total from a subtotal.
func Summarize(subtotal, discountPercent, gstPercent decimal.Decimal) Breakdown {
	discount := CalculateDiscountAmount(subtotal, discountPercent)
	after := subtotal.Sub(discount)
	gst := after.Mul(gstPercent).Div(hundred)
	return Breakdown{
		Subtotal:            subtotal,
		DiscountPercentage:  discountPercent,
		DiscountAmount:      discount,
		AmountAfterDiscount: after,
		GST:                 gst,
		TotalAmount:         after.Add(gst),
	}
}
