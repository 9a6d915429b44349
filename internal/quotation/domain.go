// Package quotation runs the freight quotation lifecycle: customer requests,
// officer decisions and pricing, and the customer's verdict on the price.
package quotation

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/interport-cargo/interport/internal/quotation/pricing"
)

// RequestStatus is the lifecycle state of a quotation request.
type RequestStatus string

const (
	RequestPending        RequestStatus = "Pending"         // Awaiting an officer decision
	RequestAccepted       RequestStatus = "Accepted"        // Officer accepted, pricing may follow
	RequestRejected       RequestStatus = "Rejected"        // Officer rejected, terminal
	RequestQuotedAccepted RequestStatus = "Quoted-Accepted" // Customer accepted the price, terminal
	RequestQuotedRejected RequestStatus = "Quoted-Rejected" // Customer rejected the price, terminal
)

// IsValid checks if the status is valid.
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestPending, RequestAccepted, RequestRejected, RequestQuotedAccepted, RequestQuotedRejected:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further action is accepted.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestRejected || s == RequestQuotedAccepted || s == RequestQuotedRejected
}

// CanOfficerDecide checks if an officer may accept or reject.
func (s RequestStatus) CanOfficerDecide() bool {
	return s == RequestPending
}

// CanPrepare checks if pricing may be prepared.
func (s RequestStatus) CanPrepare() bool {
	return s == RequestAccepted
}

// CanCustomerDecide checks if the customer may accept or reject the price.
func (s RequestStatus) CanCustomerDecide() bool {
	return s == RequestAccepted
}

// DetailsStatus is the customer's verdict on a priced quotation.
type DetailsStatus string

const (
	DetailsPending  DetailsStatus = "Pending"
	DetailsAccepted DetailsStatus = "Accepted"
	DetailsRejected DetailsStatus = "Rejected"
)

// IsValid checks if the status is valid.
func (s DetailsStatus) IsValid() bool {
	return s == DetailsPending || s == DetailsAccepted || s == DetailsRejected
}

// CanCustomerDecide checks if the price still awaits the customer.
func (s DetailsStatus) CanCustomerDecide() bool {
	return s == DetailsPending
}

// Request is a customer's shipment quotation ask.
type Request struct {
	ID                     int64            `json:"id"`
	RequestCode            string           `json:"request_code"`
	CustomerID             int64            `json:"customer_id"`
	CustomerName           string           `json:"customer_name"`
	CustomerEmail          string           `json:"customer_email"`
	Source                 string           `json:"source"`
	Destination            string           `json:"destination"`
	NumberOfContainers     int              `json:"number_of_containers"`
	NatureOfPackage        string           `json:"nature_of_package"`
	PackageWidth           decimal.Decimal  `json:"package_width"`
	PackageHeight          decimal.Decimal  `json:"package_height"`
	PackageDepth           *decimal.Decimal `json:"package_depth,omitempty"`
	ImportOrExport         string           `json:"import_or_export"`
	PackingOrUnpacking     string           `json:"packing_or_unpacking"`
	IsQuarantineRequired   bool             `json:"is_quarantine_required"`
	QuarantineDetails      string           `json:"quarantine_details,omitempty"`
	IsFumigationRequired   bool             `json:"is_fumigation_required"`
	FumigationDetails      string           `json:"fumigation_details,omitempty"`
	AdditionalRequirements string           `json:"additional_requirements,omitempty"`
	Status                 RequestStatus    `json:"status"`
	CreatedAt              time.Time        `json:"created_at"`
}

// Normalize blanks detail text whose flag is off and trims free text.
func (r *Request) Normalize() {
	r.QuarantineDetails = strings.TrimSpace(r.QuarantineDetails)
	r.FumigationDetails = strings.TrimSpace(r.FumigationDetails)
	if !r.IsQuarantineRequired {
		r.QuarantineDetails = ""
	}
	if !r.IsFumigationRequired {
		r.FumigationDetails = ""
	}
	r.AdditionalRequirements = strings.TrimSpace(r.AdditionalRequirements)
}

// DiscountFactors exposes the attributes the discount depends on.
func (r Request) DiscountFactors() pricing.Factors {
	return pricing.Factors{
		Containers: r.NumberOfContainers,
		Quarantine: r.IsQuarantineRequired,
		Fumigation: r.IsFumigationRequired,
	}
}

// SuggestedScope drafts the scope text an officer starts from.
func (r Request) SuggestedScope() string {
	return fmt.Sprintf("Transport %s from %s to %s. %s with %s service.",
		r.NatureOfPackage, r.Source, r.Destination, r.ImportOrExport, r.PackingOrUnpacking)
}

// Details is the officer-priced quotation for one request.
type Details struct {
	ID                  int64                 `json:"id"`
	QuotationNumber     string                `json:"quotation_number"`
	QuotationRequestID  int64                 `json:"quotation_request_id"`
	OfficerID           int64                 `json:"officer_id"`
	OfficerName         string                `json:"officer_name"`
	DateIssued          time.Time             `json:"date_issued"`
	ContainerType       pricing.ContainerType `json:"container_type"`
	Scope               string                `json:"scope"`
	Subtotal            decimal.Decimal       `json:"subtotal"`
	DiscountPercentage  decimal.Decimal       `json:"discount_percentage"`
	DiscountAmount      decimal.Decimal       `json:"discount_amount"`
	AmountAfterDiscount decimal.Decimal       `json:"amount_after_discount"`
	GST                 decimal.Decimal       `json:"gst"`
	TotalAmount         decimal.Decimal       `json:"total_amount"`
	ItemizedCharges     []pricing.Charge      `json:"itemized_charges,omitempty"`
	Status              DetailsStatus         `json:"status"`
	CreatedAt           time.Time             `json:"created_at"`
}

// ApplyBreakdown copies priced figures onto the details.
func (d *Details) ApplyBreakdown(b pricing.Breakdown) {
	d.Subtotal = b.Subtotal
	d.DiscountPercentage = b.DiscountPercentage
	d.DiscountAmount = b.DiscountAmount
	d.AmountAfterDiscount = b.AmountAfterDiscount
	d.GST = b.GST
	d.TotalAmount = b.TotalAmount
	d.ItemizedCharges = b.Charges
}

// Quoted pairs a request with its details for customer-facing views.
type Quoted struct {
	Request Request `json:"request"`
	Details Details `json:"details"`
}

// Summary is the officer dashboard snapshot.
type Summary struct {
	ByStatus     map[RequestStatus]int `json:"by_status"`
	CreatedToday int                   `json:"created_today"`
	CreatedWeek  int                   `json:"created_this_week"`
	CreatedMonth int                   `json:"created_this_month"`
	GeneratedAt  time.Time             `json:"generated_at"`
}
