package quotation

import (
	"github.com/shopspring/decimal"

	"github.com/interport-cargo/interport/internal/quotation/pricing"
	"github.com/interport-cargo/interport/internal/rates"
	"github.com/interport-cargo/interport/internal/shared"
)

// SubmitInput is the customer's request form.
type SubmitInput struct {
	Source                 string           `json:"source" validate:"required,max=100"`
	Destination            string           `json:"destination" validate:"required,max=100"`
	NumberOfContainers     int              `json:"number_of_containers" validate:"required,gt=0,lte=10000"`
	NatureOfPackage        string           `json:"nature_of_package" validate:"required,max=100"`
	PackageWidth           *decimal.Decimal `json:"package_width" validate:"required"`
	PackageHeight          *decimal.Decimal `json:"package_height" validate:"required"`
	PackageDepth           *decimal.Decimal `json:"package_depth"`
	ImportOrExport         string           `json:"import_or_export" validate:"required,max=20"`
	PackingOrUnpacking     string           `json:"packing_or_unpacking" validate:"required,max=20"`
	IsQuarantineRequired   bool             `json:"is_quarantine_required"`
	QuarantineDetails      string           `json:"quarantine_details" validate:"max=2000"`
	IsFumigationRequired   bool             `json:"is_fumigation_required"`
	FumigationDetails      string           `json:"fumigation_details" validate:"max=2000"`
	AdditionalRequirements string           `json:"additional_requirements" validate:"max=2000"`
}

// RejectInput carries the officer's rejection message.
type RejectInput struct {
	Message string `json:"message"`
}

// CustomerRejectInput carries the customer's rejection reason.
type CustomerRejectInput struct {
	Reason string `json:"reason"`
}

// PrepareInput is the officer's pricing selection.
type PrepareInput struct {
	ContainerType pricing.ContainerType `json:"container_type" validate:"required"`
	ServiceTypes  []string              `json:"service_types" validate:"required,min=1,dive,required,max=100"`
	Scope         string                `json:"scope" validate:"max=2000"`
}

// ListFilter narrows the officer request listing.
type ListFilter struct {
	Status  RequestStatus
	Page    int
	PerPage int
}

// Preview is the pricing form state for a request. Breakdown is set when a
// selection was supplied.
type Preview struct {
	RequestID          int64                   `json:"request_id"`
	DiscountPercentage decimal.Decimal         `json:"discount_percentage"`
	SuggestedScope     string                  `json:"suggested_scope"`
	GSTPercent         decimal.Decimal         `json:"gst_percent"`
	ContainerTypes     []pricing.ContainerType `json:"container_types"`
	Rates              []rates.RateSchedule    `json:"rates"`
	Breakdown          *pricing.Breakdown      `json:"breakdown,omitempty"`
}

// RequestPage is one page of the officer request listing.
type RequestPage struct {
	Requests   []Request         `json:"requests"`
	Pagination shared.Pagination `json:"pagination"`
}
