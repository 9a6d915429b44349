package rbac

import "github.com/interport-cargo/interport/internal/shared"

// Permissions checked by route guards.
const (
	PermRequestsSubmit    = "requests.submit"
	PermQuotationsRespond = "quotations.respond"
	PermRequestsReview    = "requests.review"
	PermQuotationsPrepare = "quotations.prepare"
	PermRequestsPurge     = "requests.purge"
	PermRatesManage       = "rates.manage"
	PermPermissionsView   = "permissions.view"
)

// Permission represents an atomic capability.
type Permission struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var permissions = []Permission{
	{Name: PermRequestsSubmit, Description: "Submit and view own quotation requests"},
	{Name: PermQuotationsRespond, Description: "Accept or reject a priced quotation"},
	{Name: PermRequestsReview, Description: "Review, accept and reject quotation requests"},
	{Name: PermQuotationsPrepare, Description: "Price accepted requests"},
	{Name: PermRequestsPurge, Description: "Delete requests with their quotations and notifications"},
	{Name: PermRatesManage, Description: "Invalidate cached rate schedules"},
	{Name: PermPermissionsView, Description: "List permissions"},
}

var staff = []string{PermRequestsReview, PermQuotationsPrepare}

// grants is the role to permission table.
var grants = map[shared.Role][]string{
	shared.RoleCustomer:         {PermRequestsSubmit, PermQuotationsRespond},
	shared.RoleQuotationOfficer: staff,
	shared.RoleBookingOfficer:   staff,
	shared.RoleWarehouseOfficer: staff,
	shared.RoleManager:          staff,
	shared.RoleCIO:              staff,
	shared.RoleAdmin:            append(append([]string{}, staff...), PermRequestsPurge, PermRatesManage, PermPermissionsView),
}
