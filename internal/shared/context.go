package shared

import (
	"context"
	"strings"
)

// Role identifies the kind of actor calling the service.
type Role string

const (
	RoleCustomer         Role = "Customer"
	RoleAdmin            Role = "Admin"
	RoleQuotationOfficer Role = "QuotationOfficer"
	RoleBookingOfficer   Role = "BookingOfficer"
	RoleWarehouseOfficer Role = "WarehouseOfficer"
	RoleManager          Role = "Manager"
	RoleCIO              Role = "CIO"
)

// ParseRole matches a role name case-insensitively.
func ParseRole(raw string) (Role, bool) {
	for _, r := range []Role{RoleCustomer, RoleAdmin, RoleQuotationOfficer, RoleBookingOfficer, RoleWarehouseOfficer, RoleManager, RoleCIO} {
		if strings.EqualFold(string(r), strings.TrimSpace(raw)) {
			return r, true
		}
	}
	return "", false
}

// IsStaff reports whether the role is any employee type.
func (r Role) IsStaff() bool {
	switch r {
	case RoleAdmin, RoleQuotationOfficer, RoleBookingOfficer, RoleWarehouseOfficer, RoleManager, RoleCIO:
		return true
	}
	return false
}

// Actor is the authenticated caller as asserted by the upstream gateway.
type Actor struct {
	ID    int64
	Name  string
	Email string
	Role  Role
}

// IsCustomer reports whether the actor is a customer.
func (a Actor) IsCustomer() bool { return a.Role == RoleCustomer }

// IsOfficer reports whether the actor is staff.
func (a Actor) IsOfficer() bool { return a.Role.IsStaff() }

type actorContextKey struct{}

// ContextWithActor stores the actor in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from context.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}
