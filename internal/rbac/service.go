package rbac

import (
	"context"
	"errors"

	"github.com/interport-cargo/interport/internal/shared"
)

// ErrUnknownRole indicates a role outside the closed set.
var ErrUnknownRole = errors.New("rbac: unknown role")

// Service answers permission lookups from the static grant table.
type Service struct {
	grants map[shared.Role][]string
}

// NewService constructs a Service.
func NewService() *Service {
	return &Service{grants: grants}
}

// EffectivePermissions returns the permissions granted to role.
func (s *Service) EffectivePermissions(ctx context.Context, role shared.Role) ([]string, error) {
	perms, ok := s.grants[role]
	if !ok {
		return nil, ErrUnknownRole
	}
	return append([]string(nil), perms...), nil
}

// ListPermissions returns every known permission.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return append([]Permission(nil), permissions...), nil
}
