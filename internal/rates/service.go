package rates

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/interport-cargo/interport/internal/quotation/pricing"
	"github.com/interport-cargo/interport/internal/shared"
)

// Service answers rate lookups for the pricing flow.
type Service struct {
	repo        Repository
	cache       *Cache
	gstFallback decimal.Decimal
}

// NewService constructs the rate service. gstFallback applies when no active
// GST row exists.
func NewService(repo Repository, cache *Cache, gstFallback decimal.Decimal) *Service {
	return &Service{repo: repo, cache: cache, gstFallback: gstFallback}
}

// ActiveRates returns every active row, GST included.
func (s *Service) ActiveRates(ctx context.Context) ([]RateSchedule, error) {
	var out []RateSchedule
	err := s.cache.FetchJSON(ctx, &out, func(ctx context.Context) (any, error) {
		return s.repo.GetActiveRates(ctx)
	}, "active")
	return out, err
}

// SelectableRates returns active rows an officer may add to a quotation.
func (s *Service) SelectableRates(ctx context.Context) ([]RateSchedule, error) {
	all, err := s.ActiveRates(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RateSchedule, 0, len(all))
	for _, r := range all {
		if !r.IsGST() {
			out = append(out, r)
		}
	}
	return out, nil
}

// ByServiceType returns one row regardless of its active flag.
func (s *Service) ByServiceType(ctx context.Context, serviceType string) (RateSchedule, error) {
	serviceType = strings.TrimSpace(serviceType)
	if serviceType == "" {
		return RateSchedule{}, fmt.Errorf("%w: service type is required", shared.ErrValidation)
	}
	var out RateSchedule
	err := s.cache.FetchJSON(ctx, &out, func(ctx context.Context) (any, error) {
		return s.repo.GetByServiceType(ctx, serviceType)
	}, "service", strings.ToLower(serviceType))
	return out, err
}

// GSTPercent returns the active GST percentage.
func (s *Service) GSTPercent(ctx context.Context) (decimal.Decimal, error) {
	all, err := s.ActiveRates(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	for _, r := range all {
		if r.IsGST() {
			return r.Rate20Feet, nil
		}
	}
	return s.gstFallback, nil
}

// Lines resolves selected service types against the active table.
func (s *Service) Lines(ctx context.Context, serviceTypes []string) ([]pricing.RateLine, error) {
	all, err := s.ActiveRates(ctx)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]RateSchedule, len(all))
	for _, r := range all {
		byKey[strings.ToLower(r.ServiceType)] = r
	}
	lines := make([]pricing.RateLine, 0, len(serviceTypes))
	for _, st := range serviceTypes {
		if pricing.IsGST(st) {
			return nil, fmt.Errorf("%w: GST cannot be selected as a charge", shared.ErrValidation)
		}
		r, ok := byKey[strings.ToLower(strings.TrimSpace(st))]
		if !ok {
			return nil, fmt.Errorf("%w: no active rate for service type %q", shared.ErrValidation, st)
		}
		lines = append(lines, r.Line())
	}
	return lines, nil
}

// Invalidate drops cached lookups after the table changes.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}
