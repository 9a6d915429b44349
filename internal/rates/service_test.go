package rates

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interport-cargo/interport/internal/shared"
)

type memoryRateRepo struct {
	mu          sync.Mutex
	rows        []RateSchedule
	activeCalls int
}

func (m *memoryRateRepo) GetActiveRates(ctx context.Context) ([]RateSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeCalls++
	var out []RateSchedule
	for _, r := range m.rows {
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryRateRepo) GetByServiceType(ctx context.Context, serviceType string) (RateSchedule, error) {
	for _, r := range m.rows {
		if strings.EqualFold(r.ServiceType, serviceType) {
			return r, nil
		}
	}
	return RateSchedule{}, ErrNotFound
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleRows() []RateSchedule {
	return []RateSchedule{
		{ID: 1, ServiceType: "Wharf Booking", Rate20Feet: dec("60"), Rate40Feet: dec("70"), IsActive: true},
		{ID: 2, ServiceType: "Lift on/Lift off", Rate20Feet: dec("80"), Rate40Feet: dec("120"), IsActive: true},
		{ID: 3, ServiceType: "GST", Rate20Feet: dec("10"), Rate40Feet: dec("10"), IsActive: true},
		{ID: 4, ServiceType: "Legacy Handling", Rate20Feet: dec("5"), Rate40Feet: dec("5"), IsActive: false},
	}
}

func newTestService(t *testing.T, repo Repository) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(repo, NewCache(client, time.Minute, nil), dec("10")), mr
}

func TestSelectableRatesExcludeGSTAndInactive(t *testing.T) {
	svc, _ := newTestService(t, &memoryRateRepo{rows: sampleRows()})

	rates, err := svc.SelectableRates(context.Background())
	require.NoError(t, err)
	require.Len(t, rates, 2)
	for _, r := range rates {
		assert.False(t, r.IsGST())
		assert.True(t, r.IsActive)
	}
}

func TestActiveRatesServedFromCache(t *testing.T) {
	repo := &memoryRateRepo{rows: sampleRows()}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.ActiveRates(ctx)
	require.NoError(t, err)
	got, err := svc.ActiveRates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.activeCalls)
	assert.True(t, got[0].Rate20Feet.Equal(dec("60")))

	require.NoError(t, svc.Invalidate(ctx))
	_, err = svc.ActiveRates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.activeCalls)
}

func TestGSTPercentFallsBack(t *testing.T) {
	svc, _ := newTestService(t, &memoryRateRepo{rows: sampleRows()[:2]})
	gst, err := svc.GSTPercent(context.Background())
	require.NoError(t, err)
	assert.True(t, gst.Equal(dec("10")))

	rows := sampleRows()
	rows[2].Rate20Feet = dec("12.5")
	svc, _ = newTestService(t, &memoryRateRepo{rows: rows})
	gst, err = svc.GSTPercent(context.Background())
	require.NoError(t, err)
	assert.True(t, gst.Equal(dec("12.5")))
}

func TestLinesResolvesSelection(t *testing.T) {
	svc, _ := newTestService(t, &memoryRateRepo{rows: sampleRows()})
	ctx := context.Background()

	lines, err := svc.Lines(ctx, []string{"wharf booking", "Lift on/Lift off"})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "Wharf Booking", lines[0].ServiceType)

	_, err = svc.Lines(ctx, []string{"gst"})
	assert.ErrorIs(t, err, shared.ErrValidation)
	_, err = svc.Lines(ctx, []string{"Legacy Handling"})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestByServiceType(t *testing.T) {
	svc, _ := newTestService(t, &memoryRateRepo{rows: sampleRows()})
	ctx := context.Background()

	r, err := svc.ByServiceType(ctx, "legacy handling")
	require.NoError(t, err)
	assert.False(t, r.IsActive)

	_, err = svc.ByServiceType(ctx, "Teleport")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = svc.ByServiceType(ctx, " ")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestCacheWithoutClientCallsLoader(t *testing.T) {
	repo := &memoryRateRepo{rows: sampleRows()}
	svc := NewService(repo, NewCache(nil, time.Minute, nil), dec("10"))
	_, err := svc.ActiveRates(context.Background())
	require.NoError(t, err)
	_, err = svc.ActiveRates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.activeCalls)
}

func TestRedisFailureServesFromRepository(t *testing.T) {
	repo := &memoryRateRepo{rows: sampleRows()}
	svc, mr := newTestService(t, repo)
	ctx := context.Background()

	mr.SetError("LOADING Redis is loading the dataset in memory")
	got, err := svc.ActiveRates(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	_, err = svc.SelectableRates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.activeCalls)

	mr.SetError("")
	_, err = svc.ActiveRates(ctx)
	require.NoError(t, err)
	_, err = svc.ActiveRates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, repo.activeCalls)
}
