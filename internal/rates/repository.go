package rates

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads the rate_schedules table.
type Repository interface {
	GetActiveRates(ctx context.Context) ([]RateSchedule, error)
	GetByServiceType(ctx context.Context, serviceType string) (RateSchedule, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a pgx backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const rateColumns = `id, service_type, rate_20_feet, rate_40_feet, COALESCE(description, ''), is_active, created_at`

// GetActiveRates returns active rows ordered by service type.
func (r *repository) GetActiveRates(ctx context.Context) ([]RateSchedule, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+rateColumns+` FROM rate_schedules WHERE is_active ORDER BY service_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RateSchedule
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rate)
	}
	return out, rows.Err()
}

// GetByServiceType matches the service type case-insensitively.
func (r *repository) GetByServiceType(ctx context.Context, serviceType string) (RateSchedule, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+rateColumns+` FROM rate_schedules WHERE LOWER(service_type) = LOWER($1)`, serviceType)
	rate, err := scanRate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return RateSchedule{}, ErrNotFound
	}
	return rate, err
}

func scanRate(row pgx.Row) (RateSchedule, error) {
	var rate RateSchedule
	err := row.Scan(&rate.ID, &rate.ServiceType, &rate.Rate20Feet, &rate.Rate40Feet, &rate.Description, &rate.IsActive, &rate.CreatedAt)
	return rate, err
}
