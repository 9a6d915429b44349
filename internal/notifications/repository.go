package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository reads and flags ledger entries.
type Repository interface {
	Get(ctx context.Context, id int64) (Response, error)
	ListOfficerResponsesForCustomer(ctx context.Context, customerID int64, unreadOnly bool) ([]Response, error)
	ListUnreadForOfficers(ctx context.Context, officerID *int64) ([]Response, error)
	ListCustomerResponsesForRequest(ctx context.Context, requestID int64) ([]Response, error)
	CountUnreadForCustomer(ctx context.Context, customerID int64) (int, error)
	CountUnreadForOfficers(ctx context.Context, officerID *int64) (int, error)
	MarkAsRead(ctx context.Context, id int64) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a pgx backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const responseColumns = `
	r.id, r.quotation_request_id, r.response_type,
	r.officer_id, r.officer_name, r.customer_id, r.customer_name,
	r.status, COALESCE(r.quotation_number, ''), COALESCE(r.message, ''),
	r.created_at, r.is_read, q.customer_id`

const responseFrom = `
	FROM quotation_responses r
	JOIN quotation_requests q ON q.id = r.quotation_request_id`

const newestFirst = ` ORDER BY r.created_at DESC, r.id DESC`

// officerFilter restricts customer responses to requests priced by $1 when set.
const officerFilter = `
	AND ($1::bigint IS NULL OR EXISTS (
		SELECT 1 FROM quotation_details d
		WHERE d.quotation_request_id = r.quotation_request_id AND d.officer_id = $1))`

// Insert appends a response using db, typically the caller's transaction.
func Insert(ctx context.Context, db Querier, resp Response) (Response, error) {
	if err := resp.Validate(); err != nil {
		return Response{}, err
	}
	var officerID, customerID *int64
	var officerName, customerName *string
	if resp.Officer != nil {
		officerID, officerName = &resp.Officer.ID, &resp.Officer.Name
	}
	if resp.Customer != nil {
		customerID, customerName = &resp.Customer.ID, &resp.Customer.Name
	}
	err := db.QueryRow(ctx, `
		INSERT INTO quotation_responses (
			quotation_request_id, response_type, officer_id, officer_name,
			customer_id, customer_name, status, quotation_number, message, is_read
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), FALSE)
		RETURNING id, created_at
	`, resp.QuotationRequestID, resp.Type, officerID, officerName,
		customerID, customerName, resp.Status, resp.QuotationNumber, resp.Message,
	).Scan(&resp.ID, &resp.CreatedAt)
	if err != nil {
		return Response{}, err
	}
	resp.IsRead = false
	return resp, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Response, error) {
	resp, err := scanResponse(r.pool.QueryRow(ctx, `SELECT `+responseColumns+responseFrom+` WHERE r.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Response{}, ErrNotFound
	}
	return resp, err
}

func (r *repository) ListOfficerResponsesForCustomer(ctx context.Context, customerID int64, unreadOnly bool) ([]Response, error) {
	return r.list(ctx, `SELECT `+responseColumns+responseFrom+`
		WHERE q.customer_id = $1 AND r.response_type = 'Officer' AND (NOT $2 OR NOT r.is_read)`+newestFirst,
		customerID, unreadOnly)
}

func (r *repository) ListUnreadForOfficers(ctx context.Context, officerID *int64) ([]Response, error) {
	return r.list(ctx, `SELECT `+responseColumns+responseFrom+`
		WHERE r.response_type = 'Customer' AND NOT r.is_read`+officerFilter+newestFirst, officerID)
}

func (r *repository) ListCustomerResponsesForRequest(ctx context.Context, requestID int64) ([]Response, error) {
	return r.list(ctx, `SELECT `+responseColumns+responseFrom+`
		WHERE r.quotation_request_id = $1 AND r.response_type = 'Customer'`+newestFirst, requestID)
}

func (r *repository) CountUnreadForCustomer(ctx context.Context, customerID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+responseFrom+`
		WHERE q.customer_id = $1 AND r.response_type = 'Officer' AND NOT r.is_read`, customerID).Scan(&n)
	return n, err
}

func (r *repository) CountUnreadForOfficers(ctx context.Context, officerID *int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+responseFrom+`
		WHERE r.response_type = 'Customer' AND NOT r.is_read`+officerFilter, officerID).Scan(&n)
	return n, err
}

// MarkAsRead flips the flag and reports whether a row changed.
func (r *repository) MarkAsRead(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE quotation_responses SET is_read = TRUE WHERE id = $1 AND NOT is_read`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repository) list(ctx context.Context, query string, args ...any) ([]Response, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Response
	for rows.Next() {
		resp, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, rows.Err()
}

func scanResponse(row pgx.Row) (Response, error) {
	var (
		resp                      Response
		officerID, customerID     *int64
		officerName, customerName *string
		createdAt                 time.Time
	)
	err := row.Scan(&resp.ID, &resp.QuotationRequestID, &resp.Type,
		&officerID, &officerName, &customerID, &customerName,
		&resp.Status, &resp.QuotationNumber, &resp.Message,
		&createdAt, &resp.IsRead, &resp.RequestOwnerID)
	if err != nil {
		return Response{}, err
	}
	resp.CreatedAt = createdAt
	if officerID != nil {
		resp.Officer = &Party{ID: *officerID, Name: deref(officerName)}
	}
	if customerID != nil {
		resp.Customer = &Party{ID: *customerID, Name: deref(customerName)}
	}
	return resp, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
