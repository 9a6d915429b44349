package quotation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/interport-cargo/interport/internal/platform/db"
	"github.com/interport-cargo/interport/internal/quotation/pricing"
)

// Repository provides PostgreSQL backed persistence for quotations.
type Repository interface {
	GetRequest(ctx context.Context, id int64) (Request, error)
	ListRequestsByCustomer(ctx context.Context, customerID int64) ([]Request, error)
	ListRequests(ctx context.Context, status RequestStatus, limit, offset int) ([]Request, int, error)
	DeleteRequest(ctx context.Context, id int64) error
	GetDetailsByRequest(ctx context.Context, requestID int64) (Details, error)
	GetDetailsByNumber(ctx context.Context, number string) (Details, error)
	ListQuotedForCustomer(ctx context.Context, customerID int64) ([]Quoted, error)
	CountByStatus(ctx context.Context) (map[RequestStatus]int, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
	NextNumber(ctx context.Context, docType string, day time.Time) (string, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// WithTx wraps fn in a repeatable-read transaction. Serialization failures
// surface as ErrConcurrentUpdate.
func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
	if db.IsSerializationFailure(err) {
		return fmt.Errorf("%w: %v", ErrConcurrentUpdate, err)
	}
	return err
}

// NextNumber allocates the next daily number, e.g. QT202601150001. It runs
// as its own autocommit statement so that concurrent transactions never
// conflict on the sequence row. Numbers taken by a failed transaction are
// not reused.
func (r *repository) NextNumber(ctx context.Context, docType string, day time.Time) (string, error) {
	period := day.Format("20060102")
	var seq int
	err := r.pool.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq
	`, docType, period).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("allocate %s number: %w", docType, err)
	}
	return FormatNumber(docType, day, seq), nil
}

const requestColumns = `
	id, request_code, customer_id, customer_name, customer_email,
	source, destination, number_of_containers, nature_of_package,
	package_width, package_height, package_depth,
	import_or_export, packing_or_unpacking,
	is_quarantine_required, COALESCE(quarantine_details, ''),
	is_fumigation_required, COALESCE(fumigation_details, ''),
	COALESCE(additional_requirements, ''), status, created_at`

const quotedColumns = `
	q.id, q.request_code, q.customer_id, q.customer_name, q.customer_email,
	q.source, q.destination, q.number_of_containers, q.nature_of_package,
	q.package_width, q.package_height, q.package_depth,
	q.import_or_export, q.packing_or_unpacking,
	q.is_quarantine_required, COALESCE(q.quarantine_details, ''),
	q.is_fumigation_required, COALESCE(q.fumigation_details, ''),
	COALESCE(q.additional_requirements, ''), q.status, q.created_at,
	d.id, d.quotation_number, d.quotation_request_id, d.officer_id, d.officer_name,
	d.date_issued, d.container_type, d.scope, d.subtotal, d.discount_percentage,
	d.discount_amount, d.amount_after_discount, d.gst, d.total_amount,
	d.itemized_charges, d.status, d.created_at`

const detailsColumns = `
	id, quotation_number, quotation_request_id, officer_id, officer_name,
	date_issued, container_type, scope, subtotal, discount_percentage,
	discount_amount, amount_after_discount, gst, total_amount,
	itemized_charges, status, created_at`

// GetRequest loads a request by id.
func (r *repository) GetRequest(ctx context.Context, id int64) (Request, error) {
	return scanRequest(r.pool.QueryRow(ctx, `SELECT `+requestColumns+` FROM quotation_requests WHERE id = $1`, id))
}

// ListRequestsByCustomer returns a customer's requests, newest first.
func (r *repository) ListRequestsByCustomer(ctx context.Context, customerID int64) ([]Request, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+requestColumns+` FROM quotation_requests
		WHERE customer_id = $1 ORDER BY created_at DESC, id DESC`, customerID)
	if err != nil {
		return nil, err
	}
	return collectRequests(rows)
}

// ListRequests pages over all requests, optionally filtered by status.
func (r *repository) ListRequests(ctx context.Context, status RequestStatus, limit, offset int) ([]Request, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM quotation_requests
		WHERE ($1 = '' OR status = $1)`, string(status)).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+requestColumns+` FROM quotation_requests
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`, string(status), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := collectRequests(rows)
	return items, total, err
}

// DeleteRequest removes a request with its details and ledger entries.
func (r *repository) DeleteRequest(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM quotation_requests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// GetDetailsByRequest loads the quotation priced for a request.
func (r *repository) GetDetailsByRequest(ctx context.Context, requestID int64) (Details, error) {
	return scanDetails(r.pool.QueryRow(ctx, `SELECT `+detailsColumns+` FROM quotation_details WHERE quotation_request_id = $1`, requestID))
}

// GetDetailsByNumber loads a quotation by its number.
func (r *repository) GetDetailsByNumber(ctx context.Context, number string) (Details, error) {
	return scanDetails(r.pool.QueryRow(ctx, `SELECT `+detailsColumns+` FROM quotation_details WHERE quotation_number = $1`, number))
}

// ListQuotedForCustomer returns a customer's priced requests, newest quotation first.
func (r *repository) ListQuotedForCustomer(ctx context.Context, customerID int64) ([]Quoted, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+quotedColumns+`
		FROM quotation_details d
		JOIN quotation_requests q ON q.id = d.quotation_request_id
		WHERE q.customer_id = $1 ORDER BY d.date_issued DESC, d.id DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Quoted{}
	for rows.Next() {
		var rs requestScan
		var ds detailsScan
		if err := rows.Scan(append(rs.dest(), ds.dest()...)...); err != nil {
			return nil, err
		}
		details, err := ds.finish()
		if err != nil {
			return nil, err
		}
		out = append(out, Quoted{Request: rs.finish(), Details: details})
	}
	return out, rows.Err()
}

// CountByStatus groups requests by status.
func (r *repository) CountByStatus(ctx context.Context) (map[RequestStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM quotation_requests GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[RequestStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[RequestStatus(status)] = n
	}
	return out, rows.Err()
}

// CountCreatedSince counts requests created at or after since.
func (r *repository) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM quotation_requests WHERE created_at >= $1`, since).Scan(&n)
	return n, err
}

func collectRequests(rows pgx.Rows) ([]Request, error) {
	defer rows.Close()
	var out []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// requestScan holds the scan targets for requestColumns.
type requestScan struct {
	req    Request
	status string
	depth  decimal.NullDecimal
}

func (s *requestScan) dest() []any {
	req := &s.req
	return []any{
		&req.ID, &req.RequestCode, &req.CustomerID, &req.CustomerName, &req.CustomerEmail,
		&req.Source, &req.Destination, &req.NumberOfContainers, &req.NatureOfPackage,
		&req.PackageWidth, &req.PackageHeight, &s.depth,
		&req.ImportOrExport, &req.PackingOrUnpacking,
		&req.IsQuarantineRequired, &req.QuarantineDetails,
		&req.IsFumigationRequired, &req.FumigationDetails,
		&req.AdditionalRequirements, &s.status, &req.CreatedAt,
	}
}

func (s *requestScan) finish() Request {
	req := s.req
	if s.depth.Valid {
		depth := s.depth.Decimal
		req.PackageDepth = &depth
	}
	req.Status = RequestStatus(s.status)
	req.Normalize()
	return req
}

// detailsScan holds the scan targets for detailsColumns.
type detailsScan struct {
	d             Details
	containerType string
	status        string
	charges       []byte
}

func (s *detailsScan) dest() []any {
	d := &s.d
	return []any{
		&d.ID, &d.QuotationNumber, &d.QuotationRequestID, &d.OfficerID, &d.OfficerName,
		&d.DateIssued, &s.containerType, &d.Scope, &d.Subtotal, &d.DiscountPercentage,
		&d.DiscountAmount, &d.AmountAfterDiscount, &d.GST, &d.TotalAmount,
		&s.charges, &s.status, &d.CreatedAt,
	}
}

func (s *detailsScan) finish() (Details, error) {
	d := s.d
	d.ContainerType = pricing.ContainerType(s.containerType)
	d.Status = DetailsStatus(s.status)
	if len(s.charges) > 0 {
		if err := json.Unmarshal(s.charges, &d.ItemizedCharges); err != nil {
			return Details{}, fmt.Errorf("decode itemized charges for %s: %w", d.QuotationNumber, err)
		}
	}
	return d, nil
}

func scanRequest(row pgx.Row) (Request, error) {
	var s requestScan
	err := row.Scan(s.dest()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrRequestNotFound
	}
	if err != nil {
		return Request{}, err
	}
	return s.finish(), nil
}

func scanDetails(row pgx.Row) (Details, error) {
	var s detailsScan
	err := row.Scan(s.dest()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return Details{}, ErrDetailsNotFound
	}
	if err != nil {
		return Details{}, err
	}
	return s.finish()
}
