package quotation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/interport-cargo/interport/internal/notifications"
	"github.com/interport-cargo/interport/internal/platform/db"
)

// Document types numbered through document_sequences.
const (
	DocRequest   = "REQ"
	DocQuotation = "QT"
)

// detailsRequestUnique is the 1:1 constraint between requests and details.
const detailsRequestUnique = "quotation_details_quotation_request_id_key"

// TxRepository exposes transactional operations.
type TxRepository interface {
	GetRequestForUpdate(ctx context.Context, id int64) (Request, error)
	GetDetailsByRequestForUpdate(ctx context.Context, requestID int64) (Details, error)
	InsertRequest(ctx context.Context, req Request) (Request, error)
	InsertDetails(ctx context.Context, d Details) (Details, error)
	TransitionRequest(ctx context.Context, id int64, from, to RequestStatus) error
	TransitionDetails(ctx context.Context, id int64, from, to DetailsStatus) error
	AppendResponse(ctx context.Context, resp notifications.Response) (notifications.Response, error)
}

type txRepo struct {
	tx pgx.Tx
}

func (r *txRepo) GetRequestForUpdate(ctx context.Context, id int64) (Request, error) {
	return scanRequest(r.tx.QueryRow(ctx, `SELECT `+requestColumns+` FROM quotation_requests WHERE id = $1 FOR UPDATE`, id))
}

func (r *txRepo) GetDetailsByRequestForUpdate(ctx context.Context, requestID int64) (Details, error) {
	return scanDetails(r.tx.QueryRow(ctx, `SELECT `+detailsColumns+` FROM quotation_details WHERE quotation_request_id = $1 FOR UPDATE`, requestID))
}

func (r *txRepo) InsertRequest(ctx context.Context, req Request) (Request, error) {
	req.Normalize()
	err := r.tx.QueryRow(ctx, `
		INSERT INTO quotation_requests (
			request_code, customer_id, customer_name, customer_email,
			source, destination, number_of_containers, nature_of_package,
			package_width, package_height, package_depth,
			import_or_export, packing_or_unpacking,
			is_quarantine_required, quarantine_details,
			is_fumigation_required, fumigation_details,
			additional_requirements, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			NULLIF($15, ''), $16, NULLIF($17, ''), NULLIF($18, ''), $19)
		RETURNING id, created_at
	`, req.RequestCode, req.CustomerID, req.CustomerName, req.CustomerEmail,
		req.Source, req.Destination, req.NumberOfContainers, req.NatureOfPackage,
		req.PackageWidth, req.PackageHeight, req.PackageDepth,
		req.ImportOrExport, req.PackingOrUnpacking,
		req.IsQuarantineRequired, req.QuarantineDetails,
		req.IsFumigationRequired, req.FumigationDetails,
		req.AdditionalRequirements, string(req.Status),
	).Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		return Request{}, err
	}
	return req, nil
}

// InsertDetails maps a duplicate on the request id to ErrAlreadyPrepared.
func (r *txRepo) InsertDetails(ctx context.Context, d Details) (Details, error) {
	charges, err := json.Marshal(d.ItemizedCharges)
	if err != nil {
		return Details{}, fmt.Errorf("encode itemized charges: %w", err)
	}
	err = r.tx.QueryRow(ctx, `
		INSERT INTO quotation_details (
			quotation_number, quotation_request_id, officer_id, officer_name,
			date_issued, container_type, scope, subtotal, discount_percentage,
			discount_amount, amount_after_discount, gst, total_amount,
			itemized_charges, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at
	`, d.QuotationNumber, d.QuotationRequestID, d.OfficerID, d.OfficerName,
		d.DateIssued, string(d.ContainerType), d.Scope, d.Subtotal, d.DiscountPercentage,
		d.DiscountAmount, d.AmountAfterDiscount, d.GST, d.TotalAmount,
		charges, string(d.Status),
	).Scan(&d.ID, &d.CreatedAt)
	if db.IsUniqueViolation(err, detailsRequestUnique) {
		return Details{}, ErrAlreadyPrepared
	}
	if err != nil {
		return Details{}, err
	}
	return d, nil
}

// TransitionRequest moves a request from one status to another. A row that
// is no longer in from yields ErrConcurrentUpdate.
func (r *txRepo) TransitionRequest(ctx context.Context, id int64, from, to RequestStatus) error {
	tag, err := r.tx.Exec(ctx, `UPDATE quotation_requests SET status = $3 WHERE id = $1 AND status = $2`, id, string(from), string(to))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConcurrentUpdate
	}
	return nil
}

func (r *txRepo) TransitionDetails(ctx context.Context, id int64, from, to DetailsStatus) error {
	tag, err := r.tx.Exec(ctx, `UPDATE quotation_details SET status = $3 WHERE id = $1 AND status = $2`, id, string(from), string(to))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConcurrentUpdate
	}
	return nil
}

func (r *txRepo) AppendResponse(ctx context.Context, resp notifications.Response) (notifications.Response, error) {
	return notifications.Insert(ctx, r.tx, resp)
}

// FormatNumber renders a document number from its parts.
func FormatNumber(docType string, day time.Time, seq int) string {
	return fmt.Sprintf("%s%s%04d", docType, day.Format("20060102"), seq)
}
