package quotation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"

	"github.com/interport-cargo/interport/internal/notifications"
	"github.com/interport-cargo/interport/internal/observability"
	"github.com/interport-cargo/interport/internal/quotation/pricing"
	"github.com/interport-cargo/interport/internal/rates"
	"github.com/interport-cargo/interport/internal/shared"
)

// RatePort resolves rate schedule data for pricing.
type RatePort interface {
	SelectableRates(ctx context.Context) ([]rates.RateSchedule, error)
	Lines(ctx context.Context, serviceTypes []string) ([]pricing.RateLine, error)
	GSTPercent(ctx context.Context) (decimal.Decimal, error)
}

// Notifier fans committed ledger entries out, typically by email.
type Notifier interface {
	Dispatch(ctx context.Context, resp notifications.Response, customerEmail string)
}

// AuditPort records transitions.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// TransitionObserver counts transition outcomes.
type TransitionObserver interface {
	ObserveTransition(action, outcome string)
}

// Transition actions, used for audit and metrics.
const (
	ActionSubmit         = "submit"
	ActionAccept         = "accept"
	ActionReject         = "reject"
	ActionPrepare        = "prepare"
	ActionCustomerAccept = "customer_accept"
	ActionCustomerReject = "customer_reject"
	ActionPurge          = "purge"
)

// Service orchestrates the quotation lifecycle.
type Service struct {
	repo     Repository
	rates    RatePort
	notifier Notifier
	audit    AuditPort
	metrics  TransitionObserver
	logger   *slog.Logger
	clock    func() time.Time
}

// NewService constructs the service. notifier, audit and metrics may be nil.
func NewService(repo Repository, rates RatePort, notifier Notifier, audit AuditPort, metrics TransitionObserver, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		rates:    rates,
		notifier: notifier,
		audit:    audit,
		metrics:  metrics,
		logger:   logger,
		clock:    time.Now,
	}
}

// WithClock overrides the time source.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// Submit records a customer's request as Pending under a fresh request code.
func (s *Service) Submit(ctx context.Context, actor shared.Actor, in SubmitInput) shared.Result[Request] {
	if !actor.IsCustomer() {
		return shared.Failure[Request](fmt.Errorf("%w: only customers submit requests", shared.ErrForbidden))
	}
	if err := ValidateSubmit(in); err != nil {
		s.observe(ActionSubmit, err)
		return shared.Failure[Request](err)
	}

	req := Request{
		CustomerID:             actor.ID,
		CustomerName:           actor.Name,
		CustomerEmail:          actor.Email,
		Source:                 strings.TrimSpace(in.Source),
		Destination:            strings.TrimSpace(in.Destination),
		NumberOfContainers:     in.NumberOfContainers,
		NatureOfPackage:        strings.TrimSpace(in.NatureOfPackage),
		PackageWidth:           *in.PackageWidth,
		PackageHeight:          *in.PackageHeight,
		PackageDepth:           in.PackageDepth,
		ImportOrExport:         strings.TrimSpace(in.ImportOrExport),
		PackingOrUnpacking:     strings.TrimSpace(in.PackingOrUnpacking),
		IsQuarantineRequired:   in.IsQuarantineRequired,
		QuarantineDetails:      in.QuarantineDetails,
		IsFumigationRequired:   in.IsFumigationRequired,
		FumigationDetails:      in.FumigationDetails,
		AdditionalRequirements: in.AdditionalRequirements,
		Status:                 RequestPending,
	}
	req.Normalize()

	code, err := s.repo.NextNumber(ctx, DocRequest, s.clock())
	if err != nil {
		s.observe(ActionSubmit, err)
		return shared.Failure[Request](err)
	}
	req.RequestCode = code
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inserted, err := tx.InsertRequest(ctx, req)
		if err != nil {
			return err
		}
		req = inserted
		return nil
	})
	s.observe(ActionSubmit, err)
	if err != nil {
		return shared.Failure[Request](err)
	}
	s.record(ctx, actor, ActionSubmit, req.ID, map[string]any{"request_code": req.RequestCode})
	return shared.Success(req)
}

// Get returns a request. Customers only see their own.
func (s *Service) Get(ctx context.Context, actor shared.Actor, id int64) (Request, error) {
	req, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if err := visible(actor, req); err != nil {
		return Request{}, err
	}
	return req, nil
}

// ListMine returns the customer's requests, newest first.
func (s *Service) ListMine(ctx context.Context, actor shared.Actor) ([]Request, error) {
	if !actor.IsCustomer() {
		return nil, shared.ErrForbidden
	}
	return s.repo.ListRequestsByCustomer(ctx, actor.ID)
}

// ListAll pages over every request for officers.
func (s *Service) ListAll(ctx context.Context, actor shared.Actor, filter ListFilter) (RequestPage, error) {
	if !actor.IsOfficer() {
		return RequestPage{}, shared.ErrForbidden
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return RequestPage{}, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, filter.Status)
	}
	page := shared.NewPagination(filter.Page, filter.PerPage, 0)
	items, total, err := s.repo.ListRequests(ctx, filter.Status, page.PerPage, page.Offset())
	if err != nil {
		return RequestPage{}, err
	}
	if items == nil {
		items = []Request{}
	}
	return RequestPage{Requests: items, Pagination: shared.NewPagination(page.Page, page.PerPage, total)}, nil
}

// Purge deletes a request with everything attached to it. Admin only.
func (s *Service) Purge(ctx context.Context, actor shared.Actor, id int64) error {
	if actor.Role != shared.RoleAdmin {
		return fmt.Errorf("%w: purge requires the admin role", shared.ErrForbidden)
	}
	err := s.repo.DeleteRequest(ctx, id)
	s.observe(ActionPurge, err)
	if err != nil {
		return err
	}
	s.record(ctx, actor, ActionPurge, id, nil)
	return nil
}

// AcceptRequest moves a Pending request to Accepted and notifies the customer.
func (s *Service) AcceptRequest(ctx context.Context, actor shared.Actor, id int64) (Request, error) {
	return s.officerDecision(ctx, actor, id, ActionAccept, RequestAccepted, notifications.MessageOfficerAccepted)
}

// RejectRequest moves a Pending request to Rejected. The message is required
// and reaches the customer verbatim.
func (s *Service) RejectRequest(ctx context.Context, actor shared.Actor, id int64, message string) (Request, error) {
	text, err := decisionText(message, ErrMessageRequired)
	if err != nil {
		s.observe(ActionReject, err)
		return Request{}, err
	}
	return s.officerDecision(ctx, actor, id, ActionReject, RequestRejected, text)
}

func (s *Service) officerDecision(ctx context.Context, actor shared.Actor, id int64, action string, to RequestStatus, message string) (Request, error) {
	if !actor.IsOfficer() {
		return Request{}, shared.ErrForbidden
	}
	var req Request
	var resp notifications.Response
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		req, err = tx.GetRequestForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !req.Status.CanOfficerDecide() {
			return fmt.Errorf("%w (status %s)", ErrRequestNotPending, req.Status)
		}
		if err := tx.TransitionRequest(ctx, id, req.Status, to); err != nil {
			return err
		}
		req.Status = to
		resp, err = tx.AppendResponse(ctx, notifications.NewOfficerResponse(id, officerParty(actor), string(to), "", message))
		return err
	})
	s.observe(action, err)
	if err != nil {
		return Request{}, err
	}
	s.afterCommit(ctx, actor, action, req, resp, nil)
	return req, nil
}

// PrepareQuotation prices an Accepted request once. The request status is
// unchanged; the details start Pending the customer's decision.
func (s *Service) PrepareQuotation(ctx context.Context, actor shared.Actor, id int64, in PrepareInput) (Details, error) {
	if !actor.IsOfficer() {
		return Details{}, shared.ErrForbidden
	}
	req, details, resp, err := s.prepare(ctx, actor, id, in)
	s.observe(ActionPrepare, err)
	if err != nil {
		return Details{}, err
	}
	s.afterCommit(ctx, actor, ActionPrepare, req, resp, map[string]any{
		"quotation_number": details.QuotationNumber,
		"total_amount":     details.TotalAmount.String(),
	})
	return details, nil
}

func (s *Service) prepare(ctx context.Context, actor shared.Actor, id int64, in PrepareInput) (Request, Details, notifications.Response, error) {
	var req Request
	var details Details
	var resp notifications.Response
	if err := ValidatePrepare(in); err != nil {
		return req, details, resp, err
	}
	lines, gst, err := s.selection(ctx, in)
	if err != nil {
		return req, details, resp, err
	}
	// Unlocked precheck; failing here consumes no number.
	current, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return req, details, resp, err
	}
	_, lookupErr := s.repo.GetDetailsByRequest(ctx, id)
	if err := preparable(current, lookupErr); err != nil {
		return req, details, resp, err
	}
	issued := s.clock()
	number, err := s.repo.NextNumber(ctx, DocQuotation, issued)
	if err != nil {
		return req, details, resp, err
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		locked, err := tx.GetRequestForUpdate(ctx, id)
		if err != nil {
			return err
		}
		_, lookupErr := tx.GetDetailsByRequestForUpdate(ctx, id)
		if err := preparable(locked, lookupErr); err != nil {
			return err
		}
		breakdown, err := pricing.Assemble(pricing.Input{
			Factors:       locked.DiscountFactors(),
			ContainerType: in.ContainerType,
			Lines:         lines,
			GSTPercent:    gst,
		})
		if err != nil {
			return err
		}
		d := Details{
			QuotationNumber:    number,
			QuotationRequestID: id,
			OfficerID:          actor.ID,
			OfficerName:        actor.Name,
			DateIssued:         issued,
			ContainerType:      in.ContainerType,
			Scope:              strings.TrimSpace(in.Scope),
			Status:             DetailsPending,
		}
		d.ApplyBreakdown(breakdown)
		d, err = tx.InsertDetails(ctx, d)
		if err != nil {
			return err
		}
		r, err := tx.AppendResponse(ctx, notifications.NewOfficerResponse(
			id, officerParty(actor), notifications.StatusQuoted, number, notifications.QuotationReadyMessage(number)))
		if err != nil {
			return err
		}
		req, details, resp = locked, d, r
		return nil
	})
	return req, details, resp, err
}

// preparable checks req may be priced given the result of a details lookup.
func preparable(req Request, lookupErr error) error {
	if !req.Status.CanPrepare() {
		return fmt.Errorf("%w (status %s)", ErrRequestNotAccepted, req.Status)
	}
	switch {
	case lookupErr == nil:
		return ErrAlreadyPrepared
	case errors.Is(lookupErr, ErrDetailsNotFound):
		return nil
	default:
		return lookupErr
	}
}

// PreviewPricing returns the pricing form state without persisting. When in
// names a container type and services the breakdown is computed as well.
func (s *Service) PreviewPricing(ctx context.Context, actor shared.Actor, id int64, in PrepareInput) (Preview, error) {
	if !actor.IsOfficer() {
		return Preview{}, shared.ErrForbidden
	}
	req, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return Preview{}, err
	}
	selectable, err := s.rates.SelectableRates(ctx)
	if err != nil {
		return Preview{}, err
	}
	gst, err := s.rates.GSTPercent(ctx)
	if err != nil {
		return Preview{}, err
	}
	preview := Preview{
		RequestID:          req.ID,
		DiscountPercentage: pricing.CalculateDiscount(req.DiscountFactors()),
		SuggestedScope:     req.SuggestedScope(),
		GSTPercent:         gst,
		ContainerTypes:     pricing.ContainerTypes(),
		Rates:              selectable,
	}
	if in.ContainerType == "" || len(in.ServiceTypes) == 0 {
		return preview, nil
	}
	lines, err := s.rates.Lines(ctx, in.ServiceTypes)
	if err != nil {
		return Preview{}, err
	}
	breakdown, err := pricing.Assemble(pricing.Input{
		Factors:       req.DiscountFactors(),
		ContainerType: in.ContainerType,
		Lines:         lines,
		GSTPercent:    gst,
	})
	if err != nil {
		return Preview{}, err
	}
	preview.Breakdown = &breakdown
	return preview, nil
}

// CustomerAccept records the owner's acceptance of a priced quotation.
func (s *Service) CustomerAccept(ctx context.Context, actor shared.Actor, requestID int64) (Quoted, error) {
	return s.customerDecision(ctx, actor, requestID, ActionCustomerAccept, DetailsAccepted, RequestQuotedAccepted, "")
}

// CustomerReject records the owner's rejection. The reason is required.
func (s *Service) CustomerReject(ctx context.Context, actor shared.Actor, requestID int64, reason string) (Quoted, error) {
	text, err := decisionText(reason, ErrReasonRequired)
	if err != nil {
		s.observe(ActionCustomerReject, err)
		return Quoted{}, err
	}
	return s.customerDecision(ctx, actor, requestID, ActionCustomerReject, DetailsRejected, RequestQuotedRejected, text)
}

func (s *Service) customerDecision(ctx context.Context, actor shared.Actor, requestID int64, action string, detailsTo DetailsStatus, requestTo RequestStatus, reason string) (Quoted, error) {
	if !actor.IsCustomer() {
		return Quoted{}, shared.ErrForbidden
	}
	var q Quoted
	var resp notifications.Response
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		req, err := tx.GetRequestForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req.CustomerID != actor.ID {
			return ErrRequestNotFound
		}
		switch {
		case req.Status == RequestQuotedAccepted || req.Status == RequestQuotedRejected:
			return ErrDetailsNotPending
		case !req.Status.CanCustomerDecide():
			return fmt.Errorf("%w (status %s)", ErrRequestNotAccepted, req.Status)
		}
		details, err := tx.GetDetailsByRequestForUpdate(ctx, requestID)
		if errors.Is(err, ErrDetailsNotFound) {
			return ErrNotPrepared
		}
		if err != nil {
			return err
		}
		if !details.Status.CanCustomerDecide() {
			return ErrDetailsNotPending
		}
		if err := tx.TransitionDetails(ctx, details.ID, details.Status, detailsTo); err != nil {
			return err
		}
		if err := tx.TransitionRequest(ctx, requestID, req.Status, requestTo); err != nil {
			return err
		}
		details.Status, req.Status = detailsTo, requestTo

		message := notifications.CustomerAcceptedMessage(details.QuotationNumber)
		if detailsTo == DetailsRejected {
			message = notifications.CustomerRejectedMessage(details.QuotationNumber, reason)
		}
		resp, err = tx.AppendResponse(ctx, notifications.NewCustomerResponse(
			requestID, notifications.Party{ID: actor.ID, Name: actor.Name}, string(detailsTo), details.QuotationNumber, message))
		if err != nil {
			return err
		}
		q = Quoted{Request: req, Details: details}
		return nil
	})
	s.observe(action, err)
	if err != nil {
		return Quoted{}, err
	}
	s.afterCommit(ctx, actor, action, q.Request, resp, map[string]any{"quotation_number": q.Details.QuotationNumber})
	return q, nil
}

// DetailsForRequest returns the quotation priced for a request.
func (s *Service) DetailsForRequest(ctx context.Context, actor shared.Actor, requestID int64) (Quoted, error) {
	req, err := s.Get(ctx, actor, requestID)
	if err != nil {
		return Quoted{}, err
	}
	details, err := s.repo.GetDetailsByRequest(ctx, requestID)
	if err != nil {
		return Quoted{}, err
	}
	return Quoted{Request: req, Details: details}, nil
}

// DetailsByNumber returns a quotation by number.
func (s *Service) DetailsByNumber(ctx context.Context, actor shared.Actor, number string) (Quoted, error) {
	details, err := s.repo.GetDetailsByNumber(ctx, strings.TrimSpace(number))
	if err != nil {
		return Quoted{}, err
	}
	req, err := s.repo.GetRequest(ctx, details.QuotationRequestID)
	if err != nil {
		return Quoted{}, err
	}
	if err := visible(actor, req); err != nil {
		return Quoted{}, ErrDetailsNotFound
	}
	return Quoted{Request: req, Details: details}, nil
}

// QuotedForCustomer lists the customer's priced requests.
func (s *Service) QuotedForCustomer(ctx context.Context, actor shared.Actor) ([]Quoted, error) {
	if !actor.IsCustomer() {
		return nil, shared.ErrForbidden
	}
	return s.repo.ListQuotedForCustomer(ctx, actor.ID)
}

// Summary builds the officer dashboard counts. Weeks start on Monday.
func (s *Service) Summary(ctx context.Context, actor shared.Actor) (Summary, error) {
	if !actor.IsOfficer() {
		return Summary{}, shared.ErrForbidden
	}
	byStatus, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return Summary{}, err
	}
	at := s.clock()
	cal := (&now.Config{WeekStartDay: time.Monday}).With(at)
	out := Summary{ByStatus: byStatus, GeneratedAt: at}
	for _, w := range []struct {
		since time.Time
		dst   *int
	}{
		{cal.BeginningOfDay(), &out.CreatedToday},
		{cal.BeginningOfWeek(), &out.CreatedWeek},
		{cal.BeginningOfMonth(), &out.CreatedMonth},
	} {
		if *w.dst, err = s.repo.CountCreatedSince(ctx, w.since); err != nil {
			return Summary{}, err
		}
	}
	return out, nil
}

func (s *Service) selection(ctx context.Context, in PrepareInput) ([]pricing.RateLine, decimal.Decimal, error) {
	lines, err := s.rates.Lines(ctx, in.ServiceTypes)
	if err != nil {
		return nil, decimal.Zero, err
	}
	gst, err := s.rates.GSTPercent(ctx)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return lines, gst, nil
}

func (s *Service) afterCommit(ctx context.Context, actor shared.Actor, action string, req Request, resp notifications.Response, meta map[string]any) {
	if s.notifier != nil {
		s.notifier.Dispatch(ctx, resp, req.CustomerEmail)
	}
	if meta == nil {
		meta = map[string]any{}
	}
	meta["status"] = string(req.Status)
	meta["response_id"] = resp.ID
	s.record(ctx, actor, action, req.ID, meta)
}

func (s *Service) record(ctx context.Context, actor shared.Actor, action string, requestID int64, meta map[string]any) {
	s.logger.Info("quotation "+action,
		slog.Int64("request_id", requestID),
		slog.Int64("actor_id", actor.ID),
		slog.String("role", string(actor.Role)))
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Role:     actor.Role,
		Action:   "quotation." + action,
		Entity:   "quotation_request",
		EntityID: strconv.FormatInt(requestID, 10),
		Meta:     meta,
		At:       s.clock(),
	})
	if err != nil {
		s.logger.Error("audit quotation "+action, slog.Int64("request_id", requestID), slog.Any("error", err))
	}
}

func (s *Service) observe(action string, err error) {
	if s.metrics != nil {
		s.metrics.ObserveTransition(action, Outcome(err))
	}
}

// Outcome classifies err for transition metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return observability.OutcomeOK
	case errors.Is(err, shared.ErrValidation), errors.Is(err, shared.ErrConflict),
		errors.Is(err, shared.ErrNotFound), errors.Is(err, shared.ErrForbidden):
		return observability.OutcomeRejected
	default:
		return observability.OutcomeError
	}
}

// visible hides other customers' requests behind ErrRequestNotFound.
func visible(actor shared.Actor, req Request) error {
	switch {
	case actor.IsOfficer():
		return nil
	case actor.IsCustomer() && req.CustomerID == actor.ID:
		return nil
	default:
		return ErrRequestNotFound
	}
}

func officerParty(actor shared.Actor) notifications.Party {
	return notifications.Party{ID: actor.ID, Name: actor.Name}
}
