package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/interport-cargo/interport/jobs"
)

// EmailQueue is implemented by jobs.Client.
type EmailQueue interface {
	EnqueueNotificationEmail(ctx context.Context, payload jobs.NotificationEmailPayload) error
}

// Dispatcher fans committed ledger entries out to email.
type Dispatcher struct {
	queue        EmailQueue
	officerInbox string
	logger       *slog.Logger
}

// NewDispatcher constructs the dispatcher. officerInbox receives
// customer-authored notifications.
func NewDispatcher(queue EmailQueue, officerInbox string, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{queue: queue, officerInbox: officerInbox, logger: logger}
}

// Dispatch enqueues an email for resp. customerEmail is the request owner's
// address. Failures are logged; the ledger entry stays authoritative.
func (d *Dispatcher) Dispatch(ctx context.Context, resp Response, customerEmail string) {
	if d == nil || d.queue == nil {
		return
	}
	payload, ok := d.buildPayload(resp, customerEmail)
	if !ok {
		d.logger.Warn("notification email skipped: no recipient", slog.Int64("response_id", resp.ID))
		return
	}
	if err := d.queue.EnqueueNotificationEmail(ctx, payload); err != nil {
		d.logger.Error("enqueue notification email", slog.Int64("response_id", resp.ID), slog.Any("error", err))
	}
}

func (d *Dispatcher) buildPayload(resp Response, customerEmail string) (jobs.NotificationEmailPayload, bool) {
	payload := jobs.NotificationEmailPayload{ResponseID: resp.ID}
	var subject strings.Builder
	switch resp.Type {
	case ResponseOfficer:
		payload.Audience = "customer"
		payload.To = customerEmail
		subject.WriteString("Your quotation request was " + strings.ToLower(resp.Status))
	case ResponseCustomer:
		payload.Audience = "officer"
		payload.To = d.officerInbox
		subject.WriteString("Customer " + strings.ToLower(resp.Status) + " a quotation")
	}
	if resp.QuotationNumber != "" {
		subject.WriteString(" (" + resp.QuotationNumber + ")")
	}
	payload.Subject = subject.String()
	payload.Body = emailBody(resp)
	return payload, payload.To != ""
}

func emailBody(resp Response) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Request #%d\n", resp.QuotationRequestID)
	fmt.Fprintf(&b, "Status: %s\n", resp.Status)
	if resp.QuotationNumber != "" {
		fmt.Fprintf(&b, "Quotation: %s\n", resp.QuotationNumber)
	}
	if resp.Message != "" {
		fmt.Fprintf(&b, "\n%s\n", resp.Message)
	}
	return b.String()
}
