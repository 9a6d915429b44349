// Package notifications is the append-only ledger of officer and customer
// responses on quotation requests.
package notifications

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/interport-cargo/interport/internal/shared"
)

// ResponseType discriminates who authored a response.
type ResponseType string

const (
	ResponseOfficer  ResponseType = "Officer"
	ResponseCustomer ResponseType = "Customer"
)

// IsValid checks the type against the closed set.
func (t ResponseType) IsValid() bool {
	return t == ResponseOfficer || t == ResponseCustomer
}

// Standard messages attached to notifications.
const (
	MessageOfficerAccepted = "Your quotation request has been accepted. We will contact you shortly with the quotation details."
)

// StatusQuoted labels the officer notification sent when pricing is ready.
const StatusQuoted = "Quoted"

// QuotationReadyMessage is sent to the customer once a quotation is priced.
func QuotationReadyMessage(quotationNumber string) string {
	return fmt.Sprintf("Quotation %s is ready for your review.", quotationNumber)
}

// CustomerAcceptedMessage is sent to officers when a quote is accepted.
func CustomerAcceptedMessage(quotationNumber string) string {
	return fmt.Sprintf("Customer has accepted quotation %s.", quotationNumber)
}

// CustomerRejectedMessage is sent to officers when a quote is rejected.
func CustomerRejectedMessage(quotationNumber, reason string) string {
	return fmt.Sprintf("Customer has rejected quotation %s. Reason: %s", quotationNumber, reason)
}

// ErrNotFound indicates an unknown notification id.
var ErrNotFound = fmt.Errorf("%w: notification", shared.ErrNotFound)

var errAuthorMismatch = errors.New("notifications: author does not match response type")

// Party identifies the author of a response.
type Party struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Response is one ledger entry. Only IsRead changes after insert.
type Response struct {
	ID                 int64        `json:"id"`
	QuotationRequestID int64        `json:"quotation_request_id"`
	Type               ResponseType `json:"response_type"`
	Officer            *Party       `json:"officer,omitempty"`
	Customer           *Party       `json:"customer,omitempty"`
	Status             string       `json:"status"`
	QuotationNumber    string       `json:"quotation_number,omitempty"`
	Message            string       `json:"message,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
	IsRead             bool         `json:"is_read"`

	// RequestOwnerID is the customer who owns the referenced request.
	RequestOwnerID int64 `json:"-"`
}

// NewOfficerResponse builds an officer-authored entry.
func NewOfficerResponse(requestID int64, officer Party, status, quotationNumber, message string) Response {
	return Response{
		QuotationRequestID: requestID,
		Type:               ResponseOfficer,
		Officer:            &officer,
		Status:             status,
		QuotationNumber:    quotationNumber,
		Message:            strings.TrimSpace(message),
	}
}

// NewCustomerResponse builds a customer-authored entry.
func NewCustomerResponse(requestID int64, customer Party, status, quotationNumber, message string) Response {
	return Response{
		QuotationRequestID: requestID,
		Type:               ResponseCustomer,
		Customer:           &customer,
		Status:             status,
		QuotationNumber:    quotationNumber,
		Message:            strings.TrimSpace(message),
	}
}

// Validate checks the author identity matches the type.
func (r Response) Validate() error {
	switch r.Type {
	case ResponseOfficer:
		if r.Officer == nil || r.Customer != nil {
			return errAuthorMismatch
		}
	case ResponseCustomer:
		if r.Customer == nil || r.Officer != nil {
			return errAuthorMismatch
		}
	default:
		return fmt.Errorf("notifications: unknown response type %q", r.Type)
	}
	if r.QuotationRequestID <= 0 || r.Status == "" {
		return errors.New("notifications: request id and status are required")
	}
	return nil
}

// RecipientIs reports whether actor is an intended reader of the entry.
func (r Response) RecipientIs(actor shared.Actor) bool {
	switch r.Type {
	case ResponseOfficer:
		return actor.IsCustomer() && actor.ID == r.RequestOwnerID
	case ResponseCustomer:
		return actor.IsOfficer()
	}
	return false
}
