package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/interport-cargo/interport/internal/shared"
)

// Service answers ledger queries for customers and officers.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs the ledger service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Inbox lists the notifications addressed to actor, newest first. Customers
// see officer responses on their requests; officers see unread customer
// responses, limited to requests they priced when mine is set.
func (s *Service) Inbox(ctx context.Context, actor shared.Actor, unreadOnly, mine bool) ([]Response, error) {
	switch {
	case actor.IsCustomer():
		return s.repo.ListOfficerResponsesForCustomer(ctx, actor.ID, unreadOnly)
	case actor.IsOfficer():
		return s.repo.ListUnreadForOfficers(ctx, officerScope(actor, mine))
	default:
		return nil, shared.ErrForbidden
	}
}

// UnreadCount counts the unread entries in actor's inbox.
func (s *Service) UnreadCount(ctx context.Context, actor shared.Actor, mine bool) (int, error) {
	switch {
	case actor.IsCustomer():
		return s.repo.CountUnreadForCustomer(ctx, actor.ID)
	case actor.IsOfficer():
		return s.repo.CountUnreadForOfficers(ctx, officerScope(actor, mine))
	default:
		return 0, shared.ErrForbidden
	}
}

// CustomerResponses lists every customer response on a request for officer review.
func (s *Service) CustomerResponses(ctx context.Context, actor shared.Actor, requestID int64) ([]Response, error) {
	if !actor.IsOfficer() {
		return nil, shared.ErrForbidden
	}
	return s.repo.ListCustomerResponsesForRequest(ctx, requestID)
}

// MarkAsRead flags an entry read. Unknown ids and entries already read are a
// no-op. An actor who is not a recipient gets ErrNotFound.
func (s *Service) MarkAsRead(ctx context.Context, actor shared.Actor, id int64) error {
	resp, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if !resp.RecipientIs(actor) {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if resp.IsRead {
		return nil
	}
	changed, err := s.repo.MarkAsRead(ctx, id)
	if err != nil {
		return err
	}
	if changed {
		s.logger.Debug("notification read", slog.Int64("id", id), slog.Int64("actor_id", actor.ID))
	}
	return nil
}

func officerScope(actor shared.Actor, mine bool) *int64 {
	if !mine {
		return nil
	}
	id := actor.ID
	return &id
}
