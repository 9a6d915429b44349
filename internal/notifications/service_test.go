package notifications

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interport-cargo/interport/internal/shared"
)

var (
	customerAda  = shared.Actor{ID: 100, Name: "Ada", Role: shared.RoleCustomer}
	customerBob  = shared.Actor{ID: 200, Name: "Bob", Role: shared.RoleCustomer}
	officerQuinn = shared.Actor{ID: 7, Name: "Quinn", Role: shared.RoleQuotationOfficer}
	officerRae   = shared.Actor{ID: 8, Name: "Rae", Role: shared.RoleManager}
)

func newTestService() (*Service, *memoryRepo) {
	repo := newMemoryRepo()
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil))), repo
}

func seedLedger(repo *memoryRepo) {
	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	officer := Party{ID: officerQuinn.ID, Name: officerQuinn.Name}
	repo.add(NewOfficerResponse(1, officer, "Accepted", "", MessageOfficerAccepted), customerAda.ID, base, true)
	repo.add(NewOfficerResponse(2, officer, "Rejected", "", "Route not serviced"), customerAda.ID, base.Add(time.Hour), false)
	repo.add(NewOfficerResponse(3, officer, "Accepted", "", MessageOfficerAccepted), customerBob.ID, base.Add(2*time.Hour), false)
	repo.add(NewCustomerResponse(1, Party{ID: customerAda.ID, Name: "Ada"}, "Accepted", "QT202610010001", CustomerAcceptedMessage("QT202610010001")), customerAda.ID, base.Add(3*time.Hour), false)
	repo.add(NewCustomerResponse(3, Party{ID: customerBob.ID, Name: "Bob"}, "Rejected", "QT202610010002", CustomerRejectedMessage("QT202610010002", "too slow")), customerBob.ID, base.Add(4*time.Hour), false)
	repo.pricedBy[1] = officerQuinn.ID
	repo.pricedBy[3] = officerRae.ID
}

func TestInboxForCustomerNewestFirst(t *testing.T) {
	svc, repo := newTestService()
	seedLedger(repo)

	items, err := svc.Inbox(context.Background(), customerAda, false, false)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].QuotationRequestID)
	for _, it := range items {
		assert.Equal(t, ResponseOfficer, it.Type)
	}

	unread, err := svc.Inbox(context.Background(), customerAda, true, false)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "Route not serviced", unread[0].Message)
}

func TestInboxForOfficersOptionallyScoped(t *testing.T) {
	svc, repo := newTestService()
	seedLedger(repo)
	ctx := context.Background()

	all, err := svc.Inbox(ctx, officerQuinn, true, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "QT202610010002", all[0].QuotationNumber)

	mine, err := svc.Inbox(ctx, officerQuinn, true, true)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "QT202610010001", mine[0].QuotationNumber)

	n, err := svc.UnreadCount(ctx, officerRae, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInboxRejectsAnonymous(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Inbox(context.Background(), shared.Actor{}, false, false)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestMarkAsReadIsIdempotent(t *testing.T) {
	svc, repo := newTestService()
	seedLedger(repo)
	ctx := context.Background()

	require.NoError(t, svc.MarkAsRead(ctx, customerAda, 2))
	require.NoError(t, svc.MarkAsRead(ctx, customerAda, 2))
	got, err := repo.Get(ctx, 2)
	require.NoError(t, err)
	assert.True(t, got.IsRead)
	assert.Equal(t, 1, repo.markCalls)

	n, err := svc.UnreadCount(ctx, customerAda, false)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMarkAsReadUnknownIDIsNoop(t *testing.T) {
	svc, repo := newTestService()
	require.NoError(t, svc.MarkAsRead(context.Background(), customerAda, 999))
	assert.Zero(t, repo.markCalls)
}

func TestMarkAsReadRequiresRecipient(t *testing.T) {
	svc, repo := newTestService()
	seedLedger(repo)
	ctx := context.Background()

	err := svc.MarkAsRead(ctx, customerBob, 2)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	err = svc.MarkAsRead(ctx, customerAda, 4)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	require.NoError(t, svc.MarkAsRead(ctx, officerRae, 4))
}

func TestCustomerResponsesOfficerOnly(t *testing.T) {
	svc, repo := newTestService()
	seedLedger(repo)

	items, err := svc.CustomerResponses(context.Background(), officerQuinn, 3)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Contains(t, items[0].Message, "Reason: too slow")

	_, err = svc.CustomerResponses(context.Background(), customerBob, 3)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}
