package notifications

import (
	"context"
	"sort"
	"time"
)

type memoryRepo struct {
	entries   []Response
	pricedBy  map[int64]int64
	markCalls int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{pricedBy: make(map[int64]int64)}
}

func (m *memoryRepo) add(resp Response, ownerID int64, at time.Time, read bool) Response {
	resp.ID = int64(len(m.entries) + 1)
	resp.RequestOwnerID = ownerID
	resp.CreatedAt = at
	resp.IsRead = read
	m.entries = append(m.entries, resp)
	return resp
}

func (m *memoryRepo) filter(keep func(Response) bool) []Response {
	var out []Response
	for _, e := range m.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memoryRepo) Get(ctx context.Context, id int64) (Response, error) {
	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return Response{}, ErrNotFound
}

func (m *memoryRepo) ListOfficerResponsesForCustomer(ctx context.Context, customerID int64, unreadOnly bool) ([]Response, error) {
	return m.filter(func(e Response) bool {
		return e.RequestOwnerID == customerID && e.Type == ResponseOfficer && (!unreadOnly || !e.IsRead)
	}), nil
}

func (m *memoryRepo) ListUnreadForOfficers(ctx context.Context, officerID *int64) ([]Response, error) {
	return m.filter(func(e Response) bool {
		if e.Type != ResponseCustomer || e.IsRead {
			return false
		}
		return officerID == nil || m.pricedBy[e.QuotationRequestID] == *officerID
	}), nil
}

func (m *memoryRepo) ListCustomerResponsesForRequest(ctx context.Context, requestID int64) ([]Response, error) {
	return m.filter(func(e Response) bool {
		return e.QuotationRequestID == requestID && e.Type == ResponseCustomer
	}), nil
}

func (m *memoryRepo) CountUnreadForCustomer(ctx context.Context, customerID int64) (int, error) {
	items, _ := m.ListOfficerResponsesForCustomer(ctx, customerID, true)
	return len(items), nil
}

func (m *memoryRepo) CountUnreadForOfficers(ctx context.Context, officerID *int64) (int, error) {
	items, _ := m.ListUnreadForOfficers(ctx, officerID)
	return len(items), nil
}

func (m *memoryRepo) MarkAsRead(ctx context.Context, id int64) (bool, error) {
	m.markCalls++
	for i := range m.entries {
		if m.entries[i].ID == id && !m.entries[i].IsRead {
			m.entries[i].IsRead = true
			return true, nil
		}
	}
	return false, nil
}
