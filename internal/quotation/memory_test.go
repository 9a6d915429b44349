package quotation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/interport-cargo/interport/internal/notifications"
)

// memoryRepo is an in-memory Repository. WithTx runs under one lock and
// restores a snapshot when fn fails. Sequences live outside the snapshot.
type memoryRepo struct {
	mu        sync.Mutex
	requests  map[int64]Request
	details   map[int64]Details
	responses []notifications.Response
	seqs      map[string]int
	nextID    int64

	failAppend error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		requests: map[int64]Request{},
		details:  map[int64]Details{},
		seqs:     map[string]int{},
	}
}

type memorySnapshot struct {
	requests  map[int64]Request
	details   map[int64]Details
	responses []notifications.Response
	nextID    int64
}

func (m *memoryRepo) snapshot() memorySnapshot {
	s := memorySnapshot{
		requests:  make(map[int64]Request, len(m.requests)),
		details:   make(map[int64]Details, len(m.details)),
		responses: append([]notifications.Response(nil), m.responses...),
		nextID:    m.nextID,
	}
	for k, v := range m.requests {
		s.requests[k] = v
	}
	for k, v := range m.details {
		s.details[k] = v
	}
	return s
}

func (m *memoryRepo) restore(s memorySnapshot) {
	m.requests, m.details, m.responses, m.nextID = s.requests, s.details, s.responses, s.nextID
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.snapshot()
	if err := fn(ctx, &memoryTx{m: m}); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

func (m *memoryRepo) GetRequest(ctx context.Context, id int64) (Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return Request{}, ErrRequestNotFound
	}
	return req, nil
}

func (m *memoryRepo) ListRequestsByCustomer(ctx context.Context, customerID int64) ([]Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Request
	for _, req := range m.sortedRequests() {
		if req.CustomerID == customerID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (m *memoryRepo) ListRequests(ctx context.Context, status RequestStatus, limit, offset int) ([]Request, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []Request
	for _, req := range m.sortedRequests() {
		if status == "" || req.Status == status {
			matched = append(matched, req)
		}
	}
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (m *memoryRepo) DeleteRequest(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[id]; !ok {
		return ErrRequestNotFound
	}
	delete(m.requests, id)
	delete(m.details, id)
	kept := m.responses[:0]
	for _, r := range m.responses {
		if r.QuotationRequestID != id {
			kept = append(kept, r)
		}
	}
	m.responses = kept
	return nil
}

func (m *memoryRepo) GetDetailsByRequest(ctx context.Context, requestID int64) (Details, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.details[requestID]
	if !ok {
		return Details{}, ErrDetailsNotFound
	}
	return d, nil
}

func (m *memoryRepo) GetDetailsByNumber(ctx context.Context, number string) (Details, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.details {
		if d.QuotationNumber == number {
			return d, nil
		}
	}
	return Details{}, ErrDetailsNotFound
}

func (m *memoryRepo) ListQuotedForCustomer(ctx context.Context, customerID int64) ([]Quoted, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Quoted
	for _, req := range m.sortedRequests() {
		d, ok := m.details[req.ID]
		if ok && req.CustomerID == customerID {
			out = append(out, Quoted{Request: req, Details: d})
		}
	}
	return out, nil
}

func (m *memoryRepo) CountByStatus(ctx context.Context) (map[RequestStatus]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[RequestStatus]int{}
	for _, req := range m.requests {
		out[req.Status]++
	}
	return out, nil
}

func (m *memoryRepo) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, req := range m.requests {
		if !req.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *memoryRepo) sortedRequests() []Request {
	out := make([]Request, 0, len(m.requests))
	for _, req := range m.requests {
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *memoryRepo) responsesFor(requestID int64) []notifications.Response {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []notifications.Response
	for _, r := range m.responses {
		if r.QuotationRequestID == requestID {
			out = append(out, r)
		}
	}
	return out
}

// seed stores req directly, bypassing the lifecycle.
func (m *memoryRepo) seed(req Request) Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	req.ID = m.nextID
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	req.Normalize()
	m.requests[req.ID] = req
	return req
}

type memoryTx struct {
	m *memoryRepo
}

func (t *memoryTx) GetRequestForUpdate(ctx context.Context, id int64) (Request, error) {
	req, ok := t.m.requests[id]
	if !ok {
		return Request{}, ErrRequestNotFound
	}
	return req, nil
}

func (t *memoryTx) GetDetailsByRequestForUpdate(ctx context.Context, requestID int64) (Details, error) {
	d, ok := t.m.details[requestID]
	if !ok {
		return Details{}, ErrDetailsNotFound
	}
	return d, nil
}

func (t *memoryTx) InsertRequest(ctx context.Context, req Request) (Request, error) {
	t.m.nextID++
	req.ID = t.m.nextID
	req.CreatedAt = time.Now()
	req.Normalize()
	t.m.requests[req.ID] = req
	return req, nil
}

func (t *memoryTx) InsertDetails(ctx context.Context, d Details) (Details, error) {
	if _, dup := t.m.details[d.QuotationRequestID]; dup {
		return Details{}, ErrAlreadyPrepared
	}
	t.m.nextID++
	d.ID = t.m.nextID
	d.CreatedAt = time.Now()
	t.m.details[d.QuotationRequestID] = d
	return d, nil
}

func (t *memoryTx) TransitionRequest(ctx context.Context, id int64, from, to RequestStatus) error {
	req, ok := t.m.requests[id]
	if !ok || req.Status != from {
		return ErrConcurrentUpdate
	}
	req.Status = to
	t.m.requests[id] = req
	return nil
}

func (t *memoryTx) TransitionDetails(ctx context.Context, id int64, from, to DetailsStatus) error {
	for key, d := range t.m.details {
		if d.ID == id {
			if d.Status != from {
				return ErrConcurrentUpdate
			}
			d.Status = to
			t.m.details[key] = d
			return nil
		}
	}
	return ErrConcurrentUpdate
}

func (t *memoryTx) AppendResponse(ctx context.Context, resp notifications.Response) (notifications.Response, error) {
	if t.m.failAppend != nil {
		return notifications.Response{}, t.m.failAppend
	}
	if err := resp.Validate(); err != nil {
		return notifications.Response{}, err
	}
	t.m.nextID++
	resp.ID = t.m.nextID
	resp.CreatedAt = time.Now()
	t.m.responses = append(t.m.responses, resp)
	return resp, nil
}

// NextNumber mirrors the autocommit allocation: it is never rolled back.
func (m *memoryRepo) NextNumber(ctx context.Context, docType string, day time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := docType + day.Format("20060102")
	m.seqs[key]++
	return FormatNumber(docType, day, m.seqs[key]), nil
}
