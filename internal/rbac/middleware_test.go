package rbac

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interport-cargo/interport/internal/shared"
)

func newMiddleware() Middleware {
	return Middleware{Service: NewService(), Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func request(headers map[string]string) *http.Request {
	return requestTo("/", headers)
}

func requestTo(path string, headers map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func TestIdentifyParsesHeaders(t *testing.T) {
	m := newMiddleware()
	var got shared.Actor
	var ok bool
	h := m.Identify(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = shared.ActorFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, request(map[string]string{
		HeaderActorID: "42", HeaderActorName: "Carl", HeaderActorEmail: "carl@example.com", HeaderActorRole: "customer",
	}))
	require.True(t, ok)
	assert.Equal(t, shared.Actor{ID: 42, Name: "Carl", Email: "carl@example.com", Role: shared.RoleCustomer}, got)

	ok = false
	h.ServeHTTP(httptest.NewRecorder(), request(nil))
	assert.False(t, ok, "anonymous requests carry no actor")
}

func TestIdentifyRejectsMalformedHeaders(t *testing.T) {
	m := newMiddleware()
	h := m.Identify(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	for _, headers := range []map[string]string{
		{HeaderActorID: "abc", HeaderActorRole: "Customer"},
		{HeaderActorID: "-3", HeaderActorRole: "Customer"},
		{HeaderActorID: "3", HeaderActorRole: "Pirate"},
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, request(headers))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestGuards(t *testing.T) {
	m := newMiddleware()
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	cases := []struct {
		name  string
		guard func(http.Handler) http.Handler
		role  string
		want  int
	}{
		{"customer on customer route", m.Customer(), "Customer", http.StatusNoContent},
		{"officer on customer route", m.Customer(), "QuotationOfficer", http.StatusForbidden},
		{"officer on officer route", m.Officer(), "QuotationOfficer", http.StatusNoContent},
		{"manager on officer route", m.Officer(), "Manager", http.StatusNoContent},
		{"customer on officer route", m.Officer(), "Customer", http.StatusForbidden},
		{"officer on admin route", m.Admin(), "QuotationOfficer", http.StatusForbidden},
		{"admin on admin route", m.Admin(), "Admin", http.StatusNoContent},
		{"anonymous", m.Officer(), "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			headers := map[string]string{}
			if tc.role != "" {
				headers[HeaderActorID] = "9"
				headers[HeaderActorRole] = tc.role
			}
			rec := httptest.NewRecorder()
			m.Identify(tc.guard(ok)).ServeHTTP(rec, request(headers))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestRequireAll(t *testing.T) {
	m := newMiddleware()
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	headers := map[string]string{HeaderActorID: "1", HeaderActorRole: "QuotationOfficer"}

	rec := httptest.NewRecorder()
	m.Identify(m.RequireAll(PermRequestsReview, PermQuotationsPrepare)(ok)).ServeHTTP(rec, request(headers))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	m.Identify(m.RequireAll(PermRequestsReview, PermRequestsPurge)(ok)).ServeHTTP(rec, request(headers))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPermissionsHandler(t *testing.T) {
	m := newMiddleware()
	r := chi.NewRouter()
	r.Use(m.Identify)
	r.Route("/permissions", NewPermissionsHandler(m.Logger, m.Service, m).MountRoutes)

	rec := httptest.NewRecorder()
	req := requestTo("/permissions/me", map[string]string{HeaderActorID: "5", HeaderActorRole: "Customer"})
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var body actorPermissions
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.ElementsMatch(t, []string{PermRequestsSubmit, PermQuotationsRespond}, body.Permissions)

	rec = httptest.NewRecorder()
	req = requestTo("/permissions/", map[string]string{HeaderActorID: "5", HeaderActorRole: "Customer"})
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	req = requestTo("/permissions/", map[string]string{HeaderActorID: "1", HeaderActorRole: "Admin"})
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
