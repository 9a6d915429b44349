package quotation

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/interport-cargo/interport/internal/platform/httpx"
	"github.com/interport-cargo/interport/internal/quotation/pdf"
	"github.com/interport-cargo/interport/internal/quotation/pricing"
	"github.com/interport-cargo/interport/internal/shared"
)

// Guards restrict routes by actor role.
type Guards struct {
	Customer func(http.Handler) http.Handler
	Officer  func(http.Handler) http.Handler
	Admin    func(http.Handler) http.Handler
}

// Handler exposes the lifecycle over HTTP.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	guards     Guards
	idempotent func(http.Handler) http.Handler
	pdf        *pdf.Generator
}

// NewHandler builds the handler. idempotent wraps mutating routes. Nil
// middlewares pass through.
func NewHandler(logger *slog.Logger, service *Service, guards Guards, idempotent func(http.Handler) http.Handler, generator *pdf.Generator) *Handler {
	pass := func(next http.Handler) http.Handler { return next }
	if idempotent == nil {
		idempotent = pass
	}
	if generator == nil {
		generator = pdf.New("")
	}
	for _, g := range []*func(http.Handler) http.Handler{&guards.Customer, &guards.Officer, &guards.Admin} {
		if *g == nil {
			*g = pass
		}
	}
	return &Handler{logger: logger, service: service, guards: guards, idempotent: idempotent, pdf: generator}
}

// MountRoutes registers request and quotation endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/requests", func(r chi.Router) {
		r.With(h.guards.Customer, h.idempotent).Post("/", h.submit)
		r.With(h.guards.Customer).Get("/mine", h.listMine)
		r.With(h.guards.Officer).Get("/", h.listAll)
		r.With(h.guards.Officer).Get("/summary", h.summary)
		r.Get("/{id}", h.show)
		r.With(h.guards.Admin).Delete("/{id}", h.purge)

		r.Group(func(r chi.Router) {
			r.Use(h.guards.Officer)
			r.With(h.idempotent).Post("/{id}/accept", h.accept)
			r.With(h.idempotent).Post("/{id}/reject", h.reject)
			r.Get("/{id}/pricing", h.preview)
			r.With(h.idempotent).Post("/{id}/quotation", h.prepare)
		})

		r.Get("/{id}/quotation", h.showQuotation)
		r.Get("/{id}/quotation/pdf", h.quotationPDF)
		r.Group(func(r chi.Router) {
			r.Use(h.guards.Customer, h.idempotent)
			r.Post("/{id}/quotation/accept", h.customerAccept)
			r.Post("/{id}/quotation/reject", h.customerReject)
		})
	})

	r.Route("/quotations", func(r chi.Router) {
		r.With(h.guards.Customer).Get("/", h.listQuoted)
		r.Get("/{number}", h.showByNumber)
		r.Get("/{number}/pdf", h.numberPDF)
	})
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var in SubmitInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	req, err := h.service.Submit(r.Context(), actor, in).Unwrap()
	if err != nil {
		h.respondErr(w, "submit request", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, req)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	items, err := h.service.ListMine(r.Context(), actor)
	if err != nil {
		h.respondErr(w, "list own requests", err)
		return
	}
	if items == nil {
		items = []Request{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"requests": items})
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	result, err := h.service.ListAll(r.Context(), actor, ListFilter{
		Status:  RequestStatus(q.Get("status")),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		h.respondErr(w, "list requests", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	summary, err := h.service.Summary(r.Context(), actor)
	if err != nil {
		h.respondErr(w, "request summary", err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	req, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		h.respondErr(w, "get request", err)
		return
	}
	httpx.JSON(w, http.StatusOK, req)
}

func (h *Handler) purge(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	if err := h.service.Purge(r.Context(), actor, id); err != nil {
		h.respondErr(w, "purge request", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) accept(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	req, err := h.service.AcceptRequest(r.Context(), actor, id)
	if err != nil {
		h.respondErr(w, "accept request", err)
		return
	}
	httpx.JSON(w, http.StatusOK, req)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	var in RejectInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	req, err := h.service.RejectRequest(r.Context(), actor, id, in.Message)
	if err != nil {
		h.respondErr(w, "reject request", err)
		return
	}
	httpx.JSON(w, http.StatusOK, req)
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	preview, err := h.service.PreviewPricing(r.Context(), actor, id, PrepareInput{
		ContainerType: pricing.ContainerType(q.Get("container_type")),
		ServiceTypes:  q["service_type"],
	})
	if err != nil {
		h.respondErr(w, "preview pricing", err)
		return
	}
	httpx.JSON(w, http.StatusOK, preview)
}

func (h *Handler) prepare(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	var in PrepareInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	details, err := h.service.PrepareQuotation(r.Context(), actor, id, in)
	if err != nil {
		h.respondErr(w, "prepare quotation", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, details)
}

func (h *Handler) showQuotation(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	q, err := h.service.DetailsForRequest(r.Context(), actor, id)
	if err != nil {
		h.respondErr(w, "get quotation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) quotationPDF(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	q, err := h.service.DetailsForRequest(r.Context(), actor, id)
	if err != nil {
		h.respondErr(w, "quotation pdf", err)
		return
	}
	h.writePDF(w, q)
}

func (h *Handler) customerAccept(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	q, err := h.service.CustomerAccept(r.Context(), actor, id)
	if err != nil {
		h.respondErr(w, "customer accept", err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) customerReject(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	var in CustomerRejectInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	q, err := h.service.CustomerReject(r.Context(), actor, id, in.Reason)
	if err != nil {
		h.respondErr(w, "customer reject", err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) listQuoted(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	items, err := h.service.QuotedForCustomer(r.Context(), actor)
	if err != nil {
		h.respondErr(w, "list quotations", err)
		return
	}
	if items == nil {
		items = []Quoted{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"quotations": items})
}

func (h *Handler) showByNumber(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	q, err := h.service.DetailsByNumber(r.Context(), actor, chi.URLParam(r, "number"))
	if err != nil {
		h.respondErr(w, "get quotation by number", err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) numberPDF(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	q, err := h.service.DetailsByNumber(r.Context(), actor, chi.URLParam(r, "number"))
	if err != nil {
		h.respondErr(w, "quotation pdf", err)
		return
	}
	h.writePDF(w, q)
}

func (h *Handler) writePDF(w http.ResponseWriter, q Quoted) {
	body, err := h.pdf.Generate(Document(q))
	if err != nil {
		h.respondErr(w, "render quotation pdf", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", q.Details.QuotationNumber+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (shared.Actor, bool) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
	}
	return actor, ok
}

func (h *Handler) actorAndID(w http.ResponseWriter, r *http.Request) (shared.Actor, int64, bool) {
	actor, ok := h.actor(w, r)
	if !ok {
		return shared.Actor{}, 0, false
	}
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return shared.Actor{}, 0, false
	}
	return actor, id, true
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, shared.ErrValidation) || errors.Is(err, shared.ErrConflict) ||
		errors.Is(err, shared.ErrNotFound) || errors.Is(err, shared.ErrForbidden) {
		h.logger.Warn(op, slog.Any("error", err))
	} else {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
