package notifications

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/interport-cargo/interport/internal/platform/httpx"
	"github.com/interport-cargo/interport/internal/shared"
)

// Handler exposes the ledger over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
	officer func(http.Handler) http.Handler
}

// NewHandler builds the handler. officer guards staff-only routes.
func NewHandler(logger *slog.Logger, service *Service, officer func(http.Handler) http.Handler) *Handler {
	return &Handler{logger: logger, service: service, officer: officer}
}

// MountRoutes registers notification endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.inbox)
	r.Get("/unread-count", h.unreadCount)
	r.Post("/{id}/read", h.markRead)
	r.With(h.officer).Get("/requests/{requestID}/customer-responses", h.customerResponses)
}

func (h *Handler) inbox(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	items, err := h.service.Inbox(r.Context(), actor, queryBool(r, "unread"), queryBool(r, "mine"))
	if err != nil {
		h.respondErr(w, "list notifications", err)
		return
	}
	if items == nil {
		items = []Response{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"notifications": items})
}

func (h *Handler) unreadCount(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	n, err := h.service.UnreadCount(r.Context(), actor, queryBool(r, "mine"))
	if err != nil {
		h.respondErr(w, "count notifications", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"unread": n})
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.MarkAsRead(r.Context(), actor, id); err != nil {
		h.respondErr(w, "mark notification read", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) customerResponses(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	requestID, err := httpx.IDParam(r, "requestID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	items, err := h.service.CustomerResponses(r.Context(), actor, requestID)
	if err != nil {
		h.respondErr(w, "list customer responses", err)
		return
	}
	if items == nil {
		items = []Response{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"responses": items})
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	h.logger.Warn(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}

func queryBool(r *http.Request, key string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return v
}
