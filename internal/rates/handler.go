package rates

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/interport-cargo/interport/internal/platform/httpx"
	"github.com/interport-cargo/interport/internal/quotation/pricing"
)

// Handler exposes the rate schedule over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
	admin   func(http.Handler) http.Handler
}

// NewHandler builds the handler. admin guards cache invalidation.
func NewHandler(logger *slog.Logger, service *Service, admin func(http.Handler) http.Handler) *Handler {
	return &Handler{logger: logger, service: service, admin: admin}
}

// MountRoutes registers rate endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/container-types", h.containerTypes)
	r.Get("/{serviceType}", h.show)
	r.With(h.admin).Post("/cache/invalidate", h.invalidate)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	rates, err := h.service.SelectableRates(r.Context())
	if err != nil {
		h.logger.Error("list rates", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	gst, err := h.service.GSTPercent(r.Context())
	if err != nil {
		h.logger.Error("gst percent", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rates": rates, "gst_percent": gst})
}

func (h *Handler) containerTypes(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"container_types": pricing.ContainerTypes()})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	rate, err := h.service.ByServiceType(r.Context(), chi.URLParam(r, "serviceType"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rate)
}

func (h *Handler) invalidate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Invalidate(r.Context()); err != nil {
		h.logger.Error("invalidate rates cache", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
