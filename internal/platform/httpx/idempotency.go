package httpx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/interport-cargo/interport/internal/shared"
)

// IdempotencyHeader carries a client chosen key for a mutating request.
const IdempotencyHeader = "Idempotency-Key"

// KeyStore is implemented by shared.IdempotencyStore.
type KeyStore interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key, module string) error
}

// Idempotent rejects a replayed Idempotency-Key with 409. Requests without the
// header pass through. Keys are scoped to the calling actor, so two clients
// picking the same key do not collide. A key whose request failed is released
// so the client can retry.
func Idempotent(store KeyStore, module string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if key == "" || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > 200 {
				Problem(w, http.StatusBadRequest, "Validation Failed", "idempotency key too long")
				return
			}
			key = scopedKey(r.Context(), key)
			if err := store.CheckAndInsert(r.Context(), key, module); err != nil {
				if errors.Is(err, shared.ErrIdempotencyConflict) {
					Problem(w, http.StatusConflict, "Conflict", err.Error())
					return
				}
				logger.Error("idempotency check", slog.String("module", module), slog.Any("error", err))
				Problem(w, http.StatusInternalServerError, "Internal Error", "")
				return
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			if ww.Status() >= http.StatusBadRequest {
				if err := store.Delete(context.WithoutCancel(r.Context()), key, module); err != nil {
					logger.Warn("release idempotency key", slog.String("module", module), slog.Any("error", err))
				}
			}
		})
	}
}

func scopedKey(ctx context.Context, key string) string {
	actor, ok := shared.ActorFromContext(ctx)
	if !ok {
		return "anon:" + key
	}
	return fmt.Sprintf("%d:%s", actor.ID, key)
}
