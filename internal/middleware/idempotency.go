package middleware

import (
	"context"
	"net/http"

	"pizza-maniac/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// IdempotencyHeader is the request header carrying the client key.
const IdempotencyHeader = "Idempotency-Key"

// IdempotencyStore claims and releases request keys.
type IdempotencyStore interface {
	Key(userID uuid.UUID, key string) string
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// Idempotency rejects a request whose Idempotency-Key is already claimed by
// the same user with 409. A key is released again when the request does not
// succeed, so a failed attempt may be retried. Requests without the header
// pass through. It must run after Authenticate.
func Idempotency(store IdempotencyStore, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientKey := r.Header.Get(IdempotencyHeader)
			principal, ok := PrincipalFromContext(r.Context())
			if clientKey == "" || !ok {
				next.ServeHTTP(w, r)
				return
			}

			key := store.Key(principal.UserID, clientKey)
			claimed, err := store.Claim(r.Context(), key)
			if err != nil {
				// The store is advisory; serve the request without it.
				logger.Error().Err(err).Str("path", r.URL.Path).Msg("idempotency store unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if !claimed {
				logger.Warn().
					Str("user_id", principal.UserID.String()).
					Str("idempotency_key", clientKey).
					Msg("duplicate request rejected")
				writeError(w, http.StatusConflict, model.ErrCodeDuplicateRequest, model.ErrDuplicateRequest.Message)
				return
			}

			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			if !rec.succeeded() {
				if err := store.Release(context.WithoutCancel(r.Context()), key); err != nil {
					logger.Error().Err(err).Str("idempotency_key", clientKey).Msg("failed to release idempotency key")
				}
			}
		})
	}
}
