package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"pizza-maniac/internal/model"

	"github.com/rs/zerolog"
)

type principalKey struct{}

// TokenParser verifies a bearer token.
type TokenParser interface {
	Parse(token string) (model.Principal, error)
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p model.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal set by Authenticate.
func PrincipalFromContext(ctx context.Context) (model.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(model.Principal)
	return p, ok
}

// Authenticate resolves "Authorization: Bearer <token>" into a principal.
func Authenticate(parser TokenParser, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				logger.Warn().Str("path", r.URL.Path).Msg("missing bearer token")
				writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Not authorized, no token")
				return
			}

			principal, err := parser.Parse(token)
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("invalid bearer token")
				writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Not authorized, token failed")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// Authorize rejects principals whose role is not in roles. It must run after Authenticate.
func Authorize(logger zerolog.Logger, roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Not authorized, no token")
				return
			}

			if !slices.Contains(roles, principal.Role) {
				logger.Warn().
					Str("path", r.URL.Path).
					Str("user_id", principal.UserID.String()).
					Str("role", string(principal.Role)).
					Msg("role not allowed")
				writeError(w, http.StatusForbidden, model.ErrCodeForbidden,
					"User role "+string(principal.Role)+" is not authorized to access this route")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
