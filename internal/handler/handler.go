package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"pizza-maniac/internal/middleware"
	"pizza-maniac/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// statusFor maps a domain error code to its HTTP status.
func statusFor(code string) int {
	switch code {
	case model.ErrCodeInvalidJSON, model.ErrCodeValidation, model.ErrCodeInsufficientStock,
		model.ErrCodeEmptyCart, model.ErrCodeUserExists, model.ErrCodeInvalidCredentials:
		return http.StatusBadRequest
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeNotFound, model.ErrCodeProductNotFound, model.ErrCodeOrderNotFound,
		model.ErrCodeCartNotFound, model.ErrCodeItemNotFound:
		return http.StatusNotFound
	case model.ErrCodeDuplicateRequest:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as an ErrorResponse. Errors that are not domain
// errors are logged and reported as a generic internal error.
func writeError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		logger.Error().Err(err).Msg("handler error")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
			Error:   model.ErrCodeInternalError,
			Message: "Server error",
		})
		return
	}

	status := statusFor(domainErr.Code)
	logger.Debug().Str("code", domainErr.Code).Int("status", status).Msg(domainErr.Message)
	writeJSON(w, status, model.ErrorResponse{
		Error:   domainErr.Code,
		Message: domainErr.Message,
		Fields:  domainErr.Fields,
	})
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return model.NewDomainError(model.ErrCodeInvalidJSON, "Invalid request body")
	}
	return nil
}

// principalFrom returns the authenticated principal.
func principalFrom(r *http.Request) (model.Principal, error) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return model.Principal{}, model.ErrUnauthenticated
	}
	return p, nil
}

// idParam parses the {id} path parameter.
func idParam(r *http.Request, notFound error) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}
