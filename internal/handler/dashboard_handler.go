package handler

import (
	"net/http"

	"pizza-maniac/internal/service"

	"github.com/rs/zerolog"
)

// DashboardHandler serves admin reporting.
type DashboardHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(service service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("handler", "dashboard").Logger(),
	}
}

// Stats handles GET /api/dashboard/stats requests.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFrom(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	stats, err := h.service.Stats(r.Context(), principal)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
