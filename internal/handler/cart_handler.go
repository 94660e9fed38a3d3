package handler

import (
	"context"
	"net/http"

	"pizza-maniac/internal/model"
	"pizza-maniac/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler handles cart HTTP requests.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFrom(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	cart, err := h.service.GetCart(r.Context(), principal)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// Add handles POST /api/cart/add requests.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.service.AddItem)
}

// Remove handles POST /api/cart/remove requests.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.service.RemoveItem)
}

type cartMutation func(ctx context.Context, principal model.Principal, req *model.CartItemRequest) (*model.Cart, error)

func (h *CartHandler) mutate(w http.ResponseWriter, r *http.Request, op cartMutation) {
	principal, err := principalFrom(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req model.CartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	cart, err := op(r.Context(), principal, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}
