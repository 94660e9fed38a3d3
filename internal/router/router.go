package router

import (
	"encoding/json"
	"net/http"

	"pizza-maniac/internal/handler"
	"pizza-maniac/internal/middleware"
	"pizza-maniac/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Auth      *handler.AuthHandler
	Product   *handler.ProductHandler
	Cart      *handler.CartHandler
	Order     *handler.OrderHandler
	Dashboard *handler.DashboardHandler
}

// New creates a new HTTP router with all routes and middleware configured.
// idem may be nil, in which case order placement is not deduplicated.
func New(
	h Handlers,
	tokens middleware.TokenParser,
	idem middleware.IdempotencyStore,
	serviceName string,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Apply middleware in order: Recovery -> Logging -> CORS
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusNotFound, model.ErrCodeNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusMethodNotAllowed, model.ErrCodeNotFound, "Method not allowed")
	})

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	authn := middleware.Authenticate(tokens, logger)
	adminOnly := middleware.Authorize(logger, model.RoleAdmin)
	userOnly := middleware.Authorize(logger, model.RoleUser)
	anyRole := middleware.Authorize(logger, model.RoleUser, model.RoleAdmin)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Product.GetAll)
			r.Get("/{id}", h.Product.GetByID)
			r.With(authn, adminOnly).Post("/", h.Product.Create)
			r.With(authn, adminOnly).Put("/{id}", h.Product.Update)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(authn, userOnly)
			r.Get("/", h.Cart.Get)
			r.Post("/add", h.Cart.Add)
			r.Post("/remove", h.Cart.Remove)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(authn)
			place := r.With(anyRole)
			if idem != nil {
				place = place.With(middleware.Idempotency(idem, logger))
			}
			place.Post("/", h.Order.Place)
			r.With(anyRole).Get("/", h.Order.List)
			r.With(adminOnly).Put("/{id}", h.Order.UpdateStatus)
		})

		r.With(authn, adminOnly).Get("/dashboard/stats", h.Dashboard.Stats)
	})

	return otelhttp.NewHandler(r, serviceName,
		otelhttp.WithFilter(func(r *http.Request) bool { return r.URL.Path != "/health" }),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "HTTP " + r.Method + " " + r.URL.Path
		}),
	)
}

func writeStatus(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{Error: code, Message: message})
}
