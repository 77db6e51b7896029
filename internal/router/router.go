package router

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Items  *handler.ItemHandler
	Cart   *handler.CartHandler
	Orders *handler.OrderHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, apiKey string, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Recovery -> RequestID -> Logging -> CORS -> APIKeyAuth
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)
	r.Use(middleware.APIKeyAuth(apiKey, logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/items", h.Items.List)
		r.Get("/items/{slug}", h.Items.Get)

		// Operator transitions act on any order.
		r.Post("/orders/{id}/deliver", h.Orders.MarkBeingDelivered)
		r.Post("/orders/{id}/receive", h.Orders.MarkReceived)
		r.Post("/orders/{id}/refund/grant", h.Orders.GrantRefund)
		r.Post("/orders/{id}/refund/deny", h.Orders.DenyRefund)

		r.Group(func(r chi.Router) {
			r.Use(middleware.UserID(logger))

			r.Get("/cart", h.Cart.Get)
			r.Post("/cart/items/{slug}", h.Cart.AddItem)
			r.Delete("/cart/items/{slug}", h.Cart.RemoveItem)
			r.Delete("/cart/items/{slug}/single", h.Cart.RemoveSingleItem)
			r.Post("/cart/coupon", h.Cart.ApplyCoupon)

			r.Post("/checkout", h.Orders.Checkout)

			r.Get("/orders", h.Orders.List)
			r.Get("/orders/{id}", h.Orders.Get)
			r.Get("/orders/{id}/total", h.Orders.Total)
			r.Post("/orders/{id}/refund", h.Orders.RequestRefund)
		})
	})

	return otelhttp.NewHandler(r, "storefront",
		otelhttp.WithFilter(func(r *http.Request) bool { return r.URL.Path != "/health" }),
	)
}
