package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

type RouterConfig struct {
	AdminSecret    []byte
	RequestTimeout time.Duration
}

// NewRouter mounts the public storefront routes and the admin routes behind
// AdminAuthMiddleware.
func NewRouter(cfg RouterConfig, products *ProductHandler, orders *OrdersHandler, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(log))
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", products.ListProducts)
		r.Get("/products/{product_id}", products.GetProduct)
		r.Post("/orders", orders.CreateOrder)

		r.Route("/admin", func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminSecret))

			r.Post("/products", products.CreateProduct)
			r.Put("/products/{product_id}", products.UpdateProduct)
			r.Delete("/products/{product_id}", products.DeleteProduct)
			r.Post("/products/{product_id}/sale", products.CreateSale)
			r.Delete("/products/{product_id}/sale", products.RemoveSale)

			r.Get("/orders", orders.ListOrders)
			r.Get("/orders/{order_id}", orders.GetOrder)
			r.Delete("/orders/{order_id}", orders.DeleteOrder)
			r.Patch("/orders/{order_id}/status", orders.UpdateStatus)
			r.Put("/orders/{order_id}/items", orders.EditItems)

			r.Get("/stats", orders.Stats)
		})
	})

	// W3C trace context from callers ends up in request logs.
	return otelhttp.NewHandler(r, "storefront",
		otelhttp.WithPropagators(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		)))
}
