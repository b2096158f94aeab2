package http

import (
	"net/http"

	_ "github.com/fejiro0/gomart/docs"
	"github.com/fejiro0/gomart/internal/http/handlers"
	"github.com/fejiro0/gomart/internal/http/middleware"
	rl "github.com/fejiro0/gomart/internal/http/rate_limiter"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

// NewRouter wires the handlers under /api/v1. A nil limiter disables rate
// limiting. trustProxy takes the client IP from X-Forwarded-For / X-Real-IP,
// so it must only be set behind a proxy that overwrites those headers.
func NewRouter(authn middleware.Authenticator, limiter *rl.Limiter, trustProxy bool, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if trustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api/v1", func(v1 chi.Router) {
		if limiter != nil {
			v1.Use(limiter.Middleware)
		}

		v1.Post("/auth/vendor-login", handlers.VendorLoginHandler)
		v1.Post("/auth/vendor-register", handlers.VendorRegisterHandler)

		v1.Get("/products", handlers.GetProductsHandler)
		v1.Get("/products/search", handlers.FilterProductsHandler)
		v1.Get("/products/{id}", handlers.GetProductByIDHandler)
		v1.Get("/categories", handlers.GetCategoriesHandler)

		v1.Group(func(vendor chi.Router) {
			vendor.Use(middleware.AuthMiddleware(authn))

			vendor.Patch("/products/{id}/stock", handlers.AdjustStockHandler)
			vendor.Route("/vendor", func(vr chi.Router) {
				vr.Get("/dashboard", handlers.GetDashboardMetricsHandler)
				vr.Post("/products", handlers.CreateProductHandler)
				vr.Post("/products/import", handlers.ImportProductsHandler)
				vr.Put("/products/{id}", handlers.UpdateProductHandler)
				vr.Get("/products/{id}/movements", handlers.GetMovementsHandler)
				vr.Get("/products/{id}/movements/export", handlers.ExportMovementsHandler)
			})
		})

		v1.Route("/cart", func(cr chi.Router) {
			cr.Use(middleware.CartSession)

			cr.Get("/", handlers.GetCartHandler)
			cr.Delete("/", handlers.ClearCartHandler)
			cr.Post("/items", handlers.AddCartItemHandler)
			cr.Patch("/items/{productId}", handlers.UpdateCartItemHandler)
			cr.Delete("/items/{productId}", handlers.RemoveCartItemHandler)
			cr.Post("/checkout", handlers.CheckoutHandler)
		})
	})

	return r
}
