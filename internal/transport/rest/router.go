package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/payment-gateway/internal/payment"
	"github.com/frahmantamala/payment-gateway/internal/transport/middleware"
	"github.com/frahmantamala/payment-gateway/internal/transport/swagger"
	"github.com/go-chi/chi"
)

func RegisterAllRoutes(router *chi.Mux, paymentHandler *payment.Handler, bankBaseURL string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(bankBaseURL)

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check routes
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if paymentHandler != nil {
			r.Route("/payments", func(pr chi.Router) {
				pr.Post("/", paymentHandler.CreatePayment) // POST /payments
				pr.Get("/{id}", paymentHandler.GetPayment) // GET /payments/:id
			})
		}
	})
}
