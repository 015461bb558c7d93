package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	custommiddleware "github.com/mmeshcher/cheapplay/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware витрины cheapplay.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/redeem/{code}", h.ViewRedemption)
		r.Post("/redeem/{code}", h.ConfirmRedemption)

		r.With(custommiddleware.RateLimit(h.limiter, "track", h.logger)).
			Post("/orders/{id}/access-code", h.TrackOrder)

		r.With(custommiddleware.RateLimit(h.limiter, "send-email", h.logger)).
			HandleFunc("/send-email", h.SendEmail)

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)

			r.Get("/orders", h.ListOrders)
			r.Get("/orders/{id}", h.GetOrder)
			r.Put("/orders/{id}/credentials", h.DeliverCredentials)
			r.Post("/orders/{id}/access-code/answer", h.AnswerAccessCode)
			r.Post("/orders/{id}/cancel", h.CancelOrder)
			r.Post("/orders/{id}/deliver", h.MarkDelivered)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
