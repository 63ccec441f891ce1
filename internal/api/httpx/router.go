package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter собирает маршруты back-office API.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", handler.CreateOrder)
		r.Get("/", handler.ListOrders)
		r.Get("/{id}", handler.GetOrder)
		r.Post("/{id}/cancel", handler.CancelOrder)
		// Зафиксированные заказы не редактируются.
		r.Put("/{id}", handler.RejectOrderUpdate)
		r.Patch("/{id}", handler.RejectOrderUpdate)
	})

	r.Get("/products/{id}", handler.GetProduct)
	r.Get("/reports/summary", handler.GetSummary)

	return r
}
