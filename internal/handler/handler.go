// Package handler exposes the order service over HTTP.
package handler

import (
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/metric"

	"github.com/rafaelmp/pedidos/internal/domain/order"
)

// Metrics holds the instruments recorded by the handler. Nil instruments
// are skipped, so tests can pass the zero value.
type Metrics struct {
	OrdersCreated   metric.Int64Counter
	OrdersFulfilled metric.Int64Counter
}

// Handler serves the order API routes, delegating business logic to the
// order service.
type Handler struct {
	orders  *order.Service
	metrics Metrics
}

// NewHandler constructs a Handler around the order service.
func NewHandler(orders *order.Service, metrics Metrics) *Handler {
	return &Handler{
		orders:  orders,
		metrics: metrics,
	}
}

// Register mounts all order routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.createOrder)
		r.Get("/", h.listOrders)
		r.Get("/{id}", h.getOrder)
		r.Post("/{id}/coupon", h.applyCoupon)
		r.Post("/{id}/pay", h.payOrder)
		r.Post("/{id}/fulfill", h.fulfillOrder)
	})
}
