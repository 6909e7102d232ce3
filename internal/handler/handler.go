// Package handler exposes the HTTP surface of the store: public catalog and
// checkout routes plus admin-gated catalog and order management.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tienda/internal/domain/order"
	"tienda/internal/domain/product"
	"tienda/internal/domain/user"
)

// Handler holds the domain dependencies for all HTTP endpoints.
type Handler struct {
	products product.Repository
	orders   *order.Service
	users    *user.Service
}

// New constructs a Handler with the required domain dependencies.
func New(products product.Repository, orders *order.Service, users *user.Service) *Handler {
	return &Handler{
		products: products,
		orders:   orders,
		users:    users,
	}
}

// Router builds the route tree. Mutating catalog routes and all admin order
// routes sit behind the identity/admin gates.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.listProducts)
			r.Get("/{id}", h.getProduct)

			r.Group(func(r chi.Router) {
				r.Use(h.requireIdentity, h.requireAdmin)
				r.Post("/", h.createProduct)
				r.Put("/{id}", h.updateProduct)
				r.Delete("/{id}", h.deleteProduct)
				r.Put("/{id}/restore", h.restoreProduct)
				r.Get("/admin/all", h.listAllProducts)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.placeOrder)

			r.With(h.requireIdentity).Get("/user/{userID}", h.listUserOrders)

			r.Group(func(r chi.Router) {
				r.Use(h.requireIdentity, h.requireAdmin)
				r.Get("/admin/all", h.listAllOrders)
				r.Put("/{id}/status", h.updateOrderStatus)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/register", h.register)
			r.Post("/login", h.login)
		})
	})

	return r
}
