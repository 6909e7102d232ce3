package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"tienda/internal/domain/order"
)

// placeOrderRequest is the checkout payload. Prices are never part of it:
// the orchestrator reads them from the catalog.
type placeOrderRequest struct {
	Items  []order.CartLine `json:"items"`
	UserID *int64           `json:"userId"`
}

// placeOrder handles POST /api/orders: the checkout entry point.
func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		envelopeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	// Shape validation before the orchestrator runs.
	if len(req.Items) == 0 {
		envelopeError(w, r, http.StatusBadRequest, "items must be a non-empty array")
		return
	}
	for _, item := range req.Items {
		if item.ProductID <= 0 {
			envelopeError(w, r, http.StatusBadRequest, "productId must be a positive integer")
			return
		}
		if item.Quantity <= 0 {
			envelopeError(w, r, http.StatusBadRequest, "quantity must be a positive integer")
			return
		}
	}

	o, err := h.orders.PlaceOrder(r.Context(), order.PlaceOrderRequest{
		Lines:  req.Items,
		UserID: req.UserID,
	})
	if err != nil {
		var pnfErr *order.ProductNotFoundError
		var isErr *order.InsufficientStockError
		switch {
		case errors.As(err, &pnfErr), errors.As(err, &isErr), errors.Is(err, order.ErrEmptyCart):
			envelopeError(w, r, http.StatusBadRequest, err.Error())
		default:
			var iqErr *order.InvalidQuantityError
			if errors.As(err, &iqErr) {
				envelopeError(w, r, http.StatusBadRequest, err.Error())
				return
			}
			internalError(w, r, err, true)
		}
		return
	}

	writeJSON(w, r, http.StatusCreated, map[string]any{
		"success": true,
		"message": "order created",
		"order":   o,
	})
}

// listUserOrders handles GET /api/orders/user/{userID}. Non-admin callers may
// only read their own orders.
func (h *Handler) listUserOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		envelopeError(w, r, http.StatusBadRequest, "invalid user id")
		return
	}

	caller, ok := callerFrom(r.Context())
	if !ok {
		envelopeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	if caller.ID != userID && !caller.IsAdmin {
		envelopeError(w, r, http.StatusForbidden, "you may only view your own orders")
		return
	}

	orders, err := h.orders.ListForUser(r.Context(), userID)
	if err != nil {
		internalError(w, r, err, true)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"success": true, "orders": orders})
}

// listAllOrders handles GET /api/orders/admin/all.
func (h *Handler) listAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		internalError(w, r, err, true)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"success": true, "orders": orders})
}

// updateOrderStatus handles PUT /api/orders/{id}/status.
func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || orderID <= 0 {
		envelopeError(w, r, http.StatusBadRequest, "invalid order id")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		envelopeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), orderID, order.Status(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, order.ErrInvalidStatus), errors.Is(err, order.ErrOrderNotFound):
			envelopeError(w, r, http.StatusBadRequest, err.Error())
		default:
			internalError(w, r, err, true)
		}
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"success": true, "order": o})
}
