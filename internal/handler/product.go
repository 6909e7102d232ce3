package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"tienda/internal/domain/product"
)

const (
	defaultPage  = 1
	defaultLimit = 12
	maxLimit     = 100
)

// productRequest is the payload accepted on product create and update.
type productRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"image_url"`
}

// validate checks the shape constraints before any domain logic runs.
func (p *productRequest) validate() string {
	p.Name = strings.TrimSpace(p.Name)
	switch {
	case len(p.Name) < 3:
		return "name must be at least 3 characters"
	case !p.Price.IsPositive():
		return "price must be greater than 0"
	case p.Stock < 0:
		return "stock must be 0 or greater"
	}
	return ""
}

func (p *productRequest) data() product.Data {
	return product.Data{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
	}
}

// pageParams reads the page/limit query parameters, reporting whether any
// pagination was requested at all.
func pageParams(r *http.Request) (page, limit int, requested bool) {
	q := r.URL.Query()
	requested = q.Has("page") || q.Has("limit")

	page = defaultPage
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		page = v
	}
	limit = defaultLimit
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 && v <= maxLimit {
		limit = v
	}
	return page, limit, requested
}

func productID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// listProducts serves the public catalog: active products only, paginated
// when page/limit query parameters are present.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	page, limit, paginated := pageParams(r)

	if paginated {
		result, err := h.products.ListActivePaginated(r.Context(), page, limit)
		if err != nil {
			internalError(w, r, err, false)
			return
		}
		writeJSON(w, r, http.StatusOK, paginatedResponse(result))
		return
	}

	items, err := h.products.ListActive(r.Context())
	if err != nil {
		internalError(w, r, err, false)
		return
	}
	writeJSON(w, r, http.StatusOK, items)
}

// listAllProducts serves the admin catalog, soft-deleted products included.
func (h *Handler) listAllProducts(w http.ResponseWriter, r *http.Request) {
	page, limit, paginated := pageParams(r)

	if paginated {
		result, err := h.products.ListAllPaginated(r.Context(), page, limit)
		if err != nil {
			internalError(w, r, err, false)
			return
		}
		writeJSON(w, r, http.StatusOK, paginatedResponse(result))
		return
	}

	items, err := h.products.ListAll(r.Context())
	if err != nil {
		internalError(w, r, err, false)
		return
	}
	writeJSON(w, r, http.StatusOK, items)
}

// paginatedResponse matches the envelope the storefront script expects.
func paginatedResponse(p product.Page) map[string]any {
	return map[string]any{
		"products": p.Items,
		"pagination": map[string]any{
			"page":       p.Page,
			"limit":      p.Limit,
			"total":      p.Total,
			"totalPages": p.TotalPages,
			"hasNext":    p.HasNext,
			"hasPrev":    p.HasPrev,
		},
	}
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		plainError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	p, err := h.products.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			plainError(w, r, http.StatusNotFound, "product not found")
			return
		}
		internalError(w, r, err, false)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		plainError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		plainError(w, r, http.StatusBadRequest, msg)
		return
	}

	p, err := h.products.Create(r.Context(), req.data())
	if err != nil {
		internalError(w, r, err, false)
		return
	}
	writeJSON(w, r, http.StatusCreated, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		plainError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		plainError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		plainError(w, r, http.StatusBadRequest, msg)
		return
	}

	p, err := h.products.Update(r.Context(), id, req.data())
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			plainError(w, r, http.StatusNotFound, "product not found")
			return
		}
		internalError(w, r, err, false)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		plainError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	err := h.products.SoftDelete(r.Context(), id)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, product.ErrNotFound):
		plainError(w, r, http.StatusNotFound, "product not found")
	case errors.Is(err, product.ErrConflict):
		plainError(w, r, http.StatusConflict, "product cannot be deleted because it has associated orders")
	default:
		internalError(w, r, err, false)
	}
}

func (h *Handler) restoreProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		plainError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.products.Restore(r.Context(), id); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			plainError(w, r, http.StatusNotFound, "product not found")
			return
		}
		internalError(w, r, err, false)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"success": true, "message": "product restored"})
}
