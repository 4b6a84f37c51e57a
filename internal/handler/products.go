package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/selular-pos/till/internal/backoffice"
)

// ProductLister lists sellable products from the back office.
// Satisfied by *backoffice.Client.
type ProductLister interface {
	ListProducts(ctx context.Context) ([]backoffice.Product, error)
}

// ProductHandler is a read-through to the back office product list; the UI
// re-fetches it on products.changed events.
type ProductHandler struct {
	api ProductLister
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(api ProductLister) *ProductHandler {
	return &ProductHandler{api: api}
}

// RegisterRoutes registers product endpoints on the given Chi router.
// Expected to be mounted at /products
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
}

// List handles GET /products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.api.ListProducts(r.Context())
	if err != nil {
		writeRemoteError(w, "list products", err)
		return
	}
	if products == nil {
		products = []backoffice.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}
