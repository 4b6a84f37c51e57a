package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/selular-pos/till/internal/backoffice"
	"github.com/selular-pos/till/internal/cart"
	"github.com/shopspring/decimal"
)

// ProductGetter looks up a product in the back office.
// Satisfied by *backoffice.Client.
type ProductGetter interface {
	Product(ctx context.Context, id uuid.UUID) (*backoffice.Product, error)
}

// CartHandler exposes the in-memory cart to the register UI.
type CartHandler struct {
	cart     *cart.Cart
	products ProductGetter
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(c *cart.Cart, products ProductGetter) *CartHandler {
	return &CartHandler{cart: c, products: products}
}

// RegisterRoutes registers cart endpoints on the given Chi router.
// Expected to be mounted at /cart
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Delete("/", h.Clear)
	r.Post("/items", h.AddItem)
	r.Put("/items/{pid}", h.SetQuantity)
	r.Delete("/items/{pid}", h.RemoveItem)
}

// --- Request / Response types ---

type addItemRequest struct {
	ProductID string `json:"product_id"`
}

type setQuantityRequest struct {
	Quantity int32 `json:"quantity"`
}

type cartResponse struct {
	Lines    []cart.Line     `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// --- Handlers ---

// Get handles GET /cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.respondCart(w, http.StatusOK)
}

// AddItem handles POST /cart/items. The product's current stock is looked up
// in the back office at add time and becomes the line's ceiling.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	product, err := h.products.Product(r.Context(), productID)
	if err != nil {
		writeRemoteError(w, "get product for cart", err)
		return
	}

	h.cart.Add(cart.Product{
		ID:    product.ID,
		Name:  product.Name,
		Price: product.Price,
		Stock: product.Stock,
	})
	h.respondCart(w, http.StatusOK)
}

// SetQuantity handles PUT /cart/items/{pid}.
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "pid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	h.cart.SetQuantity(productID, req.Quantity)
	h.respondCart(w, http.StatusOK)
}

// RemoveItem handles DELETE /cart/items/{pid}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "pid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	h.cart.Remove(productID)
	h.respondCart(w, http.StatusOK)
}

// Clear handles DELETE /cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear()
	h.respondCart(w, http.StatusOK)
}

func (h *CartHandler) respondCart(w http.ResponseWriter, status int) {
	lines := h.cart.Lines()
	if lines == nil {
		lines = []cart.Line{}
	}
	writeJSON(w, status, cartResponse{
		Lines:    lines,
		Subtotal: h.cart.Subtotal(),
	})
}
