package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/selular-pos/till/internal/purchasing"
)

// PurchaseOrderHandler exposes the receiving workflow.
type PurchaseOrderHandler struct {
	workflow *purchasing.Workflow
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler.
func NewPurchaseOrderHandler(w *purchasing.Workflow) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{workflow: w}
}

// RegisterRoutes registers purchase order endpoints on the given Chi router.
// Expected to be mounted at /purchase-orders
func (h *PurchaseOrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{id}", h.Get)
	r.Put("/{id}/receive", h.Receive)
}

// RegisterOwnerRoutes registers the cancel endpoint.
// Expected to be mounted at /purchase-orders behind an OWNER role check.
func (h *PurchaseOrderHandler) RegisterOwnerRoutes(r chi.Router) {
	r.Put("/{id}/cancel", h.Cancel)
}

// --- Request types ---

type receiveItemRequest struct {
	LineID   string `json:"line_id"`
	Quantity int32  `json:"quantity"`
}

type receiveRequest struct {
	Items []receiveItemRequest `json:"items"`
}

// --- Handlers ---

// Get handles GET /purchase-orders/{id}.
func (h *PurchaseOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	detail, err := h.workflow.Get(r.Context(), orderID)
	if err != nil {
		writeRemoteError(w, "get purchase order", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Receive handles PUT /purchase-orders/{id}/receive.
func (h *PurchaseOrderHandler) Receive(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req receiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	items := make([]purchasing.ReceiptItem, 0, len(req.Items))
	for _, item := range req.Items {
		lineID, err := uuid.Parse(item.LineID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid line_id"})
			return
		}
		items = append(items, purchasing.ReceiptItem{LineID: lineID, Quantity: item.Quantity})
	}

	detail, err := h.workflow.Receive(r.Context(), orderID, items)
	if err != nil {
		switch {
		case errors.Is(err, purchasing.ErrEmptyReceipt):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, purchasing.ErrInvalidTransition):
			writeJSON(w, http.StatusConflict, map[string]string{
				"error":  "purchase order is not open for receiving",
				"reason": "invalid_transition",
			})
		default:
			writeRemoteError(w, "receive purchase order", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Cancel handles PUT /purchase-orders/{id}/cancel.
func (h *PurchaseOrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	if err := h.workflow.Cancel(r.Context(), orderID); err != nil {
		if errors.Is(err, purchasing.ErrInvalidTransition) {
			writeJSON(w, http.StatusConflict, map[string]string{
				"error":  "only pending purchase orders can be cancelled",
				"reason": "invalid_transition",
			})
			return
		}
		writeRemoteError(w, "cancel purchase order", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
