package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/selular-pos/till/internal/backoffice"
	"github.com/selular-pos/till/internal/checkout"
	"github.com/shopspring/decimal"
)

// CheckoutHandler exposes the commit-sale operation.
type CheckoutHandler struct {
	orchestrator *checkout.Orchestrator
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(o *checkout.Orchestrator) *CheckoutHandler {
	return &CheckoutHandler{orchestrator: o}
}

// RegisterRoutes registers checkout endpoints on the given Chi router.
// Expected to be mounted at /checkout
func (h *CheckoutHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Commit)
}

// --- Request / Response types ---

type checkoutRequest struct {
	CustomerID     string `json:"customer_id"`
	DiscountType   string `json:"discount_type"`
	DiscountValue  string `json:"discount_value"`
	PaymentMethod  string `json:"payment_method"`
	AmountReceived string `json:"amount_received"`
}

type checkoutResponse struct {
	Sale           *backoffice.Sale `json:"sale"`
	Subtotal       decimal.Decimal  `json:"subtotal"`
	DiscountAmount decimal.Decimal  `json:"discount_amount"`
	Total          decimal.Decimal  `json:"total"`
	Change         decimal.Decimal  `json:"change"`
}

// preconditionReasons maps orchestrator precondition failures to the stable
// reason codes the UI keys its messaging on.
var preconditionReasons = map[error]string{
	checkout.ErrSessionClosed:       "session_closed",
	checkout.ErrEmptyCart:           "empty_cart",
	checkout.ErrInsufficientPayment: "insufficient_payment",
	checkout.ErrCommitInFlight:      "commit_in_flight",
}

// --- Handlers ---

// Commit handles POST /checkout.
func (h *CheckoutHandler) Commit(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.orchestrator.Commit(r.Context(), checkout.Request{
		CustomerID:     req.CustomerID,
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		PaymentMethod:  req.PaymentMethod,
		AmountReceived: req.AmountReceived,
	})
	if err != nil {
		for sentinel, reason := range preconditionReasons {
			if errors.Is(err, sentinel) {
				writeJSON(w, http.StatusConflict, map[string]string{
					"error":  sentinel.Error(),
					"reason": reason,
				})
				return
			}
		}
		if errors.Is(err, checkout.ErrInvalidPaymentMethod) ||
			errors.Is(err, checkout.ErrInvalidDiscountType) ||
			errors.Is(err, checkout.ErrInvalidCustomerID) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeRemoteError(w, "commit sale", err)
		return
	}

	writeJSON(w, http.StatusCreated, checkoutResponse{
		Sale:           result.Sale,
		Subtotal:       result.Subtotal,
		DiscountAmount: result.DiscountAmount,
		Total:          result.Total,
		Change:         result.Change,
	})
}
