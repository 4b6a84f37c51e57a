package checkout

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/selular-pos/till/internal/backoffice"
	"github.com/selular-pos/till/internal/cart"
	"github.com/selular-pos/till/internal/enum"
	"github.com/selular-pos/till/internal/pricing"
	"github.com/shopspring/decimal"
)

// Precondition failures. These are raised locally, before any remote call.
var (
	ErrSessionClosed        = errors.New("cash session is closed")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInsufficientPayment  = errors.New("amount received is less than total")
	ErrInvalidPaymentMethod = errors.New("invalid payment_method")
	ErrInvalidDiscountType  = errors.New("invalid discount_type")
	ErrInvalidCustomerID    = errors.New("invalid customer_id")
	ErrCommitInFlight       = errors.New("a checkout is already in progress")
)

// SaleCreator submits sales to the back office.
// Satisfied by *backoffice.Client.
type SaleCreator interface {
	CreateSale(ctx context.Context, req backoffice.CreateSaleRequest) (*backoffice.Sale, error)
}

// SessionGate reports whether selling is allowed.
// Satisfied by *cashsession.Gate.
type SessionGate interface {
	SellingAllowed() bool
}

// Notifier signals dependent refreshes (products, recent sales, dashboard
// stats) after a successful commit. Those collaborators are external; their
// failures never reach the caller.
type Notifier interface {
	SaleCommitted(sale *backoffice.Sale)
}

// Request is the checkout input as entered at the register. Amounts arrive as
// strings and are parsed tolerantly: a blank or malformed amount_received
// counts as zero, which blocks cash confirmation.
type Request struct {
	CustomerID     string
	DiscountType   string
	DiscountValue  string
	PaymentMethod  string
	AmountReceived string
}

// Result is the committed sale with the derived money figures.
type Result struct {
	Sale           *backoffice.Sale
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
	Change         decimal.Decimal // cash only; zero otherwise
}

// Orchestrator turns the in-memory cart into a persisted sale. Commit is
// all-or-nothing from this side: there is no local stock mutation and no
// partial-commit state, because the back office owns stock vs. sale
// consistency in a single call.
type Orchestrator struct {
	cart     *cart.Cart
	gate     SessionGate
	api      SaleCreator
	notify   Notifier // optional
	inFlight atomic.Bool
}

// NewOrchestrator creates an orchestrator. notify may be nil.
func NewOrchestrator(c *cart.Cart, gate SessionGate, api SaleCreator, notify Notifier) *Orchestrator {
	return &Orchestrator{cart: c, gate: gate, api: api, notify: notify}
}

// Commit validates preconditions, submits the sale, and resets local state on
// success. On any failure the cart and the caller's form state are left
// untouched so the user can retry without re-entering data. Only one commit
// may be in flight at a time; concurrent attempts fail fast with
// ErrCommitInFlight.
func (o *Orchestrator) Commit(ctx context.Context, req Request) (*Result, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, ErrCommitInFlight
	}
	defer o.inFlight.Store(false)

	if !o.gate.SellingAllowed() {
		return nil, ErrSessionClosed
	}
	if o.cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if !isValidPaymentMethod(req.PaymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}
	if req.DiscountType != "" && !isValidDiscountType(req.DiscountType) {
		return nil, ErrInvalidDiscountType
	}

	var customerID *uuid.UUID
	if req.CustomerID != "" {
		cid, err := uuid.Parse(req.CustomerID)
		if err != nil {
			return nil, ErrInvalidCustomerID
		}
		customerID = &cid
	}

	subtotal := o.cart.Subtotal()
	discountAmount := decimal.Zero
	if req.DiscountType != "" {
		discountAmount = pricing.DiscountAmount(subtotal, req.DiscountType, pricing.ParseAmount(req.DiscountValue))
	}
	total := pricing.Total(subtotal, discountAmount)

	change := decimal.Zero
	if req.PaymentMethod == enum.PaymentMethodCash {
		received := pricing.ParseAmount(req.AmountReceived)
		change = pricing.Change(received, total)
		if change.IsNegative() {
			return nil, ErrInsufficientPayment
		}
	}

	lines := o.cart.Lines()
	items := make([]backoffice.SaleItem, len(lines))
	for i, l := range lines {
		items[i] = backoffice.SaleItem{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}

	// Re-read the gate synchronously right before submitting so an auto close
	// firing between the precondition check and here cannot slip through. The
	// back office's own rejection remains the final backstop.
	if !o.gate.SellingAllowed() {
		return nil, ErrSessionClosed
	}

	sale, err := o.api.CreateSale(ctx, backoffice.CreateSaleRequest{
		CustomerID:     customerID,
		Items:          items,
		DiscountAmount: discountAmount,
		PaymentMethod:  req.PaymentMethod,
	})
	if err != nil {
		return nil, err
	}

	o.cart.Clear()
	if o.notify != nil {
		o.notify.SaleCommitted(sale)
	}

	return &Result{
		Sale:           sale,
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		Total:          total,
		Change:         change,
	}, nil
}

func isValidPaymentMethod(s string) bool {
	switch s {
	case enum.PaymentMethodCash, enum.PaymentMethodCard, enum.PaymentMethodMobile:
		return true
	}
	return false
}

func isValidDiscountType(s string) bool {
	switch s {
	case enum.DiscountTypePercentage, enum.DiscountTypeFixed:
		return true
	}
	return false
}
