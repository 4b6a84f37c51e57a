// Package purchasing implements the purchase order receiving workflow:
// cumulative, clamped receipt of ordered quantities and the derived order
// status that follows from them.
package purchasing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/selular-pos/till/internal/backoffice"
	"github.com/selular-pos/till/internal/enum"
)

var (
	// ErrInvalidTransition is returned for a cancel on an order that is no
	// longer pending, or a receive on a terminal order.
	ErrInvalidTransition = errors.New("invalid purchase order transition")
	// ErrEmptyReceipt is returned when a receive call carries no items.
	ErrEmptyReceipt = errors.New("items are required")
)

// Store defines the back office methods the workflow needs.
// Satisfied by *backoffice.Client.
type Store interface {
	PurchaseOrder(ctx context.Context, id uuid.UUID) (*backoffice.PurchaseOrderDetail, error)
	ReceivePurchaseOrder(ctx context.Context, id uuid.UUID, items []backoffice.ReceiveItem) (*backoffice.PurchaseOrderDetail, error)
	CancelPurchaseOrder(ctx context.Context, id uuid.UUID) error
}

// ReceiptItem is one delivered line as reported by the operator. Quantity is
// the amount in this delivery, not a cumulative total.
type ReceiptItem struct {
	LineID   uuid.UUID
	Quantity int32
}

// Workflow drives receiving and cancellation against the back office.
type Workflow struct {
	api Store
}

// NewWorkflow creates a receiving workflow.
func NewWorkflow(api Store) *Workflow {
	return &Workflow{api: api}
}

// DeriveStatus computes the order status from line receipt state. Status is
// never stored independently here, so it cannot drift from the quantities.
// A cancelled order keeps its stored status; everything else derives:
// no receipts -> pending, all lines full -> received, otherwise partial.
func DeriveStatus(lines []backoffice.PurchaseOrderLine) string {
	anyReceived := false
	allFull := len(lines) > 0
	for _, l := range lines {
		if l.QuantityReceived > 0 {
			anyReceived = true
		}
		if l.QuantityReceived < l.QuantityOrdered {
			allFull = false
		}
	}
	switch {
	case allFull:
		return enum.PurchaseOrderStatusReceived
	case anyReceived:
		return enum.PurchaseOrderStatusPartiallyReceived
	default:
		return enum.PurchaseOrderStatusPending
	}
}

// Get fetches the order with its status derived from line receipt state.
func (w *Workflow) Get(ctx context.Context, orderID uuid.UUID) (*backoffice.PurchaseOrderDetail, error) {
	detail, err := w.api.PurchaseOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	if detail.Status != enum.PurchaseOrderStatusCancelled {
		detail.Status = DeriveStatus(detail.Lines)
	}
	return detail, nil
}

// Receive applies one delivery to the order. Per line the applied delta is
// min(quantity offered, quantity still outstanding): over-reports are
// clamped, never rejected, which makes repeated partial deliveries converge
// regardless of order. Unknown line IDs and non-positive quantities are
// skipped. The cumulative totals are then persisted via the back office and
// the returned order carries the freshly derived status.
func (w *Workflow) Receive(ctx context.Context, orderID uuid.UUID, items []ReceiptItem) (*backoffice.PurchaseOrderDetail, error) {
	if len(items) == 0 {
		return nil, ErrEmptyReceipt
	}

	detail, err := w.api.PurchaseOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	if detail.Status == enum.PurchaseOrderStatusCancelled {
		return nil, ErrInvalidTransition
	}

	lineByID := make(map[uuid.UUID]*backoffice.PurchaseOrderLine, len(detail.Lines))
	for i := range detail.Lines {
		lineByID[detail.Lines[i].ID] = &detail.Lines[i]
	}

	var receipts []backoffice.ReceiveItem
	for _, item := range items {
		line, ok := lineByID[item.LineID]
		if !ok || item.Quantity <= 0 {
			continue
		}
		outstanding := line.QuantityOrdered - line.QuantityReceived
		delta := item.Quantity
		if delta > outstanding {
			delta = outstanding
		}
		if delta <= 0 {
			continue
		}
		line.QuantityReceived += delta
		receipts = append(receipts, backoffice.ReceiveItem{
			ItemID:           line.ID,
			QuantityReceived: line.QuantityReceived,
		})
	}

	// Everything offered was already on file: converged, nothing to persist.
	if len(receipts) == 0 {
		detail.Status = DeriveStatus(detail.Lines)
		return detail, nil
	}

	updated, err := w.api.ReceivePurchaseOrder(ctx, orderID, receipts)
	if err != nil {
		return nil, err
	}
	if updated.Status != enum.PurchaseOrderStatusCancelled {
		updated.Status = DeriveStatus(updated.Lines)
	}
	return updated, nil
}

// Cancel cancels the order. Only permitted while the order is pending: once
// any line has a receipt on file the action fails with ErrInvalidTransition,
// checked here before the back office is asked to cancel.
func (w *Workflow) Cancel(ctx context.Context, orderID uuid.UUID) error {
	detail, err := w.api.PurchaseOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("get purchase order: %w", err)
	}
	if detail.Status == enum.PurchaseOrderStatusCancelled {
		return ErrInvalidTransition
	}
	if DeriveStatus(detail.Lines) != enum.PurchaseOrderStatusPending {
		return ErrInvalidTransition
	}
	return w.api.CancelPurchaseOrder(ctx, orderID)
}
