package backoffice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Session is a cash drawer session as the back office records it.
// ExpectedAmount and Discrepancy are computed server-side on close and are
// consumed read-only here.
type Session struct {
	ID             uuid.UUID        `json:"id"`
	OpeningAmount  decimal.Decimal  `json:"opening_amount"`
	ClosingAmount  *decimal.Decimal `json:"closing_amount,omitempty"`
	ExpectedAmount *decimal.Decimal `json:"expected_amount,omitempty"`
	Discrepancy    *decimal.Decimal `json:"discrepancy,omitempty"`
	Notes          string           `json:"notes,omitempty"`
	OpenedAt       time.Time        `json:"opened_at"`
	ClosedAt       *time.Time       `json:"closed_at,omitempty"`
}

// Closed reports whether the session has been closed.
func (s *Session) Closed() bool {
	return s == nil || s.ClosedAt != nil
}

// Product is a sellable item with its current stock level.
type Product struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int32           `json:"stock"`
}

// SaleItem is one line of a sale submission.
type SaleItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateSaleRequest is the payload for committing a sale. The back office is
// the sole authority for stock decrement and the persisted total.
type CreateSaleRequest struct {
	CustomerID     *uuid.UUID      `json:"customer_id,omitempty"`
	Items          []SaleItem      `json:"items"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	PaymentMethod  string          `json:"payment_method"`
}

// Sale is a persisted sale as returned by the back office.
type Sale struct {
	ID          uuid.UUID       `json:"id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

// PurchaseOrderLine tracks ordered vs received quantity for one product.
type PurchaseOrderLine struct {
	ID               uuid.UUID       `json:"id"`
	ProductID        uuid.UUID       `json:"product_id"`
	QuantityOrdered  int32           `json:"quantity_ordered"`
	QuantityReceived int32           `json:"quantity_received"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
}

// PurchaseOrderDetail is a supplier order with its lines.
type PurchaseOrderDetail struct {
	ID          uuid.UUID           `json:"id"`
	SupplierID  uuid.UUID           `json:"supplier_id"`
	Status      string              `json:"status"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	Lines       []PurchaseOrderLine `json:"lines"`
}

// ReceiveItem reports the cumulative received quantity for one order line.
type ReceiveItem struct {
	ItemID           uuid.UUID `json:"item_id"`
	QuantityReceived int32     `json:"quantity_received"`
}

// StoreConfig is the slice of store settings the till consumes.
type StoreConfig struct {
	AutoCashClose bool   `json:"auto_cash_close"`
	ClosingTime   string `json:"closing_time"` // "HH:MM", local clock
}
