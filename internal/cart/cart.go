package cart

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the slice of product data the cart needs at add time.
type Product struct {
	ID    uuid.UUID
	Name  string
	Price decimal.Decimal
	Stock int32
}

// Line is one basket entry. Quantity never exceeds StockCeiling, which is the
// product's known stock at the time of the last Add for it.
type Line struct {
	ProductID    uuid.UUID       `json:"product_id"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int32           `json:"quantity"`
	StockCeiling int32           `json:"stock_ceiling"`
}

// Cart is the in-memory basket for the active sale. It is never persisted:
// checkout success or an explicit clear empties it. All mutation goes through
// the methods below; the mutex keeps the HTTP surface, the checkout
// orchestrator, and background goroutines from interleaving writes.
type Cart struct {
	mu    sync.Mutex
	lines []Line
}

// New creates an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add inserts the product with quantity 1, or increments the existing line by
// 1. The ceiling follows p.Stock on every call, so a line whose product lost
// stock since the first add is clamped back down. Quantity is clamped, never
// rejected. The cart holds no zero-quantity lines: adding a product with no
// stock is a no-op, and an existing line for it is dropped.
func (c *Cart) Add(p Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ProductID == p.ID {
			if p.Stock < 1 {
				c.lines = append(c.lines[:i], c.lines[i+1:]...)
				return
			}
			c.lines[i].StockCeiling = p.Stock
			c.lines[i].Quantity = clamp(c.lines[i].Quantity+1, p.Stock)
			return
		}
	}
	if p.Stock < 1 {
		return
	}
	c.lines = append(c.lines, Line{
		ProductID:    p.ID,
		Name:         p.Name,
		UnitPrice:    p.Price,
		Quantity:     1,
		StockCeiling: p.Stock,
	})
}

// Remove deletes the line unconditionally. Removing an absent product is a
// no-op.
func (c *Cart) Remove(productID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// SetQuantity sets the line's quantity, clamped to [1, stock ceiling]. Removal
// is a separate explicit action, so zero and negative inputs floor to 1.
func (c *Cart) SetQuantity(productID uuid.UUID, qty int32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			if qty < 1 {
				qty = 1
			}
			c.lines[i].Quantity = clamp(qty, c.lines[i].StockCeiling)
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// Subtotal is the sum of unit price times quantity over all lines.
func (c *Cart) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	subtotal := decimal.Zero
	for _, l := range c.lines {
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt32(l.Quantity)))
	}
	return subtotal
}

// Lines returns a snapshot of the basket.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

func clamp(qty, ceiling int32) int32 {
	if qty > ceiling {
		return ceiling
	}
	return qty
}
