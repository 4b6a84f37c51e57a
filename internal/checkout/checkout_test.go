package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/selular-pos/till/internal/backoffice"
	"github.com/selular-pos/till/internal/cart"
	"github.com/selular-pos/till/internal/enum"
	"github.com/shopspring/decimal"
)

// --- Mocks ---

type mockGate struct {
	allowed bool
}

func (m *mockGate) SellingAllowed() bool { return m.allowed }

type mockSaleCreator struct {
	createSaleFn func(ctx context.Context, req backoffice.CreateSaleRequest) (*backoffice.Sale, error)
	calls        int
}

func (m *mockSaleCreator) CreateSale(ctx context.Context, req backoffice.CreateSaleRequest) (*backoffice.Sale, error) {
	m.calls++
	return m.createSaleFn(ctx, req)
}

type mockNotifier struct {
	sales []*backoffice.Sale
}

func (m *mockNotifier) SaleCommitted(sale *backoffice.Sale) {
	m.sales = append(m.sales, sale)
}

// --- Helpers ---

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func stockedCart(t *testing.T, price string, qty int) *cart.Cart {
	t.Helper()
	c := cart.New()
	p := cart.Product{ID: uuid.New(), Name: "screen protector", Price: dec(t, price), Stock: 100}
	for i := 0; i < qty; i++ {
		c.Add(p)
	}
	return c
}

func acceptingAPI() *mockSaleCreator {
	return &mockSaleCreator{
		createSaleFn: func(ctx context.Context, req backoffice.CreateSaleRequest) (*backoffice.Sale, error) {
			return &backoffice.Sale{ID: uuid.New(), CreatedAt: time.Now()}, nil
		},
	}
}

func cashRequest(received string) Request {
	return Request{
		PaymentMethod:  enum.PaymentMethodCash,
		AmountReceived: received,
	}
}

// --- Precondition tests ---

func TestCommitSessionClosed(t *testing.T) {
	c := stockedCart(t, "100.00", 1)
	api := acceptingAPI()
	o := NewOrchestrator(c, &mockGate{allowed: false}, api, nil)

	_, err := o.Commit(context.Background(), cashRequest("100.00"))
	if !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got: %v", err)
	}
	if api.calls != 0 {
		t.Fatal("no remote call may be made when the session is closed")
	}
	if c.IsEmpty() {
		t.Fatal("cart must be preserved on failure")
	}
}

func TestCommitEmptyCart(t *testing.T) {
	api := acceptingAPI()
	o := NewOrchestrator(cart.New(), &mockGate{allowed: true}, api, nil)

	_, err := o.Commit(context.Background(), cashRequest("100.00"))
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got: %v", err)
	}
	if api.calls != 0 {
		t.Fatal("no remote call may be made for an empty cart")
	}
}

func TestCommitInsufficientCash(t *testing.T) {
	// 2 x 100.00 with fixed 50 discount totals 150.00; 100 received is short
	c := stockedCart(t, "100.00", 2)
	api := acceptingAPI()
	o := NewOrchestrator(c, &mockGate{allowed: true}, api, nil)

	req := Request{
		DiscountType:   enum.DiscountTypeFixed,
		DiscountValue:  "50",
		PaymentMethod:  enum.PaymentMethodCash,
		AmountReceived: "100",
	}
	_, err := o.Commit(context.Background(), req)
	if !errors.Is(err, ErrInsufficientPayment) {
		t.Fatalf("expected ErrInsufficientPayment, got: %v", err)
	}
	if api.calls != 0 {
		t.Fatal("no remote call may be made for an insufficient cash payment")
	}
	if c.IsEmpty() {
		t.Fatal("cart must be preserved on failure")
	}
}

func TestCommitNonNumericAmountReceivedBlocks(t *testing.T) {
	c := stockedCart(t, "100.00", 1)
	o := NewOrchestrator(c, &mockGate{allowed: true}, acceptingAPI(), nil)

	for _, received := range []string{"", "abc"} {
		_, err := o.Commit(context.Background(), cashRequest(received))
		if !errors.Is(err, ErrInsufficientPayment) {
			t.Fatalf("amount_received %q: expected ErrInsufficientPayment, got: %v", received, err)
		}
	}
}

func TestCommitCardNeedsNoAmount(t *testing.T) {
	c := stockedCart(t, "100.00", 1)
	o := NewOrchestrator(c, &mockGate{allowed: true}, acceptingAPI(), nil)

	result, err := o.Commit(context.Background(), Request{PaymentMethod: enum.PaymentMethodCard})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if !result.Change.Equal(decimal.Zero) {
		t.Fatalf("change for card payment: got %s, want 0", result.Change)
	}
}

func TestCommitInvalidPaymentMethod(t *testing.T) {
	c := stockedCart(t, "100.00", 1)
	o := NewOrchestrator(c, &mockGate{allowed: true}, acceptingAPI(), nil)

	_, err := o.Commit(context.Background(), Request{PaymentMethod: "CHEQUE"})
	if !errors.Is(err, ErrInvalidPaymentMethod) {
		t.Fatalf("expected ErrInvalidPaymentMethod, got: %v", err)
	}
}

func TestCommitInvalidDiscountType(t *testing.T) {
	c := stockedCart(t, "100.00", 1)
	o := NewOrchestrator(c, &mockGate{allowed: true}, acceptingAPI(), nil)

	_, err := o.Commit(context.Background(), Request{
		PaymentMethod: enum.PaymentMethodCard,
		DiscountType:  "BOGOF",
	})
	if !errors.Is(err, ErrInvalidDiscountType) {
		t.Fatalf("expected ErrInvalidDiscountType, got: %v", err)
	}
}

func TestCommitInvalidCustomerID(t *testing.T) {
	c := stockedCart(t, "100.00", 1)
	o := NewOrchestrator(c, &mockGate{allowed: true}, acceptingAPI(), nil)

	_, err := o.Commit(context.Background(), Request{
		PaymentMethod: enum.PaymentMethodCard,
		CustomerID:    "not-a-uuid",
	})
	if !errors.Is(err, ErrInvalidCustomerID) {
		t.Fatalf("expected ErrInvalidCustomerID, got: %v", err)
	}
}

// --- Success path ---

func TestCommitSuccess(t *testing.T) {
	c := stockedCart(t, "100.00", 2)
	customerID := uuid.New()

	var submitted backoffice.CreateSaleRequest
	api := &mockSaleCreator{
		createSaleFn: func(ctx context.Context, req backoffice.CreateSaleRequest) (*backoffice.Sale, error) {
			submitted = req
			return &backoffice.Sale{ID: uuid.New(), TotalAmount: decimal.NewFromInt(150), CreatedAt: time.Now()}, nil
		},
	}
	notify := &mockNotifier{}
	o := NewOrchestrator(c, &mockGate{allowed: true}, api, notify)

	result, err := o.Commit(context.Background(), Request{
		CustomerID:     customerID.String(),
		DiscountType:   enum.DiscountTypeFixed,
		DiscountValue:  "50",
		PaymentMethod:  enum.PaymentMethodCash,
		AmountReceived: "200",
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	if !result.Subtotal.Equal(dec(t, "200.00")) {
		t.Fatalf("subtotal: got %s, want 200.00", result.Subtotal)
	}
	if !result.DiscountAmount.Equal(dec(t, "50")) {
		t.Fatalf("discount: got %s, want 50", result.DiscountAmount)
	}
	if !result.Total.Equal(dec(t, "150.00")) {
		t.Fatalf("total: got %s, want 150.00", result.Total)
	}
	if !result.Change.Equal(dec(t, "50.00")) {
		t.Fatalf("change: got %s, want 50.00", result.Change)
	}

	if submitted.CustomerID == nil || *submitted.CustomerID != customerID {
		t.Fatal("customer ID not forwarded to the back office")
	}
	if len(submitted.Items) != 1 || submitted.Items[0].Quantity != 2 {
		t.Fatalf("submitted items: %+v", submitted.Items)
	}
	if !submitted.DiscountAmount.Equal(dec(t, "50")) {
		t.Fatalf("submitted discount: got %s, want 50", submitted.DiscountAmount)
	}
	if submitted.PaymentMethod != enum.PaymentMethodCash {
		t.Fatalf("submitted payment method: got %s", submitted.PaymentMethod)
	}

	if !c.IsEmpty() {
		t.Fatal("cart must be cleared after a successful commit")
	}
	if len(notify.sales) != 1 {
		t.Fatalf("refresh notifications: got %d, want 1", len(notify.sales))
	}
}

func TestCommitRemoteFailurePreservesCart(t *testing.T) {
	c := stockedCart(t, "100.00", 2)
	api := &mockSaleCreator{
		createSaleFn: func(ctx context.Context, req backoffice.CreateSaleRequest) (*backoffice.Sale, error) {
			return nil, &backoffice.APIError{StatusCode: 422, Message: "insufficient stock for product"}
		},
	}
	notify := &mockNotifier{}
	o := NewOrchestrator(c, &mockGate{allowed: true}, api, notify)

	_, err := o.Commit(context.Background(), cashRequest("500"))
	var apiErr *backoffice.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got: %v", err)
	}
	if apiErr.Message != "insufficient stock for product" {
		t.Fatalf("server message not preserved: %q", apiErr.Message)
	}

	if c.IsEmpty() {
		t.Fatal("cart must be preserved so the user can retry")
	}
	if len(notify.sales) != 0 {
		t.Fatal("no refresh may be signalled on failure")
	}
}

// --- Concurrency ---

func TestCommitSingleFlight(t *testing.T) {
	c := stockedCart(t, "100.00", 1)

	release := make(chan struct{})
	started := make(chan struct{})
	api := &mockSaleCreator{
		createSaleFn: func(ctx context.Context, req backoffice.CreateSaleRequest) (*backoffice.Sale, error) {
			close(started)
			<-release
			return &backoffice.Sale{ID: uuid.New()}, nil
		},
	}
	o := NewOrchestrator(c, &mockGate{allowed: true}, api, nil)

	done := make(chan error, 1)
	go func() {
		_, err := o.Commit(context.Background(), cashRequest("100.00"))
		done <- err
	}()

	<-started
	// Second attempt while the first is blocked in flight
	_, err := o.Commit(context.Background(), cashRequest("100.00"))
	if !errors.Is(err, ErrCommitInFlight) {
		t.Fatalf("expected ErrCommitInFlight, got: %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if api.calls != 1 {
		t.Fatalf("remote calls: got %d, want 1", api.calls)
	}
}

func TestCommitReleasesInFlightGuard(t *testing.T) {
	c := stockedCart(t, "100.00", 1)
	o := NewOrchestrator(c, &mockGate{allowed: true}, acceptingAPI(), nil)

	if _, err := o.Commit(context.Background(), cashRequest("100.00")); err != nil {
		t.Fatalf("first commit: %v", err)
	}

	// A fresh cart and a fresh attempt must not see a stale in-flight guard
	c.Add(cart.Product{ID: uuid.New(), Name: "case", Price: dec(t, "10.00"), Stock: 5})
	if _, err := o.Commit(context.Background(), cashRequest("10.00")); err != nil {
		t.Fatalf("second commit: %v", err)
	}
}

func TestCommitGateReCheckedBeforeSubmit(t *testing.T) {
	// The gate flips closed after the first precondition check; the re-read
	// right before the remote call must catch it.
	c := stockedCart(t, "100.00", 1)
	gate := &flippingGate{allowedReads: 1}
	api := acceptingAPI()
	o := NewOrchestrator(c, gate, api, nil)

	_, err := o.Commit(context.Background(), cashRequest("100.00"))
	if !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got: %v", err)
	}
	if api.calls != 0 {
		t.Fatal("sale must not be submitted after the gate closed")
	}
}

// flippingGate allows a fixed number of reads, then reports closed.
type flippingGate struct {
	allowedReads int
}

func (g *flippingGate) SellingAllowed() bool {
	if g.allowedReads > 0 {
		g.allowedReads--
		return true
	}
	return false
}
