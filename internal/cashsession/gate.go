package cashsession

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/selular-pos/till/internal/backoffice"
	"github.com/shopspring/decimal"
)

// Errors raised by the gate before any remote call is made.
var (
	ErrSessionOpen    = errors.New("a cash session is already open")
	ErrNoOpenSession  = errors.New("no cash session is open")
	ErrNegativeAmount = errors.New("amount must be >= 0")
)

// Store defines the back office methods the gate needs.
// Satisfied by *backoffice.Client.
type Store interface {
	CurrentCashSession(ctx context.Context) (*backoffice.Session, error)
	OpenCashSession(ctx context.Context, openingAmount decimal.Decimal, notes string) (*backoffice.Session, error)
	CloseCashSession(ctx context.Context, id uuid.UUID, closingAmount decimal.Decimal, notes string) (*backoffice.Session, error)
}

// Gate tracks the drawer session and gates selling on it. Selling is allowed
// iff the last known session is open. The back office is the authority: the
// gate adopts whatever session state each call returns, and the initial state
// comes from Refresh, not from inference.
//
// The mutex serializes transitions end to end, including the remote call, so
// a checkout reading the gate cannot interleave with an in-progress close.
type Gate struct {
	mu      sync.Mutex
	api     Store
	current *backoffice.Session
}

// NewGate creates a gate with no known session. Call Refresh before relying
// on SellingAllowed.
func NewGate(api Store) *Gate {
	return &Gate{api: api}
}

// Refresh adopts the back office's current session as the gate state.
func (g *Gate) Refresh(ctx context.Context) error {
	session, err := g.api.CurrentCashSession(ctx)
	if err != nil {
		return fmt.Errorf("fetch current cash session: %w", err)
	}
	g.mu.Lock()
	g.current = session
	g.mu.Unlock()
	return nil
}

// Current returns the last known session, or nil when none is known.
func (g *Gate) Current() *backoffice.Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// SellingAllowed reports whether checkout may proceed: true iff the last
// known session is open.
func (g *Gate) SellingAllowed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.current.Closed()
}

// Open transitions Closed -> Open via the back office and adopts the returned
// session. Fails locally when a session is already open or the opening amount
// is negative.
func (g *Gate) Open(ctx context.Context, openingAmount decimal.Decimal, notes string) (*backoffice.Session, error) {
	if openingAmount.IsNegative() {
		return nil, ErrNegativeAmount
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.current.Closed() {
		return nil, ErrSessionOpen
	}

	session, err := g.api.OpenCashSession(ctx, openingAmount, notes)
	if err != nil {
		return nil, err
	}
	g.current = session
	return session, nil
}

// Close transitions Open -> Closed via the back office and adopts the
// returned session, which carries the server-computed expected amount and
// discrepancy. Fails locally when no session is open or the closing amount is
// negative.
func (g *Gate) Close(ctx context.Context, closingAmount decimal.Decimal, notes string) (*backoffice.Session, error) {
	if closingAmount.IsNegative() {
		return nil, ErrNegativeAmount
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.current.Closed() {
		return nil, ErrNoOpenSession
	}

	session, err := g.api.CloseCashSession(ctx, g.current.ID, closingAmount, notes)
	if err != nil {
		return nil, err
	}
	g.current = session
	return session, nil
}
