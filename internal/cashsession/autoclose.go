package cashsession

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/selular-pos/till/internal/backoffice"
	"github.com/shopspring/decimal"
)

// AutoCloseNote is the fixed note recorded on automatic closes.
const AutoCloseNote = "Automatic close"

// defaultCheckInterval keeps the wall clock evaluated at least once per
// minute, with margin for scheduler jitter.
const defaultCheckInterval = 30 * time.Second

// ConfigSource fetches the store settings that drive auto close.
// Satisfied by *backoffice.Client.
type ConfigSource interface {
	StoreConfig(ctx context.Context) (*backoffice.StoreConfig, error)
}

// Notifier is told about session transitions so UI clients can refresh.
type Notifier interface {
	SessionChanged(s *backoffice.Session)
}

// AutoCloser closes the drawer session automatically at the store's
// configured closing time. The check is idempotent: it re-reads gate state
// before acting, so running many times after the closing minute has passed
// fires at most once per open session. Config and close failures are logged
// and skipped; nothing here may corrupt gate state.
type AutoCloser struct {
	gate     *Gate
	cfg      ConfigSource
	notify   Notifier // optional
	interval time.Duration
	now      func() time.Time
}

// NewAutoCloser creates an auto closer for the gate. notify may be nil.
func NewAutoCloser(gate *Gate, cfg ConfigSource, notify Notifier) *AutoCloser {
	return &AutoCloser{
		gate:     gate,
		cfg:      cfg,
		notify:   notify,
		interval: defaultCheckInterval,
		now:      time.Now,
	}
}

// Run evaluates the closing time until the context is cancelled.
// This should be called as a goroutine: go closer.Run(ctx)
func (a *AutoCloser) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Check(ctx)
		}
	}
}

// Check runs one auto-close evaluation. Safe to re-enter: once the session
// has transitioned to Closed the gate's own precondition makes further calls
// no-ops.
func (a *AutoCloser) Check(ctx context.Context) {
	if !a.gate.SellingAllowed() {
		return
	}

	cfg, err := a.cfg.StoreConfig(ctx)
	if err != nil {
		// Not user-initiated and not safety-critical: skip this tick.
		log.Printf("ERROR: fetch store config for auto close: %v", err)
		return
	}
	if !cfg.AutoCashClose || cfg.ClosingTime == "" {
		return
	}

	if a.now().Format("15:04") != cfg.ClosingTime {
		return
	}

	// Gate.Close re-checks the open precondition under its own lock, so a
	// concurrent manual close cannot double-fire.
	session, err := a.gate.Close(ctx, decimal.Zero, AutoCloseNote)
	if err != nil {
		if errors.Is(err, ErrNoOpenSession) {
			return
		}
		log.Printf("ERROR: auto close cash session: %v", err)
		return
	}

	log.Printf("cash session %s closed automatically at %s", session.ID, cfg.ClosingTime)
	if a.notify != nil {
		a.notify.SessionChanged(session)
	}
}
