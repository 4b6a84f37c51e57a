package ws

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/selular-pos/till/internal/backoffice"
	"github.com/selular-pos/till/internal/enum"
)

// RefreshNotifier translates domain transitions into refresh events for the
// register's UI clients. Broadcasting is fire-and-forget: a marshal failure
// drops the payload, never the event.
type RefreshNotifier struct {
	hub        *Hub
	registerID uuid.UUID
}

// NewRefreshNotifier creates a notifier for one register.
func NewRefreshNotifier(hub *Hub, registerID uuid.UUID) *RefreshNotifier {
	return &RefreshNotifier{hub: hub, registerID: registerID}
}

// SaleCommitted tells UI clients to refresh products, recent sales, and
// dashboard stats after a checkout.
func (n *RefreshNotifier) SaleCommitted(sale *backoffice.Sale) {
	payload, _ := json.Marshal(sale)
	n.hub.BroadcastToRegister(n.registerID, Event{Type: enum.EventSalesChanged, Payload: payload})
	n.hub.BroadcastToRegister(n.registerID, Event{Type: enum.EventProductsChanged})
	n.hub.BroadcastToRegister(n.registerID, Event{Type: enum.EventStatsChanged})
}

// SessionChanged tells UI clients the drawer session transitioned.
func (n *RefreshNotifier) SessionChanged(session *backoffice.Session) {
	payload, _ := json.Marshal(session)
	n.hub.BroadcastToRegister(n.registerID, Event{Type: enum.EventCashSessionChanged, Payload: payload})
}
