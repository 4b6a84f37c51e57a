package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/selular-pos/till/internal/cashsession"
	"github.com/shopspring/decimal"
)

// CashSessionHandler exposes the drawer session lifecycle.
type CashSessionHandler struct {
	gate   *cashsession.Gate
	notify cashsession.Notifier // optional
}

// NewCashSessionHandler creates a new CashSessionHandler. notify may be nil.
func NewCashSessionHandler(gate *cashsession.Gate, notify cashsession.Notifier) *CashSessionHandler {
	return &CashSessionHandler{gate: gate, notify: notify}
}

// RegisterRoutes registers cash session endpoints on the given Chi router.
// Expected to be mounted at /cash-sessions
func (h *CashSessionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/current", h.Current)
	r.Post("/", h.Open)
	r.Put("/current/close", h.Close)
}

// --- Request types ---

type openSessionRequest struct {
	OpeningAmount string `json:"opening_amount"`
	Notes         string `json:"notes"`
}

type closeSessionRequest struct {
	ClosingAmount string `json:"closing_amount"`
	Notes         string `json:"notes"`
}

// --- Handlers ---

// Current handles GET /cash-sessions/current. Responds null when no session
// is known.
func (h *CashSessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.gate.Current())
}

// Open handles POST /cash-sessions.
func (h *CashSessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	openingAmount, err := decimal.NewFromString(req.OpeningAmount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid opening_amount"})
		return
	}

	session, err := h.gate.Open(r.Context(), openingAmount, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, cashsession.ErrSessionOpen):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		case errors.Is(err, cashsession.ErrNegativeAmount):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			writeRemoteError(w, "open cash session", err)
		}
		return
	}

	if h.notify != nil {
		h.notify.SessionChanged(session)
	}
	writeJSON(w, http.StatusCreated, session)
}

// Close handles PUT /cash-sessions/current/close.
func (h *CashSessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	var req closeSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	closingAmount, err := decimal.NewFromString(req.ClosingAmount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid closing_amount"})
		return
	}

	session, err := h.gate.Close(r.Context(), closingAmount, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, cashsession.ErrNoOpenSession):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		case errors.Is(err, cashsession.ErrNegativeAmount):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			writeRemoteError(w, "close cash session", err)
		}
		return
	}

	if h.notify != nil {
		h.notify.SessionChanged(session)
	}
	writeJSON(w, http.StatusOK, session)
}
