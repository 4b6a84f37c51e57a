package backoffice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultTimeout = 10 * time.Second

// APIError is a server-reported failure. Message carries the back office's
// literal error string so callers can surface it unchanged.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client issues calls against the back office service, which owns all
// persistence, stock decrement, and cash discrepancy computation.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient constructs a back office client.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   token,
		http: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// CurrentCashSession fetches the current drawer session, or nil when the back
// office reports none.
func (c *Client) CurrentCashSession(ctx context.Context) (*Session, error) {
	var session *Session
	if err := c.do(ctx, http.MethodGet, nil, &session, "cash-sessions", "current"); err != nil {
		return nil, err
	}
	return session, nil
}

type openSessionRequest struct {
	OpeningAmount decimal.Decimal `json:"opening_amount"`
	Notes         string          `json:"notes,omitempty"`
}

// OpenCashSession opens a new drawer session.
func (c *Client) OpenCashSession(ctx context.Context, openingAmount decimal.Decimal, notes string) (*Session, error) {
	var session Session
	req := openSessionRequest{OpeningAmount: openingAmount, Notes: notes}
	if err := c.do(ctx, http.MethodPost, req, &session, "cash-sessions"); err != nil {
		return nil, err
	}
	return &session, nil
}

type closeSessionRequest struct {
	ClosingAmount decimal.Decimal `json:"closing_amount"`
	Notes         string          `json:"notes,omitempty"`
}

// CloseCashSession closes the identified session. Expected amount and
// discrepancy come back computed by the server.
func (c *Client) CloseCashSession(ctx context.Context, id uuid.UUID, closingAmount decimal.Decimal, notes string) (*Session, error) {
	var session Session
	req := closeSessionRequest{ClosingAmount: closingAmount, Notes: notes}
	if err := c.do(ctx, http.MethodPut, req, &session, "cash-sessions", id.String(), "close"); err != nil {
		return nil, err
	}
	return &session, nil
}

// CreateSale submits a sale for persistence.
func (c *Client) CreateSale(ctx context.Context, req CreateSaleRequest) (*Sale, error) {
	var sale Sale
	if err := c.do(ctx, http.MethodPost, req, &sale, "sales"); err != nil {
		return nil, err
	}
	return &sale, nil
}

// PurchaseOrder fetches a supplier order with its lines.
func (c *Client) PurchaseOrder(ctx context.Context, id uuid.UUID) (*PurchaseOrderDetail, error) {
	var detail PurchaseOrderDetail
	if err := c.do(ctx, http.MethodGet, nil, &detail, "purchase-orders", id.String()); err != nil {
		return nil, err
	}
	return &detail, nil
}

type receiveRequest struct {
	Items []ReceiveItem `json:"items"`
}

// ReceivePurchaseOrder persists cumulative received quantities for the given
// order lines.
func (c *Client) ReceivePurchaseOrder(ctx context.Context, id uuid.UUID, items []ReceiveItem) (*PurchaseOrderDetail, error) {
	var detail PurchaseOrderDetail
	if err := c.do(ctx, http.MethodPut, receiveRequest{Items: items}, &detail, "purchase-orders", id.String(), "receive"); err != nil {
		return nil, err
	}
	return &detail, nil
}

// CancelPurchaseOrder cancels the identified order.
func (c *Client) CancelPurchaseOrder(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodPut, nil, nil, "purchase-orders", id.String(), "cancel")
}

// StoreConfig fetches the store settings the till consumes.
func (c *Client) StoreConfig(ctx context.Context) (*StoreConfig, error) {
	var cfg StoreConfig
	if err := c.do(ctx, http.MethodGet, nil, &cfg, "store-config"); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ListProducts fetches the sellable products with current stock levels.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.do(ctx, http.MethodGet, nil, &products, "products"); err != nil {
		return nil, err
	}
	return products, nil
}

// Product fetches a single product.
func (c *Client) Product(ctx context.Context, id uuid.UUID) (*Product, error) {
	var product Product
	if err := c.do(ctx, http.MethodGet, nil, &product, "products", id.String()); err != nil {
		return nil, err
	}
	return &product, nil
}

// do issues one request and decodes the response into out (when non-nil).
// Non-2xx responses become *APIError carrying the server's own message.
func (c *Client) do(ctx context.Context, method string, body, out interface{}, elem ...string) error {
	endpoint, err := url.JoinPath(c.baseURL, elem...)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backoffice: %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    readError(resp.Body, resp.StatusCode),
		}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// readError extracts the server's literal error message from an {"error": ...}
// payload, falling back to the HTTP status text.
func readError(r io.Reader, status int) string {
	b, _ := io.ReadAll(io.LimitReader(r, 1024))
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(b, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	if msg := strings.TrimSpace(string(b)); msg != "" {
		return msg
	}
	return http.StatusText(status)
}
