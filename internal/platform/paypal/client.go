package paypal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/fx"

	cfgpkg "github.com/zenova/wms-billing/pkg/config"
)

// APIError wraps a non-2xx provider response. The raw body is passed through
// verbatim to the caller's error payload.
type APIError struct {
	StatusCode int
	Body       json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paypal api error: status %d", e.StatusCode)
}

type Amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

type Capture struct {
	ID     string  `json:"id"`
	Status string  `json:"status"`
	Amount *Amount `json:"amount"`
}

type Payments struct {
	Captures []Capture `json:"captures"`
}

type PurchaseUnit struct {
	ReferenceID string    `json:"reference_id"`
	CustomID    string    `json:"custom_id,omitempty"`
	Amount      *Amount   `json:"amount"`
	Description string    `json:"description,omitempty"`
	Payments    *Payments `json:"payments,omitempty"`
}

// Order is the wallet provider's charge handle.
type Order struct {
	ID            string          `json:"id"`
	Status        string          `json:"status"`
	Links         []Link          `json:"links,omitempty"`
	PurchaseUnits []PurchaseUnit  `json:"purchase_units,omitempty"`
	Payer         json.RawMessage `json:"payer,omitempty"`
}

// ApprovalURL returns the link the payer must visit, empty if absent.
func (o *Order) ApprovalURL() string {
	for _, l := range o.Links {
		if l.Rel == "approve" {
			return l.Href
		}
	}
	return ""
}

// FirstCapture returns the first capture of the first purchase unit, nil if
// the order has no captures yet.
func (o *Order) FirstCapture() *Capture {
	if len(o.PurchaseUnits) == 0 || o.PurchaseUnits[0].Payments == nil {
		return nil
	}
	caps := o.PurchaseUnits[0].Payments.Captures
	if len(caps) == 0 {
		return nil
	}
	return &caps[0]
}

type CreateOrderInput struct {
	Amount      float64
	Currency    string
	InvoiceID   string
	Description string
	UserID      string
}

// Client is the wallet-network adapter. Constructed once and injected.
type Client interface {
	CreateOrder(ctx context.Context, in *CreateOrderInput) (*Order, error)
	CaptureOrder(ctx context.Context, orderID string) (*Order, error)
	GetOrder(ctx context.Context, orderID string) (*Order, error)
}

type restClient struct {
	http *resty.Client
	cfg  cfgpkg.PayPalConfig
}

func New(cfg *cfgpkg.Config) Client {
	return &restClient{
		http: resty.New().SetBaseURL(cfg.PayPal.BaseURL),
		cfg:  cfg.PayPal,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// accessToken exchanges client credentials for a bearer token. Fetched per
// call; the provider's token TTL makes caching an optimization, not a need.
func (c *restClient) accessToken(ctx context.Context) (string, error) {
	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		return "", fmt.Errorf("paypal credentials are missing")
	}

	var tok tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&tok).
		Post("/v1/oauth2/token")
	if err != nil {
		return "", fmt.Errorf("failed to get paypal access token: %w", err)
	}
	if resp.IsError() {
		return "", &APIError{StatusCode: resp.StatusCode(), Body: resp.Body()}
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("paypal token response missing access_token")
	}
	return tok.AccessToken, nil
}

func (c *restClient) CreateOrder(ctx context.Context, in *CreateOrderInput) (*Order, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	returnURL := fmt.Sprintf("%s?userId=%s&invoiceId=%s&amount=%s&currency=%s&description=%s",
		c.cfg.ReturnURL, in.UserID, in.InvoiceID,
		strconv.FormatFloat(in.Amount, 'f', 2, 64), in.Currency,
		url.QueryEscape(in.Description))
	cancelURL := fmt.Sprintf("%s?userId=%s", c.cfg.CancelURL, in.UserID)

	body := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{{
			"reference_id": in.InvoiceID,
			"amount": map[string]string{
				"currency_code": in.Currency,
				"value":         strconv.FormatFloat(in.Amount, 'f', 2, 64),
			},
			"description": fmt.Sprintf("Car Service: %s", in.Description),
			"custom_id":   fmt.Sprintf("%s_%s", in.UserID, in.InvoiceID),
		}},
		"application_context": map[string]string{
			"brand_name":          c.cfg.BrandName,
			"locale":              "en-US",
			"landing_page":        "BILLING",
			"user_action":         "PAY_NOW",
			"shipping_preference": "NO_SHIPPING",
			"return_url":          returnURL,
			"cancel_url":          cancelURL,
		},
	}

	var order Order
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		// Request id scoped to (user, time) for provider-side idempotency.
		SetHeader("PayPal-Request-Id", fmt.Sprintf("%s_%d", in.UserID, time.Now().UnixMilli())).
		SetBody(body).
		SetResult(&order).
		Post("/v2/checkout/orders")
	if err != nil {
		return nil, fmt.Errorf("failed to create paypal order: %w", err)
	}
	if resp.IsError() {
		return nil, &APIError{StatusCode: resp.StatusCode(), Body: resp.Body()}
	}
	return &order, nil
}

func (c *restClient) CaptureOrder(ctx context.Context, orderID string) (*Order, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	var order Order
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetResult(&order).
		Post(fmt.Sprintf("/v2/checkout/orders/%s/capture", orderID))
	if err != nil {
		return nil, fmt.Errorf("failed to capture paypal order: %w", err)
	}
	if resp.IsError() {
		return nil, &APIError{StatusCode: resp.StatusCode(), Body: resp.Body()}
	}
	return &order, nil
}

func (c *restClient) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	var order Order
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&order).
		Get(fmt.Sprintf("/v2/checkout/orders/%s", orderID))
	if err != nil {
		return nil, fmt.Errorf("failed to get paypal order: %w", err)
	}
	if resp.IsError() {
		return nil, &APIError{StatusCode: resp.StatusCode(), Body: resp.Body()}
	}
	return &order, nil
}

var Module = fx.Options(
	fx.Provide(New),
)
