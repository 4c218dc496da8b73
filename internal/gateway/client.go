// Package gateway implements the authenticated HTTP client for the
// Payments Hub test API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultTimeout = 30 * time.Second

// APIError is a non-2xx response from the hub, carrying the remote
// error code used for outcome validation.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("hub error (%d): %s %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("hub error (%d): %s", e.Status, e.Message)
}

type apiErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to the Payments Hub test API. Monitor and method
// discovery authenticate with the public key; everything that touches
// money uses the private key.
type Client struct {
	baseURL    string
	publicKey  string
	privateKey string
	simulator  string
	httpClient *http.Client
}

// NewClient creates a hub client. Keys are pre-encoded Basic credentials
// as stored in the Postman environment.
func NewClient(baseURL, publicKey, privateKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		publicKey:  publicKey,
		privateKey: privateKey,
		simulator:  "INTERNAL",
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Monitor checks API health
func (c *Client) Monitor(ctx context.Context) (*MonitorStatus, error) {
	var out MonitorStatus
	if err := c.do(ctx, http.MethodGet, "/monitor", c.publicKey, false, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PaymentMethods lists the methods available for a currency
func (c *Client) PaymentMethods(ctx context.Context, currency string) ([]PaymentMethod, error) {
	var out paymentMethodsResponse
	path := "/paymentmethods?currencyCode=" + url.QueryEscape(currency)
	if err := c.do(ctx, http.MethodGet, path, c.publicKey, false, nil, &out); err != nil {
		return nil, err
	}
	return out.PaymentMethods, nil
}

// CreateHandle tokenizes the card into a payment handle. The Simulator
// header forces the internal test simulator on handle creation.
func (c *Client) CreateHandle(ctx context.Context, req HandleRequest) (*Handle, error) {
	var out Handle
	if err := c.do(ctx, http.MethodPost, "/paymenthandles", c.privateKey, true, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePayment submits a payment against a handle token
func (c *Client) CreatePayment(ctx context.Context, req PaymentRequest) (*Payment, error) {
	var out Payment
	if err := c.do(ctx, http.MethodPost, "/payments", c.privateKey, false, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPayment reads the current state of a payment
func (c *Client) GetPayment(ctx context.Context, id string) (*Payment, error) {
	var out Payment
	if err := c.do(ctx, http.MethodGet, "/payments/"+url.PathEscape(id), c.privateKey, false, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelPayment requests a CANCELLED status transition on a payment
func (c *Client) CancelPayment(ctx context.Context, id string) (*Payment, error) {
	var out Payment
	req := statusUpdate{Status: "CANCELLED"}
	if err := c.do(ctx, http.MethodPut, "/payments/"+url.PathEscape(id), c.privateKey, false, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRefund opens a refund against a settlement
func (c *Client) CreateRefund(ctx context.Context, settlementID string, req RefundRequest) (*Refund, error) {
	var out Refund
	path := "/settlements/" + url.PathEscape(settlementID) + "/refunds"
	if err := c.do(ctx, http.MethodPost, path, c.privateKey, false, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRefund reads the current state of a refund
func (c *Client) GetRefund(ctx context.Context, id string) (*Refund, error) {
	var out Refund
	if err := c.do(ctx, http.MethodGet, "/refunds/"+url.PathEscape(id), c.privateKey, false, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path, key string, simulated bool, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Basic "+key)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if simulated {
		req.Header.Set("Simulator", c.simulator)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: string(respBody)}
		var parsed apiErrorBody
		if json.Unmarshal(respBody, &parsed) == nil && parsed.Error.Code != "" {
			apiErr.Code = parsed.Error.Code
			apiErr.Message = parsed.Error.Message
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
