package asaas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MarcosViniB/PagSync/internal/pkg/env"
)

const (
	sandboxBaseURL    = "https://sandbox.asaas.com/api/v3"
	productionBaseURL = "https://api.asaas.com/v3"

	defaultRequestTimeout = 10 * time.Second
)

// BillingAPI is the provider boundary used by the reconciliation worker.
// Client implements it against the real HTTP API; tests substitute fakes.
type BillingAPI interface {
	GetSubscription(ctx context.Context, id string) (*Subscription, error)
	ListPayments(ctx context.Context, subscriptionID string) ([]Payment, error)
	GetPixQrCode(ctx context.Context, paymentID string) (*PixQrCode, error)
	CancelSubscription(ctx context.Context, id string) error
}

// Client is a thin stateless wrapper around the provider REST API.
type Client struct {
	BaseURL string
	APIKey  string

	HTTPClient *http.Client
}

// NewClientFromEnv builds a client for the environment selected by ASAAS_ENV
// (sandbox unless explicitly "production").
func NewClientFromEnv() *Client {
	baseURL := sandboxBaseURL
	if strings.EqualFold(strings.TrimSpace(env.GetEnv("ASAAS_ENV", "sandbox")), "production") {
		baseURL = productionBaseURL
	}

	return &Client{
		BaseURL: baseURL,
		APIKey:  strings.TrimSpace(env.GetEnv("ASAAS_API_KEY", "")),
		HTTPClient: &http.Client{
			Timeout: defaultRequestTimeout,
		},
	}
}

// GetSubscription fetches the authoritative subscription state.
func (c *Client) GetSubscription(ctx context.Context, id string) (*Subscription, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &ClientError{StatusCode: 0, Body: "subscription id is required"}
	}

	var sub Subscription
	if err := c.doJSON(ctx, http.MethodGet, "/subscriptions/"+url.PathEscape(id), "subscription", id, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListPayments returns the payments attached to a subscription.
func (c *Client) ListPayments(ctx context.Context, subscriptionID string) ([]Payment, error) {
	if strings.TrimSpace(subscriptionID) == "" {
		return nil, &ClientError{StatusCode: 0, Body: "subscription id is required"}
	}

	var list paymentListResponse
	path := "/subscriptions/" + url.PathEscape(subscriptionID) + "/payments"
	if err := c.doJSON(ctx, http.MethodGet, path, "subscription", subscriptionID, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// GetPixQrCode fetches the PIX copy-and-paste payload for a payment.
func (c *Client) GetPixQrCode(ctx context.Context, paymentID string) (*PixQrCode, error) {
	if strings.TrimSpace(paymentID) == "" {
		return nil, &ClientError{StatusCode: 0, Body: "payment id is required"}
	}

	var qr PixQrCode
	path := "/payments/" + url.PathEscape(paymentID) + "/pixQrCode"
	if err := c.doJSON(ctx, http.MethodGet, path, "payment", paymentID, &qr); err != nil {
		return nil, err
	}
	return &qr, nil
}

// CancelSubscription deletes the subscription on the provider side.
func (c *Client) CancelSubscription(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return &ClientError{StatusCode: 0, Body: "subscription id is required"}
	}
	return c.doJSON(ctx, http.MethodDelete, "/subscriptions/"+url.PathEscape(id), "subscription", id, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path, resource, id string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.BaseURL, "/")+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("access_token", c.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		// Timeouts and connection failures are retryable.
		return &TransientError{Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// fall through to decode
	case resp.StatusCode == http.StatusNotFound:
		return &NotFoundError{Resource: resource, ID: id}
	case resp.StatusCode >= 500:
		return &TransientError{StatusCode: resp.StatusCode}
	default:
		return &ClientError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("asaas: decode %s %s response: %w", resource, id, err)
	}
	return nil
}
