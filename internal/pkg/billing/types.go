package billing

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// ErrMissingEventType rejects payloads without the required event field.
var ErrMissingEventType = errors.New("webhook payload missing event field")

// WebhookPayload is the validated shape of an inbound provider webhook.
type WebhookPayload struct {
	Event        string               `json:"event" validate:"required"`
	Payment      *PaymentPayload      `json:"payment,omitempty"`
	Subscription *SubscriptionPayload `json:"subscription,omitempty"`
}

// PaymentPayload is the nested payment object of a webhook delivery.
type PaymentPayload struct {
	ID           string  `json:"id"`
	Customer     string  `json:"customer"`
	Subscription string  `json:"subscription"`
	Status       string  `json:"status"`
	Value        float64 `json:"value"`
	DueDate      string  `json:"dueDate"`
	PaymentDate  string  `json:"paymentDate"`
}

// SubscriptionPayload is the nested subscription object of a webhook delivery.
type SubscriptionPayload struct {
	ID          string  `json:"id"`
	Customer    string  `json:"customer"`
	Status      string  `json:"status"`
	Value       float64 `json:"value"`
	NextDueDate string  `json:"nextDueDate"`
}

// ParseWebhookPayload decodes and validates a webhook body. Payloads that do
// not parse into the expected shape are rejected here, not stored blindly.
func ParseWebhookPayload(raw []byte) (*WebhookPayload, error) {
	var payload WebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	if strings.TrimSpace(payload.Event) == "" {
		return nil, ErrMissingEventType
	}
	return &payload, nil
}

// SubscriptionID returns the subscription referenced by the payload, from
// either the subscription object or the payment's back-reference.
func (p *WebhookPayload) SubscriptionID() string {
	if p.Subscription != nil && strings.TrimSpace(p.Subscription.ID) != "" {
		return strings.TrimSpace(p.Subscription.ID)
	}
	if p.Payment != nil {
		return strings.TrimSpace(p.Payment.Subscription)
	}
	return ""
}

// PaymentID returns the payment id carried by the payload, if any.
func (p *WebhookPayload) PaymentID() string {
	if p.Payment == nil {
		return ""
	}
	return strings.TrimSpace(p.Payment.ID)
}

// CustomerID returns the customer reference carried by the payload, if any.
func (p *WebhookPayload) CustomerID() string {
	if p.Payment != nil && strings.TrimSpace(p.Payment.Customer) != "" {
		return strings.TrimSpace(p.Payment.Customer)
	}
	if p.Subscription != nil {
		return strings.TrimSpace(p.Subscription.Customer)
	}
	return ""
}

// parseProviderDate accepts the provider's date formats ("2006-01-02" with an
// optional time part). Unparseable or empty input yields nil.
func parseProviderDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
