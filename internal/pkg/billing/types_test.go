package billing

import (
	"errors"
	"testing"

	"github.com/MarcosViniB/PagSync/app/models"
)

func TestParseWebhookPayload(t *testing.T) {
	payload, err := ParseWebhookPayload([]byte(overduePayload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Event != "PAYMENT_OVERDUE" {
		t.Fatalf("unexpected event: %s", payload.Event)
	}
	if payload.PaymentID() != "pay_1" || payload.SubscriptionID() != "sub_1" {
		t.Fatalf("unexpected ids: payment=%q subscription=%q", payload.PaymentID(), payload.SubscriptionID())
	}
}

func TestParseWebhookPayloadMissingEvent(t *testing.T) {
	for _, body := range []string{`{}`, `{"event":""}`, `{"event":"   "}`} {
		_, err := ParseWebhookPayload([]byte(body))
		if !errors.Is(err, ErrMissingEventType) {
			t.Fatalf("ParseWebhookPayload(%s) = %v, want ErrMissingEventType", body, err)
		}
	}
}

func TestParseWebhookPayloadSubscriptionObject(t *testing.T) {
	body := `{"event":"SUBSCRIPTION_UPDATED","subscription":{"id":"sub_9","status":"CANCELLED","nextDueDate":"2026-10-01"}}`
	payload, err := ParseWebhookPayload([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.SubscriptionID() != "sub_9" || payload.PaymentID() != "" {
		t.Fatalf("unexpected ids: %+v", payload)
	}
	if eventStatus(payload) != "CANCELLED" {
		t.Fatalf("unexpected status: %s", eventStatus(payload))
	}
}

func TestSubscriptionStatusFromPayment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "CONFIRMED", want: models.StatusActive},
		{in: "confirmed", want: models.StatusActive},
		{in: "OVERDUE", want: models.StatusOverdue},
		{in: "RECEIVED", want: models.StatusReceived},
		{in: "PENDING", want: models.StatusPending},
	}

	for _, tt := range tests {
		if got := SubscriptionStatusFromPayment(tt.in); got != tt.want {
			t.Fatalf("SubscriptionStatusFromPayment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseProviderDate(t *testing.T) {
	if parseProviderDate("") != nil {
		t.Fatalf("empty input must yield nil")
	}
	if parseProviderDate("not-a-date") != nil {
		t.Fatalf("garbage input must yield nil")
	}
	got := parseProviderDate("2026-09-15")
	if got == nil || got.Year() != 2026 || got.Month() != 9 || got.Day() != 15 {
		t.Fatalf("unexpected date: %v", got)
	}
	if parseProviderDate("2026-09-15 10:30:00") == nil {
		t.Fatalf("datetime format must parse")
	}
}
