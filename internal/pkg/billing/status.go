package billing

import (
	"strings"

	"github.com/MarcosViniB/PagSync/app/models"
)

// SubscriptionStatusFromPayment maps a payment status to the subscription
// status it implies. CONFIRMED payments activate the subscription; every
// other status passes through in the provider's vocabulary.
func SubscriptionStatusFromPayment(paymentStatus string) string {
	status := strings.ToUpper(strings.TrimSpace(paymentStatus))
	if status == models.StatusConfirmed {
		return models.StatusActive
	}
	return status
}

// eventValue extracts the monetary value carried by a payload, preferring
// the payment over the subscription object.
func eventValue(payload *WebhookPayload) float64 {
	if payload.Payment != nil && payload.Payment.Value != 0 {
		return payload.Payment.Value
	}
	if payload.Subscription != nil {
		return payload.Subscription.Value
	}
	return 0
}

// eventStatus extracts the status carried by a payload.
func eventStatus(payload *WebhookPayload) string {
	if payload.Payment != nil && strings.TrimSpace(payload.Payment.Status) != "" {
		return strings.ToUpper(strings.TrimSpace(payload.Payment.Status))
	}
	if payload.Subscription != nil {
		return strings.ToUpper(strings.TrimSpace(payload.Subscription.Status))
	}
	return ""
}
