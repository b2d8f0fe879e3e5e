package models

import "time"

// Webhook event types delivered by the payment provider.
const (
	EventPaymentCreated      = "PAYMENT_CREATED"
	EventPaymentConfirmed    = "PAYMENT_CONFIRMED"
	EventPaymentReceived     = "PAYMENT_RECEIVED"
	EventPaymentOverdue      = "PAYMENT_OVERDUE"
	EventPaymentRefunded     = "PAYMENT_REFUNDED"
	EventPaymentDeleted      = "PAYMENT_DELETED"
	EventSubscriptionUpdated = "SUBSCRIPTION_UPDATED"
	EventSubscriptionDeleted = "SUBSCRIPTION_DELETED"
)

// RawEvent stores every inbound webhook delivery verbatim. Rows are never
// deleted; only Processed and ProcessAttempts mutate after creation.
type RawEvent struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	EventID         string    `gorm:"type:varchar(36);not null;uniqueIndex" json:"event_id"`
	EventType       string    `gorm:"type:varchar(100);not null;index" json:"event_type"`
	PayloadJSON     string    `gorm:"type:longtext;not null" json:"payload_json"`
	Processed       bool      `gorm:"default:false;index:idx_raw_events_processed_received,priority:1" json:"processed"`
	ProcessAttempts int       `gorm:"default:0" json:"process_attempts"`
	ReceivedAt      time.Time `gorm:"autoCreateTime;index:idx_raw_events_processed_received,priority:2" json:"received_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
