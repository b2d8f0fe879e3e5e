package models

import "time"

// ReasonNotFoundInWebhook marks queue entries created when a webhook
// referenced a subscription that has no local projection.
const ReasonNotFoundInWebhook = "not_found_in_webhook"

// ReconciliationQueueEntry parks subscription ids that webhooks referenced
// but the projection store does not know. Operators (or a future automated
// resolver) use the stored payload to decide whether to create the
// projection from authoritative provider data.
type ReconciliationQueueEntry struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SubscriptionID string    `gorm:"type:varchar(191);not null;index" json:"subscription_id"`
	Reason         string    `gorm:"type:varchar(64);not null" json:"reason"`
	PayloadJSON    string    `gorm:"type:longtext" json:"payload_json"`
	Resolved       bool      `gorm:"default:false;index" json:"resolved"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
