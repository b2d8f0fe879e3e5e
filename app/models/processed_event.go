package models

import "time"

// ProcessedEvent is the normalized record derived from a RawEvent once
// projection updates succeed. Write-once: replays create new rows.
type ProcessedEvent struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	RawEventID     uint      `gorm:"not null;index" json:"raw_event_id"`
	EventType      string    `gorm:"type:varchar(100);not null;index" json:"event_type"`
	PaymentID      string    `gorm:"type:varchar(191);default:'';index" json:"payment_id"`
	SubscriptionID string    `gorm:"type:varchar(191);default:'';index" json:"subscription_id"`
	CustomerID     string    `gorm:"type:varchar(191);default:''" json:"customer_id"`
	Status         string    `gorm:"type:varchar(32);default:''" json:"status"`
	Value          float64   `gorm:"type:decimal(12,2);default:0" json:"value"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}
