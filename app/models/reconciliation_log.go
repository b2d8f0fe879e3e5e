package models

import "time"

// Reconciliation outcome per subscription per run.
const (
	ReconciliationActionUpdated = "updated"
	ReconciliationActionNoop    = "noop"
	ReconciliationActionError   = "error"
)

// ReconciliationLogEntry is a write-once audit record of one subscription's
// treatment during a reconciliation run.
type ReconciliationLogEntry struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SubscriptionID string    `gorm:"type:varchar(191);not null;index" json:"subscription_id"`
	Action         string    `gorm:"type:varchar(16);not null;index" json:"action"`
	PreviousStatus string    `gorm:"type:varchar(32);default:''" json:"previous_status"`
	NewStatus      string    `gorm:"type:varchar(32);default:''" json:"new_status"`
	ErrorMsg       string    `gorm:"type:text" json:"error_msg"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
