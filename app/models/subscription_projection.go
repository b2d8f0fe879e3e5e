package models

import (
	"encoding/json"
	"time"
)

// Subscription/payment status vocabulary mirrors the provider's.
const (
	StatusActive    = "ACTIVE"
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusReceived  = "RECEIVED"
	StatusOverdue   = "OVERDUE"
	StatusCancelled = "CANCELLED"
	StatusRefunded  = "REFUNDED"
	StatusExpired   = "EXPIRED"
	StatusInactive  = "INACTIVE"
	StatusDeleted   = "DELETED"
)

// Sources for status history entries.
const (
	StatusSourceWebhook        = "webhook"
	StatusSourceRetry          = "retry"
	StatusSourceReconciliation = "reconciliation"
)

// StatusHistoryEntry is one append-only audit entry on a projection.
type StatusHistoryEntry struct {
	Status    string    `json:"status"`
	Source    string    `json:"source"`
	PaymentID string    `json:"payment_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SubscriptionProjection is the local mirror of a provider subscription,
// keyed by the external subscription id. Upsert-by-key only; rows are
// logically deleted via StatusDeleted, never removed.
type SubscriptionProjection struct {
	ID                      uint       `gorm:"primaryKey" json:"id"`
	SubscriptionID          string     `gorm:"type:varchar(191);not null;uniqueIndex" json:"subscription_id"`
	CustomerID              string     `gorm:"type:varchar(191);default:'';index" json:"customer_id"`
	PlanID                  string     `gorm:"type:varchar(191);default:''" json:"plan_id"`
	Status                  string     `gorm:"type:varchar(32);not null;default:'PENDING';index" json:"status"`
	NextDueDate             *time.Time `gorm:"type:timestamp;default:null" json:"next_due_date,omitempty"`
	Value                   float64    `gorm:"type:decimal(12,2);default:0" json:"value"`
	StatusHistoryJSON       string     `gorm:"type:longtext" json:"status_history_json"`
	LastReconciliationAt    *time.Time `gorm:"type:timestamp;default:null" json:"last_reconciliation_at,omitempty"`
	LastReconciliationError string     `gorm:"type:text" json:"last_reconciliation_error"`
	CreatedAt               time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// StatusHistory decodes the stored history blob. An empty or corrupt blob
// yields an empty slice so callers can always append.
func (s *SubscriptionProjection) StatusHistory() []StatusHistoryEntry {
	return decodeStatusHistory(s.StatusHistoryJSON)
}

// AppendStatusHistory adds an entry and re-encodes the blob.
func (s *SubscriptionProjection) AppendStatusHistory(entry StatusHistoryEntry) {
	s.StatusHistoryJSON = encodeStatusHistory(append(s.StatusHistory(), entry))
}

func decodeStatusHistory(raw string) []StatusHistoryEntry {
	if raw == "" {
		return nil
	}
	var entries []StatusHistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}
	return entries
}

func encodeStatusHistory(entries []StatusHistoryEntry) string {
	data, err := json.Marshal(entries)
	if err != nil {
		return ""
	}
	return string(data)
}
