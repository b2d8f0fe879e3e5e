package models

import "time"

// PaymentProjection is the local mirror of a provider payment, keyed by the
// external payment id with the same upsert discipline as subscriptions.
type PaymentProjection struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	PaymentID         string     `gorm:"type:varchar(191);not null;uniqueIndex" json:"payment_id"`
	SubscriptionID    string     `gorm:"type:varchar(191);default:'';index" json:"subscription_id"`
	CustomerID        string     `gorm:"type:varchar(191);default:''" json:"customer_id"`
	Status            string     `gorm:"type:varchar(32);not null;default:'PENDING';index" json:"status"`
	Value             float64    `gorm:"type:decimal(12,2);default:0" json:"value"`
	DueDate           *time.Time `gorm:"type:timestamp;default:null" json:"due_date,omitempty"`
	PaymentDate       *time.Time `gorm:"type:timestamp;default:null" json:"payment_date,omitempty"`
	StatusHistoryJSON string     `gorm:"type:longtext" json:"status_history_json"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// StatusHistory decodes the stored history blob.
func (p *PaymentProjection) StatusHistory() []StatusHistoryEntry {
	return decodeStatusHistory(p.StatusHistoryJSON)
}

// AppendStatusHistory adds an entry and re-encodes the blob.
func (p *PaymentProjection) AppendStatusHistory(entry StatusHistoryEntry) {
	p.StatusHistoryJSON = encodeStatusHistory(append(p.StatusHistory(), entry))
}
