package models

import (
	"encoding/json"
	"time"
)

// DefaultMaxEventRetries is the ceiling applied to dead-letter entries when
// the caller does not override it.
const DefaultMaxEventRetries = 3

// RetryHistoryEntry records one replay attempt of a failed event.
type RetryHistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
}

// FailedEvent is a dead-letter entry created when projection updates fail
// after the webhook response was already sent. Terminal once Processed is
// true, either by a successful replay or by exhausting MaxRetries.
type FailedEvent struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	RawEventID       uint       `gorm:"not null;index" json:"raw_event_id"`
	EventType        string     `gorm:"type:varchar(100);not null" json:"event_type"`
	PayloadJSON      string     `gorm:"type:longtext;not null" json:"payload_json"`
	ErrorMsg         string     `gorm:"type:text" json:"error_msg"`
	Retries          int        `gorm:"default:0;index:idx_failed_events_pending,priority:2" json:"retries"`
	MaxRetries       int        `gorm:"default:3" json:"max_retries"`
	RetryHistoryJSON string     `gorm:"type:longtext" json:"retry_history_json"`
	NextRetryAt      *time.Time `gorm:"type:timestamp;default:null" json:"next_retry_at,omitempty"`
	LastRetryAt      *time.Time `gorm:"type:timestamp;default:null" json:"last_retry_at,omitempty"`
	Processed        bool       `gorm:"default:false;index:idx_failed_events_pending,priority:1" json:"processed"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// RetryHistory decodes the stored attempt log.
func (f *FailedEvent) RetryHistory() []RetryHistoryEntry {
	if f.RetryHistoryJSON == "" {
		return nil
	}
	var entries []RetryHistoryEntry
	if err := json.Unmarshal([]byte(f.RetryHistoryJSON), &entries); err != nil {
		return nil
	}
	return entries
}

// RecordAttempt appends an attempt, bumps counters and flips Processed when
// the attempt succeeded or the retry budget is exhausted.
func (f *FailedEvent) RecordAttempt(success bool, errMsg string) {
	now := time.Now()
	entries := append(f.RetryHistory(), RetryHistoryEntry{
		Timestamp: now,
		Success:   success,
		Error:     errMsg,
	})
	if data, err := json.Marshal(entries); err == nil {
		f.RetryHistoryJSON = string(data)
	}
	f.Retries++
	f.LastRetryAt = &now
	f.ErrorMsg = errMsg
	if success || f.Retries >= f.MaxRetries {
		f.Processed = true
	}
}
