package models

import "time"

// Administrative job kinds persisted for audit.
const (
	AdminJobRetry          = "retry"
	AdminJobReconciliation = "reconciliation"
)

// AdminJobLog stores the summary of one administrative worker run
// (retry drain or reconciliation sweep) for post-hoc inspection.
type AdminJobLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	JobKind     string    `gorm:"type:varchar(32);not null;index" json:"job_kind"`
	Processed   int       `gorm:"default:0" json:"processed"`
	Successful  int       `gorm:"default:0" json:"successful"`
	Failed      int       `gorm:"default:0" json:"failed"`
	DetailsJSON string    `gorm:"type:longtext" json:"details_json"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
