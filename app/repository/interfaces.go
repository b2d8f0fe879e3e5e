package repository

import (
	"time"

	"github.com/MarcosViniB/PagSync/app/models"
)

// EventRepository persists the append-only webhook audit trail.
type EventRepository interface {
	CreateRawEvent(event *models.RawEvent) error
	GetRawEventByID(id uint) (*models.RawEvent, error)
	MarkRawEventProcessed(id uint) error
	IncrementRawEventAttempts(id uint) error
	// ListUnprocessedRawEvents feeds the outbox sweep: unprocessed rows
	// received before cutoff, oldest first. Dead-lettered events are
	// excluded; once an event has a FailedEvent entry, only the retry
	// worker touches it.
	ListUnprocessedRawEvents(cutoff time.Time, limit int) ([]models.RawEvent, error)
	CreateProcessedEvent(event *models.ProcessedEvent) error
}

// ProjectionRepository owns the local subscription/payment mirrors.
// All writes are upserts keyed on the external id.
type ProjectionRepository interface {
	GetSubscription(subscriptionID string) (*models.SubscriptionProjection, error)
	UpsertSubscription(sub *models.SubscriptionProjection) error
	ListSubscriptions(limit int) ([]models.SubscriptionProjection, error)
	GetPayment(paymentID string) (*models.PaymentProjection, error)
	UpsertPayment(payment *models.PaymentProjection) error
}

// DeadLetterRepository holds events whose projection update failed.
type DeadLetterRepository interface {
	CreateFailedEvent(event *models.FailedEvent) error
	SaveFailedEvent(event *models.FailedEvent) error
	GetFailedEventByRawEventID(rawEventID uint) (*models.FailedEvent, error)
	// ListRetryableFailedEvents returns unprocessed entries below the retry
	// ceiling, oldest first.
	ListRetryableFailedEvents(maxRetries, limit int) ([]models.FailedEvent, error)
}

// ReconciliationRepository stores observational records: the not-found
// queue, per-run log entries and admin job summaries.
type ReconciliationRepository interface {
	CreateQueueEntry(entry *models.ReconciliationQueueEntry) error
	CreateLogEntry(entry *models.ReconciliationLogEntry) error
	CreateAdminJobLog(entry *models.AdminJobLog) error
}

// Repositories bundles all stores for injection into services.
type Repositories struct {
	Events         EventRepository
	Projections    ProjectionRepository
	DeadLetter     DeadLetterRepository
	Reconciliation ReconciliationRepository
}
