package billing

import (
	"context"
	"errors"
	"time"

	"github.com/MarcosViniB/PagSync/app/models"
	"github.com/MarcosViniB/PagSync/app/repository"
	"github.com/MarcosViniB/PagSync/internal/pkg/asaas"
	"gorm.io/gorm"
)

var errStorage = errors.New("storage unavailable")

// fakeStore implements every repository interface in memory.
type fakeStore struct {
	rawEvents       []*models.RawEvent
	processedEvents []*models.ProcessedEvent
	subs            map[string]*models.SubscriptionProjection
	payments        map[string]*models.PaymentProjection
	failedEvents    []*models.FailedEvent
	queueEntries    []*models.ReconciliationQueueEntry
	logEntries      []*models.ReconciliationLogEntry
	adminLogs       []*models.AdminJobLog

	nextID uint

	// injectable failures
	createProcessedErr error
	upsertPaymentErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		subs:     make(map[string]*models.SubscriptionProjection),
		payments: make(map[string]*models.PaymentProjection),
	}
}

func (f *fakeStore) repos() *repository.Repositories {
	return &repository.Repositories{
		Events:         f,
		Projections:    f,
		DeadLetter:     f,
		Reconciliation: f,
	}
}

func (f *fakeStore) id() uint {
	f.nextID++
	return f.nextID
}

// EventRepository

func (f *fakeStore) CreateRawEvent(event *models.RawEvent) error {
	event.ID = f.id()
	event.ReceivedAt = time.Now()
	f.rawEvents = append(f.rawEvents, event)
	return nil
}

func (f *fakeStore) GetRawEventByID(id uint) (*models.RawEvent, error) {
	for _, e := range f.rawEvents {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) MarkRawEventProcessed(id uint) error {
	for _, e := range f.rawEvents {
		if e.ID == id {
			e.Processed = true
		}
	}
	return nil
}

func (f *fakeStore) IncrementRawEventAttempts(id uint) error {
	for _, e := range f.rawEvents {
		if e.ID == id {
			e.ProcessAttempts++
		}
	}
	return nil
}

func (f *fakeStore) ListUnprocessedRawEvents(cutoff time.Time, limit int) ([]models.RawEvent, error) {
	var out []models.RawEvent
	for _, e := range f.rawEvents {
		if e.Processed || !e.ReceivedAt.Before(cutoff) || f.isDeadLettered(e.ID) {
			continue
		}
		if len(out) >= limit {
			break
		}
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeStore) isDeadLettered(rawEventID uint) bool {
	for _, e := range f.failedEvents {
		if e.RawEventID == rawEventID {
			return true
		}
	}
	return false
}

func (f *fakeStore) CreateProcessedEvent(event *models.ProcessedEvent) error {
	if f.createProcessedErr != nil {
		return f.createProcessedErr
	}
	event.ID = f.id()
	f.processedEvents = append(f.processedEvents, event)
	return nil
}

// ProjectionRepository

func (f *fakeStore) GetSubscription(subscriptionID string) (*models.SubscriptionProjection, error) {
	sub, ok := f.subs[subscriptionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *sub
	return &clone, nil
}

func (f *fakeStore) UpsertSubscription(sub *models.SubscriptionProjection) error {
	if existing, ok := f.subs[sub.SubscriptionID]; ok {
		sub.ID = existing.ID
	} else if sub.ID == 0 {
		sub.ID = f.id()
	}
	clone := *sub
	f.subs[sub.SubscriptionID] = &clone
	return nil
}

func (f *fakeStore) ListSubscriptions(limit int) ([]models.SubscriptionProjection, error) {
	var out []models.SubscriptionProjection
	for _, sub := range f.subs {
		if len(out) < limit {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (f *fakeStore) GetPayment(paymentID string) (*models.PaymentProjection, error) {
	payment, ok := f.payments[paymentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *payment
	return &clone, nil
}

func (f *fakeStore) UpsertPayment(payment *models.PaymentProjection) error {
	if f.upsertPaymentErr != nil {
		return f.upsertPaymentErr
	}
	if existing, ok := f.payments[payment.PaymentID]; ok {
		payment.ID = existing.ID
	} else if payment.ID == 0 {
		payment.ID = f.id()
	}
	clone := *payment
	f.payments[payment.PaymentID] = &clone
	return nil
}

// DeadLetterRepository

func (f *fakeStore) CreateFailedEvent(event *models.FailedEvent) error {
	event.ID = f.id()
	event.CreatedAt = time.Now()
	f.failedEvents = append(f.failedEvents, event)
	return nil
}

func (f *fakeStore) SaveFailedEvent(event *models.FailedEvent) error {
	for i, existing := range f.failedEvents {
		if existing.ID == event.ID {
			clone := *event
			f.failedEvents[i] = &clone
		}
	}
	return nil
}

func (f *fakeStore) GetFailedEventByRawEventID(rawEventID uint) (*models.FailedEvent, error) {
	for _, e := range f.failedEvents {
		if e.RawEventID == rawEventID {
			clone := *e
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) ListRetryableFailedEvents(maxRetries, limit int) ([]models.FailedEvent, error) {
	var out []models.FailedEvent
	for _, e := range f.failedEvents {
		if !e.Processed && e.Retries < maxRetries && len(out) < limit {
			out = append(out, *e)
		}
	}
	return out, nil
}

// ReconciliationRepository

func (f *fakeStore) CreateQueueEntry(entry *models.ReconciliationQueueEntry) error {
	entry.ID = f.id()
	f.queueEntries = append(f.queueEntries, entry)
	return nil
}

func (f *fakeStore) CreateLogEntry(entry *models.ReconciliationLogEntry) error {
	entry.ID = f.id()
	f.logEntries = append(f.logEntries, entry)
	return nil
}

func (f *fakeStore) CreateAdminJobLog(entry *models.AdminJobLog) error {
	entry.ID = f.id()
	f.adminLogs = append(f.adminLogs, entry)
	return nil
}

// fakeProviderAPI implements asaas.BillingAPI with canned responses.
type fakeProviderAPI struct {
	subscriptions map[string]*asaas.Subscription
	payments      map[string][]asaas.Payment
	errs          map[string]error

	subscriptionCalls int
	paymentCalls      int
}

func newFakeProviderAPI() *fakeProviderAPI {
	return &fakeProviderAPI{
		subscriptions: make(map[string]*asaas.Subscription),
		payments:      make(map[string][]asaas.Payment),
		errs:          make(map[string]error),
	}
}

func (f *fakeProviderAPI) GetSubscription(ctx context.Context, id string) (*asaas.Subscription, error) {
	f.subscriptionCalls++
	if err, ok := f.errs[id]; ok {
		return nil, err
	}
	if sub, ok := f.subscriptions[id]; ok {
		clone := *sub
		return &clone, nil
	}
	return nil, &asaas.NotFoundError{Resource: "subscription", ID: id}
}

func (f *fakeProviderAPI) ListPayments(ctx context.Context, subscriptionID string) ([]asaas.Payment, error) {
	f.paymentCalls++
	return f.payments[subscriptionID], nil
}

func (f *fakeProviderAPI) GetPixQrCode(ctx context.Context, paymentID string) (*asaas.PixQrCode, error) {
	return &asaas.PixQrCode{Success: true, Payload: "00020126"}, nil
}

func (f *fakeProviderAPI) CancelSubscription(ctx context.Context, id string) error {
	return nil
}
