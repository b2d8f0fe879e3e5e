package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MarcosViniB/PagSync/app/models"
	"github.com/MarcosViniB/PagSync/app/repository"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// retryBaseDelay is the advisory delay before a fresh dead-letter entry
// becomes eligible for replay.
const retryBaseDelay = 5 * time.Minute

// Service applies webhook events to the local projections. All state goes
// through the injected repositories; the service itself is stateless.
type Service struct {
	repos *repository.Repositories
}

// NewService creates a billing service from injected repositories.
func NewService(repos *repository.Repositories) *Service {
	return &Service{repos: repos}
}

// RecordRawEvent durably stores an inbound webhook delivery. This is the
// synchronous phase of ingestion: a failure here must surface to the caller
// so the provider redelivers.
func (s *Service) RecordRawEvent(ctx context.Context, eventType string, payloadJSON []byte) (*models.RawEvent, error) {
	_ = ctx
	event := &models.RawEvent{
		EventID:     uuid.New().String(),
		EventType:   strings.TrimSpace(eventType),
		PayloadJSON: string(payloadJSON),
	}
	if err := s.repos.Events.CreateRawEvent(event); err != nil {
		return nil, fmt.Errorf("record raw event: %w", err)
	}
	return event, nil
}

// ApplyEvent normalizes a raw event and updates the projections, marking the
// raw event processed on success. Source tags the status-history entries
// (webhook for the ingestion/outbox path, retry for dead-letter replays).
func (s *Service) ApplyEvent(ctx context.Context, raw *models.RawEvent, source string) error {
	_ = ctx
	// The counter is observational; a failed bump must not block the apply.
	if err := s.repos.Events.IncrementRawEventAttempts(raw.ID); err != nil {
		log.Errorf("[Billing] Failed to bump attempt counter for event %d: %v", raw.ID, err)
	}

	payload, err := ParseWebhookPayload([]byte(raw.PayloadJSON))
	if err != nil {
		return fmt.Errorf("normalize event %d: %w", raw.ID, err)
	}

	if subID := payload.SubscriptionID(); subID != "" {
		if err := s.applySubscription(subID, payload, source); err != nil {
			return err
		}
	}
	if payload.PaymentID() != "" {
		if err := s.applyPayment(payload, source); err != nil {
			return err
		}
	}

	// The ProcessedEvent row exists exactly once per raw event, so it is
	// only written after the projection updates went through; a replayed
	// failure must not leave one behind per attempt.
	processed := &models.ProcessedEvent{
		RawEventID:     raw.ID,
		EventType:      payload.Event,
		PaymentID:      payload.PaymentID(),
		SubscriptionID: payload.SubscriptionID(),
		CustomerID:     payload.CustomerID(),
		Status:         eventStatus(payload),
		Value:          eventValue(payload),
	}
	if err := s.repos.Events.CreateProcessedEvent(processed); err != nil {
		return fmt.Errorf("create processed event: %w", err)
	}

	if err := s.repos.Events.MarkRawEventProcessed(raw.ID); err != nil {
		return fmt.Errorf("mark raw event %d processed: %w", raw.ID, err)
	}
	return nil
}

// ApplyEventByID loads a raw event and applies it; used by the outbox worker.
func (s *Service) ApplyEventByID(ctx context.Context, rawEventID uint) error {
	raw, err := s.repos.Events.GetRawEventByID(rawEventID)
	if err != nil {
		return fmt.Errorf("load raw event %d: %w", rawEventID, err)
	}
	if raw.Processed {
		return nil
	}
	return s.ApplyEvent(ctx, raw, models.StatusSourceWebhook)
}

// RecordProcessingFailure is the by-ID variant of HandleProcessingFailure,
// used by the job queue which only carries the raw event id.
func (s *Service) RecordProcessingFailure(ctx context.Context, rawEventID uint, procErr error) error {
	raw, err := s.repos.Events.GetRawEventByID(rawEventID)
	if err != nil {
		return fmt.Errorf("load raw event %d: %w", rawEventID, err)
	}
	return s.HandleProcessingFailure(ctx, raw, procErr)
}

// applySubscription updates the subscription projection referenced by the
// payload. Unknown subscriptions are parked in the reconciliation queue
// instead of being fabricated from webhook data alone.
func (s *Service) applySubscription(subID string, payload *WebhookPayload, source string) error {
	sub, err := s.repos.Projections.GetSubscription(subID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			raw, _ := encodePayload(payload)
			return s.repos.Reconciliation.CreateQueueEntry(&models.ReconciliationQueueEntry{
				SubscriptionID: subID,
				Reason:         models.ReasonNotFoundInWebhook,
				PayloadJSON:    raw,
			})
		}
		return fmt.Errorf("lookup subscription %s: %w", subID, err)
	}

	newStatus := sub.Status
	if payload.Subscription != nil && strings.TrimSpace(payload.Subscription.Status) != "" {
		newStatus = strings.ToUpper(strings.TrimSpace(payload.Subscription.Status))
	} else if payload.Payment != nil && strings.TrimSpace(payload.Payment.Status) != "" {
		newStatus = SubscriptionStatusFromPayment(payload.Payment.Status)
	}

	sub.Status = newStatus
	sub.AppendStatusHistory(models.StatusHistoryEntry{
		Status:    newStatus,
		Source:    source,
		PaymentID: payload.PaymentID(),
		Timestamp: time.Now(),
	})
	if payload.Subscription != nil {
		if due := parseProviderDate(payload.Subscription.NextDueDate); due != nil {
			sub.NextDueDate = due
		}
		if payload.Subscription.Value != 0 {
			sub.Value = payload.Subscription.Value
		}
	}

	if err := s.repos.Projections.UpsertSubscription(sub); err != nil {
		return fmt.Errorf("upsert subscription %s: %w", subID, err)
	}
	return nil
}

// applyPayment upserts the payment projection carried by the payload.
func (s *Service) applyPayment(payload *WebhookPayload, source string) error {
	pp := payload.Payment
	payment, err := s.repos.Projections.GetPayment(pp.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("lookup payment %s: %w", pp.ID, err)
		}
		payment = &models.PaymentProjection{PaymentID: strings.TrimSpace(pp.ID)}
	}

	status := strings.ToUpper(strings.TrimSpace(pp.Status))
	payment.SubscriptionID = strings.TrimSpace(pp.Subscription)
	payment.CustomerID = strings.TrimSpace(pp.Customer)
	if status != "" {
		payment.Status = status
	}
	if pp.Value != 0 {
		payment.Value = pp.Value
	}
	if due := parseProviderDate(pp.DueDate); due != nil {
		payment.DueDate = due
	}
	if paid := parseProviderDate(pp.PaymentDate); paid != nil {
		payment.PaymentDate = paid
	}
	payment.AppendStatusHistory(models.StatusHistoryEntry{
		Status:    payment.Status,
		Source:    source,
		PaymentID: payment.PaymentID,
		Timestamp: time.Now(),
	})

	if err := s.repos.Projections.UpsertPayment(payment); err != nil {
		return fmt.Errorf("upsert payment %s: %w", pp.ID, err)
	}
	return nil
}

// HandleProcessingFailure routes an asynchronous-phase failure into the
// dead-letter queue. The HTTP response was already sent, so nothing
// propagates to the webhook sender. One raw event gets at most one
// dead-letter entry; after that the retry worker owns it, and a repeated
// failure only refreshes the stored error.
func (s *Service) HandleProcessingFailure(ctx context.Context, raw *models.RawEvent, procErr error) error {
	_ = ctx
	existing, err := s.repos.DeadLetter.GetFailedEventByRawEventID(raw.ID)
	if err == nil {
		existing.ErrorMsg = procErr.Error()
		if err := s.repos.DeadLetter.SaveFailedEvent(existing); err != nil {
			return fmt.Errorf("update failed event for %d: %w", raw.ID, err)
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("lookup failed event for %d: %w", raw.ID, err)
	}

	nextRetry := time.Now().Add(retryBaseDelay)
	failed := &models.FailedEvent{
		RawEventID:  raw.ID,
		EventType:   raw.EventType,
		PayloadJSON: raw.PayloadJSON,
		ErrorMsg:    procErr.Error(),
		Retries:     0,
		MaxRetries:  models.DefaultMaxEventRetries,
		NextRetryAt: &nextRetry,
	}
	if err := s.repos.DeadLetter.CreateFailedEvent(failed); err != nil {
		return fmt.Errorf("create failed event for %d: %w", raw.ID, err)
	}
	return nil
}

func encodePayload(payload *WebhookPayload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
