package billing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MarcosViniB/PagSync/app/models"
	"github.com/gofiber/fiber/v2/log"
)

// Retry worker defaults.
const (
	DefaultRetryLimit = 20
)

// RetryDetail reports the outcome of one dead-letter replay.
type RetryDetail struct {
	FailedEventID uint   `json:"failed_event_id"`
	RawEventID    uint   `json:"raw_event_id"`
	EventType     string `json:"event_type"`
	Success       bool   `json:"success"`
	Retries       int    `json:"retries"`
	Terminal      bool   `json:"terminal"`
	Error         string `json:"error,omitempty"`
}

// RetrySummary aggregates one retry-worker run.
type RetrySummary struct {
	Processed  int           `json:"processed"`
	Successful int           `json:"successful"`
	Failed     int           `json:"failed"`
	Details    []RetryDetail `json:"details"`
}

// RetryFailedEvents drains up to limit dead-letter entries, replaying the
// projection-update logic for each. One failing entry never aborts the
// batch; entries that exhaust maxRetries become terminal. The summary is
// persisted to the admin job log before it is returned.
func (s *Service) RetryFailedEvents(ctx context.Context, limit, maxRetries int) (*RetrySummary, error) {
	if limit <= 0 {
		limit = DefaultRetryLimit
	}
	if maxRetries <= 0 {
		maxRetries = models.DefaultMaxEventRetries
	}

	events, err := s.repos.DeadLetter.ListRetryableFailedEvents(maxRetries, limit)
	if err != nil {
		return nil, fmt.Errorf("list retryable events: %w", err)
	}

	summary := &RetrySummary{Details: make([]RetryDetail, 0, len(events))}
	for i := range events {
		failed := &events[i]
		failed.MaxRetries = maxRetries

		raw := &models.RawEvent{
			ID:          failed.RawEventID,
			EventType:   failed.EventType,
			PayloadJSON: failed.PayloadJSON,
		}

		replayErr := s.ApplyEvent(ctx, raw, models.StatusSourceRetry)
		errMsg := ""
		if replayErr != nil {
			errMsg = replayErr.Error()
		}
		failed.RecordAttempt(replayErr == nil, errMsg)

		if err := s.repos.DeadLetter.SaveFailedEvent(failed); err != nil {
			log.Errorf("[Retry] Failed to persist attempt for event %d: %v", failed.ID, err)
		}

		summary.Processed++
		if replayErr == nil {
			summary.Successful++
		} else {
			summary.Failed++
			log.Errorf("[Retry] Replay of event %d failed (attempt %d/%d): %v",
				failed.RawEventID, failed.Retries, failed.MaxRetries, replayErr)
		}
		summary.Details = append(summary.Details, RetryDetail{
			FailedEventID: failed.ID,
			RawEventID:    failed.RawEventID,
			EventType:     failed.EventType,
			Success:       replayErr == nil,
			Retries:       failed.Retries,
			Terminal:      failed.Processed && replayErr != nil,
			Error:         errMsg,
		})
	}

	s.persistJobLog(models.AdminJobRetry, summary.Processed, summary.Successful, summary.Failed, summary.Details)
	return summary, nil
}

// persistJobLog records a worker summary for audit; failures are logged, not
// propagated, because the run itself already finished.
func (s *Service) persistJobLog(kind string, processed, successful, failed int, details interface{}) {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		log.Errorf("[AdminLog] Failed to encode %s details: %v", kind, err)
	}
	entry := &models.AdminJobLog{
		JobKind:     kind,
		Processed:   processed,
		Successful:  successful,
		Failed:      failed,
		DetailsJSON: string(detailsJSON),
	}
	if err := s.repos.Reconciliation.CreateAdminJobLog(entry); err != nil {
		log.Errorf("[AdminLog] Failed to persist %s summary: %v", kind, err)
	}
}
