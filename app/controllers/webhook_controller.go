package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/MarcosViniB/PagSync/app/models"
	"github.com/MarcosViniB/PagSync/internal/pkg/billing"
	"github.com/MarcosViniB/PagSync/internal/pkg/jobqueue"
)

// WebhookIngestor is the slice of the billing service the webhook handler needs.
type WebhookIngestor interface {
	RecordRawEvent(ctx context.Context, eventType string, payloadJSON []byte) (*models.RawEvent, error)
}

// WebhookEnqueuer hands recorded events to the background queue.
type WebhookEnqueuer interface {
	EnqueueWebhookEvent(rawEventID uint, eventType string) (*jobqueue.Job, error)
}

// WebhookController receives provider webhook deliveries. The contract with
// the provider is: once the raw event is durably recorded we answer 200, no
// matter what happens to it afterwards.
type WebhookController struct {
	ingestor WebhookIngestor
	queue    WebhookEnqueuer
}

func NewWebhookController(ingestor WebhookIngestor, queue WebhookEnqueuer) *WebhookController {
	return &WebhookController{ingestor: ingestor, queue: queue}
}

// HandleProviderWebhook records the delivery and schedules its processing.
func (wc *WebhookController) HandleProviderWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	payload, err := billing.ParseWebhookPayload(rawBody)
	if err != nil {
		if errors.Is(err, billing.ErrMissingEventType) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "missing_event_type"})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "invalid_payload"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	raw, err := wc.ingestor.RecordRawEvent(ctx, payload.Event, rawBody)
	if err != nil {
		log.Errorf("[Webhook] Failed to record event %s: %v", payload.Event, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "webhook_persist_failed"})
	}

	// Enqueue failures are not fatal: the outbox sweep picks the event up.
	if _, err := wc.queue.EnqueueWebhookEvent(raw.ID, raw.EventType); err != nil {
		log.Errorf("[Webhook] Enqueue failed for event %d, outbox sweep will retry: %v", raw.ID, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}
