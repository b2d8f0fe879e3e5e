package controllers

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/MarcosViniB/PagSync/app/models"
	"github.com/MarcosViniB/PagSync/internal/pkg/billing"
	"github.com/MarcosViniB/PagSync/internal/pkg/jobqueue"
)

// RetryRunner replays dead-lettered events.
type RetryRunner interface {
	RetryFailedEvents(ctx context.Context, limit, maxRetries int) (*billing.RetrySummary, error)
}

// ReconcileRunner diffs local projections against the provider.
type ReconcileRunner interface {
	Run(ctx context.Context, limit int) (*billing.ReconcileSummary, error)
}

// QueueInspector exposes job queue statistics.
type QueueInspector interface {
	GetJobStats(ctx context.Context) (map[jobqueue.JobStatus]int64, error)
	GetQueueSize(ctx context.Context) (int64, error)
	GetProcessingSize(ctx context.Context) (int64, error)
}

// AdminController hosts the on-demand maintenance endpoints. All routes
// behind it require the admin API key middleware.
type AdminController struct {
	retrier    RetryRunner
	reconciler ReconcileRunner
	queue      QueueInspector
	validate   *validator.Validate
}

func NewAdminController(retrier RetryRunner, reconciler ReconcileRunner, queue QueueInspector) *AdminController {
	return &AdminController{
		retrier:    retrier,
		reconciler: reconciler,
		queue:      queue,
		validate:   validator.New(),
	}
}

type retryRequest struct {
	Limit      int `json:"limit" validate:"omitempty,min=1,max=500"`
	MaxRetries int `json:"maxRetries" validate:"omitempty,min=1,max=10"`
}

type reconciliationRequest struct {
	Limit int `json:"limit" validate:"omitempty,min=1,max=1000"`
}

// HandleRetry replays a batch of failed events. The body is optional; absent
// fields fall back to the documented defaults.
func (ac *AdminController) HandleRetry(c *fiber.Ctx) error {
	req := retryRequest{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body", "message": "Request body is not valid JSON"})
		}
	}
	if err := ac.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body", "message": err.Error()})
	}
	if req.Limit == 0 {
		req.Limit = billing.DefaultRetryLimit
	}
	if req.MaxRetries == 0 {
		req.MaxRetries = models.DefaultMaxEventRetries
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	summary, err := ac.retrier.RetryFailedEvents(ctx, req.Limit, req.MaxRetries)
	if err != nil {
		log.Errorf("[Admin] Retry run failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "retry_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "retry_results": summary})
}

// HandleReconciliation runs a reconciliation pass against the provider.
func (ac *AdminController) HandleReconciliation(c *fiber.Ctx) error {
	req := reconciliationRequest{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body", "message": "Request body is not valid JSON"})
		}
	}
	if err := ac.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body", "message": err.Error()})
	}
	if req.Limit == 0 {
		req.Limit = billing.DefaultReconcileLimit
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	summary, err := ac.reconciler.Run(ctx, req.Limit)
	if err != nil {
		log.Errorf("[Admin] Reconciliation run failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "reconciliation_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "reconciliation": summary})
}

// HandleQueueStats reports job queue depth and lifecycle counters.
func (ac *AdminController) HandleQueueStats(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stats, err := ac.queue.GetJobStats(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "stats_unavailable"})
	}
	pending, err := ac.queue.GetQueueSize(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "stats_unavailable"})
	}
	processing, err := ac.queue.GetProcessingSize(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "stats_unavailable"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":    true,
		"pending":    pending,
		"processing": processing,
		"stats":      stats,
	})
}
