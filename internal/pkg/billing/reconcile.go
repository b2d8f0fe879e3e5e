package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MarcosViniB/PagSync/app/models"
	"github.com/MarcosViniB/PagSync/internal/pkg/asaas"
	"github.com/gofiber/fiber/v2/log"
)

// DefaultReconcileLimit caps one reconciliation sweep.
const DefaultReconcileLimit = 100

// ReconcileDetail reports one subscription's treatment during a sweep.
type ReconcileDetail struct {
	SubscriptionID string `json:"subscription_id"`
	Action         string `json:"action"`
	PreviousStatus string `json:"previous_status,omitempty"`
	NewStatus      string `json:"new_status,omitempty"`
	Error          string `json:"error,omitempty"`
}

// ReconcileSummary aggregates one reconciliation run.
type ReconcileSummary struct {
	Processed int               `json:"processed"`
	Updated   int               `json:"updated"`
	Errors    int               `json:"errors"`
	Details   []ReconcileDetail `json:"details"`
}

// Reconciler diffs local subscription projections against the provider's
// source of truth and corrects drift.
type Reconciler struct {
	svc *Service
	api asaas.BillingAPI
}

// NewReconciler creates a reconciler over the billing service's stores and a
// provider client.
func NewReconciler(svc *Service, api asaas.BillingAPI) *Reconciler {
	return &Reconciler{svc: svc, api: api}
}

// Run walks up to limit local subscriptions, fetching authoritative state
// for each. A provider failure for one subscription is recorded and the
// sweep continues; the summary is persisted to the admin job log.
func (r *Reconciler) Run(ctx context.Context, limit int) (*ReconcileSummary, error) {
	if limit <= 0 {
		limit = DefaultReconcileLimit
	}

	subs, err := r.svc.repos.Projections.ListSubscriptions(limit)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	summary := &ReconcileSummary{Details: make([]ReconcileDetail, 0, len(subs))}
	for i := range subs {
		sub := &subs[i]
		summary.Processed++
		detail := r.reconcileOne(ctx, sub)
		switch detail.Action {
		case models.ReconciliationActionUpdated:
			summary.Updated++
		case models.ReconciliationActionError:
			summary.Errors++
		}
		summary.Details = append(summary.Details, detail)
	}

	r.svc.persistJobLog(models.AdminJobReconciliation, summary.Processed, summary.Updated, summary.Errors, summary.Details)
	return summary, nil
}

func (r *Reconciler) reconcileOne(ctx context.Context, sub *models.SubscriptionProjection) ReconcileDetail {
	now := time.Now()
	detail := ReconcileDetail{
		SubscriptionID: sub.SubscriptionID,
		PreviousStatus: sub.Status,
	}

	remote, err := r.api.GetSubscription(ctx, sub.SubscriptionID)
	if err != nil {
		// NotFound and transient failures alike: record, keep the local
		// record, move on to the next subscription.
		detail.Action = models.ReconciliationActionError
		detail.Error = err.Error()
		sub.LastReconciliationAt = &now
		sub.LastReconciliationError = err.Error()
		if uerr := r.svc.repos.Projections.UpsertSubscription(sub); uerr != nil {
			log.Errorf("[Reconcile] Failed to record error for %s: %v", sub.SubscriptionID, uerr)
		}
		r.writeLogEntry(detail)
		if asaas.IsTransient(err) {
			log.Warnf("[Reconcile] Transient provider failure for %s: %v", sub.SubscriptionID, err)
		}
		return detail
	}

	authoritativeStatus := strings.ToUpper(strings.TrimSpace(remote.Status))
	if remote.Deleted {
		authoritativeStatus = models.StatusDeleted
	}
	authoritativeDue := parseProviderDate(remote.NextDueDate)

	changed := authoritativeStatus != sub.Status || dueDateChanged(sub.NextDueDate, authoritativeDue)
	sub.LastReconciliationAt = &now
	sub.LastReconciliationError = ""

	if changed {
		detail.Action = models.ReconciliationActionUpdated
		detail.NewStatus = authoritativeStatus
		sub.Status = authoritativeStatus
		if authoritativeDue != nil {
			sub.NextDueDate = authoritativeDue
		}
		if remote.Value != 0 {
			sub.Value = remote.Value
		}
		sub.AppendStatusHistory(models.StatusHistoryEntry{
			Status:    authoritativeStatus,
			Source:    models.StatusSourceReconciliation,
			Timestamp: now,
		})
	} else {
		detail.Action = models.ReconciliationActionNoop
	}

	if err := r.svc.repos.Projections.UpsertSubscription(sub); err != nil {
		detail.Action = models.ReconciliationActionError
		detail.Error = err.Error()
		r.writeLogEntry(detail)
		return detail
	}

	if authoritativeStatus == models.StatusActive {
		if err := r.refreshPayments(ctx, sub.SubscriptionID); err != nil {
			detail.Error = err.Error()
			log.Errorf("[Reconcile] Payment refresh for %s failed: %v", sub.SubscriptionID, err)
		}
	}

	r.writeLogEntry(detail)
	return detail
}

// refreshPayments pulls the provider's recent payments for an active
// subscription and upserts them, independent of the webhook path.
func (r *Reconciler) refreshPayments(ctx context.Context, subscriptionID string) error {
	payments, err := r.api.ListPayments(ctx, subscriptionID)
	if err != nil {
		return err
	}
	for i := range payments {
		remote := &payments[i]
		payload := &WebhookPayload{
			Payment: &PaymentPayload{
				ID:           remote.ID,
				Customer:     remote.Customer,
				Subscription: remote.Subscription,
				Status:       remote.Status,
				Value:        remote.Value,
				DueDate:      remote.DueDate,
				PaymentDate:  remote.PaymentDate,
			},
		}
		if err := r.svc.applyPayment(payload, models.StatusSourceReconciliation); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reconciler) writeLogEntry(detail ReconcileDetail) {
	entry := &models.ReconciliationLogEntry{
		SubscriptionID: detail.SubscriptionID,
		Action:         detail.Action,
		PreviousStatus: detail.PreviousStatus,
		NewStatus:      detail.NewStatus,
		ErrorMsg:       detail.Error,
	}
	if err := r.svc.repos.Reconciliation.CreateLogEntry(entry); err != nil {
		log.Errorf("[Reconcile] Failed to write log entry for %s: %v", detail.SubscriptionID, err)
	}
}

func dueDateChanged(local, remote *time.Time) bool {
	if remote == nil {
		return false
	}
	if local == nil {
		return true
	}
	return !local.Equal(*remote)
}
