package billing

import (
	"context"
	"testing"

	"github.com/MarcosViniB/PagSync/app/models"
	"github.com/MarcosViniB/PagSync/internal/pkg/asaas"
)

func TestReconcileConvergesDriftedSubscription(t *testing.T) {
	store := newFakeStore()
	seedSubscription(store, "sub_1", models.StatusActive)
	api := newFakeProviderAPI()
	api.subscriptions["sub_1"] = &asaas.Subscription{
		ID:          "sub_1",
		Status:      "OVERDUE",
		Value:       49.9,
		NextDueDate: "2026-09-15",
	}

	reconciler := NewReconciler(NewService(store.repos()), api)
	summary, err := reconciler.Run(context.Background(), 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Processed != 1 || summary.Updated != 1 || summary.Errors != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	sub := store.subs["sub_1"]
	if sub.Status != models.StatusOverdue {
		t.Fatalf("projection must converge to authoritative status, got %s", sub.Status)
	}
	if sub.NextDueDate == nil {
		t.Fatalf("next due date must be taken from the provider")
	}
	if sub.LastReconciliationAt == nil || sub.LastReconciliationError != "" {
		t.Fatalf("reconciliation bookkeeping missing: %+v", sub)
	}
	history := sub.StatusHistory()
	if len(history) != 1 || history[0].Source != models.StatusSourceReconciliation {
		t.Fatalf("unexpected history: %+v", history)
	}

	var updated int
	for _, entry := range store.logEntries {
		if entry.Action == models.ReconciliationActionUpdated {
			updated++
		}
	}
	if updated != 1 {
		t.Fatalf("expected exactly one updated log entry, got %d", updated)
	}
}

func TestReconcileNoopBumpsTimestampOnly(t *testing.T) {
	store := newFakeStore()
	seedSubscription(store, "sub_1", models.StatusOverdue)
	api := newFakeProviderAPI()
	api.subscriptions["sub_1"] = &asaas.Subscription{ID: "sub_1", Status: "OVERDUE"}

	reconciler := NewReconciler(NewService(store.repos()), api)
	summary, err := reconciler.Run(context.Background(), 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Updated != 0 {
		t.Fatalf("matching state must not count as updated: %+v", summary)
	}

	sub := store.subs["sub_1"]
	if sub.LastReconciliationAt == nil {
		t.Fatalf("noop must still bump last reconciliation timestamp")
	}
	if len(sub.StatusHistory()) != 0 {
		t.Fatalf("noop must not append history")
	}
	// OVERDUE is not ACTIVE: no payment refresh.
	if api.paymentCalls != 0 {
		t.Fatalf("payments must not be fetched for non-active subscriptions")
	}
}

func TestReconcilePartialBatchResilience(t *testing.T) {
	store := newFakeStore()
	seedSubscription(store, "sub_1", models.StatusActive)
	seedSubscription(store, "sub_2", models.StatusActive)
	seedSubscription(store, "sub_3", models.StatusActive)

	api := newFakeProviderAPI()
	api.subscriptions["sub_1"] = &asaas.Subscription{ID: "sub_1", Status: "ACTIVE"}
	api.subscriptions["sub_3"] = &asaas.Subscription{ID: "sub_3", Status: "CANCELLED"}
	api.errs["sub_2"] = &asaas.TransientError{StatusCode: 503}

	reconciler := NewReconciler(NewService(store.repos()), api)
	summary, err := reconciler.Run(context.Background(), 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Processed != 3 {
		t.Fatalf("one failing subscription must not abort the batch, processed %d", summary.Processed)
	}
	if summary.Errors != 1 {
		t.Fatalf("expected errors: 1, got %d", summary.Errors)
	}
	if summary.Updated != 1 {
		t.Fatalf("expected one drift correction, got %d", summary.Updated)
	}

	if got := store.subs["sub_2"].LastReconciliationError; got == "" {
		t.Fatalf("failed subscription must record its error")
	}
	if got := store.subs["sub_3"].Status; got != models.StatusCancelled {
		t.Fatalf("remaining batch must still converge, got %s", got)
	}
}

func TestReconcileNotFoundKeepsLocalRecord(t *testing.T) {
	store := newFakeStore()
	seedSubscription(store, "sub_gone", models.StatusActive)
	api := newFakeProviderAPI()

	reconciler := NewReconciler(NewService(store.repos()), api)
	summary, err := reconciler.Run(context.Background(), 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Errors != 1 {
		t.Fatalf("not-found must count as an error, got %d", summary.Errors)
	}
	sub := store.subs["sub_gone"]
	if sub == nil {
		t.Fatalf("local record must not be deleted")
	}
	if sub.Status != models.StatusActive {
		t.Fatalf("not-found must not change local status, got %s", sub.Status)
	}
}

func TestReconcileActiveSubscriptionRefreshesPayments(t *testing.T) {
	store := newFakeStore()
	seedSubscription(store, "sub_1", models.StatusPending)
	api := newFakeProviderAPI()
	api.subscriptions["sub_1"] = &asaas.Subscription{ID: "sub_1", Status: "ACTIVE"}
	api.payments["sub_1"] = []asaas.Payment{
		{ID: "pay_1", Subscription: "sub_1", Status: "RECEIVED", Value: 49.9, PaymentDate: "2026-08-15"},
		{ID: "pay_2", Subscription: "sub_1", Status: "PENDING", Value: 49.9, DueDate: "2026-09-15"},
	}

	reconciler := NewReconciler(NewService(store.repos()), api)
	if _, err := reconciler.Run(context.Background(), 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.payments) != 2 {
		t.Fatalf("expected 2 payment projections, got %d", len(store.payments))
	}
	pay := store.payments["pay_1"]
	if pay.Status != models.StatusReceived || pay.PaymentDate == nil {
		t.Fatalf("unexpected payment projection: %+v", pay)
	}
	history := pay.StatusHistory()
	if len(history) != 1 || history[0].Source != models.StatusSourceReconciliation {
		t.Fatalf("payment refresh must be tagged as reconciliation: %+v", history)
	}
}
