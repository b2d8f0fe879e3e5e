package jobqueue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/MarcosViniB/PagSync/app/models"
	"github.com/MarcosViniB/PagSync/internal/pkg/env"
)

// fakeEventStore implements repository.EventRepository in memory.
type fakeEventStore struct {
	events []*models.RawEvent
}

func (f *fakeEventStore) CreateRawEvent(event *models.RawEvent) error {
	event.ID = uint(len(f.events) + 1)
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEventStore) GetRawEventByID(id uint) (*models.RawEvent, error) {
	for _, e := range f.events {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEventStore) MarkRawEventProcessed(id uint) error {
	for _, e := range f.events {
		if e.ID == id {
			e.Processed = true
		}
	}
	return nil
}

func (f *fakeEventStore) IncrementRawEventAttempts(id uint) error {
	return nil
}

func (f *fakeEventStore) ListUnprocessedRawEvents(cutoff time.Time, limit int) ([]models.RawEvent, error) {
	var out []models.RawEvent
	for _, e := range f.events {
		if !e.Processed && e.ReceivedAt.Before(cutoff) && len(out) < limit {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEventStore) CreateProcessedEvent(event *models.ProcessedEvent) error {
	return nil
}

func TestSweepOutboxEnqueuesStaleEvents(t *testing.T) {
	queue := newTestQueue(t, newFakeProcessor())
	events := &fakeEventStore{}

	stale := &models.RawEvent{EventType: "PAYMENT_RECEIVED", ReceivedAt: time.Now().Add(-5 * time.Minute)}
	fresh := &models.RawEvent{EventType: "PAYMENT_CONFIRMED", ReceivedAt: time.Now()}
	done := &models.RawEvent{EventType: "PAYMENT_OVERDUE", ReceivedAt: time.Now().Add(-5 * time.Minute), Processed: true}
	require.NoError(t, events.CreateRawEvent(stale))
	require.NoError(t, events.CreateRawEvent(fresh))
	require.NoError(t, events.CreateRawEvent(done))

	manager := NewManager(queue, events)
	require.NoError(t, manager.SweepOutboxOnce())

	size, err := queue.GetQueueSize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), size, "only stale unprocessed events belong in the sweep")
}

func TestSweepOutboxIsIdempotentAcrossRuns(t *testing.T) {
	queue := newTestQueue(t, newFakeProcessor())
	events := &fakeEventStore{}
	stale := &models.RawEvent{EventType: "PAYMENT_RECEIVED", ReceivedAt: time.Now().Add(-5 * time.Minute)}
	require.NoError(t, events.CreateRawEvent(stale))

	manager := NewManager(queue, events)
	require.NoError(t, manager.SweepOutboxOnce())
	require.NoError(t, manager.SweepOutboxOnce())

	size, err := queue.GetQueueSize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), size, "repeated sweeps must not duplicate jobs")
}

func TestWorkerCountFromEnv(t *testing.T) {
	env.Env = map[string]string{}
	t.Cleanup(func() { env.Env = nil })

	assert.Equal(t, 5, WorkerCountFromEnv(), "unset falls back to the default")

	env.Env["JOB_QUEUE_WORKERS"] = "2"
	assert.Equal(t, 2, WorkerCountFromEnv())

	env.Env["JOB_QUEUE_WORKERS"] = "0"
	assert.Equal(t, 5, WorkerCountFromEnv(), "zero workers would stall the queue")

	env.Env["JOB_QUEUE_WORKERS"] = "500"
	assert.Equal(t, 5, WorkerCountFromEnv(), "out-of-range values fall back")
}

func TestManagerStartStop(t *testing.T) {
	queue := newTestQueue(t, newFakeProcessor())
	manager := NewManager(queue, &fakeEventStore{})

	assert.False(t, manager.IsRunning())
	manager.Start()
	assert.True(t, manager.IsRunning())
	manager.Stop()
	assert.False(t, manager.IsRunning())
}
