package jobqueue

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/MarcosViniB/PagSync/app/repository"
	"github.com/MarcosViniB/PagSync/internal/pkg/env"
)

const (
	defaultOutboxSweepInterval = 30 * time.Second
	defaultOutboxBatchSize     = 50

	// outboxMinAge keeps the sweep from racing the enqueue that happens right
	// after ingestion; only events older than this are picked up.
	outboxMinAge = time.Minute
)

// Manager owns the job queue and the outbox sweep. The sweep re-enqueues raw
// events that are still unprocessed, so a lost enqueue never loses an event.
type Manager struct {
	queue        *Queue
	events       repository.EventRepository
	outboxTicker *time.Ticker
	stopCh       chan struct{}
	wg           sync.WaitGroup
	mu           sync.Mutex
	running      bool
}

// NewManager wires the job queue to the raw event store
func NewManager(queue *Queue, events repository.EventRepository) *Manager {
	return &Manager{
		queue:  queue,
		events: events,
		stopCh: make(chan struct{}),
	}
}

// WorkerCountFromEnv reads the configured worker count, falling back to 5.
// Out-of-range values fall back too; a typo must not spawn hundreds of
// workers or none at all.
func WorkerCountFromEnv() int {
	workers := env.GetEnvInt("JOB_QUEUE_WORKERS", 5)
	if workers < 1 || workers > 32 {
		return 5
	}
	return workers
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue and the outbox sweep
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and outbox sweep")

	m.queue.Start()

	m.outboxTicker = time.NewTicker(defaultOutboxSweepInterval)
	m.wg.Add(1)
	go m.outboxWorker(m.stopCh)

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and outbox sweep...")

	if m.outboxTicker != nil {
		m.outboxTicker.Stop()
	}

	// Signal workers to stop
	close(m.stopCh)
	m.stopCh = nil
	m.running = false

	// Wait for background workers to finish
	m.wg.Wait()

	m.queue.Stop()

	log.Info("[JobQueue Manager] Stopped successfully")
}

// outboxWorker periodically sweeps unprocessed raw events back into the queue
func (m *Manager) outboxWorker(stopCh chan struct{}) {
	defer m.wg.Done()
	log.Infof("[JobQueue Manager] Outbox sweep running (interval: %s)", defaultOutboxSweepInterval)

	for {
		select {
		case <-stopCh:
			log.Info("[JobQueue Manager] Outbox sweep stopping")
			return
		case <-m.outboxTicker.C:
			if err := m.SweepOutboxOnce(); err != nil {
				log.Errorf("[JobQueue Manager] Outbox sweep error: %v", err)
			}
		}
	}
}

// SweepOutboxOnce runs a single outbox pass. Exported so the health endpoint
// and tests can trigger it directly.
func (m *Manager) SweepOutboxOnce() error {
	cutoff := time.Now().Add(-outboxMinAge)
	events, err := m.events.ListUnprocessedRawEvents(cutoff, defaultOutboxBatchSize)
	if err != nil {
		return err
	}

	for _, event := range events {
		job, err := m.queue.EnqueueWebhookEventOnce(event.ID, event.EventType)
		if err != nil {
			log.Errorf("[JobQueue Manager] Outbox enqueue failed for event %d: %v", event.ID, err)
			continue
		}
		if job != nil {
			log.Infof("[JobQueue Manager] Outbox re-enqueued event %d as job %s", event.ID, job.ID)
		}
	}
	return nil
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
