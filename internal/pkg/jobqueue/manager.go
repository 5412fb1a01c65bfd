package jobqueue

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/tuanngo/coursecart/internal/pkg/env"
)

// Manager manages the global job queue and background tasks
type Manager struct {
	queue       *Queue
	pruneTicker *time.Ticker
	stopCh      chan struct{}
	wg          sync.WaitGroup
	mu          sync.Mutex
	running     bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		workerCount := 2
		if raw := env.GetEnv("JOBQUEUE_WORKERS", ""); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				workerCount = n
			}
		}

		globalManager = &Manager{
			queue:  NewQueue(workerCount),
			stopCh: make(chan struct{}),
		}
	})
	return globalManager
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	m.queue.Start()

	// Ledger pruning runs daily.
	m.pruneTicker = time.NewTicker(24 * time.Hour)
	m.wg.Add(1)
	go m.pruneWorker()
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks")
	close(m.stopCh)
	if m.pruneTicker != nil {
		m.pruneTicker.Stop()
	}
	m.queue.Stop()
	m.wg.Wait()
	m.running = false
}

func (m *Manager) pruneWorker() {
	defer m.wg.Done()

	for {
		select {
		case <-m.stopCh:
			return
		case <-m.pruneTicker.C:
			retention := 90
			if raw := env.GetEnv("LEDGER_RETENTION_DAYS", ""); raw != "" {
				if n, err := strconv.Atoi(raw); err == nil && n > 0 {
					retention = n
				}
			}
			payload := LedgerPruneJobPayload{RetentionDays: retention}
			if _, err := m.queue.EnqueueJob(JobTypeLedgerPrune, payload.ToMap()); err != nil {
				log.Errorf("[JobQueue Manager] Failed to enqueue ledger prune: %v", err)
			}
		}
	}
}

// EnqueuePayloadArchive schedules a payload archive job for a ledger row.
// Best effort: callers log and move on when it fails.
func (m *Manager) EnqueuePayloadArchive(ledgerID uint, provider, eventID string) error {
	payload := PayloadArchiveJobPayload{
		LedgerID: ledgerID,
		Provider: provider,
		EventID:  eventID,
	}
	_, err := m.queue.EnqueueJob(JobTypePayloadArchive, payload.ToMap())
	return err
}
