package syncer

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"restaurant_pos/internal/client/cache"
	"restaurant_pos/internal/client/queue"
)

// attemptLogKey is the reserved snapshot key holding the persisted sync
// attempt log. It reuses the snapshot store's whole-document-replace
// semantics so the log survives restarts without a third collection.
const attemptLogKey = "sync.attempts"

// SyncAttempt records the outcome of one drain, persisted so the history
// survives reloads.
type SyncAttempt struct {
	Timestamp time.Time `json:"timestamp"`
	Outcome   string    `json:"outcome"` // ok, partial, error, skipped-offline
	Error     string    `json:"error,omitempty"`
	Synced    int       `json:"synced"`
	Conflicts int       `json:"conflicts"`
}

// Status is the aggregate sync state the UI polls.
type Status struct {
	PendingCount  int        `json:"pending_count"`
	ConflictCount int        `json:"conflict_count"`
	LastSyncedAt  *time.Time `json:"last_synced_at"`
	IsOnline      bool       `json:"is_online"`
}

// Coordinator decides when the queue drains: connectivity transitions, the
// background wake message, a manual trigger, or the periodic ticker. It is
// the only component that calls Sync, so drains never run concurrently on a
// device.
type Coordinator struct {
	queue    *queue.Queue
	cache    *cache.Cache
	logSize  int
	interval time.Duration

	wakeCh   chan struct{}
	onlineCh chan bool

	mu           sync.Mutex
	online       bool
	lastSyncedAt *time.Time
}

func New(q *queue.Queue, c *cache.Cache, logSize int, interval time.Duration) *Coordinator {
	return &Coordinator{
		queue:    q,
		cache:    c,
		logSize:  logSize,
		interval: interval,
		wakeCh:   make(chan struct{}, 1),
		onlineCh: make(chan bool, 4),
		online:   true,
	}
}

// TriggerSync is the background wake message: any caller (another process,
// a timer, the UI) can ask for a drain even when no UI surface is active.
// Non-blocking; concurrent triggers coalesce.
func (c *Coordinator) TriggerSync() {
	select {
	case c.wakeCh <- struct{}{}:
	default:
	}
}

// SetOnline reports a connectivity transition. Coming back online schedules
// an immediate drain.
func (c *Coordinator) SetOnline(online bool) {
	c.onlineCh <- online
}

// Run is the drain loop. It owns all calls to queue.Sync for this device.
func (c *Coordinator) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case online := <-c.onlineCh:
			c.mu.Lock()
			wasOnline := c.online
			c.online = online
			c.mu.Unlock()
			if online && !wasOnline {
				c.SyncNow(ctx)
			}
		case <-c.wakeCh:
			c.SyncNow(ctx)
		case <-ticker.C:
			c.SyncNow(ctx)
		}
	}
}

// SyncNow performs one drain and records the attempt. Offline attempts are
// logged and skipped; the queue keeps accumulating.
func (c *Coordinator) SyncNow(ctx context.Context) *queue.SyncReport {
	c.mu.Lock()
	online := c.online
	c.mu.Unlock()

	if !online {
		c.recordAttempt(SyncAttempt{Timestamp: time.Now(), Outcome: "skipped-offline"})
		return nil
	}

	report, err := c.queue.Sync(ctx)
	attempt := SyncAttempt{Timestamp: time.Now()}
	if err != nil {
		attempt.Outcome = "error"
		attempt.Error = err.Error()
	} else {
		attempt.Synced = report.Synced
		attempt.Conflicts = report.Conflicts
		if report.Halted {
			attempt.Outcome = "partial"
			c.mu.Lock()
			c.online = false // transport failure implies we are offline
			c.mu.Unlock()
		} else {
			attempt.Outcome = "ok"
			now := attempt.Timestamp
			c.mu.Lock()
			c.lastSyncedAt = &now
			c.mu.Unlock()
		}
	}
	c.recordAttempt(attempt)
	return report
}

// recordAttempt appends to the persisted attempt log, trimmed to the last N.
func (c *Coordinator) recordAttempt(attempt SyncAttempt) {
	var attempts []SyncAttempt
	if entry, err := c.cache.Load(attemptLogKey); err == nil && entry != nil {
		if err := json.Unmarshal(entry.Data, &attempts); err != nil {
			attempts = nil
		}
	}
	attempts = append(attempts, attempt)
	if len(attempts) > c.logSize {
		attempts = attempts[len(attempts)-c.logSize:]
	}
	data, err := json.Marshal(attempts)
	if err != nil {
		return
	}
	if err := c.cache.Save(attemptLogKey, data); err != nil {
		log.Printf("Warning: failed to persist sync log: %v", err)
	}
}

// Attempts returns the persisted sync attempt log, oldest first.
func (c *Coordinator) Attempts() ([]SyncAttempt, error) {
	entry, err := c.cache.Load(attemptLogKey)
	if err != nil || entry == nil {
		return nil, err
	}
	var attempts []SyncAttempt
	if err := json.Unmarshal(entry.Data, &attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}

func (c *Coordinator) Status() (*Status, error) {
	pending, conflicts, err := c.queue.Counts()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return &Status{
		PendingCount:  pending,
		ConflictCount: conflicts,
		LastSyncedAt:  c.lastSyncedAt,
		IsOnline:      c.online,
	}, nil
}
