package queue

import (
	"context"
	"fmt"
	"net/http"

	"restaurant_pos/internal/client/storage"

	"github.com/google/uuid"
)

// Response is what the transport hands back for any request that reached
// the server, successful or not. A transport-level failure returns an error
// instead and is the only retryable outcome.
type Response struct {
	StatusCode int
	Body       []byte
}

// Transport sends one mutation to the server, carrying its idempotency key.
type Transport interface {
	Do(ctx context.Context, method, endpoint string, payload []byte, idempotencyKey string) (*Response, error)
}

// Action is a mutating request to enqueue. An empty IdempotencyKey gets one
// generated at enqueue time so retries of this action always collapse.
type Action struct {
	Endpoint       string
	Method         string
	Payload        []byte
	IdempotencyKey string
}

// SyncReport summarizes one drain pass.
type SyncReport struct {
	Attempted int  `json:"attempted"`
	Synced    int  `json:"synced"`
	Failed    int  `json:"failed"`
	Conflicts int  `json:"conflicts"`
	Rejected  int  `json:"rejected"`
	Halted    bool `json:"halted"`
}

// Queue is the durable FIFO of pending mutations. Entries are persisted
// before any network attempt; a drain replays them strictly in enqueue
// order, one at a time.
type Queue struct {
	store     storage.Store
	transport Transport
}

func New(store storage.Store, transport Transport) *Queue {
	return &Queue{store: store, transport: transport}
}

func (q *Queue) Enqueue(action Action) (*storage.QueuedMutation, error) {
	key := action.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}
	m := &storage.QueuedMutation{
		TargetEndpoint: action.Endpoint,
		Method:         action.Method,
		Payload:        action.Payload,
		IdempotencyKey: key,
		Status:         storage.StatusPending,
	}
	if err := q.store.AppendMutation(m); err != nil {
		return nil, fmt.Errorf("failed to persist mutation: %w", err)
	}
	return m, nil
}

// ListPending returns the entries a drain would still touch, in order.
func (q *Queue) ListPending() ([]storage.QueuedMutation, error) {
	return q.store.ListMutations(storage.StatusPending, storage.StatusSyncing, storage.StatusFailed, storage.StatusConflict)
}

func (q *Queue) Remove(id uint) error {
	return q.store.DeleteMutation(id)
}

// Discard abandons a FAILED or CONFLICT entry. This is the only user-facing
// override; there is no cancellation of an in-flight replay.
func (q *Queue) Discard(id uint) error {
	m, err := q.store.GetMutation(id)
	if err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("queued mutation %d not found", id)
	}
	if m.Status != storage.StatusFailed && m.Status != storage.StatusConflict {
		return fmt.Errorf("only FAILED or CONFLICT entries can be discarded, entry %d is %s", id, m.Status)
	}
	return q.store.DeleteMutation(id)
}

// Sync drains the queue. Per entry:
//   - 2xx: SYNCED and removed
//   - 409: CONFLICT, left for explicit user decision, never auto-retried
//   - other HTTP status: FAILED with the status recorded; business-rule
//     rejections are deterministic, so later drains skip them
//   - transport error: FAILED with no status code and the drain halts, so
//     retries can never reorder the queue
func (q *Queue) Sync(ctx context.Context) (*SyncReport, error) {
	// SYNCING entries are re-attempted too: a crash mid-flight leaves one
	// behind, and replaying it under its original idempotency key is safe.
	entries, err := q.store.ListMutations(storage.StatusPending, storage.StatusSyncing, storage.StatusFailed)
	if err != nil {
		return nil, err
	}

	report := &SyncReport{}
	for i := range entries {
		entry := entries[i]
		if entry.Status == storage.StatusFailed && entry.LastStatusCode != 0 {
			// Rejected by the server on a prior drain; awaiting discard.
			continue
		}
		report.Attempted++

		entry.Status = storage.StatusSyncing
		if err := q.store.UpdateMutation(&entry); err != nil {
			return report, err
		}

		resp, err := q.transport.Do(ctx, entry.Method, entry.TargetEndpoint, entry.Payload, entry.IdempotencyKey)
		if err != nil {
			entry.Status = storage.StatusFailed
			entry.LastError = err.Error()
			entry.LastStatusCode = 0
			if uerr := q.store.UpdateMutation(&entry); uerr != nil {
				return report, uerr
			}
			report.Failed++
			report.Halted = true
			return report, nil
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			entry.Status = storage.StatusSynced
			if err := q.store.UpdateMutation(&entry); err != nil {
				return report, err
			}
			if err := q.store.DeleteMutation(entry.ID); err != nil {
				return report, err
			}
			report.Synced++

		case resp.StatusCode == http.StatusConflict:
			entry.Status = storage.StatusConflict
			entry.LastError = string(resp.Body)
			entry.LastStatusCode = resp.StatusCode
			if err := q.store.UpdateMutation(&entry); err != nil {
				return report, err
			}
			report.Conflicts++

		default:
			entry.Status = storage.StatusFailed
			entry.LastError = string(resp.Body)
			entry.LastStatusCode = resp.StatusCode
			if err := q.store.UpdateMutation(&entry); err != nil {
				return report, err
			}
			report.Rejected++
		}
	}
	return report, nil
}

// Counts reports how many entries are awaiting sync and how many sit in
// CONFLICT, for the coordinator's aggregate status.
func (q *Queue) Counts() (pending int, conflicts int, err error) {
	entries, err := q.store.ListMutations(storage.StatusPending, storage.StatusSyncing, storage.StatusFailed, storage.StatusConflict)
	if err != nil {
		return 0, 0, err
	}
	for _, e := range entries {
		if e.Status == storage.StatusConflict {
			conflicts++
		} else {
			pending++
		}
	}
	return pending, conflicts, nil
}
