package storage

import (
	"time"
)

// Mutation statuses. A mutation leaves the store only on SYNCED or an
// explicit discard of a FAILED/CONFLICT entry.
const (
	StatusPending  = "PENDING"
	StatusSyncing  = "SYNCING"
	StatusSynced   = "SYNCED"
	StatusFailed   = "FAILED"
	StatusConflict = "CONFLICT"
)

// QueuedMutation is one pending mutating action, persisted before any
// network attempt so replay order survives restarts. LastStatusCode is zero
// for transport failures and carries the HTTP status for server rejections.
type QueuedMutation struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	TargetEndpoint string    `json:"target_endpoint" gorm:"not null"`
	Method         string    `json:"method" gorm:"not null"`
	Payload        []byte    `json:"payload" gorm:"type:bytes"`
	IdempotencyKey string    `json:"idempotency_key" gorm:"uniqueIndex;not null"`
	Status         string    `json:"status" gorm:"not null;default:'PENDING';index"`
	LastError      string    `json:"last_error,omitempty"`
	LastStatusCode int       `json:"last_status_code,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CacheSnapshot is one whole-document snapshot of a logical read resource
// ("menu", "openOrders"). Overwritten wholesale, never patched.
type CacheSnapshot struct {
	Key       string    `json:"key" gorm:"primaryKey"`
	Data      []byte    `json:"data" gorm:"type:bytes"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is the durable client-side key-value repository: an ordered mutation
// queue and a snapshot map. Implementations must survive process restarts
// (sqlite) or declare themselves volatile (memory, used in tests and as the
// online-only degraded mode).
type Store interface {
	AppendMutation(m *QueuedMutation) error
	ListMutations(statuses ...string) ([]QueuedMutation, error)
	GetMutation(id uint) (*QueuedMutation, error)
	UpdateMutation(m *QueuedMutation) error
	DeleteMutation(id uint) error

	SaveSnapshot(key string, data []byte, updatedAt time.Time) error
	LoadSnapshot(key string) (*CacheSnapshot, error)

	Close() error
}
