package models

import (
	"time"
)

// AuditEvent is an immutable record of one successful order transition.
// Exactly one event is appended per successful transition; rejected attempts
// write nothing.
type AuditEvent struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Action     string    `json:"action" gorm:"not null"`
	ResourceID uint      `json:"resource_id" gorm:"not null;index"`
	ActorID    uint      `json:"actor_id" gorm:"not null"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
