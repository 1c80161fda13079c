package models

import (
	"time"

	"gorm.io/gorm"
)

// Actor is a staff member operating a POS device. AccessLevel gates which
// order transitions the actor may perform (1 = waiter .. 4 = owner).
type Actor struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"not null"`
	BranchID    uint           `json:"branch_id" gorm:"not null;index"`
	AccessLevel int            `json:"access_level" gorm:"not null;default:1"`
	PinHash     string         `json:"-" gorm:"not null"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

const (
	LevelWaiter     = 1
	LevelShiftLead  = 2
	LevelManager    = 3
	LevelOwnerAdmin = 4
)
