package repository

import (
	"restaurant_pos/internal/models"

	"gorm.io/gorm"
)

type AuditRepository interface {
	Create(event *models.AuditEvent) error
	GetByResourceID(resourceID uint) ([]models.AuditEvent, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(event *models.AuditEvent) error {
	return r.db.Create(event).Error
}

func (r *auditRepository) GetByResourceID(resourceID uint) ([]models.AuditEvent, error) {
	var events []models.AuditEvent
	err := r.db.Where("resource_id = ?", resourceID).Order("id asc").Find(&events).Error
	return events, err
}
