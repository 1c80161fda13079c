package repository

import (
	"restaurant_pos/internal/models"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IdempotencyRepository interface {
	GetByKey(key string, now time.Time) (*models.IdempotencyRecord, error)
	Insert(record *models.IdempotencyRecord) error
	DeleteExpired(now time.Time) (int64, error)
}

type idempotencyRepository struct {
	db *gorm.DB
}

func NewIdempotencyRepository(db *gorm.DB) IdempotencyRepository {
	return &idempotencyRepository{db: db}
}

// GetByKey returns the non-expired record for key, or nil when none exists.
// Expired records still awaiting the sweep are treated as absent.
func (r *idempotencyRepository) GetByKey(key string, now time.Time) (*models.IdempotencyRecord, error) {
	var record models.IdempotencyRecord
	err := r.db.Where("key = ? AND expires_at > ?", key, now).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Insert writes the record with first-writer-wins semantics: when two
// concurrent first attempts race on the same key, the loser's insert is a
// no-op rather than an error.
func (r *idempotencyRepository) Insert(record *models.IdempotencyRecord) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}).Create(record).Error
}

func (r *idempotencyRepository) DeleteExpired(now time.Time) (int64, error) {
	res := r.db.Where("expires_at <= ?", now).Delete(&models.IdempotencyRecord{})
	return res.RowsAffected, res.Error
}
