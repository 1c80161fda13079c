package storage

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type sqliteStore struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) the device database. Callers treat a failure
// here as StorageUnavailable and fall back to the memory store.
func OpenSQLite(path string) (Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open client database: %w", err)
	}
	if err := db.AutoMigrate(&QueuedMutation{}, &CacheSnapshot{}); err != nil {
		return nil, fmt.Errorf("failed to migrate client database: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) AppendMutation(m *QueuedMutation) error {
	return s.db.Create(m).Error
}

// ListMutations returns mutations in enqueue order. With no statuses given
// it returns everything still in the store.
func (s *sqliteStore) ListMutations(statuses ...string) ([]QueuedMutation, error) {
	var mutations []QueuedMutation
	q := s.db.Order("id asc")
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	err := q.Find(&mutations).Error
	return mutations, err
}

func (s *sqliteStore) GetMutation(id uint) (*QueuedMutation, error) {
	var m QueuedMutation
	err := s.db.First(&m, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (s *sqliteStore) UpdateMutation(m *QueuedMutation) error {
	return s.db.Save(m).Error
}

func (s *sqliteStore) DeleteMutation(id uint) error {
	return s.db.Delete(&QueuedMutation{}, id).Error
}

func (s *sqliteStore) SaveSnapshot(key string, data []byte, updatedAt time.Time) error {
	snapshot := &CacheSnapshot{Key: key, Data: data, UpdatedAt: updatedAt}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(snapshot).Error
}

func (s *sqliteStore) LoadSnapshot(key string) (*CacheSnapshot, error) {
	var snapshot CacheSnapshot
	err := s.db.First(&snapshot, "key = ?", key).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &snapshot, nil
}

func (s *sqliteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
