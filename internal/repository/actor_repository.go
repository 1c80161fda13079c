package repository

import (
	"restaurant_pos/internal/models"

	"gorm.io/gorm"
)

type ActorRepository interface {
	Create(actor *models.Actor) error
	GetByID(id uint) (*models.Actor, error)
}

type actorRepository struct {
	db *gorm.DB
}

func NewActorRepository(db *gorm.DB) ActorRepository {
	return &actorRepository{db: db}
}

func (r *actorRepository) Create(actor *models.Actor) error {
	return r.db.Create(actor).Error
}

func (r *actorRepository) GetByID(id uint) (*models.Actor, error) {
	var actor models.Actor
	err := r.db.First(&actor, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &actor, nil
}
