package services

import (
	"restaurant_pos/internal/apperrors"
	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type ActorService interface {
	GetActor(id uint) (*models.Actor, error)
	Authenticate(id uint, pin string) (*models.Actor, error)
	CreateActor(name string, branchID uint, accessLevel int, pin string) (*models.Actor, error)
}

type actorService struct {
	actorRepo repository.ActorRepository
}

func NewActorService(actorRepo repository.ActorRepository) ActorService {
	return &actorService{actorRepo: actorRepo}
}

func (s *actorService) GetActor(id uint) (*models.Actor, error) {
	actor, err := s.actorRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if actor == nil || !actor.IsActive {
		return nil, apperrors.NotFound("actor", id)
	}
	return actor, nil
}

func (s *actorService) Authenticate(id uint, pin string) (*models.Actor, error) {
	actor, err := s.GetActor(id)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(actor.PinHash), []byte(pin)); err != nil {
		return nil, apperrors.Forbidden(actor.AccessLevel, 0)
	}
	return actor, nil
}

func (s *actorService) CreateActor(name string, branchID uint, accessLevel int, pin string) (*models.Actor, error) {
	if accessLevel < models.LevelWaiter || accessLevel > models.LevelOwnerAdmin {
		return nil, apperrors.Validation("access level must be between 1 and 4")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	actor := &models.Actor{
		Name:        name,
		BranchID:    branchID,
		AccessLevel: accessLevel,
		PinHash:     string(hash),
		IsActive:    true,
	}
	if err := s.actorRepo.Create(actor); err != nil {
		return nil, err
	}
	return actor, nil
}
