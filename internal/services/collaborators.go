package services

import (
	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"
)

// External collaborators the order core consumes through narrow interfaces.
// Production wiring uses the redis client for the kitchen board and catalog
// and the payment repository for settled amounts; tests swap in doubles.

type KitchenDisplay interface {
	MarkItemReady(orderID, itemID uint) error
	AllItemsReady(orderID uint, itemIDs []uint) (bool, error)
}

type Catalog interface {
	ResolveMenuItem(menuItemID string) (*models.MenuItem, error)
	ListMenu() ([]models.MenuItem, error)
}

type PaymentProvider interface {
	SettledAmount(orderID uint) (int64, error)
}

type repoPaymentProvider struct {
	payments repository.PaymentRepository
}

// NewRepoPaymentProvider adapts the payment repository to the collaborator
// interface the state machine closes orders against.
func NewRepoPaymentProvider(payments repository.PaymentRepository) PaymentProvider {
	return &repoPaymentProvider{payments: payments}
}

func (p *repoPaymentProvider) SettledAmount(orderID uint) (int64, error) {
	return p.payments.SumByOrderID(orderID)
}
