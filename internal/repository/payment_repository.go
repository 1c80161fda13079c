package repository

import (
	"restaurant_pos/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(payment *models.Payment) error
	GetByOrderID(orderID uint) ([]models.Payment, error)
	SumByOrderID(orderID uint) (int64, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

func (r *paymentRepository) GetByOrderID(orderID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Where("order_id = ?", orderID).Find(&payments).Error
	return payments, err
}

// SumByOrderID reports the settled amount for the order in cents. Used by
// the CLOSED precondition.
func (r *paymentRepository) SumByOrderID(orderID uint) (int64, error) {
	var sum *int64
	err := r.db.Model(&models.Payment{}).
		Where("order_id = ?", orderID).
		Select("SUM(amount)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}
