package repository

import (
	"restaurant_pos/internal/models"
	"time"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetOpen(branchID uint) ([]models.Order, error)
	GetByDateRange(startDate, endDate time.Time) ([]models.Order, error)
	Update(order *models.Order) error
	UpdateStatusFrom(id uint, from, to string, closedAt *time.Time) (bool, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

func (r *orderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Preload("Payments").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetOpen(branchID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").
		Where("branch_id = ? AND status NOT IN ?", branchID,
			[]string{string(models.OrderClosed), string(models.OrderVoided)}).
		Order("created_at asc").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) GetByDateRange(startDate, endDate time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Where("created_at BETWEEN ? AND ?", startDate, endDate).Find(&orders).Error
	return orders, err
}

func (r *orderRepository) Update(order *models.Order) error {
	return r.db.Save(order).Error
}

// UpdateStatusFrom performs a compare-and-set on the status column. It
// returns false when the order's persisted status no longer matches `from`,
// which callers translate into an InvalidTransition for the stale attempt.
func (r *orderRepository) UpdateStatusFrom(id uint, from, to string, closedAt *time.Time) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if closedAt != nil {
		updates["closed_at"] = closedAt
	}
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
