package services

import (
	"fmt"
	"strings"
	"time"

	"restaurant_pos/internal/apperrors"
	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"

	"github.com/google/uuid"
)

type CreateOrderInput struct {
	BranchID    uint           `json:"branch_id"`
	ServiceType string         `json:"service_type"`
	TableID     *uint          `json:"table_id"`
	Items       []AddItemInput `json:"items"`
}

type AddItemInput struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
	Course     string `json:"course,omitempty"`
	Seat       *int   `json:"seat,omitempty"`
}

type OrderService interface {
	CreateOrder(input CreateOrderInput, actor *models.Actor) (*models.Order, error)
	GetOrderByID(id uint) (*models.Order, error)
	GetOpenOrders(branchID uint) ([]models.Order, error)
	AddItemToOrder(orderID uint, input AddItemInput) (*models.Order, error)
	RecordPayment(orderID uint, amount int64, method string, actor *models.Actor) (*models.Order, error)
	MarkItemReady(orderID, itemID uint) error
	VoidItem(orderID, itemID uint, reason string) error
	GetAuditTrail(orderID uint) ([]models.AuditEvent, error)
	ListMenu() ([]models.MenuItem, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	itemRepo    repository.OrderItemRepository
	paymentRepo repository.PaymentRepository
	auditRepo   repository.AuditRepository
	catalog     Catalog
	kitchen     KitchenDisplay
	taxRateBps  int64 // tax rate in basis points, e.g. 875 = 8.75%
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	itemRepo repository.OrderItemRepository,
	paymentRepo repository.PaymentRepository,
	auditRepo repository.AuditRepository,
	catalog Catalog,
	kitchen KitchenDisplay,
	taxRateBps int64,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		itemRepo:    itemRepo,
		paymentRepo: paymentRepo,
		auditRepo:   auditRepo,
		catalog:     catalog,
		kitchen:     kitchen,
		taxRateBps:  taxRateBps,
	}
}

func (s *orderService) CreateOrder(input CreateOrderInput, actor *models.Actor) (*models.Order, error) {
	if input.BranchID == 0 {
		return nil, apperrors.Validation("branch_id is required")
	}
	serviceType := input.ServiceType
	if serviceType == "" {
		serviceType = string(models.ServiceDineIn)
	}

	order := &models.Order{
		OrderNumber: generateOrderNumber(),
		BranchID:    input.BranchID,
		Status:      string(models.OrderNew),
		ServiceType: serviceType,
		TableID:     input.TableID,
		CreatedBy:   actor.ID,
	}

	for _, itemInput := range input.Items {
		item, err := s.buildItem(itemInput)
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, *item)
	}
	s.recalculateTotals(order)

	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(order.ID)
}

func (s *orderService) buildItem(input AddItemInput) (*models.OrderItem, error) {
	if input.Quantity <= 0 {
		return nil, apperrors.Validation("item quantity must be positive")
	}
	menuItem, err := s.catalog.ResolveMenuItem(input.MenuItemID)
	if err != nil {
		return nil, fmt.Errorf("catalog lookup failed: %w", err)
	}
	if menuItem == nil {
		return nil, apperrors.NotFound("menu item", input.MenuItemID)
	}
	return &models.OrderItem{
		MenuItemID: menuItem.ID,
		ItemName:   menuItem.Name,
		Quantity:   input.Quantity,
		UnitPrice:  menuItem.Price,
		Status:     string(models.ItemPending),
		Course:     input.Course,
		Seat:       input.Seat,
	}, nil
}

// recalculateTotals keeps the invariant total = subtotal + tax. All amounts
// are integer cents; tax rounds half up.
func (s *orderService) recalculateTotals(order *models.Order) {
	var subtotal int64
	for _, item := range order.Items {
		if item.Status == string(models.ItemVoided) {
			continue
		}
		subtotal += item.LineTotal()
	}
	order.Subtotal = subtotal
	order.Tax = (subtotal*s.taxRateBps + 5000) / 10000
	order.Total = order.Subtotal + order.Tax
}

func (s *orderService) GetOrderByID(id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, apperrors.NotFound("order", id)
	}
	return order, nil
}

func (s *orderService) GetOpenOrders(branchID uint) ([]models.Order, error) {
	return s.orderRepo.GetOpen(branchID)
}

func (s *orderService) AddItemToOrder(orderID uint, input AddItemInput) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, apperrors.NotFound("order", orderID)
	}
	if order.IsTerminal() {
		return nil, apperrors.InvalidTransition(order.Status, order.Status)
	}

	item, err := s.buildItem(input)
	if err != nil {
		return nil, err
	}
	item.OrderID = order.ID
	if err := s.itemRepo.Create(item); err != nil {
		return nil, err
	}

	order, err = s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	s.recalculateTotals(order)
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) RecordPayment(orderID uint, amount int64, method string, actor *models.Actor) (*models.Order, error) {
	if amount <= 0 {
		return nil, apperrors.Validation("payment amount must be positive")
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, apperrors.NotFound("order", orderID)
	}
	if order.IsTerminal() {
		return nil, apperrors.Validation("cannot record payment on a terminal order")
	}
	if method == "" {
		method = string(models.PaymentCash)
	}

	payment := &models.Payment{
		OrderID:    order.ID,
		Amount:     amount,
		Method:     method,
		RecordedBy: actor.ID,
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(orderID)
}

// MarkItemReady records kitchen readiness for one line item on the kitchen
// board and stamps the item row. The order-level READY transition still goes
// through the state machine.
func (s *orderService) MarkItemReady(orderID, itemID uint) error {
	item, err := s.itemRepo.GetByID(itemID)
	if err != nil || item.OrderID != orderID {
		return apperrors.NotFound("order item", itemID)
	}
	if item.Status == string(models.ItemVoided) {
		return apperrors.Validation("cannot mark a voided item ready")
	}

	if err := s.kitchen.MarkItemReady(orderID, itemID); err != nil {
		return err
	}
	now := time.Now().UTC()
	item.Status = string(models.ItemReady)
	item.ReadyAt = &now
	return s.itemRepo.Update(item)
}

// VoidItem voids a single line item. A reason is required once the item has
// been sent to the kitchen; pending items void freely.
func (s *orderService) VoidItem(orderID, itemID uint, reason string) error {
	item, err := s.itemRepo.GetByID(itemID)
	if err != nil || item.OrderID != orderID {
		return apperrors.NotFound("order item", itemID)
	}
	if item.Status == string(models.ItemVoided) {
		return apperrors.Validation("item is already voided")
	}
	if item.WasSent() && strings.TrimSpace(reason) == "" {
		return apperrors.Validation("void reason required for a sent item")
	}

	now := time.Now().UTC()
	item.Status = string(models.ItemVoided)
	item.VoidedAt = &now
	item.VoidReason = reason
	if err := s.itemRepo.Update(item); err != nil {
		return err
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	s.recalculateTotals(order)
	return s.orderRepo.Update(order)
}

func (s *orderService) GetAuditTrail(orderID uint) ([]models.AuditEvent, error) {
	return s.auditRepo.GetByResourceID(orderID)
}

func (s *orderService) ListMenu() ([]models.MenuItem, error) {
	return s.catalog.ListMenu()
}

func generateOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}
