package services

import (
	"fmt"
	"log"
	"time"

	"restaurant_pos/internal/apperrors"
	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"
)

// TransitionMetadata carries the caller-supplied context a transition may
// require: a void reason, the waste acknowledgement for late voids, and the
// ledger-reversal flag for voiding a closed order.
type TransitionMetadata struct {
	Reason                string `json:"reason,omitempty"`
	AcknowledgeWaste      bool   `json:"acknowledge_waste,omitempty"`
	RequireLedgerReversal bool   `json:"require_ledger_reversal,omitempty"`
}

// StateMachine is the sole authority for order status transitions. All
// writes to the status column go through Transition; nothing else in the
// system mutates it.
type StateMachine interface {
	CanTransition(order *models.Order, target models.OrderStatus) (bool, error)
	ValidateTransition(order *models.Order, target models.OrderStatus, actor *models.Actor, meta TransitionMetadata) error
	Transition(order *models.Order, target models.OrderStatus, actor *models.Actor, meta TransitionMetadata) (*models.Order, *models.AuditEvent, error)

	SendToKitchen(orderID uint, actor *models.Actor) (*models.Order, error)
	MarkReady(orderID uint, actor *models.Actor) (*models.Order, error)
	MarkServed(orderID uint, actor *models.Actor) (*models.Order, error)
	Close(orderID uint, actor *models.Actor) (*models.Order, error)
	Void(orderID uint, actor *models.Actor, meta TransitionMetadata) (*models.Order, error)
}

type transitionRule struct {
	from            models.OrderStatus
	to              models.OrderStatus
	minLevel        int
	needsReason     bool
	needsWasteAck   bool
	needsLedgerFlag bool
}

// The transition table. A (from, to) pair absent here is an invalid
// transition for every actor, regardless of level.
var transitionTable = []transitionRule{
	{from: models.OrderNew, to: models.OrderSent, minLevel: models.LevelWaiter},
	{from: models.OrderSent, to: models.OrderInKitchen, minLevel: models.LevelWaiter},
	{from: models.OrderSent, to: models.OrderReady, minLevel: models.LevelWaiter},
	{from: models.OrderInKitchen, to: models.OrderReady, minLevel: models.LevelWaiter},
	{from: models.OrderReady, to: models.OrderServed, minLevel: models.LevelWaiter},
	{from: models.OrderServed, to: models.OrderClosed, minLevel: models.LevelWaiter},
	{from: models.OrderReady, to: models.OrderClosed, minLevel: models.LevelWaiter},
	{from: models.OrderNew, to: models.OrderVoided, minLevel: models.LevelShiftLead},
	{from: models.OrderSent, to: models.OrderVoided, minLevel: models.LevelManager, needsReason: true},
	{from: models.OrderInKitchen, to: models.OrderVoided, minLevel: models.LevelManager, needsReason: true},
	{from: models.OrderReady, to: models.OrderVoided, minLevel: models.LevelOwnerAdmin, needsReason: true, needsWasteAck: true},
	{from: models.OrderServed, to: models.OrderVoided, minLevel: models.LevelOwnerAdmin, needsReason: true, needsWasteAck: true},
	{from: models.OrderClosed, to: models.OrderVoided, minLevel: models.LevelOwnerAdmin, needsReason: true, needsLedgerFlag: true},
}

func findRule(from, to models.OrderStatus) *transitionRule {
	for i := range transitionTable {
		if transitionTable[i].from == from && transitionTable[i].to == to {
			return &transitionTable[i]
		}
	}
	return nil
}

type stateMachine struct {
	orderRepo repository.OrderRepository
	itemRepo  repository.OrderItemRepository
	auditRepo repository.AuditRepository
	kitchen   KitchenDisplay
	payments  PaymentProvider
}

func NewStateMachine(
	orderRepo repository.OrderRepository,
	itemRepo repository.OrderItemRepository,
	auditRepo repository.AuditRepository,
	kitchen KitchenDisplay,
	payments PaymentProvider,
) StateMachine {
	return &stateMachine{
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
		auditRepo: auditRepo,
		kitchen:   kitchen,
		payments:  payments,
	}
}

// activeItemIDs returns the ids of every non-voided line item.
func activeItemIDs(order *models.Order) []uint {
	ids := make([]uint, 0, len(order.Items))
	for _, item := range order.Items {
		if item.Status != string(models.ItemVoided) {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

// checkPrecondition evaluates the order-state precondition for the rule,
// without looking at actor level or metadata.
func (s *stateMachine) checkPrecondition(order *models.Order, rule *transitionRule) error {
	switch {
	case rule.from == models.OrderNew && rule.to == models.OrderSent:
		if len(activeItemIDs(order)) == 0 {
			return apperrors.Validation("order has no items to send")
		}

	case rule.to == models.OrderReady:
		ready, err := s.kitchen.AllItemsReady(order.ID, activeItemIDs(order))
		if err != nil {
			return fmt.Errorf("kitchen display lookup failed: %w", err)
		}
		if !ready {
			return apperrors.Validation("kitchen has not reported all items ready")
		}

	case rule.to == models.OrderClosed:
		if rule.from == models.OrderReady && order.ServiceType != string(models.ServiceTakeaway) {
			return apperrors.InvalidTransition(order.Status, string(rule.to))
		}
		settled, err := s.payments.SettledAmount(order.ID)
		if err != nil {
			return fmt.Errorf("payment lookup failed: %w", err)
		}
		if settled < order.Total {
			return apperrors.Validation(fmt.Sprintf("insufficient payment: settled %d of %d", settled, order.Total))
		}
	}
	return nil
}

// CanTransition is a pure check: the pair must be in the table and the
// order-state precondition must hold. Actor level and metadata are not
// considered here. The error return reports collaborator failures only,
// never a rejected transition.
func (s *stateMachine) CanTransition(order *models.Order, target models.OrderStatus) (bool, error) {
	rule := findRule(models.OrderStatus(order.Status), target)
	if rule == nil {
		return false, nil
	}
	if err := s.checkPrecondition(order, rule); err != nil {
		if apperrors.Code(err) != "" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ValidateTransition rejects with InvalidTransition, Forbidden, or a
// ValidationError without mutating anything.
func (s *stateMachine) ValidateTransition(order *models.Order, target models.OrderStatus, actor *models.Actor, meta TransitionMetadata) error {
	rule := findRule(models.OrderStatus(order.Status), target)
	if rule == nil {
		return apperrors.InvalidTransition(order.Status, string(target))
	}
	if actor == nil || actor.AccessLevel < rule.minLevel {
		level := 0
		if actor != nil {
			level = actor.AccessLevel
		}
		return apperrors.Forbidden(rule.minLevel, level)
	}
	if rule.needsReason && meta.Reason == "" {
		return apperrors.Validation("void reason required")
	}
	if rule.needsWasteAck && !meta.AcknowledgeWaste {
		return apperrors.Validation("inventory waste impact must be acknowledged")
	}
	if rule.needsLedgerFlag && !meta.RequireLedgerReversal {
		return apperrors.Validation("reversing ledger entry must be flagged")
	}
	return s.checkPrecondition(order, rule)
}

// Transition validates, compare-and-sets the status column, and appends
// exactly one audit event. A stale `from` (another writer advanced the order
// first) fails with InvalidTransition instead of overwriting blindly.
func (s *stateMachine) Transition(order *models.Order, target models.OrderStatus, actor *models.Actor, meta TransitionMetadata) (*models.Order, *models.AuditEvent, error) {
	if err := s.ValidateTransition(order, target, actor, meta); err != nil {
		return nil, nil, err
	}

	var closedAt *time.Time
	if target == models.OrderClosed {
		now := time.Now().UTC()
		closedAt = &now
	}

	applied, err := s.orderRepo.UpdateStatusFrom(order.ID, order.Status, string(target), closedAt)
	if err != nil {
		return nil, nil, err
	}
	if !applied {
		return nil, nil, apperrors.InvalidTransition(order.Status, string(target))
	}

	if target == models.OrderSent {
		s.markItemsSent(order)
	}

	event := &models.AuditEvent{
		Action:     "order.transition",
		ResourceID: order.ID,
		ActorID:    actor.ID,
		FromStatus: order.Status,
		ToStatus:   string(target),
		Reason:     meta.Reason,
	}
	if err := s.auditRepo.Create(event); err != nil {
		return nil, nil, err
	}

	updated, err := s.orderRepo.GetByID(order.ID)
	if err != nil {
		return nil, nil, err
	}
	return updated, event, nil
}

// markItemsSent stamps pending items as handed to the kitchen. Item-level
// failures do not roll back the order transition.
func (s *stateMachine) markItemsSent(order *models.Order) {
	now := time.Now().UTC()
	for i := range order.Items {
		item := order.Items[i]
		if item.Status != string(models.ItemPending) {
			continue
		}
		item.Status = string(models.ItemSent)
		item.SentAt = &now
		if err := s.itemRepo.Update(&item); err != nil {
			log.Printf("Warning: failed to mark item %d sent: %v", item.ID, err)
		}
	}
}

func (s *stateMachine) load(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, apperrors.NotFound("order", orderID)
	}
	return order, nil
}

// Convenience wrappers. They carry no logic of their own.

func (s *stateMachine) SendToKitchen(orderID uint, actor *models.Actor) (*models.Order, error) {
	order, err := s.load(orderID)
	if err != nil {
		return nil, err
	}
	updated, _, err := s.Transition(order, models.OrderSent, actor, TransitionMetadata{})
	return updated, err
}

func (s *stateMachine) MarkReady(orderID uint, actor *models.Actor) (*models.Order, error) {
	order, err := s.load(orderID)
	if err != nil {
		return nil, err
	}
	updated, _, err := s.Transition(order, models.OrderReady, actor, TransitionMetadata{})
	return updated, err
}

func (s *stateMachine) MarkServed(orderID uint, actor *models.Actor) (*models.Order, error) {
	order, err := s.load(orderID)
	if err != nil {
		return nil, err
	}
	updated, _, err := s.Transition(order, models.OrderServed, actor, TransitionMetadata{})
	return updated, err
}

func (s *stateMachine) Close(orderID uint, actor *models.Actor) (*models.Order, error) {
	order, err := s.load(orderID)
	if err != nil {
		return nil, err
	}
	updated, _, err := s.Transition(order, models.OrderClosed, actor, TransitionMetadata{})
	return updated, err
}

func (s *stateMachine) Void(orderID uint, actor *models.Actor, meta TransitionMetadata) (*models.Order, error) {
	order, err := s.load(orderID)
	if err != nil {
		return nil, err
	}
	updated, _, err := s.Transition(order, models.OrderVoided, actor, meta)
	return updated, err
}
