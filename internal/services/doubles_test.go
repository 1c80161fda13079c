package services

import (
	"sync"
	"time"

	"restaurant_pos/internal/apperrors"
	"restaurant_pos/internal/models"
)

// In-memory repository doubles. The production repositories are thin gorm
// wrappers; these mirror their contracts so service logic tests need no
// database.

type memOrderRepo struct {
	mu     sync.Mutex
	nextID uint
	orders map[uint]*models.Order
	items  *memItemRepo
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{nextID: 1, orders: make(map[uint]*models.Order)}
}

func (r *memOrderRepo) Create(order *models.Order) error {
	r.mu.Lock()
	order.ID = r.nextID
	r.nextID++
	for i := range order.Items {
		order.Items[i].ID = r.nextID
		order.Items[i].OrderID = order.ID
		r.nextID++
	}
	clone := *order
	r.orders[order.ID] = &clone
	items := append([]models.OrderItem(nil), order.Items...)
	r.mu.Unlock()

	// Mirror inline-created items into the item repo, as gorm's cascade does.
	if r.items != nil {
		r.items.mu.Lock()
		for i := range items {
			item := items[i]
			r.items.items[item.ID] = &item
		}
		r.items.mu.Unlock()
	}
	return nil
}

func (r *memOrderRepo) GetByID(id uint) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, apperrors.NotFound("order", id)
	}
	clone := *order
	clone.Items = append([]models.OrderItem(nil), order.Items...)
	clone.Payments = append([]models.Payment(nil), order.Payments...)
	return &clone, nil
}

func (r *memOrderRepo) GetOpen(branchID uint) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, order := range r.orders {
		if order.BranchID == branchID && !order.IsTerminal() {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (r *memOrderRepo) GetByDateRange(start, end time.Time) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, order := range r.orders {
		if !order.CreatedAt.Before(start) && !order.CreatedAt.After(end) {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (r *memOrderRepo) Update(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[order.ID]
	if !ok {
		return apperrors.NotFound("order", order.ID)
	}
	items := stored.Items
	clone := *order
	if clone.Items == nil {
		clone.Items = items
	}
	r.orders[order.ID] = &clone
	return nil
}

func (r *memOrderRepo) UpdateStatusFrom(id uint, from, to string, closedAt *time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok || order.Status != from {
		return false, nil
	}
	order.Status = to
	if closedAt != nil {
		order.ClosedAt = closedAt
	}
	return true, nil
}

// setItems replaces the stored items, for test setup.
func (r *memOrderRepo) setItems(orderID uint, items []models.OrderItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[orderID].Items = items
}

type memItemRepo struct {
	mu     sync.Mutex
	nextID uint
	items  map[uint]*models.OrderItem
	orders *memOrderRepo
}

func newMemItemRepo(orders *memOrderRepo) *memItemRepo {
	return &memItemRepo{nextID: 1000, items: make(map[uint]*models.OrderItem), orders: orders}
}

func (r *memItemRepo) Create(item *models.OrderItem) error {
	r.mu.Lock()
	item.ID = r.nextID
	r.nextID++
	clone := *item
	r.items[item.ID] = &clone
	r.mu.Unlock()
	if r.orders != nil {
		r.orders.mu.Lock()
		if order, ok := r.orders.orders[item.OrderID]; ok {
			order.Items = append(order.Items, *item)
		}
		r.orders.mu.Unlock()
	}
	return nil
}

func (r *memItemRepo) GetByID(id uint) (*models.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, apperrors.NotFound("order item", id)
	}
	clone := *item
	return &clone, nil
}

func (r *memItemRepo) GetByOrderID(orderID uint) ([]models.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.OrderItem
	for _, item := range r.items {
		if item.OrderID == orderID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *memItemRepo) Update(item *models.OrderItem) error {
	r.mu.Lock()
	clone := *item
	r.items[item.ID] = &clone
	r.mu.Unlock()
	if r.orders != nil {
		r.orders.mu.Lock()
		if order, ok := r.orders.orders[item.OrderID]; ok {
			for i := range order.Items {
				if order.Items[i].ID == item.ID {
					order.Items[i] = *item
				}
			}
		}
		r.orders.mu.Unlock()
	}
	return nil
}

type memAuditRepo struct {
	mu     sync.Mutex
	events []models.AuditEvent
}

func (r *memAuditRepo) Create(event *models.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.ID = uint(len(r.events) + 1)
	event.CreatedAt = time.Now()
	r.events = append(r.events, *event)
	return nil
}

func (r *memAuditRepo) GetByResourceID(resourceID uint) ([]models.AuditEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.AuditEvent
	for _, e := range r.events {
		if e.ResourceID == resourceID {
			out = append(out, e)
		}
	}
	return out, nil
}

type memPaymentRepo struct {
	mu       sync.Mutex
	payments []models.Payment
}

func (r *memPaymentRepo) Create(payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment.ID = uint(len(r.payments) + 1)
	r.payments = append(r.payments, *payment)
	return nil
}

func (r *memPaymentRepo) GetByOrderID(orderID uint) ([]models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Payment
	for _, p := range r.payments {
		if p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPaymentRepo) SumByOrderID(orderID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, p := range r.payments {
		if p.OrderID == orderID {
			sum += p.Amount
		}
	}
	return sum, nil
}

// Collaborator doubles.

type fakeKitchen struct {
	mu    sync.Mutex
	ready map[uint]map[uint]bool
}

func newFakeKitchen() *fakeKitchen {
	return &fakeKitchen{ready: make(map[uint]map[uint]bool)}
}

func (k *fakeKitchen) MarkItemReady(orderID, itemID uint) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.ready[orderID] == nil {
		k.ready[orderID] = make(map[uint]bool)
	}
	k.ready[orderID][itemID] = true
	return nil
}

func (k *fakeKitchen) AllItemsReady(orderID uint, itemIDs []uint) (bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, id := range itemIDs {
		if !k.ready[orderID][id] {
			return false, nil
		}
	}
	return true, nil
}

type fakeCatalog struct {
	items map[string]*models.MenuItem
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{items: map[string]*models.MenuItem{
		"espresso":   {ID: "espresso", Name: "Espresso", Price: 350},
		"margherita": {ID: "margherita", Name: "Margherita Pizza", Price: 1450},
	}}
}

func (c *fakeCatalog) ResolveMenuItem(menuItemID string) (*models.MenuItem, error) {
	return c.items[menuItemID], nil
}

func (c *fakeCatalog) ListMenu() ([]models.MenuItem, error) {
	var out []models.MenuItem
	for _, item := range c.items {
		out = append(out, *item)
	}
	return out, nil
}

// actorL returns an actor with the given access level.
func actorL(level int) *models.Actor {
	return &models.Actor{ID: uint(10 + level), Name: "test actor", BranchID: 1, AccessLevel: level, IsActive: true}
}
