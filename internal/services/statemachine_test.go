package services

import (
	"testing"

	"restaurant_pos/internal/apperrors"
	"restaurant_pos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type smFixture struct {
	orders   *memOrderRepo
	items    *memItemRepo
	audit    *memAuditRepo
	payments *memPaymentRepo
	kitchen  *fakeKitchen
	sm       StateMachine
}

func newSMFixture() *smFixture {
	orders := newMemOrderRepo()
	items := newMemItemRepo(orders)
	orders.items = items
	audit := &memAuditRepo{}
	payments := &memPaymentRepo{}
	kitchen := newFakeKitchen()
	sm := NewStateMachine(orders, items, audit, kitchen, NewRepoPaymentProvider(payments))
	return &smFixture{orders: orders, items: items, audit: audit, payments: payments, kitchen: kitchen, sm: sm}
}

// seedOrder creates an order in the given status with one active item and
// returns it freshly loaded.
func (f *smFixture) seedOrder(t *testing.T, status models.OrderStatus, serviceType models.ServiceType, total int64) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNumber: "ORD-TEST-" + string(status),
		BranchID:    1,
		Status:      string(status),
		ServiceType: string(serviceType),
		Subtotal:    total,
		Total:       total,
		CreatedBy:   1,
		Items: []models.OrderItem{
			{MenuItemID: "espresso", ItemName: "Espresso", Quantity: 1, UnitPrice: total, Status: string(models.ItemPending)},
		},
	}
	require.NoError(t, f.orders.Create(order))
	loaded, err := f.orders.GetByID(order.ID)
	require.NoError(t, err)
	return loaded
}

func (f *smFixture) settle(order *models.Order, amount int64) {
	f.payments.Create(&models.Payment{OrderID: order.ID, Amount: amount, Method: "CASH"})
}

func (f *smFixture) kitchenReady(order *models.Order) {
	for _, item := range order.Items {
		f.kitchen.MarkItemReady(order.ID, item.ID)
	}
}

var allStatuses = []models.OrderStatus{
	models.OrderNew, models.OrderSent, models.OrderInKitchen,
	models.OrderReady, models.OrderServed, models.OrderClosed, models.OrderVoided,
}

var tablePairs = map[[2]models.OrderStatus]bool{
	{models.OrderNew, models.OrderSent}:         true,
	{models.OrderSent, models.OrderInKitchen}:   true,
	{models.OrderSent, models.OrderReady}:       true,
	{models.OrderInKitchen, models.OrderReady}:  true,
	{models.OrderReady, models.OrderServed}:     true,
	{models.OrderServed, models.OrderClosed}:    true,
	{models.OrderReady, models.OrderClosed}:     true,
	{models.OrderNew, models.OrderVoided}:       true,
	{models.OrderSent, models.OrderVoided}:      true,
	{models.OrderInKitchen, models.OrderVoided}: true,
	{models.OrderReady, models.OrderVoided}:     true,
	{models.OrderServed, models.OrderVoided}:    true,
	{models.OrderClosed, models.OrderVoided}:    true,
}

// Every pair in the table transitions given satisfied preconditions and a
// high enough actor; every pair outside it is rejected for everyone.
func TestTransitionTableSweep(t *testing.T) {
	fullMeta := TransitionMetadata{Reason: "test reason", AcknowledgeWaste: true, RequireLedgerReversal: true}
	owner := actorL(models.LevelOwnerAdmin)

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			f := newSMFixture()
			order := f.seedOrder(t, from, models.ServiceTakeaway, 1000)
			f.settle(order, 1000)
			f.kitchenReady(order)

			can, err := f.sm.CanTransition(order, to)
			require.NoError(t, err)

			if tablePairs[[2]models.OrderStatus{from, to}] {
				assert.True(t, can, "%s -> %s should be allowed", from, to)

				updated, event, err := f.sm.Transition(order, to, owner, fullMeta)
				require.NoError(t, err, "%s -> %s", from, to)
				assert.Equal(t, string(to), updated.Status)
				assert.Equal(t, string(from), event.FromStatus)
			} else {
				assert.False(t, can, "%s -> %s should not be allowed", from, to)

				_, _, err := f.sm.Transition(order, to, owner, fullMeta)
				require.Error(t, err, "%s -> %s", from, to)
				assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
			}
		}
	}
}

func TestTransitionAppendsExactlyOneAuditEvent(t *testing.T) {
	f := newSMFixture()
	order := f.seedOrder(t, models.OrderNew, models.ServiceDineIn, 1000)

	_, event, err := f.sm.Transition(order, models.OrderSent, actorL(models.LevelWaiter), TransitionMetadata{})
	require.NoError(t, err)
	require.NotNil(t, event)

	events, err := f.audit.GetByResourceID(order.ID)
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, "order.transition", events[0].Action)
	assert.Equal(t, string(models.OrderNew), events[0].FromStatus)
	assert.Equal(t, string(models.OrderSent), events[0].ToStatus)
}

func TestRejectedTransitionWritesNoAudit(t *testing.T) {
	f := newSMFixture()
	order := f.seedOrder(t, models.OrderNew, models.ServiceDineIn, 1000)
	f.orders.setItems(order.ID, nil)
	order, _ = f.orders.GetByID(order.ID)

	_, _, err := f.sm.Transition(order, models.OrderSent, actorL(models.LevelWaiter), TransitionMetadata{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	events, _ := f.audit.GetByResourceID(order.ID)
	assert.Empty(t, events)
}

func TestForbiddenBelowMinimumLevel(t *testing.T) {
	f := newSMFixture()
	order := f.seedOrder(t, models.OrderSent, models.ServiceDineIn, 1000)

	_, _, err := f.sm.Transition(order, models.OrderVoided, actorL(models.LevelShiftLead),
		TransitionMetadata{Reason: "customer walked out"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, _, err = f.sm.Transition(order, models.OrderVoided, actorL(models.LevelManager),
		TransitionMetadata{Reason: "customer walked out"})
	assert.NoError(t, err)
}

func TestVoidReasonOnlyRequiredOnceSent(t *testing.T) {
	f := newSMFixture()

	// NEW order: an L2 actor voids without a reason.
	order := f.seedOrder(t, models.OrderNew, models.ServiceDineIn, 1000)
	updated, _, err := f.sm.Transition(order, models.OrderVoided, actorL(models.LevelShiftLead), TransitionMetadata{})
	require.NoError(t, err)
	assert.Equal(t, string(models.OrderVoided), updated.Status)

	// SENT order: reason becomes mandatory.
	order = f.seedOrder(t, models.OrderSent, models.ServiceDineIn, 1000)
	_, _, err = f.sm.Transition(order, models.OrderVoided, actorL(models.LevelManager), TransitionMetadata{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestLateVoidRequiresWasteAcknowledgement(t *testing.T) {
	f := newSMFixture()
	order := f.seedOrder(t, models.OrderServed, models.ServiceDineIn, 1000)

	_, _, err := f.sm.Transition(order, models.OrderVoided, actorL(models.LevelOwnerAdmin),
		TransitionMetadata{Reason: "wrong table"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, _, err = f.sm.Transition(order, models.OrderVoided, actorL(models.LevelOwnerAdmin),
		TransitionMetadata{Reason: "wrong table", AcknowledgeWaste: true})
	assert.NoError(t, err)
}

func TestClosedVoidRequiresLedgerFlag(t *testing.T) {
	f := newSMFixture()
	order := f.seedOrder(t, models.OrderClosed, models.ServiceDineIn, 1000)

	_, _, err := f.sm.Transition(order, models.OrderVoided, actorL(models.LevelOwnerAdmin),
		TransitionMetadata{Reason: "charge dispute"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, _, err = f.sm.Transition(order, models.OrderVoided, actorL(models.LevelOwnerAdmin),
		TransitionMetadata{Reason: "charge dispute", RequireLedgerReversal: true})
	assert.NoError(t, err)
}

func TestInsufficientPaymentKeepsOrderServed(t *testing.T) {
	f := newSMFixture()
	order := f.seedOrder(t, models.OrderServed, models.ServiceDineIn, 10000)
	f.settle(order, 8000)

	_, _, err := f.sm.Transition(order, models.OrderClosed, actorL(models.LevelWaiter), TransitionMetadata{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	current, err := f.orders.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.OrderServed), current.Status)
}

func TestReadyCloseIsTakeawayOnly(t *testing.T) {
	f := newSMFixture()
	order := f.seedOrder(t, models.OrderReady, models.ServiceDineIn, 1000)
	f.settle(order, 1000)

	can, err := f.sm.CanTransition(order, models.OrderClosed)
	require.NoError(t, err)
	assert.False(t, can)

	_, _, err = f.sm.Transition(order, models.OrderClosed, actorL(models.LevelWaiter), TransitionMetadata{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestReadyRequiresKitchenReport(t *testing.T) {
	f := newSMFixture()
	order := f.seedOrder(t, models.OrderInKitchen, models.ServiceDineIn, 1000)

	_, _, err := f.sm.Transition(order, models.OrderReady, actorL(models.LevelWaiter), TransitionMetadata{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	f.kitchenReady(order)
	_, _, err = f.sm.Transition(order, models.OrderReady, actorL(models.LevelWaiter), TransitionMetadata{})
	assert.NoError(t, err)
}

// A transition whose from state went stale underneath the caller fails with
// InvalidTransition instead of blindly overwriting.
func TestStaleFromStateFailsInsteadOfOverwriting(t *testing.T) {
	f := newSMFixture()
	order := f.seedOrder(t, models.OrderSent, models.ServiceDineIn, 1000)

	// Another writer advances the order first.
	applied, err := f.orders.UpdateStatusFrom(order.ID, string(models.OrderSent), string(models.OrderInKitchen), nil)
	require.NoError(t, err)
	require.True(t, applied)

	// The stale caller still holds status=SENT.
	_, _, err = f.sm.Transition(order, models.OrderInKitchen, actorL(models.LevelWaiter), TransitionMetadata{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	events, _ := f.audit.GetByResourceID(order.ID)
	assert.Len(t, events, 1, "only the winning writer audits")
}

// Full lifecycle: NEW -> SENT -> kitchen ready -> READY -> SERVED -> paid ->
// CLOSED.
func TestHappyPathLifecycle(t *testing.T) {
	f := newSMFixture()
	waiter := actorL(models.LevelWaiter)
	order := f.seedOrder(t, models.OrderNew, models.ServiceDineIn, 1350)

	updated, err := f.sm.SendToKitchen(order.ID, waiter)
	require.NoError(t, err)
	assert.Equal(t, string(models.OrderSent), updated.Status)
	for _, item := range updated.Items {
		assert.Equal(t, string(models.ItemSent), item.Status)
		assert.NotNil(t, item.SentAt)
	}

	f.kitchenReady(updated)
	updated, err = f.sm.MarkReady(order.ID, waiter)
	require.NoError(t, err)
	assert.Equal(t, string(models.OrderReady), updated.Status)

	updated, err = f.sm.MarkServed(order.ID, waiter)
	require.NoError(t, err)
	assert.Equal(t, string(models.OrderServed), updated.Status)

	f.settle(updated, 1350)
	updated, err = f.sm.Close(order.ID, waiter)
	require.NoError(t, err)
	assert.Equal(t, string(models.OrderClosed), updated.Status)
	assert.NotNil(t, updated.ClosedAt)

	events, _ := f.audit.GetByResourceID(order.ID)
	assert.Len(t, events, 4)
}
