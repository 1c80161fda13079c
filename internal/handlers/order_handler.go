package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"restaurant_pos/internal/apperrors"
	"restaurant_pos/internal/models"
	"restaurant_pos/internal/services"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService services.OrderService
	stateMachine services.StateMachine
}

func NewOrderHandler(orderService services.OrderService, stateMachine services.StateMachine) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		stateMachine: stateMachine,
	}
}

// respondError maps the error taxonomy onto HTTP statuses. The caller always
// learns which kind occurred; recovery differs per kind.
func respondError(c *gin.Context, err error) {
	body := gin.H{"code": apperrors.Code(err), "error": err.Error()}
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, body)
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, body)
	case errors.Is(err, apperrors.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, body)
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, body)
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func orderIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeValidation, "error": "invalid order id"})
		return 0, false
	}
	return uint(id), true
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var input services.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeValidation, "error": err.Error()})
		return
	}

	order, err := h.orderService.CreateOrder(input, currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	order, err := h.orderService.GetOrderByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ListOpenOrders(c *gin.Context) {
	branchID, err := strconv.ParseUint(c.DefaultQuery("branch_id", "1"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeValidation, "error": "invalid branch_id"})
		return
	}
	orders, err := h.orderService.GetOpenOrders(uint(branchID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) GetMenu(c *gin.Context) {
	menu, err := h.orderService.ListMenu()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": menu})
}

func (h *OrderHandler) AddItem(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	var input services.AddItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeValidation, "error": err.Error()})
		return
	}
	order, err := h.orderService.AddItemToOrder(id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) RecordPayment(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	var input struct {
		Amount int64  `json:"amount"`
		Method string `json:"method"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeValidation, "error": err.Error()})
		return
	}
	order, err := h.orderService.RecordPayment(id, input.Amount, input.Method, currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// MarkItemReady is the kitchen-display callback reporting one line item
// ready.
func (h *OrderHandler) MarkItemReady(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	itemID, err := strconv.ParseUint(c.Param("item_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeValidation, "error": "invalid item id"})
		return
	}
	if err := h.orderService.MarkItemReady(id, uint(itemID)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (h *OrderHandler) VoidItem(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	itemID, err := strconv.ParseUint(c.Param("item_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeValidation, "error": "invalid item id"})
		return
	}
	var input struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeValidation, "error": err.Error()})
		return
	}
	if err := h.orderService.VoidItem(id, uint(itemID), input.Reason); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "voided"})
}

func (h *OrderHandler) transitionHandler(target models.OrderStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := orderIDParam(c)
		if !ok {
			return
		}
		var meta services.TransitionMetadata
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&meta); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeValidation, "error": err.Error()})
				return
			}
		}

		order, err := h.orderService.GetOrderByID(id)
		if err != nil {
			respondError(c, err)
			return
		}
		updated, _, err := h.stateMachine.Transition(order, target, currentActor(c), meta)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func (h *OrderHandler) SendToKitchen(c *gin.Context) { h.transitionHandler(models.OrderSent)(c) }
func (h *OrderHandler) MarkReady(c *gin.Context)     { h.transitionHandler(models.OrderReady)(c) }
func (h *OrderHandler) MarkServed(c *gin.Context)    { h.transitionHandler(models.OrderServed)(c) }
func (h *OrderHandler) CloseOrder(c *gin.Context)    { h.transitionHandler(models.OrderClosed)(c) }
func (h *OrderHandler) VoidOrder(c *gin.Context)     { h.transitionHandler(models.OrderVoided)(c) }

func (h *OrderHandler) GetAuditTrail(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	events, err := h.orderService.GetAuditTrail(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
