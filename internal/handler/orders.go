package handler

import (
	"net/http"
	"strconv"

	"yardpos/internal/apierror"
	"yardpos/internal/dto"
	"yardpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderHandler struct{ svc service.SettlementService }

func NewOrderHandler(svc service.SettlementService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// Create godoc
// @Summary Create an open order for a customer
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateOrderRequest true "Customer and order type"
// @Success 201 {object} dto.OrderResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	operatorID, ok := operatorFromClaims(c)
	if !ok {
		return
	}
	resp, err := h.svc.CreateOrder(c.Request.Context(), operatorID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get returns one order with its items and payment.
func (h *OrderHandler) Get(c *gin.Context) {
	operatorID, ok := operatorFromClaims(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetOrder(c.Request.Context(), operatorID, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List returns the operator's orders filtered by date / status / type.
func (h *OrderHandler) List(c *gin.Context) {
	operatorID, ok := operatorFromClaims(c)
	if !ok {
		return
	}
	var filter dto.OrderFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query: "+err.Error()))
		return
	}
	resp, err := h.svc.ListOrders(c.Request.Context(), operatorID, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddItem godoc
// @Summary Add a weighed item to an open order
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param body body dto.AddItemRequest true "Material, weights and price"
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/orders/{id}/items [post]
func (h *OrderHandler) AddItem(c *gin.Context) {
	var req dto.AddItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	operatorID, ok := operatorFromClaims(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.AddItem(c.Request.Context(), operatorID, orderID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RemoveItem deletes one item by its position index.
func (h *OrderHandler) RemoveItem(c *gin.Context) {
	operatorID, ok := operatorFromClaims(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid item index"))
		return
	}
	resp, err := h.svc.RemoveItem(c.Request.Context(), operatorID, orderID, index)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Settle godoc
// @Summary Settle an open order (guarded two-phase commit)
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param body body dto.SettleOrderRequest true "Payment method"
// @Success 200 {object} dto.OrderResponse
// @Failure 409 {object} dto.InsufficientFundsResponse
// @Router /v1/orders/{id}/settle [post]
func (h *OrderHandler) Settle(c *gin.Context) {
	var req dto.SettleOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	operatorID, ok := operatorFromClaims(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.Settle(c.Request.Context(), operatorID, orderID, req.PaymentMethod)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel flags a completed order and appends the compensating reversal.
func (h *OrderHandler) Cancel(c *gin.Context) {
	var req dto.CancelOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	operatorID, ok := operatorFromClaims(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	if err := h.svc.CancelOrder(c.Request.Context(), operatorID, orderID, req.Reason); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete removes an open (never settled) order.
func (h *OrderHandler) Delete(c *gin.Context) {
	operatorID, ok := operatorFromClaims(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteOrder(c.Request.Context(), operatorID, orderID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func orderIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid order id"))
		return uuid.Nil, false
	}
	return id, true
}
