package handler

import (
	"net/http"
	"strconv"

	"yardpos/internal/apierror"
	"yardpos/internal/dto"
	"yardpos/internal/middleware"
	"yardpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RegisterHandler struct {
	svc  service.RegisterService
	auth service.AuthService
}

func NewRegisterHandler(svc service.RegisterService, auth service.AuthService) *RegisterHandler {
	return &RegisterHandler{svc: svc, auth: auth}
}

// Open godoc
// @Summary Open a cash register for the authenticated operator
// @Tags register
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.OpenRegisterRequest true "Opening data"
// @Success 201 {object} dto.RegisterResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/register/open [post]
func (h *RegisterHandler) Open(c *gin.Context) {
	var req dto.OpenRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	operatorID, ok := operatorFromClaims(c)
	if !ok {
		return
	}

	resp, err := h.svc.Open(c.Request.Context(), operatorID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Close godoc
// @Summary Close the open register with a counted amount
// @Tags register
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CloseRegisterRequest true "Counted amount"
// @Success 200 {object} dto.RegisterResponse
// @Failure 403 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/register/close [post]
func (h *RegisterHandler) Close(c *gin.Context) {
	var req dto.CloseRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	operatorID, ok := operatorFromClaims(c)
	if !ok {
		return
	}
	if err := h.auth.AuthorizeSupervisor(c.Request.Context(), req.SupervisorPassword); err != nil {
		respondServiceError(c, err)
		return
	}

	resp, err := h.svc.Close(c.Request.Context(), operatorID, req.CountedAmount)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddFunds godoc
// @Summary Add funds to the open register (supervisor-gated)
// @Tags register
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AddFundsRequest true "Amount and reason"
// @Success 204
// @Failure 403 {object} apierror.APIError
// @Router /v1/register/funds [post]
func (h *RegisterHandler) AddFunds(c *gin.Context) {
	var req dto.AddFundsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	operatorID, ok := operatorFromClaims(c)
	if !ok {
		return
	}
	if err := h.auth.AuthorizeSupervisor(c.Request.Context(), req.SupervisorPassword); err != nil {
		respondServiceError(c, err)
		return
	}

	if err := h.svc.AddFunds(c.Request.Context(), operatorID, req.Amount, req.Description); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RecordExpense godoc
// @Summary Record a cash expense against the open register
// @Tags register
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ExpenseRequest true "Amount and reason"
// @Success 204
// @Failure 409 {object} dto.InsufficientFundsResponse
// @Router /v1/register/expense [post]
func (h *RegisterHandler) RecordExpense(c *gin.Context) {
	var req dto.ExpenseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	operatorID, ok := operatorFromClaims(c)
	if !ok {
		return
	}

	if err := h.svc.RecordExpense(c.Request.Context(), operatorID, req.Amount, req.Description); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Active returns the operator's currently open register.
func (h *RegisterHandler) Active(c *gin.Context) {
	operatorID, ok := operatorFromClaims(c)
	if !ok {
		return
	}
	resp, err := h.svc.Active(c.Request.Context(), operatorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if resp == nil {
		c.JSON(http.StatusNotFound, apierror.New("no open register"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History returns a paginated list of the operator's closed registers.
func (h *RegisterHandler) History(c *gin.Context) {
	operatorID, ok := operatorFromClaims(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	resp, err := h.svc.History(c.Request.Context(), operatorID, page, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// operatorFromClaims extracts the operator id from the JWT claims; writes the
// error response itself when the token is malformed.
func operatorFromClaims(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	id, err := uuid.Parse(claims.OperatorID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid operator id in token"))
		return uuid.Nil, false
	}
	return id, true
}
