package handler

import (
	"net/http"

	"yardpos/internal/apierror"
	"yardpos/internal/dto"
	"yardpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MaterialHandler struct{ svc service.MaterialService }

func NewMaterialHandler(svc service.MaterialService) *MaterialHandler {
	return &MaterialHandler{svc: svc}
}

// Create godoc
// @Summary Add a material to the price list
// @Tags materials
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateMaterialRequest true "Material data"
// @Success 201 {object} dto.MaterialResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/materials [post]
func (h *MaterialHandler) Create(c *gin.Context) {
	var req dto.CreateMaterialRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *MaterialHandler) Get(c *gin.Context) {
	id, ok := materialIDParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MaterialHandler) List(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"
	resp, err := h.svc.List(c.Request.Context(), includeInactive)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MaterialHandler) Update(c *gin.Context) {
	id, ok := materialIDParam(c)
	if !ok {
		return
	}
	var req dto.UpdateMaterialRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MaterialHandler) Deactivate(c *gin.Context) {
	id, ok := materialIDParam(c)
	if !ok {
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

func materialIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid material id"))
		return uuid.Nil, false
	}
	return id, true
}
