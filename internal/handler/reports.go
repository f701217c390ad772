package handler

import (
	"net/http"

	"yardpos/internal/apierror"
	"yardpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReportHandler struct{ svc service.ReportService }

func NewReportHandler(svc service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// ClosingReport godoc
// @Summary Reconciliation report for a register (open or closed)
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Register ID"
// @Success 200 {object} dto.ClosingReport
// @Failure 404 {object} apierror.APIError
// @Router /v1/registers/{id}/report [get]
func (h *ReportHandler) ClosingReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid register id"))
		return
	}
	resp, err := h.svc.ClosingReport(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
