package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bountyhub/bountyhub-backend/internal/dto"
	"github.com/bountyhub/bountyhub-backend/internal/http/handlers/common"
	"github.com/bountyhub/bountyhub-backend/internal/service"
)

// ReportHandler обслуживает жалобы на пользователей и баунти.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler создаёт новый хэндлер.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Create обрабатывает POST /reports.
func (h *ReportHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateReportRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	targetID, err := uuid.Parse(req.TargetID)
	if err != nil {
		common.RespondBadRequest(c, "target_id должен быть валидным UUID")
		return
	}

	report, err := h.reports.Create(c.Request.Context(), userID, req.TargetType, targetID, req.Reason, req.Details)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, report)
}

// ListPending обрабатывает GET /admin/reports.
func (h *ReportHandler) ListPending(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	reports, err := h.reports.ListPending(c.Request.Context(), limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, gin.H{"reports": reports})
}

// Review обрабатывает POST /admin/reports/:id/review.
func (h *ReportHandler) Review(c *gin.Context) {
	reportID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.ReviewReportRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.reports.Review(c.Request.Context(), reportID, req.Dismiss); err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "жалоба рассмотрена", nil)
}
