package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bountyhub/bountyhub-backend/internal/domain/valueobject"
	"github.com/bountyhub/bountyhub-backend/internal/dto"
	"github.com/bountyhub/bountyhub-backend/internal/http/handlers/common"
	"github.com/bountyhub/bountyhub-backend/internal/repository"
	"github.com/bountyhub/bountyhub-backend/internal/service"
	"github.com/bountyhub/bountyhub-backend/internal/validation"
)

// BountyHandler обслуживает жизненный цикл баунти.
type BountyHandler struct {
	bounties *service.BountyService
}

// NewBountyHandler создаёт новый хэндлер.
func NewBountyHandler(bounties *service.BountyService) *BountyHandler {
	return &BountyHandler{bounties: bounties}
}

// Create обрабатывает POST /bounties.
func (h *BountyHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateBountyRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := validation.ValidateBountyTitle(req.Title); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if err := validation.ValidateBountyDescription(req.Description); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	bounty, err := h.bounties.Create(c.Request.Context(), userID, service.CreateBountyInput{
		Title:       req.Title,
		Description: req.Description,
		Amount:      req.Amount,
		IsForHonor:  req.IsForHonor,
		WorkType:    req.WorkType,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, bounty)
}

// List обрабатывает GET /bounties.
func (h *BountyHandler) List(c *gin.Context) {
	filter := repository.BountyFilter{Search: c.Query("search")}
	filter.Limit, filter.Offset = common.GetPagination(c)

	if raw := c.Query("status"); raw != "" {
		status := valueobject.BountyStatus(raw)
		if !status.IsValid() {
			common.RespondBadRequest(c, "неизвестный статус баунти")
			return
		}
		filter.Status = &status
	}
	if raw := c.Query("work_type"); raw != "" {
		workType := valueobject.WorkType(raw)
		filter.WorkType = &workType
	}
	if raw := c.Query("for_honor"); raw != "" {
		isForHonor := raw == "true"
		filter.IsForHonor = &isForHonor
	}
	if raw := c.Query("poster_id"); raw != "" {
		posterID, err := uuid.Parse(raw)
		if err != nil {
			common.RespondBadRequest(c, "poster_id должен быть валидным UUID")
			return
		}
		filter.PosterID = &posterID
	}

	bounties, err := h.bounties.List(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.BountyListResponse{
		Bounties: bounties,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	})
}

// ListMine обрабатывает GET /bounties/my.
func (h *BountyHandler) ListMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	filter := repository.BountyFilter{PosterID: &userID}
	filter.Limit, filter.Offset = common.GetPagination(c)

	bounties, err := h.bounties.List(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.BountyListResponse{
		Bounties: bounties,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	})
}

// ListAssigned обрабатывает GET /bounties/assigned: баунти, где пользователь
// принятый охотник.
func (h *BountyHandler) ListAssigned(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	filter := repository.BountyFilter{HunterID: &userID}
	filter.Limit, filter.Offset = common.GetPagination(c)

	bounties, err := h.bounties.List(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.BountyListResponse{
		Bounties: bounties,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	})
}

// Get обрабатывает GET /bounties/:id.
func (h *BountyHandler) Get(c *gin.Context) {
	bountyID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	bounty, err := h.bounties.GetByID(c.Request.Context(), bountyID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, bounty)
}

// Update обрабатывает PUT /bounties/:id.
func (h *BountyHandler) Update(c *gin.Context) {
	userID, bountyID, ok := authAndParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateBountyRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := validation.ValidateBountyTitle(req.Title); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if err := validation.ValidateBountyDescription(req.Description); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	bounty, err := h.bounties.Update(c.Request.Context(), userID, bountyID, service.UpdateBountyInput{
		Title:       req.Title,
		Description: req.Description,
		Amount:      req.Amount,
		IsForHonor:  req.IsForHonor,
		WorkType:    req.WorkType,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, bounty)
}

// AcceptRequest обрабатывает POST /bounties/:id/requests/:requestId/accept.
// Деньги замораживаются в эскроу в той же транзакции.
func (h *BountyHandler) AcceptRequest(c *gin.Context) {
	userID, bountyID, ok := authAndParam(c, "id")
	if !ok {
		return
	}

	requestID, err := common.ParseUUIDParam(c, "requestId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	bounty, err := h.bounties.AcceptRequest(c.Request.Context(), userID, bountyID, requestID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, bounty)
}

// ApproveCompletion обрабатывает POST /bounties/:id/approve.
func (h *BountyHandler) ApproveCompletion(c *gin.Context) {
	userID, bountyID, ok := authAndParam(c, "id")
	if !ok {
		return
	}

	bounty, err := h.bounties.ApproveCompletion(c.Request.Context(), userID, bountyID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, bounty)
}

// RequestRevision обрабатывает POST /bounties/:id/request-revision.
// После исчерпания лимита доработок автоматически открывается спор,
// он возвращается в поле dispute.
func (h *BountyHandler) RequestRevision(c *gin.Context) {
	userID, bountyID, ok := authAndParam(c, "id")
	if !ok {
		return
	}

	var req dto.RequestRevisionRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	result, err := h.bounties.RequestRevision(c.Request.Context(), userID, bountyID, req.Feedback)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, result)
}

// Cancel обрабатывает POST /bounties/:id/cancel.
func (h *BountyHandler) Cancel(c *gin.Context) {
	userID, bountyID, ok := authAndParam(c, "id")
	if !ok {
		return
	}

	bounty, err := h.bounties.Cancel(c.Request.Context(), userID, bountyID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, bounty)
}

// Archive обрабатывает POST /bounties/:id/archive.
func (h *BountyHandler) Archive(c *gin.Context) {
	userID, bountyID, ok := authAndParam(c, "id")
	if !ok {
		return
	}

	bounty, err := h.bounties.Archive(c.Request.Context(), userID, bountyID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, bounty)
}

// ListHistory обрабатывает GET /bounties/:id/history.
func (h *BountyHandler) ListHistory(c *gin.Context) {
	bountyID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	history, err := h.bounties.ListHistory(c.Request.Context(), bountyID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, gin.H{"history": history})
}

// authAndParam извлекает userID из контекста и UUID из параметра пути.
func authAndParam(c *gin.Context, paramName string) (uuid.UUID, uuid.UUID, bool) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return uuid.Nil, uuid.Nil, false
	}

	paramID, err := common.ParseUUIDParam(c, paramName)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return uuid.Nil, uuid.Nil, false
	}

	return userID, paramID, true
}
