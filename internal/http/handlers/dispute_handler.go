package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bountyhub/bountyhub-backend/internal/dto"
	"github.com/bountyhub/bountyhub-backend/internal/http/handlers/common"
	"github.com/bountyhub/bountyhub-backend/internal/service"
)

// DisputeHandler обслуживает споры по баунти.
type DisputeHandler struct {
	disputes *service.DisputeService
}

// NewDisputeHandler создаёт новый хэндлер.
func NewDisputeHandler(disputes *service.DisputeService) *DisputeHandler {
	return &DisputeHandler{disputes: disputes}
}

// Open обрабатывает POST /bounties/:id/dispute.
func (h *DisputeHandler) Open(c *gin.Context) {
	userID, bountyID, ok := authAndParam(c, "id")
	if !ok {
		return
	}

	var req dto.OpenDisputeRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	dispute, err := h.disputes.Open(c.Request.Context(), userID, bountyID, req.Reason)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, dispute)
}

// Resolve обрабатывает POST /admin/disputes/:id/resolve. Только арбитр.
func (h *DisputeHandler) Resolve(c *gin.Context) {
	userID, disputeID, ok := authAndParam(c, "id")
	if !ok {
		return
	}

	var req dto.ResolveDisputeRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	dispute, err := h.disputes.Resolve(c.Request.Context(), userID, disputeID, req.Resolution)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dispute)
}

// ListOpen обрабатывает GET /admin/disputes.
func (h *DisputeHandler) ListOpen(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	disputes, err := h.disputes.ListOpen(c.Request.Context(), limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, gin.H{"disputes": disputes})
}
