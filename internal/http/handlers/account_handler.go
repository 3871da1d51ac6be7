package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bountyhub/bountyhub-backend/internal/dto"
	"github.com/bountyhub/bountyhub-backend/internal/http/handlers/common"
	"github.com/bountyhub/bountyhub-backend/internal/service"
)

// AccountHandler обслуживает удаление аккаунта с каскадной обработкой
// активных баунти и эскроу.
type AccountHandler struct {
	cascade *service.CascadeService
}

// NewAccountHandler создаёт новый хэндлер.
func NewAccountHandler(cascade *service.CascadeService) *AccountHandler {
	return &AccountHandler{cascade: cascade}
}

// DeleteMe обрабатывает DELETE /account.
func (h *AccountHandler) DeleteMe(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	result, err := h.cascade.DeleteUser(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.CascadeResponse{
		BountiesArchived: result.BountiesArchived,
		BountiesReopened: result.BountiesReopened,
		EscrowsRefunded:  result.EscrowsRefunded,
		RequestsRejected: result.RequestsRejected,
	})
}

// DeleteUser обрабатывает DELETE /admin/users/:id.
func (h *AccountHandler) DeleteUser(c *gin.Context) {
	targetID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	result, err := h.cascade.DeleteUser(c.Request.Context(), targetID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.CascadeResponse{
		BountiesArchived: result.BountiesArchived,
		BountiesReopened: result.BountiesReopened,
		EscrowsRefunded:  result.EscrowsRefunded,
		RequestsRejected: result.RequestsRejected,
	})
}
