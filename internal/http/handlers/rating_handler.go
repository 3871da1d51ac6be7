package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bountyhub/bountyhub-backend/internal/dto"
	"github.com/bountyhub/bountyhub-backend/internal/http/handlers/common"
	"github.com/bountyhub/bountyhub-backend/internal/service"
	"github.com/bountyhub/bountyhub-backend/internal/validation"
)

// RatingHandler обслуживает взаимные оценки по завершённым баунти.
type RatingHandler struct {
	ratings *service.RatingService
}

// NewRatingHandler создаёт новый хэндлер.
func NewRatingHandler(ratings *service.RatingService) *RatingHandler {
	return &RatingHandler{ratings: ratings}
}

// Rate обрабатывает POST /bounties/:id/ratings.
func (h *RatingHandler) Rate(c *gin.Context) {
	userID, bountyID, ok := authAndParam(c, "id")
	if !ok {
		return
	}

	var req dto.CreateRatingRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := validation.ValidateRatingScore(req.Score); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	rating, err := h.ratings.Rate(c.Request.Context(), userID, bountyID, req.Score, req.Comment)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, rating)
}

// ListByUser обрабатывает GET /users/:id/ratings.
func (h *RatingHandler) ListByUser(c *gin.Context) {
	targetID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	ratings, err := h.ratings.ListByUser(c.Request.Context(), targetID, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, gin.H{"ratings": ratings})
}

// GetSummary обрабатывает GET /users/:id/ratings/summary.
func (h *RatingHandler) GetSummary(c *gin.Context) {
	targetID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	summary, err := h.ratings.GetSummary(c.Request.Context(), targetID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, summary)
}
