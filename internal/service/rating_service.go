package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/bountyhub/bountyhub-backend/internal/domain/valueobject"
	"github.com/bountyhub/bountyhub-backend/internal/models"
	"github.com/bountyhub/bountyhub-backend/internal/pkg/apperror"
	"github.com/bountyhub/bountyhub-backend/internal/repository"
	"github.com/bountyhub/bountyhub-backend/internal/validation"
)

// RatingRepositoryInterface описывает хранилище оценок.
type RatingRepositoryInterface interface {
	Create(ctx context.Context, rating *models.Rating) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Rating, error)
	GetSummary(ctx context.Context, userID uuid.UUID) (*models.RatingSummary, error)
}

// RatingService содержит логику взаимных оценок после завершения баунти.
type RatingService struct {
	ratings  RatingRepositoryInterface
	bounties BountyReader
}

func NewRatingService(ratings RatingRepositoryInterface, bounties BountyReader) *RatingService {
	return &RatingService{ratings: ratings, bounties: bounties}
}

// Rate оставляет оценку контрагенту по завершённому баунти. Постер
// оценивает охотника, охотник — постера, по одной оценке с каждой стороны.
func (s *RatingService) Rate(ctx context.Context, raterID, bountyID uuid.UUID, score int, comment string) (*models.Rating, error) {
	if err := validation.ValidateRatingScore(score); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	bounty, err := s.bounties.GetByID(ctx, bountyID)
	if err != nil {
		if errors.Is(err, repository.ErrBountyNotFound) {
			return nil, apperror.ErrBountyNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить баунти")
	}
	if bounty.Status != valueobject.BountyStatusCompleted {
		return nil, apperror.New(apperror.ErrCodeConflict, "оценить можно только завершённое баунти")
	}

	var ratedID *uuid.UUID
	switch {
	case bounty.IsOwnedBy(raterID):
		ratedID = bounty.AcceptedHunterID
	case bounty.IsAcceptedHunter(raterID):
		ratedID = bounty.PosterID
	default:
		return nil, apperror.ErrForbidden
	}
	if ratedID == nil {
		return nil, apperror.New(apperror.ErrCodeConflict, "контрагент удалил аккаунт, оценка невозможна")
	}

	rating := &models.Rating{
		ID:       uuid.New(),
		BountyID: bountyID,
		RaterID:  &raterID,
		RatedID:  ratedID,
		Score:    score,
	}
	if trimmed := strings.TrimSpace(comment); trimmed != "" {
		rating.Comment = &trimmed
	}

	if err := s.ratings.Create(ctx, rating); err != nil {
		if errors.Is(err, repository.ErrRatingDuplicate) {
			return nil, apperror.New(apperror.ErrCodeConflict, "вы уже оценили это баунти")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить оценку")
	}
	return rating, nil
}

// ListByUser возвращает оценки, полученные пользователем.
func (s *RatingService) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Rating, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.ratings.ListByUser(ctx, userID, limit, offset)
}

// GetSummary возвращает агрегат оценок пользователя.
func (s *RatingService) GetSummary(ctx context.Context, userID uuid.UUID) (*models.RatingSummary, error) {
	return s.ratings.GetSummary(ctx, userID)
}
