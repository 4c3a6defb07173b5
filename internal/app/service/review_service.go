package service

import (
	"context"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/logger"
)

type ReviewService interface {
	CreateReview(ctx context.Context, input model.ReviewInput) (*model.Review, error)
	GetReview(ctx context.Context, id uint) (*model.Review, error)
	ListProductReviews(ctx context.Context, productID uint) ([]model.Review, model.ReviewSummary, error)
	DeleteReview(ctx context.Context, id uint) error
}

type reviewService struct {
	store *repository.Store
}

func NewReviewService(store *repository.Store) ReviewService {
	return &reviewService{store: store}
}

func (s *reviewService) CreateReview(ctx context.Context, input model.ReviewInput) (*model.Review, error) {
	review := input.ToReview()
	if err := s.store.Reviews.Create(ctx, &review); err != nil {
		logger.FromContext(ctx).Warn("Review creation rejected", map[string]interface{}{
			"product_id": input.ProductID,
			"error":      err.Error(),
		})
		return nil, err
	}

	logger.FromContext(ctx).Info("Review created", map[string]interface{}{
		"review_id":  review.ID,
		"product_id": review.ProductID,
		"rating":     review.Rating,
	})
	return &review, nil
}

func (s *reviewService) GetReview(ctx context.Context, id uint) (*model.Review, error) {
	return s.store.Reviews.FindByID(ctx, id)
}

func (s *reviewService) ListProductReviews(ctx context.Context, productID uint) ([]model.Review, model.ReviewSummary, error) {
	reviews, err := s.store.Reviews.ListByProduct(ctx, productID)
	if err != nil {
		return nil, model.ReviewSummary{}, err
	}
	return reviews, model.Summarize(productID, reviews), nil
}

func (s *reviewService) DeleteReview(ctx context.Context, id uint) error {
	if err := s.store.Reviews.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("Review deleted", map[string]interface{}{
		"review_id": id,
	})
	return nil
}
