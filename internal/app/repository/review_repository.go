package repository

import (
	"context"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/schema"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	FindByID(ctx context.Context, id uint) (*model.Review, error)
	List(ctx context.Context) ([]model.Review, error)
	ListByProduct(ctx context.Context, productID uint) ([]model.Review, error)
	Delete(ctx context.Context, id uint) error
}

type reviewRepository struct {
	db      *gorm.DB
	cascade *CascadeExecutor
}

func NewReviewRepository(db *gorm.DB, cascade *CascadeExecutor) ReviewRepository {
	return &reviewRepository{db: db, cascade: cascade}
}

func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	log := logger.FromContext(ctx)
	if err := schema.ValidateReview(*review); err != nil {
		return err
	}
	if _, err := findProduct(ctx, r.db, review.ProductID); err != nil {
		return err
	}

	log.Debug("Creating review in database", map[string]interface{}{
		"product_id": review.ProductID,
		"rating":     review.Rating,
	})

	if err := r.db.WithContext(ctx).Omit("Product").Create(review).Error; err != nil {
		if apperrors.IsForeignKeyViolation(err) {
			return apperrors.NotFound(string(schema.EntityProduct), review.ProductID)
		}
		log.Error("Failed to create review in database", err, map[string]interface{}{
			"product_id": review.ProductID,
		})
		return apperrors.Storage("create review", err)
	}
	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id uint) (*model.Review, error) {
	var review model.Review
	if err := r.db.WithContext(ctx).First(&review, id).Error; err != nil {
		if apperrors.IsRecordNotFound(err) {
			return nil, apperrors.NotFound(string(schema.EntityReview), id)
		}
		return nil, apperrors.Storage("find review", err)
	}
	return &review, nil
}

func (r *reviewRepository) List(ctx context.Context) ([]model.Review, error) {
	var reviews []model.Review
	if err := r.db.WithContext(ctx).Order("id").Find(&reviews).Error; err != nil {
		return nil, apperrors.Storage("list reviews", err)
	}
	return reviews, nil
}

func (r *reviewRepository) ListByProduct(ctx context.Context, productID uint) ([]model.Review, error) {
	if _, err := findProduct(ctx, r.db, productID); err != nil {
		return nil, err
	}

	var reviews []model.Review
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("id").Find(&reviews).Error; err != nil {
		logger.FromContext(ctx).Error("Failed to list reviews by product", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, apperrors.Storage("list product reviews", err)
	}
	return reviews, nil
}

func (r *reviewRepository) Delete(ctx context.Context, id uint) error {
	_, err := r.cascade.Delete(ctx, r.db, schema.EntityReview, id)
	return err
}
