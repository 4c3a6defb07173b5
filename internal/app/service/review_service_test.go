package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikkim/storefront-backend/internal/app/model"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
)

func setupReviewServiceTest(t *testing.T) (ReviewService, *model.Product) {
	_, store := setupServiceTest(t)
	product := seedProduct(t, NewProductService(store), "Widget", "9.99", 5)
	return NewReviewService(store), product
}

func TestReviewService_CreateReview(t *testing.T) {
	reviewService, product := setupReviewServiceTest(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		input    model.ReviewInput
		wantRule apperrors.Rule
		notFound bool
	}{
		{name: "Lowest rating", input: model.ReviewInput{ProductID: product.ID, Rating: 1}},
		{name: "Highest rating with comment", input: model.ReviewInput{ProductID: product.ID, Rating: 5, Comment: strPtr("great")}},
		{name: "Rating zero", input: model.ReviewInput{ProductID: product.ID, Rating: 0}, wantRule: apperrors.RuleRatingOutOfRange},
		{name: "Rating six", input: model.ReviewInput{ProductID: product.ID, Rating: 6}, wantRule: apperrors.RuleRatingOutOfRange},
		{name: "Missing product id", input: model.ReviewInput{Rating: 3}, wantRule: apperrors.RuleProductRequired},
		{name: "Unknown product", input: model.ReviewInput{ProductID: 9999, Rating: 3}, notFound: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			review, err := reviewService.CreateReview(ctx, tt.input)
			switch {
			case tt.wantRule != "":
				var ve *apperrors.ValidationError
				require.True(t, errors.As(err, &ve))
				assert.Equal(t, tt.wantRule, ve.Rule)
			case tt.notFound:
				var nf *apperrors.NotFoundError
				require.True(t, errors.As(err, &nf))
				assert.Equal(t, "product", nf.Entity)
			default:
				require.NoError(t, err)
				assert.NotZero(t, review.ID)
			}
		})
	}
}

func TestReviewService_ListProductReviews(t *testing.T) {
	reviewService, product := setupReviewServiceTest(t)
	ctx := context.Background()

	reviews, summary, err := reviewService.ListProductReviews(ctx, product.ID)
	require.NoError(t, err)
	assert.Empty(t, reviews)
	assert.Equal(t, 0, summary.Count)

	for _, rating := range []int{5, 4, 4} {
		_, err := reviewService.CreateReview(ctx, model.ReviewInput{ProductID: product.ID, Rating: rating})
		require.NoError(t, err)
	}

	reviews, summary, err = reviewService.ListProductReviews(ctx, product.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 3)
	assert.Equal(t, 3, summary.Count)
	assert.InDelta(t, 4.333, summary.AverageRating, 0.001)

	_, _, err = reviewService.ListProductReviews(ctx, 9999)
	var nf *apperrors.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestReviewService_DeleteReview(t *testing.T) {
	reviewService, product := setupReviewServiceTest(t)
	ctx := context.Background()

	review, err := reviewService.CreateReview(ctx, model.ReviewInput{ProductID: product.ID, Rating: 3})
	require.NoError(t, err)

	require.NoError(t, reviewService.DeleteReview(ctx, review.ID))

	_, err = reviewService.GetReview(ctx, review.ID)
	var nf *apperrors.NotFoundError
	assert.True(t, errors.As(err, &nf))

	err = reviewService.DeleteReview(ctx, review.ID)
	assert.True(t, errors.As(err, &nf))
}
