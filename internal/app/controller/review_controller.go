package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
)

type ReviewController struct {
	reviewService service.ReviewService
}

func NewReviewController(reviewService service.ReviewService) *ReviewController {
	return &ReviewController{reviewService: reviewService}
}

// CreateReview
// POST /api/v1/reviews
// POST /api/v1/products/:id/reviews (path id wins over the body)
func (ctrl *ReviewController) CreateReview(c *gin.Context) {
	var req CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	if c.Param("id") != "" {
		productID, ok := parseID(c, "id")
		if !ok {
			return
		}
		req.ProductID = productID
	}

	review, err := ctrl.reviewService.CreateReview(c.Request.Context(), model.ReviewInput{
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Review created successfully",
		"review":  review,
	})
}

// GetReview
// GET /api/v1/reviews/:id
func (ctrl *ReviewController) GetReview(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	review, err := ctrl.reviewService.GetReview(c.Request.Context(), id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"review": review,
	})
}

// GetProductReviews lists reviews of a product with the rating summary
// GET /api/v1/products/:id/reviews
func (ctrl *ReviewController) GetProductReviews(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}

	reviews, summary, err := ctrl.reviewService.ListProductReviews(c.Request.Context(), productID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"summary": summary,
	})
}

// DeleteReview
// DELETE /api/v1/reviews/:id
func (ctrl *ReviewController) DeleteReview(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.reviewService.DeleteReview(c.Request.Context(), id); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Review deleted successfully",
	})
}
