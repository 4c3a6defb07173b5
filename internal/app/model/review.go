package model

import (
	"time"
)

// Review 상품 리뷰 모델. 생성 후 수정되지 않는다.
type Review struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                                   // 리뷰 ID
	Rating    int       `gorm:"not null;check:chk_reviews_rating,rating BETWEEN 1 AND 5" json:"rating"` // 평점 (1-5)
	Comment   *string   `gorm:"type:text" json:"comment,omitempty"`                                     // 리뷰 내용 (선택)
	ProductID uint      `gorm:"not null;index" json:"product_id"`                                       // 상품 ID
	CreatedAt time.Time `gorm:"<-:create" json:"created_at"`                                            // 생성 시각 (불변)

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"-"` // 상품 정보
}

func (Review) TableName() string {
	return "reviews"
}

// ReviewInput carries the fields accepted on review creation.
type ReviewInput struct {
	ProductID uint
	Rating    int
	Comment   *string
}

func (in ReviewInput) ToReview() Review {
	return Review{
		ProductID: in.ProductID,
		Rating:    in.Rating,
		Comment:   in.Comment,
	}
}

// ReviewSummary aggregates the reviews of one product.
type ReviewSummary struct {
	ProductID     uint    `json:"product_id"`
	Count         int     `json:"count"`
	AverageRating float64 `json:"average_rating"`
}

// Summarize computes the review summary of a product.
func Summarize(productID uint, reviews []Review) ReviewSummary {
	summary := ReviewSummary{ProductID: productID, Count: len(reviews)}
	if len(reviews) == 0 {
		return summary
	}
	total := 0
	for _, r := range reviews {
		total += r.Rating
	}
	summary.AverageRating = float64(total) / float64(len(reviews))
	return summary
}
