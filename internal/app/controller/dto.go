package controller

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/ikkim/storefront-backend/internal/app/model"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

// 금액은 JSON 숫자와 문자열 모두 받고, 응답에서는 소수 둘째 자리 문자열로 내보낸다.

type CreateProductRequest struct {
	Name          string           `json:"name"`
	Price         *decimal.Decimal `json:"price" binding:"required"`
	Description   *string          `json:"description"`
	SKU           *string          `json:"sku"`
	StockQuantity *int             `json:"stock_quantity"`
}

func (r CreateProductRequest) toInput() model.ProductInput {
	return model.ProductInput{
		Name:          r.Name,
		Price:         *r.Price,
		Description:   r.Description,
		SKU:           r.SKU,
		StockQuantity: r.StockQuantity,
	}
}

type UpdateProductRequest struct {
	Name          *string          `json:"name"`
	Price         *decimal.Decimal `json:"price"`
	Description   *string          `json:"description"`
	SKU           *string          `json:"sku"`
	StockQuantity *int             `json:"stock_quantity"`
}

func (r UpdateProductRequest) toPatch() model.ProductPatch {
	return model.ProductPatch{
		Name:          r.Name,
		Price:         r.Price,
		Description:   r.Description,
		SKU:           r.SKU,
		StockQuantity: r.StockQuantity,
	}
}

type CreateReviewRequest struct {
	ProductID uint    `json:"product_id"`
	Rating    int     `json:"rating"`
	Comment   *string `json:"comment"`
}

type OrderItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  *int `json:"quantity"` // 생략 시 1
}

type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items"`
}

func (r CreateOrderRequest) toLineItems() []model.LineItem {
	items := make([]model.LineItem, 0, len(r.Items))
	for _, item := range r.Items {
		quantity := 1
		if item.Quantity != nil {
			quantity = *item.Quantity
		}
		items = append(items, model.LineItem{ProductID: item.ProductID, Quantity: quantity})
	}
	return items
}

type ProductResponse struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Price         string    `json:"price"`
	Description   *string   `json:"description,omitempty"`
	SKU           *string   `json:"sku,omitempty"`
	StockQuantity int       `json:"stock_quantity"`
	CreatedAt     time.Time `json:"created_at"`
}

func newProductResponse(p *model.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Price:         model.FormatMoney(p.Price),
		Description:   p.Description,
		SKU:           p.SKU,
		StockQuantity: p.StockQuantity,
		CreatedAt:     p.CreatedAt,
	}
}

type OrderLineResponse struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

type OrderResponse struct {
	ID         uint                `json:"id"`
	TotalPrice string              `json:"total_price"`
	CreatedAt  time.Time           `json:"created_at"`
	Lines      []OrderLineResponse `json:"lines"`
}

func newOrderResponse(o *model.Order) OrderResponse {
	lines := make([]OrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, OrderLineResponse{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: model.FormatMoney(l.UnitPrice),
			LineTotal: model.FormatMoney(l.LineTotal()),
		})
	}
	return OrderResponse{
		ID:         o.ID,
		TotalPrice: model.FormatMoney(o.TotalPrice),
		CreatedAt:  o.CreatedAt,
		Lines:      lines,
	}
}

// parseID reads a positive numeric path parameter. It writes the 400
// response itself and returns false when the value is malformed.
func parseID(c *gin.Context, param string) (uint, bool) {
	raw := c.Param(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		middleware.GetLoggerFromContext(c).Warn("Invalid ID format", map[string]interface{}{
			param: raw,
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid "+param)
		return 0, false
	}
	return uint(id), true
}

// bindJSON decodes the body and answers 400 on malformed input.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Invalid request body", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidBody, err.Error())
		return false
	}
	return true
}
