package schema

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ikkim/storefront-backend/internal/app/model"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
)

// ValidateProduct checks a complete product record. Rules are evaluated in a
// fixed order and the first violation is returned.
func ValidateProduct(p model.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperrors.Validation("name", apperrors.RuleNameRequired)
	}
	if p.Price.IsNegative() {
		return apperrors.Validation("price", apperrors.RulePriceNegative)
	}
	if !model.HasMoneyScale(p.Price) {
		return apperrors.Validation("price", apperrors.RulePriceScale)
	}
	if p.Price.GreaterThan(model.MaxMoney) {
		return apperrors.Validation("price", apperrors.RulePriceTooLarge)
	}
	if p.StockQuantity < 0 {
		return apperrors.Validation("stock_quantity", apperrors.RuleStockNegative)
	}
	if p.SKU != nil && strings.TrimSpace(*p.SKU) == "" {
		return apperrors.Validation("sku", apperrors.RuleSkuBlank)
	}
	return nil
}

// ValidateReview checks a review before it is written.
func ValidateReview(r model.Review) error {
	if r.ProductID == 0 {
		return apperrors.Validation("product_id", apperrors.RuleProductRequired)
	}
	if r.Rating < 1 || r.Rating > 5 {
		return apperrors.Validation("rating", apperrors.RuleRatingOutOfRange)
	}
	return nil
}

// ValidateOrderTotal rejects a computed total the price column cannot store.
func ValidateOrderTotal(total decimal.Decimal) error {
	if total.GreaterThan(model.MaxMoney) {
		return apperrors.Validation("total_price", apperrors.RuleTotalTooLarge)
	}
	return nil
}

// ValidateLineItems checks an order request. Runs before any read or write.
func ValidateLineItems(items []model.LineItem) error {
	if len(items) == 0 {
		return apperrors.Validation("items", apperrors.RuleLineItemsEmpty)
	}

	seen := make(map[uint]struct{}, len(items))
	for _, item := range items {
		if item.ProductID == 0 {
			return apperrors.Validation("items.product_id", apperrors.RuleProductRequired)
		}
		if item.Quantity <= 0 {
			return apperrors.Validation("items.quantity", apperrors.RuleQuantityNonPositive)
		}
		if _, dup := seen[item.ProductID]; dup {
			return apperrors.Validation("items.product_id", apperrors.RuleProductDuplicate)
		}
		seen[item.ProductID] = struct{}{}
	}
	return nil
}
