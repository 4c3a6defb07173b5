package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            uint            `gorm:"primarykey" json:"id"`                                                                  // 상품 ID
	Name          string          `gorm:"not null" json:"name"`                                                                  // 상품명
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`                                              // 현재 판매가
	Description   *string         `gorm:"type:text" json:"description,omitempty"`                                                // 설명 (선택)
	SKU           *string         `gorm:"column:sku;uniqueIndex:idx_products_sku" json:"sku,omitempty"`                          // 재고 관리 코드 (있으면 유일)
	StockQuantity int             `gorm:"not null;default:0;check:chk_products_stock,stock_quantity >= 0" json:"stock_quantity"` // 재고 수량
	CreatedAt     time.Time       `gorm:"<-:create" json:"created_at"`                                                           // 생성 시각 (불변)
}

func (Product) TableName() string {
	return "products"
}

// ProductInput carries the fields accepted on product creation. Nil pointers
// mean "not supplied".
type ProductInput struct {
	Name          string
	Price         decimal.Decimal
	Description   *string
	SKU           *string
	StockQuantity *int
}

// ToProduct applies creation defaults.
func (in ProductInput) ToProduct() Product {
	p := Product{
		Name:        in.Name,
		Price:       in.Price,
		Description: in.Description,
		SKU:         in.SKU,
	}
	if in.StockQuantity != nil {
		p.StockQuantity = *in.StockQuantity
	}
	return p
}

// ProductPatch is a partial update. Only non-nil fields are applied; there is
// no implicit null-out of omitted fields.
type ProductPatch struct {
	Name          *string
	Price         *decimal.Decimal
	Description   *string
	SKU           *string
	StockQuantity *int
}

// IsEmpty reports whether the patch supplies no field at all.
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Price == nil && p.Description == nil && p.SKU == nil && p.StockQuantity == nil
}

// Apply returns a copy of product with the supplied fields replaced, plus the
// column set that changed.
func (p ProductPatch) Apply(product Product) (Product, map[string]interface{}) {
	columns := map[string]interface{}{}
	if p.Name != nil {
		product.Name = *p.Name
		columns["name"] = product.Name
	}
	if p.Price != nil {
		product.Price = *p.Price
		columns["price"] = product.Price
	}
	if p.Description != nil {
		product.Description = p.Description
		columns["description"] = *p.Description
	}
	if p.SKU != nil {
		product.SKU = p.SKU
		columns["sku"] = *p.SKU
	}
	if p.StockQuantity != nil {
		product.StockQuantity = *p.StockQuantity
		columns["stock_quantity"] = product.StockQuantity
	}
	return product, columns
}
