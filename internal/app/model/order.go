package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is immutable once committed; cancellation deletes it.
type Order struct {
	ID         uint            `gorm:"primarykey" json:"id"`                           // 주문 ID
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"` // 총 주문 금액 (서버 계산)
	CreatedAt  time.Time       `gorm:"<-:create" json:"created_at"`                    // 생성 시각 (불변)

	Lines []OrderProduct `gorm:"foreignKey:OrderID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"lines"` // 주문 상품 목록
}

func (Order) TableName() string {
	return "orders"
}

// OrderProduct joins an order to one distinct product. UnitPrice is the
// product price captured when the order was created.
type OrderProduct struct {
	ProductID uint            `gorm:"primaryKey;autoIncrement:false" json:"product_id"`                                   // 상품 ID
	OrderID   uint            `gorm:"primaryKey;autoIncrement:false;index" json:"order_id"`                               // 주문 ID
	Quantity  int             `gorm:"not null;default:1;check:chk_order_products_quantity,quantity >= 1" json:"quantity"` // 수량
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`                                      // 주문 시점 단가 스냅샷

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"-"` // 상품 정보
}

func (OrderProduct) TableName() string {
	return "order_products"
}

// LineTotal is UnitPrice × Quantity, unrounded.
func (l OrderProduct) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ComputeTotal derives the order total from its lines.
func ComputeTotal(lines []OrderProduct) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.LineTotal())
	}
	return RoundMoney(sum)
}

// TotalConsistent reports whether TotalPrice equals the rounded sum of lines.
func (o Order) TotalConsistent() bool {
	return o.TotalPrice.Equal(ComputeTotal(o.Lines))
}

// LineItem is one requested product of a new order.
type LineItem struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}
