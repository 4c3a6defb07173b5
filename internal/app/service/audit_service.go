package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/logger"
)

const auditBatchSize = 200

// TotalMismatch is an order whose stored total differs from its lines.
type TotalMismatch struct {
	OrderID  uint            `json:"order_id"`
	Stored   decimal.Decimal `json:"stored"`
	Computed decimal.Decimal `json:"computed"`
}

type AuditReport struct {
	OrdersChecked   int             `json:"orders_checked"`
	ProductsChecked int             `json:"products_checked"`
	Mismatches      []TotalMismatch `json:"mismatches"`
	EmptyOrders     []uint          `json:"empty_orders"`
	NegativeStock   []uint          `json:"negative_stock"`
}

func (r AuditReport) Clean() bool {
	return len(r.Mismatches) == 0 && len(r.NegativeStock) == 0
}

// AuditService re-checks stored data against the order and stock rules.
type AuditService interface {
	Audit(ctx context.Context) (AuditReport, error)
}

type auditService struct {
	store *repository.Store
}

func NewAuditService(store *repository.Store) AuditService {
	return &auditService{store: store}
}

func (s *auditService) Audit(ctx context.Context) (AuditReport, error) {
	log := logger.FromContext(ctx)
	var report AuditReport

	for order, err := range s.store.Orders.Each(ctx, auditBatchSize) {
		if err != nil {
			return report, err
		}
		report.OrdersChecked++

		if len(order.Lines) == 0 {
			report.EmptyOrders = append(report.EmptyOrders, order.ID)
		}
		if computed := model.ComputeTotal(order.Lines); !computed.Equal(order.TotalPrice) {
			report.Mismatches = append(report.Mismatches, TotalMismatch{
				OrderID:  order.ID,
				Stored:   order.TotalPrice,
				Computed: computed,
			})
			log.Error("Order total does not match its lines", nil, map[string]interface{}{
				"order_id": order.ID,
				"stored":   model.FormatMoney(order.TotalPrice),
				"computed": model.FormatMoney(computed),
			})
		}
	}

	for product, err := range s.store.Products.Each(ctx, auditBatchSize) {
		if err != nil {
			return report, err
		}
		report.ProductsChecked++
		if product.StockQuantity < 0 {
			report.NegativeStock = append(report.NegativeStock, product.ID)
		}
	}

	fields := map[string]interface{}{
		"orders_checked":   report.OrdersChecked,
		"products_checked": report.ProductsChecked,
		"mismatches":       len(report.Mismatches),
		"empty_orders":     len(report.EmptyOrders),
		"negative_stock":   len(report.NegativeStock),
	}
	if report.Clean() {
		log.Info("Data audit completed", fields)
	} else {
		log.Warn("Data audit found violations", fields)
	}
	return report, nil
}
