package repository

import (
	"context"
	"iter"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/schema"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository persists orders and their lines. It does not touch stock;
// the order service owns that.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id uint) (*model.Order, error)
	List(ctx context.Context) ([]model.Order, error)
	Each(ctx context.Context, batchSize int) iter.Seq2[model.Order, error]
	Delete(ctx context.Context, id uint) (CascadeResult, error)
}

type orderRepository struct {
	db      *gorm.DB
	cascade *CascadeExecutor
}

func NewOrderRepository(db *gorm.DB, cascade *CascadeExecutor) OrderRepository {
	return &orderRepository{db: db, cascade: cascade}
}

func (r *orderRepository) preloadOrder() *gorm.DB {
	return r.db.Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("product_id")
	})
}

// Create inserts the order row and then its lines. Callers run it inside a
// transaction so a failed line insert leaves no order behind.
func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	log := logger.FromContext(ctx)
	log.Debug("Creating order in database", map[string]interface{}{
		"total_price": order.TotalPrice.String(),
		"lines":       len(order.Lines),
	})

	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(order).Error; err != nil {
		log.Error("Failed to create order in database", err)
		return apperrors.Storage("create order", err)
	}

	for i := range order.Lines {
		order.Lines[i].OrderID = order.ID
	}
	if len(order.Lines) > 0 {
		if err := db.Omit("Product").Create(&order.Lines).Error; err != nil {
			log.Error("Failed to create order lines in database", err, map[string]interface{}{
				"order_id": order.ID,
			})
			return apperrors.Storage("create order lines", err)
		}
	}

	log.Debug("Order created in database", map[string]interface{}{
		"order_id": order.ID,
	})
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	if err := r.preloadOrder().WithContext(ctx).First(&order, id).Error; err != nil {
		if apperrors.IsRecordNotFound(err) {
			return nil, apperrors.NotFound(string(schema.EntityOrder), id)
		}
		logger.FromContext(ctx).Error("Failed to find order by ID in database", err, map[string]interface{}{
			"order_id": id,
		})
		return nil, apperrors.Storage("find order", err)
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := r.preloadOrder().WithContext(ctx).Order("id").Find(&orders).Error; err != nil {
		logger.FromContext(ctx).Error("Failed to list orders in database", err)
		return nil, apperrors.Storage("list orders", err)
	}
	return orders, nil
}

func (r *orderRepository) Each(ctx context.Context, batchSize int) iter.Seq2[model.Order, error] {
	return eachByID(ctx, r.preloadOrder, batchSize,
		"iterate orders", func(o model.Order) uint { return o.ID })
}

// Delete removes the order and its lines without restoring stock.
func (r *orderRepository) Delete(ctx context.Context, id uint) (CascadeResult, error) {
	return r.cascade.Delete(ctx, r.db, schema.EntityOrder, id)
}
