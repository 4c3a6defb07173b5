package repository

import (
	"context"
	"iter"
	"sort"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/schema"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	// LockByIDs loads the products in ascending id order holding row locks
	// until the surrounding transaction ends.
	LockByIDs(ctx context.Context, ids []uint) ([]model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	Each(ctx context.Context, batchSize int) iter.Seq2[model.Product, error]
	Update(ctx context.Context, id uint, patch model.ProductPatch) (*model.Product, error)
	Delete(ctx context.Context, id uint) (CascadeResult, error)

	// DecrementStock subtracts qty only while stock_quantity >= qty still
	// holds. It reports false, without error, when the guard fails.
	DecrementStock(ctx context.Context, id uint, qty int) (bool, error)
	IncrementStock(ctx context.Context, id uint, qty int) error
}

type productRepository struct {
	db      *gorm.DB
	cascade *CascadeExecutor
}

func NewProductRepository(db *gorm.DB, cascade *CascadeExecutor) ProductRepository {
	return &productRepository{db: db, cascade: cascade}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	log := logger.FromContext(ctx)
	if err := schema.ValidateProduct(*product); err != nil {
		return err
	}

	log.Debug("Creating product in database", map[string]interface{}{
		"name": product.Name,
		"sku":  product.SKU,
	})

	if err := r.ensureSkuFree(ctx, r.db, product.SKU, 0); err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		if apperrors.IsDuplicateKey(err) {
			return &apperrors.ConflictError{Field: "sku", Rule: apperrors.RuleSkuDuplicate}
		}
		log.Error("Failed to create product in database", err, map[string]interface{}{
			"name": product.Name,
		})
		return apperrors.Storage("create product", err)
	}

	log.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
	})
	return nil
}

// ensureSkuFree fails with ConflictError when another product holds sku. The
// unique index still guards against a concurrent insert.
func (r *productRepository) ensureSkuFree(ctx context.Context, db *gorm.DB, sku *string, exceptID uint) error {
	if sku == nil {
		return nil
	}
	query := db.WithContext(ctx).Model(&model.Product{}).Where("sku = ?", *sku)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return apperrors.Storage("check product sku", err)
	}
	if count > 0 {
		return &apperrors.ConflictError{Field: "sku", Rule: apperrors.RuleSkuDuplicate}
	}
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	return findProduct(ctx, r.db, id)
}

func findProduct(ctx context.Context, db *gorm.DB, id uint) (*model.Product, error) {
	var product model.Product
	if err := db.WithContext(ctx).First(&product, id).Error; err != nil {
		if apperrors.IsRecordNotFound(err) {
			return nil, apperrors.NotFound(string(schema.EntityProduct), id)
		}
		logger.FromContext(ctx).Error("Failed to find product by ID in database", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, apperrors.Storage("find product", err)
	}
	return &product, nil
}

func (r *productRepository) LockByIDs(ctx context.Context, ids []uint) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&products).Error
	if err != nil {
		logger.FromContext(ctx).Error("Failed to lock products", err, map[string]interface{}{
			"product_ids": ids,
		})
		return nil, apperrors.Storage("lock products", err)
	}

	if len(products) != len(ids) {
		found := make(map[uint]struct{}, len(products))
		for _, p := range products {
			found[p.ID] = struct{}{}
		}
		missing := append([]uint(nil), ids...)
		sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
		for _, id := range missing {
			if _, ok := found[id]; !ok {
				return nil, apperrors.NotFound(string(schema.EntityProduct), id)
			}
		}
	}
	return products, nil
}

func (r *productRepository) List(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).Order("id").Find(&products).Error; err != nil {
		logger.FromContext(ctx).Error("Failed to list products in database", err)
		return nil, apperrors.Storage("list products", err)
	}

	logger.FromContext(ctx).Debug("Products listed from database", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

func (r *productRepository) Each(ctx context.Context, batchSize int) iter.Seq2[model.Product, error] {
	return eachByID(ctx, func() *gorm.DB { return r.db.Model(&model.Product{}) }, batchSize,
		"iterate products", func(p model.Product) uint { return p.ID })
}

func (r *productRepository) Update(ctx context.Context, id uint, patch model.ProductPatch) (*model.Product, error) {
	log := logger.FromContext(ctx)
	var updated *model.Product

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := findProduct(ctx, tx, id)
		if err != nil {
			return err
		}
		if patch.IsEmpty() {
			updated = current
			return nil
		}

		next, columns := patch.Apply(*current)
		if err := schema.ValidateProduct(next); err != nil {
			return err
		}
		if patch.SKU != nil {
			if err := r.ensureSkuFree(ctx, tx, next.SKU, id); err != nil {
				return err
			}
		}

		log.Debug("Updating product in database", map[string]interface{}{
			"product_id": id,
			"columns":    len(columns),
		})
		if err := tx.Model(&model.Product{}).Where("id = ?", id).Updates(columns).Error; err != nil {
			if apperrors.IsDuplicateKey(err) {
				return &apperrors.ConflictError{Field: "sku", Rule: apperrors.RuleSkuDuplicate}
			}
			log.Error("Failed to update product in database", err, map[string]interface{}{
				"product_id": id,
			})
			return apperrors.Storage("update product", err)
		}

		updated, err = findProduct(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, apperrors.Storage("update product", err)
	}
	return updated, nil
}

// Delete removes the product, its reviews and its order lines. Orders that
// lose a line get their total recomputed from the lines they keep.
func (r *productRepository) Delete(ctx context.Context, id uint) (CascadeResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("Deleting product with dependents", map[string]interface{}{
		"product_id": id,
	})

	var result CascadeResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var orderIDs []uint
		if err := tx.Model(&model.OrderProduct{}).
			Where("product_id = ?", id).
			Distinct().Order("order_id").
			Pluck("order_id", &orderIDs).Error; err != nil {
			return apperrors.Storage("find orders of product", err)
		}

		var err error
		if result, err = r.cascade.Delete(ctx, tx, schema.EntityProduct, id); err != nil {
			return err
		}

		for _, orderID := range orderIDs {
			if err := recomputeOrderTotal(ctx, tx, orderID); err != nil {
				return err
			}
		}
		if len(orderIDs) > 0 {
			log.Info("Order totals recomputed after product deletion", map[string]interface{}{
				"product_id": id,
				"order_ids":  orderIDs,
			})
		}
		return nil
	})
	if err != nil {
		return CascadeResult{}, apperrors.Storage("delete product", err)
	}
	return result, nil
}

func recomputeOrderTotal(ctx context.Context, tx *gorm.DB, orderID uint) error {
	var lines []model.OrderProduct
	if err := tx.WithContext(ctx).Where("order_id = ?", orderID).Find(&lines).Error; err != nil {
		return apperrors.Storage("load order lines", err)
	}
	err := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("total_price", model.ComputeTotal(lines)).Error
	return apperrors.Storage("recompute order total", err)
}

func (r *productRepository) DecrementStock(ctx context.Context, id uint, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND stock_quantity >= ?", id, qty).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if res.Error != nil {
		logger.FromContext(ctx).Error("Failed to decrement product stock", res.Error, map[string]interface{}{
			"product_id": id,
			"quantity":   qty,
		})
		return false, apperrors.Storage("decrement stock", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *productRepository) IncrementStock(ctx context.Context, id uint, qty int) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", qty))
	if res.Error != nil {
		logger.FromContext(ctx).Error("Failed to increment product stock", res.Error, map[string]interface{}{
			"product_id": id,
			"quantity":   qty,
		})
		return apperrors.Storage("increment stock", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound(string(schema.EntityProduct), id)
	}
	return nil
}
