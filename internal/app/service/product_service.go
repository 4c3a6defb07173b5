package service

import (
	"context"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/logger"
)

type ProductService interface {
	CreateProduct(ctx context.Context, input model.ProductInput) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProductByID(ctx context.Context, id uint) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uint, patch model.ProductPatch) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}

type productService struct {
	store *repository.Store
}

func NewProductService(store *repository.Store) ProductService {
	return &productService{store: store}
}

func (s *productService) CreateProduct(ctx context.Context, input model.ProductInput) (*model.Product, error) {
	log := logger.FromContext(ctx)
	product := input.ToProduct()

	if err := s.store.Products.Create(ctx, &product); err != nil {
		log.Warn("Product creation rejected", map[string]interface{}{
			"name":  input.Name,
			"error": err.Error(),
		})
		return nil, err
	}

	log.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
		"stock":      product.StockQuantity,
	})
	return &product, nil
}

func (s *productService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.store.Products.List(ctx)
}

func (s *productService) GetProductByID(ctx context.Context, id uint) (*model.Product, error) {
	return s.store.Products.FindByID(ctx, id)
}

func (s *productService) UpdateProduct(ctx context.Context, id uint, patch model.ProductPatch) (*model.Product, error) {
	log := logger.FromContext(ctx)

	product, err := s.store.Products.Update(ctx, id, patch)
	if err != nil {
		log.Warn("Product update rejected", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		return nil, err
	}

	log.Info("Product updated", map[string]interface{}{
		"product_id": id,
	})
	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uint) error {
	result, err := s.store.Products.Delete(ctx, id)
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Info("Product deleted", map[string]interface{}{
		"product_id":       id,
		"reviews_deleted":  result.Count("review"),
		"lines_deleted":    result.Count("order_product"),
		"rows_deleted_all": result.Total(),
	})
	return nil
}
