package service

import (
	"context"
	"errors"
	"sort"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/schema"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/pkg/logger"
)

// CreateOrderInput is a new order request. IdempotencyKey is optional.
type CreateOrderInput struct {
	Items          []model.LineItem
	IdempotencyKey string
}

// IdempotencyStore maps client supplied keys to the order they produced.
// Reserve returns acquired=true when the caller owns a fresh key, a non-zero
// order id when the key already completed, and (0, false, nil) while another
// request holds the key.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string) (orderID uint, acquired bool, err error)
	Complete(ctx context.Context, key string, orderID uint) error
	Release(ctx context.Context, key string) error
}

type OrderService interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*model.Order, error)
	CancelOrder(ctx context.Context, id uint) error
	GetOrder(ctx context.Context, id uint) (*model.Order, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
}

type OrderServiceOption func(*orderService)

func WithIdempotency(store IdempotencyStore) OrderServiceOption {
	return func(s *orderService) {
		s.idempotency = store
	}
}

func WithEventPublisher(publisher EventPublisher) OrderServiceOption {
	return func(s *orderService) {
		if publisher != nil {
			s.publisher = publisher
		}
	}
}

type orderService struct {
	store       *repository.Store
	idempotency IdempotencyStore
	publisher   EventPublisher
}

func NewOrderService(store *repository.Store, opts ...OrderServiceOption) OrderService {
	s := &orderService{
		store:     store,
		publisher: nopPublisher{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *orderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*model.Order, error) {
	log := logger.FromContext(ctx)

	if err := schema.ValidateLineItems(input.Items); err != nil {
		log.Warn("Order request rejected", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	key := input.IdempotencyKey
	if key != "" && s.idempotency != nil {
		orderID, acquired, err := s.idempotency.Reserve(ctx, key)
		if err != nil {
			log.Error("Failed to reserve idempotency key", err)
			return nil, apperrors.Storage("reserve idempotency key", err)
		}
		if !acquired {
			if orderID == 0 {
				return nil, &apperrors.ConflictError{Field: "idempotency_key", Rule: apperrors.RuleKeyInFlight}
			}
			log.Info("Replaying order for idempotency key", map[string]interface{}{
				"order_id": orderID,
			})
			return s.store.Orders.FindByID(ctx, orderID)
		}
	} else {
		key = ""
	}

	order, err := s.placeOrder(ctx, input.Items)

	if key != "" {
		// cleanup must survive a cancelled request
		cleanupCtx := context.WithoutCancel(ctx)
		if err != nil {
			if rerr := s.idempotency.Release(cleanupCtx, key); rerr != nil {
				log.Error("Failed to release idempotency key", rerr)
			}
		} else if cerr := s.idempotency.Complete(cleanupCtx, key, order.ID); cerr != nil {
			log.Error("Failed to record idempotency key", cerr, map[string]interface{}{
				"order_id": order.ID,
			})
		}
	}
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(EventOrderCreated, newOrderEvent(EventOrderCreated, order))
	return order, nil
}

// placeOrder runs the whole order in one transaction: lock the products in
// id order, snapshot prices, check stock, insert order and lines, then take
// the stock with guarded decrements.
func (s *orderService) placeOrder(ctx context.Context, requested []model.LineItem) (*model.Order, error) {
	log := logger.FromContext(ctx)

	items := append([]model.LineItem(nil), requested...)
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
	ids := make([]uint, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}

	var placed *model.Order
	err := s.store.WithTx(ctx, func(tx *repository.Store) error {
		products, err := tx.Products.LockByIDs(ctx, ids)
		if err != nil {
			return err
		}

		lines := make([]model.OrderProduct, 0, len(items))
		for i, item := range items {
			product := products[i]
			if product.StockQuantity < item.Quantity {
				return &apperrors.InsufficientStockError{
					ProductID: product.ID,
					Requested: item.Quantity,
					Available: product.StockQuantity,
				}
			}
			lines = append(lines, model.OrderProduct{
				ProductID: product.ID,
				Quantity:  item.Quantity,
				UnitPrice: product.Price,
			})
		}

		total := model.ComputeTotal(lines)
		if err := schema.ValidateOrderTotal(total); err != nil {
			return err
		}

		order := &model.Order{TotalPrice: total, Lines: lines}
		if err := tx.Orders.Create(ctx, order); err != nil {
			return err
		}

		for _, line := range lines {
			ok, err := tx.Products.DecrementStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				available := 0
				if current, err := tx.Products.FindByID(ctx, line.ProductID); err == nil {
					available = current.StockQuantity
				}
				return &apperrors.InsufficientStockError{
					ProductID: line.ProductID,
					Requested: line.Quantity,
					Available: available,
				}
			}
		}

		// 커밋 전에 읽어 두어야 커밋 이후 실패가 없다
		placed, err = tx.Orders.FindByID(ctx, order.ID)
		return err
	})
	if err != nil {
		var stock *apperrors.InsufficientStockError
		switch {
		case errors.As(err, &stock):
			log.Warn("Order creation failed: insufficient product stock", map[string]interface{}{
				"product_id": stock.ProductID,
				"requested":  stock.Requested,
				"available":  stock.Available,
			})
		case apperrors.IsTyped(err):
			log.Warn("Order creation rejected", map[string]interface{}{
				"error": err.Error(),
			})
		default:
			log.Error("Order transaction failed", err)
		}
		return nil, err
	}

	log.Info("Order created", map[string]interface{}{
		"order_id":    placed.ID,
		"total_price": model.FormatMoney(placed.TotalPrice),
		"lines":       len(placed.Lines),
	})
	return placed, nil
}

// CancelOrder restores the stock of every line and deletes the order, all in
// one transaction.
func (s *orderService) CancelOrder(ctx context.Context, id uint) error {
	log := logger.FromContext(ctx)

	var cancelled *model.Order
	err := s.store.WithTx(ctx, func(tx *repository.Store) error {
		order, err := tx.Orders.FindByID(ctx, id)
		if err != nil {
			return err
		}
		for _, line := range order.Lines {
			if err := tx.Products.IncrementStock(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		if _, err := tx.Orders.Delete(ctx, id); err != nil {
			return err
		}
		cancelled = order
		return nil
	})
	if err != nil {
		log.Warn("Order cancellation failed", map[string]interface{}{
			"order_id": id,
			"error":    err.Error(),
		})
		return err
	}

	log.Info("Order cancelled", map[string]interface{}{
		"order_id": id,
		"lines":    len(cancelled.Lines),
	})
	s.publisher.Publish(EventOrderCancelled, newOrderEvent(EventOrderCancelled, cancelled))
	return nil
}

func (s *orderService) GetOrder(ctx context.Context, id uint) (*model.Order, error) {
	return s.store.Orders.FindByID(ctx, id)
}

func (s *orderService) ListOrders(ctx context.Context) ([]model.Order, error) {
	return s.store.Orders.List(ctx)
}
