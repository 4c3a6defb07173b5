//go:build integration

package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/db"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
)

// Runs against a real PostgreSQL so row locks and CHECK constraints behave
// as in production:
//
//	go test -tags integration ./internal/app/...
func setupIntegrationTest(t *testing.T) (*gorm.DB, *repository.Store) {
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("storefront"),
		postgres.WithPassword("storefront"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = container.Terminate(stopCtx)
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	database, err := db.Open(gormpostgres.Open(dsn))
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(20)
	t.Cleanup(func() { _ = db.Close(database) })

	require.NoError(t, db.Migrate(database))
	return database, repository.NewStore(database)
}

func TestIntegration_ConcurrentOrdersNeverOversell(t *testing.T) {
	_, store := setupIntegrationTest(t)
	ctx := context.Background()

	products := service.NewProductService(store)
	orders := service.NewOrderService(store)

	stock := 25
	widget, err := products.CreateProduct(ctx, model.ProductInput{
		Name:          "Widget",
		Price:         decimal.RequireFromString("9.99"),
		StockQuantity: &stock,
	})
	require.NoError(t, err)
	gadget, err := products.CreateProduct(ctx, model.ProductInput{
		Name:          "Gadget",
		Price:         decimal.RequireFromString("0.35"),
		StockQuantity: &stock,
	})
	require.NoError(t, err)

	const buyers = 40
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		succeeded  int
		unexpected []error
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// alternate line order so lock ordering is exercised
			items := []model.LineItem{{ProductID: widget.ID, Quantity: 1}, {ProductID: gadget.ID, Quantity: 1}}
			if i%2 == 1 {
				items[0], items[1] = items[1], items[0]
			}
			_, err := orders.CreateOrder(ctx, service.CreateOrderInput{Items: items})

			mu.Lock()
			defer mu.Unlock()
			var insufficient *apperrors.InsufficientStockError
			switch {
			case err == nil:
				succeeded++
			case errors.As(err, &insufficient):
			default:
				unexpected = append(unexpected, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Empty(t, unexpected)
	assert.Equal(t, stock, succeeded)

	for _, id := range []uint{widget.ID, gadget.ID} {
		p, err := products.GetProductByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 0, p.StockQuantity)
	}

	report, err := service.NewAuditService(store).Audit(ctx)
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.Equal(t, stock, report.OrdersChecked)
}

func TestIntegration_ProductDeleteCascade(t *testing.T) {
	database, store := setupIntegrationTest(t)
	ctx := context.Background()

	products := service.NewProductService(store)
	reviews := service.NewReviewService(store)
	orders := service.NewOrderService(store)

	stock := 10
	widget, err := products.CreateProduct(ctx, model.ProductInput{Name: "Widget", Price: decimal.RequireFromString("9.99"), StockQuantity: &stock})
	require.NoError(t, err)
	gadget, err := products.CreateProduct(ctx, model.ProductInput{Name: "Gadget", Price: decimal.RequireFromString("1.25"), StockQuantity: &stock})
	require.NoError(t, err)

	_, err = reviews.CreateReview(ctx, model.ReviewInput{ProductID: widget.ID, Rating: 5})
	require.NoError(t, err)
	order, err := orders.CreateOrder(ctx, service.CreateOrderInput{Items: []model.LineItem{
		{ProductID: widget.ID, Quantity: 1},
		{ProductID: gadget.ID, Quantity: 2},
	}})
	require.NoError(t, err)
	assert.Equal(t, "12.49", model.FormatMoney(order.TotalPrice))

	require.NoError(t, products.DeleteProduct(ctx, widget.ID))

	var reviewCount int64
	require.NoError(t, database.Model(&model.Review{}).Where("product_id = ?", widget.ID).Count(&reviewCount).Error)
	assert.Zero(t, reviewCount)

	reloaded, err := orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Lines, 1)
	assert.Equal(t, "2.50", model.FormatMoney(reloaded.TotalPrice))
}

func TestIntegration_SchemaConstraints(t *testing.T) {
	database, _ := setupIntegrationTest(t)

	err := database.Exec(`INSERT INTO products (name, price, stock_quantity, created_at) VALUES ('x', 1, -1, now())`).Error
	assert.Error(t, err)

	err = database.Exec(`INSERT INTO order_products (order_id, product_id, quantity, unit_price) VALUES (999, 999, 1, 1)`).Error
	assert.True(t, apperrors.IsForeignKeyViolation(err))
}
