package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/db"
)

func setupStoreTest(t *testing.T) (*gorm.DB, *Store) {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	return testDB, NewStore(testDB)
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func createProduct(t *testing.T, store *Store, name, unitPrice string, stock int) *model.Product {
	t.Helper()
	product := &model.Product{Name: name, Price: price(unitPrice), StockQuantity: stock}
	require.NoError(t, store.Products.Create(context.Background(), product))
	return product
}

func createOrder(t *testing.T, store *Store, lines ...model.OrderProduct) *model.Order {
	t.Helper()
	order := &model.Order{Lines: lines, TotalPrice: model.ComputeTotal(lines)}
	require.NoError(t, store.Orders.Create(context.Background(), order))
	return order
}

func countRows(t *testing.T, testDB *gorm.DB, table string, where string, args ...interface{}) int64 {
	t.Helper()
	var count int64
	query := testDB.Table(table)
	if where != "" {
		query = query.Where(where, args...)
	}
	require.NoError(t, query.Count(&count).Error)
	return count
}
