package db

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ikkim/storefront-backend/internal/app/model"
)

func setupSchemaTest(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { CleanupTestDB(db) })
	return db
}

func TestSetupTestDB_Ping(t *testing.T) {
	db := setupSchemaTest(t)
	assert.NoError(t, Ping(context.Background(), db))
}

func TestSchema_RejectsNegativeStock(t *testing.T) {
	db := setupSchemaTest(t)

	product := model.Product{Name: "Widget", Price: decimal.RequireFromString("1.00"), StockQuantity: -1}
	assert.Error(t, db.Create(&product).Error)
}

func TestSchema_RejectsRatingOutsideRange(t *testing.T) {
	db := setupSchemaTest(t)

	product := model.Product{Name: "Widget", Price: decimal.RequireFromString("1.00")}
	require.NoError(t, db.Create(&product).Error)

	review := model.Review{ProductID: product.ID, Rating: 6}
	assert.Error(t, db.Create(&review).Error)
}

func TestSchema_SkuUniqueButNullable(t *testing.T) {
	db := setupSchemaTest(t)

	sku := "W-1"
	require.NoError(t, db.Create(&model.Product{Name: "A", Price: decimal.Zero, SKU: &sku}).Error)
	err := db.Create(&model.Product{Name: "B", Price: decimal.Zero, SKU: &sku}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	require.NoError(t, db.Create(&model.Product{Name: "C", Price: decimal.Zero}).Error)
	require.NoError(t, db.Create(&model.Product{Name: "D", Price: decimal.Zero}).Error)
}

func TestSchema_ForeignKeysRestrictDeletes(t *testing.T) {
	db := setupSchemaTest(t)

	product := model.Product{Name: "Widget", Price: decimal.RequireFromString("1.00")}
	require.NoError(t, db.Create(&product).Error)
	require.NoError(t, db.Create(&model.Review{ProductID: product.ID, Rating: 4}).Error)

	err := db.Delete(&model.Product{}, product.ID).Error
	assert.ErrorIs(t, err, gorm.ErrForeignKeyViolated)

	orphan := model.Review{ProductID: product.ID + 100, Rating: 4}
	assert.Error(t, db.Create(&orphan).Error)
}

func TestTruncateAllTables(t *testing.T) {
	db := setupSchemaTest(t)

	product := model.Product{Name: "Widget", Price: decimal.RequireFromString("1.00")}
	require.NoError(t, db.Create(&product).Error)
	require.NoError(t, db.Create(&model.Review{ProductID: product.ID, Rating: 4}).Error)

	require.NoError(t, TruncateAllTables(db))

	var count int64
	require.NoError(t, db.Model(&model.Product{}).Count(&count).Error)
	assert.Zero(t, count)
}
