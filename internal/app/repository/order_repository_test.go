package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikkim/storefront-backend/internal/app/model"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
)

func TestOrderRepository_CreateAndFind(t *testing.T) {
	_, store := setupStoreTest(t)
	ctx := context.Background()

	widget := createProduct(t, store, "Widget", "9.99", 5)
	gadget := createProduct(t, store, "Gadget", "0.10", 5)

	order := createOrder(t, store,
		model.OrderProduct{ProductID: gadget.ID, Quantity: 3, UnitPrice: price("0.10")},
		model.OrderProduct{ProductID: widget.ID, Quantity: 2, UnitPrice: price("9.99")},
	)
	require.NotZero(t, order.ID)

	found, err := store.Orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, found.TotalPrice.Equal(price("20.28")))
	require.Len(t, found.Lines, 2)
	assert.Equal(t, widget.ID, found.Lines[0].ProductID, "lines are ordered by product id")
	assert.True(t, found.TotalConsistent())

	// stock is the coordinator's business
	current, err := store.Products.FindByID(ctx, widget.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, current.StockQuantity)
}

func TestOrderRepository_ListAndEach(t *testing.T) {
	_, store := setupStoreTest(t)
	ctx := context.Background()

	widget := createProduct(t, store, "Widget", "1.00", 10)
	for i := 1; i <= 3; i++ {
		createOrder(t, store, model.OrderProduct{ProductID: widget.ID, Quantity: i, UnitPrice: price("1.00")})
	}

	orders, err := store.Orders.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Len(t, orders[2].Lines, 1)

	var quantities []int
	for order, err := range store.Orders.Each(ctx, 2) {
		require.NoError(t, err)
		require.Len(t, order.Lines, 1)
		quantities = append(quantities, order.Lines[0].Quantity)
	}
	assert.Equal(t, []int{1, 2, 3}, quantities)
}

func TestOrderRepository_Delete(t *testing.T) {
	testDB, store := setupStoreTest(t)
	ctx := context.Background()

	widget := createProduct(t, store, "Widget", "1.00", 10)
	order := createOrder(t, store, model.OrderProduct{ProductID: widget.ID, Quantity: 2, UnitPrice: price("1.00")})

	result, err := store.Orders.Delete(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Count("order_product"))
	assert.Equal(t, int64(1), result.Count("order"))
	assert.Zero(t, countRows(t, testDB, "order_products", "order_id = ?", order.ID))

	_, err = store.Orders.FindByID(ctx, order.ID)
	var nf *apperrors.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "order", nf.Entity)

	// the product itself is untouched
	_, err = store.Products.FindByID(ctx, widget.ID)
	assert.NoError(t, err)
}
