package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ikkim/storefront-backend/internal/app/model"
)

func TestReportService_OrdersWorkbook(t *testing.T) {
	_, store := setupServiceTest(t)
	products := NewProductService(store)
	orders := NewOrderService(store)
	ctx := context.Background()

	widget := seedProduct(t, products, "Widget", "9.99", 5)
	gadget := seedProduct(t, products, "Gadget", "0.50", 5)

	_, err := orders.CreateOrder(ctx, CreateOrderInput{Items: []model.LineItem{{ProductID: widget.ID, Quantity: 2}}})
	require.NoError(t, err)
	_, err = orders.CreateOrder(ctx, CreateOrderInput{Items: []model.LineItem{
		{ProductID: widget.ID, Quantity: 1},
		{ProductID: gadget.ID, Quantity: 3},
	}})
	require.NoError(t, err)

	buf, summary, err := NewReportService(store).OrdersWorkbook(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Orders)
	assert.Equal(t, 3, summary.Lines)
	assert.Equal(t, "31.47", model.FormatMoney(summary.Revenue))

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{OrdersSheet, LinesSheet}, f.GetSheetList())

	orderRows, err := f.GetRows(OrdersSheet)
	require.NoError(t, err)
	require.Len(t, orderRows, 3)
	assert.Equal(t, "Total", orderRows[0][3])
	assert.Equal(t, "19.98", orderRows[1][3])

	lineRows, err := f.GetRows(LinesSheet)
	require.NoError(t, err)
	assert.Len(t, lineRows, 4)
}

func TestReportService_EmptyWorkbook(t *testing.T) {
	_, store := setupServiceTest(t)

	buf, summary, err := NewReportService(store).OrdersWorkbook(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Orders)
	assert.True(t, summary.Revenue.IsZero())

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(OrdersSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
