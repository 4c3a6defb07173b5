package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/logger"
)

const (
	OrdersSheet = "Orders"
	LinesSheet  = "Lines"

	// 엑셀 기본 숫자 서식 "0.00"
	moneyNumFmt = 2
)

type ReportSummary struct {
	Orders  int
	Lines   int
	Revenue decimal.Decimal
}

// ReportService renders stored orders as an XLSX workbook.
type ReportService interface {
	OrdersWorkbook(ctx context.Context) (*bytes.Buffer, ReportSummary, error)
}

type reportService struct {
	store *repository.Store
}

func NewReportService(store *repository.Store) ReportService {
	return &reportService{store: store}
}

func (s *reportService) OrdersWorkbook(ctx context.Context) (*bytes.Buffer, ReportSummary, error) {
	summary := ReportSummary{Revenue: decimal.Zero}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", OrdersSheet); err != nil {
		return nil, summary, fmt.Errorf("failed to name orders sheet: %w", err)
	}
	if _, err := f.NewSheet(LinesSheet); err != nil {
		return nil, summary, fmt.Errorf("failed to create lines sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, summary, err
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: moneyNumFmt})
	if err != nil {
		return nil, summary, err
	}

	if err := f.SetSheetRow(OrdersSheet, "A1", &[]interface{}{"Order ID", "Created At", "Lines", "Total"}); err != nil {
		return nil, summary, err
	}
	if err := f.SetSheetRow(LinesSheet, "A1", &[]interface{}{"Order ID", "Product ID", "Quantity", "Unit Price", "Line Total"}); err != nil {
		return nil, summary, err
	}
	if err := f.SetRowStyle(OrdersSheet, 1, 1, headerStyle); err != nil {
		return nil, summary, err
	}
	if err := f.SetRowStyle(LinesSheet, 1, 1, headerStyle); err != nil {
		return nil, summary, err
	}

	orderRow, lineRow := 2, 2
	for order, err := range s.store.Orders.Each(ctx, auditBatchSize) {
		if err != nil {
			return nil, summary, err
		}

		cell, _ := excelize.CoordinatesToCellName(1, orderRow)
		if err := f.SetSheetRow(OrdersSheet, cell, &[]interface{}{
			order.ID,
			order.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			len(order.Lines),
			order.TotalPrice.InexactFloat64(),
		}); err != nil {
			return nil, summary, err
		}
		orderRow++

		for _, line := range order.Lines {
			cell, _ := excelize.CoordinatesToCellName(1, lineRow)
			if err := f.SetSheetRow(LinesSheet, cell, &[]interface{}{
				order.ID,
				line.ProductID,
				line.Quantity,
				line.UnitPrice.InexactFloat64(),
				model.RoundMoney(line.LineTotal()).InexactFloat64(),
			}); err != nil {
				return nil, summary, err
			}
			lineRow++
			summary.Lines++
		}

		summary.Orders++
		summary.Revenue = summary.Revenue.Add(order.TotalPrice)
	}

	if orderRow > 2 {
		if err := f.SetCellStyle(OrdersSheet, "D2", fmt.Sprintf("D%d", orderRow-1), moneyStyle); err != nil {
			return nil, summary, err
		}
	}
	if lineRow > 2 {
		if err := f.SetCellStyle(LinesSheet, "D2", fmt.Sprintf("E%d", lineRow-1), moneyStyle); err != nil {
			return nil, summary, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, summary, fmt.Errorf("failed to write workbook: %w", err)
	}

	logger.FromContext(ctx).Info("Order report generated", map[string]interface{}{
		"orders":  summary.Orders,
		"lines":   summary.Lines,
		"revenue": model.FormatMoney(summary.Revenue),
		"bytes":   buf.Len(),
	})
	return buf, summary, nil
}
