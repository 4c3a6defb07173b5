package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
)

// Catalog workbook columns, first sheet, header on row 1:
// name | price | description | sku | stock_quantity
const (
	catalogColName = iota
	catalogColPrice
	catalogColDescription
	catalogColSKU
	catalogColStock
)

type CatalogRow struct {
	Row   int
	Input model.ProductInput
}

type CatalogRowError struct {
	Row int
	Err error
}

func (e CatalogRowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

type CatalogImportResult struct {
	Created []uint
	Failed  []CatalogRowError
}

// ParseCatalogWorkbook reads product rows from an XLSX workbook. Rows that
// cannot be parsed are returned as errors; blank rows are skipped.
func ParseCatalogWorkbook(r io.Reader) ([]CatalogRow, []CatalogRowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("no data found in XLSX file")
	}

	var (
		parsed  []CatalogRow
		invalid []CatalogRowError
	)
	// 첫 행은 헤더
	for i, row := range rows[1:] {
		rowNum := i + 2
		if isBlankRow(row) {
			continue
		}
		input, err := parseCatalogRow(row)
		if err != nil {
			invalid = append(invalid, CatalogRowError{Row: rowNum, Err: err})
			continue
		}
		parsed = append(parsed, CatalogRow{Row: rowNum, Input: input})
	}
	return parsed, invalid, nil
}

func parseCatalogRow(row []string) (model.ProductInput, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	price, err := decimal.NewFromString(cell(catalogColPrice))
	if err != nil {
		return model.ProductInput{}, fmt.Errorf("invalid price %q", cell(catalogColPrice))
	}

	input := model.ProductInput{
		Name:  cell(catalogColName),
		Price: price,
	}
	if v := cell(catalogColDescription); v != "" {
		input.Description = &v
	}
	if v := cell(catalogColSKU); v != "" {
		input.SKU = &v
	}
	if v := cell(catalogColStock); v != "" {
		stock, err := strconv.Atoi(v)
		if err != nil {
			return model.ProductInput{}, fmt.Errorf("invalid stock quantity %q", v)
		}
		input.StockQuantity = &stock
	}
	return input, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ImportCatalog creates each parsed row through the product service, so the
// usual validation and sku checks apply. A failing row does not stop the
// import.
func ImportCatalog(ctx context.Context, products ProductService, rows []CatalogRow) CatalogImportResult {
	var result CatalogImportResult
	for _, row := range rows {
		product, err := products.CreateProduct(ctx, row.Input)
		if err != nil {
			result.Failed = append(result.Failed, CatalogRowError{Row: row.Row, Err: err})
			continue
		}
		result.Created = append(result.Created, product.ID)
	}

	logger.FromContext(ctx).Info("Catalog import finished", map[string]interface{}{
		"created": len(result.Created),
		"failed":  len(result.Failed),
	})
	return result
}
