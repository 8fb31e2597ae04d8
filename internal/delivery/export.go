package delivery

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
)

const productSheet = "Products"

var productColumns = []string{
	"ID", "Name", "Description", "Category", "Price", "Stock", "Unit", "IsVeg", "Image", "IsActive",
}

// writeProductsWorkbook writes one header row and one row per product.
func writeProductsWorkbook(w io.Writer, products []domain.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(productSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range productColumns {
		header.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Description)
		row.AddCell().SetValue(p.Category)
		row.AddCell().SetValue(p.Price.String())
		row.AddCell().SetValue(p.Stock)
		row.AddCell().SetValue(p.Unit)
		row.AddCell().SetValue(strconv.FormatBool(p.IsVeg))
		row.AddCell().SetValue(p.Image)
		row.AddCell().SetValue(strconv.FormatBool(p.IsActive))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// readProductsWorkbook parses the layout written by writeProductsWorkbook.
// Rows that cannot be parsed are counted in skipped.
func readProductsWorkbook(r io.ReaderAt, size int64) (rows []usecase.ProductImportRow, skipped int, err error) {
	book, err := xlsx.OpenReaderAt(r, size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse workbook: %w", err)
	}
	if len(book.Sheets) == 0 || len(book.Sheets[0].Rows) < 2 {
		return nil, 0, domain.NewValidationError("file", "Excel file is empty or missing header row")
	}

	for _, row := range book.Sheets[0].Rows[1:] {
		get := func(i int) string {
			if row != nil && i < len(row.Cells) {
				return strings.TrimSpace(row.Cells[i].String())
			}
			return ""
		}

		name := get(1)
		if name == "" {
			skipped++
			continue
		}
		price, perr := decimal.NewFromString(get(4))
		if perr != nil {
			skipped++
			continue
		}
		stock := 0
		if s := get(5); s != "" {
			f, serr := strconv.ParseFloat(s, 64)
			if serr != nil {
				skipped++
				continue
			}
			stock = int(f)
		}
		isVeg, _ := strconv.ParseBool(get(7))

		rows = append(rows, usecase.ProductImportRow{
			ID: get(0),
			Input: domain.ProductInput{
				Name:        name,
				Description: get(2),
				Category:    get(3),
				Price:       price,
				Stock:       stock,
				Unit:        get(6),
				IsVeg:       isVeg,
				Image:       get(8),
			},
		})
	}
	return rows, skipped, nil
}
