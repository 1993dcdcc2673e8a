// Package export renders catalog data as spreadsheets for the back-office.
package export

import (
	"fmt"
	"io"

	"vastraa/internal/models"

	"github.com/tealeg/xlsx"
)

// ContentType is the MIME type of the workbooks written by this package.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var productHeaders = []string{
	"ID", "Name", "Category", "Fabric", "Price", "OriginalPrice", "Discount",
	"Stock", "Rating", "Image", "CreatedAt", "UpdatedAt",
}

// Products writes one row per product, after a header row, to a single "Products" sheet.
// Derived fields must already be resolved.
func Products(w io.Writer, products []models.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("failed to create products sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range productHeaders {
		headerRow.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Name)
		category := ""
		if p.Category != nil {
			category = p.Category.Name
		}
		row.AddCell().SetValue(category)
		row.AddCell().SetValue(p.Fabric)
		row.AddCell().SetFloat(p.Price)
		if p.OriginalPrice != nil {
			row.AddCell().SetFloat(*p.OriginalPrice)
		} else {
			row.AddCell().SetValue("")
		}
		row.AddCell().SetInt(p.Discount)
		row.AddCell().SetInt(p.StockQuantity)
		row.AddCell().SetFloat(p.Rating)
		row.AddCell().SetValue(p.Image)
		row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
