package pipeline

import (
	"fmt"
	"os"
	"sync"

	"github.com/aluiziolira/go-price-bulletin/models"
	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Precios"

var xlsxHeaders = []string{
	"Fecha", "Nombre", "Presentación", "Cantidad", "Unidad",
	"Precio extra", "Precio primera", "Precio unidad", "Variación", "Fuente",
}

// XLSXWriter accumulates rows in a workbook and saves it on Close.
type XLSXWriter struct {
	filename string
	file     *excelize.File
	row      int
	mu       sync.Mutex
}

// NewXLSXWriter creates a workbook with a header row.
func NewXLSXWriter(filename string) (*XLSXWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if _, err := f.NewSheet(xlsxSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("remove default sheet: %w", err)
	}
	index, err := f.GetSheetIndex(xlsxSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("locate sheet: %w", err)
	}
	f.SetActiveSheet(index)

	for i, h := range xlsxHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(xlsxSheet, cell, h); err != nil {
			f.Close()
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	return &XLSXWriter{filename: filename, file: f, row: 2}, nil
}

// Write appends rows to the sheet.
func (xw *XLSXWriter) Write(rows []*models.PriceRow) error {
	xw.mu.Lock()
	defer xw.mu.Unlock()

	for _, r := range rows {
		values := []interface{}{
			r.Date, r.Name, r.Presentation, r.Quantity, r.Unit,
			r.ExtraQualityPrice, r.FirstQualityPrice, r.UnitPrice, r.PreviousDayVariation, r.Source,
		}
		cell, _ := excelize.CoordinatesToCellName(1, xw.row)
		if err := xw.file.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", xw.row, err)
		}
		xw.row++
	}
	return nil
}

// Close saves the workbook to disk.
func (xw *XLSXWriter) Close() error {
	xw.mu.Lock()
	defer xw.mu.Unlock()

	if err := xw.file.SaveAs(xw.filename); err != nil {
		xw.file.Close()
		return fmt.Errorf("save xlsx: %w", err)
	}
	return xw.file.Close()
}

// Validate ensures the saved workbook has data.
func (xw *XLSXWriter) Validate() error {
	info, err := os.Stat(xw.filename)
	if err != nil {
		return fmt.Errorf("stat xlsx file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("xlsx file is empty")
	}
	return nil
}
