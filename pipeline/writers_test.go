package pipeline

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aluiziolira/go-price-bulletin/models"
	"github.com/xuri/excelize/v2"
)

func sampleRow() *models.PriceRow {
	return models.NewPriceRow("2025-11-20", "http://example.test/b.pdf", models.ProductPrice{
		Name:                 "VALENTON",
		Presentation:         "KILO",
		Quantity:             "1",
		Unit:                 "KILO",
		ExtraQualityPrice:    "$35,000",
		FirstQualityPrice:    "$35,000",
		UnitPrice:            "$35,000",
		PreviousDayVariation: "Estable",
	}, time.Date(2025, 11, 20, 6, 0, 0, 0, time.UTC))
}

func TestCSVWriterWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "precios.csv")

	writer, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("create csv writer: %v", err)
	}

	if err := writer.Write([]*models.PriceRow{sampleRow()}); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := writer.Write([]*models.PriceRow{sampleRow()}); err != nil {
		t.Fatalf("second write csv: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close csv: %v", err)
	}
	if err := writer.Validate(); err != nil {
		t.Fatalf("validate csv: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records=%d, want 3 (header written once)", len(records))
	}
	if records[0][0] != "fecha" || records[0][1] != "nombre" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	if records[1][1] != "VALENTON" || records[1][5] != "$35,000" {
		t.Fatalf("unexpected record: %v", records[1])
	}
}

func TestJSONWriterWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "precios.jsonl")

	writer, err := NewJSONWriter(path)
	if err != nil {
		t.Fatalf("create json writer: %v", err)
	}

	if err := writer.Write([]*models.PriceRow{sampleRow()}); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close json: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open json: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	count := 0
	for scanner.Scan() {
		var decoded models.PriceRow
		if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid json line: %v", err)
		}
		if decoded.Name != "VALENTON" || decoded.Date != "2025-11-20" {
			t.Fatalf("unexpected decoded row %+v", decoded)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan json: %v", err)
	}
	if count != 1 {
		t.Fatalf("json lines=%d, want 1", count)
	}
}

func TestDualWriterWrite(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "precios.csv")

	writer, err := NewWriter("dual", csvPath)
	if err != nil {
		t.Fatalf("create dual writer: %v", err)
	}

	if err := writer.Write([]*models.PriceRow{sampleRow()}); err != nil {
		t.Fatalf("write dual: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close dual: %v", err)
	}

	if info, err := os.Stat(csvPath); err != nil || info.Size() == 0 {
		t.Fatalf("csv file missing or empty")
	}
	if info, err := os.Stat(filepath.Join(dir, "precios.json")); err != nil || info.Size() == 0 {
		t.Fatalf("json file missing or empty")
	}
}

func TestXLSXWriterWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "precios.xlsx")

	writer, err := NewWriter("xlsx", path)
	if err != nil {
		t.Fatalf("create xlsx writer: %v", err)
	}
	if err := writer.Write([]*models.PriceRow{sampleRow(), sampleRow()}); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close xlsx: %v", err)
	}
	if err := writer.Validate(); err != nil {
		t.Fatalf("validate xlsx: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows=%d, want 3", len(rows))
	}
	if rows[0][0] != "Fecha" || rows[1][1] != "VALENTON" || rows[2][7] != "$35,000" {
		t.Fatalf("unexpected sheet contents: %v", rows)
	}
}

func TestNewWriterUnknownFormat(t *testing.T) {
	if _, err := NewWriter("xml", filepath.Join(t.TempDir(), "x.xml")); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}
