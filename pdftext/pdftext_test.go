package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// buildPDF assembles a single-page PDF with one Tj per line, each line
// 20 units below the previous one.
func buildPDF(lines ...string) []byte {
	var content strings.Builder
	content.WriteString("BT\n/F1 10 Tf\n")
	for i, line := range lines {
		fmt.Fprintf(&content, "1 0 0 1 40 %d Tm\n(%s) Tj\n", 700-20*i, line)
	}
	content.WriteString("ET\n")
	stream := content.String()

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(stream), stream),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestExtractRows(t *testing.T) {
	doc := buildPDF(
		"NOMBRE PRESENTACION CANTIDAD PRECIO",
		"TOMATE KILO 2 KILO $3,000 $3,100 $3,200",
	)

	text, err := New().Extract(doc)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(text, "TOMATE KILO 2 KILO $3,000 $3,100 $3,200\n") {
		t.Fatalf("row not extracted as one line: %q", text)
	}
	header := strings.Index(text, "NOMBRE")
	row := strings.Index(text, "TOMATE")
	if header < 0 || row < header {
		t.Fatalf("rows out of order: %q", text)
	}
}

func TestExtractRejectsNonPDF(t *testing.T) {
	if _, err := New().Extract([]byte("<html>not found</html>")); !errors.Is(err, ErrNotPDF) {
		t.Fatalf("expected ErrNotPDF, got %v", err)
	}
}

func TestExtractCorruptDocument(t *testing.T) {
	if _, err := New().Extract([]byte("%PDF-1.4\ngarbage without xref")); err == nil {
		t.Fatalf("expected error for corrupt document")
	}
}
