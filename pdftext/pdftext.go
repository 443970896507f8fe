// Package pdftext turns bulletin PDF documents into newline-separated text.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNotPDF is returned when the input lacks the %PDF signature.
var ErrNotPDF = errors.New("pdftext: input is not a PDF document")

// wordGap is the horizontal distance, in text space units, above which two
// fragments on the same row are treated as separate words.
const wordGap = 1.0

// Extractor converts PDF bytes to text, one output line per visual row.
type Extractor struct{}

// New returns an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the text of every page, rows top to bottom, pages
// separated by a blank line. Malformed documents yield an error rather
// than a panic.
func (e *Extractor) Extract(data []byte) (text string, err error) {
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF")) {
		return "", ErrNotPDF
	}

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdftext: decode document: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdftext: open document: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("pdftext: page %d: %w", i, err)
		}
		for _, row := range rows {
			line := joinFragments(row.Content)
			if line == "" {
				continue
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func joinFragments(fragments pdf.TextHorizontal) string {
	var b strings.Builder
	for i, f := range fragments {
		if i > 0 {
			prev := fragments[i-1]
			if prev.W <= 0 || f.X-(prev.X+prev.W) > wordGap {
				b.WriteByte(' ')
			}
		}
		b.WriteString(f.S)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
