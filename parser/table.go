package parser

import (
	"regexp"

	"github.com/aluiziolira/go-price-bulletin/models"
)

// endOfSectionRe matches lines that close the price table.
var endOfSectionRe = regexp.MustCompile(`(?i)^(página|pagina|total|resumen|nota|fuente)`)

type scanState int

const (
	stateSearchingHeader scanState = iota
	stateInTable
	stateClosed
)

// TableScanner walks bulletin lines in order and collects price rows.
// Decisions are forward-only: once the table is closed no further rows
// are emitted.
type TableScanner struct {
	state   scanState
	header  HeaderLocator
	records []models.ProductPrice
}

// NewTableScanner returns a scanner waiting for the table header.
func NewTableScanner() *TableScanner {
	return &TableScanner{state: stateSearchingHeader}
}

// Scan processes one trimmed line.
func (s *TableScanner) Scan(line string) {
	switch s.state {
	case stateSearchingHeader:
		if s.header.Feed(line) {
			s.state = stateInTable
		}
	case stateInTable:
		if len(s.records) > 0 && hasHeaderKeyword(line) {
			return
		}
		if record, ok := ParseRow(line); ok {
			s.records = append(s.records, record)
			return
		}
		if line == "" || endOfSectionRe.MatchString(line) {
			s.state = stateClosed
		}
	case stateClosed:
	}
}

// Records returns the rows collected so far in source order.
func (s *TableScanner) Records() []models.ProductPrice {
	out := make([]models.ProductPrice, len(s.records))
	copy(out, s.records)
	return out
}

// HeaderFound reports whether the table header has been seen.
func (s *TableScanner) HeaderFound() bool {
	return s.header.Found()
}

// ParseTable extracts every price row from the full text of a bulletin.
func ParseTable(text string) []models.ProductPrice {
	s := NewTableScanner()
	for _, line := range SplitLines(text) {
		s.Scan(line)
	}
	return s.Records()
}
