// Package parser extracts the price table from bulletin text.
package parser

import (
	"fmt"
	"strings"

	"github.com/aluiziolira/go-price-bulletin/models"
)

// ValidateRow ensures an export row carries the fields the row parser guarantees.
func ValidateRow(r *models.PriceRow) error {
	if r == nil {
		return fmt.Errorf("row is nil")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("row missing name")
	}
	if !isDigits(r.Quantity) {
		return fmt.Errorf("row has invalid quantity %q for %s", r.Quantity, r.Name)
	}
	for _, price := range []string{r.ExtraQualityPrice, r.FirstQualityPrice, r.UnitPrice} {
		if !strings.HasPrefix(price, "$") {
			return fmt.Errorf("row has invalid price %q for %s", price, r.Name)
		}
	}
	return nil
}

// NormalizeSpaces trims s and collapses internal whitespace runs to one space.
func NormalizeSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizePrice strips the currency symbol and puts a single "$" back,
// keeping the grouping separators as written.
func NormalizePrice(token string) string {
	return "$" + strings.TrimPrefix(strings.TrimSpace(token), "$")
}

// NormalizeVariation trims the variation text, defaulting to "N/A".
func NormalizeVariation(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.VariationNotAvailable
	}
	return text
}

// SplitLines splits text on newlines, trims every line and drops empty ones.
func SplitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
