package parser

import (
	"regexp"
	"strings"

	"github.com/aluiziolira/go-price-bulletin/models"
)

var (
	priceTokenRe = regexp.MustCompile(`\$[\d.,]+`)
	quantityRe   = regexp.MustCompile(`^\d+$`)
)

const (
	minPriceDigits   = 4
	pricesPerRow     = 3
	minLeadingTokens = 4 // name, presentation, quantity, unit
)

// ParseRow decomposes one table line into a ProductPrice. It reports false
// for any line that does not have the shape of a price row.
//
// When more than three price tokens are present, the last three are used:
// prices form the trailing run and anything earlier belongs to the name.
func ParseRow(line string) (models.ProductPrice, bool) {
	line = NormalizeSpaces(line)
	if line == "" {
		return models.ProductPrice{}, false
	}

	prices := priceTokens(line)
	if len(prices) < pricesPerRow {
		return models.ProductPrice{}, false
	}
	prices = prices[len(prices)-pricesPerRow:]

	start := strings.Index(line, prices[0])
	last := strings.LastIndex(line, prices[2])
	if start < 0 || last < start {
		return models.ProductPrice{}, false
	}
	variation := line[last+len(prices[2]):]

	leading := strings.Fields(line[:start])
	if len(leading) < minLeadingTokens {
		return models.ProductPrice{}, false
	}
	n := len(leading)
	record := models.ProductPrice{
		Name:                 strings.Join(leading[:n-3], " "),
		Presentation:         leading[n-3],
		Quantity:             leading[n-2],
		Unit:                 leading[n-1],
		ExtraQualityPrice:    NormalizePrice(prices[0]),
		FirstQualityPrice:    NormalizePrice(prices[1]),
		UnitPrice:            NormalizePrice(prices[2]),
		PreviousDayVariation: NormalizeVariation(variation),
	}

	if record.Name == "" || record.Presentation == "" || record.Unit == "" {
		return models.ProductPrice{}, false
	}
	if !quantityRe.MatchString(record.Quantity) {
		return models.ProductPrice{}, false
	}
	return record, true
}

// priceTokens returns the currency tokens of line carrying at least
// minPriceDigits digits, in left-to-right order.
func priceTokens(line string) []string {
	matches := priceTokenRe.FindAllString(line, -1)
	out := matches[:0]
	for _, m := range matches {
		if digitCount(m) >= minPriceDigits {
			out = append(out, m)
		}
	}
	return out
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
