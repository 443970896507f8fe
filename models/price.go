// Package models defines data structures shared by the parser, fetcher and API.
package models

import "time"

// VariationNotAvailable is used when a row carries no previous-day variation.
const VariationNotAvailable = "N/A"

// ProductPrice is one parsed row of the bulletin price table.
type ProductPrice struct {
	Name                 string `json:"name"`
	Presentation         string `json:"presentation"`
	Quantity             string `json:"quantity"`
	Unit                 string `json:"unit"`
	ExtraQualityPrice    string `json:"extraQualityPrice"`
	FirstQualityPrice    string `json:"firstQualityPrice"`
	UnitPrice            string `json:"unitPrice"`
	PreviousDayVariation string `json:"previousDayVariation"`
}

// PriceRow is a ProductPrice tagged with its bulletin date, used for exports.
type PriceRow struct {
	Date                 string    `csv:"fecha" json:"fecha"`
	Name                 string    `csv:"nombre" json:"name"`
	Presentation         string    `csv:"presentacion" json:"presentation"`
	Quantity             string    `csv:"cantidad" json:"quantity"`
	Unit                 string    `csv:"unidad" json:"unit"`
	ExtraQualityPrice    string    `csv:"precio_extra" json:"extraQualityPrice"`
	FirstQualityPrice    string    `csv:"precio_primera" json:"firstQualityPrice"`
	UnitPrice            string    `csv:"precio_unidad" json:"unitPrice"`
	PreviousDayVariation string    `csv:"variacion" json:"previousDayVariation"`
	Source               string    `csv:"fuente" json:"fuente"`
	ScrapedAt            time.Time `csv:"scraped_at" json:"scraped_at"`
}

// NewPriceRow tags p with the bulletin date and source.
func NewPriceRow(date, source string, p ProductPrice, scrapedAt time.Time) *PriceRow {
	return &PriceRow{
		Date:                 date,
		Name:                 p.Name,
		Presentation:         p.Presentation,
		Quantity:             p.Quantity,
		Unit:                 p.Unit,
		ExtraQualityPrice:    p.ExtraQualityPrice,
		FirstQualityPrice:    p.FirstQualityPrice,
		UnitPrice:            p.UnitPrice,
		PreviousDayVariation: p.PreviousDayVariation,
		Source:               source,
		ScrapedAt:            scrapedAt,
	}
}

// DayBulletin is the single-day result.
type DayBulletin struct {
	Date          string         `json:"fecha"`
	TotalProducts int            `json:"totalProductos"`
	Products      []ProductPrice `json:"productos"`
	Source        string         `json:"fuente"`
}

// DayStatus is the outcome of one day in range mode.
type DayStatus string

const (
	StatusSuccess  DayStatus = "success"
	StatusError    DayStatus = "error"
	StatusNotFound DayStatus = "not_found"
)

// DaySummary describes one calendar day scanned in range mode.
type DaySummary struct {
	Date              string    `json:"date"`
	TotalProductCount int       `json:"totalProductCount"`
	Status            DayStatus `json:"status"`
	SourceURL         string    `json:"sourceUrl"`
	Error             string    `json:"error,omitempty"`
}

// RangeResult aggregates the per-day summaries of a date range.
type RangeResult struct {
	From           string       `json:"from"`
	To             string       `json:"to"`
	TotalDays      int          `json:"totalDays"`
	ProcessedDays  int          `json:"processedDays"`
	SuccessfulDays int          `json:"successfulDays"`
	FailedDays     int          `json:"failedDays"`
	TotalProducts  int          `json:"totalProductos"`
	Summary        []DaySummary `json:"summary"`
}
