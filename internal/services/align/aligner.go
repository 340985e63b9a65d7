package align

import (
	"slices"

	"FinCast/internal/domain/models"
	"FinCast/pkg/date"
)

// Align merges records into one table keyed by date with one column per symbol.
// Records are assumed normalized. A symbol is set on a row only when the record
// has a price for that exact date; the as-of price takes precedence.
func Align(records []models.ForecastRecord) models.AlignedSeriesTable {
	table := models.AlignedSeriesTable{
		Symbols: make([]string, 0, len(records)),
		Dates:   []date.Date{},
		Rows:    []models.SeriesRow{},
	}
	if len(records) == 0 {
		return table
	}

	// one lookup per record, built once
	lookups := make([]map[date.Date]float64, len(records))
	seen := make(map[date.Date]struct{})
	for i, rec := range records {
		table.Symbols = append(table.Symbols, rec.Symbol)

		m := make(map[date.Date]float64, len(rec.Points)+1)
		for _, p := range rec.Points {
			m[p.Date] = p.PredictedPrice
			seen[p.Date] = struct{}{}
		}
		m[rec.AsOf.Date] = rec.AsOf.Price
		seen[rec.AsOf.Date] = struct{}{}
		lookups[i] = m
	}

	dates := make([]date.Date, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, date.Date.Compare)
	table.Dates = dates

	table.Rows = make([]models.SeriesRow, 0, len(dates))
	for _, d := range dates {
		row := models.SeriesRow{Date: d, Values: make(map[string]float64, len(records))}
		for i, rec := range records {
			if price, ok := lookups[i][d]; ok {
				row.Values[rec.Symbol] = price
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}
