package export

import (
	"fmt"

	"FinCast/internal/domain/models"
	domsvc "FinCast/internal/domain/service"
	"FinCast/internal/services/recommend"
)

// MaxSheetNameLen is the spreadsheet limit on worksheet names, in runes.
const MaxSheetNameLen = 31

// SummarySheet is the name of the first worksheet.
const SummarySheet = "Summary"

var (
	summaryHeader = []any{"Symbol", "Current Price", "Predicted Price", "Change(%)", "Recommendation"}
	pointsHeader  = []any{"Date", "Predicted Price", "Daily Return(%)"}
)

// Workbook renders a summary sheet plus one detail sheet per record and
// serialises them through w. Summary rows follow recs order; detail rows
// follow point order.
func Workbook(w domsvc.WorkbookWriter, recs []models.ForecastRecord, metrics []models.ComparativeMetric) ([]byte, error) {
	sheets, err := WorkbookSheets(recs, metrics)
	if err != nil {
		return nil, err
	}
	b, err := w.WriteWorkbook(sheets)
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return b, nil
}

// WorkbookSheets builds the sheet contents without serialising them.
func WorkbookSheets(recs []models.ForecastRecord, metrics []models.ComparativeMetric) ([]domsvc.Sheet, error) {
	if len(recs) == 0 {
		return nil, models.ErrNothingToExport
	}
	ms, err := metricsFor(recs, metrics)
	if err != nil {
		return nil, fmt.Errorf("workbook metrics: %w", err)
	}

	summary := domsvc.Sheet{Name: SummarySheet, Rows: [][]any{summaryHeader}}
	for _, m := range ms {
		summary.Rows = append(summary.Rows, []any{
			m.Symbol,
			m.CurrentPrice,
			m.FinalPredictedPrice,
			recommend.Round2(m.PercentChange),
			string(m.Tier),
		})
	}

	sheets := make([]domsvc.Sheet, 0, len(recs)+1)
	sheets = append(sheets, summary)
	for _, r := range recs {
		s := domsvc.Sheet{
			Name: TruncateSheetName(r.Symbol),
			Rows: make([][]any, 0, len(r.Points)+1),
		}
		s.Rows = append(s.Rows, pointsHeader)
		for _, p := range r.Points {
			s.Rows = append(s.Rows, []any{p.Date.String(), p.PredictedPrice, p.PredictedReturn})
		}
		sheets = append(sheets, s)
	}
	return sheets, nil
}

// TruncateSheetName cuts name to MaxSheetNameLen runes.
func TruncateSheetName(name string) string {
	r := []rune(name)
	if len(r) <= MaxSheetNameLen {
		return name
	}
	return string(r[:MaxSheetNameLen])
}
