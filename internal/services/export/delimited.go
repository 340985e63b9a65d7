package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"FinCast/internal/domain/models"
	"FinCast/internal/services/recommend"
)

// Separator is the fixed field separator of delimited exports.
const Separator = ','

var (
	comparisonHeader = []string{"Stock", "Current Price", "Predicted Price", "Change (%)", "Recommendation"}
	detailHeader     = []string{"Date", "Predicted Price", "Daily Return (%)"}
)

// DelimitedText renders records as a comma-separated report. Metrics are
// optional; any missing one is computed. Symbols must not contain the separator.
func DelimitedText(recs []models.ForecastRecord, metrics []models.ComparativeMetric, opts Options) ([]byte, error) {
	if len(recs) == 0 {
		return nil, models.ErrNothingToExport
	}
	if opts.Mode == "" {
		opts.Mode = DefaultMode(len(recs))
	}

	var rows [][]string
	switch opts.Mode {
	case ModeDetail:
		if len(recs) != 1 {
			return nil, fmt.Errorf("detail export needs exactly one record, got %d", len(recs))
		}
		rows = detailRows(recs[0], opts)
	case ModeComparison:
		ms, err := metricsFor(recs, metrics)
		if err != nil {
			return nil, fmt.Errorf("comparison metrics: %w", err)
		}
		rows = comparisonRows(ms, opts.horizon(recs), opts)
	default:
		return nil, fmt.Errorf("unknown export mode %q", opts.Mode)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = Separator
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func comparisonRows(ms []models.ComparativeMetric, horizon int, opts Options) [][]string {
	rows := [][]string{
		{"Stock Comparison Report"},
		{"Generated On", opts.GeneratedAt.Format(TimestampLayout)},
		{"Prediction Days", strconv.Itoa(horizon)},
		{""},
		comparisonHeader,
	}
	for _, m := range ms {
		rows = append(rows, []string{
			m.Symbol,
			recommend.Format2(m.CurrentPrice),
			recommend.Format2(m.FinalPredictedPrice),
			recommend.Format2(m.PercentChange),
			string(m.Tier),
		})
	}
	return rows
}

func detailRows(r models.ForecastRecord, opts Options) [][]string {
	rows := [][]string{
		{"Stock Prediction Report"},
		{"Generated On", opts.GeneratedAt.Format(TimestampLayout)},
		{"Stock Symbol", r.Symbol},
		{"Current Price", recommend.Format2(r.AsOf.Price)},
		{"Current Date", r.AsOf.Date.String()},
		{"Prediction Days", strconv.Itoa(opts.horizon([]models.ForecastRecord{r}))},
		{""},
		detailHeader,
	}
	for _, p := range r.Points {
		rows = append(rows, []string{
			p.Date.String(),
			recommend.Format2(p.PredictedPrice),
			recommend.Format2(p.PredictedReturn),
		})
	}
	return rows
}
