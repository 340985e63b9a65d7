package export

import (
	"fmt"
	"time"

	"FinCast/internal/domain/models"
	"FinCast/internal/services/recommend"
	"FinCast/pkg/date"
)

// Mode selects the layout of a delimited-text report.
type Mode string

const (
	// ModeDetail writes one row per forecast point of a single record.
	ModeDetail Mode = "single"
	// ModeComparison writes one row per record.
	ModeComparison Mode = "comparison"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// TimestampLayout renders the generation timestamp in report headers.
const TimestampLayout = "2006-01-02 15:04:05"

// ComparisonContext names multi-stock export files.
const ComparisonContext = "stock_comparison"

// Options carries the non-deterministic and presentation inputs of an export.
type Options struct {
	Mode        Mode
	GeneratedAt time.Time
	// Horizon is the requested number of days; zero means the first record's horizon.
	Horizon int
}

func (o Options) horizon(recs []models.ForecastRecord) int {
	if o.Horizon > 0 || len(recs) == 0 {
		return o.Horizon
	}
	return recs[0].Horizon()
}

// DefaultMode is ModeDetail for a single record, ModeComparison otherwise.
func DefaultMode(n int) Mode {
	if n == 1 {
		return ModeDetail
	}
	return ModeComparison
}

// Context returns the file-name context for an export of recs in mode.
func Context(recs []models.ForecastRecord, mode Mode) string {
	if mode == ModeDetail && len(recs) == 1 {
		return recs[0].Symbol + "_prediction"
	}
	return ComparisonContext
}

// FileName builds "<context>_<YYYY-MM-DD>.<ext>".
func FileName(context string, f Format, day date.Date) string {
	return fmt.Sprintf("%s_%s.%s", context, day, f)
}

// metricsFor returns metrics aligned with recs, computing any that are missing.
func metricsFor(recs []models.ForecastRecord, given []models.ComparativeMetric) ([]models.ComparativeMetric, error) {
	bySymbol := make(map[string]models.ComparativeMetric, len(given))
	for _, m := range given {
		bySymbol[m.Symbol] = m
	}
	out := make([]models.ComparativeMetric, 0, len(recs))
	for _, r := range recs {
		if m, ok := bySymbol[r.Symbol]; ok {
			out = append(out, m)
			continue
		}
		m, err := recommend.ComputeMetric(r)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
