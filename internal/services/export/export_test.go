package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"FinCast/internal/domain/models"
	domsvc "FinCast/internal/domain/service"
	"FinCast/pkg/date"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var generatedAt = time.Date(2024, 6, 7, 9, 30, 0, 0, time.UTC)

func sample(symbol string, current float64, prices ...float64) models.ForecastRecord {
	r := models.ForecastRecord{
		Symbol: symbol,
		AsOf:   models.AsOf{Date: date.MustParse("2024-06-07"), Price: current},
	}
	d := r.AsOf.Date
	prev := current
	for _, p := range prices {
		d = d.AddDays(1)
		r.Points = append(r.Points, models.ForecastPoint{
			Date:            d,
			PredictedPrice:  p,
			PredictedReturn: (p - prev) / prev * 100,
		})
		prev = p
	}
	return r
}

func readCSV(t *testing.T, b []byte) [][]string {
	t.Helper()
	r := csv.NewReader(bytes.NewReader(b))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(t, err)
	return rows
}

func TestDelimitedComparison(t *testing.T) {
	recs := []models.ForecastRecord{
		sample("RELIANCE", 100, 103, 106),
		sample("TCS", 100, 99, 97.5),
	}
	b, err := DelimitedText(recs, nil, Options{Mode: ModeComparison, GeneratedAt: generatedAt, Horizon: 2})
	require.NoError(t, err)

	want := strings.Join([]string{
		"Stock Comparison Report",
		"Generated On,2024-06-07 09:30:00",
		"Prediction Days,2",
		"",
		"Stock,Current Price,Predicted Price,Change (%),Recommendation",
		"RELIANCE,100.00,106.00,6.00,Strong Buy",
		"TCS,100.00,97.50,-2.50,Sell",
		"",
	}, "\n")
	assert.Equal(t, want, string(b))
}

func TestDelimitedUsesSuppliedMetrics(t *testing.T) {
	recs := []models.ForecastRecord{sample("X", 10, 11)}
	ms := []models.ComparativeMetric{{Symbol: "X", CurrentPrice: 10, FinalPredictedPrice: 11, PercentChange: 10, Tier: models.TierHold}}
	b, err := DelimitedText(recs, ms, Options{Mode: ModeComparison, GeneratedAt: generatedAt})
	require.NoError(t, err)
	assert.Contains(t, string(b), "X,10.00,11.00,10.00,Hold")
	assert.Contains(t, string(b), "Prediction Days,1")
}

func TestDelimitedDetailRoundTrip(t *testing.T) {
	rec := sample("INFY", 1432.567, 1440.111, 1451.005, 1449.994)
	b, err := DelimitedText([]models.ForecastRecord{rec}, nil, Options{GeneratedAt: generatedAt, Horizon: 3})
	require.NoError(t, err)

	rows := readCSV(t, b)
	require.Len(t, rows, 7+len(rec.Points)) // blank line is skipped by the reader
	assert.Equal(t, []string{"Stock Prediction Report"}, rows[0])
	assert.Equal(t, []string{"Stock Symbol", "INFY"}, rows[2])
	assert.Equal(t, []string{"Current Price", "1432.57"}, rows[3])
	assert.Equal(t, []string{"Current Date", "2024-06-07"}, rows[4])
	assert.Equal(t, []string{"Prediction Days", "3"}, rows[5])
	assert.Equal(t, []string{"Date", "Predicted Price", "Daily Return (%)"}, rows[6])

	for i, p := range rec.Points {
		row := rows[7+i]
		assert.Equal(t, p.Date.String(), row[0])
		price, err := strconv.ParseFloat(row[1], 64)
		require.NoError(t, err)
		assert.InDelta(t, p.PredictedPrice, price, 0.005)
		ret, err := strconv.ParseFloat(row[2], 64)
		require.NoError(t, err)
		assert.InDelta(t, p.PredictedReturn, ret, 0.005)
	}
}

func TestDelimitedComparisonRoundTrip(t *testing.T) {
	recs := []models.ForecastRecord{
		sample("A", 12.345, 12.9),
		sample("B", 999.991, 1010.4, 1003.2),
		sample("C", 0.5, 0.45),
	}
	b, err := DelimitedText(recs, nil, Options{Mode: ModeComparison, GeneratedAt: generatedAt})
	require.NoError(t, err)

	rows := readCSV(t, b)[4:]
	require.Len(t, rows, len(recs))
	for i, r := range recs {
		assert.Equal(t, r.Symbol, rows[i][0])
		cur, err := strconv.ParseFloat(rows[i][1], 64)
		require.NoError(t, err)
		assert.InDelta(t, r.AsOf.Price, cur, 0.005)
		fin, err := strconv.ParseFloat(rows[i][2], 64)
		require.NoError(t, err)
		assert.InDelta(t, r.Last().PredictedPrice, fin, 0.005)
	}
}

func TestDelimitedDeterministic(t *testing.T) {
	recs := []models.ForecastRecord{sample("A", 10, 11), sample("B", 20, 19)}
	opts := Options{Mode: ModeComparison, GeneratedAt: generatedAt}
	a, err := DelimitedText(recs, nil, opts)
	require.NoError(t, err)
	b, err := DelimitedText(recs, nil, opts)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDelimitedPreconditions(t *testing.T) {
	_, err := DelimitedText(nil, nil, Options{})
	assert.ErrorIs(t, err, models.ErrNothingToExport)

	_, err = DelimitedText([]models.ForecastRecord{sample("A", 1, 2), sample("B", 1, 2)}, nil, Options{Mode: ModeDetail})
	assert.Error(t, err)

	bad := sample("Z", 1, 2)
	bad.AsOf.Price = 0
	_, err = DelimitedText([]models.ForecastRecord{bad}, nil, Options{Mode: ModeComparison})
	assert.True(t, errors.Is(err, models.ErrDivisionByZero))
}

type captureWriter struct{ sheets []domsvc.Sheet }

func (c *captureWriter) WriteWorkbook(sheets []domsvc.Sheet) ([]byte, error) {
	c.sheets = sheets
	return []byte("xlsx"), nil
}

func TestWorkbookSheets(t *testing.T) {
	recs := []models.ForecastRecord{
		sample("TCS", 100, 99, 97.5),
		sample("RELIANCE", 100, 103, 106.004),
	}
	w := &captureWriter{}
	b, err := Workbook(w, recs, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("xlsx"), b)
	require.Len(t, w.sheets, 3)

	summary := w.sheets[0]
	assert.Equal(t, "Summary", summary.Name)
	assert.Equal(t, []any{"Symbol", "Current Price", "Predicted Price", "Change(%)", "Recommendation"}, summary.Rows[0])
	assert.Equal(t, []any{"TCS", 100.0, 97.5, -2.5, "Sell"}, summary.Rows[1])
	assert.Equal(t, []any{"RELIANCE", 100.0, 106.004, 6.0, "Strong Buy"}, summary.Rows[2])

	detail := w.sheets[1]
	assert.Equal(t, "TCS", detail.Name)
	assert.Equal(t, []any{"Date", "Predicted Price", "Daily Return(%)"}, detail.Rows[0])
	require.Len(t, detail.Rows, 3)
	assert.Equal(t, "2024-06-08", detail.Rows[1][0])
	assert.Equal(t, 99.0, detail.Rows[1][1])
	assert.IsType(t, float64(0), detail.Rows[1][2])
	assert.Equal(t, "2024-06-09", detail.Rows[2][0])
	assert.Equal(t, "RELIANCE", w.sheets[2].Name)
}

func TestWorkbookTruncatesSheetNames(t *testing.T) {
	long := strings.Repeat("S", 40)
	w := &captureWriter{}
	_, err := Workbook(w, []models.ForecastRecord{sample(long, 1, 2)}, nil)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("S", MaxSheetNameLen), w.sheets[1].Name)
}

func TestWorkbookEmpty(t *testing.T) {
	_, err := Workbook(&captureWriter{}, nil, nil)
	assert.ErrorIs(t, err, models.ErrNothingToExport)
}

func TestFileName(t *testing.T) {
	day := date.MustParse("2024-06-07")
	one := []models.ForecastRecord{sample("TCS", 1, 2)}
	two := append(one, sample("INFY", 1, 2))

	assert.Equal(t, "TCS_prediction_2024-06-07.csv", FileName(Context(one, ModeDetail), FormatCSV, day))
	assert.Equal(t, "stock_comparison_2024-06-07.xlsx", FileName(Context(two, ModeComparison), FormatXLSX, day))
	assert.Equal(t, "stock_comparison_2024-06-07.csv", FileName(Context(one, ModeComparison), FormatCSV, day))
}
