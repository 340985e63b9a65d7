package normalize

import (
	"errors"
	"math"
	"testing"

	"FinCast/internal/domain/models"
	"FinCast/pkg/date"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func response() models.PredictResponse {
	return models.PredictResponse{
		CurrentPrice: 100,
		CurrentDate:  "2024-05-03",
		Predictions: []models.PredictedPoint{
			{Date: "2024-05-06", PredictedPrice: 101.25, PredictedReturn: 1.25},
			{Date: "2024-05-07", PredictedPrice: 100.5, PredictedReturn: -0.74},
		},
	}
}

func TestNormalize(t *testing.T) {
	rec, err := Normalize("TCS", response())
	require.NoError(t, err)

	assert.Equal(t, "TCS", rec.Symbol)
	assert.Equal(t, date.MustParse("2024-05-03"), rec.AsOf.Date)
	assert.Equal(t, 100.0, rec.AsOf.Price)
	require.Len(t, rec.Points, 2)
	assert.Equal(t, date.MustParse("2024-05-06"), rec.Points[0].Date)
	assert.Equal(t, 101.25, rec.Points[0].PredictedPrice)
	assert.Equal(t, -0.74, rec.Points[1].PredictedReturn)
	assert.Equal(t, 2, rec.Horizon())
	assert.Equal(t, 100.5, rec.Last().PredictedPrice)
}

func TestNormalizeMalformed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.PredictResponse)
	}{
		{"empty predictions", func(r *models.PredictResponse) { r.Predictions = nil }},
		{"zero current price", func(r *models.PredictResponse) { r.CurrentPrice = 0 }},
		{"negative current price", func(r *models.PredictResponse) { r.CurrentPrice = -3 }},
		{"NaN current price", func(r *models.PredictResponse) { r.CurrentPrice = math.NaN() }},
		{"bad current date", func(r *models.PredictResponse) { r.CurrentDate = "03/05/2024" }},
		{"bad point date", func(r *models.PredictResponse) { r.Predictions[1].Date = "soon" }},
		{"point not after as-of", func(r *models.PredictResponse) { r.Predictions[0].Date = "2024-05-03" }},
		{"duplicate point date", func(r *models.PredictResponse) { r.Predictions[1].Date = "2024-05-06" }},
		{"decreasing point date", func(r *models.PredictResponse) { r.Predictions[1].Date = "2024-05-05" }},
		{"zero predicted price", func(r *models.PredictResponse) { r.Predictions[1].PredictedPrice = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := response()
			tt.mutate(&raw)

			rec, err := Normalize("INFY", raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrMalformedResponse))
			assert.Empty(t, rec.Points)
			assert.Empty(t, rec.Symbol)

			var me *models.MalformedResponseError
			require.True(t, errors.As(err, &me))
			assert.Equal(t, "INFY", me.Symbol)
		})
	}
}

func TestNormalizeDoesNotRecomputeReturns(t *testing.T) {
	raw := response()
	raw.Predictions[0].PredictedReturn = 42
	rec, err := Normalize("TCS", raw)
	require.NoError(t, err)
	assert.Equal(t, 42.0, rec.Points[0].PredictedReturn)
}
