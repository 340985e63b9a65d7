package normalize

import (
	"fmt"

	"FinCast/internal/domain/models"
	"FinCast/pkg/date"
)

// Normalize converts one raw prediction-service response into a ForecastRecord.
// Any invariant violation yields a *models.MalformedResponseError and no record.
func Normalize(symbol string, raw models.PredictResponse) (models.ForecastRecord, error) {
	bad := func(format string, args ...any) (models.ForecastRecord, error) {
		return models.ForecastRecord{}, &models.MalformedResponseError{
			Symbol: symbol,
			Reason: fmt.Sprintf(format, args...),
		}
	}

	if len(raw.Predictions) == 0 {
		return bad("predictions list is empty")
	}
	if !(raw.CurrentPrice > 0) {
		return bad("current_price %v is not positive", raw.CurrentPrice)
	}
	asOf, err := date.Parse(raw.CurrentDate)
	if err != nil {
		return bad("current_date: %v", err)
	}

	points := make([]models.ForecastPoint, 0, len(raw.Predictions))
	prev := asOf
	for i, p := range raw.Predictions {
		d, err := date.Parse(p.Date)
		if err != nil {
			return bad("predictions[%d].date: %v", i, err)
		}
		if !d.After(prev) {
			return bad("predictions[%d].date %s is not after %s", i, d, prev)
		}
		if !(p.PredictedPrice > 0) {
			return bad("predictions[%d].predicted_price %v is not positive", i, p.PredictedPrice)
		}
		points = append(points, models.ForecastPoint{
			Date:            d,
			PredictedPrice:  p.PredictedPrice,
			PredictedReturn: p.PredictedReturn,
		})
		prev = d
	}

	return models.ForecastRecord{
		Symbol: symbol,
		AsOf:   models.AsOf{Date: asOf, Price: raw.CurrentPrice},
		Points: points,
	}, nil
}
