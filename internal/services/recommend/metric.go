package recommend

import (
	"fmt"

	"FinCast/internal/domain/models"

	"github.com/shopspring/decimal"
)

// Tier thresholds on percent change, strictly greater-than, checked in order.
var thresholds = []struct {
	above float64
	tier  models.Tier
}{
	{5, models.TierStrongBuy},
	{2, models.TierBuy},
	{-2, models.TierHold},
	{-5, models.TierSell},
}

// TierFor maps a full-precision percent change to its recommendation tier.
func TierFor(percentChange float64) models.Tier {
	for _, t := range thresholds {
		if percentChange > t.above {
			return t.tier
		}
	}
	return models.TierStrongSell
}

// ComputeMetric derives percent change over the horizon and its tier.
func ComputeMetric(rec models.ForecastRecord) (models.ComparativeMetric, error) {
	if rec.AsOf.Price == 0 {
		return models.ComparativeMetric{}, fmt.Errorf("%s: current price is zero: %w", rec.Symbol, models.ErrDivisionByZero)
	}
	if len(rec.Points) == 0 {
		return models.ComparativeMetric{}, fmt.Errorf("%s: no predicted points: %w", rec.Symbol, models.ErrMalformedResponse)
	}

	final := rec.Last().PredictedPrice
	change := (final - rec.AsOf.Price) / rec.AsOf.Price * 100
	return models.ComparativeMetric{
		Symbol:              rec.Symbol,
		CurrentPrice:        rec.AsOf.Price,
		FinalPredictedPrice: final,
		PercentChange:       change,
		Tier:                TierFor(change),
	}, nil
}

// ComputeMetrics computes one metric per record, in order. The first failure
// aborts the batch.
func ComputeMetrics(recs []models.ForecastRecord) ([]models.ComparativeMetric, error) {
	out := make([]models.ComparativeMetric, 0, len(recs))
	for _, r := range recs {
		m, err := ComputeMetric(r)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Round2 rounds v to 2 decimal places, half away from zero.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Format2 renders v with exactly 2 decimals.
func Format2(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
