package models

import (
	"FinCast/pkg/date"
)

// PredictResponse is the wire shape returned by the prediction service.
type PredictResponse struct {
	Symbol       string           `json:"symbol,omitempty"`
	CurrentPrice float64          `json:"current_price"`
	CurrentDate  string           `json:"current_date"`
	Predictions  []PredictedPoint `json:"predictions"`
}

// PredictedPoint is one future day as sent by the prediction service.
type PredictedPoint struct {
	Date            string  `json:"date"`
	PredictedPrice  float64 `json:"predicted_price"`
	PredictedReturn float64 `json:"predicted_return"`
}

// StockInfo is one entry of the tradable symbol list.
type StockInfo struct {
	Symbol  string `json:"symbol"`
	YSymbol string `json:"ysymbol,omitempty"`
}

// AsOf is the last historically observed price.
type AsOf struct {
	Date  date.Date `json:"date"`
	Price float64   `json:"price"`
}

// ForecastPoint is one predicted day of a ForecastRecord.
type ForecastPoint struct {
	Date            date.Date `json:"date"`
	PredictedPrice  float64   `json:"predicted_price"`
	PredictedReturn float64   `json:"predicted_return"` // percent, as supplied upstream
}

// ForecastRecord is a validated forecast for one symbol.
// Points are non-empty and strictly increasing in date, all after AsOf.Date.
type ForecastRecord struct {
	Symbol string          `json:"symbol"`
	AsOf   AsOf            `json:"as_of"`
	Points []ForecastPoint `json:"points"`
}

// Horizon returns the number of predicted days.
func (r ForecastRecord) Horizon() int { return len(r.Points) }

// Last returns the final predicted point.
func (r ForecastRecord) Last() ForecastPoint { return r.Points[len(r.Points)-1] }

// Tier is a discrete recommendation label derived from percent change.
type Tier string

const (
	TierStrongBuy  Tier = "Strong Buy"
	TierBuy        Tier = "Buy"
	TierHold       Tier = "Hold"
	TierSell       Tier = "Sell"
	TierStrongSell Tier = "Strong Sell"
)

// ComparativeMetric summarises one record over its whole horizon.
type ComparativeMetric struct {
	Symbol              string  `json:"symbol"`
	CurrentPrice        float64 `json:"current_price"`
	FinalPredictedPrice float64 `json:"final_predicted_price"`
	PercentChange       float64 `json:"percent_change"` // full precision
	Tier                Tier    `json:"tier"`
}

// SeriesRow is one date of an AlignedSeriesTable. Values only holds symbols
// priced on that exact date.
type SeriesRow struct {
	Date   date.Date
	Values map[string]float64
}

// AlignedSeriesTable is the date-unioned, symbol-columned view of a batch.
type AlignedSeriesTable struct {
	Symbols []string    `json:"symbols"`
	Dates   []date.Date `json:"dates"`
	Rows    []SeriesRow `json:"rows"`
}

// WatchEntry is one persisted watch-list item.
type WatchEntry struct {
	Symbol string `json:"symbol"`
}

// HistoricalPrice is one daily bar from the prediction service's price store.
type HistoricalPrice struct {
	TradeDate string  `json:"trade_date"`
	Open      float64 `json:"open_price"`
	High      float64 `json:"high_price"`
	Low       float64 `json:"low_price"`
	Close     float64 `json:"close_price"`
	Volume    int64   `json:"volume"`
}

// HealthStatus is the prediction service's model health report.
type HealthStatus struct {
	Status      string `json:"status"`
	Device      string `json:"device,omitempty"`
	ModelLoaded bool   `json:"model_loaded"`
	Error       string `json:"error,omitempty"`
}

// Healthy reports whether the model is loaded and serving.
func (h HealthStatus) Healthy() bool { return h.Status == "healthy" }
