package models

// Requests for the host HTTP endpoints.

type PredictRequest struct {
	Symbol    string `json:"symbol" validate:"required"`
	DaysAhead int    `json:"days_ahead" default:"5" validate:"gte=1,lte=365"`
}

type CompareRequest struct {
	Symbols   []string `json:"symbols" validate:"required,min=1,max=20,dive,required"`
	DaysAhead int      `json:"days_ahead" default:"30" validate:"gte=1,lte=365"`
}

type WatchRequest struct {
	Symbol string `json:"symbol" param:"symbol" validate:"required"`
}

type HistoryRequest struct {
	Symbol string `json:"symbol" param:"symbol" validate:"required"`
	Limit  int    `json:"limit" query:"limit" default:"90" validate:"gte=1,lte=1000"`
}

type ExportRequest struct {
	Symbols   []string `json:"symbols" validate:"required,min=1,max=20,dive,required"`
	DaysAhead int      `json:"days_ahead" default:"30" validate:"gte=1,lte=365"`
	Format    string   `json:"format" default:"csv" validate:"oneof=csv xlsx"`
	// Mode overrides the layout; empty picks single for one symbol.
	Mode string `json:"mode" validate:"omitempty,oneof=single comparison"`
}
