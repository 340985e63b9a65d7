package usecase

import (
	"context"
	"fmt"
	"time"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
	domsvc "FinCast/internal/domain/service"
	"FinCast/internal/services/export"
	"FinCast/pkg/date"
	applogger "FinCast/pkg/logger"
)

// ExportFile is a rendered export ready to be sent or written.
type ExportFile struct {
	FileName    string
	ContentType string
	Body        []byte
}

// ExportsUseCase renders forecasts as delimited text or workbooks.
type ExportsUseCase struct {
	preds    *PredictionsUseCase
	workbook domsvc.WorkbookWriter
	metrics  domrepo.Metrics
	log      *applogger.Logger
	now      func() time.Time
}

func NewExportsUseCase(preds *PredictionsUseCase, workbook domsvc.WorkbookWriter, metrics domrepo.Metrics, log *applogger.Logger) *ExportsUseCase {
	return &ExportsUseCase{preds: preds, workbook: workbook, metrics: metrics, log: log, now: time.Now}
}

// Export fetches the requested symbols and renders them. One symbol defaults
// to the detail layout, several to the comparison layout.
func (uc *ExportsUseCase) Export(ctx context.Context, req models.ExportRequest) (*ExportFile, error) {
	syms, err := UniqueSymbols(req.Symbols)
	if err != nil {
		return nil, err
	}
	recs, err := uc.preds.FetchAll(ctx, syms, req.DaysAhead)
	if err != nil {
		return nil, err
	}
	return uc.Render(recs, req)
}

// Render serialises already fetched records.
func (uc *ExportsUseCase) Render(recs []models.ForecastRecord, req models.ExportRequest) (*ExportFile, error) {
	if len(recs) == 0 {
		return nil, models.ErrNothingToExport
	}
	mode := export.Mode(req.Mode)
	if mode == "" {
		mode = export.DefaultMode(len(recs))
	}
	if mode == export.ModeDetail && len(recs) != 1 {
		return nil, fmt.Errorf("%w: single export needs exactly one symbol, got %d", models.ErrInvalidInput, len(recs))
	}
	format := export.Format(req.Format)
	if format == "" {
		format = export.FormatCSV
	}

	ms, err := uc.preds.metricsFor(recs)
	if err != nil {
		return nil, err
	}

	generatedAt := uc.now()
	var body []byte
	switch format {
	case export.FormatCSV:
		body, err = export.DelimitedText(recs, ms, export.Options{Mode: mode, GeneratedAt: generatedAt, Horizon: req.DaysAhead})
	case export.FormatXLSX:
		body, err = export.Workbook(uc.workbook, recs, ms)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", models.ErrInvalidInput, req.Format)
	}
	if err != nil {
		uc.metrics.RecordError("export")
		return nil, fmt.Errorf("export %s: %w", format, err)
	}

	name := export.FileName(export.Context(recs, mode), format, date.FromTime(generatedAt))
	uc.metrics.RecordExport(string(format), string(mode))
	uc.log.Info("export rendered",
		applogger.String("file", name),
		applogger.Int("symbols", len(recs)),
		applogger.Int("bytes", len(body)),
	)
	return &ExportFile{FileName: name, ContentType: format.ContentType(), Body: body}, nil
}
