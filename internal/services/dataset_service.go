package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"econlab/internal/config"
	"econlab/internal/dataprocessing"
	"econlab/internal/infrastructure"
	"econlab/internal/regression"
)

// DatasetService produces datasets for analysis: seeded synthetic data and
// parsed CSV/XLSX uploads.
type DatasetService struct {
	maxRows int
	metrics *infrastructure.RegressionMetrics
	logger  *slog.Logger
}

// NewDatasetService creates a dataset service. Uploads are capped at the
// configured observation limit.
func NewDatasetService(cfg config.RegressionConfig, metrics *infrastructure.RegressionMetrics, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetService{
		maxRows: cfg.MaxObservations,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "dataset_service")),
	}
}

// Synthetic generates a dataset from cfg. The same seed always yields the
// same data.
func (s *DatasetService) Synthetic(ctx context.Context, cfg dataprocessing.SyntheticConfig) (*dataprocessing.SyntheticResult, error) {
	result, err := dataprocessing.GenerateSynthetic(cfg)
	if err != nil {
		return nil, fmt.Errorf("synthetic dataset: %w", err)
	}
	s.record(ctx, "synthetic")
	s.logger.InfoContext(ctx, "synthetic dataset generated",
		slog.Int("samples", cfg.Samples),
		slog.Int("features", cfg.Features),
		slog.Float64("noise", cfg.Noise),
		slog.Int64("seed", cfg.Seed))
	return result, nil
}

// Parse reads an uploaded file. The format is derived from the file name.
func (s *DatasetService) Parse(ctx context.Context, filename string, r io.Reader, sheet string) (*regression.Dataset, error) {
	format, err := dataprocessing.FormatFromName(filename)
	if err != nil {
		return nil, err
	}
	ds, err := dataprocessing.Parse(r, format, dataprocessing.ParseOptions{Sheet: sheet, MaxRows: s.maxRows})
	if err != nil {
		s.logger.WarnContext(ctx, "dataset upload rejected",
			slog.String("filename", filename),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	s.record(ctx, "upload")
	s.logger.InfoContext(ctx, "dataset parsed",
		slog.String("filename", filename),
		slog.Int("rows", ds.Len()),
		slog.Int("columns", len(ds.Columns)))
	return ds, nil
}

func (s *DatasetService) record(ctx context.Context, source string) {
	if s.metrics == nil {
		return
	}
	s.metrics.DatasetsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}
