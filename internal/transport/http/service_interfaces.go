package http

import (
	"context"
	"io"

	"econlab/internal/dataprocessing"
	"econlab/internal/regression"
	"econlab/internal/services"
)

// AnalysisServiceInterface defines the estimation operations the analysis
// handler depends on
type AnalysisServiceInterface interface {
	Fit(ctx context.Context, in services.ModelInput) (*services.Analysis, error)
	Predict(ctx context.Context, in services.ModelInput, newRows [][]float64) (*services.Analysis, []float64, error)
	Compare(ctx context.Context, in services.ModelInput, methods []regression.Method) ([]services.Comparison, error)
	Report(a *services.Analysis) string
}

// DatasetServiceInterface defines the dataset operations
type DatasetServiceInterface interface {
	Synthetic(ctx context.Context, cfg dataprocessing.SyntheticConfig) (*dataprocessing.SyntheticResult, error)
	Parse(ctx context.Context, filename string, r io.Reader, sheet string) (*regression.Dataset, error)
}
