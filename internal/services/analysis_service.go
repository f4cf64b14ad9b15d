package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"econlab/internal/config"
	"econlab/internal/exporter"
	"econlab/internal/infrastructure"
	"econlab/internal/regression"
)

// ModelInput describes one estimation request.
type ModelInput struct {
	Dataset     *regression.Dataset
	Response    string
	Regressors  []string
	Method      regression.Method
	Endogenous  string
	Instruments []string
	Omega       [][]float64
}

// Analysis is a fitted model together with everything derived from it.
type Analysis struct {
	Response    string
	Design      *regression.DesignMatrix
	Model       *regression.FittedModel
	Diagnostics *regression.DiagnosticsReport
	Warnings    []exporter.Warning
}

// Comparison is the outcome of one method in Compare. Exactly one of
// Analysis and Err is set.
type Comparison struct {
	Method   regression.Method
	Analysis *Analysis
	Err      error
}

// AnalysisService runs estimations and diagnostics for the transport layers.
type AnalysisService struct {
	cfg         config.RegressionConfig
	estimator   *regression.Estimator
	diagnostics *regression.Diagnostics
	tracer      trace.Tracer
	metrics     *infrastructure.RegressionMetrics
	logger      *slog.Logger
}

// NewAnalysisService creates the service. tracer and metrics may be nil.
func NewAnalysisService(cfg config.RegressionConfig, tracer trace.Tracer, metrics *infrastructure.RegressionMetrics, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(infrastructure.InstrumentationName)
	}
	logger = logger.With(slog.String("component", "analysis_service"))
	return &AnalysisService{
		cfg:         cfg,
		estimator:   regression.NewEstimator(cfg.ConditionLimit, logger),
		diagnostics: regression.NewDiagnostics(cfg.ConditionLimit, logger),
		tracer:      tracer,
		metrics:     metrics,
		logger:      logger,
	}
}

// Fit estimates the model, runs the diagnostics and assesses fit quality.
func (s *AnalysisService) Fit(ctx context.Context, in ModelInput) (*Analysis, error) {
	if err := s.checkLimits(in); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	y, err := in.Dataset.Column(in.Response)
	if err != nil {
		return nil, fmt.Errorf("response: %w", err)
	}
	x, err := regression.BuildDesignMatrix(in.Dataset, in.Regressors)
	if err != nil {
		return nil, fmt.Errorf("design matrix: %w", err)
	}
	params, err := s.methodParams(in)
	if err != nil {
		return nil, err
	}

	model, err := s.fit(ctx, y, x, in.Method, params)
	if err != nil {
		return nil, err
	}

	diag, err := s.diagnose(ctx, model, x)
	if err != nil {
		return nil, err
	}

	warnings := exporter.Assess(model, diag, s.thresholds())
	for _, w := range warnings {
		if w.Code == exporter.WarnLowFit {
			s.logger.WarnContext(ctx, "low goodness of fit",
				slog.String("method", in.Method.String()),
				slog.Float64("r_squared", model.RSquared()))
		}
	}

	return &Analysis{
		Response:    in.Response,
		Design:      x,
		Model:       model,
		Diagnostics: diag,
		Warnings:    warnings,
	}, nil
}

// Predict fits the model and evaluates it on newRows, each holding the
// regressor values in the order of in.Regressors.
func (s *AnalysisService) Predict(ctx context.Context, in ModelInput, newRows [][]float64) (*Analysis, []float64, error) {
	analysis, err := s.Fit(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	if len(newRows) > s.cfg.MaxObservations {
		return nil, nil, fmt.Errorf("%w: %d prediction rows, limit %d", ErrTooManyObservations, len(newRows), s.cfg.MaxObservations)
	}

	x, err := regression.NewDesignMatrix(in.Regressors, newRows)
	if err != nil {
		return nil, nil, fmt.Errorf("prediction rows: %w", err)
	}
	predictions, err := regression.Predict(analysis.Model, x)
	if err != nil {
		return nil, nil, fmt.Errorf("predict: %w", err)
	}

	if s.metrics != nil {
		s.metrics.PredictionsTotal.Add(ctx, 1)
	}
	return analysis, predictions, nil
}

// Compare fits each method concurrently on the same input. Estimation
// failures are reported per method; only input-level problems, which would
// fail every method alike, are returned as an error.
func (s *AnalysisService) Compare(ctx context.Context, in ModelInput, methods []regression.Method) ([]Comparison, error) {
	if len(methods) == 0 {
		methods = s.ApplicableMethods(in)
	}
	for _, m := range methods {
		if m == regression.IV2SLS && !hasIVSpec(in) {
			return nil, fmt.Errorf("%w: %s needs an endogenous regressor and instruments", ErrMethodNotApplicable, m)
		}
	}
	if err := s.checkLimits(in); err != nil {
		return nil, err
	}
	if _, err := regression.BuildDesignMatrix(in.Dataset, in.Regressors); err != nil {
		return nil, fmt.Errorf("design matrix: %w", err)
	}

	results := make([]Comparison, len(methods))
	g, gctx := errgroup.WithContext(ctx)
	if s.cfg.CompareConcurrency > 0 {
		g.SetLimit(s.cfg.CompareConcurrency)
	}
	for i, m := range methods {
		g.Go(func() error {
			run := in
			run.Method = m
			analysis, err := s.Fit(gctx, run)
			results[i] = Comparison{Method: m, Analysis: analysis, Err: err}
			// Cancellation aborts the whole comparison; estimation errors do not.
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compare: %w", err)
	}

	s.logger.InfoContext(ctx, "comparison complete", slog.Int("methods", len(methods)))
	return results, nil
}

// ApplicableMethods lists the methods Compare runs by default. IV2SLS needs
// an endogenous regressor and at least one instrument.
func (s *AnalysisService) ApplicableMethods(in ModelInput) []regression.Method {
	methods := []regression.Method{regression.OLS, regression.OLSRobustHC3, regression.GLS}
	if hasIVSpec(in) {
		methods = append(methods, regression.IV2SLS)
	}
	return methods
}

// Report renders the plain-text summary of an analysis.
func (s *AnalysisService) Report(a *Analysis) string {
	return exporter.Summary(a.Model, a.Diagnostics, exporter.SummaryOptions{
		Response:   a.Response,
		Thresholds: s.thresholds(),
	})
}

func hasIVSpec(in ModelInput) bool {
	return in.Endogenous != "" && len(in.Instruments) > 0
}

func (s *AnalysisService) thresholds() exporter.Thresholds {
	return exporter.Thresholds{
		LowFit:       exporter.LowFitThreshold(s.cfg.LowFitThreshold),
		VIF:          s.cfg.VIFThreshold,
		Significance: s.cfg.Significance,
	}
}

func (s *AnalysisService) checkLimits(in ModelInput) error {
	if in.Dataset == nil {
		return ErrNoDataset
	}
	if s.cfg.MaxObservations > 0 && in.Dataset.Len() > s.cfg.MaxObservations {
		return fmt.Errorf("%w: %d observations, limit %d", ErrTooManyObservations, in.Dataset.Len(), s.cfg.MaxObservations)
	}
	if s.cfg.MaxRegressors > 0 && len(in.Regressors) > s.cfg.MaxRegressors {
		return fmt.Errorf("%w: %d regressors, limit %d", ErrTooManyRegressors, len(in.Regressors), s.cfg.MaxRegressors)
	}
	return nil
}

// methodParams resolves instrument names to columns. Names are only looked
// up for IV2SLS so other methods ignore stray IV fields.
func (s *AnalysisService) methodParams(in ModelInput) (regression.MethodParams, error) {
	params := regression.MethodParams{Omega: in.Omega}
	if in.Method != regression.IV2SLS {
		return params, nil
	}
	params.Endogenous = in.Endogenous
	cols, err := in.Dataset.ColumnSet(in.Instruments)
	if err != nil {
		return params, fmt.Errorf("instruments: %w", err)
	}
	params.Instruments = cols
	return params, nil
}

func (s *AnalysisService) fit(ctx context.Context, y []float64, x *regression.DesignMatrix, method regression.Method, params regression.MethodParams) (*regression.FittedModel, error) {
	rows, cols := x.Dims()
	ctx, span := s.tracer.Start(ctx, "regression.fit", trace.WithAttributes(
		attribute.String("regression.method", method.String()),
		attribute.Int("regression.observations", rows),
		attribute.Int("regression.columns", cols),
	))
	defer span.End()

	start := time.Now()
	model, err := s.estimator.Fit(ctx, y, x, method, params)
	s.metrics.RecordFit(ctx, method.String(), rows, time.Since(start), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.RecordError(ctx, errorKind(err))
		return nil, err
	}
	span.SetAttributes(
		attribute.Float64("regression.r_squared", model.RSquared()),
		attribute.Float64("regression.condition_number", model.ConditionNumber()),
	)
	return model, nil
}

func (s *AnalysisService) diagnose(ctx context.Context, model *regression.FittedModel, x *regression.DesignMatrix) (*regression.DiagnosticsReport, error) {
	ctx, span := s.tracer.Start(ctx, "regression.diagnostics")
	defer span.End()

	report, err := s.diagnostics.Diagnose(ctx, model, x)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("diagnostics: %w", err)
	}
	span.SetAttributes(
		attribute.Float64("regression.bp_statistic", report.BreuschPagan.Statistic),
		attribute.Bool("regression.vif_applicable", report.VIF.Applicable),
	)
	return report, nil
}

// errorKind labels an estimation error for metrics.
func errorKind(err error) string {
	switch {
	case errors.Is(err, regression.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, regression.ErrSingularMatrix):
		return "singular_matrix"
	case errors.Is(err, regression.ErrUnderidentified):
		return "underidentified"
	case errors.Is(err, regression.ErrDimensionMismatch):
		return "dimension_mismatch"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "internal"
	}
}
