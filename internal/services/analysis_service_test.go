package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"econlab/internal/exporter"
	"econlab/internal/infrastructure"
	"econlab/internal/regression"
	"econlab/internal/shared/testutil"
)

func TestAnalysisServiceFit(t *testing.T) {
	svc := NewAnalysisService(testRegressionConfig(), nil, nil, testLogger())
	ds := linearDataset(t, 200, 1)

	tests := []struct {
		name   string
		method regression.Method
	}{
		{"ols", regression.OLS},
		{"hc3", regression.OLSRobustHC3},
		{"gls without omega", regression.GLS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := svc.Fit(context.Background(), ModelInput{
				Dataset:    ds,
				Response:   "y",
				Regressors: []string{"x1", "x2"},
				Method:     tt.method,
			})
			require.NoError(t, err)
			require.NotNil(t, a.Model)
			require.NotNil(t, a.Diagnostics)

			coef := a.Model.Coefficients()
			assert.InDelta(t, 5, coef[0], 0.3)
			assert.InDelta(t, 2, coef[1], 0.05)
			assert.InDelta(t, -1, coef[2], 0.05)
			assert.Equal(t, tt.method, a.Model.Method())
			assert.Equal(t, "y", a.Response)
			assert.True(t, a.Diagnostics.VIF.Applicable)
			for _, w := range a.Warnings {
				assert.NotEqual(t, exporter.WarnLowFit, w.Code)
			}
		})
	}
}

func TestAnalysisServiceFitErrors(t *testing.T) {
	cfg := testRegressionConfig()
	cfg.MaxObservations = 100
	cfg.MaxRegressors = 2
	svc := NewAnalysisService(cfg, nil, nil, testLogger())
	small := linearDataset(t, 50, 2)

	tests := []struct {
		name    string
		input   ModelInput
		wantErr error
	}{
		{
			name:    "missing dataset",
			input:   ModelInput{Response: "y", Regressors: []string{"x1"}},
			wantErr: ErrNoDataset,
		},
		{
			name:    "too many observations",
			input:   ModelInput{Dataset: linearDataset(t, 150, 3), Response: "y", Regressors: []string{"x1"}},
			wantErr: ErrTooManyObservations,
		},
		{
			name:    "too many regressors",
			input:   ModelInput{Dataset: small, Response: "y", Regressors: []string{"x1", "x2", "x3"}},
			wantErr: ErrTooManyRegressors,
		},
		{
			name:    "unknown response",
			input:   ModelInput{Dataset: small, Response: "nope", Regressors: []string{"x1"}},
			wantErr: regression.ErrInvalidInput,
		},
		{
			name:    "unknown regressor",
			input:   ModelInput{Dataset: small, Response: "y", Regressors: []string{"x9"}},
			wantErr: regression.ErrInvalidInput,
		},
		{
			name: "iv without instruments",
			input: ModelInput{
				Dataset: small, Response: "y", Regressors: []string{"x1"},
				Method: regression.IV2SLS, Endogenous: "x1",
			},
			wantErr: regression.ErrUnderidentified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Fit(context.Background(), tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAnalysisServiceFitCancelled(t *testing.T) {
	svc := NewAnalysisService(testRegressionConfig(), nil, nil, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Fit(ctx, ModelInput{
		Dataset: linearDataset(t, 30, 4), Response: "y", Regressors: []string{"x1"},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

// alternatingDataset has y alternating independently of x.
func alternatingDataset(t *testing.T) *regression.Dataset {
	t.Helper()
	rows := make([][]float64, 60)
	for i := range rows {
		y := 1.0
		if i%2 == 0 {
			y = -1
		}
		rows[i] = []float64{float64(i), y}
	}
	ds, err := regression.NewDataset([]string{"x", "y"}, rows)
	require.NoError(t, err)
	return ds
}

func TestAnalysisServiceLowFitDisabled(t *testing.T) {
	cfg := testRegressionConfig()
	cfg.LowFitThreshold = 0
	svc := NewAnalysisService(cfg, nil, nil, testLogger())

	a, err := svc.Fit(context.Background(), ModelInput{Dataset: alternatingDataset(t), Response: "y", Regressors: []string{"x"}})
	require.NoError(t, err)
	for _, w := range a.Warnings {
		assert.NotEqual(t, exporter.WarnLowFit, w.Code)
	}
}

func TestAnalysisServiceLowFitWarning(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	svc := NewAnalysisService(testRegressionConfig(), nil, nil, logger)
	ds := alternatingDataset(t)

	a, err := svc.Fit(context.Background(), ModelInput{Dataset: ds, Response: "y", Regressors: []string{"x"}})
	require.NoError(t, err)

	codes := make([]string, 0, len(a.Warnings))
	for _, w := range a.Warnings {
		codes = append(codes, w.Code)
	}
	assert.Contains(t, codes, exporter.WarnLowFit)

	testutil.AssertLogContains(t, logs, slog.LevelWarn, "low goodness of fit")
	rec, ok := logs.Find("low goodness of fit")
	require.True(t, ok)
	assert.Equal(t, "analysis_service", rec.Attrs["component"])
	assert.Equal(t, "OLS", rec.Attrs["method"])
}

func TestAnalysisServiceIV(t *testing.T) {
	svc := NewAnalysisService(testRegressionConfig(), nil, nil, testLogger())
	ds := ivDataset(t, 500, 5)

	a, err := svc.Fit(context.Background(), ModelInput{
		Dataset:     ds,
		Response:    "y",
		Regressors:  []string{"x"},
		Method:      regression.IV2SLS,
		Endogenous:  "x",
		Instruments: []string{"z"},
	})
	require.NoError(t, err)
	assert.InDelta(t, 3, a.Model.Coefficients()[1], 0.1)
	assert.Equal(t, "x", a.Model.Endogenous())
	assert.Equal(t, []string{"z"}, a.Model.Instruments())
	assert.Greater(t, a.Model.FirstStageRSquared(), 0.9)
}

func TestAnalysisServicePredict(t *testing.T) {
	svc := NewAnalysisService(testRegressionConfig(), nil, nil, testLogger())
	ds := linearDataset(t, 300, 6)

	_, predictions, err := svc.Predict(context.Background(), ModelInput{
		Dataset: ds, Response: "y", Regressors: []string{"x1", "x2"},
	}, [][]float64{{0, 0}, {1, 1}, {4, 2}})
	require.NoError(t, err)
	require.Len(t, predictions, 3)
	assert.InDelta(t, 5, predictions[0], 0.3)
	assert.InDelta(t, 6, predictions[1], 0.3)
	assert.InDelta(t, 11, predictions[2], 0.3)

	_, _, err = svc.Predict(context.Background(), ModelInput{
		Dataset: ds, Response: "y", Regressors: []string{"x1", "x2"},
	}, [][]float64{{1}})
	assert.ErrorIs(t, err, regression.ErrDimensionMismatch)
}

func TestAnalysisServiceCompare(t *testing.T) {
	svc := NewAnalysisService(testRegressionConfig(), nil, nil, testLogger())

	t.Run("default methods without iv", func(t *testing.T) {
		in := ModelInput{Dataset: linearDataset(t, 120, 7), Response: "y", Regressors: []string{"x1", "x2"}}
		results, err := svc.Compare(context.Background(), in, nil)
		require.NoError(t, err)
		require.Len(t, results, 3)

		ols := results[0].Analysis.Model.Coefficients()
		for i, r := range results {
			require.NoError(t, r.Err, r.Method.String())
			assert.Equal(t, svc.ApplicableMethods(in)[i], r.Method)
			// Same point estimates; only the covariance differs.
			assert.InDeltaSlice(t, ols, r.Analysis.Model.Coefficients(), 1e-9)
		}
	})

	t.Run("iv included when specified", func(t *testing.T) {
		in := ModelInput{
			Dataset: ivDataset(t, 200, 8), Response: "y", Regressors: []string{"x"},
			Endogenous: "x", Instruments: []string{"z"},
		}
		results, err := svc.Compare(context.Background(), in, nil)
		require.NoError(t, err)
		require.Len(t, results, 4)
		assert.Equal(t, regression.IV2SLS, results[3].Method)
		require.NoError(t, results[3].Err)
	})

	t.Run("explicit iv without spec", func(t *testing.T) {
		in := ModelInput{Dataset: linearDataset(t, 50, 9), Response: "y", Regressors: []string{"x1"}}
		_, err := svc.Compare(context.Background(), in, []regression.Method{regression.OLS, regression.IV2SLS})
		assert.ErrorIs(t, err, ErrMethodNotApplicable)
	})

	t.Run("per method failure", func(t *testing.T) {
		in := ModelInput{
			Dataset: linearDataset(t, 50, 10), Response: "y", Regressors: []string{"x1"},
			Omega: [][]float64{{1}},
		}
		results, err := svc.Compare(context.Background(), in, []regression.Method{regression.OLS, regression.GLS})
		require.NoError(t, err)
		assert.NoError(t, results[0].Err)
		assert.ErrorIs(t, results[1].Err, regression.ErrDimensionMismatch)
		assert.Nil(t, results[1].Analysis)
	})
}

func TestAnalysisServiceReport(t *testing.T) {
	svc := NewAnalysisService(testRegressionConfig(), nil, nil, testLogger())
	a, err := svc.Fit(context.Background(), ModelInput{
		Dataset: linearDataset(t, 80, 11), Response: "y", Regressors: []string{"x1", "x2"},
	})
	require.NoError(t, err)

	report := svc.Report(a)
	assert.True(t, strings.Contains(report, "x1"))
	assert.Contains(t, report, "Breusch-Pagan")
}

func TestAnalysisServiceSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	metrics, err := infrastructure.NewRegressionMetrics(nil)
	require.NoError(t, err)
	svc := NewAnalysisService(testRegressionConfig(), tp.Tracer("test"), metrics, testLogger())

	_, err = svc.Fit(context.Background(), ModelInput{
		Dataset: linearDataset(t, 40, 12), Response: "y", Regressors: []string{"x1"},
	})
	require.NoError(t, err)

	names := make([]string, 0)
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	assert.ElementsMatch(t, []string{"regression.fit", "regression.diagnostics"}, names)
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&regression.InvalidInputError{Field: "y", Reason: "bad"}, "invalid_input"},
		{&regression.SingularMatrixError{}, "singular_matrix"},
		{&regression.UnderidentifiedError{}, "underidentified"},
		{&regression.DimensionMismatchError{}, "dimension_mismatch"},
		{context.DeadlineExceeded, "cancelled"},
		{errors.New("boom"), "internal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, errorKind(tt.err))
	}
}
