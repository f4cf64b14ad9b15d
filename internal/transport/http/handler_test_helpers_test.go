package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"econlab/internal/config"
	"econlab/internal/dataprocessing"
	apierrors "econlab/internal/errors"
	custommiddleware "econlab/internal/middleware"
	"econlab/internal/regression"
	"econlab/internal/services"
)

// MockAnalysisService is a mock implementation of AnalysisServiceInterface
type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) Fit(ctx context.Context, in services.ModelInput) (*services.Analysis, error) {
	args := m.Called(in.Method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Analysis), args.Error(1)
}

func (m *MockAnalysisService) Predict(ctx context.Context, in services.ModelInput, newRows [][]float64) (*services.Analysis, []float64, error) {
	args := m.Called(in.Method, newRows)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*services.Analysis), args.Get(1).([]float64), args.Error(2)
}

func (m *MockAnalysisService) Compare(ctx context.Context, in services.ModelInput, methods []regression.Method) ([]services.Comparison, error) {
	args := m.Called(methods)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.Comparison), args.Error(1)
}

func (m *MockAnalysisService) Report(a *services.Analysis) string {
	return m.Called(a).String(0)
}

// MockDatasetService is a mock implementation of DatasetServiceInterface
type MockDatasetService struct {
	mock.Mock
}

func (m *MockDatasetService) Synthetic(ctx context.Context, cfg dataprocessing.SyntheticConfig) (*dataprocessing.SyntheticResult, error) {
	args := m.Called(cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dataprocessing.SyntheticResult), args.Error(1)
}

func (m *MockDatasetService) Parse(ctx context.Context, filename string, r io.Reader, sheet string) (*regression.Dataset, error) {
	args := m.Called(filename, sheet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*regression.Dataset), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDeps() (*custommiddleware.ValidationMiddleware, *apierrors.ErrorHandler) {
	logger := testLogger()
	errorHandler := apierrors.NewErrorHandler(logger, false)
	return custommiddleware.NewValidationMiddleware(logger, errorHandler, 0), errorHandler
}

func newAnalysisRouter(service AnalysisServiceInterface) http.Handler {
	validator, errorHandler := newTestDeps()
	r := chi.NewRouter()
	r.Mount("/api/v1/analysis", NewAnalysisHandler(service, validator, testLogger(), errorHandler).Routes())
	return r
}

func newRealAnalysisService() *services.AnalysisService {
	return services.NewAnalysisService(config.Default().Regression, nil, nil, testLogger())
}

func postJSON(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// lineData returns y = 1 + 2x + small deterministic noise, column-major.
func lineData() map[string]interface{} {
	rows := make([][]float64, 0, 20)
	for i := 0; i < 20; i++ {
		noise := 0.1
		if i%2 == 0 {
			noise = -0.1
		}
		x := float64(i)
		rows = append(rows, []float64{x, 1 + 2*x + noise})
	}
	return map[string]interface{}{"columns": []string{"x", "y"}, "rows": rows}
}
