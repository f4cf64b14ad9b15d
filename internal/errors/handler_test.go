package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"econlab/internal/dataprocessing"
	"econlab/internal/regression"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantDetail map[string]interface{}
	}{
		{
			name:       "invalid regression input",
			err:        fmt.Errorf("fit OLS: %w", &regression.InvalidInputError{Field: "regressors", Reason: "empty selection"}),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeInvalidInput,
			wantDetail: map[string]interface{}{"field": "regressors", "reason": "empty selection"},
		},
		{
			name: "singular design",
			err: &regression.SingularMatrixError{
				Rows: 10, Cols: 3, Rank: 2, Condition: math.Inf(1), Columns: []string{"const", "A", "B"},
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeSingularMatrix,
			wantDetail: map[string]interface{}{"rank": float64(2), "condition": nil},
		},
		{
			name:       "underidentified",
			err:        &regression.UnderidentifiedError{Endogenous: "X1", Instruments: 0, Reason: "no instruments"},
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeUnderidentified,
			wantDetail: map[string]interface{}{"endogenous": "X1", "instruments": float64(0)},
		},
		{
			name:       "dimension mismatch",
			err:        &regression.DimensionMismatchError{Operation: "predict", Expected: 3, Actual: 2, What: "columns"},
			wantStatus: http.StatusBadRequest,
			wantType:   TypeDimensionMismatch,
			wantDetail: map[string]interface{}{"expected": float64(3), "actual": float64(2)},
		},
		{
			name:       "unsupported upload",
			err:        fmt.Errorf("%w: .dta", dataprocessing.ErrUnsupportedFormat),
			wantStatus: http.StatusUnsupportedMediaType,
			wantType:   TypeUnsupportedFormat,
		},
		{
			name:       "blank cell",
			err:        fmt.Errorf("%w: row 3 column \"X\" is empty", dataprocessing.ErrInvalidCell),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeInvalidData,
		},
		{
			name:       "too many rows",
			err:        dataprocessing.ErrTooManyRows,
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   TypePayloadTooLarge,
		},
		{
			name:       "api error",
			err:        ErrValidation("method", "unknown method"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantDetail: map[string]interface{}{"field": "method"},
		},
		{
			name:       "deadline",
			err:        fmt.Errorf("compare: %w", context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "body limit",
			err:        &http.MaxBytesError{Limit: 1024},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   TypePayloadTooLarge,
			wantDetail: map[string]interface{}{"limit": float64(1024)},
		},
		{
			name:       "unknown error",
			err:        fmt.Errorf("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	handler := NewErrorHandler(testLogger(), false)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis/fit", nil)
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-42"))
			rec := httptest.NewRecorder()

			handler.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeProblem(t, rec)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/v1/analysis/fit", body["instance"])
			assert.Equal(t, "req-42", body["trace_id"])
			assert.NotContains(t, body, "stack")

			if tt.wantDetail != nil {
				details, ok := body["details"].(map[string]interface{})
				require.True(t, ok, "details extension missing: %v", body)
				for k, v := range tt.wantDetail {
					assert.Equal(t, v, details[k], k)
				}
			}
		})
	}
}

func TestErrorHandler_HandleErrorNil(t *testing.T) {
	rec := httptest.NewRecorder()
	NewErrorHandler(testLogger(), false).HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, 0, rec.Body.Len())
}

func TestErrorHandler_StackOnlyForServerErrors(t *testing.T) {
	handler := NewErrorHandler(testLogger(), true)

	rec := httptest.NewRecorder()
	handler.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), fmt.Errorf("boom"))
	assert.Contains(t, decodeProblem(t, rec), "stack")

	rec = httptest.NewRecorder()
	handler.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), ErrInvalidRequest)
	assert.NotContains(t, decodeProblem(t, rec), "stack")
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	handler := NewErrorHandler(testLogger(), false)

	rec := httptest.NewRecorder()
	handler.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, TypeNotFound, decodeProblem(t, rec)["type"])

	rec = httptest.NewRecorder()
	handler.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/analysis/fit", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeMethodNotAllowed, body["type"])
	assert.Contains(t, body["detail"], "DELETE")
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := NewErrorHandler(testLogger(), true)
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("index out of range")
	})

	rec := httptest.NewRecorder()
	RecoveryMiddleware(handler)(panicking).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeInternal, body["type"])
	assert.Equal(t, "index out of range", body["panic"])
}
