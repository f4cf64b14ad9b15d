package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"econlab/internal/dataprocessing"
	"econlab/internal/regression"
)

// Common error types following RFC 7807
const (
	TypeValidation       = "/errors/validation"
	TypeNotFound         = "/errors/not-found"
	TypeMethodNotAllowed = "/errors/method-not-allowed"
	TypeRateLimit        = "/errors/rate-limit"
	TypeInternal         = "/errors/internal"
	TypeTimeout          = "/errors/timeout"
	TypePayloadTooLarge  = "/errors/payload-too-large"
	TypeUnprocessable    = "/errors/unprocessable"
)

// Domain-specific error types
const (
	TypeInvalidInput      = "/errors/regression/invalid-input"
	TypeSingularMatrix    = "/errors/regression/singular-matrix"
	TypeUnderidentified   = "/errors/regression/underidentified"
	TypeDimensionMismatch = "/errors/regression/dimension-mismatch"
	TypeUnsupportedFormat = "/errors/data/unsupported-format"
	TypeInvalidData       = "/errors/data/invalid"
)

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError converts any error to RFC 7807 format and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())
	problem := h.ErrorToProblem(err, r)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	problem.WithExtension("trace_id", reqID)
	if h.includeStack && problem.Status >= http.StatusInternalServerError {
		problem.WithExtension("stack", getStackTrace())
	}

	render.Render(w, r, problem)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			r.URL.Path,
		)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return h.apiErrorToProblem(apiErr, r)
	}

	if problem := regressionProblem(err, r); problem != nil {
		return problem
	}
	if problem := dataProblem(err, r); problem != nil {
		return problem
	}

	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return NewProblemDetails(
			http.StatusRequestEntityTooLarge,
			TypePayloadTooLarge,
			"Payload Too Large",
			"The request body exceeds the maximum allowed size",
			r.URL.Path,
		).WithExtension("details", map[string]interface{}{"limit": maxBytes.Limit})
	}

	return NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred while processing your request",
		r.URL.Path,
	)
}

// regressionProblem maps the estimation engine's typed errors.
func regressionProblem(err error, r *http.Request) *ProblemDetails {
	var (
		invalid    *regression.InvalidInputError
		singular   *regression.SingularMatrixError
		underIdent *regression.UnderidentifiedError
		mismatch   *regression.DimensionMismatchError
	)

	switch {
	case errors.As(err, &invalid):
		return NewProblemDetails(http.StatusBadRequest, TypeInvalidInput,
			"Invalid Regression Input", err.Error(), r.URL.Path).
			WithExtension("details", map[string]interface{}{
				"field":  invalid.Field,
				"reason": invalid.Reason,
			})

	case errors.As(err, &singular):
		return NewProblemDetails(http.StatusUnprocessableEntity, TypeSingularMatrix,
			"Singular Design Matrix", err.Error(), r.URL.Path).
			WithExtension("details", map[string]interface{}{
				"rows":      singular.Rows,
				"cols":      singular.Cols,
				"rank":      singular.Rank,
				"condition": finiteOrNil(singular.Condition),
				"columns":   singular.Columns,
			})

	case errors.As(err, &underIdent):
		return NewProblemDetails(http.StatusUnprocessableEntity, TypeUnderidentified,
			"Model Underidentified", err.Error(), r.URL.Path).
			WithExtension("details", map[string]interface{}{
				"endogenous":  underIdent.Endogenous,
				"instruments": underIdent.Instruments,
				"reason":      underIdent.Reason,
			})

	case errors.As(err, &mismatch):
		return NewProblemDetails(http.StatusBadRequest, TypeDimensionMismatch,
			"Dimension Mismatch", err.Error(), r.URL.Path).
			WithExtension("details", map[string]interface{}{
				"operation": mismatch.Operation,
				"what":      mismatch.What,
				"expected":  mismatch.Expected,
				"actual":    mismatch.Actual,
			})
	}
	return nil
}

// dataProblem maps dataset ingest failures.
func dataProblem(err error, r *http.Request) *ProblemDetails {
	switch {
	case errors.Is(err, dataprocessing.ErrUnsupportedFormat):
		return NewProblemDetails(http.StatusUnsupportedMediaType, TypeUnsupportedFormat,
			"Unsupported Dataset Format", err.Error(), r.URL.Path)
	case errors.Is(err, dataprocessing.ErrTooManyRows):
		return NewProblemDetails(http.StatusRequestEntityTooLarge, TypePayloadTooLarge,
			"Dataset Too Large", err.Error(), r.URL.Path)
	case errors.Is(err, dataprocessing.ErrEmptyInput), errors.Is(err, dataprocessing.ErrInvalidCell):
		return NewProblemDetails(http.StatusBadRequest, TypeInvalidData,
			"Invalid Dataset", err.Error(), r.URL.Path)
	}
	return nil
}

func finiteOrNil(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

// apiErrorToProblem converts APIError to ProblemDetails
func (h *ErrorHandler) apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problemType := TypeInternal
	switch apiErr.ErrorCode {
	case "VALIDATION_FAILED", "INVALID_REQUEST", "INVALID_JSON", "MISSING_PARAMETER":
		problemType = TypeValidation
	case "NOT_FOUND":
		problemType = TypeNotFound
	case "PAYLOAD_TOO_LARGE":
		problemType = TypePayloadTooLarge
	case "UNPROCESSABLE_ENTITY":
		problemType = TypeUnprocessable
	case "RATE_LIMIT_EXCEEDED":
		problemType = TypeRateLimit
	}

	problem := NewProblemDetails(
		apiErr.StatusCode,
		problemType,
		http.StatusText(apiErr.StatusCode),
		apiErr.Message,
		r.URL.Path,
	).WithExtension("error_code", apiErr.ErrorCode)

	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}
	return problem
}

// HandlePanic recovers from panics and returns RFC 7807 error
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	problem := NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred",
		r.URL.Path,
	).WithExtension("trace_id", reqID)

	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", getStackTrace())
	}

	render.Render(w, r, problem)
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	render.Render(w, r, problem)
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeMethodNotAllowed,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	render.Render(w, r, problem)
}

func getStackTrace() string {
	buf := make([]byte, 1024*8)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
