package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "econlab/internal/errors"
	custommiddleware "econlab/internal/middleware"
	api "econlab/pkg/contracts/api/v1"
)

// AnalysisHandler handles estimation requests with RFC 7807 errors
type AnalysisHandler struct {
	service      AnalysisServiceInterface
	validator    *custommiddleware.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service AnalysisServiceInterface, validator *custommiddleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalysisHandler {
	return &AnalysisHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "analysis_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the analysis routes
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Use(custommiddleware.ContentTypeValidator(h.errorHandler, "application/json"))

	r.Post("/fit", h.Fit)
	r.Post("/predict", h.Predict)
	r.Post("/compare", h.Compare)
	return r
}

// Fit handles POST /api/v1/analysis/fit
func (h *AnalysisHandler) Fit(w http.ResponseWriter, r *http.Request) {
	var req api.FitRequest
	if err := h.validator.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	in, err := toModelInput(req.Dataset, req.ModelSpec, req.Method)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "fitting model",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("method", in.Method.String()),
		slog.Int("observations", in.Dataset.Len()),
		slog.Int("regressors", len(in.Regressors)),
	)

	analysis, err := h.service.Fit(r.Context(), in)
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err))
		return
	}

	resp := api.FitResponse{
		Model:       modelDTO(analysis),
		Diagnostics: diagnosticsDTO(analysis.Diagnostics),
		Series:      seriesDTO(analysis.Model),
		Warnings:    warningsDTO(analysis.Warnings),
	}
	if req.Report {
		resp.Report = h.service.Report(analysis)
	}
	render.JSON(w, r, resp)
}

// Predict handles POST /api/v1/analysis/predict
func (h *AnalysisHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req api.PredictRequest
	if err := h.validator.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	in, err := toModelInput(req.Dataset, req.ModelSpec, req.Method)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	analysis, predictions, err := h.service.Predict(r.Context(), in, req.NewRows)
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err))
		return
	}

	render.JSON(w, r, api.PredictResponse{
		Method:      analysis.Model.Method().String(),
		Regressors:  analysis.Design.Regressors(),
		Predictions: api.Floats(predictions),
	})
}

// Compare handles POST /api/v1/analysis/compare. Methods that fail carry a
// problem type and message instead of a model.
func (h *AnalysisHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req api.CompareRequest
	if err := h.validator.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	in, err := toModelInput(req.Dataset, req.ModelSpec, "")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	methods, err := parseMethods(req.Methods)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	results, err := h.service.Compare(r.Context(), in, methods)
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err))
		return
	}

	resp := api.CompareResponse{Results: make([]api.ComparisonEntry, len(results))}
	for i, c := range results {
		entry := api.ComparisonEntry{Method: c.Method.String()}
		if c.Err != nil {
			problem := h.errorHandler.ErrorToProblem(serviceError(c.Err), r)
			entry.Error = &api.EntryError{Type: problem.Type, Message: c.Err.Error()}
		} else {
			model := modelDTO(c.Analysis)
			diag := diagnosticsDTO(c.Analysis.Diagnostics)
			entry.Model = &model
			entry.Diagnostics = &diag
			entry.Warnings = warningsDTO(c.Analysis.Warnings)
		}
		resp.Results[i] = entry
	}
	render.JSON(w, r, resp)
}
