package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"econlab/internal/config"
	"econlab/internal/dataprocessing"
	apierrors "econlab/internal/errors"
	custommiddleware "econlab/internal/middleware"
	api "econlab/pkg/contracts/api/v1"
)

// Synthetic request defaults.
const (
	defaultSyntheticSeed      int64 = 42
	defaultSyntheticIntercept       = 5.0
)

// DatasetHandler serves synthetic datasets and dataset uploads
type DatasetHandler struct {
	service      DatasetServiceInterface
	validator    *custommiddleware.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(service DatasetServiceInterface, validator *custommiddleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DatasetHandler {
	return &DatasetHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "dataset_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dataset routes
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/synthetic", h.Synthetic)
	r.With(custommiddleware.MaxBodySize(config.MaxUploadBytes)).Post("/upload", h.Upload)
	return r
}

// Synthetic handles POST /api/v1/datasets/synthetic. An empty body
// generates the default dataset.
func (h *DatasetHandler) Synthetic(w http.ResponseWriter, r *http.Request) {
	defaults := dataprocessing.DefaultSyntheticConfig()
	req := api.SyntheticRequest{
		Samples:  defaults.Samples,
		Features: defaults.Features,
		Noise:    defaults.Noise,
	}
	if r.ContentLength != 0 {
		if err := h.validator.DecodeAndValidate(r, &req); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
	} else if err := h.validator.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	cfg := dataprocessing.SyntheticConfig{
		Samples:   req.Samples,
		Features:  req.Features,
		Noise:     req.Noise,
		Seed:      defaultSyntheticSeed,
		Intercept: defaultSyntheticIntercept,
	}
	if req.Seed != nil {
		cfg.Seed = *req.Seed
	}
	if req.Intercept != nil {
		cfg.Intercept = *req.Intercept
	}

	result, err := h.service.Synthetic(r.Context(), cfg)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("synthetic", err.Error()))
		return
	}

	resp := datasetDTO("synthetic", result.Dataset)
	resp.Synthetic = &api.SyntheticInfo{
		Seed:           result.Seed,
		Intercept:      api.Float(result.Intercept),
		Beta:           api.Floats(result.Beta),
		Noise:          api.Float(cfg.Noise),
		Response:       result.Response,
		Regressors:     result.Regressors,
		ResponseMean:   api.Float(result.ResponseMean),
		ResponseStdDev: api.Float(result.ResponseStdDev),
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, resp)
}

// Upload handles POST /api/v1/datasets/upload, a multipart form with a
// "file" part (CSV or XLSX) and an optional "sheet" field.
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "a CSV or XLSX file is required"))
		return
	}
	defer file.Close()

	ds, err := h.service.Parse(r.Context(), header.Filename, file, r.FormValue("sheet"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "dataset uploaded",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size),
		slog.Int("rows", ds.Len()),
	)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, datasetDTO("upload", ds))
}
