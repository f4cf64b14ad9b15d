// Package api contains the JSON contracts of the econlab HTTP API.
// Version v1 represents the current stable API version.
package api

// Dataset carries tabular data either column-major (columns + rows) or as a
// list of observations mapping variable names to values.
type Dataset struct {
	Columns      []string             `json:"columns,omitempty" validate:"required_without=Observations,excluded_with=Observations,omitempty,min=1,unique,dive,varname"`
	Rows         [][]float64          `json:"rows,omitempty" validate:"required_with=Columns,excluded_with=Observations"`
	Observations []map[string]float64 `json:"observations,omitempty" validate:"required_without=Columns,omitempty,min=1"`
}

// ModelSpec selects the response, regressors and method-specific inputs.
type ModelSpec struct {
	Response    string      `json:"response" validate:"required,varname"`
	Regressors  []string    `json:"regressors" validate:"required,min=1,unique,dive,varname"`
	Endogenous  string      `json:"endogenous,omitempty" validate:"omitempty,varname"`
	Instruments []string    `json:"instruments,omitempty" validate:"omitempty,unique,dive,varname"`
	Omega       [][]float64 `json:"omega,omitempty"`
}

// FitRequest fits one model and returns it with diagnostics, in-sample
// series and warnings.
type FitRequest struct {
	Dataset Dataset `json:"dataset" validate:"required"`
	ModelSpec
	Method string `json:"method" validate:"required,method"`
	// Report adds the plain-text summary table to the response.
	Report bool `json:"report,omitempty"`
}

// PredictRequest fits a model and evaluates it on new rows. Each row lists
// the regressor values in the order of Regressors, without the constant.
type PredictRequest struct {
	Dataset Dataset `json:"dataset" validate:"required"`
	ModelSpec
	Method  string      `json:"method" validate:"required,method"`
	NewRows [][]float64 `json:"new_rows" validate:"required,min=1"`
}

// CompareRequest fits several methods on the same data. An empty Methods
// list means every applicable method.
type CompareRequest struct {
	Dataset Dataset `json:"dataset" validate:"required"`
	ModelSpec
	Methods []string `json:"methods,omitempty" validate:"omitempty,unique,dive,method"`
}

// SyntheticRequest generates a seeded dataset y = intercept + Xβ + ε.
type SyntheticRequest struct {
	Samples   int      `json:"samples" validate:"gte=10,lte=500"`
	Features  int      `json:"features" validate:"gte=1,lte=5"`
	Noise     float64  `json:"noise" validate:"gte=0,lte=2"`
	Seed      *int64   `json:"seed,omitempty"`
	Intercept *float64 `json:"intercept,omitempty"`
}
