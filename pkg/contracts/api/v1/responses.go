package api

import (
	"math"
	"strconv"
)

// Float is a float64 that encodes NaN and ±Inf as JSON null.
type Float float64

// MarshalJSON implements json.Marshaler
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// Floats converts a slice for encoding.
func Floats(v []float64) []Float {
	out := make([]Float, len(v))
	for i, x := range v {
		out[i] = Float(x)
	}
	return out
}

// Coefficient is one row of the coefficient table.
type Coefficient struct {
	Term     string `json:"term"`
	Estimate Float  `json:"estimate"`
	StdError Float  `json:"std_error"`
	TStat    Float  `json:"t"`
	PValue   Float  `json:"p_value"`
	CILow    Float  `json:"ci_low"`
	CIHigh   Float  `json:"ci_high"`
}

// Model describes a fitted model.
type Model struct {
	Method             string        `json:"method"`
	Response           string        `json:"response"`
	Regressors         []string      `json:"regressors"`
	Observations       int           `json:"observations"`
	DegreesOfFreedom   int           `json:"df_resid"`
	Coefficients       []Coefficient `json:"coefficients"`
	Covariance         [][]Float     `json:"covariance"`
	RSquared           Float         `json:"r_squared"`
	AdjRSquared        Float         `json:"adj_r_squared"`
	FStatistic         Float         `json:"f_statistic"`
	FPValue            Float         `json:"f_p_value"`
	LogLikelihood      Float         `json:"log_likelihood"`
	AIC                Float         `json:"aic"`
	BIC                Float         `json:"bic"`
	ConditionNumber    Float         `json:"condition_number"`
	Endogenous         string        `json:"endogenous,omitempty"`
	Instruments        []string      `json:"instruments,omitempty"`
	FirstStageRSquared *Float        `json:"first_stage_r_squared,omitempty"`
}

// VIF is the variance inflation factor of one regressor.
type VIF struct {
	Regressor string `json:"regressor"`
	Value     Float  `json:"value"`
}

// VIFResult lists VIFs; Applicable is false with fewer than two regressors.
type VIFResult struct {
	Applicable bool  `json:"applicable"`
	Values     []VIF `json:"values,omitempty"`
}

// BreuschPagan is the heteroskedasticity test result.
type BreuschPagan struct {
	Statistic   Float `json:"statistic"`
	PValue      Float `json:"p_value"`
	DF          int   `json:"df"`
	AuxRSquared Float `json:"aux_r_squared"`
}

// Diagnostics bundles the model diagnostics.
type Diagnostics struct {
	VIF          VIFResult    `json:"vif"`
	BreuschPagan BreuschPagan `json:"breusch_pagan"`
}

// Series holds the in-sample observed and predicted values for charting.
type Series struct {
	Observed  []Float `json:"observed"`
	Predicted []Float `json:"predicted"`
	Residuals []Float `json:"residuals"`
}

// Warning is a fit-quality or diagnostic warning.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FitResponse is returned by POST /api/v1/analysis/fit.
type FitResponse struct {
	Model       Model       `json:"model"`
	Diagnostics Diagnostics `json:"diagnostics"`
	Series      Series      `json:"series"`
	Warnings    []Warning   `json:"warnings"`
	Report      string      `json:"report,omitempty"`
}

// PredictResponse is returned by POST /api/v1/analysis/predict.
type PredictResponse struct {
	Method      string   `json:"method"`
	Regressors  []string `json:"regressors"`
	Predictions []Float  `json:"predictions"`
}

// ComparisonEntry is the outcome of one method in a comparison. Exactly one
// of Model and Error is set.
type ComparisonEntry struct {
	Method      string       `json:"method"`
	Model       *Model       `json:"model,omitempty"`
	Diagnostics *Diagnostics `json:"diagnostics,omitempty"`
	Warnings    []Warning    `json:"warnings,omitempty"`
	Error       *EntryError  `json:"error,omitempty"`
}

// EntryError describes why a method could not be estimated.
type EntryError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// CompareResponse is returned by POST /api/v1/analysis/compare.
type CompareResponse struct {
	Results []ComparisonEntry `json:"results"`
}

// SyntheticInfo describes the process that generated a synthetic dataset.
type SyntheticInfo struct {
	Seed           int64    `json:"seed"`
	Intercept      Float    `json:"intercept"`
	Beta           []Float  `json:"beta"`
	Noise          Float    `json:"noise"`
	Response       string   `json:"response"`
	Regressors     []string `json:"regressors"`
	ResponseMean   Float    `json:"response_mean"`
	ResponseStdDev Float    `json:"response_std_dev"`
}

// DatasetResponse returns a generated or uploaded dataset in the same shape
// accepted by the analysis endpoints.
type DatasetResponse struct {
	Source       string         `json:"source"`
	Observations int            `json:"observations"`
	Columns      []string       `json:"columns"`
	Rows         [][]float64    `json:"rows"`
	Synthetic    *SyntheticInfo `json:"synthetic,omitempty"`
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime,omitempty"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}
