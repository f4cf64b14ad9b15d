package regression

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Estimator fits linear models. It holds no per-request state and is safe
// for concurrent use.
type Estimator struct {
	conditionLimit float64
	logger         *slog.Logger
}

// NewEstimator creates an estimator. A non-positive condition limit selects
// DefaultConditionLimit.
func NewEstimator(conditionLimit float64, logger *slog.Logger) *Estimator {
	if logger == nil {
		logger = slog.Default()
	}
	if conditionLimit <= 0 {
		conditionLimit = DefaultConditionLimit
	}
	return &Estimator{conditionLimit: conditionLimit, logger: logger}
}

// ConditionLimit returns the configured singularity threshold
func (e *Estimator) ConditionLimit() float64 { return e.conditionLimit }

// Fit estimates y on X with the package defaults.
func Fit(y []float64, x *DesignMatrix, method Method, params MethodParams) (*FittedModel, error) {
	return NewEstimator(DefaultConditionLimit, nil).Fit(context.Background(), y, x, method, params)
}

// Fit estimates the response y on the design matrix x with the given method.
func (e *Estimator) Fit(ctx context.Context, y []float64, x *DesignMatrix, method Method, params MethodParams) (*FittedModel, error) {
	start := time.Now()
	if err := validateFitInputs(y, x); err != nil {
		return nil, err
	}
	n, p := x.Dims()
	e.logger.DebugContext(ctx, "fitting linear model",
		"method", method.String(),
		"observations", n,
		"columns", p,
	)

	var (
		model *FittedModel
		err   error
	)
	switch method {
	case OLS:
		model, err = e.fitOLS(y, x)
	case OLSRobustHC3:
		model, err = e.fitHC3(y, x)
	case GLS:
		model, err = e.fitGLS(y, x, params.Omega)
	case IV2SLS:
		model, err = e.fitIV(y, x, params)
	default:
		return nil, invalidInput("method", "unsupported estimation method %d", int(method))
	}
	if err != nil {
		e.logger.WarnContext(ctx, "linear model fit failed",
			"method", method.String(),
			"error", err,
		)
		return nil, fmt.Errorf("fit %s: %w", method, err)
	}

	e.logger.DebugContext(ctx, "linear model fitted",
		"method", method.String(),
		"r_squared", model.RSquared(),
		"condition_number", model.ConditionNumber(),
		"duration", time.Since(start),
	)
	return model, nil
}

func validateFitInputs(y []float64, x *DesignMatrix) error {
	if x == nil {
		return invalidInput("design", "design matrix is nil")
	}
	n, p := x.Dims()
	if len(y) != n {
		return &DimensionMismatchError{Operation: "fit", What: "response length", Expected: n, Actual: len(y)}
	}
	if n <= p {
		return invalidInput("rows", "%d observations is not enough for %d columns", n, p)
	}
	for i, v := range y {
		if !isFinite(v) {
			return invalidInput("response", "non-finite value at row %d", i)
		}
	}
	return nil
}

// fitOLS computes β = (XᵀX)⁻¹Xᵀy and σ̂²(XᵀX)⁻¹ with σ̂² = RSS/(n−k−1).
func (e *Estimator) fitOLS(y []float64, x *DesignMatrix) (*FittedModel, error) {
	sol, err := leastSquares(x.data, y, x.names, e.conditionLimit)
	if err != nil {
		return nil, err
	}
	return olsModel(OLS, x, y, sol), nil
}

func olsModel(method Method, x *DesignMatrix, y []float64, sol *lsSolution) *FittedModel {
	n, p := x.Dims()
	fitted := mulVec(x.data, sol.beta)
	rss := 0.0
	for i := range y {
		d := y[i] - fitted[i]
		rss += d * d
	}
	cov := scaledCopy(sol.xtxInv, rss/float64(n-p))
	return newFittedModel(method, x, y, sol.beta, cov, sol.condition)
}

func scaledCopy(s *mat.SymDense, c float64) *mat.SymDense {
	out := mat.NewSymDense(s.SymmetricDim(), nil)
	out.ScaleSym(c, s)
	return out
}
