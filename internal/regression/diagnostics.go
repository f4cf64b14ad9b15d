package regression

import (
	"context"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// VIFResult holds one variance inflation factor per non-constant regressor.
// Applicable is false when fewer than two regressors exist; that is a normal
// outcome, not an error.
type VIFResult struct {
	Applicable bool
	Names      []string
	Values     []float64
}

// BPResult is the Breusch–Pagan Lagrange-multiplier test for
// heteroskedasticity.
type BPResult struct {
	Statistic float64
	PValue    float64
	DF        int
	// AuxRSquared is the R² of the regression of e² on X.
	AuxRSquared float64
}

// DiagnosticsReport bundles the multicollinearity and heteroskedasticity
// diagnostics of one fitted model.
type DiagnosticsReport struct {
	VIF          VIFResult
	BreuschPagan BPResult
}

// Diagnostics computes residual-based tests. It is stateless apart from the
// condition limit used for its auxiliary regressions.
type Diagnostics struct {
	conditionLimit float64
	logger         *slog.Logger
}

// NewDiagnostics creates a diagnostics engine.
func NewDiagnostics(conditionLimit float64, logger *slog.Logger) *Diagnostics {
	if logger == nil {
		logger = slog.Default()
	}
	if conditionLimit <= 0 {
		conditionLimit = DefaultConditionLimit
	}
	return &Diagnostics{conditionLimit: conditionLimit, logger: logger}
}

// VarianceInflationFactors uses the default condition limit.
func VarianceInflationFactors(x *DesignMatrix) (VIFResult, error) {
	return NewDiagnostics(DefaultConditionLimit, nil).VarianceInflationFactors(x)
}

// BreuschPagan uses the default condition limit.
func BreuschPagan(model *FittedModel, x *DesignMatrix) (BPResult, error) {
	return NewDiagnostics(DefaultConditionLimit, nil).BreuschPagan(model, x)
}

// Diagnose runs VIF and Breusch–Pagan on a fitted model.
func (d *Diagnostics) Diagnose(ctx context.Context, model *FittedModel, x *DesignMatrix) (*DiagnosticsReport, error) {
	vif, err := d.VarianceInflationFactors(x)
	if err != nil {
		return nil, err
	}
	bp, err := d.BreuschPagan(model, x)
	if err != nil {
		return nil, err
	}
	d.logger.DebugContext(ctx, "diagnostics computed",
		"vif_applicable", vif.Applicable,
		"bp_statistic", bp.Statistic,
		"bp_p_value", bp.PValue,
	)
	return &DiagnosticsReport{VIF: vif, BreuschPagan: bp}, nil
}

// VarianceInflationFactors regresses each non-constant column j on the
// constant and the other non-constant columns and reports 1/(1−R²_j).
// A perfect auxiliary fit yields +Inf.
func (d *Diagnostics) VarianceInflationFactors(x *DesignMatrix) (VIFResult, error) {
	if x == nil {
		return VIFResult{}, invalidInput("design", "design matrix is nil")
	}
	n, p := x.Dims()
	k := p - 1
	names := x.Regressors()
	if k < 2 {
		return VIFResult{Applicable: false, Names: names}, nil
	}

	values := make([]float64, k)
	others := mat.NewDense(n, k, nil)
	otherNames := make([]string, k)
	for j := 1; j <= k; j++ {
		others.SetCol(0, x.Column(0))
		otherNames[0] = ConstantName
		col := 1
		for c := 1; c <= k; c++ {
			if c == j {
				continue
			}
			others.SetCol(col, x.Column(c))
			otherNames[col] = x.names[c]
			col++
		}
		target := x.Column(j)
		sol, err := leastSquares(others, target, otherNames, d.conditionLimit)
		if err != nil {
			return VIFResult{}, err
		}
		fitted := mulVec(others, sol.beta)
		rss := 0.0
		for i := range target {
			r := target[i] - fitted[i]
			rss += r * r
		}
		r2 := rSquared(rss, totalSumSquares(target))
		if r2 >= 1 {
			values[j-1] = math.Inf(1)
		} else {
			values[j-1] = 1 / (1 - r2)
		}
	}
	return VIFResult{Applicable: true, Names: names, Values: values}, nil
}

// BreuschPagan regresses squared residuals on the full design, constant
// included. LM = n·R²_aux is compared with χ²(k).
func (d *Diagnostics) BreuschPagan(model *FittedModel, x *DesignMatrix) (BPResult, error) {
	if model == nil {
		return BPResult{}, invalidInput("model", "model is nil")
	}
	if x == nil {
		return BPResult{}, invalidInput("design", "design matrix is nil")
	}
	n, p := x.Dims()
	if p != len(model.coef) {
		return BPResult{}, &DimensionMismatchError{Operation: "breusch-pagan", What: "design columns", Expected: len(model.coef), Actual: p}
	}
	if n != len(model.residuals) {
		return BPResult{}, &DimensionMismatchError{Operation: "breusch-pagan", What: "design rows", Expected: len(model.residuals), Actual: n}
	}

	e2 := make([]float64, n)
	for i, r := range model.residuals {
		e2[i] = r * r
	}
	sol, err := leastSquares(x.data, e2, x.names, d.conditionLimit)
	if err != nil {
		return BPResult{}, err
	}
	fitted := mulVec(x.data, sol.beta)
	rss := 0.0
	for i := range e2 {
		r := e2[i] - fitted[i]
		rss += r * r
	}
	r2 := rSquared(rss, totalSumSquares(e2))

	df := p - 1
	lm := math.Max(0, float64(n)*r2)
	return BPResult{
		Statistic:   lm,
		PValue:      distuv.ChiSquared{K: float64(df)}.Survival(lm),
		DF:          df,
		AuxRSquared: r2,
	}, nil
}
