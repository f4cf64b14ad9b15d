package regression

import (
	"gonum.org/v1/gonum/mat"
)

// fitIV runs two-stage least squares for exactly one endogenous regressor.
// Stage 1 regresses the endogenous column on the constant, the remaining
// exogenous regressors and the instruments. Stage 2 is OLS of y on the design
// with that column replaced by its stage-1 fit. Coefficients and covariance
// come from stage 2; fitted values and residuals use the original design.
func (e *Estimator) fitIV(y []float64, x *DesignMatrix, params MethodParams) (*FittedModel, error) {
	endog := x.ColumnIndex(params.Endogenous)
	if params.Endogenous == "" || endog < 1 {
		return nil, &UnderidentifiedError{
			Endogenous:  params.Endogenous,
			Instruments: len(params.Instruments),
			Reason:      "endogenous variable is not among the selected regressors",
		}
	}
	if len(params.Instruments) == 0 {
		return nil, &UnderidentifiedError{
			Endogenous: params.Endogenous,
			Reason:     "at least one instrument is required",
		}
	}

	n, p := x.Dims()
	seen := make(map[string]struct{}, len(params.Instruments))
	for _, inst := range params.Instruments {
		if x.ColumnIndex(inst.Name) >= 0 {
			return nil, invalidInput("instruments", "instrument %q is also a regressor", inst.Name)
		}
		if _, dup := seen[inst.Name]; dup {
			return nil, invalidInput("instruments", "duplicate instrument %q", inst.Name)
		}
		seen[inst.Name] = struct{}{}
		if len(inst.Values) != n {
			return nil, &DimensionMismatchError{Operation: "iv2sls", What: "instrument " + inst.Name + " length", Expected: n, Actual: len(inst.Values)}
		}
	}

	// Z = [const, exogenous regressors, instruments].
	zc := p - 1 + len(params.Instruments)
	if n <= zc {
		return nil, invalidInput("rows", "%d observations is not enough for %d first-stage columns", n, zc)
	}
	z := mat.NewDense(n, zc, nil)
	zNames := make([]string, 0, zc)
	col := 0
	for j := 0; j < p; j++ {
		if j == endog {
			continue
		}
		z.SetCol(col, x.Column(j))
		zNames = append(zNames, x.names[j])
		col++
	}
	for _, inst := range params.Instruments {
		for i, v := range inst.Values {
			if !isFinite(v) {
				return nil, invalidInput(inst.Name, "non-finite value at row %d", i)
			}
		}
		z.SetCol(col, inst.Values)
		zNames = append(zNames, inst.Name)
		col++
	}

	xEndog := x.Column(endog)
	first, err := leastSquares(z, xEndog, zNames, e.conditionLimit)
	if err != nil {
		return nil, err
	}
	xHatEndog := mulVec(z, first.beta)
	firstRSS := 0.0
	for i := range xEndog {
		d := xEndog[i] - xHatEndog[i]
		firstRSS += d * d
	}

	xHat := x.withColumn(endog, xHatEndog)
	second, err := leastSquares(xHat.data, y, xHat.names, e.conditionLimit)
	if err != nil {
		return nil, err
	}
	stage2 := olsModel(OLS, xHat, y, second)

	model := newFittedModel(IV2SLS, x, y, second.beta, stage2.cov, second.condition)
	model.firstStageR2 = rSquared(firstRSS, totalSumSquares(xEndog))
	model.endogenous = params.Endogenous
	model.instruments = params.InstrumentNames()
	return model, nil
}
