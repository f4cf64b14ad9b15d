package regression

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// symmetryTolerance is the relative asymmetry accepted in a supplied Ω.
const symmetryTolerance = 1e-10

// fitGLS estimates β = (XᵀΩ⁻¹X)⁻¹XᵀΩ⁻¹y with covariance (XᵀΩ⁻¹X)⁻¹. With no
// Ω it runs exactly the OLS computation and tags the result GLS.
func (e *Estimator) fitGLS(y []float64, x *DesignMatrix, omega [][]float64) (*FittedModel, error) {
	if omega == nil {
		sol, err := leastSquares(x.data, y, x.names, e.conditionLimit)
		if err != nil {
			return nil, err
		}
		return olsModel(GLS, x, y, sol), nil
	}

	n, p := x.Dims()
	chol, err := factorOmega(omega, n)
	if err != nil {
		return nil, err
	}
	var l mat.TriDense
	chol.LTo(&l)

	// Whitening by L⁻¹ turns the problem into OLS on (L⁻¹X, L⁻¹y).
	var xs mat.Dense
	if err := xs.Solve(&l, x.data); err != nil {
		return nil, invalidInput("omega", "cannot whiten design: %v", err)
	}
	var ys mat.Dense
	if err := ys.Solve(&l, mat.NewDense(n, 1, append([]float64(nil), y...))); err != nil {
		return nil, invalidInput("omega", "cannot whiten response: %v", err)
	}

	sol, err := leastSquares(&xs, mat.Col(nil, 0, &ys), x.names, e.conditionLimit)
	if err != nil {
		return nil, err
	}
	cov := mat.NewSymDense(p, nil)
	cov.CopySym(sol.xtxInv)
	return newFittedModel(GLS, x, y, sol.beta, cov, sol.condition), nil
}

// factorOmega validates Ω as an n×n symmetric positive definite matrix and
// returns its Cholesky factorization.
func factorOmega(omega [][]float64, n int) (*mat.Cholesky, error) {
	if len(omega) != n {
		return nil, &DimensionMismatchError{Operation: "gls", What: "omega rows", Expected: n, Actual: len(omega)}
	}
	scale := 0.0
	for i, row := range omega {
		if len(row) != n {
			return nil, &DimensionMismatchError{Operation: "gls", What: "omega columns", Expected: n, Actual: len(row)}
		}
		for j, v := range row {
			if !isFinite(v) {
				return nil, invalidInput("omega", "non-finite value at (%d,%d)", i, j)
			}
			scale = math.Max(scale, math.Abs(v))
		}
	}
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if math.Abs(omega[i][j]-omega[j][i]) > symmetryTolerance*scale {
				return nil, invalidInput("omega", "matrix is not symmetric at (%d,%d)", i, j)
			}
			sym.SetSym(i, j, omega[i][j])
		}
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, invalidInput("omega", "matrix is not positive definite")
	}
	return &chol, nil
}
