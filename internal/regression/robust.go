package regression

import (
	"gonum.org/v1/gonum/mat"
)

// leverageFloor guards 1−hᵢᵢ. Observations with leverage this close to one
// are fitted exactly and get zero weight.
const leverageFloor = 1e-12

// fitHC3 keeps the OLS point estimate and replaces the covariance by the HC3
// sandwich A·Xᵀdiag(w)X·A, A = (XᵀX)⁻¹, wᵢ = eᵢ²/(1−hᵢᵢ)².
func (e *Estimator) fitHC3(y []float64, x *DesignMatrix) (*FittedModel, error) {
	sol, err := leastSquares(x.data, y, x.names, e.conditionLimit)
	if err != nil {
		return nil, err
	}
	fitted := mulVec(x.data, sol.beta)
	resid := make([]float64, len(y))
	for i := range y {
		resid[i] = y[i] - fitted[i]
	}
	cov := hc3Covariance(x.data, sol.xtxInv, resid)
	return newFittedModel(OLSRobustHC3, x, y, sol.beta, cov, sol.condition), nil
}

func hc3Covariance(x mat.Matrix, xtxInv *mat.SymDense, resid []float64) *mat.SymDense {
	n, p := x.Dims()
	h := leverages(x, xtxInv)

	weighted := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		w := 0.0
		if d := 1 - h[i]; d > leverageFloor {
			w = resid[i] * resid[i] / (d * d)
		}
		for j := 0; j < p; j++ {
			weighted.Set(i, j, w*x.At(i, j))
		}
	}

	var meat, left, sandwich mat.Dense
	meat.Mul(x.T(), weighted)
	left.Mul(xtxInv, &meat)
	sandwich.Mul(&left, xtxInv)
	return symmetrize(&sandwich)
}

// leverages returns the diagonal of the hat matrix X(XᵀX)⁻¹Xᵀ.
func leverages(x mat.Matrix, xtxInv *mat.SymDense) []float64 {
	n, p := x.Dims()
	var xa mat.Dense
	xa.Mul(x, xtxInv)
	h := make([]float64, n)
	for i := 0; i < n; i++ {
		s := 0.0
		for j := 0; j < p; j++ {
			s += xa.At(i, j) * x.At(i, j)
		}
		h[i] = s
	}
	return h
}
