package regression

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// DefaultConditionLimit is the largest condition number of X accepted before
// a design is reported as singular.
const DefaultConditionLimit = 1e12

// lsSolution is the result of one least-squares solve.
type lsSolution struct {
	beta      []float64
	xtxInv    *mat.SymDense // (XᵀX)⁻¹
	condition float64
}

// leastSquares solves min ‖Xb − y‖ with a Householder QR of X. (XᵀX)⁻¹ is
// formed as R⁻¹R⁻ᵀ from the triangular factor, never from XᵀX itself.
func leastSquares(x mat.Matrix, y []float64, names []string, condLimit float64) (*lsSolution, error) {
	n, p := x.Dims()
	if len(y) != n {
		return nil, &DimensionMismatchError{Operation: "least squares", What: "response length", Expected: n, Actual: len(y)}
	}
	if n < p {
		return nil, invalidInput("rows", "%d observations for %d columns", n, p)
	}
	if condLimit <= 0 {
		condLimit = DefaultConditionLimit
	}

	var qr mat.QR
	qr.Factorize(x)

	var r mat.Dense
	qr.RTo(&r)
	rt := mat.NewTriDense(p, mat.Upper, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			rt.SetTri(i, j, r.At(i, j))
		}
	}

	singular := func(cond float64) error {
		return &SingularMatrixError{
			Rows:      n,
			Cols:      p,
			Rank:      estimateRank(rt, condLimit),
			Condition: cond,
			Columns:   append([]string(nil), names...),
		}
	}

	cond := qr.Cond()
	if math.IsNaN(cond) || cond > condLimit {
		return nil, singular(cond)
	}

	var b mat.VecDense
	if err := qr.SolveVecTo(&b, false, mat.NewVecDense(n, append([]float64(nil), y...))); err != nil {
		return nil, singular(math.Inf(1))
	}

	var rinv mat.TriDense
	if err := rinv.InverseTri(rt); err != nil {
		return nil, singular(math.Inf(1))
	}
	var full mat.Dense
	full.Mul(&rinv, rinv.T())

	return &lsSolution{
		beta:      mat.Col(nil, 0, &b),
		xtxInv:    symmetrize(&full),
		condition: cond,
	}, nil
}

// estimateRank counts diagonal entries of R that are not negligible relative
// to the largest one at the given condition limit.
func estimateRank(r *mat.TriDense, condLimit float64) int {
	p, _ := r.Dims()
	maxDiag := 0.0
	for i := 0; i < p; i++ {
		maxDiag = math.Max(maxDiag, math.Abs(r.At(i, i)))
	}
	if maxDiag == 0 {
		return 0
	}
	tol := maxDiag / condLimit
	rank := 0
	for i := 0; i < p; i++ {
		if math.Abs(r.At(i, i)) > tol {
			rank++
		}
	}
	return rank
}

func symmetrize(a mat.Matrix) *mat.SymDense {
	p, _ := a.Dims()
	s := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			s.SetSym(i, j, 0.5*(a.At(i, j)+a.At(j, i)))
		}
	}
	return s
}

// mulVec returns X·β. Fitted values and predictions share this kernel.
func mulVec(x mat.Matrix, beta []float64) []float64 {
	n, _ := x.Dims()
	var out mat.VecDense
	out.MulVec(x, mat.NewVecDense(len(beta), append([]float64(nil), beta...)))
	return mat.Col(make([]float64, n), 0, &out)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
