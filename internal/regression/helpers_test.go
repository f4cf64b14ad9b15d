package regression

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// simulate draws n rows of k uniform(0,10) regressors and a response
// y = beta[0] + Σ beta[j]·xj + noise(i, row).
func simulate(rng *rand.Rand, n int, beta []float64, noise func(row []float64) float64) *Dataset {
	k := len(beta) - 1
	cols := make([]string, 0, k+1)
	for j := 1; j <= k; j++ {
		cols = append(cols, fmt.Sprintf("X%d", j))
	}
	cols = append(cols, "Y")
	rows := make([][]float64, n)
	for i := range rows {
		row := make([]float64, k+1)
		y := beta[0]
		for j := 0; j < k; j++ {
			row[j] = rng.Float64() * 10
			y += beta[j+1] * row[j]
		}
		row[k] = y + noise(row[:k])
		rows[i] = row
	}
	return &Dataset{Columns: cols, Rows: rows}
}

func gaussian(rng *rand.Rand, sd float64) func([]float64) float64 {
	return func([]float64) float64 { return rng.NormFloat64() * sd }
}

func regressorNames(ds *Dataset) []string {
	return ds.Columns[:len(ds.Columns)-1]
}

func mustDesign(t testing.TB, ds *Dataset) (*DesignMatrix, []float64) {
	t.Helper()
	x, err := BuildDesignMatrix(ds, regressorNames(ds))
	require.NoError(t, err)
	y, err := ds.Column("Y")
	require.NoError(t, err)
	return x, y
}

// normalEquations solves (XᵀX)β = Xᵀy with an explicit inverse. It is an
// independent reference for well-conditioned inputs only.
func normalEquations(t *testing.T, x mat.Matrix, y []float64) ([]float64, *mat.Dense) {
	t.Helper()
	_, p := x.Dims()
	var xtx, inv mat.Dense
	xtx.Mul(x.T(), x)
	require.NoError(t, inv.Inverse(&xtx))
	var xty, beta mat.VecDense
	xty.MulVec(x.T(), mat.NewVecDense(len(y), y))
	beta.MulVec(&inv, &xty)
	return mat.Col(make([]float64, p), 0, &beta), &inv
}

func assertRelClose(t *testing.T, want, got []float64, tol float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		scale := math.Max(1, math.Abs(want[i]))
		if math.Abs(want[i]-got[i]) > tol*scale {
			t.Errorf("element %d: want %.12g, got %.12g", i, want[i], got[i])
		}
	}
}
