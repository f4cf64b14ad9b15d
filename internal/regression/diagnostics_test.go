package regression

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestVarianceInflationFactors(t *testing.T) {
	t.Run("single regressor is not applicable", func(t *testing.T) {
		x, _ := exactLine(t)
		vif, err := VarianceInflationFactors(x)
		require.NoError(t, err)
		assert.False(t, vif.Applicable)
		assert.Empty(t, vif.Values)
		assert.Equal(t, []string{"X"}, vif.Names)
	})

	t.Run("independent regressors near one", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		ds := simulate(rng, 2000, []float64{1, 1, 1, 1}, gaussian(rng, 1))
		x, _ := mustDesign(t, ds)

		vif, err := VarianceInflationFactors(x)
		require.NoError(t, err)
		require.True(t, vif.Applicable)
		assert.Equal(t, []string{"X1", "X2", "X3"}, vif.Names)
		for _, v := range vif.Values {
			assert.GreaterOrEqual(t, v, 1.0)
			assert.InDelta(t, 1.0, v, 0.05)
		}
	})

	t.Run("two regressors equal 1/(1-r²)", func(t *testing.T) {
		rng := rand.New(rand.NewSource(2))
		rows := make([][]float64, 100)
		a := make([]float64, 100)
		b := make([]float64, 100)
		for i := range rows {
			a[i] = rng.NormFloat64()
			b[i] = 0.8*a[i] + 0.6*rng.NormFloat64()
			rows[i] = []float64{a[i], b[i], a[i] + b[i]}
		}
		ds, err := NewDataset([]string{"A", "B", "Y"}, rows)
		require.NoError(t, err)
		x, err := BuildDesignMatrix(ds, []string{"A", "B"})
		require.NoError(t, err)

		vif, err := VarianceInflationFactors(x)
		require.NoError(t, err)
		r := stat.Correlation(a, b, nil)
		want := 1 / (1 - r*r)
		assert.InDelta(t, want, vif.Values[0], 1e-9)
		assert.InDelta(t, want, vif.Values[1], 1e-9)
		assert.Greater(t, want, 2.0)
	})

	t.Run("perfectly collinear regressors inflate without bound", func(t *testing.T) {
		rows := [][]float64{{1, 2, 1}, {2, 4, 3}, {3, 6, 2}, {4, 8, 5}, {5, 10, 4}}
		ds, err := NewDataset([]string{"A", "B", "Y"}, rows)
		require.NoError(t, err)
		x, err := BuildDesignMatrix(ds, []string{"A", "B"})
		require.NoError(t, err)

		vif, err := VarianceInflationFactors(x)
		require.NoError(t, err)
		for _, v := range vif.Values {
			assert.Greater(t, v, 1e10)
		}
	})

	t.Run("nil design", func(t *testing.T) {
		_, err := VarianceInflationFactors(nil)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestBreuschPagan(t *testing.T) {
	t.Run("statistic is n times auxiliary R squared", func(t *testing.T) {
		rng := rand.New(rand.NewSource(4))
		ds := simulate(rng, 120, []float64{2, 1, -1}, gaussian(rng, 1))
		x, y := mustDesign(t, ds)
		model, err := Fit(y, x, OLS, MethodParams{})
		require.NoError(t, err)

		bp, err := BreuschPagan(model, x)
		require.NoError(t, err)
		assert.Equal(t, 2, bp.DF)
		assert.GreaterOrEqual(t, bp.Statistic, 0.0)
		assert.InDelta(t, 120*bp.AuxRSquared, bp.Statistic, 1e-9)
		assert.InDelta(t, distuv.ChiSquared{K: 2}.Survival(bp.Statistic), bp.PValue, 1e-12)
	})

	t.Run("false positive rate near nominal", func(t *testing.T) {
		const reps = 200
		rejections := 0
		for r := 0; r < reps; r++ {
			rng := rand.New(rand.NewSource(int64(1000 + r)))
			ds := simulate(rng, 200, []float64{1, 0.5, 2}, gaussian(rng, 1))
			x, y := mustDesign(t, ds)
			model, err := Fit(y, x, OLS, MethodParams{})
			require.NoError(t, err)
			bp, err := BreuschPagan(model, x)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, bp.Statistic, 0.0)
			if bp.PValue < 0.05 {
				rejections++
			}
		}
		rate := float64(rejections) / reps
		assert.GreaterOrEqual(t, rate, 0.01)
		assert.LessOrEqual(t, rate, 0.12)
	})

	t.Run("detects variance growing with a regressor", func(t *testing.T) {
		rng := rand.New(rand.NewSource(8))
		ds := simulate(rng, 200, []float64{1, 0.5, 2}, func(row []float64) float64 {
			return rng.NormFloat64() * (0.1 + row[0])
		})
		x, y := mustDesign(t, ds)
		model, err := Fit(y, x, OLSRobustHC3, MethodParams{})
		require.NoError(t, err)

		bp, err := BreuschPagan(model, x)
		require.NoError(t, err)
		assert.Less(t, bp.PValue, 0.01)
	})

	t.Run("exact fit has no heteroskedasticity", func(t *testing.T) {
		x, y := exactLine(t)
		model, err := Fit(y, x, OLS, MethodParams{})
		require.NoError(t, err)
		bp, err := BreuschPagan(model, x)
		require.NoError(t, err)
		assert.False(t, math.IsNaN(bp.Statistic))
		assert.GreaterOrEqual(t, bp.Statistic, 0.0)
	})

	t.Run("design mismatch", func(t *testing.T) {
		x, y := exactLine(t)
		model, err := Fit(y, x, OLS, MethodParams{})
		require.NoError(t, err)

		wide, err := NewDesignMatrix([]string{"A", "B"}, [][]float64{{1, 2}, {2, 1}, {3, 5}, {4, 4}})
		require.NoError(t, err)
		_, err = BreuschPagan(model, wide)
		assert.ErrorIs(t, err, ErrDimensionMismatch)

		short, err := NewDesignMatrix([]string{"X"}, [][]float64{{1}, {2}})
		require.NoError(t, err)
		_, err = BreuschPagan(model, short)
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})
}

func TestDiagnose(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	ds := simulate(rng, 100, []float64{0, 1, 1}, gaussian(rng, 1))
	x, y := mustDesign(t, ds)
	model, err := Fit(y, x, OLS, MethodParams{})
	require.NoError(t, err)

	report, err := NewDiagnostics(0, testLogger()).Diagnose(context.Background(), model, x)
	require.NoError(t, err)
	assert.True(t, report.VIF.Applicable)
	assert.Len(t, report.VIF.Values, 2)
	assert.Equal(t, 2, report.BreuschPagan.DF)
}
