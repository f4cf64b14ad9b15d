package services

import (
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"econlab/internal/config"
	"econlab/internal/regression"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRegressionConfig() config.RegressionConfig {
	return config.Default().Regression
}

// linearDataset returns y = 5 + 2·x1 - 1·x2 + N(0, 0.5).
func linearDataset(t *testing.T, n int, seed int64) *regression.Dataset {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	rows := make([][]float64, n)
	for i := range rows {
		x1 := rng.Float64() * 10
		x2 := rng.Float64() * 10
		rows[i] = []float64{x1, x2, 5 + 2*x1 - x2 + 0.5*rng.NormFloat64()}
	}
	ds, err := regression.NewDataset([]string{"x1", "x2", "y"}, rows)
	require.NoError(t, err)
	return ds
}

// ivDataset has x endogenous through u, and z as a valid instrument.
func ivDataset(t *testing.T, n int, seed int64) *regression.Dataset {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	rows := make([][]float64, n)
	for i := range rows {
		z := rng.Float64() * 10
		u := rng.NormFloat64()
		x := 2*z + u
		rows[i] = []float64{x, z, 1 + 3*x + 2*u + 0.1*rng.NormFloat64()}
	}
	ds, err := regression.NewDataset([]string{"x", "z", "y"}, rows)
	require.NoError(t, err)
	return ds
}
