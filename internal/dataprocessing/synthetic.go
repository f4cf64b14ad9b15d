package dataprocessing

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"econlab/internal/config"
	"econlab/internal/regression"
)

// Synthetic process constants.
const (
	RegressorSpan   = 10.0
	CoefficientLow  = 1.5
	CoefficientHigh = 3.5
	ResponseName    = "Y"
)

// SyntheticConfig describes y = Intercept + Xβ + Noise·ε with
// X ~ U(0, 10), β ~ U(1.5, 3.5) and ε ~ N(0, 1).
type SyntheticConfig struct {
	Samples   int
	Features  int
	Noise     float64
	Seed      int64
	Intercept float64
}

// DefaultSyntheticConfig mirrors the defaults of the interactive demo.
func DefaultSyntheticConfig() SyntheticConfig {
	return SyntheticConfig{Samples: 100, Features: 1, Noise: 0.5, Seed: 42, Intercept: 5}
}

// SyntheticResult carries the generated data and the true parameters.
type SyntheticResult struct {
	Dataset    *regression.Dataset
	Regressors []string
	Response   string
	Intercept  float64
	Beta       []float64
	Seed       int64
	// ResponseMean and ResponseStdDev describe the generated response.
	ResponseMean   float64
	ResponseStdDev float64
}

// Validate checks that the config is within the generator bounds and can
// produce an estimable dataset
func (c SyntheticConfig) Validate() error {
	if c.Features < 1 || c.Features > config.SyntheticMaxFeatures {
		return fmt.Errorf("features must be between 1 and %d, got %d", config.SyntheticMaxFeatures, c.Features)
	}
	if c.Samples < config.SyntheticMinSamples || c.Samples > config.SyntheticMaxSamples {
		return fmt.Errorf("samples must be between %d and %d, got %d",
			config.SyntheticMinSamples, config.SyntheticMaxSamples, c.Samples)
	}
	if c.Samples <= c.Features+1 {
		return fmt.Errorf("samples must exceed features+1 (%d), got %d", c.Features+1, c.Samples)
	}
	if c.Noise < 0 || c.Noise > config.SyntheticMaxNoise {
		return fmt.Errorf("noise must be between 0 and %g, got %g", config.SyntheticMaxNoise, c.Noise)
	}
	return nil
}

// GenerateSynthetic draws a dataset from a generator seeded with cfg.Seed.
// The generator is local to the call; nothing global is seeded.
func GenerateSynthetic(cfg SyntheticConfig) (*SyntheticResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid synthetic config: %w", err)
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	n, k := cfg.Samples, cfg.Features
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, k+1)
		for j := 0; j < k; j++ {
			rows[i][j] = rng.Float64() * RegressorSpan
		}
	}
	beta := make([]float64, k)
	for j := range beta {
		beta[j] = CoefficientLow + rng.Float64()*(CoefficientHigh-CoefficientLow)
	}
	y := make([]float64, n)
	for i, row := range rows {
		v := cfg.Intercept
		for j := 0; j < k; j++ {
			v += row[j] * beta[j]
		}
		v += cfg.Noise * rng.NormFloat64()
		row[k] = v
		y[i] = v
	}

	names := make([]string, k)
	for j := range names {
		names[j] = fmt.Sprintf("X%d", j+1)
	}
	ds, err := regression.NewDataset(append(append([]string(nil), names...), ResponseName), rows)
	if err != nil {
		return nil, err
	}
	mean, std := stat.MeanStdDev(y, nil)
	return &SyntheticResult{
		Dataset:        ds,
		Regressors:     names,
		Response:       ResponseName,
		Intercept:      cfg.Intercept,
		Beta:           beta,
		Seed:           cfg.Seed,
		ResponseMean:   mean,
		ResponseStdDev: std,
	}, nil
}
