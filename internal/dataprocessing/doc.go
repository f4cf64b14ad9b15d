// Package dataprocessing turns tabular input into regression datasets.
//
// Two sources are supported:
//
//  1. Files: CSV (encoding/csv) and Excel workbooks (excelize). The first row
//     holds column names and every other cell must be numeric. Blank cells are
//     rejected; nothing is imputed.
//  2. Synthetic data: a linear process with uniform regressors, uniform true
//     coefficients and Gaussian noise. Every call takes an explicit seed and
//     draws from its own generator, so identical configs give identical data.
//
// # Usage
//
//	ds, err := dataprocessing.ParseFile("wages.xlsx", dataprocessing.ParseOptions{})
//	if err != nil {
//	    return err
//	}
//
//	sim, err := dataprocessing.GenerateSynthetic(dataprocessing.SyntheticConfig{
//	    Samples: 100, Features: 2, Noise: 0.5, Seed: 42, Intercept: 5,
//	})
package dataprocessing
