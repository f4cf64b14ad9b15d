// Package regression implements linear-model estimation and residual
// diagnostics.
//
// A model relates one response vector to k regressors plus an intercept.
// The package builds the design matrix, estimates coefficients and their
// covariance, and computes diagnostics and predictions from the result.
//
// # Estimators
//
//   - OLS: least squares via Householder QR; covariance σ̂²(XᵀX)⁻¹
//   - OLSRobustHC3: OLS coefficients with the HC3 sandwich covariance
//   - GLS: whitened least squares given an error covariance Ω; without Ω it
//     is numerically identical to OLS
//   - IV2SLS: two-stage least squares for a single endogenous regressor
//
// (XᵀX)⁻¹ is always obtained from the triangular QR factor. A design whose
// condition number exceeds the configured limit is rejected with a
// SingularMatrixError rather than silently reduced.
//
// # Diagnostics
//
// VarianceInflationFactors measures multicollinearity among the non-constant
// regressors. BreuschPagan tests whether squared residuals depend on the
// regressors; its auxiliary regression always includes the constant.
//
// # Usage Example
//
//	x, err := regression.BuildDesignMatrix(ds, []string{"X1", "X2"})
//	if err != nil {
//	    return err
//	}
//	y, _ := ds.Column("Y")
//	model, err := regression.Fit(y, x, regression.OLSRobustHC3, regression.MethodParams{})
//	if err != nil {
//	    return err
//	}
//	bp, err := regression.BreuschPagan(model, x)
//
// Every value returned by this package is immutable and request scoped; the
// package keeps no global state.
package regression
