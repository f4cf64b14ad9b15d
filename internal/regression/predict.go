package regression

// Predict returns X·β for a fitted model. It shares the kernel used for
// in-sample fitted values, so predicting on the estimation design
// reproduces FittedValues exactly.
func Predict(model *FittedModel, x *DesignMatrix) ([]float64, error) {
	if model == nil {
		return nil, invalidInput("model", "model is nil")
	}
	if x == nil {
		return nil, invalidInput("design", "design matrix is nil")
	}
	_, p := x.Dims()
	if p != len(model.coef) {
		return nil, &DimensionMismatchError{Operation: "predict", What: "design columns", Expected: len(model.coef), Actual: p}
	}
	return mulVec(x.data, model.coef), nil
}
