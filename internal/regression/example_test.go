package regression_test

import (
	"errors"
	"fmt"

	"econlab/internal/regression"
)

func Example() {
	ds, _ := regression.NewDataset([]string{"X", "Y"}, [][]float64{
		{1, 3}, {2, 5}, {3, 7}, {4, 9},
	})
	x, _ := regression.BuildDesignMatrix(ds, []string{"X"})
	y, _ := ds.Column("Y")

	model, err := regression.Fit(y, x, regression.OLS, regression.MethodParams{})
	if err != nil {
		fmt.Println(err)
		return
	}
	coef := model.Coefficients()
	fmt.Printf("intercept=%.4f slope=%.4f r2=%.4f\n", coef[0], coef[1], model.RSquared())

	vif, _ := regression.VarianceInflationFactors(x)
	fmt.Println("vif applicable:", vif.Applicable)
	// Output:
	// intercept=1.0000 slope=2.0000 r2=1.0000
	// vif applicable: false
}

func ExampleFit_singular() {
	ds, _ := regression.NewDataset([]string{"A", "B", "Y"}, [][]float64{
		{1, 1, 2}, {2, 2, 3}, {3, 3, 5}, {4, 4, 4}, {5, 5, 7},
	})
	x, _ := regression.BuildDesignMatrix(ds, []string{"A", "B"})
	y, _ := ds.Column("Y")

	_, err := regression.Fit(y, x, regression.OLS, regression.MethodParams{})
	fmt.Println(errors.Is(err, regression.ErrSingularMatrix))
	// Output:
	// true
}
