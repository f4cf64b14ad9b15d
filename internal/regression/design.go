package regression

import (
	"gonum.org/v1/gonum/mat"
)

// ConstantName labels the intercept column of every design matrix.
const ConstantName = "const"

// DesignMatrix is an n×(k+1) matrix whose column 0 is the constant 1.0 and
// whose columns 1..k hold the selected regressors in caller order. It is
// never mutated after construction.
type DesignMatrix struct {
	data  *mat.Dense
	names []string
}

// BuildDesignMatrix selects regressors from a dataset and prepends the
// constant column. It requires at least one more row than columns.
func BuildDesignMatrix(ds *Dataset, regressors []string) (*DesignMatrix, error) {
	if ds == nil {
		return nil, invalidInput("dataset", "dataset is nil")
	}
	if err := checkRegressors(regressors); err != nil {
		return nil, err
	}
	idx := make([]int, len(regressors))
	for i, name := range regressors {
		j := ds.Index(name)
		if j < 0 {
			return nil, invalidInput("regressors", "unknown regressor %q", name)
		}
		idx[i] = j
	}
	n, p := ds.Len(), len(regressors)+1
	if n <= p {
		return nil, invalidInput("rows", "%d observations is not enough for %d regressors plus a constant (need more than %d)", n, p-1, p)
	}

	data := mat.NewDense(n, p, nil)
	for i, row := range ds.Rows {
		data.Set(i, 0, 1)
		for c, j := range idx {
			data.Set(i, c+1, row[j])
		}
	}
	return &DesignMatrix{data: data, names: withConstant(regressors)}, nil
}

// NewDesignMatrix builds a design matrix from raw regressor rows, such as new
// observations to predict. The row-count requirement of estimation does not
// apply here.
func NewDesignMatrix(regressors []string, rows [][]float64) (*DesignMatrix, error) {
	if err := checkRegressors(regressors); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, invalidInput("rows", "no rows")
	}
	p := len(regressors) + 1
	data := mat.NewDense(len(rows), p, nil)
	for i, row := range rows {
		if len(row) != len(regressors) {
			return nil, &DimensionMismatchError{Operation: "design matrix", What: "row width", Expected: len(regressors), Actual: len(row)}
		}
		data.Set(i, 0, 1)
		for j, v := range row {
			if !isFinite(v) {
				return nil, invalidInput(regressors[j], "non-finite value at row %d", i)
			}
			data.Set(i, j+1, v)
		}
	}
	return &DesignMatrix{data: data, names: withConstant(regressors)}, nil
}

func checkRegressors(regressors []string) error {
	if len(regressors) == 0 {
		return invalidInput("regressors", "at least one regressor is required")
	}
	seen := make(map[string]struct{}, len(regressors))
	for _, name := range regressors {
		if name == ConstantName {
			return invalidInput("regressors", "%q is reserved for the intercept", ConstantName)
		}
		if _, dup := seen[name]; dup {
			return invalidInput("regressors", "duplicate regressor %q", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

func withConstant(regressors []string) []string {
	names := make([]string, 0, len(regressors)+1)
	names = append(names, ConstantName)
	return append(names, regressors...)
}

// Dims returns (observations, columns including the constant).
func (d *DesignMatrix) Dims() (int, int) { return d.data.Dims() }

// Matrix returns a copy of the underlying data.
func (d *DesignMatrix) Matrix() *mat.Dense { return mat.DenseCopyOf(d.data) }

// Names returns the column names, "const" first.
func (d *DesignMatrix) Names() []string { return append([]string(nil), d.names...) }

// Regressors returns the non-constant column names.
func (d *DesignMatrix) Regressors() []string { return append([]string(nil), d.names[1:]...) }

// At returns element (i, j).
func (d *DesignMatrix) At(i, j int) float64 { return d.data.At(i, j) }

// ColumnIndex returns the position of a named column, or -1.
func (d *DesignMatrix) ColumnIndex(name string) int {
	for i, n := range d.names {
		if n == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of column j.
func (d *DesignMatrix) Column(j int) []float64 {
	return mat.Col(nil, j, d.data)
}

// withColumn returns a copy whose column j is replaced by v.
func (d *DesignMatrix) withColumn(j int, v []float64) *DesignMatrix {
	data := mat.DenseCopyOf(d.data)
	data.SetCol(j, v)
	return &DesignMatrix{data: data, names: d.names}
}
