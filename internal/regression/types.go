package regression

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Method identifies one of the four supported estimators.
type Method int

const (
	// OLS is ordinary least squares with the classical covariance.
	OLS Method = iota
	// OLSRobustHC3 is OLS with the HC3 heteroskedasticity-consistent covariance.
	OLSRobustHC3
	// GLS is generalized least squares with an optional error covariance Ω.
	GLS
	// IV2SLS is two-stage least squares for one endogenous regressor.
	IV2SLS
)

// Methods lists every estimator in dispatch order.
var Methods = []Method{OLS, OLSRobustHC3, GLS, IV2SLS}

// String returns the canonical name used in reports and the API
func (m Method) String() string {
	switch m {
	case OLS:
		return "OLS"
	case OLSRobustHC3:
		return "OLS_RobustHC3"
	case GLS:
		return "GLS"
	case IV2SLS:
		return "IV2SLS"
	default:
		return "unknown"
	}
}

// ParseMethod maps a method name (case-insensitive, "_" and "-" optional) to a Method.
func ParseMethod(s string) (Method, error) {
	key := strings.ToUpper(strings.NewReplacer("_", "", "-", "", " ", "").Replace(s))
	switch key {
	case "OLS":
		return OLS, nil
	case "OLSROBUSTHC3", "HC3", "ROBUST":
		return OLSRobustHC3, nil
	case "GLS":
		return GLS, nil
	case "IV2SLS", "2SLS", "IV":
		return IV2SLS, nil
	default:
		return 0, invalidInput("method", "unknown estimation method %q", s)
	}
}

// Column is a named vector of observations.
type Column struct {
	Name   string
	Values []float64
}

// MethodParams carries the method-specific inputs. Fields that do not apply
// to the chosen Method are ignored.
type MethodParams struct {
	// Endogenous names the single endogenous regressor for IV2SLS.
	Endogenous string
	// Instruments are the excluded instruments for IV2SLS.
	Instruments []Column
	// Omega is the n×n error covariance for GLS. Nil means identity.
	Omega [][]float64
}

// InstrumentNames returns the instrument names in order
func (p MethodParams) InstrumentNames() []string {
	names := make([]string, len(p.Instruments))
	for i, c := range p.Instruments {
		names[i] = c.Name
	}
	return names
}

// Dataset is an in-memory rectangular table of named numeric columns.
// Rows[i][j] is observation i of Columns[j].
type Dataset struct {
	Columns []string
	Rows    [][]float64
}

// NewDataset builds a dataset and validates it.
func NewDataset(columns []string, rows [][]float64) (*Dataset, error) {
	ds := &Dataset{Columns: columns, Rows: rows}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// Validate checks that column names are unique and non-empty and every row is
// complete and finite.
func (d *Dataset) Validate() error {
	if len(d.Columns) == 0 {
		return invalidInput("columns", "dataset has no columns")
	}
	seen := make(map[string]struct{}, len(d.Columns))
	for _, c := range d.Columns {
		if strings.TrimSpace(c) == "" {
			return invalidInput("columns", "empty column name")
		}
		if _, dup := seen[c]; dup {
			return invalidInput("columns", "duplicate column %q", c)
		}
		seen[c] = struct{}{}
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Columns) {
			return invalidInput("rows", "row %d has %d values, expected %d", i, len(row), len(d.Columns))
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return invalidInput(d.Columns[j], "non-finite value at row %d", i)
			}
		}
	}
	return nil
}

// Observation maps variable names to values for a single row.
type Observation map[string]float64

// DatasetFromObservations builds a dataset from per-row mappings. Every
// observation must carry the same variable names; columns are sorted by name.
func DatasetFromObservations(obs []Observation) (*Dataset, error) {
	if len(obs) == 0 {
		return nil, invalidInput("observations", "no observations")
	}
	columns := make([]string, 0, len(obs[0]))
	for name := range obs[0] {
		columns = append(columns, name)
	}
	sort.Strings(columns)

	rows := make([][]float64, len(obs))
	for i, o := range obs {
		if len(o) != len(columns) {
			return nil, invalidInput("observations", "observation %d has %d variables, expected %d", i, len(o), len(columns))
		}
		row := make([]float64, len(columns))
		for j, name := range columns {
			v, ok := o[name]
			if !ok {
				return nil, invalidInput(name, "missing from observation %d", i)
			}
			row[j] = v
		}
		rows[i] = row
	}
	return NewDataset(columns, rows)
}

// Len returns the number of observations
func (d *Dataset) Len() int { return len(d.Rows) }

// Index returns the position of a column, or -1.
func (d *Dataset) Index(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of the named column.
func (d *Dataset) Column(name string) ([]float64, error) {
	j := d.Index(name)
	if j < 0 {
		return nil, invalidInput("column", "unknown column %q", name)
	}
	out := make([]float64, len(d.Rows))
	for i, row := range d.Rows {
		out[i] = row[j]
	}
	return out, nil
}

// ColumnSet returns copies of several named columns, in order.
func (d *Dataset) ColumnSet(names []string) ([]Column, error) {
	out := make([]Column, 0, len(names))
	for _, name := range names {
		v, err := d.Column(name)
		if err != nil {
			return nil, err
		}
		out = append(out, Column{Name: name, Values: v})
	}
	return out, nil
}

func (d *Dataset) String() string {
	return fmt.Sprintf("Dataset(%d×%d)", len(d.Rows), len(d.Columns))
}
