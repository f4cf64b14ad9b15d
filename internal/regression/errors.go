package regression

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for errors.Is matching. Every concrete error type below
// reports Is == true for its sentinel.
var (
	ErrInvalidInput      = errors.New("invalid regression input")
	ErrSingularMatrix    = errors.New("singular design matrix")
	ErrUnderidentified   = errors.New("model is underidentified")
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// InvalidInputError reports a malformed request: empty or unknown regressor
// selection, too few rows, non-finite values or an unusable parameter.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

func invalidInput(field, format string, args ...any) *InvalidInputError {
	return &InvalidInputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// SingularMatrixError is returned when a matrix that must be inverted is rank
// deficient or too ill-conditioned to be trusted. Columns are never dropped
// silently; the caller has to change the regressor selection.
type SingularMatrixError struct {
	Rows      int
	Cols      int
	Rank      int
	Condition float64
	Columns   []string
}

func (e *SingularMatrixError) Error() string {
	msg := fmt.Sprintf("singular design matrix: %dx%d, estimated rank %d, condition number %.3g",
		e.Rows, e.Cols, e.Rank, e.Condition)
	if len(e.Columns) > 0 {
		msg += " (columns: " + strings.Join(e.Columns, ", ") + ")"
	}
	return msg
}

func (e *SingularMatrixError) Is(target error) bool { return target == ErrSingularMatrix }

// UnderidentifiedError is returned by IV2SLS when identification fails.
type UnderidentifiedError struct {
	Endogenous  string
	Instruments int
	Reason      string
}

func (e *UnderidentifiedError) Error() string {
	return fmt.Sprintf("underidentified model (endogenous %q, %d instruments): %s",
		e.Endogenous, e.Instruments, e.Reason)
}

func (e *UnderidentifiedError) Is(target error) bool { return target == ErrUnderidentified }

// DimensionMismatchError reports operands whose shapes disagree.
type DimensionMismatchError struct {
	Operation string
	Expected  int
	Actual    int
	What      string
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: dimension mismatch in %s: expected %d, got %d",
		e.Operation, e.What, e.Expected, e.Actual)
}

func (e *DimensionMismatchError) Is(target error) bool { return target == ErrDimensionMismatch }
