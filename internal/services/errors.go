package services

import "errors"

// Service-level errors. Estimation failures keep the typed errors of the
// regression package.
var (
	ErrTooManyObservations = errors.New("dataset exceeds the configured observation limit")
	ErrTooManyRegressors   = errors.New("model exceeds the configured regressor limit")
	ErrMethodNotApplicable = errors.New("method not applicable to the request")
	ErrNoDataset           = errors.New("no dataset supplied")
)
