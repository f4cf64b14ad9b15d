// Package http implements the HTTP handlers of the econlab API. Handlers are
// a thin layer between the chi router and the services: they decode and
// validate requests, convert wire contracts to domain inputs, call a service
// and render the result.
//
// # Routes
//
//	POST /api/v1/analysis/fit        fit one model with diagnostics
//	POST /api/v1/analysis/predict    fit and evaluate on new rows
//	POST /api/v1/analysis/compare    fit several methods side by side
//	POST /api/v1/datasets/synthetic  generate a seeded dataset
//	POST /api/v1/datasets/upload     parse a CSV or XLSX upload
//	GET  /api/health[/ready|/live]   health probes
//	GET  /api/version                build information
//
// # Errors
//
// Every failure is rendered as RFC 7807 problem details by
// errors.ErrorHandler. Typed estimation errors keep their own problem types;
// service limit errors are converted to API errors here first.
package http
