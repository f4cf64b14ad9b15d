// Package services implements the application layer of econlab. It sits
// between the HTTP handlers and the estimation engine in package regression.
//
// # Services
//
//   - AnalysisService fits models, runs diagnostics, predicts and compares
//     estimation methods. It enforces the configured workload limits, opens
//     OpenTelemetry spans around every fit and records regression metrics.
//   - DatasetService generates seeded synthetic datasets and parses CSV/XLSX
//     uploads.
//   - HealthService backs the health, readiness and liveness endpoints.
//
// Services receive their logger, tracer and metrics by injection and never
// reach for package globals. Estimation errors keep the typed errors of
// package regression so the transport layer can map them to problem details.
//
// # Concurrency
//
// AnalysisService.Compare fits methods in parallel with errgroup, bounded by
// RegressionConfig.CompareConcurrency. Every goroutine works on the same
// immutable dataset and builds its own design matrix.
package services
