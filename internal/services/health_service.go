package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"time"

	"econlab/internal/regression"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version string, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck fits a tiny known model to prove the numeric stack works.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  map[string]ServiceHealth{"estimator": hs.checkEstimator()},
	}
	for name, svc := range status.Services {
		if svc.Status != "ready" {
			status.Status = "not_ready"
			hs.logger.WarnContext(ctx, "readiness check failed",
				slog.String("service", name),
				slog.String("message", svc.Message))
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Uptime reports how long the service has been running.
func (hs *HealthService) Uptime() time.Duration {
	return time.Since(hs.startTime)
}

// checkEstimator fits y = 1 + 2x on four points.
func (hs *HealthService) checkEstimator() ServiceHealth {
	x, err := regression.NewDesignMatrix([]string{"x"}, [][]float64{{1}, {2}, {3}, {4}})
	if err != nil {
		return ServiceHealth{Status: "not_ready", Message: err.Error()}
	}
	model, err := regression.Fit([]float64{3, 5, 7, 9}, x, regression.OLS, regression.MethodParams{})
	if err != nil {
		return ServiceHealth{Status: "not_ready", Message: err.Error()}
	}
	coef := model.Coefficients()
	if math.Abs(coef[0]-1) > 1e-9 || math.Abs(coef[1]-2) > 1e-9 {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("canary fit returned %v, expected [1 2]", coef),
		}
	}
	return ServiceHealth{Status: "ready", Message: "estimator is healthy"}
}
