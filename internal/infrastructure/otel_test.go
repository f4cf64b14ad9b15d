package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"econlab/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testTelemetryConfig() config.TelemetryConfig {
	return config.TelemetryConfig{
		ServiceName:    "econlab-test",
		Environment:    "test",
		TraceExporter:  "none",
		MetricsEnabled: true,
		SampleRatio:    1,
	}
}

func TestInitializeOTel(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*config.TelemetryConfig)
		wantTracing bool
		wantMetrics bool
		wantErr     bool
	}{
		{name: "metrics only", wantMetrics: true},
		{
			name:        "stdout tracing",
			mutate:      func(c *config.TelemetryConfig) { c.TraceExporter = "stdout" },
			wantTracing: true,
			wantMetrics: true,
		},
		{
			name: "everything disabled",
			mutate: func(c *config.TelemetryConfig) {
				c.MetricsEnabled = false
			},
		},
		{
			name:    "unknown exporter",
			mutate:  func(c *config.TelemetryConfig) { c.TraceExporter = "jaeger" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testTelemetryConfig()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}

			providers, err := InitializeOTel(cfg, "test", io.Discard, discardLogger())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			assert.NotNil(t, providers.Tracer)
			assert.NotNil(t, providers.Meter)
			assert.Equal(t, tt.wantTracing, providers.TracerProvider != nil)
			assert.Equal(t, tt.wantMetrics, providers.MeterProvider != nil)
			assert.Equal(t, tt.wantMetrics, providers.PrometheusHTTP != nil)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			assert.NoError(t, providers.Shutdown(ctx))
		})
	}
}

func TestTraceCorrelation(t *testing.T) {
	cfg := testTelemetryConfig()
	cfg.TraceExporter = "stdout"
	providers, err := InitializeOTel(cfg, "test", io.Discard, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := providers.Tracer.Start(context.Background(), "fit")
	defer span.End()

	traceID := TraceIDFromContext(ctx)
	require.NotEmpty(t, traceID)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)

	// The span ID is used when no explicit trace ID was attached.
	assert.Equal(t, traceID, GetTraceID(ctx))
	assert.Equal(t, "req-1", GetTraceID(WithTraceID(ctx, "req-1")))

	AddSpanEvent(ctx, "design.built", map[string]interface{}{"rows": 10, "names": []string{"const", "X1"}})
	SetSpanAttributes(ctx, map[string]interface{}{"regression.method": "OLS", "ok": true})
	RecordError(ctx, errors.New("singular"))
}

func TestRegressionMetricsExport(t *testing.T) {
	providers, err := InitializeOTel(testTelemetryConfig(), "test", nil, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := NewRegressionMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordFit(ctx, "OLS", 120, 3*time.Millisecond, nil)
	metrics.RecordFit(ctx, "IV2SLS", 0, time.Millisecond, errors.New("underidentified"))
	metrics.RecordHTTPRequest(ctx, http.MethodPost, "/api/v1/analysis/fit", http.StatusOK, 5*time.Millisecond)
	metrics.RecordError(ctx, "invalid_input")

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "regression_fits_total")
	assert.Contains(t, body, `method="IV2SLS"`)
	assert.Contains(t, body, "http_requests_total")
	assert.Contains(t, body, "go_goroutines")
}

func TestRegressionMetricsNilSafe(t *testing.T) {
	var m *RegressionMetrics
	assert.NotPanics(t, func() {
		m.RecordFit(context.Background(), "OLS", 10, time.Second, nil)
		m.RecordHTTPRequest(context.Background(), http.MethodGet, "/", 200, time.Second)
		m.RecordError(context.Background(), "x")
	})

	noop, err := NewRegressionMetrics(nil)
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		noop.RecordFit(context.Background(), "GLS", 10, time.Second, nil)
	})
}

func TestStdoutTraceExporterWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	cfg := testTelemetryConfig()
	cfg.TraceExporter = "stdout"
	cfg.MetricsEnabled = false

	providers, err := InitializeOTel(cfg, "test", &buf, discardLogger())
	require.NoError(t, err)

	_, span := providers.Tracer.Start(context.Background(), "regression.fit")
	span.End()
	require.NoError(t, providers.Shutdown(context.Background()))

	assert.Contains(t, buf.String(), "regression.fit")
}
