package observability

import (
	"context"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"

	"lead-automation/internal/common/logger"
)

// Observability owns the otel meter used for workflow-level measurements.
// Readings are exported through the default Prometheus registry.
type Observability struct {
	meterProvider    *metric.MeterProvider
	meter            otelmetric.Meter
	workflowCounter  otelmetric.Int64Counter
	workflowDuration otelmetric.Float64Histogram
	stepErrors       otelmetric.Int64Counter
}

func New(serviceName string, log logger.Logger) *Observability {
	return NewWithRegisterer(serviceName, promclient.DefaultRegisterer, log)
}

// NewWithRegisterer exports into reg. Tests pass a fresh registry.
func NewWithRegisterer(serviceName string, reg promclient.Registerer, log logger.Logger) *Observability {
	exporter, err := prometheus.New(prometheus.WithRegisterer(reg))
	if err != nil {
		log.Warn("failed to create Prometheus exporter", map[string]interface{}{"error": err.Error()})
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	workflowCounter, _ := meter.Int64Counter(
		"lead.workflows",
		otelmetric.WithDescription("Number of lead automation runs"),
	)

	workflowDuration, _ := meter.Float64Histogram(
		"lead.workflow.duration",
		otelmetric.WithDescription("Lead automation run duration"),
		otelmetric.WithUnit("ms"),
	)

	stepErrors, _ := meter.Int64Counter(
		"lead.workflow.step_errors",
		otelmetric.WithDescription("Failed automation steps"),
	)

	return &Observability{
		meterProvider:    provider,
		meter:            meter,
		workflowCounter:  workflowCounter,
		workflowDuration: workflowDuration,
		stepErrors:       stepErrors,
	}
}

// RecordWorkflow records one finished run.
func (o *Observability) RecordWorkflow(ctx context.Context, duration time.Duration, success bool, errorCount int) {
	if o == nil {
		return
	}
	status := attribute.Bool("success", success)
	if o.workflowCounter != nil {
		o.workflowCounter.Add(ctx, 1, otelmetric.WithAttributes(status))
	}
	if o.workflowDuration != nil {
		o.workflowDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(status))
	}
	if o.stepErrors != nil && errorCount > 0 {
		o.stepErrors.Add(ctx, int64(errorCount))
	}
}

// Handler serves the default Prometheus registry, which holds both the promauto
// vectors and the otel exporter's readings.
func Handler() http.Handler {
	return promhttp.Handler()
}

func (o *Observability) Shutdown() {
	if o != nil && o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = o.meterProvider.Shutdown(ctx)
	}
}
