package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

var promReaderFactory = prometheusComponents

type TelemetryConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
}

// Setup builds a meter provider backed by a Prometheus registry. It returns
// the Recorder, the /metrics handler (nil when disabled) and a shutdown
// function.
func Setup(ctx context.Context, cfg TelemetryConfig) (*Recorder, http.Handler, func(context.Context) error, error) {
	if !cfg.Enabled {
		return NewRecorder(), nil, func(context.Context) error { return nil }, nil
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "camp-scoreboard"
	}

	reader, handler, err := promReaderFactory()
	if err != nil {
		return nil, nil, nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	))
	if err != nil {
		return nil, nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)

	inst, err := newOtelInstruments(provider)
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, nil, nil, err
	}

	return newRecorder(inst), handler, provider.Shutdown, nil
}

func prometheusComponents() (sdkmetric.Reader, http.Handler, error) {
	reg := prometheus.NewRegistry()
	exp, err := promexporter.New(promexporter.WithRegisterer(reg))
	if err != nil {
		return nil, nil, err
	}
	return exp, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}

type otelInstruments struct {
	ctx             context.Context
	entries         metric.Int64Counter
	rejected        metric.Int64Counter
	reveals         metric.Int64Counter
	revealLatencyMs metric.Float64Histogram
	drift           metric.Int64Counter
	requests        metric.Int64Counter
	requestLatency  metric.Float64Histogram
}

func newOtelInstruments(provider metric.MeterProvider) (*otelInstruments, error) {
	meter := provider.Meter("camp-scoreboard")

	entries, err := meter.Int64Counter("scoreboard_entries_total", metric.WithDescription("Ledger entries written."))
	if err != nil {
		return nil, err
	}
	rejected, err := meter.Int64Counter("scoreboard_writes_rejected_total", metric.WithDescription("Score writes refused."))
	if err != nil {
		return nil, err
	}
	reveals, err := meter.Int64Counter("scoreboard_reveals_total")
	if err != nil {
		return nil, err
	}
	revealLatency, err := meter.Float64Histogram("scoreboard_reveal_duration_ms")
	if err != nil {
		return nil, err
	}
	drift, err := meter.Int64Counter("scoreboard_aggregate_drift_total", metric.WithDescription("Teams whose aggregate differed from the ledger."))
	if err != nil {
		return nil, err
	}
	requests, err := meter.Int64Counter("http_requests_total")
	if err != nil {
		return nil, err
	}
	requestLatency, err := meter.Float64Histogram("http_request_duration_ms")
	if err != nil {
		return nil, err
	}

	return &otelInstruments{
		ctx:             context.Background(),
		entries:         entries,
		rejected:        rejected,
		reveals:         reveals,
		revealLatencyMs: revealLatency,
		drift:           drift,
		requests:        requests,
		requestLatency:  requestLatency,
	}, nil
}

func (o *otelInstruments) recordEntries(kind string, n int) {
	o.entries.Add(o.ctx, int64(n), metric.WithAttributes(attribute.String(AttrKind, kind)))
}

func (o *otelInstruments) recordRejected(kind, reason string) {
	o.rejected.Add(o.ctx, 1, metric.WithAttributes(
		attribute.String(AttrKind, kind),
		attribute.String(AttrReason, reason),
	))
}

func (o *otelInstruments) recordReveal(duration time.Duration, result string) {
	attrs := metric.WithAttributes(attribute.String(AttrResult, result))
	o.reveals.Add(o.ctx, 1, attrs)
	o.revealLatencyMs.Record(o.ctx, float64(duration.Milliseconds()), attrs)
}

func (o *otelInstruments) recordDrift(teamID string, _ int64, repaired bool) {
	result := "detected"
	if repaired {
		result = "repaired"
	}
	o.drift.Add(o.ctx, 1, metric.WithAttributes(
		attribute.String("team_id", teamID),
		attribute.String(AttrResult, result),
	))
}

func (o *otelInstruments) recordHTTPRequest(method, route string, status int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(AttrMethod, method),
		attribute.String(AttrRoute, route),
		attribute.Int(AttrStatus, status),
	)
	o.requests.Add(o.ctx, 1, attrs)
	o.requestLatency.Record(o.ctx, float64(duration.Milliseconds()), attrs)
}
