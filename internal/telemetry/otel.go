package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/OrlandoBitencourt/beacon/internal/domain"
)

const (
	meterName  = "github.com/OrlandoBitencourt/beacon"
	tracerName = "github.com/OrlandoBitencourt/beacon"
)

// Evaluation sources reported on the evaluations counter
const (
	SourceCache    = "cache"
	SourceRemote   = "remote"
	SourceFallback = "fallback"
)

// OTelProvider records traces and metrics with OpenTelemetry
type OTelProvider struct {
	tracer trace.Tracer
	meter  metric.Meter

	// Metrics
	cacheHits      metric.Int64Counter
	cacheMisses    metric.Int64Counter
	evaluations    metric.Int64Counter
	remoteFailures metric.Int64Counter
	remoteDuration metric.Float64Histogram
}

// NewOTel creates a new OpenTelemetry provider. Nil providers fall back to
// the global ones, which are no-ops until the application installs an SDK.
func NewOTel(tp trace.TracerProvider, mp metric.MeterProvider) (*OTelProvider, error) {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	provider := &OTelProvider{
		tracer: tp.Tracer(tracerName),
		meter:  mp.Meter(meterName),
	}

	if err := provider.initMetrics(); err != nil {
		return nil, err
	}

	return provider, nil
}

// initMetrics initializes all metrics
func (o *OTelProvider) initMetrics() error {
	var err error

	o.cacheHits, err = o.meter.Int64Counter(
		"beacon.cache.hits",
		metric.WithDescription("Number of cache hits"),
	)
	if err != nil {
		return err
	}

	o.cacheMisses, err = o.meter.Int64Counter(
		"beacon.cache.misses",
		metric.WithDescription("Number of cache misses"),
	)
	if err != nil {
		return err
	}

	o.evaluations, err = o.meter.Int64Counter(
		"beacon.evaluations",
		metric.WithDescription("Number of flag evaluations by source"),
	)
	if err != nil {
		return err
	}

	o.remoteFailures, err = o.meter.Int64Counter(
		"beacon.remote.failures",
		metric.WithDescription("Number of failed remote evaluations by kind"),
	)
	if err != nil {
		return err
	}

	o.remoteDuration, err = o.meter.Float64Histogram(
		"beacon.remote.duration",
		metric.WithDescription("Duration of remote evaluation calls"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	return nil
}

// StartSpan creates a new trace span
func (o *OTelProvider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// RecordCacheHit records a cache hit
func (o *OTelProvider) RecordCacheHit(ctx context.Context, flagKey string) {
	o.cacheHits.Add(ctx, 1, metric.WithAttributes(
		attribute.String("flag.key", flagKey),
	))
}

// RecordCacheMiss records a cache miss
func (o *OTelProvider) RecordCacheMiss(ctx context.Context, flagKey string) {
	o.cacheMisses.Add(ctx, 1, metric.WithAttributes(
		attribute.String("flag.key", flagKey),
	))
}

// RecordEvaluation records where an evaluation's answer came from
func (o *OTelProvider) RecordEvaluation(ctx context.Context, flagKey string, source string) {
	o.evaluations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("flag.key", flagKey),
		attribute.String("source", source),
	))
}

// RecordRemoteCall records the duration and, on failure, the kind of a remote call
func (o *OTelProvider) RecordRemoteCall(ctx context.Context, outcome domain.Outcome) {
	o.remoteDuration.Record(ctx, float64(outcome.Duration.Microseconds())/1000,
		metric.WithAttributes(
			attribute.Bool("success", outcome.Succeeded),
		))

	if !outcome.Succeeded {
		o.remoteFailures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("flag.key", outcome.FlagKey),
			attribute.String("kind", string(outcome.Kind())),
		))
	}
}

// AnnotateOutcome copies a remote outcome onto span
func AnnotateOutcome(span trace.Span, outcome domain.Outcome) {
	span.SetAttributes(
		attribute.String("request.id", outcome.RequestID),
		attribute.Bool("remote.succeeded", outcome.Succeeded),
	)

	if outcome.Succeeded {
		span.SetAttributes(attribute.Bool("flag.value", outcome.Value))
		return
	}

	span.SetAttributes(attribute.String("failure.kind", string(outcome.Kind())))
	if outcome.Err != nil {
		span.RecordError(outcome.Err)
		span.SetStatus(codes.Error, outcome.Err.Error())
	}
}
