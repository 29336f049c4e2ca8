package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/OrlandoBitencourt/beacon/internal/domain"
)

// setupOTelTest wires the provider to in-memory SDK exporters
func setupOTelTest(t *testing.T) (*OTelProvider, *tracetest.SpanRecorder, *sdkmetric.ManualReader) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	provider, err := NewOTel(tp, mp)
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx := context.Background()
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
	})

	return provider, recorder, reader
}

// counterTotal sums an int64 counter, optionally filtered by one attribute
func counterTotal(t *testing.T, reader *sdkmetric.ManualReader, name string, filter ...attribute.KeyValue) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				if matches(dp.Attributes, filter) {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func matches(set attribute.Set, filter []attribute.KeyValue) bool {
	for _, kv := range filter {
		v, ok := set.Value(kv.Key)
		if !ok || v != kv.Value {
			return false
		}
	}
	return true
}

func TestNewOTel(t *testing.T) {
	provider, _, _ := setupOTelTest(t)

	assert.NotNil(t, provider.tracer)
	assert.NotNil(t, provider.meter)
	assert.NotNil(t, provider.cacheHits)
	assert.NotNil(t, provider.cacheMisses)
	assert.NotNil(t, provider.evaluations)
	assert.NotNil(t, provider.remoteFailures)
	assert.NotNil(t, provider.remoteDuration)
}

func TestNewOTel_GlobalFallback(t *testing.T) {
	provider, err := NewOTel(nil, nil)
	require.NoError(t, err)

	// global providers are no-ops; recording must not panic
	ctx, span := provider.StartSpan(context.Background(), "noop")
	provider.RecordCacheHit(ctx, "flag")
	provider.RecordEvaluation(ctx, "flag", SourceCache)
	span.End()
}

func TestOTelProvider_CacheCounters(t *testing.T) {
	provider, _, reader := setupOTelTest(t)
	ctx := context.Background()

	provider.RecordCacheHit(ctx, "a")
	provider.RecordCacheHit(ctx, "a")
	provider.RecordCacheMiss(ctx, "b")

	assert.Equal(t, int64(2), counterTotal(t, reader, "beacon.cache.hits"))
	assert.Equal(t, int64(1), counterTotal(t, reader, "beacon.cache.misses", attribute.String("flag.key", "b")))
}

func TestOTelProvider_RecordEvaluation(t *testing.T) {
	provider, _, reader := setupOTelTest(t)
	ctx := context.Background()

	provider.RecordEvaluation(ctx, "flag", SourceCache)
	provider.RecordEvaluation(ctx, "flag", SourceRemote)
	provider.RecordEvaluation(ctx, "flag", SourceFallback)
	provider.RecordEvaluation(ctx, "flag", SourceFallback)

	assert.Equal(t, int64(4), counterTotal(t, reader, "beacon.evaluations"))
	assert.Equal(t, int64(2), counterTotal(t, reader, "beacon.evaluations", attribute.String("source", SourceFallback)))
}

func TestOTelProvider_RecordRemoteCall(t *testing.T) {
	provider, _, reader := setupOTelTest(t)
	ctx := context.Background()

	provider.RecordRemoteCall(ctx, domain.Outcome{FlagKey: "f", Succeeded: true, Value: true, Duration: 3 * time.Millisecond})
	provider.RecordRemoteCall(ctx, domain.Outcome{
		FlagKey:  "f",
		Duration: 5 * time.Second,
		Err:      domain.NewRemoteError(domain.FailureTimeout, "f", errors.New("deadline")),
	})

	assert.Equal(t, int64(1), counterTotal(t, reader, "beacon.remote.failures", attribute.String("kind", "timeout")))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	var count uint64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "beacon.remote.duration" {
				hist, ok := m.Data.(metricdata.Histogram[float64])
				require.True(t, ok)
				for _, dp := range hist.DataPoints {
					count += dp.Count
				}
			}
		}
	}
	assert.Equal(t, uint64(2), count)
}

func TestAnnotateOutcome(t *testing.T) {
	provider, recorder, _ := setupOTelTest(t)
	ctx := context.Background()

	_, okSpan := provider.StartSpan(ctx, "ok", attribute.String("flag.key", "f"))
	AnnotateOutcome(okSpan, domain.Outcome{FlagKey: "f", Succeeded: true, Value: true, RequestID: "req-1"})
	okSpan.End()

	_, failSpan := provider.StartSpan(ctx, "fail")
	AnnotateOutcome(failSpan, domain.Outcome{
		FlagKey: "f",
		Err:     domain.NewHTTPError("f", 500, "boom"),
	})
	failSpan.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "ok", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.Bool("flag.value", true))
	assert.Contains(t, spans[0].Attributes(), attribute.String("request.id", "req-1"))

	assert.Equal(t, "fail", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Contains(t, spans[1].Attributes(), attribute.String("failure.kind", "http"))
	assert.NotEmpty(t, spans[1].Events())
}
