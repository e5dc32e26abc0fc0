package tracing

import (
	"fmt"

	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/honeycombio/honeycomb-opentelemetry-go"
	"github.com/honeycombio/otel-config-go/otelconfig"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var GlobalTracer = otel.Tracer("serjblog")

// HoneycombSetup configures the OpenTelemetry SDK to export to honeycomb.
// Returns a shutdown func, which is a no-op when tracing is disabled.
func HoneycombSetup(enabled bool, serviceName string, rdb *redis.Client) (func(), error) {
	if !enabled {
		return func() {}, nil
	}

	otelShutdown, err := otelconfig.ConfigureOpenTelemetry(honeycombOptions(serviceName)...)
	if err != nil {
		return nil, fmt.Errorf("configure otel: %w", err)
	}

	if rdb != nil {
		rdb.AddHook(redisotel.NewTracingHook())
	}

	log.Debugf("honeycomb tracing enabled for [%s]", serviceName)

	return otelShutdown, nil
}

// honeycombOptions points the OTLP exporter at honeycomb; the API key and
// dataset come from the HONEYCOMB_* env vars.
func honeycombOptions(serviceName string) []otelconfig.Option {
	return []otelconfig.Option{
		honeycomb.WithHoneycomb(),
		otelconfig.WithServiceName(serviceName),
	}
}

// EndSpanWithErrCheck marks the span as failed if err is set, and ends it.
// Meant to be deferred with a pointer to the named error return.
func EndSpanWithErrCheck(span trace.Span, err *error) {
	if err != nil && *err != nil {
		span.SetStatus(codes.Error, (*err).Error())
		span.RecordError(*err)
	}
	span.End()
}
