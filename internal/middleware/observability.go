package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"regnify/internal/metrics"
)

var tracer = otel.Tracer("regnify/http")

// routeOf returns the matched route template, so ids do not explode label cardinality.
func routeOf(c *gin.Context) string {
	if r := c.FullPath(); r != "" {
		return r
	}
	return "unmatched"
}

// Tracing starts a server span per request and propagates it through the request context.
func Tracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := routeOf(c)
		ctx, span := tracer.Start(c.Request.Context(), c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.route", route),
			),
		)
		defer span.End()

		if requestID, ok := c.Get("request_id"); ok {
			span.SetAttributes(attribute.String("request.id", requestID.(string)))
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= 500 {
			span.SetStatus(codes.Error, strconv.Itoa(status))
		}
	}
}

// Metrics records request counts and latency per route.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveHTTP(c.Request.Method, routeOf(c), strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
