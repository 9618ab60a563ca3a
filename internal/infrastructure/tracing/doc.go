/*
Package tracing tags HTTP requests against the bridge with a trace and span
id so one control request can be followed through the log output of the
interop calls it triggers.

# Usage

	tracer := tracing.New("webinterop", logger)
	defer tracer.Close()
	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "geolocation.watch")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()

Trace context travels in the X-Trace-ID and X-Span-ID headers. Completed
spans are buffered and written to the logger by a single collector
goroutine; a full buffer drops spans rather than blocking the request.
*/
package tracing
