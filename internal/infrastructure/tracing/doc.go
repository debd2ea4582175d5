/*
Package tracing provides lightweight span tracing logged through zap.

# Overview

Every HTTP request and every pipeline run opens a span; pipeline stages open
child spans. Finished spans are handed to a buffered collector goroutine that
logs them, so tracing never blocks a run.

# Usage

	tracer := tracing.New("hookify", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "pipeline.run")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()
	span.SetTag("topic", "useState")

# Trace Format

Trace context travels in the X-Trace-ID and X-Span-ID headers. IDs are
prefixed ULIDs (trace_*, span_*).
*/
package tracing
