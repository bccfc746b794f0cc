package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestLoggerAddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "test", "campushub-api")

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	log.InfoContext(ctx, "booking created", "booking_id", "b1")
	span.End()

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid json log line: %v", err)
	}

	if rec["trace_id"] != span.SpanContext().TraceID().String() {
		t.Fatalf("trace_id = %v, want %s", rec["trace_id"], span.SpanContext().TraceID())
	}
	if rec["service"] != "campushub-api" {
		t.Fatalf("service = %v", rec["service"])
	}
}

func TestLoggerDebugOnlyInDev(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "production", "campushub-api").Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug to be filtered, got %q", buf.String())
	}

	newLogger(&buf, "dev", "campushub-api").Debug("shown")
	if buf.Len() == 0 {
		t.Fatalf("expected debug output in dev")
	}
}

func TestLoggerAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "test", "campushub-api")

	ctx := WithRequestID(context.Background(), "req-42")
	log.WarnContext(ctx, "booking write conflict", "attempt", 1)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid json log line: %v", err)
	}
	if rec["request_id"] != "req-42" {
		t.Fatalf("request_id = %v", rec["request_id"])
	}
	if _, ok := rec["trace_id"]; ok {
		t.Fatalf("no span active, trace_id should be absent")
	}
}
