package instrumentation

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func spanAttrs(s sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range s.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestStartToolSpan(t *testing.T) {
	recorder := recordSpans(t)

	ctx, span := StartToolSpan(context.Background(), "sheets_get_values", true)
	if GetTraceID(ctx) == "" {
		t.Error("expected a trace id in the span context")
	}
	EndSpan(span, nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "tool.sheets_get_values" {
		t.Errorf("unexpected span name %q", spans[0].Name())
	}
	attrs := spanAttrs(spans[0])
	if attrs[SpanAttrTool].AsString() != "sheets_get_values" {
		t.Errorf("expected tool attribute, got %v", attrs[SpanAttrTool])
	}
	if !attrs[SpanAttrReadOnly].AsBool() {
		t.Error("expected read_only attribute to be true")
	}
	if spans[0].Status().Code != codes.Ok {
		t.Errorf("expected OK status, got %v", spans[0].Status().Code)
	}
}

func TestStartGoogleAPISpanWithError(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartGoogleAPISpan(context.Background(), ServiceDrive, "list_folder",
		attribute.String(SpanAttrFileID, "FOLDER1"))
	EndSpan(span, errors.New("drive files.list failed"))

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "google.drive.list_folder" {
		t.Errorf("unexpected span name %q", spans[0].Name())
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", spans[0].Status().Code)
	}
	if spanAttrs(spans[0])[SpanAttrFileID].AsString() != "FOLDER1" {
		t.Error("expected file id attribute")
	}
}

func TestGetTraceID_NoSpan(t *testing.T) {
	if id := GetTraceID(context.Background()); id != "" {
		t.Errorf("expected empty trace id, got %q", id)
	}
}
