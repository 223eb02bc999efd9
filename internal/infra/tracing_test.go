package infra

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestInitTracingDisabled(t *testing.T) {
	prev := otel.GetTracerProvider()
	shutdown, err := InitTracing("tripcraft-test", "", 1, nil)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if otel.GetTracerProvider() != prev {
		t.Fatal("disabled tracing must not replace the global provider")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestInitTracingRejectsUnknownExporter(t *testing.T) {
	if _, err := InitTracing("tripcraft-test", "zipkin-ish", 1, nil); !errors.Is(err, ErrUnknownExporter) {
		t.Fatalf("expected ErrUnknownExporter, got %v", err)
	}
}

func TestInitTracingStdoutExportsSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	shutdown, err := InitTracing("tripcraft-test", "stdout", 1, &buf)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	_, span := otel.Tracer("tripcraft/test").Start(context.Background(), "plan-trip")
	span.End()
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "plan-trip") || !strings.Contains(out, "tripcraft-test") {
		t.Fatalf("expected exported span, got %q", out)
	}
}
