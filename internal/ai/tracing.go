package ai

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "tripcraft/ai"

// tracedModel records one span per generation call. Without a configured
// tracer provider the spans are no-ops.
type tracedModel struct {
	TextModel
}

// Traced wraps m so every Generate call is recorded as a span.
func Traced(m TextModel) TextModel {
	if m == nil {
		return nil
	}
	if _, ok := m.(tracedModel); ok {
		return m
	}
	return tracedModel{TextModel: m}
}

func (m tracedModel) Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Generate", trace.WithAttributes(
		attribute.String("model.name", m.Name()),
		attribute.Int("prompt.length", len(prompt)),
		attribute.Bool("response.json", cfg.JSON),
	))
	defer span.End()

	start := time.Now()
	text, err := m.TextModel.Generate(ctx, prompt, cfg)
	span.SetAttributes(attribute.Int64("response.latency_ms", time.Since(start).Milliseconds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return "", err
	}
	span.SetAttributes(attribute.Int("response.length", len(text)))
	span.SetStatus(codes.Ok, "")
	return text, nil
}
