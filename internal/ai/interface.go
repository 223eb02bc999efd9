package ai

import (
	"context"
	"errors"
)

var (
	// ErrUnknownModel is returned when no provider serves the requested model name.
	ErrUnknownModel = errors.New("unknown model")
	// ErrMissingCredential is returned when a provider has no API key configured.
	ErrMissingCredential = errors.New("missing model credential")
	// ErrEmptyResponse is returned when the provider answered without any text.
	ErrEmptyResponse = errors.New("empty model response")
)

// TextModel is a constructed handle for a single named generative model.
// Implementations must be safe for concurrent use.
type TextModel interface {
	Name() string
	// Generate sends a single prompt and returns the concatenated text of the first candidate.
	Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error)
}

// ModelFactory constructs a TextModel for a candidate name.
// Construction must not perform a network round trip; it fails only when the
// provider is unknown or not configured.
type ModelFactory interface {
	NewModel(name string) (TextModel, error)
}

// ModelFactoryFunc adapts a function to ModelFactory.
type ModelFactoryFunc func(name string) (TextModel, error)

func (f ModelFactoryFunc) NewModel(name string) (TextModel, error) {
	return f(name)
}
