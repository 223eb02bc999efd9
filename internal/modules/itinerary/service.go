// README: Itinerary service; model generation with one failover retry, repair pipeline, and fallback.
package itinerary

import (
	"context"
	"fmt"
	"log"

	"tripcraft/internal/ai"
)

// Enricher decorates a validated model itinerary in place.
type Enricher interface {
	Enrich(ctx context.Context, destination string, it *Itinerary)
}

type Service struct {
	selector *ai.ModelSelector
	fallback *FallbackBuilder
	enricher Enricher
}

// NewService wires generation. selector may be nil when no model credential is
// configured; Plan then always returns the fallback and no model call is made.
func NewService(selector *ai.ModelSelector, fallback *FallbackBuilder, enricher Enricher) *Service {
	if fallback == nil {
		fallback = NewFallbackBuilder(nil)
	}
	return &Service{selector: selector, fallback: fallback, enricher: enricher}
}

// Generate asks the active model for an itinerary. A failed call is retried
// once on the next candidate. Output that cannot be validated is replaced by
// the fallback plan; only request or model failures are returned as errors.
func (s *Service) Generate(ctx context.Context, req Request) (*Itinerary, Source, error) {
	if err := req.Validate(); err != nil {
		return nil, "", err
	}
	if s.selector == nil {
		return nil, "", ErrModelUnavailable
	}
	h, ok := s.selector.Acquire()
	if !ok {
		return nil, "", ErrModelUnavailable
	}

	prompt := BuildPrompt(req)
	text, err := h.Model.Generate(ctx, prompt, ai.ItineraryConfig())
	if err != nil {
		log.Printf("itinerary: generation with %s failed: %v", h.Model.Name(), err)
		next, ok := s.selector.AdvanceFrom(h)
		if !ok {
			return nil, "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}
		text, err = next.Model.Generate(ctx, prompt, ai.ItineraryConfig())
		if err != nil {
			log.Printf("itinerary: retry with %s failed: %v", next.Model.Name(), err)
			return nil, "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}
	}

	it, err := ParseItinerary(text)
	if err != nil {
		log.Printf("itinerary: discarding model output for %q: %v", req.Destination, err)
		return s.fallback.Build(req.Days, req.Destination), SourceFallback, nil
	}
	if got := len(it.Days); got != req.Days {
		log.Printf("itinerary: model returned %d days for a %d-day request", got, req.Days)
	}
	if s.enricher != nil {
		s.enricher.Enrich(ctx, req.Destination, it)
	}
	return it, SourceModel, nil
}

// Plan is the always-succeeding boundary: only invalid input is an error,
// every generation failure becomes the fallback itinerary.
func (s *Service) Plan(ctx context.Context, spec TripSpec) (*Itinerary, Source, error) {
	req, err := spec.Request()
	if err != nil {
		return nil, "", err
	}
	it, src, err := s.Generate(ctx, req)
	if err != nil {
		log.Printf("itinerary: using fallback for %q: %v", req.Destination, err)
		return s.fallback.Build(req.Days, req.Destination), SourceFallback, nil
	}
	return it, src, nil
}

// Fallback exposes the offline builder for callers that skip the model.
func (s *Service) Fallback(days int, destination string) *Itinerary {
	return s.fallback.Build(days, destination)
}
