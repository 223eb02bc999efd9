package maps

import (
	"context"
	"fmt"
	"time"

	"googlemaps.github.io/maps"
)

// RouteService estimates travel between two stops with the Directions API.
type RouteService struct {
	client *maps.Client
	mode   maps.Mode
}

// NewRouteService creates a RouteService for mode ("walking", "transit",
// "driving" or "bicycling"). An empty mode means walking.
func NewRouteService(apiKey, mode string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	m := maps.Mode(mode)
	if m == "" {
		m = maps.TravelModeWalking
	}
	return &RouteService{client: client, mode: m}, nil
}

// TravelEstimate returns the duration and human-readable distance of the
// first route from origin to destination.
func (s *RouteService) TravelEstimate(ctx context.Context, origin, destination string) (time.Duration, string, error) {
	r := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        s.mode,
		Language:    "en",
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return 0, "", fmt.Errorf("maps api error: %w", err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, "", ErrNoRoute
	}

	leg := routes[0].Legs[0]
	return leg.Duration, leg.Distance.HumanReadable, nil
}

// Mode reports the travel mode used for estimates.
func (s *RouteService) Mode() string {
	return string(s.mode)
}
