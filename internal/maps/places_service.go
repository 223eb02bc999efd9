package maps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"
)

var (
	// ErrNoPlace is returned when a search yields no acceptable result.
	ErrNoPlace = errors.New("no matching place")
	ErrNoRoute = errors.New("no route found")
)

// Place represents a simplified location result.
type Place struct {
	Name             string
	Address          string
	Rating           float32
	PlaceID          string
	UserRatingsTotal int
	PriceLevel       int
}

// SearchOptions refines a text search.
type SearchOptions struct {
	// Language is the response language, e.g. "en".
	Language string
	// MinRating drops results rated below it; 0 keeps unrated places.
	MinRating float32
	// ExcludeKeywords are terms that disqualify any result whose name contains them.
	ExcludeKeywords []string
	// Limit caps the number of results; 0 means 3.
	Limit int
}

// PlacesService handles interactions with Google Places API.
type PlacesService struct {
	client *maps.Client
}

// NewPlacesService creates a new PlacesService with the given API Key.
func NewPlacesService(apiKey string) (*PlacesService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &PlacesService{client: client}, nil
}

// Search runs a text search and filters the results by opts.
func (s *PlacesService) Search(ctx context.Context, query string, opts *SearchOptions) ([]Place, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 3
	}

	r := &maps.TextSearchRequest{
		Query:    query,
		Language: opts.Language,
	}
	resp, err := s.client.TextSearch(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}

	var results []Place
	for _, result := range resp.Results {
		if opts.MinRating > 0 && result.Rating < opts.MinRating {
			continue
		}
		if containsAny(result.Name, opts.ExcludeKeywords) {
			continue
		}
		results = append(results, Place{
			Name:             result.Name,
			Address:          result.FormattedAddress,
			Rating:           result.Rating,
			PlaceID:          result.PlaceID,
			UserRatingsTotal: result.UserRatingsTotal,
			PriceLevel:       result.PriceLevel,
		})
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

// FindPlace returns the best text-search match for query.
func (s *PlacesService) FindPlace(ctx context.Context, query string) (*Place, error) {
	results, err := s.Search(ctx, query, &SearchOptions{Language: "en", Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 || results[0].Address == "" {
		return nil, ErrNoPlace
	}
	return &results[0], nil
}

func containsAny(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
