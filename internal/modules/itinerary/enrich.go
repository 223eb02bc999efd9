// README: Optional place lookups that fill in missing activity addresses and ratings, plus walking legs between stops.
package itinerary

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"tripcraft/internal/maps"
)

// PlaceFinder resolves a free-text query to a single place.
type PlaceFinder interface {
	FindPlace(ctx context.Context, query string) (*maps.Place, error)
}

// RouteEstimator measures the leg between two addresses.
type RouteEstimator interface {
	TravelEstimate(ctx context.Context, origin, destination string) (time.Duration, string, error)
	Mode() string
}

// PlacesEnricher fills Details for activities the model left without an address.
// Lookup failures are skipped; enrichment never fails a generation.
type PlacesEnricher struct {
	places PlaceFinder
	routes RouteEstimator
	limit  int
}

// DefaultEnrichLimit caps place lookups per itinerary. Route lookups have a
// separate budget of the same size.
const DefaultEnrichLimit = 8

func NewPlacesEnricher(places PlaceFinder, limit int) *PlacesEnricher {
	if limit <= 0 {
		limit = DefaultEnrichLimit
	}
	return &PlacesEnricher{places: places, limit: limit}
}

// WithRoutes enables travel estimates between consecutive stops.
func (e *PlacesEnricher) WithRoutes(routes RouteEstimator) *PlacesEnricher {
	e.routes = routes
	return e
}

func (e *PlacesEnricher) Enrich(ctx context.Context, destination string, it *Itinerary) {
	if e == nil || it == nil {
		return
	}
	if e.places != nil {
		e.fillPlaces(ctx, destination, it)
	}
	if e.routes != nil {
		e.fillLegs(ctx, it)
	}
}

func (e *PlacesEnricher) fillPlaces(ctx context.Context, destination string, it *Itinerary) {
	lookups := 0
	for d := range it.Days {
		for a := range it.Days[d].Activities {
			act := &it.Days[d].Activities[a]
			if act.Category == CategoryHotel || (act.Details != nil && act.Details.Address != "") {
				continue
			}
			if lookups >= e.limit || ctx.Err() != nil {
				return
			}
			lookups++

			place, err := e.places.FindPlace(ctx, strings.TrimSpace(act.Title+" "+destination))
			if err != nil {
				if !errors.Is(err, maps.ErrNoPlace) {
					log.Printf("itinerary: place lookup for %q failed: %v", act.Title, err)
				}
				continue
			}
			if act.Details == nil {
				act.Details = &ActivityDetails{}
			}
			act.Details.Address = place.Address
			if act.Details.Rating == "" && place.Rating > 0 {
				act.Details.Rating = fmt.Sprintf("%.1f", place.Rating)
			}
			if act.PriceRange == "" && place.PriceLevel > 0 {
				act.PriceRange = strings.Repeat("$", place.PriceLevel)
			}
		}
	}
}

// fillLegs annotates each stop whose predecessor on the same day has an address.
func (e *PlacesEnricher) fillLegs(ctx context.Context, it *Itinerary) {
	lookups := 0
	for d := range it.Days {
		acts := it.Days[d].Activities
		for a := 1; a < len(acts); a++ {
			from, to := addressOf(acts[a-1]), addressOf(acts[a])
			if from == "" || to == "" || acts[a].Details.TravelFromPrevious != "" {
				continue
			}
			if lookups >= e.limit || ctx.Err() != nil {
				return
			}
			lookups++

			dur, dist, err := e.routes.TravelEstimate(ctx, from, to)
			if err != nil {
				if !errors.Is(err, maps.ErrNoRoute) {
					log.Printf("itinerary: route %q -> %q failed: %v", acts[a-1].Title, acts[a].Title, err)
				}
				continue
			}
			acts[a].Details.TravelFromPrevious = describeLeg(dur, dist, e.routes.Mode())
		}
	}
}

func addressOf(a Activity) string {
	if a.Details == nil {
		return ""
	}
	return a.Details.Address
}

func describeLeg(dur time.Duration, dist, mode string) string {
	mins := int(dur.Round(time.Minute) / time.Minute)
	if mins < 1 {
		mins = 1
	}
	out := fmt.Sprintf("%d min", mins)
	if dist != "" {
		out += " (" + dist + ")"
	}
	if mode != "" {
		out += " " + strings.ToLower(mode)
	}
	return out
}
