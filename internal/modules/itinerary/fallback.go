// README: Offline itinerary builder used when model output cannot be validated.
package itinerary

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FallbackBuilder synthesizes a plan from the catalog with no external calls.
// Build is pure: the same inputs always produce the same itinerary.
type FallbackBuilder struct {
	catalog *Catalog
}

// NewFallbackBuilder uses the embedded catalog when catalog is nil.
func NewFallbackBuilder(catalog *Catalog) *FallbackBuilder {
	if catalog == nil {
		if c, err := DefaultCatalog(); err == nil {
			catalog = c
		} else {
			catalog = &Catalog{}
		}
	}
	return &FallbackBuilder{catalog: catalog}
}

// Build returns a non-empty itinerary for any dayCount (values below 1 are treated as 1).
func (b *FallbackBuilder) Build(dayCount int, destination string) *Itinerary {
	if dayCount < 1 {
		dayCount = 1
	}
	plan := b.catalog.Lookup(destination)
	place := displayName(destination)

	days := make([]DaySchedule, 0, dayCount)
	for d := 1; d <= dayCount; d++ {
		first, last := d == 1, d == dayCount
		var acts []Activity
		add := func(time, title, desc string, cat Category, price string) {
			acts = append(acts, Activity{
				ID:          fmt.Sprintf("%d-%d", d, len(acts)+1),
				Time:        time,
				Title:       title,
				Description: desc,
				Category:    cat,
				PriceRange:  price,
			})
		}

		morning := pick(plan.Morning, d, "Explore "+place)
		add("9:00 AM", morning, "Start the day with one of the highlights of "+place+".", CategoryAttraction, "$$")

		lunch := pick(plan.Lunch, d, "a local cafe")
		add("12:30 PM", "Lunch at "+lunch, "A relaxed midday meal at "+lunch+".", CategoryFood, "$$")

		if first {
			area := pick(plan.Neighborhoods, 0, place)
			add("3:00 PM", "Check in to your hotel in "+area, "Settle in and get oriented around "+area+".", CategoryHotel, "$$$")
		} else {
			afternoon := pick(plan.Afternoon, d, "Free time around "+place)
			add("3:00 PM", afternoon, "An easygoing afternoon in "+place+".", CategoryAttraction, "$")
		}

		if !last {
			dinner := pick(plan.Dinner, d, "a local restaurant")
			add("7:00 PM", "Dinner at "+dinner, "Evening meal at "+dinner+".", CategoryFood, "$$$")
		}
		if !first && !last {
			evening := pick(plan.Evening, d, "Evening out in "+place)
			add("9:00 PM", evening, "Round off the day with a night out.", CategoryEntertainment, "$$")
		}

		days = append(days, DaySchedule{Day: d, Activities: acts})
	}
	return &Itinerary{Days: days}
}

// pick indexes list cyclically; an empty list yields def.
func pick(list []string, i int, def string) string {
	if len(list) == 0 {
		return def
	}
	return list[i%len(list)]
}

func displayName(destination string) string {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return "your destination"
	}
	return cases.Title(language.English).String(destination)
}
