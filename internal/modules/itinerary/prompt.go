// README: Prompt construction for structured itinerary generation.
package itinerary

import (
	"fmt"
	"strings"
)

const itineraryTemplate = `{
  "itinerary": [
    {
      "day": 1,
      "activities": [
        {
          "id": "1-1",
          "time": "9:00 AM",
          "title": "Activity title",
          "description": "One or two sentences about the activity",
          "type": "attraction",
          "priceRange": "$$",
          "details": {
            "address": "Street address",
            "hours": "Opening hours",
            "phone": "Phone number",
            "website": "https://example.com",
            "rating": "4.5",
            "cost": "Typical cost per person",
            "cuisine": "Cuisine, for food only",
            "specialFeatures": ["Feature one", "Feature two"]
          }
        }
      ]
    }
  ]
}`

// BuildPrompt renders the generation prompt for req.
func BuildPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a detailed %d-day travel itinerary for %s.\n\n", req.Days, req.Destination)
	b.WriteString("Trip details:\n")
	fmt.Fprintf(&b, "- Total budget: $%.0f\n", req.Budget)
	fmt.Fprintf(&b, "- Travelers: %d\n", req.Travelers)
	if len(req.Interests) > 0 {
		fmt.Fprintf(&b, "- Interests: %s\n", strings.Join(req.Interests, ", "))
	}
	if req.TripType != "" {
		fmt.Fprintf(&b, "- Trip type: %s\n", req.TripType)
	}

	fmt.Fprintf(&b, `
Requirements:
- Return exactly %d days, numbered 1 to %d.
- Plan 3 to 5 activities per day in chronological order, including meals.
- Use only real, specific, named venues in %s with accurate addresses. Never use generic placeholders such as "a local restaurant".
- Keep each day geographically coherent so travel between activities is short.
- Keep the plan within the budget and suited to the group size.
- "type" must be one of: attraction, food, hotel, entertainment, relaxation, nightlife, sunset.
- "priceRange" is one of "$", "$$", "$$$", "$$$$".
- Each "id" is "<day>-<index>" and unique across the whole plan.

Formatting rules:
- Respond with ONLY a JSON object, no markdown code fences and no commentary.
- Use double quotes for every key and string value.
- Match exactly this shape:
%s
`, req.Days, req.Days, req.Destination, itineraryTemplate)
	return b.String()
}
