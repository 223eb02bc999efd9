// README: iCalendar export of a trip itinerary.
package trip

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"tripcraft/internal/modules/itinerary"
)

// activityLength is the assumed duration of each calendar entry.
const activityLength = 90 * time.Minute

var clockLayouts = []string{"3:04 PM", "3:04PM", "15:04", "3 PM", "3PM"}

// BuildCalendar emits one event per activity, placed on the trip date for its
// day. Times that cannot be read start at 9:00.
func BuildCalendar(t *Trip, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//tripcraft//itinerary//EN")

	for _, day := range t.Itinerary.Days {
		date := t.StartDate.AddDate(0, 0, day.Day-1)
		for _, a := range day.Activities {
			start := activityStart(date, a.Time)
			event := cal.AddEvent(fmt.Sprintf("%s-%s@tripcraft", t.ID, a.ID))
			event.SetDtStampTime(stamp)
			event.SetStartAt(start)
			event.SetEndAt(start.Add(activityLength))
			event.SetSummary(a.Title)
			if desc := eventDescription(a); desc != "" {
				event.SetDescription(desc)
			}
			if a.Details != nil && a.Details.Address != "" {
				event.SetLocation(a.Details.Address)
			}
		}
	}
	return cal.Serialize()
}

func activityStart(date time.Time, clock string) time.Time {
	hour, minute := 9, 0
	clock = strings.ToUpper(strings.TrimSpace(clock))
	for _, layout := range clockLayouts {
		if ts, err := time.Parse(layout, clock); err == nil {
			hour, minute = ts.Hour(), ts.Minute()
			break
		}
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.UTC)
}

func eventDescription(a itinerary.Activity) string {
	parts := []string{}
	if a.Description != "" {
		parts = append(parts, a.Description)
	}
	if a.PriceRange != "" {
		parts = append(parts, "Price: "+a.PriceRange)
	}
	if a.Details != nil {
		if a.Details.Hours != "" {
			parts = append(parts, "Hours: "+a.Details.Hours)
		}
		if a.Details.Website != "" {
			parts = append(parts, a.Details.Website)
		}
	}
	return strings.Join(parts, "\n")
}
