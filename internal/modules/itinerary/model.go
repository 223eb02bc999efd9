// README: Itinerary document, activity categories, and request/boundary types.
package itinerary

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/samber/lo"
)

var (
	ErrInvalidRequest   = errors.New("invalid itinerary request")
	ErrModelUnavailable = errors.New("itinerary model unavailable")
	ErrGenerationFailed = errors.New("itinerary generation failed")
)

type Category string

const (
	CategoryAttraction    Category = "attraction"
	CategoryFood          Category = "food"
	CategoryHotel         Category = "hotel"
	CategoryEntertainment Category = "entertainment"
	CategoryRelaxation    Category = "relaxation"
	CategoryNightlife     Category = "nightlife"
	CategorySunset        Category = "sunset"
)

var Categories = []Category{
	CategoryAttraction,
	CategoryFood,
	CategoryHotel,
	CategoryEntertainment,
	CategoryRelaxation,
	CategoryNightlife,
	CategorySunset,
}

var categoryAliases = map[string]Category{
	"restaurant":    CategoryFood,
	"dining":        CategoryFood,
	"cafe":          CategoryFood,
	"meal":          CategoryFood,
	"accommodation": CategoryHotel,
	"lodging":       CategoryHotel,
	"bar":           CategoryNightlife,
	"club":          CategoryNightlife,
	"spa":           CategoryRelaxation,
	"beach":         CategoryRelaxation,
	"show":          CategoryEntertainment,
	"museum":        CategoryAttraction,
	"sightseeing":   CategoryAttraction,
}

func (c Category) Valid() bool {
	return lo.Contains(Categories, c)
}

// NormalizeCategory maps a free-form label onto the closed category set.
// Unknown labels become attraction.
func NormalizeCategory(v string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(v)))
	if c.Valid() {
		return c
	}
	if alias, ok := categoryAliases[string(c)]; ok {
		return alias
	}
	return CategoryAttraction
}

// Source reports which path produced an itinerary.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Itinerary is the structured plan. The JSON shape is shared with the model
// prompt and the frontend.
type Itinerary struct {
	Days []DaySchedule `json:"itinerary"`
}

type DaySchedule struct {
	Day        int        `json:"day"`
	Activities []Activity `json:"activities"`
}

// UnmarshalJSON accepts the day number as a JSON number or a string such as "2" or "Day 2".
func (d *DaySchedule) UnmarshalJSON(data []byte) error {
	var raw struct {
		Day        json.RawMessage `json:"day"`
		Activities []Activity      `json:"activities"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Day = parseDayNumber(raw.Day)
	d.Activities = raw.Activities
	return nil
}

func parseDayNumber(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
	v, _ := strconv.Atoi(digits)
	return v
}

type Activity struct {
	ID          string           `json:"id"`
	Time        string           `json:"time"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    Category         `json:"type"`
	PriceRange  string           `json:"priceRange,omitempty"`
	Details     *ActivityDetails `json:"details,omitempty"`
}

type ActivityDetails struct {
	Address            string   `json:"address,omitempty"`
	Hours              string   `json:"hours,omitempty"`
	Phone              string   `json:"phone,omitempty"`
	Website            string   `json:"website,omitempty"`
	Rating             string   `json:"rating,omitempty"`
	Cost               string   `json:"cost,omitempty"`
	Cuisine            string   `json:"cuisine,omitempty"`
	SpecialFeatures    []string `json:"specialFeatures,omitempty"`
	// TravelFromPrevious describes the leg from the day's previous stop.
	TravelFromPrevious string   `json:"travelFromPrevious,omitempty"`
}

// UnmarshalJSON tolerates numbers where text is expected (models often emit
// "rating": 4.5) and a single string for specialFeatures.
func (d *ActivityDetails) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Address = textValue(raw["address"])
	d.Hours = textValue(raw["hours"])
	d.Phone = textValue(raw["phone"])
	d.Website = textValue(raw["website"])
	d.Rating = textValue(raw["rating"])
	d.Cost = textValue(raw["cost"])
	d.Cuisine = textValue(raw["cuisine"])
	d.SpecialFeatures = textList(raw["specialFeatures"])
	d.TravelFromPrevious = textValue(raw["travelFromPrevious"])
	return nil
}

func (d *ActivityDetails) empty() bool {
	return d.Address == "" && d.Hours == "" && d.Phone == "" && d.Website == "" &&
		d.Rating == "" && d.Cost == "" && d.Cuisine == "" && len(d.SpecialFeatures) == 0 &&
		d.TravelFromPrevious == ""
}

func textValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

func textList(v any) []string {
	switch t := v.(type) {
	case []any:
		out := lo.FilterMap(t, func(item any, _ int) (string, bool) {
			s := textValue(item)
			return s, s != ""
		})
		if len(out) == 0 {
			return nil
		}
		return out
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
	}
	return nil
}

// Request is the validated input to itinerary generation.
type Request struct {
	Destination string
	Days        int
	Budget      float64
	Travelers   int
	Interests   []string
	TripType    string
}

// MaxDays bounds a single generation request.
const MaxDays = 30

func (r Request) Validate() error {
	switch {
	case strings.TrimSpace(r.Destination) == "":
		return fmt.Errorf("%w: destination is required", ErrInvalidRequest)
	case r.Days < 1:
		return fmt.Errorf("%w: at least one day is required", ErrInvalidRequest)
	case r.Days > MaxDays:
		return fmt.Errorf("%w: at most %d days", ErrInvalidRequest, MaxDays)
	case r.Budget <= 0:
		return fmt.Errorf("%w: budget must be positive", ErrInvalidRequest)
	case r.Travelers < 1:
		return fmt.Errorf("%w: at least one traveler is required", ErrInvalidRequest)
	}
	return nil
}

// DateLayout is the wire format for trip dates.
const DateLayout = "2006-01-02"

// TripSpec is the boundary form of a request, carrying dates instead of a day count.
type TripSpec struct {
	Destination string
	StartDate   time.Time
	EndDate     time.Time
	Budget      float64
	Travelers   int
	Interests   []string
	TripType    string
}

// DayCount returns the inclusive number of calendar days between start and end.
func DayCount(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours()/24) + 1
}

// Request converts the dates into a day count and validates the result.
func (t TripSpec) Request() (Request, error) {
	if t.StartDate.IsZero() || t.EndDate.IsZero() {
		return Request{}, fmt.Errorf("%w: start and end dates are required", ErrInvalidRequest)
	}
	if t.EndDate.Before(t.StartDate) {
		return Request{}, fmt.Errorf("%w: end date is before start date", ErrInvalidRequest)
	}
	req := Request{
		Destination: strings.TrimSpace(t.Destination),
		Days:        DayCount(t.StartDate, t.EndDate),
		Budget:      t.Budget,
		Travelers:   t.Travelers,
		Interests:   t.Interests,
		TripType:    strings.TrimSpace(t.TripType),
	}
	return req, req.Validate()
}
