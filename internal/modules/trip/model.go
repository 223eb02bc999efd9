// README: Trip aggregate, commands, and errors.
package trip

import (
	"errors"
	"time"

	"tripcraft/internal/modules/itinerary"
)

var (
	ErrNotFound     = errors.New("trip not found")
	ErrForbidden    = errors.New("trip belongs to another user")
	ErrBadRequest   = errors.New("bad request")
	ErrNoItinerary  = errors.New("trip has no itinerary yet")
	ErrQuotaReached = errors.New("monthly generation quota reached")
)

type Trip struct {
	ID              string               `json:"id"`
	OwnerUID        string               `json:"owner_uid"`
	Title           string               `json:"title"`
	Destination     string               `json:"destination"`
	StartDate       time.Time            `json:"start_date"`
	EndDate         time.Time            `json:"end_date"`
	Budget          float64              `json:"budget"`
	Travelers       int                  `json:"travelers"`
	Interests       []string             `json:"interests"`
	TripType        string               `json:"trip_type"`
	Itinerary       *itinerary.Itinerary `json:"itinerary,omitempty"`
	ItinerarySource itinerary.Source     `json:"itinerary_source,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// Spec returns the generation input for the trip.
func (t *Trip) Spec() itinerary.TripSpec {
	return itinerary.TripSpec{
		Destination: t.Destination,
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		Budget:      t.Budget,
		Travelers:   t.Travelers,
		Interests:   t.Interests,
		TripType:    t.TripType,
	}
}

// Details is the user-editable part of a trip.
type Details struct {
	Title       string
	Destination string
	StartDate   time.Time
	EndDate     time.Time
	Budget      float64
	Travelers   int
	Interests   []string
	TripType    string
}

type CreateCommand struct {
	OwnerUID string
	Details
}

type UpdateCommand struct {
	ID       string
	OwnerUID string
	Details
}
