// README: Trip service; owner-scoped CRUD, quota-guarded itinerary generation, calendar export.
package trip

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"tripcraft/internal/modules/aiusage"
	"tripcraft/internal/modules/itinerary"
)

// Repository is the persistence the service needs; *Store implements it.
type Repository interface {
	Create(ctx context.Context, t *Trip) error
	Get(ctx context.Context, id string) (*Trip, error)
	ListByOwner(ctx context.Context, ownerUID string) ([]*Trip, error)
	Update(ctx context.Context, t *Trip) error
	SaveItinerary(ctx context.Context, t *Trip) error
	Delete(ctx context.Context, id, ownerUID string) error
}

type Planner interface {
	Plan(ctx context.Context, spec itinerary.TripSpec) (*itinerary.Itinerary, itinerary.Source, error)
}

// Quota charges one model-backed generation to a user.
type Quota interface {
	UseToken(ctx context.Context, uid string) error
	Refund(ctx context.Context, uid string) error
}

type Service struct {
	store   Repository
	planner Planner
	quota   Quota
	now     func() time.Time
}

// NewService wires the trip service. quota may be nil to disable metering.
func NewService(store Repository, planner Planner, quota Quota) *Service {
	return &Service{store: store, planner: planner, quota: quota, now: time.Now}
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Trip, error) {
	if cmd.OwnerUID == "" {
		return nil, ErrBadRequest
	}
	d, err := cleanDetails(cmd.Details)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	t := &Trip{
		ID:          newID(),
		OwnerUID:    cmd.OwnerUID,
		Title:       d.Title,
		Destination: d.Destination,
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		Budget:      d.Budget,
		Travelers:   d.Travelers,
		Interests:   d.Interests,
		TripType:    d.TripType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get returns the trip if uid owns it.
func (s *Service) Get(ctx context.Context, uid, id string) (*Trip, error) {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.OwnerUID != uid {
		return nil, ErrForbidden
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, uid string) ([]*Trip, error) {
	trips, err := s.store.ListByOwner(ctx, uid)
	if err != nil {
		return nil, err
	}
	if trips == nil {
		trips = []*Trip{}
	}
	return trips, nil
}

func (s *Service) Update(ctx context.Context, cmd UpdateCommand) (*Trip, error) {
	current, err := s.Get(ctx, cmd.OwnerUID, cmd.ID)
	if err != nil {
		return nil, err
	}
	d, err := cleanDetails(cmd.Details)
	if err != nil {
		return nil, err
	}
	keepPlan := d.Destination == current.Destination &&
		d.StartDate.Equal(current.StartDate) && d.EndDate.Equal(current.EndDate)

	current.Title = d.Title
	current.Destination = d.Destination
	current.StartDate = d.StartDate
	current.EndDate = d.EndDate
	current.Budget = d.Budget
	current.Travelers = d.Travelers
	current.Interests = d.Interests
	current.TripType = d.TripType
	current.UpdatedAt = s.now().UTC()
	if !keepPlan {
		current.Itinerary, current.ItinerarySource = nil, ""
	}
	if err := s.store.Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *Service) Delete(ctx context.Context, uid, id string) error {
	if _, err := s.Get(ctx, uid, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id, uid)
}

// GenerateItinerary plans the trip and stores the result. One quota token is
// charged up front and refunded when only the fallback could be produced.
func (s *Service) GenerateItinerary(ctx context.Context, uid, id string) (*Trip, error) {
	t, err := s.Get(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	if s.quota != nil {
		if err := s.quota.UseToken(ctx, uid); err != nil {
			if errors.Is(err, aiusage.ErrInsufficientTokens) {
				return nil, ErrQuotaReached
			}
			return nil, err
		}
	}

	it, src, err := s.planner.Plan(ctx, t.Spec())
	if err != nil {
		s.refund(ctx, uid)
		if errors.Is(err, itinerary.ErrInvalidRequest) {
			return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		return nil, err
	}
	if src == itinerary.SourceFallback {
		s.refund(ctx, uid)
	}

	t.Itinerary, t.ItinerarySource = it, src
	t.UpdatedAt = s.now().UTC()
	if err := s.store.SaveItinerary(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) refund(ctx context.Context, uid string) {
	if s.quota == nil {
		return
	}
	if err := s.quota.Refund(ctx, uid); err != nil {
		log.Printf("trip: refund generation token for %s: %v", uid, err)
	}
}

// Calendar renders the trip's itinerary as an iCalendar document.
func (s *Service) Calendar(ctx context.Context, uid, id string) (string, error) {
	t, err := s.Get(ctx, uid, id)
	if err != nil {
		return "", err
	}
	if t.Itinerary == nil {
		return "", ErrNoItinerary
	}
	return BuildCalendar(t, s.now().UTC()), nil
}

func cleanDetails(d Details) (Details, error) {
	d.Destination = strings.TrimSpace(d.Destination)
	d.Title = strings.TrimSpace(d.Title)
	d.TripType = strings.TrimSpace(d.TripType)
	if d.Title == "" {
		d.Title = "Trip to " + d.Destination
	}
	if d.Travelers == 0 {
		d.Travelers = 1
	}
	if d.Interests == nil {
		d.Interests = []string{}
	}
	spec := itinerary.TripSpec{
		Destination: d.Destination,
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		Budget:      d.Budget,
		Travelers:   d.Travelers,
	}
	if _, err := spec.Request(); err != nil {
		return Details{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return d, nil
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
