// README: Trip service tests (ownership, validation, quota charging, itinerary invalidation).
package trip

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tripcraft/internal/modules/aiusage"
	"tripcraft/internal/modules/itinerary"
)

type memoryRepo struct {
	mu    sync.Mutex
	trips map[string]*Trip
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{trips: map[string]*Trip{}}
}

func (m *memoryRepo) Create(_ context.Context, t *Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.trips[t.ID] = &cp
	return nil
}

func (m *memoryRepo) Get(_ context.Context, id string) (*Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trips[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memoryRepo) ListByOwner(_ context.Context, uid string) ([]*Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Trip
	for _, t := range m.trips {
		if t.OwnerUID == uid {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memoryRepo) Update(ctx context.Context, t *Trip) error {
	return m.Create(ctx, t)
}

func (m *memoryRepo) SaveItinerary(ctx context.Context, t *Trip) error {
	return m.Create(ctx, t)
}

func (m *memoryRepo) Delete(_ context.Context, id, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.trips[id]; !ok || t.OwnerUID != uid {
		return ErrNotFound
	}
	delete(m.trips, id)
	return nil
}

type stubPlanner struct {
	source itinerary.Source
	specs  []itinerary.TripSpec
}

func (p *stubPlanner) Plan(_ context.Context, spec itinerary.TripSpec) (*itinerary.Itinerary, itinerary.Source, error) {
	p.specs = append(p.specs, spec)
	req, err := spec.Request()
	if err != nil {
		return nil, "", err
	}
	return itinerary.NewFallbackBuilder(nil).Build(req.Days, req.Destination), p.source, nil
}

type stubQuota struct {
	remaining int
	refunds   int
}

func (q *stubQuota) UseToken(context.Context, string) error {
	if q.remaining == 0 {
		return aiusage.ErrInsufficientTokens
	}
	q.remaining--
	return nil
}

func (q *stubQuota) Refund(context.Context, string) error {
	q.refunds++
	q.remaining++
	return nil
}

func sampleDetails() Details {
	return Details{
		Destination: "Rome",
		StartDate:   time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, 9, 12, 0, 0, 0, 0, time.UTC),
		Budget:      1200,
		Travelers:   2,
	}
}

func TestCreateValidates(t *testing.T) {
	svc := NewService(newMemoryRepo(), &stubPlanner{}, nil)
	ctx := context.Background()

	bad := sampleDetails()
	bad.EndDate = bad.StartDate.AddDate(0, 0, -2)
	if _, err := svc.Create(ctx, CreateCommand{OwnerUID: "u1", Details: bad}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateCommand{Details: sampleDetails()}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest without owner, got %v", err)
	}

	tr, err := svc.Create(ctx, CreateCommand{OwnerUID: "u1", Details: sampleDetails()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(tr.ID) != 32 || tr.Title != "Trip to Rome" {
		t.Fatalf("unexpected trip %+v", tr)
	}
}

func TestOwnershipIsEnforced(t *testing.T) {
	svc := NewService(newMemoryRepo(), &stubPlanner{}, nil)
	ctx := context.Background()
	tr, _ := svc.Create(ctx, CreateCommand{OwnerUID: "owner", Details: sampleDetails()})

	if _, err := svc.Get(ctx, "intruder", tr.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, "intruder", tr.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden on delete, got %v", err)
	}
	if _, err := svc.GenerateItinerary(ctx, "intruder", tr.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden on generate, got %v", err)
	}
	if list, _ := svc.List(ctx, "intruder"); len(list) != 0 {
		t.Fatalf("expected no trips for intruder, got %d", len(list))
	}
}

func TestGenerateItineraryChargesQuota(t *testing.T) {
	quota := &stubQuota{remaining: 1}
	planner := &stubPlanner{source: itinerary.SourceModel}
	svc := NewService(newMemoryRepo(), planner, quota)
	ctx := context.Background()
	tr, _ := svc.Create(ctx, CreateCommand{OwnerUID: "u1", Details: sampleDetails()})

	got, err := svc.GenerateItinerary(ctx, "u1", tr.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got.Itinerary == nil || len(got.Itinerary.Days) != 3 || got.ItinerarySource != itinerary.SourceModel {
		t.Fatalf("unexpected itinerary %+v", got)
	}
	if quota.remaining != 0 {
		t.Fatalf("expected one token charged, %d left", quota.remaining)
	}

	if _, err := svc.GenerateItinerary(ctx, "u1", tr.ID); !errors.Is(err, ErrQuotaReached) {
		t.Fatalf("expected ErrQuotaReached, got %v", err)
	}
	if len(planner.specs) != 1 {
		t.Fatal("planner must not run without quota")
	}

	stored, _ := svc.Get(ctx, "u1", tr.ID)
	if stored.Itinerary == nil {
		t.Fatal("itinerary was not persisted")
	}
}

func TestFallbackGenerationIsRefunded(t *testing.T) {
	quota := &stubQuota{remaining: 5}
	svc := NewService(newMemoryRepo(), &stubPlanner{source: itinerary.SourceFallback}, quota)
	ctx := context.Background()
	tr, _ := svc.Create(ctx, CreateCommand{OwnerUID: "u1", Details: sampleDetails()})

	if _, err := svc.GenerateItinerary(ctx, "u1", tr.ID); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if quota.remaining != 5 || quota.refunds != 1 {
		t.Fatalf("expected refund, remaining=%d refunds=%d", quota.remaining, quota.refunds)
	}
}

func TestUpdateClearsStaleItinerary(t *testing.T) {
	svc := NewService(newMemoryRepo(), &stubPlanner{source: itinerary.SourceModel}, nil)
	ctx := context.Background()
	tr, _ := svc.Create(ctx, CreateCommand{OwnerUID: "u1", Details: sampleDetails()})
	if _, err := svc.GenerateItinerary(ctx, "u1", tr.ID); err != nil {
		t.Fatalf("generate: %v", err)
	}

	d := sampleDetails()
	d.Title = "Roman holiday"
	updated, err := svc.Update(ctx, UpdateCommand{ID: tr.ID, OwnerUID: "u1", Details: d})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Itinerary == nil {
		t.Fatal("title change must keep the itinerary")
	}

	d.EndDate = d.EndDate.AddDate(0, 0, 1)
	updated, err = svc.Update(ctx, UpdateCommand{ID: tr.ID, OwnerUID: "u1", Details: d})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Itinerary != nil || updated.ItinerarySource != "" {
		t.Fatal("date change must clear the itinerary")
	}
}

func TestCalendarRequiresItinerary(t *testing.T) {
	svc := NewService(newMemoryRepo(), &stubPlanner{source: itinerary.SourceModel}, nil)
	ctx := context.Background()
	tr, _ := svc.Create(ctx, CreateCommand{OwnerUID: "u1", Details: sampleDetails()})

	if _, err := svc.Calendar(ctx, "u1", tr.ID); !errors.Is(err, ErrNoItinerary) {
		t.Fatalf("expected ErrNoItinerary, got %v", err)
	}
	svc.GenerateItinerary(ctx, "u1", tr.ID)
	doc, err := svc.Calendar(ctx, "u1", tr.ID)
	if err != nil || doc == "" {
		t.Fatalf("calendar: %v", err)
	}
}
