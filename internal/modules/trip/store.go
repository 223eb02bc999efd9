// README: Trip store backed by PostgreSQL; itineraries are kept as JSONB.
package trip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tripcraft/internal/modules/itinerary"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const tripColumns = `id, owner_uid, title, destination, start_date, end_date, budget, travelers,
	interests, trip_type, itinerary, itinerary_source, created_at, updated_at`

func (s *Store) Create(ctx context.Context, t *Trip) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO trips (
			id, owner_uid, title, destination, start_date, end_date,
			budget, travelers, interests, trip_type, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		t.ID, t.OwnerUID, t.Title, t.Destination, t.StartDate, t.EndDate,
		t.Budget, t.Travelers, nonNil(t.Interests), t.TripType, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id string) (*Trip, error) {
	row := s.db.QueryRow(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = $1`, id)
	t, err := scanTrip(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func (s *Store) ListByOwner(ctx context.Context, ownerUID string) ([]*Trip, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+tripColumns+` FROM trips
		WHERE owner_uid = $1
		ORDER BY start_date, created_at`, ownerUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update overwrites the editable fields. Changing the dates or destination
// invalidates a stored itinerary, so it is cleared in that case.
func (s *Store) Update(ctx context.Context, t *Trip) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE trips SET
			title = $3, destination = $4, start_date = $5, end_date = $6,
			budget = $7, travelers = $8, interests = $9, trip_type = $10,
			itinerary = CASE WHEN destination = $4 AND start_date = $5 AND end_date = $6 THEN itinerary END,
			itinerary_source = CASE WHEN destination = $4 AND start_date = $5 AND end_date = $6 THEN itinerary_source END,
			updated_at = $11
		WHERE id = $1 AND owner_uid = $2`,
		t.ID, t.OwnerUID, t.Title, t.Destination, t.StartDate, t.EndDate,
		t.Budget, t.Travelers, nonNil(t.Interests), t.TripType, t.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SaveItinerary(ctx context.Context, t *Trip) error {
	doc, err := json.Marshal(t.Itinerary)
	if err != nil {
		return fmt.Errorf("encode itinerary: %w", err)
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE trips SET itinerary = $2, itinerary_source = $3, updated_at = $4
		WHERE id = $1`,
		t.ID, doc, string(t.ItinerarySource), t.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id, ownerUID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM trips WHERE id = $1 AND owner_uid = $2`, id, ownerUID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTrip(row pgx.Row) (*Trip, error) {
	var t Trip
	var doc []byte
	var source *string
	err := row.Scan(
		&t.ID, &t.OwnerUID, &t.Title, &t.Destination, &t.StartDate, &t.EndDate,
		&t.Budget, &t.Travelers, &t.Interests, &t.TripType, &doc, &source,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(doc) > 0 {
		var it itinerary.Itinerary
		if err := json.Unmarshal(doc, &it); err != nil {
			return nil, fmt.Errorf("decode itinerary for trip %s: %w", t.ID, err)
		}
		t.Itinerary = &it
	}
	if source != nil {
		t.ItinerarySource = itinerary.Source(*source)
	}
	return &t, nil
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
