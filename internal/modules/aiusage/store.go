// README: AI usage store backed by PostgreSQL; one row per user with a lazily reset monthly counter.
package aiusage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store handles ai_usage persistence.
type Store struct {
	db      *pgxpool.Pool
	monthly int
	now     func() time.Time
}

// NewStore returns a Store granting monthly tokens per user; monthly <= 0 means DefaultTokens.
func NewStore(db *pgxpool.Pool, monthly int) *Store {
	if monthly <= 0 {
		monthly = DefaultTokens
	}
	return &Store{db: db, monthly: monthly, now: time.Now}
}

// UseToken atomically checks the monthly quota and deducts one token.
// The counter is reset to the monthly allowance when last_reset_month is behind.
// Returns ErrInsufficientTokens when no row was updated (quota exhausted or user absent).
func (s *Store) UseToken(ctx context.Context, uid string) error {
	month := s.now().Format(monthLayout)

	tag, err := s.db.Exec(ctx, `
		UPDATE ai_usage SET
			tokens_remaining = CASE WHEN last_reset_month != $1 THEN $2 - 1 ELSE tokens_remaining - 1 END,
			last_reset_month = $1
		WHERE uid = $3 AND (last_reset_month < $1 OR tokens_remaining > 0)
	`, month, s.monthly, uid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientTokens
	}
	return nil
}

// Refund returns one token, used when a charged generation fell back without a model answer.
func (s *Store) Refund(ctx context.Context, uid string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE ai_usage SET tokens_remaining = LEAST(tokens_remaining + 1, $2)
		WHERE uid = $1 AND last_reset_month = $3
	`, uid, s.monthly, s.now().Format(monthLayout))
	return err
}

// EnsureUser inserts a row for uid with the full allowance; existing rows are left alone.
func (s *Store) EnsureUser(ctx context.Context, uid string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO ai_usage (uid, tokens_remaining, last_reset_month)
		VALUES ($1, $2, $3)
		ON CONFLICT (uid) DO NOTHING
	`, uid, s.monthly, s.now().Format(monthLayout))
	return err
}

// Get reports the remaining allowance, applying the monthly reset on read.
// A user without a row has the full allowance.
func (s *Store) Get(ctx context.Context, uid string) (Usage, error) {
	month := s.now().Format(monthLayout)
	u := Usage{UID: uid, Month: month, Remaining: s.monthly}

	var remaining int
	var last string
	err := s.db.QueryRow(ctx, `
		SELECT tokens_remaining, last_reset_month FROM ai_usage WHERE uid = $1
	`, uid).Scan(&remaining, &last)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, nil
	}
	if err != nil {
		return Usage{}, err
	}
	if last == month {
		u.Remaining = remaining
	}
	return u, nil
}
