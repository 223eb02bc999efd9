// README: Session-keyed assistant service; in-process session cache with optional durable snapshots.
package assistant

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"tripcraft/internal/ai"
)

// HistoryStore persists conversation snapshots between process restarts.
type HistoryStore interface {
	Load(ctx context.Context, sessionID string) ([]Turn, error)
	Save(ctx context.Context, sessionID string, history []Turn) error
	Delete(ctx context.Context, sessionID string) error
}

// SelectorFactory builds a fresh selector for each new session.
type SelectorFactory func() *ai.ModelSelector

type Config struct {
	Window     int
	SessionTTL time.Duration
}

// DefaultSessionTTL is how long an idle session stays in memory.
const DefaultSessionTTL = 2 * time.Hour

// Reply is the result of one chat exchange.
type Reply struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
}

type Service struct {
	sessions    *cache.Cache
	newSelector SelectorFactory
	store       HistoryStore
	window      int

	// create serializes session construction so two first requests share one Assistant.
	create sync.Mutex
}

// NewService wires the assistant. A nil newSelector means no model credential is
// configured: every message gets UnavailableReply and no model is called.
// store may be nil.
func NewService(newSelector SelectorFactory, store HistoryStore, cfg Config) *Service {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Service{
		sessions:    cache.New(ttl, ttl/2),
		newSelector: newSelector,
		store:       store,
		window:      cfg.Window,
	}
}

// Available reports whether a model provider is configured.
func (s *Service) Available() bool {
	return s.newSelector != nil
}

// Send delivers message to the session's assistant. An empty sessionID starts a
// new session under a random id; the id is the only credential for reading the
// conversation back. Only ErrEmptyMessage is returned as an error.
func (s *Service) Send(ctx context.Context, sessionID, message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, ErrEmptyMessage
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if !s.Available() {
		return Reply{SessionID: sessionID, Response: UnavailableReply}, nil
	}

	a := s.session(ctx, sessionID)
	resp := a.SendMessage(ctx, message)
	s.persist(ctx, sessionID, a)
	return Reply{SessionID: sessionID, Response: resp}, nil
}

// History returns the session's conversation, greeting first.
func (s *Service) History(ctx context.Context, sessionID string) ([]Turn, error) {
	if v, ok := s.sessions.Get(sessionID); ok {
		return v.(*Assistant).History(), nil
	}
	if s.store != nil {
		history, err := s.store.Load(ctx, sessionID)
		if err == nil && len(history) > 0 {
			return history, nil
		}
		if err != nil && !errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
	}
	return nil, ErrSessionNotFound
}

// Reset forgets the session in memory and in the store.
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	s.sessions.Delete(sessionID)
	if s.store == nil {
		return nil
	}
	return s.store.Delete(ctx, sessionID)
}

func (s *Service) session(ctx context.Context, id string) *Assistant {
	if v, ok := s.sessions.Get(id); ok {
		s.sessions.SetDefault(id, v)
		return v.(*Assistant)
	}

	s.create.Lock()
	defer s.create.Unlock()
	if v, ok := s.sessions.Get(id); ok {
		return v.(*Assistant)
	}

	a := NewAssistant(s.newSelector(), s.window)
	if s.store != nil {
		history, err := s.store.Load(ctx, id)
		switch {
		case err == nil:
			a.restore(history)
		case !errors.Is(err, ErrSessionNotFound):
			log.Printf("assistant: load session %s: %v", id, err)
		}
	}
	s.sessions.SetDefault(id, a)
	return a
}

func (s *Service) persist(ctx context.Context, id string, a *Assistant) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, id, a.History()); err != nil {
		log.Printf("assistant: save session %s: %v", id, err)
	}
}
