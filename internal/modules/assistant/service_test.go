// README: Session service tests (empty-message rejection, isolation, persistence, unavailability).
package assistant

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"tripcraft/internal/ai"
	"tripcraft/internal/ai/aitest"
)

// memoryStore is an in-memory HistoryStore.
type memoryStore struct {
	mu   sync.Mutex
	data map[string][]Turn
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string][]Turn{}}
}

func (m *memoryStore) Load(_ context.Context, id string) ([]Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.data[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return append([]Turn(nil), h...), nil
}

func (m *memoryStore) Save(_ context.Context, id string, h []Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[id] = append([]Turn(nil), h...)
	return nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func echoFactory(model *aitest.Model) SelectorFactory {
	factory := aitest.NewFactory(model)
	return func() *ai.ModelSelector {
		return ai.NewModelSelector([]string{model.ModelName}, factory)
	}
}

func TestSendRejectsEmptyMessage(t *testing.T) {
	model := aitest.NewModel("gemini-a", aitest.Reply{Text: "hi"})
	svc := NewService(echoFactory(model), nil, Config{})

	for _, msg := range []string{"", "   ", "\n\t"} {
		if _, err := svc.Send(context.Background(), "s1", msg); !errors.Is(err, ErrEmptyMessage) {
			t.Fatalf("expected ErrEmptyMessage for %q, got %v", msg, err)
		}
	}
	if model.Calls() != 0 {
		t.Fatal("empty message must not reach the model")
	}
}

func TestSendAssignsSessionID(t *testing.T) {
	svc := NewService(echoFactory(aitest.NewModel("gemini-a", aitest.Reply{Text: "hi"})), nil, Config{})
	reply, err := svc.Send(context.Background(), "", "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if reply.SessionID == "" || reply.Response != "hi" {
		t.Fatalf("unexpected reply %+v", reply)
	}
	if id, err := uuid.Parse(reply.SessionID); err != nil || id.Version() != 4 {
		t.Fatalf("expected a random v4 session id, got %q (%v)", reply.SessionID, err)
	}
	other, _ := svc.Send(context.Background(), "", "hello again")
	if other.SessionID == reply.SessionID {
		t.Fatal("new sessions must get distinct ids")
	}
	h, err := svc.History(context.Background(), reply.SessionID)
	if err != nil || len(h) != 3 {
		t.Fatalf("expected 3 turns for new session, got %d (%v)", len(h), err)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	svc := NewService(echoFactory(aitest.NewModel("gemini-a", aitest.Reply{Text: "ok"})), nil, Config{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, id := range []string{"alice", "bob"} {
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				if _, err := svc.Send(ctx, id, "from "+id); err != nil {
					t.Errorf("send: %v", err)
				}
			}(id)
		}
	}
	wg.Wait()

	for _, id := range []string{"alice", "bob"} {
		h, err := svc.History(ctx, id)
		if err != nil {
			t.Fatalf("history %s: %v", id, err)
		}
		if len(h) != 11 {
			t.Fatalf("%s: expected 11 turns, got %d", id, len(h))
		}
		for _, turn := range h[1:] {
			if turn.Role == RoleUser && turn.Text != "from "+id {
				t.Fatalf("%s: foreign message %q in history", id, turn.Text)
			}
		}
	}
}

func TestSessionRestoredFromStore(t *testing.T) {
	store := newMemoryStore()
	model := aitest.NewModel("gemini-a", aitest.Reply{Text: "first"}, aitest.Reply{Text: "second"})
	factory := echoFactory(model)
	ctx := context.Background()

	NewService(factory, store, Config{}).Send(ctx, "trip-1", "plan Lisbon")

	// A new service stands in for a restarted process.
	restarted := NewService(factory, store, Config{})
	if _, err := restarted.Send(ctx, "trip-1", "and Porto?"); err != nil {
		t.Fatalf("send: %v", err)
	}
	h, err := restarted.History(ctx, "trip-1")
	if err != nil || len(h) != 5 {
		t.Fatalf("expected restored history of 5 turns, got %d (%v)", len(h), err)
	}
	if h[1].Text != "plan Lisbon" || h[4].Text != "second" {
		t.Fatalf("unexpected restored history %+v", h)
	}
}

func TestResetForgetsSession(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(echoFactory(aitest.NewModel("gemini-a", aitest.Reply{Text: "ok"})), store, Config{})
	ctx := context.Background()
	svc.Send(ctx, "s1", "hi")

	if err := svc.Reset(ctx, "s1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := svc.History(ctx, "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestUnavailableServiceNeverCallsModel(t *testing.T) {
	svc := NewService(nil, nil, Config{})
	reply, err := svc.Send(context.Background(), "s1", "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if reply.Response != UnavailableReply || svc.Available() {
		t.Fatalf("expected unavailable reply, got %+v", reply)
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	addr := os.Getenv("TRIPCRAFT_REDIS_ADDR")
	if addr == "" {
		t.Skip("TRIPCRAFT_REDIS_ADDR not set; skipping Redis-backed tests")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	ctx := context.Background()
	store := NewRedisStore(client, time.Minute)
	id := "test-" + time.Now().Format("150405.000000")
	t.Cleanup(func() { store.Delete(ctx, id) })

	if _, err := store.Load(ctx, id); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	want := []Turn{{Role: RoleAssistant, Text: Greeting}, {Role: RoleUser, Text: "hi"}}
	if err := store.Save(ctx, id, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Load(ctx, id)
	if err != nil || len(got) != 2 || got[1].Text != "hi" {
		t.Fatalf("unexpected load %+v (%v)", got, err)
	}
	ttl, err := client.TTL(ctx, HistoryKey(id)).Result()
	if err != nil || ttl <= 0 {
		t.Fatalf("expected expiring key, got %v (%v)", ttl, err)
	}
}
