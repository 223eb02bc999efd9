package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	httptransport "tripcraft/internal/http"
	"tripcraft/internal/ai"
	"tripcraft/internal/ai/aitest"
	"tripcraft/internal/http/middleware"
	"tripcraft/internal/infra"
	"tripcraft/internal/modules/assistant"
	"tripcraft/internal/modules/itinerary"
	"tripcraft/internal/modules/trip"
)

type rejectingVerifier struct{}

func (rejectingVerifier) VerifyIDToken(context.Context, string) (*infra.FirebaseToken, error) {
	return nil, errors.New("invalid")
}

func newTestHandler(t *testing.T, model *aitest.Model) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	factory := aitest.NewFactory(model)
	chat := assistant.NewService(func() *ai.ModelSelector {
		return ai.NewModelSelector([]string{model.ModelName}, factory)
	}, nil, assistant.Config{})
	// No selector: every itinerary is served from the fallback catalog.
	plans := itinerary.NewService(nil, itinerary.NewFallbackBuilder(nil), nil)
	srv := httptransport.NewServer(httptransport.ServerDeps{
		Assistant: chat,
		Itinerary: plans,
		Trips:     trip.NewService(nil, nil, nil),
		Verifier:  rejectingVerifier{},
	})
	return srv.Routes()
}

func do(h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, aitest.NewModel("gemini-a", aitest.Reply{Text: "hi"}))
	w := do(h, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK || w.Body.String() != "OK" {
		t.Fatalf("health: %d %q", w.Code, w.Body.String())
	}
}

func TestChatEmptyMessageSkipsModel(t *testing.T) {
	model := aitest.NewModel("gemini-a", aitest.Reply{Text: "hi"})
	h := newTestHandler(t, model)

	w := do(h, http.MethodPost, "/api/assistant/chat", map[string]string{"message": "   "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), assistant.ClarificationReply) {
		t.Fatalf("expected clarification, got %s", w.Body.String())
	}
	if model.Calls() != 0 {
		t.Fatalf("model must not be called, got %d calls", model.Calls())
	}
}

func TestChatReplyAndHistory(t *testing.T) {
	model := aitest.NewModel("gemini-a", aitest.Reply{Text: "Try the Louvre."})
	h := newTestHandler(t, model)

	w := do(h, http.MethodPost, "/api/assistant/chat", map[string]string{"message": "What to see in Paris?"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var reply assistant.Reply
	if err := json.Unmarshal(w.Body.Bytes(), &reply); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if reply.Response != "Try the Louvre." || reply.SessionID == "" {
		t.Fatalf("unexpected reply %+v", reply)
	}

	w = do(h, http.MethodGet, "/api/assistant/sessions/"+reply.SessionID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("history: expected 200, got %d", w.Code)
	}
	var body struct {
		History []assistant.Turn `json:"history"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(body.History) != 3 {
		t.Fatalf("expected greeting plus one exchange, got %d turns", len(body.History))
	}

	if w = do(h, http.MethodDelete, "/api/assistant/sessions/"+reply.SessionID, nil); w.Code != http.StatusNoContent {
		t.Fatalf("reset: expected 204, got %d", w.Code)
	}
	if w = do(h, http.MethodGet, "/api/assistant/sessions/"+reply.SessionID, nil); w.Code != http.StatusNotFound {
		t.Fatalf("after reset: expected 404, got %d", w.Code)
	}
}

func TestGenerateItineraryFallback(t *testing.T) {
	h := newTestHandler(t, aitest.NewModel("gemini-a", aitest.Reply{Text: "unused"}))

	w := do(h, http.MethodPost, "/api/itineraries/generate", map[string]any{
		"destination": "Paris",
		"start_date":  "2025-06-01",
		"end_date":    "2025-06-03",
		"budget":      1500,
		"travelers":   2,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Itinerary []itinerary.DaySchedule `json:"itinerary"`
		Source    itinerary.Source        `json:"source"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Itinerary) != 3 || body.Source != itinerary.SourceFallback {
		t.Fatalf("expected 3 fallback days, got %d from %s", len(body.Itinerary), body.Source)
	}
	if body.Itinerary[0].Activities[0].ID != "1-1" {
		t.Fatalf("unexpected first id %q", body.Itinerary[0].Activities[0].ID)
	}
}

func TestGenerateItineraryRejectsBadInput(t *testing.T) {
	h := newTestHandler(t, aitest.NewModel("gemini-a", aitest.Reply{Text: "unused"}))

	cases := []map[string]any{
		{"destination": "Paris", "start_date": "June 1", "end_date": "2025-06-03", "budget": 100, "travelers": 1},
		{"destination": "Paris", "start_date": "2025-06-05", "end_date": "2025-06-03", "budget": 100, "travelers": 1},
		{"destination": "", "start_date": "2025-06-01", "end_date": "2025-06-03", "budget": 100, "travelers": 1},
	}
	for i, body := range cases {
		if w := do(h, http.MethodPost, "/api/itineraries/generate", body); w.Code != http.StatusBadRequest {
			t.Fatalf("case %d: expected 400, got %d", i, w.Code)
		}
	}
}

func TestTripRoutesRequireAuth(t *testing.T) {
	h := newTestHandler(t, aitest.NewModel("gemini-a", aitest.Reply{Text: "unused"}))

	for _, path := range []string{"/api/trips", "/api/trips/abc", "/api/usage"} {
		if w := do(h, http.MethodGet, path, nil); w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, w.Code)
		}
	}
}

func limitedItineraryRoutes(proxies []string) http.Handler {
	gin.SetMode(gin.TestMode)
	srv := httptransport.NewServer(httptransport.ServerDeps{
		Itinerary:      itinerary.NewService(nil, itinerary.NewFallbackBuilder(nil), nil),
		Limiter:        middleware.NewRateLimiter(0.001, 1, 0),
		TrustedProxies: proxies,
	})
	return srv.Routes()
}

func postFrom(h http.Handler, remote, forwarded string) int {
	body := `{"destination":"Paris","start_date":"2025-06-01","end_date":"2025-06-02","budget":500,"travelers":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/itineraries/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", forwarded)
	req.RemoteAddr = remote
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitIgnoresForwardedForFromClients(t *testing.T) {
	h := limitedItineraryRoutes(nil)

	accepted := 0
	for i := 0; i < 20; i++ {
		if postFrom(h, "203.0.113.7:4000", fmt.Sprintf("10.0.0.%d", i)) == http.StatusOK {
			accepted++
		}
	}
	if accepted != 1 {
		t.Fatalf("expected one accepted request from a single peer, got %d", accepted)
	}
}

func TestRateLimitHonorsTrustedProxy(t *testing.T) {
	h := limitedItineraryRoutes([]string{"192.168.1.1"})

	if code := postFrom(h, "192.168.1.1:4000", "198.51.100.1"); code != http.StatusOK {
		t.Fatalf("first client: expected 200, got %d", code)
	}
	if code := postFrom(h, "192.168.1.1:4000", "198.51.100.2"); code != http.StatusOK {
		t.Fatalf("second client behind the proxy: expected 200, got %d", code)
	}
	if code := postFrom(h, "192.168.1.1:4000", "198.51.100.1"); code != http.StatusTooManyRequests {
		t.Fatalf("repeat client: expected 429, got %d", code)
	}
}
