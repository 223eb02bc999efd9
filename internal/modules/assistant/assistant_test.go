// README: Assistant tests (history ordering, failover retry, apology paths, prompt shape, windowing).
package assistant

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"tripcraft/internal/ai"
	"tripcraft/internal/ai/aitest"
)

func newAssistant(window int, models ...*aitest.Model) (*Assistant, *aitest.Factory) {
	factory := aitest.NewFactory(models...)
	names := make([]string, 0, len(models))
	for _, m := range models {
		names = append(names, m.ModelName)
	}
	return NewAssistant(ai.NewModelSelector(names, factory), window), factory
}

func TestHistoryOrdering(t *testing.T) {
	model := aitest.NewModel("gemini-a",
		aitest.Reply{Text: "r1"}, aitest.Reply{Text: "r2"}, aitest.Reply{Text: "r3"})
	a, _ := newAssistant(0, model)

	for i := 1; i <= 3; i++ {
		want := fmt.Sprintf("r%d", i)
		if got := a.SendMessage(context.Background(), fmt.Sprintf("m%d", i)); got != want {
			t.Fatalf("reply %d = %q, want %q", i, got, want)
		}
	}

	h := a.History()
	if len(h) != 7 {
		t.Fatalf("expected greeting + 3 pairs, got %d turns", len(h))
	}
	if h[0].Role != RoleAssistant || h[0].Text != Greeting {
		t.Fatalf("expected greeting first, got %+v", h[0])
	}
	for i := 1; i <= 3; i++ {
		u, r := h[2*i-1], h[2*i]
		if u.Role != RoleUser || u.Text != fmt.Sprintf("m%d", i) {
			t.Fatalf("turn %d: unexpected user entry %+v", i, u)
		}
		if r.Role != RoleAssistant || r.Text != fmt.Sprintf("r%d", i) || r.Failed {
			t.Fatalf("turn %d: unexpected assistant entry %+v", i, r)
		}
	}
}

func TestPromptReplaysHistory(t *testing.T) {
	model := aitest.NewModel("gemini-a", aitest.Reply{Text: "Try Kyoto."}, aitest.Reply{Text: "Spring."})
	a, _ := newAssistant(0, model)
	a.SendMessage(context.Background(), "Where should I go in Japan?")
	a.SendMessage(context.Background(), "When?")

	prompt := model.Prompts()[1]
	for _, want := range []string{
		"AI: " + Greeting,
		"User: Where should I go in Japan?\nAI: Try Kyoto.\nUser: When?\n",
		formatRule,
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if !strings.HasSuffix(prompt, "\nAI:") {
		t.Fatal("prompt must end with the AI cue")
	}
	if !strings.HasPrefix(prompt, persona) {
		t.Fatal("prompt must start with the persona")
	}
}

func TestFailoverRetriesOnce(t *testing.T) {
	first := aitest.NewModel("gemini-a", aitest.Reply{Err: aitest.ErrScripted})
	second := aitest.NewModel("gemini-b", aitest.Reply{Text: "hello"})
	a, _ := newAssistant(0, first, second)

	if got := a.SendMessage(context.Background(), "hi"); got != "hello" {
		t.Fatalf("expected retry reply, got %q", got)
	}
	if first.Calls() != 1 || second.Calls() != 1 {
		t.Fatalf("expected one call per model, got %d/%d", first.Calls(), second.Calls())
	}
	if first.Prompts()[0] != second.Prompts()[0] {
		t.Fatal("retry must resend the same prompt")
	}
}

func TestDoubleFailureReturnsApology(t *testing.T) {
	first := aitest.NewModel("gemini-a", aitest.Reply{Err: aitest.ErrScripted})
	second := aitest.NewModel("gemini-b", aitest.Reply{Err: aitest.ErrScripted}, aitest.Reply{Text: "back"})
	third := aitest.NewModel("gemini-c", aitest.Reply{Text: "unused"})
	a, _ := newAssistant(0, first, second, third)

	if got := a.SendMessage(context.Background(), "hi"); got != ApologyReply {
		t.Fatalf("expected apology, got %q", got)
	}
	if third.Calls() != 0 {
		t.Fatal("only one retry is allowed")
	}

	h := a.History()
	if len(h) != 3 || !h[2].Failed || h[2].Text != ApologyReply {
		t.Fatalf("expected failed pair recorded, got %+v", h)
	}

	// The failed pair is kept for audit but not replayed.
	if got := a.SendMessage(context.Background(), "again"); got != "back" {
		t.Fatalf("expected recovery on the retry model, got %q", got)
	}
	prompt := second.Prompts()[1]
	if strings.Contains(prompt, "User: hi\n") || strings.Contains(prompt, ApologyReply) {
		t.Fatalf("failed exchange leaked into prompt:\n%s", prompt)
	}
}

func TestExhaustedSelectorReturnsApology(t *testing.T) {
	factory := aitest.NewFactory()
	sel := ai.NewModelSelector([]string{"gemini-a", "gemini-b"}, factory)
	if sel.Initialize() {
		t.Fatal("expected exhaustion")
	}
	a := NewAssistant(sel, 0)

	if got := a.SendMessage(context.Background(), "hello?"); got != ApologyReply {
		t.Fatalf("expected apology, got %q", got)
	}
	if len(a.History()) != 1 {
		t.Fatal("history must not change when no model is ready")
	}
	if factory.TotalCalls() != 0 {
		t.Fatal("no model may be called")
	}
}

func TestHistoryWindow(t *testing.T) {
	model := aitest.NewModel("gemini-a", aitest.Reply{Text: "ok"})
	a, _ := newAssistant(4, model)
	for i := 0; i < 5; i++ {
		a.SendMessage(context.Background(), fmt.Sprintf("m%d", i))
	}

	h := a.History()
	if len(h) != 5 {
		t.Fatalf("expected greeting + 4 turns, got %d", len(h))
	}
	if h[0].Text != Greeting || h[1].Role != RoleUser || h[1].Text != "m3" || h[3].Text != "m4" {
		t.Fatalf("unexpected window %+v", h)
	}
}

func TestSmallWindowKeepsLatestExchange(t *testing.T) {
	for _, window := range []int{1, 3} {
		model := aitest.NewModel("gemini-a", aitest.Reply{Text: "ok"})
		a, _ := newAssistant(window, model)
		for i := 0; i < 3; i++ {
			if got := a.SendMessage(context.Background(), fmt.Sprintf("m%d", i)); got != "ok" {
				t.Fatalf("window %d: unexpected reply %q", window, got)
			}
			h := a.History()
			last := h[len(h)-1]
			if last.Role != RoleAssistant || last.Text != "ok" {
				t.Fatalf("window %d: reply missing from history %+v", window, h)
			}
			if prev := h[len(h)-2]; prev.Role != RoleUser || prev.Text != fmt.Sprintf("m%d", i) {
				t.Fatalf("window %d: user turn missing from history %+v", window, h)
			}
		}
	}
}

func TestRestoreIgnoresInvalidSnapshot(t *testing.T) {
	a, _ := newAssistant(0, aitest.NewModel("gemini-a", aitest.Reply{Text: "ok"}))
	a.restore([]Turn{{Role: RoleUser, Text: "orphan"}})
	if h := a.History(); len(h) != 1 || h[0].Text != Greeting {
		t.Fatalf("expected untouched history, got %+v", h)
	}
}
