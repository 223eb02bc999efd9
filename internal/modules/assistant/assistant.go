// README: Single-conversation assistant; history plus model failover with one retry.
package assistant

import (
	"context"
	"log"
	"sync"
	"time"

	"tripcraft/internal/ai"
)

// Assistant owns one conversation and its model selector. Calls are serialized.
type Assistant struct {
	mu       sync.Mutex
	selector *ai.ModelSelector
	history  []Turn
	window   int
}

// NewAssistant keeps the greeting plus window turns of history. The window is
// rounded up to an even count of at least one exchange.
func NewAssistant(selector *ai.ModelSelector, window int) *Assistant {
	switch {
	case window <= 0:
		window = DefaultWindow
	case window < 2:
		window = 2
	}
	window += window % 2
	return &Assistant{
		selector: selector,
		history:  []Turn{{Role: RoleAssistant, Text: Greeting, At: time.Now().UTC()}},
		window:   window,
	}
}

// SendMessage returns the model reply, or ApologyReply when no model could answer.
// It never returns an error; callers reject empty text before calling it.
func (a *Assistant) SendMessage(ctx context.Context, text string) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.selector == nil {
		return ApologyReply
	}
	h, ok := a.selector.Acquire()
	if !ok {
		return ApologyReply
	}

	a.append(Turn{Role: RoleUser, Text: text})
	prompt := buildPrompt(a.history)

	reply, err := h.Model.Generate(ctx, prompt, ai.ChatConfig())
	if err != nil {
		log.Printf("assistant: generation with %s failed: %v", h.Model.Name(), err)
		if next, ok := a.selector.AdvanceFrom(h); ok {
			reply, err = next.Model.Generate(ctx, prompt, ai.ChatConfig())
			if err != nil {
				log.Printf("assistant: retry with %s failed: %v", next.Model.Name(), err)
			}
		}
	}
	if err != nil {
		a.append(Turn{Role: RoleAssistant, Text: ApologyReply, Failed: true})
		return ApologyReply
	}

	a.append(Turn{Role: RoleAssistant, Text: reply})
	return reply
}

// append records t and trims the history to the greeting plus the last window turns.
func (a *Assistant) append(t Turn) {
	if t.At.IsZero() {
		t.At = time.Now().UTC()
	}
	a.history = append(a.history, t)

	if len(a.history)-1 <= a.window {
		return
	}
	tail := a.history[len(a.history)-a.window:]
	if tail[0].Role == RoleAssistant {
		tail = tail[1:]
	}
	kept := make([]Turn, 0, len(tail)+1)
	kept = append(kept, a.history[0])
	kept = append(kept, tail...)
	a.history = kept
}

// History returns a copy of the conversation, greeting first.
func (a *Assistant) History() []Turn {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Turn(nil), a.history...)
}

// restore replaces the conversation with a persisted one. A snapshot that does
// not start with the greeting is ignored.
func (a *Assistant) restore(history []Turn) {
	if len(history) == 0 || history[0].Role != RoleAssistant {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = append([]Turn(nil), history...)
}
