// README: In-memory model doubles for tests that exercise failover without network calls.
package aitest

import (
	"context"
	"errors"
	"sync"

	"tripcraft/internal/ai"
)

// ErrScripted is returned by a Model whose script marks a call as failing.
var ErrScripted = errors.New("scripted failure")

// Reply is one scripted outcome. A non-nil Err wins over Text.
type Reply struct {
	Text string
	Err  error
}

// Model replays its script in order and repeats the last entry once exhausted.
type Model struct {
	ModelName string

	mu      sync.Mutex
	script  []Reply
	prompts []string
}

func NewModel(name string, script ...Reply) *Model {
	return &Model{ModelName: name, script: script}
}

func (m *Model) Name() string { return m.ModelName }

func (m *Model) Generate(_ context.Context, prompt string, _ ai.GenerationConfig) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if len(m.script) == 0 {
		return "", ErrScripted
	}
	r := m.script[0]
	if len(m.script) > 1 {
		m.script = m.script[1:]
	}
	if r.Err != nil {
		return "", r.Err
	}
	return r.Text, nil
}

// Calls returns how many times Generate was invoked.
func (m *Model) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Prompts returns a copy of every prompt received.
func (m *Model) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Factory serves fixed models by name; names not in Models fail construction.
type Factory struct {
	Models map[string]*Model

	mu    sync.Mutex
	built []string
}

func NewFactory(models ...*Model) *Factory {
	f := &Factory{Models: make(map[string]*Model, len(models))}
	for _, m := range models {
		f.Models[m.ModelName] = m
	}
	return f
}

func (f *Factory) NewModel(name string) (ai.TextModel, error) {
	f.mu.Lock()
	f.built = append(f.built, name)
	f.mu.Unlock()
	m, ok := f.Models[name]
	if !ok {
		return nil, ai.ErrMissingCredential
	}
	return m, nil
}

// Attempts returns every name construction was attempted for, in order.
func (f *Factory) Attempts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.built...)
}

// TotalCalls sums Generate calls across all models.
func (f *Factory) TotalCalls() int {
	n := 0
	for _, m := range f.Models {
		n += m.Calls()
	}
	return n
}
