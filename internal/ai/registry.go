package ai

import (
	"context"
	"fmt"
	"log"
	"strings"
)

type route struct {
	prefixes []string
	factory  ModelFactory
}

// Registry routes a candidate name to the provider that serves it.
// A name no registered provider claims fails construction with ErrUnknownModel,
// which is how a missing credential surfaces to the selector.
type Registry struct {
	routes  []route
	closers []func()
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds factory for model names starting with any of prefixes.
// Earlier registrations win on overlapping prefixes.
func (r *Registry) Register(factory ModelFactory, prefixes ...string) {
	r.routes = append(r.routes, route{prefixes: prefixes, factory: factory})
}

// Empty reports whether no provider is registered.
func (r *Registry) Empty() bool {
	return r == nil || len(r.routes) == 0
}

func (r *Registry) NewModel(name string) (TextModel, error) {
	if r == nil {
		return nil, ErrMissingCredential
	}
	for _, rt := range r.routes {
		for _, p := range rt.prefixes {
			if strings.HasPrefix(name, p) {
				m, err := rt.factory.NewModel(name)
				if err != nil {
					return nil, err
				}
				return Traced(m), nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownModel, name)
}

// Close releases provider clients.
func (r *Registry) Close() {
	if r == nil {
		return
	}
	for _, c := range r.closers {
		c()
	}
}

// Credentials holds provider API keys. Empty keys leave a provider unregistered.
type Credentials struct {
	GeminiKey string
	OpenAIKey string
}

// NewRegistryFromCredentials registers every provider that has a key.
func NewRegistryFromCredentials(ctx context.Context, creds Credentials) (*Registry, error) {
	reg := NewRegistry()
	if creds.GeminiKey != "" {
		gemini, err := NewGeminiProvider(ctx, creds.GeminiKey)
		if err != nil {
			return nil, err
		}
		reg.Register(gemini, "gemini")
		reg.closers = append(reg.closers, gemini.Close)
	}
	if creds.OpenAIKey != "" {
		oa, err := NewOpenAIProvider(creds.OpenAIKey)
		if err != nil {
			reg.Close()
			return nil, err
		}
		reg.Register(oa, "gpt-", "o1", "o3", "o4")
	}
	if reg.Empty() {
		log.Printf("ai: no model credentials configured; generation disabled")
	}
	return reg, nil
}
