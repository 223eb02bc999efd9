package ai

import (
	"log"
	"sync"
)

// ModelSelector walks an ordered candidate list and holds the active model.
//
// Initialize tries the current candidate and moves forward on construction
// failure; wrapping back to index 0 means the list is exhausted and the
// selector is left not ready. Advance moves to the next candidate after a
// failed generation, with the same wrap rule. Index 0 is never retried within
// a single exhaustion pass, so a fully failed pass does not loop.
//
// Callers sharing one selector take a Handle with Acquire and report failures
// through AdvanceFrom, so concurrent failures on the same model move the
// selector once.
type ModelSelector struct {
	mu         sync.Mutex
	candidates []string
	factory    ModelFactory
	index      int
	current    TextModel
	ready      bool
	seq        uint64
}

// Handle is a model taken from a selector at a given position.
type Handle struct {
	Model TextModel
	seq   uint64
}

func NewModelSelector(candidates []string, factory ModelFactory) *ModelSelector {
	return &ModelSelector{
		candidates: append([]string(nil), candidates...),
		factory:    factory,
	}
}

// Initialize constructs the current candidate, skipping failing ones.
func (s *ModelSelector) Initialize() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initializeLocked()
}

func (s *ModelSelector) initializeLocked() bool {
	n := len(s.candidates)
	if n == 0 || s.factory == nil {
		s.ready, s.current = false, nil
		return false
	}
	for {
		name := s.candidates[s.index]
		model, err := s.factory.NewModel(name)
		if err == nil {
			s.current, s.ready = model, true
			s.seq++
			return true
		}
		log.Printf("ai: model %s unavailable: %v", name, err)
		s.index = (s.index + 1) % n
		if s.index == 0 {
			s.ready, s.current = false, nil
			s.seq++
			return false
		}
	}
}

// Advance abandons the current candidate and initializes the next one.
// It returns false without constructing anything when the index wraps to 0.
func (s *ModelSelector) Advance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.advanceLocked()
}

func (s *ModelSelector) advanceLocked() bool {
	n := len(s.candidates)
	if n == 0 {
		return false
	}
	s.index = (s.index + 1) % n
	if s.index == 0 {
		s.ready, s.current = false, nil
		s.seq++
		log.Printf("ai: all %d model candidates exhausted", n)
		return false
	}
	return s.initializeLocked()
}

// Acquire returns the active model, initializing the selector first when it
// is not ready.
func (s *ModelSelector) Acquire() (Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready && !s.initializeLocked() {
		return Handle{}, false
	}
	return Handle{Model: s.current, seq: s.seq}, true
}

// AdvanceFrom moves past the model in failed. When another caller already
// moved the selector since failed was acquired, it returns the current state
// without advancing again.
func (s *ModelSelector) AdvanceFrom(failed Handle) (Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if failed.seq == s.seq {
		s.advanceLocked()
	}
	if !s.ready {
		return Handle{}, false
	}
	return Handle{Model: s.current, seq: s.seq}, true
}

// Current returns the active model, or nil when not ready.
func (s *ModelSelector) Current() TextModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil
	}
	return s.current
}

func (s *ModelSelector) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

func (s *ModelSelector) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Name returns the candidate name at the current index.
func (s *ModelSelector) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.candidates) == 0 {
		return ""
	}
	return s.candidates[s.index]
}
