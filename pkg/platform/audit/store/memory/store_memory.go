package memory

import (
	"context"
	"sync"

	audit "signet/pkg/platform/audit"
)

// Store is an in-memory append-only audit sink for tests and development.
type Store struct {
	mu     sync.Mutex
	events []audit.Event
}

func New() *Store {
	return &Store{}
}

func (s *Store) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a snapshot of everything appended so far.
func (s *Store) Events() []audit.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]audit.Event, len(s.events))
	copy(out, s.events)
	return out
}

// BySignature filters the snapshot by signature ID.
func (s *Store) BySignature(signatureID string) []audit.Event {
	var out []audit.Event
	for _, e := range s.Events() {
		if e.SignatureID == signatureID {
			out = append(out, e)
		}
	}
	return out
}
