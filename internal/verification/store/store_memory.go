package store

import (
	"context"
	"sync"

	"signet/internal/verification"
	"signet/pkg/platform/sentinel"
)

// InMemory keeps the latest verification result per signature. Used in tests
// and single-node development; production deployments use Postgres.
type InMemory struct {
	mu          sync.RWMutex
	bySignature map[string]*verification.Result
}

func NewInMemory() *InMemory {
	return &InMemory{bySignature: make(map[string]*verification.Result)}
}

func (s *InMemory) Save(_ context.Context, result *verification.Result) error {
	if result == nil {
		return sentinel.ErrInvalidState
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bySignature[result.SignatureID] = result
	return nil
}

func (s *InMemory) FindBySignature(_ context.Context, signatureID string) (*verification.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.bySignature[signatureID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return result, nil
}
