// Package memory keeps the ledger snapshot in process memory. It backs
// tests and ephemeral deployments where persistence is not needed.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"gastobot/internal/core"
	"gastobot/internal/ledger"
)

// Store holds a single serialized snapshot guarded by a mutex.
// Serializing through JSON keeps Load/Save semantics identical to the
// durable stores: callers always get an independent copy.
type Store struct {
	mu   sync.Mutex
	data []byte
}

var _ ledger.Store = (*Store)(nil)

// New returns an empty in-memory store.
func New() *Store {
	return &Store{}
}

func (s *Store) Load(_ context.Context) (*core.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return core.NewLedger(), nil
	}
	var l core.Ledger
	if err := json.Unmarshal(s.data, &l); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	l.Normalize()
	return &l, nil
}

func (s *Store) Save(_ context.Context, l *core.Ledger) error {
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}
