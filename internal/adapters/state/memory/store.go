// Package memory is an in-process state store for tests and ephemeral runs.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/gatekeeper/internal/domain"
	"github.com/bnema/gatekeeper/internal/ports"
)

type entry struct {
	payload   []byte
	writtenAt time.Time
	ttl       time.Duration
}

type Store struct {
	mu      sync.RWMutex
	entries map[domain.StateKey]entry
	clock   ports.Clock
}

var _ ports.StateStore = (*Store)(nil)

func NewStore(clock ports.Clock) *Store {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &Store{entries: map[domain.StateKey]entry{}, clock: clock}
}

// Write stores a serialized copy so later mutations of value are not visible to readers.
func (s *Store) Write(ctx context.Context, key domain.StateKey, value any, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode state %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[normalize(key)] = entry{payload: payload, writtenAt: s.clock.Now(), ttl: ttl}
	return nil
}

func (s *Store) Read(ctx context.Context, key domain.StateKey, ttl time.Duration, dst any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	key = normalize(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false, nil
	}

	limit := e.ttl
	if ttl > 0 && (limit <= 0 || ttl < limit) {
		limit = ttl
	}
	if limit > 0 && !s.clock.Now().Before(e.writtenAt.Add(limit)) {
		delete(s.entries, key)
		return false, nil
	}

	if err := json.Unmarshal(e.payload, dst); err != nil {
		return false, fmt.Errorf("decode state %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) Clear(ctx context.Context, key domain.StateKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, normalize(key))
	return nil
}

// Keys lists the live keys of a session.
func (s *Store) Keys(session domain.SessionID) []domain.StateName {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session = session.OrDefault()
	var names []domain.StateName
	for key := range s.entries {
		if key.Session == session {
			names = append(names, key.Name)
		}
	}
	return names
}

func normalize(key domain.StateKey) domain.StateKey {
	return domain.StateKey{Session: key.Session.OrDefault(), Name: key.Name}
}
