// Package chain layers two state stores: a project-local primary and a
// fallback used when the primary cannot be written.
package chain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tomlstore "github.com/bnema/gatekeeper/internal/adapters/state/toml"
	"github.com/bnema/gatekeeper/internal/domain"
	"github.com/bnema/gatekeeper/internal/ports"
)

const fallbackDirName = "gatekeeper-state"

type Store struct {
	primary  ports.StateStore
	fallback ports.StateStore
}

var _ ports.StateStore = (*Store)(nil)

var (
	errNilPrimaryStore  = errors.New("primary state store is nil")
	errNilFallbackStore = errors.New("fallback state store is nil")
)

func NewStore(primary ports.StateStore, fallback ports.StateStore) *Store {
	store, err := NewStoreChecked(primary, fallback)
	if err != nil {
		panic(err)
	}

	return store
}

func NewStoreChecked(primary ports.StateStore, fallback ports.StateStore) (*Store, error) {
	if primary == nil {
		return nil, errNilPrimaryStore
	}
	if fallback == nil {
		return nil, errNilFallbackStore
	}

	return &Store{primary: primary, fallback: fallback}, nil
}

// NewProjectFirstWithTempFallback stores state under root and falls back to a
// directory in the system temp dir. An empty fallbackRoot selects the default.
func NewProjectFirstWithTempFallback(root string, fallbackRoot string, clock ports.Clock) (*Store, error) {
	primary, err := tomlstore.NewStore(root, clock)
	if err != nil {
		return nil, fmt.Errorf("open primary state store: %w", err)
	}

	if fallbackRoot == "" {
		fallbackRoot = filepath.Join(os.TempDir(), fallbackDirName)
	}
	fallback, err := tomlstore.NewStore(fallbackRoot, clock)
	if err != nil {
		return nil, fmt.Errorf("open fallback state store: %w", err)
	}

	return NewStoreChecked(primary, fallback)
}

func (s *Store) Write(ctx context.Context, key domain.StateKey, value any, ttl time.Duration) error {
	err := s.primary.Write(ctx, key, value, ttl)
	if err == nil {
		return nil
	}
	if shouldSkipFallback(err) {
		return err
	}

	fallbackErr := s.fallback.Write(ctx, key, value, ttl)
	if fallbackErr != nil {
		return fmt.Errorf("primary backend write failed: %w; fallback backend write failed: %w", err, fallbackErr)
	}

	// The primary must not shadow the fallback copy.
	if clearErr := s.primary.Clear(ctx, key); clearErr != nil {
		return fmt.Errorf("primary backend write failed: %w; stale primary entry not cleared: %w", err, clearErr)
	}

	return nil
}

// Read prefers the primary. A miss on the primary still consults the fallback,
// which holds entries written while the primary was unavailable. Write keeps
// the two from disagreeing by clearing the primary whenever it falls back.
func (s *Store) Read(ctx context.Context, key domain.StateKey, ttl time.Duration, dst any) (bool, error) {
	found, err := s.primary.Read(ctx, key, ttl, dst)
	if err == nil && found {
		return true, nil
	}
	if err != nil && shouldSkipFallback(err) {
		return false, err
	}

	fallbackFound, fallbackErr := s.fallback.Read(ctx, key, ttl, dst)
	if fallbackErr == nil {
		return fallbackFound, nil
	}
	if err == nil {
		return false, nil
	}

	return false, fmt.Errorf("primary backend read failed: %w; fallback backend read failed: %w", err, fallbackErr)
}

// Clear removes the key from both backends.
func (s *Store) Clear(ctx context.Context, key domain.StateKey) error {
	err := s.primary.Clear(ctx, key)
	if err != nil && shouldSkipFallback(err) {
		return err
	}

	fallbackErr := s.fallback.Clear(ctx, key)
	switch {
	case err == nil && fallbackErr == nil:
		return nil
	case err == nil:
		return fmt.Errorf("fallback backend clear failed: %w", fallbackErr)
	case fallbackErr == nil:
		return fmt.Errorf("primary backend clear failed: %w", err)
	default:
		return fmt.Errorf("primary backend clear failed: %w; fallback backend clear failed: %w", err, fallbackErr)
	}
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
