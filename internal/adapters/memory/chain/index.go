// Package chain asks a primary memory index first and falls back to a second
// one when the primary errors or knows nothing about the folder.
package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/gatekeeper/internal/domain"
	"github.com/bnema/gatekeeper/internal/ports"
)

type Index struct {
	primary  ports.MemoryIndex
	fallback ports.MemoryIndex
}

var _ ports.MemoryIndex = (*Index)(nil)

var (
	errNilPrimaryIndex  = errors.New("primary memory index is nil")
	errNilFallbackIndex = errors.New("fallback memory index is nil")
)

func NewIndex(primary ports.MemoryIndex, fallback ports.MemoryIndex) (*Index, error) {
	if primary == nil {
		return nil, errNilPrimaryIndex
	}
	if fallback == nil {
		return nil, errNilFallbackIndex
	}

	return &Index{primary: primary, fallback: fallback}, nil
}

func (i *Index) ListSnapshots(ctx context.Context, folder string, limit int) ([]domain.Snapshot, error) {
	snapshots, err := i.primary.ListSnapshots(ctx, folder, limit)
	if err == nil && len(snapshots) > 0 {
		return snapshots, nil
	}
	if err != nil && shouldSkipFallback(err) {
		return nil, err
	}

	fallbackSnapshots, fallbackErr := i.fallback.ListSnapshots(ctx, folder, limit)
	if fallbackErr == nil {
		return fallbackSnapshots, nil
	}
	if err == nil {
		return snapshots, nil
	}

	return nil, fmt.Errorf("primary index list failed: %w; fallback index list failed: %w", err, fallbackErr)
}

func (i *Index) HasSnapshots(ctx context.Context, folder string) (bool, error) {
	has, err := i.primary.HasSnapshots(ctx, folder)
	if err == nil && has {
		return true, nil
	}
	if err != nil && shouldSkipFallback(err) {
		return false, err
	}

	fallbackHas, fallbackErr := i.fallback.HasSnapshots(ctx, folder)
	if fallbackErr == nil {
		return fallbackHas, nil
	}
	if err == nil {
		return false, nil
	}

	return false, fmt.Errorf("primary index check failed: %w; fallback index check failed: %w", err, fallbackErr)
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
