package ports

import (
	"context"

	"github.com/bnema/gatekeeper/internal/domain"
)

// MemoryIndex exposes the metadata of saved context snapshots for a folder.
type MemoryIndex interface {
	ListSnapshots(ctx context.Context, folder string, limit int) ([]domain.Snapshot, error)
	HasSnapshots(ctx context.Context, folder string) (bool, error)
}
