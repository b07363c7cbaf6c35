package ports

import (
	"context"

	"github.com/bnema/gatekeeper/internal/domain"
)

type FolderCatalog interface {
	Root() string
	Exists(ctx context.Context, path string) (bool, error)
	List(ctx context.Context) ([]domain.Folder, error)
	NextNumber(ctx context.Context) (int, error)
	// Ensure creates the bare folder; it never copies templates.
	Ensure(ctx context.Context, path string) error
}
