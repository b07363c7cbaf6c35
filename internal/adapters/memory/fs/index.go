// Package fs reads snapshot metadata from markdown files saved under
// <folder>/memory/.
package fs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bnema/gatekeeper/internal/domain"
	"github.com/bnema/gatekeeper/internal/ports"
)

const (
	memoryDirName  = "memory"
	snapshotExt    = ".md"
	titleScanLines = 20
)

type Index struct{}

var _ ports.MemoryIndex = (*Index)(nil)

func NewIndex() *Index {
	return &Index{}
}

// ListSnapshots returns snapshots newest first. A non-positive limit returns all of them.
func (i *Index) ListSnapshots(ctx context.Context, folder string, limit int) ([]domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := filepath.Join(folder, memoryDirName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.Snapshot{}, nil
		}
		return nil, fmt.Errorf("read memory directory: %w", err)
	}

	snapshots := make([]domain.Snapshot, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), snapshotExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		title := readTitle(filepath.Join(dir, entry.Name()))
		if title == "" {
			title = id
		}

		snapshots = append(snapshots, domain.Snapshot{ID: id, Title: title, CreatedAt: info.ModTime()})
	}

	sort.Slice(snapshots, func(a, b int) bool {
		if !snapshots[a].CreatedAt.Equal(snapshots[b].CreatedAt) {
			return snapshots[a].CreatedAt.After(snapshots[b].CreatedAt)
		}
		return snapshots[a].ID > snapshots[b].ID
	})

	if limit > 0 && len(snapshots) > limit {
		snapshots = snapshots[:limit]
	}
	return snapshots, nil
}

func (i *Index) HasSnapshots(ctx context.Context, folder string) (bool, error) {
	snapshots, err := i.ListSnapshots(ctx, folder, 1)
	if err != nil {
		return false, err
	}
	return len(snapshots) > 0, nil
}

// readTitle returns the first markdown heading near the top of the file.
func readTitle(path string) string {
	file, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for n := 0; n < titleScanLines && scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
	}
	return ""
}
