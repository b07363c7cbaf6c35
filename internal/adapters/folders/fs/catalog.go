// Package fs lists and creates numbered work-tracking folders on disk.
package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/gatekeeper/internal/domain"
	"github.com/bnema/gatekeeper/internal/ports"
)

const folderDirMode = 0o755

var folderName = regexp.MustCompile(`^(\d{3,})-([a-z0-9][a-z0-9._-]*)$`)

// Catalog treats every "NNN-slug" directory directly under root as a
// work-tracking folder.
type Catalog struct {
	root string
}

var _ ports.FolderCatalog = (*Catalog)(nil)

func NewCatalog(root string) (*Catalog, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("folder root is empty")
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve folder root: %w", err)
	}

	return &Catalog{root: filepath.Clean(absRoot)}, nil
}

func (c *Catalog) Root() string {
	return c.root
}

func (c *Catalog) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if strings.TrimSpace(path) == "" {
		return false, nil
	}

	info, err := os.Stat(c.resolve(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat folder %q: %w", path, err)
	}

	return info.IsDir(), nil
}

// List returns the folders ordered by number. A missing root is an empty catalog.
func (c *Catalog) List(ctx context.Context) ([]domain.Folder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(c.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.Folder{}, nil
		}
		return nil, fmt.Errorf("read folder root: %w", err)
	}

	folders := make([]domain.Folder, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		match := folderName.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		number, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}

		path := filepath.Join(c.root, entry.Name())
		folders = append(folders, domain.Folder{
			Path:       path,
			Name:       entry.Name(),
			Number:     number,
			ModifiedAt: latestModification(path),
		})
	}

	sort.Slice(folders, func(i, j int) bool {
		if folders[i].Number != folders[j].Number {
			return folders[i].Number < folders[j].Number
		}
		return folders[i].Name < folders[j].Name
	})

	return folders, nil
}

func (c *Catalog) NextNumber(ctx context.Context) (int, error) {
	folders, err := c.List(ctx)
	if err != nil {
		return 0, err
	}

	next := 1
	for _, folder := range folders {
		if folder.Number >= next {
			next = folder.Number + 1
		}
	}
	return next, nil
}

// Ensure creates the folder if it is missing. The path must stay under root.
func (c *Catalog) Ensure(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	resolved := c.resolve(path)
	rel, err := filepath.Rel(c.root, resolved)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return fmt.Errorf("invalid folder path %q", path)
	}

	if err := os.MkdirAll(resolved, folderDirMode); err != nil {
		return fmt.Errorf("create folder %q: %w", path, err)
	}

	return nil
}

func (c *Catalog) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(c.root, path)
}

// latestModification is the newest mtime of the folder and its direct children.
func latestModification(path string) (latest time.Time) {
	if info, err := os.Stat(path); err == nil {
		latest = info.ModTime()
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return latest
	}
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}
	}
	return latest
}
