package toml

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"sync"
	"syscall"
	"time"

	"github.com/bnema/gatekeeper/internal/domain"
	"github.com/bnema/gatekeeper/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	stateFileMode   = 0o600
	stateDirMode    = 0o700
	stateFileExt    = ".toml"
	tempFilePattern = ".state-*.toml.tmp"
	maxSegmentLen   = 64
	hashedPrefix    = "s-"
)

var safeSegment = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Store keeps one TOML file per key under <root>/<session>/<name>.toml.
type Store struct {
	root  string
	clock ports.Clock
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.StateStore = (*Store)(nil)

func NewStore(root string, clock ports.Clock) (*Store, error) {
	if root == "" {
		return nil, errors.New("state root is empty")
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve state root: %w", err)
	}

	return &Store{root: filepath.Clean(absRoot), clock: clock}, nil
}

func (s *Store) Root() string {
	return s.root
}

func (s *Store) Write(ctx context.Context, key domain.StateKey, value any, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !isTable(value) {
		return fmt.Errorf("state value for %s must be a struct or map, got %T", key, value)
	}

	path, err := s.pathForKey(key)
	if err != nil {
		return err
	}

	mu := lockForPath(path)
	mu.Lock()
	defer mu.Unlock()

	entry := writeSchema{
		Version:    currentSchemaVersion,
		Key:        key.String(),
		WrittenAt:  formatTime(s.clock.Now()),
		TTLSeconds: ttlSeconds(ttl),
		Value:      value,
	}

	data, err := toml.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode state %s: %w", key, err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return writeAtomic(path, data)
}

func (s *Store) Read(ctx context.Context, key domain.StateKey, ttl time.Duration, dst any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	path, err := s.pathForKey(key)
	if err != nil {
		return false, err
	}

	mu := lockForPath(path)
	mu.RLock()
	entry, found, err := readEntry(path)
	mu.RUnlock()
	if err != nil || !found {
		return false, err
	}

	if expiresAt := entry.expiresAt(ttl); !expiresAt.IsZero() && !s.clock.Now().Before(expiresAt) {
		if err := s.Clear(ctx, key); err != nil {
			return false, fmt.Errorf("remove expired state %s: %w", key, err)
		}
		return false, nil
	}

	payload, err := toml.Marshal(entry.Value)
	if err != nil {
		return false, fmt.Errorf("re-encode state %s: %w", key, err)
	}
	if err := toml.Unmarshal(payload, dst); err != nil {
		return false, fmt.Errorf("decode state %s: %w", key, err)
	}

	return true, nil
}

func (s *Store) Clear(ctx context.Context, key domain.StateKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.pathForKey(key)
	if err != nil {
		return err
	}

	mu := lockForPath(path)
	mu.Lock()
	defer mu.Unlock()

	err = os.Remove(path)
	if err != nil && !isAbsent(err) {
		return fmt.Errorf("clear state %s: %w", key, err)
	}

	return nil
}

func (s *Store) pathForKey(key domain.StateKey) (string, error) {
	name := string(key.Name)
	if !safeSegment.MatchString(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid state name %q", key.Name)
	}

	return filepath.Join(s.root, SessionDir(key.Session), name+stateFileExt), nil
}

// SessionDir maps a session id to a directory name. Ids that are not plain
// path segments are replaced by their sha1 so they can never escape the root.
func SessionDir(session domain.SessionID) string {
	id := string(session.OrDefault())
	if safeSegment.MatchString(id) && id != "." && id != ".." && len(id) <= maxSegmentLen {
		return id
	}

	sum := sha1.Sum([]byte(id))
	return hashedPrefix + hex.EncodeToString(sum[:])
}

func readEntry(path string) (entrySchema, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if isAbsent(err) {
			return entrySchema{}, false, nil
		}
		return entrySchema{}, false, fmt.Errorf("read state file: %w", err)
	}

	var entry entrySchema
	if err := toml.Unmarshal(data, &entry); err != nil {
		return entrySchema{}, false, fmt.Errorf("decode state file: %w", err)
	}
	if err := entry.validateVersion(); err != nil {
		return entrySchema{}, false, err
	}
	entry.applyDefaults()

	return entry, true, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, stateDirMode); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp state file: %w", err)
	}

	if err := tempFile.Chmod(stateFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp state file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}

	cleanup = false
	return nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func ttlSeconds(ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	seconds := int64(ttl / time.Second)
	if ttl%time.Second != 0 {
		seconds++
	}
	return seconds
}

func isTable(value any) bool {
	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}
	return v.Kind() == reflect.Struct || v.Kind() == reflect.Map
}

// isAbsent reports a missing entry, including one whose parent path is not a directory.
func isAbsent(err error) bool {
	return errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}
