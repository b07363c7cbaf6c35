package application

import (
	"context"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	memstate "github.com/bnema/gatekeeper/internal/adapters/state/memory"
	"github.com/bnema/gatekeeper/internal/domain"
	"github.com/bnema/gatekeeper/internal/ports"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeCatalog struct {
	root    string
	folders map[string]domain.Folder
	created []string
}

var _ ports.FolderCatalog = (*fakeCatalog)(nil)

func newFakeCatalog(root string) *fakeCatalog {
	return &fakeCatalog{root: root, folders: map[string]domain.Folder{}}
}

func (c *fakeCatalog) add(name string, modifiedAt time.Time) domain.Folder {
	number, _ := strconv.Atoi(strings.SplitN(name, "-", 2)[0])
	folder := domain.Folder{
		Path:       filepath.Join(c.root, name),
		Name:       name,
		Number:     number,
		ModifiedAt: modifiedAt,
	}
	c.folders[folder.Path] = folder
	return folder
}

func (c *fakeCatalog) Root() string {
	return c.root
}

func (c *fakeCatalog) Exists(_ context.Context, path string) (bool, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.root, path)
	}
	_, ok := c.folders[path]
	return ok, nil
}

func (c *fakeCatalog) List(context.Context) ([]domain.Folder, error) {
	folders := make([]domain.Folder, 0, len(c.folders))
	for _, folder := range c.folders {
		folders = append(folders, folder)
	}
	sort.Slice(folders, func(i, j int) bool { return folders[i].Number < folders[j].Number })
	return folders, nil
}

func (c *fakeCatalog) NextNumber(ctx context.Context) (int, error) {
	folders, _ := c.List(ctx)
	next := 1
	for _, folder := range folders {
		if folder.Number >= next {
			next = folder.Number + 1
		}
	}
	return next, nil
}

func (c *fakeCatalog) Ensure(_ context.Context, path string) error {
	c.created = append(c.created, path)
	c.add(filepath.Base(path), time.Time{})
	return nil
}

type fakeMemory struct {
	snapshots map[string][]domain.Snapshot
}

var _ ports.MemoryIndex = (*fakeMemory)(nil)

func (m *fakeMemory) ListSnapshots(_ context.Context, folder string, limit int) ([]domain.Snapshot, error) {
	snapshots := m.snapshots[folder]
	if limit > 0 && len(snapshots) > limit {
		snapshots = snapshots[:limit]
	}
	return snapshots, nil
}

func (m *fakeMemory) HasSnapshots(_ context.Context, folder string) (bool, error) {
	return len(m.snapshots[folder]) > 0, nil
}

type harness struct {
	gate     *GateService
	sessions *SessionService
	store    *memstate.Store
	catalog  *fakeCatalog
	memory   *fakeMemory
	clock    *testClock
	logs     *observer.ObservedLogs
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	clock := &testClock{now: testNow}
	store := memstate.NewStore(clock)
	catalog := newFakeCatalog("/work/specs")
	memory := &fakeMemory{snapshots: map[string][]domain.Snapshot{}}

	cfg := DefaultGateConfig()
	cfg.Timeout = 0
	policies := DefaultPolicies()

	return &harness{
		gate: NewGateService(GateDeps{
			Store:   store,
			Folders: catalog,
			Memory:  memory,
			Clock:   clock,
			Logger:  zap.New(core),
		}, policies, cfg),
		sessions: NewSessionService(store, catalog, policies.Dispatch, clock, cfg),
		store:    store,
		catalog:  catalog,
		memory:   memory,
		clock:    clock,
		logs:     logs,
	}
}

func (h *harness) submit(t *testing.T, session domain.SessionID, prompt string) GateResult {
	t.Helper()
	return h.gate.Evaluate(context.Background(), GateCommand{Prompt: prompt, SessionID: session})
}

func (h *harness) read(t *testing.T, session domain.SessionID, name domain.StateName, dst any) bool {
	t.Helper()
	found, err := h.store.Read(context.Background(), domain.KeyFor(session, name), 0, dst)
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return found
}

func (h *harness) write(t *testing.T, session domain.SessionID, name domain.StateName, value any) {
	t.Helper()
	if err := h.store.Write(context.Background(), domain.KeyFor(session, name), value, 0); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func optionIDs(question *domain.MandatoryQuestion) []string {
	if question == nil {
		return nil
	}
	ids := make([]string, 0, len(question.Options))
	for _, option := range question.Options {
		ids = append(ids, option.ID)
	}
	return ids
}
