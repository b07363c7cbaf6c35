package memory

import (
	"context"
	"testing"
	"time"

	"github.com/bnema/gatekeeper/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

func TestStoreRoundTripCopiesValue(t *testing.T) {
	t.Parallel()

	store := NewStore(&fixedClock{now: time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)})
	key := domain.KeyFor("s", domain.StateFingerprint)

	fp := domain.TaskFingerprint{Keywords: []string{"billing", "pipeline"}}
	require.NoError(t, store.Write(context.Background(), key, fp, 0))
	fp.Keywords[0] = "mutated"

	var got domain.TaskFingerprint
	found, err := store.Read(context.Background(), key, 0, &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"billing", "pipeline"}, got.Keywords)
}

func TestStoreTTL(t *testing.T) {
	t.Parallel()

	clock := &fixedClock{now: time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)}
	store := NewStore(clock)
	key := domain.KeyFor("s", domain.StateActiveFolder)

	require.NoError(t, store.Write(context.Background(), key, domain.FolderMarker{Path: "specs/001-x"}, time.Second))
	clock.now = clock.now.Add(2 * time.Second)

	var got domain.FolderMarker
	found, err := store.Read(context.Background(), key, 0, &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, store.Keys("s"))
}

func TestStoreClearAndDefaultSession(t *testing.T) {
	t.Parallel()

	store := NewStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, domain.StateKey{Name: domain.StateFlow}, domain.QuestionFlow{Stage: domain.StageDispatch}, 0))
	assert.Equal(t, []domain.StateName{domain.StateFlow}, store.Keys(domain.DefaultSessionID))

	require.NoError(t, store.Clear(ctx, domain.KeyFor(domain.DefaultSessionID, domain.StateFlow)))
	assert.Empty(t, store.Keys(domain.DefaultSessionID))
}
