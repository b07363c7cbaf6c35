package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/gatekeeper/internal/domain"
	portmocks "github.com/bnema/gatekeeper/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testSession domain.SessionID = "sess-1"

func TestGateQuestionPassesThroughWithoutWrites(t *testing.T) {
	h := newHarness(t)

	result := h.submit(t, testSession, "what does the login module do?")

	assert.Equal(t, DecisionAllow, result.Decision)
	assert.Equal(t, domain.IntentQuestion, result.Intent)
	assert.Nil(t, result.Question)
	assert.Empty(t, h.store.Keys(testSession))
}

func TestGateNewFolderFlow(t *testing.T) {
	h := newHarness(t)

	result := h.submit(t, testSession, "implement password reset")
	require.True(t, result.Blocked())
	require.NotNil(t, result.Question)
	assert.Equal(t, domain.StageSpecFolder, result.Question.Stage)
	assert.Equal(t, []string{"B", "D"}, optionIDs(result.Question))
	assert.Equal(t, "Create new folder 001-password-reset", result.Question.Options[0].Label)
	assert.Equal(t, "implement password reset", result.Question.Context["request"])

	result = h.submit(t, testSession, "B")
	require.Equal(t, DecisionAllow, result.Decision)
	assert.Equal(t, []string{"/work/specs/001-password-reset"}, h.catalog.created)
	assert.Contains(t, result.AdditionalContext, "Work-tracking folder: /work/specs/001-password-reset (created)")
	assert.Contains(t, result.AdditionalContext, "Original request: implement password reset")
	require.NotNil(t, result.Dispatch)
	assert.Equal(t, domain.DispatchSequential, result.Dispatch.Action)

	var marker domain.FolderMarker
	require.True(t, h.read(t, testSession, domain.StateActiveFolder, &marker))
	assert.Equal(t, "/work/specs/001-password-reset", marker.Path)

	var confirmation domain.ConfirmationMarker
	require.True(t, h.read(t, testSession, domain.StateFolderConfirmed, &confirmation))
	assert.Equal(t, marker.Path, confirmation.Path)
	assert.False(t, confirmation.Skipped)

	var fingerprint domain.TaskFingerprint
	require.True(t, h.read(t, testSession, domain.StateFingerprint, &fingerprint))
	assert.ElementsMatch(t, []string{"implement", "password", "reset"}, fingerprint.Keywords)

	var flow domain.QuestionFlow
	assert.False(t, h.read(t, testSession, domain.StateFlow, &flow))

	result = h.submit(t, testSession, "implement the password reset email template")
	assert.Equal(t, DecisionAllow, result.Decision, "a confirmed folder is not asked about again")
}

func TestGateWideRequestDispatchesParallelWithoutAsking(t *testing.T) {
	h := newHarness(t)
	h.write(t, testSession, domain.StateFolderConfirmed, domain.ConfirmationMarker{Skipped: true, ConfirmedAt: testNow})

	result := h.submit(t, testSession, "refactor the entire billing and notification and logging pipeline")

	require.Equal(t, DecisionAllow, result.Decision)
	require.NotNil(t, result.Dispatch)
	assert.Equal(t, domain.DispatchAutoParallel, result.Dispatch.Action)
	assert.GreaterOrEqual(t, result.Dispatch.DomainCount, 3)
	assert.GreaterOrEqual(t, result.Dispatch.Score, 50.0)
	assert.Contains(t, result.AdditionalContext, "Work-tracking folder: none")
}

func TestGateTaskChangeStartsFreshFolderFlow(t *testing.T) {
	h := newHarness(t)
	folder := h.catalog.add("004-billing-refactor", testNow.Add(-time.Hour))
	h.write(t, testSession, domain.StateActiveFolder, domain.FolderMarker{Path: folder.Path, SelectedAt: testNow})
	h.write(t, testSession, domain.StateFolderConfirmed, domain.ConfirmationMarker{Path: folder.Path, ConfirmedAt: testNow})
	h.write(t, testSession, domain.StateFingerprint, domain.TaskFingerprint{
		Keywords:  []string{"billing", "refactor", "pipeline"},
		Folder:    folder.Path,
		CreatedAt: testNow,
	})

	result := h.submit(t, testSession, "write unit tests for the date picker widget")
	require.True(t, result.Blocked())
	assert.Equal(t, domain.StageTaskChange, result.Question.Stage)
	assert.Equal(t, []string{"A", "B", "C"}, optionIDs(result.Question))
	assert.Equal(t, 1, h.logs.FilterMessage("task divergence, asking about task change").Len())

	result = h.submit(t, testSession, "B")
	require.True(t, result.Blocked())
	assert.Equal(t, domain.StageSpecFolder, result.Question.Stage)
	assert.Equal(t, []string{"B", "D"}, optionIDs(result.Question), "the previous folder is not offered again")

	var fingerprint domain.TaskFingerprint
	assert.False(t, h.read(t, testSession, domain.StateFingerprint, &fingerprint))
	var marker domain.FolderMarker
	assert.False(t, h.read(t, testSession, domain.StateActiveFolder, &marker))

	result = h.submit(t, testSession, "B")
	require.True(t, result.Blocked(), "the replayed request spans two domains")
	assert.Equal(t, domain.StageDispatch, result.Question.Stage)
	assert.Equal(t, []string{"A", "B", "C"}, optionIDs(result.Question))
	assert.Contains(t, h.catalog.created, "/work/specs/005-unit-tests-date-picker-widget")

	result = h.submit(t, testSession, "B")
	require.Equal(t, DecisionAllow, result.Decision)
	require.NotNil(t, result.Dispatch)
	assert.Equal(t, domain.DispatchAutoParallel, result.Dispatch.Action)
	assert.Equal(t, domain.ModeParallel, result.Dispatch.Mode)
	assert.Contains(t, result.AdditionalContext, "Original request: write unit tests for the date picker widget")

	var preference domain.DispatchPreference
	require.True(t, h.read(t, testSession, domain.StateDispatchPreference, &preference))
	assert.Equal(t, domain.ModeParallel, preference.Mode)
}

func TestGateTaskChangeContinueKeepsFingerprint(t *testing.T) {
	h := newHarness(t)
	folder := h.catalog.add("004-billing-refactor", testNow.Add(-time.Hour))
	original := domain.TaskFingerprint{
		Keywords:  []string{"billing", "refactor", "pipeline"},
		Folder:    folder.Path,
		CreatedAt: testNow,
	}
	h.write(t, testSession, domain.StateActiveFolder, domain.FolderMarker{Path: folder.Path, SelectedAt: testNow})
	h.write(t, testSession, domain.StateFolderConfirmed, domain.ConfirmationMarker{Path: folder.Path, ConfirmedAt: testNow})
	h.write(t, testSession, domain.StateFingerprint, original)

	result := h.submit(t, testSession, "update the date picker widget styles")
	require.True(t, result.Blocked())
	require.Equal(t, domain.StageTaskChange, result.Question.Stage)
	entries := h.logs.FilterMessage("task divergence, asking about task change").All()
	require.Len(t, entries, 1)
	assert.Equal(t, string(testSession), entries[0].ContextMap()["session"])

	result = h.submit(t, testSession, "continue")
	require.Equal(t, DecisionAllow, result.Decision)

	var fingerprint domain.TaskFingerprint
	require.True(t, h.read(t, testSession, domain.StateFingerprint, &fingerprint))
	assert.Equal(t, original.Keywords, fingerprint.Keywords)
	assert.Equal(t, folder.Path, fingerprint.Folder)

	result = h.submit(t, testSession, "refactor the billing pipeline retry logic")
	if result.Blocked() {
		assert.NotEqual(t, domain.StageTaskChange, result.Question.Stage, "the original task is not divergent")
	}
}

func TestGateReconfirmsFolderAfterConfirmationLapses(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.submit(t, testSession, "implement password reset").Blocked())
	require.Equal(t, DecisionAllow, h.submit(t, testSession, "B").Decision)

	var original domain.TaskFingerprint
	require.True(t, h.read(t, testSession, domain.StateFingerprint, &original))

	h.clock.Advance(DefaultGateConfig().ConfirmTTL + time.Minute)

	result := h.submit(t, testSession, "implement the password reset email template")
	require.True(t, result.Blocked())
	assert.Equal(t, domain.StageSpecFolderConfirm, result.Question.Stage)
	assert.Equal(t, []string{"A", "B", "D"}, optionIDs(result.Question))
	assert.Equal(t, "Keep 001-password-reset", result.Question.Options[0].Label)

	result = h.submit(t, testSession, "A")
	require.Equal(t, DecisionAllow, result.Decision)
	assert.Contains(t, result.AdditionalContext, "Work-tracking folder: /work/specs/001-password-reset")

	var fingerprint domain.TaskFingerprint
	require.True(t, h.read(t, testSession, domain.StateFingerprint, &fingerprint))
	assert.Equal(t, original.Keywords, fingerprint.Keywords)
	assert.Equal(t, original.CreatedAt, fingerprint.CreatedAt)

	result = h.submit(t, testSession, "implement the password reset email template")
	assert.Equal(t, DecisionAllow, result.Decision, "the folder is settled again")
}

func TestGateHonorsStoredPreference(t *testing.T) {
	h := newHarness(t)
	h.write(t, testSession, domain.StateFolderConfirmed, domain.ConfirmationMarker{Skipped: true, ConfirmedAt: testNow})
	_, err := h.sessions.Prefer(context.Background(), PreferCommand{SessionID: testSession, Mode: domain.ModeParallel})
	require.NoError(t, err)

	h.clock.Advance(10 * time.Minute)
	result := h.submit(t, testSession, "write unit tests for the date picker widget")

	require.Equal(t, DecisionAllow, result.Decision)
	require.NotNil(t, result.Dispatch)
	assert.Equal(t, 2, result.Dispatch.DomainCount)
	assert.Equal(t, domain.DispatchAutoParallel, result.Dispatch.Action)
	assert.Equal(t, domain.ModeParallel, result.Dispatch.Mode)

	h.write(t, "other", domain.StateFolderConfirmed, domain.ConfirmationMarker{Skipped: true, ConfirmedAt: testNow})
	result = h.submit(t, "other", "write unit tests for the date picker widget")
	require.True(t, result.Blocked(), "without a preference the same request asks")
	assert.Equal(t, domain.StageDispatch, result.Question.Stage)
}

func TestGateMemoryLoadListing(t *testing.T) {
	h := newHarness(t)
	folder := h.catalog.add("003-billing-webhooks", testNow.Add(-30*time.Minute))
	h.memory.snapshots[folder.Path] = []domain.Snapshot{
		{ID: "s3", Title: "Retry design", CreatedAt: testNow.Add(-time.Hour)},
		{ID: "s2", Title: "Schema", CreatedAt: testNow.Add(-2 * time.Hour)},
		{ID: "s1", Title: "Kickoff", CreatedAt: testNow.Add(-3 * time.Hour)},
	}

	result := h.submit(t, testSession, "implement retry for billing webhooks")
	require.True(t, result.Blocked())
	assert.Equal(t, []string{"A", "B", "D"}, optionIDs(result.Question))
	assert.Equal(t, "Reuse 003-billing-webhooks", result.Question.Options[0].Label)
	assert.Equal(t, folder.Path, result.Question.Context["detected"])

	result = h.submit(t, testSession, "A")
	require.True(t, result.Blocked())
	assert.Equal(t, domain.StageMemoryLoad, result.Question.Stage)
	assert.Equal(t, []string{"A", "B", "C", "D"}, optionIDs(result.Question))

	result = h.submit(t, testSession, "C")
	require.True(t, result.Blocked())
	assert.Equal(t, domain.StageMemoryLoad, result.Question.Stage)
	assert.Equal(t, []string{"1", "2", "3", "D"}, optionIDs(result.Question))
	assert.Contains(t, result.Question.Prompt, "number")

	result = h.submit(t, testSession, "2")
	require.Equal(t, DecisionAllow, result.Decision)
	assert.Contains(t, result.AdditionalContext, "Load context snapshots: s2 (Schema)")
	assert.Contains(t, result.AdditionalContext, "Work-tracking folder: "+folder.Path)
}

func TestGateMemoryLoadLatest(t *testing.T) {
	h := newHarness(t)
	folder := h.catalog.add("003-billing-webhooks", testNow.Add(-30*time.Minute))
	h.memory.snapshots[folder.Path] = []domain.Snapshot{
		{ID: "s3", Title: "Retry design"},
		{ID: "s2", Title: "Schema"},
	}
	h.write(t, testSession, domain.StateActiveFolder, domain.FolderMarker{Path: folder.Path, SelectedAt: testNow})

	result := h.submit(t, testSession, "implement retry for billing webhooks")
	require.True(t, result.Blocked())
	assert.Equal(t, domain.StageSpecFolderConfirm, result.Question.Stage)
	assert.Equal(t, []string{"A", "B", "D"}, optionIDs(result.Question))

	result = h.submit(t, testSession, "keep it")
	require.True(t, result.Blocked())
	assert.Equal(t, domain.StageMemoryLoad, result.Question.Stage)

	result = h.submit(t, testSession, "load the latest one")
	require.Equal(t, DecisionAllow, result.Decision)
	assert.Contains(t, result.AdditionalContext, "Load context snapshots: s3 (Retry design)")
	assert.NotContains(t, result.AdditionalContext, "s2")
}

func TestGateSkipRecordsSkippedConfirmation(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.submit(t, testSession, "implement password reset").Blocked())
	result := h.submit(t, testSession, "skip")
	require.Equal(t, DecisionAllow, result.Decision)

	var confirmation domain.ConfirmationMarker
	require.True(t, h.read(t, testSession, domain.StateFolderConfirmed, &confirmation))
	assert.True(t, confirmation.Skipped)
	var marker domain.FolderMarker
	assert.False(t, h.read(t, testSession, domain.StateActiveFolder, &marker))
	assert.Empty(t, h.catalog.created)

	result = h.submit(t, testSession, "implement the password reset email")
	assert.Equal(t, DecisionAllow, result.Decision)
}

func TestGateUnparseableAnswerRepeatsQuestion(t *testing.T) {
	h := newHarness(t)

	first := h.submit(t, testSession, "implement password reset")
	require.True(t, first.Blocked())

	again := h.submit(t, testSession, "hmm, not sure yet")
	require.True(t, again.Blocked())
	assert.Equal(t, first.Question.QuestionID, again.Question.QuestionID)
	assert.Equal(t, first.Question.Options, again.Question.Options)
	assert.Contains(t, again.Reason, "not recognized")
}

func TestGateOverrideCancelsOpenQuestion(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.submit(t, testSession, "implement password reset").Blocked())
	result := h.submit(t, testSession, "never mind")

	assert.Equal(t, DecisionAllow, result.Decision)
	assert.Equal(t, domain.IntentOverride, result.Intent)
	var flow domain.QuestionFlow
	assert.False(t, h.read(t, testSession, domain.StateFlow, &flow))
}

func TestGateOverrideRevokesPreference(t *testing.T) {
	h := newHarness(t)
	_, err := h.sessions.Prefer(context.Background(), PreferCommand{SessionID: testSession, Mode: domain.ModeAuto})
	require.NoError(t, err)

	result := h.submit(t, testSession, "stop asking, reset dispatch")
	assert.Equal(t, DecisionAllow, result.Decision)

	var preference domain.DispatchPreference
	assert.False(t, h.read(t, testSession, domain.StateDispatchPreference, &preference))
}

func TestGateTaskSwitchReplacesOpenQuestion(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.submit(t, testSession, "implement password reset").Blocked())
	result := h.submit(t, testSession, "new task: add an exporter for invoices")

	require.True(t, result.Blocked())
	assert.Equal(t, domain.StageSpecFolder, result.Question.Stage)
	assert.Equal(t, "new task: add an exporter for invoices", result.Question.Context["request"])
}

func TestGateStaleFolderIsPurged(t *testing.T) {
	h := newHarness(t)
	h.write(t, testSession, domain.StateActiveFolder, domain.FolderMarker{Path: "/work/specs/009-gone", SelectedAt: testNow})
	h.write(t, testSession, domain.StateFolderConfirmed, domain.ConfirmationMarker{Path: "/work/specs/009-gone", ConfirmedAt: testNow})

	result := h.submit(t, testSession, "implement password reset")

	require.True(t, result.Blocked())
	assert.Equal(t, domain.StageSpecFolder, result.Question.Stage)
	var confirmation domain.ConfirmationMarker
	assert.False(t, h.read(t, testSession, domain.StateFolderConfirmed, &confirmation))
	assert.Equal(t, 1, h.logs.FilterMessage("active folder no longer exists, purging markers").Len())
}

func TestGateLogsBorderlineDivergence(t *testing.T) {
	h := newHarness(t)
	h.write(t, testSession, domain.StateFolderConfirmed, domain.ConfirmationMarker{Skipped: true, ConfirmedAt: testNow})
	h.write(t, testSession, domain.StateFingerprint, domain.TaskFingerprint{Keywords: []string{"billing", "webhooks"}})

	result := h.submit(t, testSession, "add billing exports")

	assert.Equal(t, DecisionAllow, result.Decision)
	entries := h.logs.FilterMessage("borderline task divergence").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.InDelta(t, 50.0, entries[0].ContextMap()["score"], 0.001)
}

func TestGateFailsOpenWhenStoreIsUnavailable(t *testing.T) {
	store := portmocks.NewMockStateStore(t)
	store.EXPECT().Read(mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("disk gone"))

	core, logs := observer.New(zapcore.WarnLevel)
	gate := NewGateService(GateDeps{
		Store:   store,
		Folders: newFakeCatalog("/work/specs"),
		Memory:  &fakeMemory{},
		Clock:   &testClock{now: testNow},
		Logger:  zap.New(core),
	}, DefaultPolicies(), DefaultGateConfig())

	result := gate.Evaluate(context.Background(), GateCommand{Prompt: "implement password reset", SessionID: testSession})

	assert.Equal(t, DecisionAllow, result.Decision)
	assert.Equal(t, "gate state unavailable", result.Reason)
	assert.Positive(t, logs.FilterMessage("session state unreadable, treating as absent").Len())
	assert.Equal(t, 1, logs.FilterMessage("gate evaluation failed, allowing prompt").Len())
}

func TestGateFailsOpenOnDeadline(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	result := h.gate.Evaluate(ctx, GateCommand{Prompt: "implement password reset", SessionID: testSession})

	assert.Equal(t, DecisionAllow, result.Decision)
	assert.Equal(t, "gate deadline exceeded", result.Reason)
	assert.Empty(t, h.store.Keys(testSession))
}

func TestGateDefaultSessionIsShared(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.submit(t, "", "implement password reset").Blocked())
	result := h.submit(t, domain.DefaultSessionID, "B")

	assert.Equal(t, DecisionAllow, result.Decision)
}
