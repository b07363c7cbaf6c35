package status

import (
	"testing"
	"time"

	"github.com/bnema/gatekeeper/internal/application"
	"github.com/bnema/gatekeeper/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func TestRenderEmptySession(t *testing.T) {
	output, err := Render(application.SessionStatus{Session: "default"}, RenderOptions{Now: now})

	require.NoError(t, err)
	assert.Contains(t, output, "session: default")
	assert.Contains(t, output, "No folder selected.")
	assert.Contains(t, output, "No task fingerprint.")
	assert.Contains(t, output, "None, complex prompts will ask.")
}

func TestRenderConfirmedFolderWithPreference(t *testing.T) {
	folder := "/work/specs/003-password-reset"

	output, err := Render(application.SessionStatus{
		Session:      "sess-1",
		ActiveFolder: &domain.FolderMarker{Path: folder, SelectedAt: now.Add(-3 * time.Hour)},
		Confirmation: &domain.ConfirmationMarker{Path: folder, ConfirmedAt: now.Add(-3 * time.Hour)},
		Fingerprint: &domain.TaskFingerprint{
			Keywords:  []string{"password", "reset", "email"},
			CreatedAt: now.Add(-90 * time.Minute),
		},
		Preference: &domain.DispatchPreference{
			Mode:       domain.ModeParallel,
			CapturedAt: now.Add(-30 * time.Minute),
			ExpiresAt:  now.Add(30 * time.Minute),
		},
	}, RenderOptions{Now: now})

	require.NoError(t, err)
	assert.Contains(t, output, "folder: 003-password-reset")
	assert.Contains(t, output, "confirmed 3 hours ago")
	assert.Contains(t, output, "keywords: password, reset, email")
	assert.Contains(t, output, "recorded 1 hour ago")
	assert.Contains(t, output, "mode: parallel")
	assert.Contains(t, output, "[============------------]")
	assert.Contains(t, output, "expires in 30 minutes (12:30)")
	assert.NotContains(t, output, "[unconfirmed]")
}

func TestRenderPendingQuestion(t *testing.T) {
	output, err := Render(application.SessionStatus{
		Session:      "sess-1",
		ActiveFolder: &domain.FolderMarker{Path: "/work/specs/001-search"},
		Flow: &domain.QuestionFlow{
			Stage:         domain.StageSpecFolderConfirm,
			PendingPrompt: "implement fuzzy matching for the search box",
			Candidates:    []domain.Candidate{{ID: "A"}, {ID: "B"}, {ID: "D"}},
			OpenedAt:      now.Add(-10 * time.Minute),
		},
	}, RenderOptions{Now: now, FlowTTL: 30 * time.Minute})

	require.NoError(t, err)
	assert.Contains(t, output, "[unconfirmed]")
	assert.Contains(t, output, "stage: spec_folder_confirm")
	assert.Contains(t, output, "options: A B D")
	assert.Contains(t, output, "request: implement fuzzy matching for the search box")
	assert.Contains(t, output, "expires in 20 minutes")
}

func TestRenderSkippedDocumentation(t *testing.T) {
	output, err := Render(application.SessionStatus{
		Session:      "sess-1",
		Confirmation: &domain.ConfirmationMarker{Skipped: true, ConfirmedAt: now.Add(-2 * time.Minute)},
	}, RenderOptions{Now: now})

	require.NoError(t, err)
	assert.Contains(t, output, "documentation skipped for this session")
	assert.Contains(t, output, "confirmed 2 minutes ago")
}

func TestFormatHelpers(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "age in days", got: formatAge(now.Add(-50*time.Hour), now), want: "2 days ago"},
		{name: "age without clock", got: formatAge(now, time.Time{}), want: "at 12:00 on 18 Oct"},
		{name: "expired", got: formatExpiry(now.Add(-time.Second), now), want: "expired"},
		{name: "sub-minute rounds up", got: formatExpiry(now.Add(10*time.Second), now), want: "expires in 1 minute (12:00)"},
		{name: "truncate", got: truncate("abcdefghij", 8), want: "abcde..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}
