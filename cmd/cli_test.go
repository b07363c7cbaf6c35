package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionPrintsBuildVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "", "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestGateAllowsExplanation(t *testing.T) {
	project := t.TempDir()

	stdout, _, err := executeCLI(t, t.TempDir(), hookJSON(t, "explain how the retry loop works", "s1", project), "gate")
	require.NoError(t, err)

	out := decodeHookOutput(t, stdout)
	assert.Equal(t, "allow", string(out.Decision))
	assert.Nil(t, out.Question)
	assert.Contains(t, stdout, `"additional_context"`)
}

func TestGateBlocksThenAcceptsAnswer(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()

	stdout, stderr, err := executeCLI(t, home, hookJSON(t, "implement password reset", "s1", project), "gate")
	require.Error(t, err)
	assert.Equal(t, 2, ExitCode(err))
	assert.NotContains(t, stderr, "exit status 2")
	assert.Contains(t, stderr, "Mandatory question")
	assert.Contains(t, stderr, "Create new folder 001-password-reset")

	out := decodeHookOutput(t, stdout)
	assert.Equal(t, "block", string(out.Decision))
	require.NotNil(t, out.Question)
	assert.NotEmpty(t, out.Question.QuestionID)
	assert.Contains(t, stdout, `"questionId"`)

	stdout, _, err = executeCLI(t, home, hookJSON(t, "D", "s1", project), "gate")
	require.NoError(t, err)
	out = decodeHookOutput(t, stdout)
	assert.Equal(t, "allow", string(out.Decision))
	assert.Contains(t, out.AdditionalContext, "documentation skipped")
}

func TestGatePromptFlagSkipsStdin(t *testing.T) {
	project := t.TempDir()

	stdout, _, err := executeCLI(t, t.TempDir(), "", "--project", project, "gate", "--prompt", "what does this function do?", "--session", "s1")
	require.NoError(t, err)
	assert.Equal(t, "allow", string(decodeHookOutput(t, stdout).Decision))
}

func TestGateRejectsUnreadableInput(t *testing.T) {
	tests := []struct {
		name    string
		stdin   string
		wantErr string
	}{
		{name: "empty", stdin: "  \n", wantErr: "empty hook input"},
		{name: "not json", stdin: "implement password reset", wantErr: "decode hook input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeCLI(t, t.TempDir(), tt.stdin, "--project", t.TempDir(), "gate")
			require.Error(t, err)
			assert.Equal(t, 1, ExitCode(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGateFailsOpenOnBrokenConfig(t *testing.T) {
	project := t.TempDir()
	require.NoError(t, writeProjectConfig(project, "[gate\n"))

	stdout, stderr, err := executeCLI(t, t.TempDir(), hookJSON(t, "implement password reset", "s1", project), "gate")
	require.NoError(t, err)
	assert.Contains(t, stderr, "load config")

	out := decodeHookOutput(t, stdout)
	assert.Equal(t, "allow", string(out.Decision))
	assert.Equal(t, "gatekeeper unavailable", out.Reason)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		expect []string
	}{
		{name: "modification", args: []string{"add", "a", "login", "endpoint"}, expect: []string{"intent: modification"}},
		{name: "explain beats modification", args: []string{"explain how to add a login endpoint"}, expect: []string{"intent: explain"}},
		{name: "json", args: []string{"--json", "never mind, skip the questions"}, expect: []string{`"intent": "override"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--project", t.TempDir(), "classify"}, tt.args...)
			stdout, _, err := executeCLI(t, t.TempDir(), "", args...)
			require.NoError(t, err)
			for _, want := range tt.expect {
				assert.Contains(t, stdout, want)
			}
		})
	}
}

func TestScoreJSON(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "",
		"--project", t.TempDir(),
		"score", "--json",
		"refactor the api handlers, add logging and metrics, update the docs and write tests",
	)
	require.NoError(t, err)

	var out scoreOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.GreaterOrEqual(t, out.Complexity.DomainCount, 3)
	assert.NotEmpty(t, out.Dispatch.Action)
}

func TestScoreRejectsUnknownMode(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "", "--project", t.TempDir(), "score", "--mode", "sometimes", "fix the bug")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid dispatch mode")
}

func TestSessionCommands(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(project, "specs", "004-billing"), 0o755))

	stdout, _, err := executeCLI(t, home, "", "--project", project, "session", "prefer", "parallel", "--session", "s1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "dispatch preference parallel until")

	stdout, _, err = executeCLI(t, home, "", "--project", project, "session", "use", "004-billing", "--session", "s1")
	require.NoError(t, err)
	assert.Contains(t, stdout, filepath.Join("specs", "004-billing"))

	stdout, _, err = executeCLI(t, home, "", "--project", project, "session", "status", "--session", "s1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "session: s1")
	assert.Contains(t, stdout, "folder: 004-billing")
	assert.Contains(t, stdout, "mode: parallel")
	assert.Contains(t, stdout, "[unconfirmed]")

	stdout, _, err = executeCLI(t, home, "", "--project", project, "session", "status", "--session", "s1", "--json")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))
	assert.Contains(t, stdout, `"Session": "s1"`)

	_, _, err = executeCLI(t, home, "", "--project", project, "session", "revoke", "--session", "s1")
	require.NoError(t, err)
	stdout, _, err = executeCLI(t, home, "", "--project", project, "session", "status", "--session", "s1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "None, complex prompts will ask.")

	stdout, _, err = executeCLI(t, home, "", "--project", project, "session", "reset", "--session", "s1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "session s1 reset")
	stdout, _, err = executeCLI(t, home, "", "--project", project, "session", "status", "--session", "s1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No folder selected.")
}

func TestGateConfirmsFolderSelectedBySessionUse(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(project, "specs", "004-billing"), 0o755))

	_, _, err := executeCLI(t, home, "", "--project", project, "session", "use", "004-billing", "--session", "s1")
	require.NoError(t, err)
	_, _, err = executeCLI(t, home, "", "--project", project, "session", "prefer", "parallel", "--session", "s1")
	require.NoError(t, err)

	stdout, stderr, err := executeCLI(t, home, hookJSON(t, "implement invoice exports", "s1", project), "gate")
	require.Error(t, err)
	assert.Equal(t, 2, ExitCode(err))
	assert.Contains(t, stderr, "Keep 004-billing")

	out := decodeHookOutput(t, stdout)
	require.NotNil(t, out.Question)
	assert.Equal(t, "spec_folder_confirm", string(out.Question.Stage))

	stdout, _, err = executeCLI(t, home, hookJSON(t, "A", "s1", project), "gate")
	require.NoError(t, err)
	out = decodeHookOutput(t, stdout)
	assert.Equal(t, "allow", string(out.Decision))
	assert.Contains(t, out.AdditionalContext, "004-billing")

	stdout, _, err = executeCLI(t, home, hookJSON(t, "implement invoice exports for refunds", "s1", project), "gate")
	require.NoError(t, err)
	assert.Equal(t, "allow", string(decodeHookOutput(t, stdout).Decision))
}

func TestSessionUseMissingFolder(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "", "--project", t.TempDir(), "session", "use", "404-nowhere")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "work-tracking folder not found")
}

func TestSessionPreferRejectsUnknownMode(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "", "--project", t.TempDir(), "session", "prefer", "sometimes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid dispatch mode")
}

func TestMemoryRecordThenList(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()

	stdout, _, err := executeCLI(t, home, "", "--project", project, "memory", "record", "002-search", "Ranking", "notes", "--id", "snap-1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "recorded snapshot snap-1 for 002-search")

	stdout, _, err = executeCLI(t, home, "", "--project", project, "memory", "list", "002-search")
	require.NoError(t, err)
	assert.Contains(t, stdout, "snap-1")
	assert.Contains(t, stdout, "Ranking notes")

	stdout, _, err = executeCLI(t, home, "", "--project", project, "memory", "list", "003-empty")
	require.NoError(t, err)
	assert.Contains(t, stdout, "no snapshots")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
	assert.Equal(t, 2, ExitCode(&ExitError{Code: 2}))
}

func TestUnknownCommand(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "", "limit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command \"limit\"")
}

func executeCLI(t *testing.T, home string, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)
	t.Setenv("GATEKEEPER_STATE_FALLBACK_ROOT", filepath.Join(home, "fallback"))

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func hookJSON(t *testing.T, prompt, session, cwd string) string {
	t.Helper()
	raw, err := json.Marshal(hookInput{
		Prompt:        prompt,
		SessionID:     session,
		Cwd:           cwd,
		HookEventName: "UserPromptSubmit",
	})
	require.NoError(t, err)
	return string(raw)
}

func decodeHookOutput(t *testing.T, stdout string) hookOutput {
	t.Helper()
	var out hookOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out), "stdout: %s", stdout)
	return out
}

func writeProjectConfig(project, content string) error {
	dir := filepath.Join(project, ".gatekeeper")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "gatekeeper.toml"), []byte(content), 0o644)
}
