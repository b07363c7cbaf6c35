package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bnema/gatekeeper/internal/application"
	"github.com/bnema/gatekeeper/internal/domain"
	"github.com/spf13/cobra"
)

// blockedExitCode tells the host runtime to halt the prompt and show stderr.
const blockedExitCode = 2

var errEmptyHookInput = errors.New("empty hook input")

type hookInput struct {
	Prompt         string `json:"prompt"`
	SessionID      string `json:"session_id"`
	Cwd            string `json:"cwd"`
	HookEventName  string `json:"hook_event_name"`
	TranscriptPath string `json:"transcript_path"`
}

type hookOutput struct {
	Decision          application.Decision      `json:"decision"`
	Reason            string                    `json:"reason"`
	AdditionalContext string                    `json:"additional_context"`
	Question          *domain.MandatoryQuestion `json:"question,omitempty"`
}

func newGateCmd(loader *appLoader) *cobra.Command {
	var prompt string
	var sessionID string

	cmd := &cobra.Command{
		Use:   "gate",
		Short: "Evaluate one prompt (hook JSON on stdin, decision JSON on stdout)",
		Long:  "gate reads {\"prompt\", \"session_id\", \"cwd\"} from stdin and writes {\"decision\", \"reason\", \"additional_context\", \"question\"} to stdout. A blocked prompt exits with status 2 and prints the question on stderr.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var input hookInput
			if cmd.Flags().Changed("prompt") {
				input = hookInput{Prompt: prompt, SessionID: sessionID}
			} else {
				decoded, err := readHookInput(cmd.InOrStdin())
				if err != nil {
					return err
				}
				input = decoded
			}

			return runGate(cmd, loader, input)
		},
	}

	cmd.Flags().StringVar(&prompt, "prompt", "", "Prompt text (skips reading stdin)")
	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID used with --prompt")

	return cmd
}

func readHookInput(r io.Reader) (hookInput, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return hookInput{}, fmt.Errorf("read hook input: %w", err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return hookInput{}, errEmptyHookInput
	}

	var input hookInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return hookInput{}, fmt.Errorf("decode hook input: %w", err)
	}
	return input, nil
}

func runGate(cmd *cobra.Command, loader *appLoader, input hookInput) error {
	a, err := loader.wire(loader.project(input.Cwd))
	if err != nil {
		// Configuration errors degrade to allow.
		fmt.Fprintf(cmd.ErrOrStderr(), "gatekeeper: %v\n", err)
		return writeHookOutput(cmd.OutOrStdout(), hookOutput{
			Decision: application.DecisionAllow,
			Reason:   "gatekeeper unavailable",
		})
	}
	defer func() {
		_ = a.Close()
	}()

	result := a.gate.Evaluate(cmd.Context(), application.GateCommand{
		Prompt:    input.Prompt,
		SessionID: domain.SessionID(input.SessionID),
		Cwd:       input.Cwd,
	})

	if err := writeHookOutput(cmd.OutOrStdout(), hookOutput{
		Decision:          result.Decision,
		Reason:            result.Reason,
		AdditionalContext: result.AdditionalContext,
		Question:          result.Question,
	}); err != nil {
		return err
	}

	if !result.Blocked() {
		return nil
	}

	if result.Question != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), a.questionRenderer(*result.Question))
	} else {
		fmt.Fprintln(cmd.ErrOrStderr(), result.Reason)
	}
	cmd.SilenceErrors = true
	return &ExitError{Code: blockedExitCode}
}

func writeHookOutput(w io.Writer, out hookOutput) error {
	if err := json.NewEncoder(w).Encode(out); err != nil {
		return fmt.Errorf("write hook output: %w", err)
	}
	return nil
}
