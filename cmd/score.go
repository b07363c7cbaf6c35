package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/gatekeeper/internal/domain"
	"github.com/bnema/gatekeeper/internal/policy/complexity"
	"github.com/spf13/cobra"
)

type scoreOutput struct {
	Complexity complexity.Score        `json:"complexity"`
	Dispatch   domain.DispatchDecision `json:"dispatch"`
}

func newScoreCmd(loader *appLoader) *cobra.Command {
	var asJSON bool
	var mode string

	cmd := &cobra.Command{
		Use:   "score <prompt>...",
		Short: "Show the complexity score and dispatch decision for a prompt",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := wireConfig(loader.project(""))
			if err != nil {
				return err
			}

			now := time.Now()
			var preference domain.DispatchPreference
			if mode != "" {
				dispatchMode := domain.DispatchMode(mode)
				if !dispatchMode.Valid() {
					return fmt.Errorf("%w: %q", domain.ErrInvalidMode, mode)
				}
				preference = w.policies.Dispatch.Remember(dispatchMode, now)
			}

			score := w.policies.Complexity.Score(strings.Join(args, " "))
			out := scoreOutput{
				Complexity: score,
				Dispatch:   w.policies.Dispatch.Decide(score, preference, now),
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderScore(out))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().StringVar(&mode, "mode", "", "Pretend a dispatch preference is set (direct, parallel, auto)")

	return cmd
}

func renderScore(out scoreOutput) string {
	score := out.Complexity
	domains := "none"
	if len(score.Domains) > 0 {
		domains = strings.Join(score.Domains, ", ")
	}

	lines := []string{
		fmt.Sprintf("score: %.0f", score.Total),
		fmt.Sprintf("domains: %d (%s)", score.DomainCount, domains),
		fmt.Sprintf("files: ~%d", score.FileEstimate),
		fmt.Sprintf("size: ~%d lines", score.SizeEstimate),
	}
	if score.SequentialDependency {
		lines = append(lines, "sequential dependency: yes")
	}
	lines = append(lines, fmt.Sprintf("dispatch: %s (%s)", out.Dispatch.Action, out.Dispatch.Reason))
	return strings.Join(lines, "\n")
}
