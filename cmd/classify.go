package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bnema/gatekeeper/internal/domain"
	"github.com/spf13/cobra"
)

type classifyOutput struct {
	Intent     domain.Intent `json:"intent"`
	Rule       string        `json:"rule"`
	Detail     string        `json:"detail,omitempty"`
	TaskSwitch bool          `json:"task_switch"`
}

func newClassifyCmd(loader *appLoader) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "classify <prompt>...",
		Short: "Show how a prompt is classified",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := wireConfig(loader.project(""))
			if err != nil {
				return err
			}

			prompt := strings.Join(args, " ")
			classification := w.policies.Intent.Classify(prompt)
			out := classifyOutput{
				Intent:     classification.Intent,
				Rule:       classification.Rule,
				Detail:     classification.Detail,
				TaskSwitch: w.policies.Intent.HasTaskSwitch(prompt),
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			lines := []string{
				fmt.Sprintf("intent: %s", out.Intent),
				fmt.Sprintf("rule: %s", out.Rule),
			}
			if out.Detail != "" {
				lines = append(lines, fmt.Sprintf("detail: %s", out.Detail))
			}
			if out.TaskSwitch {
				lines = append(lines, "task switch: yes")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(lines, "\n"))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
