package cmd

import (
	"encoding/json"
	"fmt"

	statusadapter "github.com/bnema/gatekeeper/internal/adapters/render/status"
	"github.com/bnema/gatekeeper/internal/application"
	"github.com/bnema/gatekeeper/internal/domain"
	"github.com/spf13/cobra"
)

func newSessionCmd(loader *appLoader) *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and edit what the gate remembers about a session",
	}
	cmd.PersistentFlags().StringVar(&sessionID, "session", "", "Session ID (default: the shared default session)")

	session := func() domain.SessionID {
		return domain.SessionID(sessionID).OrDefault()
	}

	cmd.AddCommand(
		newSessionStatusCmd(loader, session),
		newSessionResetCmd(loader, session),
		newSessionPreferCmd(loader, session),
		newSessionRevokeCmd(loader, session),
		newSessionUseCmd(loader, session),
	)

	return cmd
}

func newSessionStatusCmd(loader *appLoader, session func() domain.SessionID) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the session's folder, task fingerprint, pending question and dispatch preference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return loader.withApp(func(a *app) error {
				status, err := a.sessions.Status(cmd.Context(), session())
				if err != nil {
					return fmt.Errorf("load session status: %w", err)
				}
				return writeSessionStatus(cmd, a, status, asJSON)
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func writeSessionStatus(cmd *cobra.Command, a *app, status application.SessionStatus, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}

	rendered, err := a.statusRenderer(status, statusadapter.RenderOptions{
		Now:     a.now(),
		FlowTTL: a.cfg.TTL.Flow,
	})
	if err != nil {
		return fmt.Errorf("render status: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

func newSessionResetCmd(loader *appLoader, session func() domain.SessionID) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget the session's folder, task, pending question and dispatch preference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return loader.withApp(func(a *app) error {
				if err := a.sessions.Reset(cmd.Context(), session()); err != nil {
					return fmt.Errorf("reset session: %w", err)
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "session %s reset\n", session())
				return err
			})
		},
	}
}

func newSessionPreferCmd(loader *appLoader, session func() domain.SessionID) *cobra.Command {
	return &cobra.Command{
		Use:       "prefer <direct|parallel|auto>",
		Short:     "Remember a dispatch mode so complex prompts stop asking",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(domain.ModeDirect), string(domain.ModeParallel), string(domain.ModeAuto)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return loader.withApp(func(a *app) error {
				preference, err := a.sessions.Prefer(cmd.Context(), application.PreferCommand{
					SessionID: session(),
					Mode:      domain.DispatchMode(args[0]),
				})
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "dispatch preference %s until %s\n",
					preference.Mode, preference.ExpiresAt.Local().Format("15:04 on 02 Jan"))
				return err
			})
		},
	}
}

func newSessionRevokeCmd(loader *appLoader, session func() domain.SessionID) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke",
		Short: "Drop the session's dispatch preference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return loader.withApp(func(a *app) error {
				if err := a.sessions.Revoke(cmd.Context(), session()); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "dispatch preference revoked")
				return err
			})
		},
	}
}

func newSessionUseCmd(loader *appLoader, session func() domain.SessionID) *cobra.Command {
	return &cobra.Command{
		Use:   "use <folder>",
		Short: "Select and confirm a work-tracking folder without answering a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return loader.withApp(func(a *app) error {
				marker, err := a.sessions.UseFolder(cmd.Context(), application.UseFolderCommand{
					SessionID: session(),
					Path:      args[0],
				})
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "active folder: %s\n", marker.Path)
				return err
			})
		},
	}
}
