package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/gatekeeper/internal/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var errMemoryDatabaseUnavailable = errors.New("memory database unavailable")

func newMemoryCmd(loader *appLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Manage the context snapshots offered when a folder is chosen",
	}

	cmd.AddCommand(
		newMemoryRecordCmd(loader),
		newMemoryListCmd(loader),
	)

	return cmd
}

func newMemoryRecordCmd(loader *appLoader) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "record <folder> <title>...",
		Short: "Register a context snapshot for a work-tracking folder",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return loader.withApp(func(a *app) error {
				if a.snapshots == nil {
					return errMemoryDatabaseUnavailable
				}
				if id == "" {
					id = uuid.NewString()
				}

				snapshot := domain.Snapshot{
					ID:        id,
					Title:     strings.Join(args[1:], " "),
					CreatedAt: a.now().UTC(),
				}
				folder := resolveFolder(a.cfg.Folders.Root, args[0])
				if err := a.snapshots.Record(cmd.Context(), folder, snapshot); err != nil {
					return err
				}

				_, err := fmt.Fprintf(cmd.OutOrStdout(), "recorded snapshot %s for %s\n", snapshot.ID, filepath.Base(folder))
				return err
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Snapshot ID (default: a new UUID)")

	return cmd
}

func newMemoryListCmd(loader *appLoader) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list <folder>",
		Short: "List a folder's context snapshots, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return loader.withApp(func(a *app) error {
				folder := resolveFolder(a.cfg.Folders.Root, args[0])
				snapshots, err := a.memory.ListSnapshots(cmd.Context(), folder, limit)
				if err != nil {
					return fmt.Errorf("list snapshots: %w", err)
				}

				if len(snapshots) == 0 {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), "no snapshots")
					return err
				}
				for _, snapshot := range snapshots {
					if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n",
						snapshot.ID, snapshot.CreatedAt.Local().Format(time.DateTime), snapshot.Title); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of snapshots (default: all)")

	return cmd
}

func resolveFolder(root, folder string) string {
	if filepath.IsAbs(folder) {
		return filepath.Clean(folder)
	}
	return filepath.Join(root, folder)
}
