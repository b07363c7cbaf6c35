package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// ExitError carries a process exit status other than 1 back to main.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExitCode maps an error returned by Execute to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

func Execute() error {
	return newRootCmd().Execute()
}

type wireFunc func(projectDir string) (*app, error)

type appLoader struct {
	projectDir string
	wire       wireFunc
}

func (l *appLoader) project(fallback string) string {
	if l.projectDir != "" {
		return l.projectDir
	}
	return fallback
}

// withApp wires the app for the selected project, runs fn and closes the app.
func (l *appLoader) withApp(fn func(*app) error) (err error) {
	a, err := l.wire(l.project(""))
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.Close())
	}()
	return fn(a)
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(wireApp)
}

func newRootCmdWith(wire wireFunc) *cobra.Command {
	loader := &appLoader{wire: wire}

	rootCmd := &cobra.Command{
		Use:           "gatekeeper",
		Short:         "gatekeeper: an interactive policy gate for coding-agent prompts",
		Long:          "gatekeeper runs before every prompt an agent receives. It classifies the prompt, asks mandatory questions about work-tracking folders, context snapshots and dispatch, and tells the host runtime whether the prompt may proceed.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&loader.projectDir, "project", "", "Project directory (default: hook cwd or current directory)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newGateCmd(loader),
		newClassifyCmd(loader),
		newScoreCmd(loader),
		newSessionCmd(loader),
		newMemoryCmd(loader),
	)

	return rootCmd
}
