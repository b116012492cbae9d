package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// NewRootCommand builds the httpmock command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "httpmock",
		Short: "httpmock serves declarative HTTP mocks",
		Long: `httpmock runs an HTTP mock server from setup files.

Each setup matches requests by method, endpoint and optional predicates and
answers with a fixed response. When the server stops, every unexpected
request, handler failure and unmet required setup is reported.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCommand())
	root.AddCommand(newValidateCommand())
	root.AddCommand(newVersionCommand())
	return root
}

// Execute runs the root command and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	if err := NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "httpmock %s (commit %s, built %s)\n", Version, Commit, BuildDate)
			return err
		},
	}
}
