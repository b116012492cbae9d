package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/getmockd/httpmock/pkg/config"
	"github.com/getmockd/httpmock/pkg/httpmock"
	"github.com/getmockd/httpmock/pkg/logging"
)

// ErrTeardown is returned by serve when the mock server reported failures
// on shutdown.
var ErrTeardown = errors.New("mock server reported failures")

type serveFlags struct {
	files     []string
	prefix    string
	strict    bool
	basePort  int
	duration  time.Duration
	logLevel  string
	logFormat string
}

func newServeCommand() *cobra.Command {
	f := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve setup files until interrupted",
		Long: `Start a mock server with the setups declared in the given files and keep
serving until SIGINT or SIGTERM, or until --duration elapses. On shutdown the
teardown result is printed and the command fails if it reported anything.

Directories contribute every .yaml, .yml and .json file beneath them and
patterns may use ** to match across directories.`,
		Example: `  # Serve one file
  httpmock serve -f mocks.yaml

  # Serve a directory in strict mode under /v1/
  httpmock serve -f mocks/ --prefix v1 --strict

  # Serve for a fixed time, e.g. around a CI job
  httpmock serve -f 'testdata/**/*.yaml' --duration 2m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVarP(&f.files, "config", "f", nil, "Setup file, directory or glob (repeatable)")
	flags.StringVar(&f.prefix, "prefix", "", "Path prefix for every endpoint (overrides the files)")
	flags.BoolVar(&f.strict, "strict", false, "Treat unmatched requests as failures (overrides the files)")
	flags.IntVar(&f.basePort, "base-port", httpmock.DefaultBasePort, "First port to try (overrides the files)")
	flags.DurationVar(&f.duration, "duration", 0, "Stop after this long (0 = until interrupted)")
	flags.StringVar(&f.logLevel, "log-level", "info", "Log level (debug, info, warn, error, off)")
	flags.StringVar(&f.logFormat, "log-format", "text", "Log format (text, json)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, f *serveFlags) error {
	file, err := config.Load(f.files...)
	if err != nil {
		return err
	}
	if err := file.Validate(); err != nil {
		return fmt.Errorf("invalid setup files: %w", err)
	}

	if cmd.Flags().Changed("prefix") {
		file.Prefix = f.prefix
	}
	if cmd.Flags().Changed("strict") {
		file.Strict = f.strict
	}
	if cmd.Flags().Changed("base-port") {
		file.BasePort = f.basePort
	}

	log, err := logging.FromFlags(f.logLevel, f.logFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	opts := append(file.Options(), httpmock.WithLogger(log))
	mock, err := httpmock.New(file.Prefix, file.Strict, opts...)
	if err != nil {
		return err
	}

	if _, err := file.Register(mock); err != nil {
		_ = mock.Close()
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Serving %d setups from %d files at %s\n", len(file.Setups), len(file.Sources()), mock.BaseURL())

	if f.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.duration)
		defer cancel()
	}
	<-ctx.Done()

	return report(out, mock)
}

// report closes the server and prints the per-setup call counts and the
// teardown result.
func report(out io.Writer, mock *httpmock.MockServer) error {
	teardownErr := mock.Close()

	fmt.Fprintf(out, "Handled %d requests\n", len(mock.Requests()))
	for _, s := range mock.Setups() {
		fmt.Fprintf(out, "  %-40s %d calls\n", s.URL(), s.Calls())
	}

	var teardown *httpmock.TeardownError
	if !errors.As(teardownErr, &teardown) {
		if teardownErr != nil {
			return teardownErr
		}
		fmt.Fprintln(out, "Teardown: ok")
		return nil
	}

	fmt.Fprintf(out, "Teardown: %d failures\n", len(teardown.Failures))
	for _, failure := range teardown.Failures {
		fmt.Fprintf(out, "  - %v\n", failure)
	}
	return fmt.Errorf("%w: %d", ErrTeardown, len(teardown.Failures))
}
