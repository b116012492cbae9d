package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/httpmock/pkg/config"
)

func newValidateCommand() *cobra.Command {
	var files []string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate setup files without serving them",
		Long: `Validate setup files without starting a server.

This command checks:
  - YAML and JSON syntax
  - methods, statuses and header names
  - that patterns, JSONPath expressions, schemas and expressions compile
  - that merged files agree on prefix and base port`,
		Example: `  # Validate a specific file
  httpmock validate -f mocks.yaml

  # Validate every file below a directory
  httpmock validate -f mocks/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, err := config.Load(files...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			err = file.Validate()
			var verrs config.ValidationErrors
			if errors.As(err, &verrs) {
				for _, v := range verrs {
					fmt.Fprintf(out, "  ✗ %s\n", v)
				}
				return fmt.Errorf("%d validation errors", len(verrs))
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "✓ %d setups in %d files are valid\n", len(file.Setups), len(file.Sources()))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&files, "config", "f", nil, "Setup file, directory or glob (repeatable)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
