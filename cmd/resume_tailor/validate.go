package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var schemaName string
	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a JSON document against one of the built-in schemas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(schemas.Names(), schemaName) {
				return fmt.Errorf("unknown schema %q (one of: %s)", schemaName, strings.Join(schemas.Names(), ", "))
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			if err := schemas.Validate(schemaName, raw); err != nil {
				var verr *schemas.ValidationError
				if errors.As(err, &verr) {
					for _, fe := range verr.Errors {
						_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", fe.Field, fe.Message)
					}
				}
				return fmt.Errorf("%s does not validate against %s", args[0], schemaName)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s is a valid %s\n", args[0], schemaName)
			return err
		},
	}
	cmd.Flags().StringVarP(&schemaName, "schema", "s", schemas.TailoringResult, "Schema name")
	return cmd
}
