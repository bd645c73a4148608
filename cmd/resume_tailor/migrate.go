package main

import (
	"context"
	"fmt"

	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/spf13/cobra"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if list {
				names, err := db.Migrations()
				if err != nil {
					return err
				}
				for _, n := range names {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), n)
				}
				return nil
			}
			return withStore(cmd, root, func(ctx context.Context, a *app) error {
				if err := a.store.Migrate(ctx); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "List embedded migrations without applying them")
	return cmd
}
