package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newRunsCmd(root *rootOptions) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect stored tailoring runs",
	}
	cmd.PersistentFlags().StringVar(&user, "user", "", "Owner of the runs (defaults to DEFAULT_USER_ID)")

	owner := func(a *app) string {
		if user != "" {
			return user
		}
		return a.cfg.Server.DefaultUser
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the most recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, root, func(ctx context.Context, a *app) error {
				runs, err := a.store.ListTailoringRuns(ctx, owner(a))
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				_, _ = fmt.Fprintln(tw, "RUN\tRESUME\tJOB\tCREATED")
				for _, r := range runs {
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.ResumeID, r.JobID, r.CreatedAt.Format("2006-01-02 15:04"))
				}
				return tw.Flush()
			})
		},
	}

	var showText bool
	getCmd := &cobra.Command{
		Use:   "get RUN_ID",
		Short: "Print a stored run's result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid run id: %w", err)
			}
			return withStore(cmd, root, func(ctx context.Context, a *app) error {
				run, err := a.store.GetTailoringRun(ctx, owner(a), id)
				if err != nil {
					return err
				}
				result, err := run.DecodeResult()
				if err != nil {
					return err
				}
				if showText {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), result.RenderedText)
					return err
				}
				return writeJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	getCmd.Flags().BoolVar(&showText, "text", false, "Print only the rendered text")

	cmd.AddCommand(listCmd, getCmd)
	return cmd
}

func withStore(cmd *cobra.Command, root *rootOptions, fn func(context.Context, *app) error) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, root, appOptions{needStore: true})
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
