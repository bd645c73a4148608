package main

import (
	"context"
	"fmt"

	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/spf13/cobra"
)

func newStructureCmd(root *rootOptions) *cobra.Command {
	var sourceURL string
	cmd := &cobra.Command{
		Use:   "structure",
		Short: "Structure a resume or job description into JSON",
	}

	resumeCmd := &cobra.Command{
		Use:   "resume FILE",
		Short: "Structure a resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := ingestion.LoadFile(args[0])
			if err != nil {
				return err
			}
			return withPipeline(cmd, root, func(ctx context.Context, p *pipeline.Pipeline) error {
				resume, err := p.StructureResume(ctx, pipeline.ResumeInput{Filename: doc.Filename, OriginalText: doc.Text})
				if err != nil {
					return fmt.Errorf("failed to structure resume: %w", err)
				}
				return writeJSON(cmd.OutOrStdout(), resume)
			})
		},
	}

	jobCmd := &cobra.Command{
		Use:   "job FILE",
		Short: "Structure a job description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := ingestion.LoadFile(args[0])
			if err != nil {
				return err
			}
			return withPipeline(cmd, root, func(ctx context.Context, p *pipeline.Pipeline) error {
				job, err := p.StructureJob(ctx, pipeline.JobInput{SourceURL: sourceURL, RawText: doc.Text})
				if err != nil {
					return fmt.Errorf("failed to structure job: %w", err)
				}
				return writeJSON(cmd.OutOrStdout(), job)
			})
		},
	}
	jobCmd.Flags().StringVar(&sourceURL, "source-url", "", "Where the job description came from")

	cmd.AddCommand(resumeCmd, jobCmd)
	return cmd
}

func withPipeline(cmd *cobra.Command, root *rootOptions, fn func(context.Context, *pipeline.Pipeline) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, root, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a.pipeline)
}
