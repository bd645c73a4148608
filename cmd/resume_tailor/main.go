// Package main provides the resume-tailor command line: one-shot tailoring,
// structuring, rendering, stored-run inspection and the HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	mode       string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "resume_tailor",
		Short:         "Tailor a resume to a job description",
		Long:          "resume_tailor structures a resume and a job description, proposes bullet and skill edits, keeps only the edits that add no new facts, and renders the result as ATS-friendly text.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML or JSON config file")
	cmd.PersistentFlags().StringVar(&opts.mode, "ai-mode", "", "Generation mode: auto, mock, openai, gemini or anthropic (overrides AI_MODE)")

	cmd.AddCommand(
		newTailorCmd(opts),
		newStructureCmd(opts),
		newRenderCmd(),
		newValidateCmd(),
		newRunsCmd(opts),
		newMigrateCmd(opts),
		newServeCmd(opts),
	)
	return cmd
}

func main() {
	if _, err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
