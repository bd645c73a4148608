package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/rendering"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type tailorOptions struct {
	resumePath     string
	jobPaths       []string
	jobURL         string
	resumeJSONPath string
	jobJSONPath    string
	output         string
	outFile        string
	persist        bool
	user           string
	verbose        bool
	concurrency    int
}

func newTailorCmd(root *rootOptions) *cobra.Command {
	opts := &tailorOptions{}
	cmd := &cobra.Command{
		Use:   "tailor",
		Short: "Tailor a resume to one or more job descriptions",
		Long: `Runs the full pipeline: structure resume and job, analyze gaps, rewrite bullets,
filter the rewrites through the guardrails, order skills and render ATS text.

Several --job flags tailor the same resume to each job in parallel.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTailor(cmd, root, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.resumePath, "resume", "r", "", "Path to resume text (.txt, .md or .html)")
	f.StringArrayVarP(&opts.jobPaths, "job", "j", nil, "Path to job description (repeatable)")
	f.StringVar(&opts.jobURL, "job-url", "", "Source URL of the job, used for HTML content selection")
	f.StringVar(&opts.resumeJSONPath, "resume-json", "", "Pre-structured resume JSON; skips resume structuring when valid")
	f.StringVar(&opts.jobJSONPath, "job-json", "", "Pre-structured job JSON; only with a single --job")
	f.StringVarP(&opts.output, "output", "o", "text", "Output format: text or json")
	f.StringVar(&opts.outFile, "out", "", "Also write the rendered text to this file")
	f.BoolVar(&opts.persist, "persist", false, "Save the resume, job and run to the database")
	f.StringVar(&opts.user, "user", "", "Owner of persisted records (defaults to DEFAULT_USER_ID)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Print intermediate results to stderr")
	f.IntVar(&opts.concurrency, "concurrency", 4, "Maximum parallel runs with several --job flags")
	_ = cmd.MarkFlagRequired("resume")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}

func (o *tailorOptions) validate() error {
	if o.output != "text" && o.output != "json" {
		return fmt.Errorf("--output must be text or json, got %q", o.output)
	}
	if o.jobJSONPath != "" && len(o.jobPaths) > 1 {
		return fmt.Errorf("--job-json cannot be combined with several --job flags")
	}
	if o.outFile != "" && len(o.jobPaths) > 1 {
		return fmt.Errorf("--out cannot be combined with several --job flags")
	}
	return nil
}

func readOptionalJSON(path string) (json.RawMessage, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return raw, nil
}

func (o *tailorOptions) inputs() ([]pipeline.Input, error) {
	resumeDoc, err := ingestion.LoadFile(o.resumePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load resume: %w", err)
	}
	parsed, err := readOptionalJSON(o.resumeJSONPath)
	if err != nil {
		return nil, err
	}
	structured, err := readOptionalJSON(o.jobJSONPath)
	if err != nil {
		return nil, err
	}

	resume := pipeline.ResumeInput{Filename: resumeDoc.Filename, OriginalText: resumeDoc.Text, Parsed: parsed}
	inputs := make([]pipeline.Input, 0, len(o.jobPaths))
	for _, path := range o.jobPaths {
		jobDoc, err := ingestion.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load job %s: %w", path, err)
		}
		inputs = append(inputs, pipeline.Input{
			Resume: resume,
			Job:    pipeline.JobInput{SourceURL: o.jobURL, RawText: jobDoc.Text, Structured: structured},
		})
	}
	return inputs, nil
}

func runTailor(cmd *cobra.Command, root *rootOptions, opts *tailorOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}
	inputs, err := opts.inputs()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, root, appOptions{verbose: opts.verbose, needStore: opts.persist})
	if err != nil {
		return err
	}
	defer a.Close()

	if len(inputs) > 1 {
		return tailorBatch(ctx, cmd.OutOrStdout(), a, opts, inputs)
	}

	out, err := a.pipeline.RunDetailed(ctx, inputs[0])
	if err != nil {
		return fmt.Errorf("tailoring failed: %w", err)
	}
	if opts.verbose {
		printOutcome(cmd.ErrOrStderr(), out)
	}
	if opts.outFile != "" {
		if err := rendering.ExportToFile(ctx, rendering.TextExporter{}, out.Result.RenderedText, opts.outFile); err != nil {
			return err
		}
	}
	if opts.persist {
		runID, err := persistRun(ctx, a, opts.owner(a), inputs[0], out.Result, out)
		if err != nil {
			return err
		}
		a.logger.Info("tailoring run saved", zap.String("run_id", runID.String()))
	}

	if opts.output == "json" {
		return writeJSON(cmd.OutOrStdout(), out)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out.Result.RenderedText)
	return err
}

func tailorBatch(ctx context.Context, w io.Writer, a *app, opts *tailorOptions, inputs []pipeline.Input) error {
	results, err := a.pipeline.RunBatch(ctx, inputs, opts.concurrency)
	if err != nil {
		return fmt.Errorf("tailoring failed: %w", err)
	}
	if opts.persist {
		for i, res := range results {
			if _, err := persistRun(ctx, a, opts.owner(a), inputs[i], res, nil); err != nil {
				return fmt.Errorf("job %s: %w", opts.jobPaths[i], err)
			}
		}
	}

	if opts.output == "json" {
		type entry struct {
			Job    string                 `json:"job"`
			Result *types.TailoringResult `json:"result"`
		}
		entries := make([]entry, len(results))
		for i, res := range results {
			entries[i] = entry{Job: opts.jobPaths[i], Result: res}
		}
		return writeJSON(w, entries)
	}
	for i, res := range results {
		if _, err := fmt.Fprintf(w, "===== %s =====\n%s\n\n", opts.jobPaths[i], res.RenderedText); err != nil {
			return err
		}
	}
	return nil
}

func (o *tailorOptions) owner(a *app) string {
	if o.user != "" {
		return o.user
	}
	return a.cfg.Server.DefaultUser
}

// persistRun stores the inputs and the result. With an outcome, the
// structured resume and job are stored alongside the raw text.
func persistRun(ctx context.Context, a *app, owner string, in pipeline.Input, res *types.TailoringResult, out *pipeline.Outcome) (uuid.UUID, error) {
	var parsed, structured json.RawMessage
	if out != nil {
		var err error
		if parsed, err = json.Marshal(out.Resume); err != nil {
			return uuid.Nil, fmt.Errorf("failed to encode resume: %w", err)
		}
		if structured, err = json.Marshal(out.Job); err != nil {
			return uuid.Nil, fmt.Errorf("failed to encode job: %w", err)
		}
	}

	resumeID, err := a.store.SaveResume(ctx, owner, in.Resume.Filename, in.Resume.OriginalText, parsed)
	if err != nil {
		return uuid.Nil, err
	}
	jobID, err := a.store.SaveJob(ctx, owner, in.Job.SourceURL, in.Job.RawText, structured)
	if err != nil {
		return uuid.Nil, err
	}
	return a.store.CreateTailoringRun(ctx, owner, resumeID, jobID, res)
}

func printOutcome(w io.Writer, out *pipeline.Outcome) {
	p := observability.NewPrinter(w)
	p.PrintStructuredResume(&out.Resume)
	p.PrintStructuredJob(&out.Job)
	p.PrintGapAnalysis(&out.Result.GapAnalysis)
	p.PrintDecisions(out.Decisions)
	p.PrintSkills(out.Result.OriginalSkills, &out.Result.SkillsOptimize)
	for _, st := range out.Stages {
		_, _ = fmt.Fprintf(w, "%-24s %s\n", st.Stage, st.Duration)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
