package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/resume-tailor/internal/rendering"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/spf13/cobra"
)

func newRenderCmd() *cobra.Command {
	var outFile string
	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render a tailored resume or tailoring result as ATS text",
		Long:  "Reads a tailoring result (as written by tailor --output json) or a bare tailored resume and prints its ATS text.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			resume, err := decodeTailored(raw)
			if err != nil {
				return err
			}
			text := rendering.RenderATSText(resume)
			if outFile != "" {
				return rendering.ExportToFile(cmd.Context(), rendering.TextExporter{}, text, outFile)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
	cmd.Flags().StringVar(&outFile, "out", "", "Write to this file instead of stdout")
	return cmd
}

// decodeTailored accepts a tailoring result, a tailor --output json outcome
// or a tailored resume.
func decodeTailored(raw []byte) (types.TailoredResume, error) {
	if res, err := schemas.Decode[types.TailoringResult](schemas.TailoringResult, raw); err == nil {
		return res.Tailored, nil
	}
	var outcome struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(raw, &outcome); err == nil && len(outcome.Result) > 0 {
		if res, err := schemas.Decode[types.TailoringResult](schemas.TailoringResult, outcome.Result); err == nil {
			return res.Tailored, nil
		}
	}
	resume, err := schemas.Decode[types.TailoredResume](schemas.TailoredResume, raw)
	if err != nil {
		return types.TailoredResume{}, fmt.Errorf("input is neither a tailoring result nor a tailored resume: %w", err)
	}
	return resume, nil
}
