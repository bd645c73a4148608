// Package mock is a deterministic heuristic Generator. It answers every
// tailoring task from the typed request input alone, with no clock and no
// randomness, and sends its output through the same schema boundary as the
// text-generation backends.
package mock

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/resume-tailor/internal/llm"
)

// Generator implements llm.Generator.
type Generator struct{}

// New returns a mock generator.
func New() *Generator {
	return &Generator{}
}

var _ llm.Generator = (*Generator)(nil)

// GenerateStructuredJSON implements llm.Generator.
func (g *Generator) GenerateStructuredJSON(ctx context.Context, req llm.Request, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	value, err := g.produce(req)
	if err != nil {
		return &llm.ProviderError{Reason: llm.ReasonBackendFailure, Task: req.Task, Cause: err}
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return &llm.ProviderError{Reason: llm.ReasonUnparseableOutput, Task: req.Task, Cause: err}
	}
	return llm.DecodeStructured(req.Task, req.Schema, raw, out)
}

func (g *Generator) produce(req llm.Request) (any, error) {
	switch in := req.Input.(type) {
	case llm.StructureResumeInput:
		return StructureResume(in.Text), nil
	case llm.StructureJobInput:
		return StructureJob(in.Text), nil
	case llm.GapAnalysisInput:
		return GapAnalysis(in.Resume, in.Job), nil
	case llm.BulletRewriteInput:
		return BulletRewrite(in.Resume, in.Gap), nil
	case llm.SkillsOptimizeInput:
		return SkillsOptimize(in.ResumeSkills, in.Job, in.Gap), nil
	default:
		return nil, fmt.Errorf("unsupported input %T for task %s", req.Input, req.Task)
	}
}
