package llm

import (
	"context"
	"encoding/json"

	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Task identifies one structured-generation step.
type Task string

// Task constants. The values double as prompt keys.
const (
	TaskStructureResume Task = "structure-resume"
	TaskStructureJob    Task = "structure-job"
	TaskGapAnalysis     Task = "gap-analysis"
	TaskBulletRewrite   Task = "bullet-rewrite"
	TaskSkillsOptimize  Task = "skills-optimize"
)

// Request is one structured-generation call. Text backends read System and
// User; heuristic backends read Input, which holds the typed stage input.
type Request struct {
	Task   Task
	System string
	User   string
	// Schema names the embedded schema the output must satisfy.
	Schema string
	Input  any
}

// Generator produces a schema-validated JSON document for a request and
// decodes it into out.
type Generator interface {
	GenerateStructuredJSON(ctx context.Context, req Request, out any) error
}

// StructureResumeInput is the input of TaskStructureResume.
type StructureResumeInput struct {
	Filename string
	Text     string
}

// StructureJobInput is the input of TaskStructureJob.
type StructureJobInput struct {
	SourceURL string
	Text      string
}

// GapAnalysisInput is the input of TaskGapAnalysis.
type GapAnalysisInput struct {
	Resume types.StructuredResume
	Job    types.StructuredJob
}

// BulletRewriteInput is the input of TaskBulletRewrite.
type BulletRewriteInput struct {
	Resume types.StructuredResume
	Job    types.StructuredJob
	Gap    types.GapAnalysis
}

// SkillsOptimizeInput is the input of TaskSkillsOptimize.
type SkillsOptimizeInput struct {
	ResumeSkills []string
	Job          types.StructuredJob
	Gap          types.GapAnalysis
}

// Generate runs req through g and returns the decoded value.
func Generate[T any](ctx context.Context, g Generator, req Request) (T, error) {
	var out T
	err := g.GenerateStructuredJSON(ctx, req, &out)
	return out, err
}

// DecodeStructured validates raw against schema and decodes it into out.
// Absent lists are filled in when out supports it. Failures are
// ProviderErrors with ReasonSchemaViolation.
func DecodeStructured(task Task, schema string, raw []byte, out any) error {
	if err := schemas.Validate(schema, raw); err != nil {
		return &ProviderError{Reason: ReasonSchemaViolation, Task: task, Cause: err}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ProviderError{Reason: ReasonSchemaViolation, Task: task, Message: "decode", Cause: err}
	}
	if n, ok := out.(interface{ Normalize() }); ok {
		n.Normalize()
	}
	return nil
}
