// Package pipeline runs one resume against one job through structuring, gap
// analysis, guarded bullet rewriting, guarded skill ordering and rendering.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-tailor/internal/guardrail"
	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/metrics"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/rendering"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/jonathan/resume-tailor/internal/pipeline"

// Pipeline tailors resumes with a fixed generator. It holds no per-run
// state and is safe for concurrent use.
type Pipeline struct {
	gen      llm.Generator
	guard    *guardrail.Engine
	logger   *zap.Logger
	metrics  *metrics.Recorder
	cache    StructureCache
	cacheNS  string
	progress ProgressCallback
	tracer   trace.Tracer
}

// New creates a Pipeline around gen, which is either the mock or a real
// provider chosen by the caller.
func New(gen llm.Generator, opts ...Option) *Pipeline {
	p := &Pipeline{gen: gen, logger: zap.NewNop(), tracer: otel.Tracer(tracerName)}
	for _, opt := range opts {
		opt(p)
	}
	p.guard = guardrail.New(p.logger, p.metrics)
	return p
}

// Derive returns a copy of p with opts applied on top of its own.
func (p *Pipeline) Derive(opts ...Option) *Pipeline {
	cp := *p
	for _, opt := range opts {
		opt(&cp)
	}
	cp.guard = guardrail.New(cp.logger, cp.metrics)
	return &cp
}

// Outcome is a run's result together with what happened along the way.
// Result.BulletRewrite holds the edits as proposed; Decisions says which of
// them were applied.
type Outcome struct {
	RunID     string                 `json:"runId"`
	Result    *types.TailoringResult `json:"result"`
	Resume    types.StructuredResume `json:"resume"`
	Job       types.StructuredJob    `json:"job"`
	Decisions []guardrail.Decision   `json:"decisions"`
	Stages    []StageTiming          `json:"stages"`
}

// Run tailors one resume to one job.
func (p *Pipeline) Run(ctx context.Context, in Input) (*types.TailoringResult, error) {
	out, err := p.RunDetailed(ctx, in)
	if err != nil {
		return nil, err
	}
	return out.Result, nil
}

// RunDetailed is Run with the structured inputs, guardrail decisions and
// stage timings included.
func (p *Pipeline) RunDetailed(ctx context.Context, in Input) (outcome *Outcome, err error) {
	runID := uuid.NewString()
	log := p.logger.With(zap.String("run_id", runID))
	ctx, span := p.tracer.Start(ctx, "tailoring.run", trace.WithAttributes(attribute.String("run.id", runID)))
	started := time.Now()
	defer func() {
		p.metrics.RunFinished(err)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if err != nil {
			log.Warn("tailoring run failed", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
			return
		}
		log.Info("tailoring run finished", zap.Duration("elapsed", time.Since(started)))
	}()

	in, err = prepare(in)
	if err != nil {
		return nil, err
	}
	if p.gen == nil {
		return nil, &llm.ProviderError{Reason: llm.ReasonNoProvider, Message: "pipeline has no generator"}
	}

	r := &run{p: p, id: runID, log: log, out: &Outcome{RunID: runID}}
	if err := r.execute(ctx, in); err != nil {
		return nil, err
	}
	return r.out, nil
}

// RunBatch runs independent inputs in parallel, at most limit at a time
// (no limit when limit <= 0). Results keep input order. The first failure
// cancels the rest.
func (p *Pipeline) RunBatch(ctx context.Context, inputs []Input, limit int) ([]*types.TailoringResult, error) {
	results := make([]*types.TailoringResult, len(inputs))
	g, gCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, in := range inputs {
		g.Go(func() error {
			res, err := p.Run(gCtx, in)
			if err != nil {
				return fmt.Errorf("input %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// run is the state of a single execution.
type run struct {
	p     *Pipeline
	id    string
	log   *zap.Logger
	out   *Outcome
	stage tracker
}

// step advances to stage, runs fn and records its timing. Errors are
// wrapped with the stage.
func (r *run) step(ctx context.Context, stage Stage, fn func(ctx context.Context) (string, any, error)) error {
	if err := r.stage.advance(stage); err != nil {
		return err
	}
	ctx, span := r.p.tracer.Start(ctx, stage.String())
	defer span.End()

	start := time.Now()
	msg, content, err := fn(ctx)
	elapsed := time.Since(start)
	r.p.metrics.ObserveStage(stage.String(), elapsed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return &StageError{Stage: stage, Err: err}
	}

	r.out.Stages = append(r.out.Stages, StageTiming{Stage: stage, Duration: elapsed})
	r.log.Info("stage finished", zap.Stringer("stage", stage), zap.Duration("elapsed", elapsed))
	if r.p.progress != nil {
		r.p.progress(ProgressEvent{RunID: r.id, Stage: stage, Message: msg, Content: content})
	}
	return nil
}

func (r *run) execute(ctx context.Context, in Input) error {
	var (
		resume    types.StructuredResume
		job       types.StructuredJob
		gap       types.GapAnalysis
		rewrite   types.BulletRewrite
		rewritten types.StructuredResume
		optimize  types.SkillsOptimize
		original  []string
		decisions []guardrail.Decision
	)

	if err := r.step(ctx, StageStructuringResume, func(ctx context.Context) (msg string, content any, err error) {
		resume, err = r.p.structureResume(ctx, in.Resume)
		return fmt.Sprintf("Structured resume with %d experience entries", len(resume.Experience)), resume, err
	}); err != nil {
		return err
	}

	if err := r.step(ctx, StageStructuringJob, func(ctx context.Context) (msg string, content any, err error) {
		job, err = r.p.structureJob(ctx, in.Job)
		return fmt.Sprintf("Structured job with %d skills", len(job.Skills)), job, err
	}); err != nil {
		return err
	}

	resumeJSON, err := promptJSON(resume)
	if err != nil {
		return err
	}
	jobJSON, err := promptJSON(job)
	if err != nil {
		return err
	}

	if err := r.step(ctx, StageGapAnalysis, func(ctx context.Context) (msg string, content any, err error) {
		gap, err = generate[types.GapAnalysis](ctx, r.p, llm.TaskGapAnalysis, schemas.GapAnalysis,
			map[string]string{"ResumeJSON": resumeJSON, "JobJSON": jobJSON},
			llm.GapAnalysisInput{Resume: resume, Job: job})
		return fmt.Sprintf("Matched %d keywords, %d missing", len(gap.MatchedKeywords), len(gap.MissingKeywords)), nil, err
	}); err != nil {
		return err
	}

	if err := r.step(ctx, StageSkillAllowlistFilter, func(context.Context) (string, any, error) {
		gap = r.p.guard.SanitizeGapAnalysis(gap, resume.Skills)
		return fmt.Sprintf("Suggested skill order has %d resume skills", len(gap.SuggestedSkillOrder)), gap, nil
	}); err != nil {
		return err
	}

	gapJSON, err := promptJSON(gap)
	if err != nil {
		return err
	}

	if err := r.step(ctx, StageBulletRewrite, func(ctx context.Context) (msg string, content any, err error) {
		rewrite, err = generate[types.BulletRewrite](ctx, r.p, llm.TaskBulletRewrite, schemas.BulletRewrite,
			map[string]string{"ResumeJSON": resumeJSON, "JobJSON": jobJSON, "GapJSON": gapJSON},
			llm.BulletRewriteInput{Resume: resume, Job: job, Gap: gap})
		return fmt.Sprintf("Proposed edits for %d experience entries", len(rewrite.Experience)), nil, err
	}); err != nil {
		return err
	}

	if err := r.step(ctx, StageBulletGuardrailApply, func(context.Context) (string, any, error) {
		rewritten, decisions = r.p.guard.ApplyBulletRewrites(resume, rewrite)
		accepted := guardrail.Accepted(decisions)
		return fmt.Sprintf("Applied %d of %d proposed bullet edits", len(accepted), len(decisions)), decisions, nil
	}); err != nil {
		return err
	}

	original = append(make([]string, 0, len(rewritten.Skills)), rewritten.Skills...)
	skillsJSON, err := promptJSON(rewritten.Skills)
	if err != nil {
		return err
	}

	if err := r.step(ctx, StageSkillsOptimize, func(ctx context.Context) (msg string, content any, err error) {
		optimize, err = generate[types.SkillsOptimize](ctx, r.p, llm.TaskSkillsOptimize, schemas.SkillsOptimize,
			map[string]string{"ResumeSkillsJSON": skillsJSON, "JobJSON": jobJSON, "GapJSON": gapJSON},
			llm.SkillsOptimizeInput{ResumeSkills: rewritten.Skills, Job: job, Gap: gap})
		return fmt.Sprintf("Proposed %d primary skills", len(optimize.Primary)), nil, err
	}); err != nil {
		return err
	}

	if err := r.step(ctx, StageSkillsGuardrailFilter, func(context.Context) (string, any, error) {
		optimize = r.p.guard.SanitizeSkillsOptimize(optimize, rewritten.Skills)
		return fmt.Sprintf("Kept %d skills", len(optimize.Ordered())), optimize, nil
	}); err != nil {
		return err
	}

	var result *types.TailoringResult
	if err := r.step(ctx, StageRender, func(context.Context) (string, any, error) {
		res, err := assemble(rewritten, original, gap, rewrite, optimize)
		if err != nil {
			return "", nil, err
		}
		result = res
		return fmt.Sprintf("Rendered %d characters", len(res.RenderedText)), nil, nil
	}); err != nil {
		return err
	}

	if err := r.step(ctx, StageDone, func(context.Context) (string, any, error) {
		return "Tailoring complete", nil, nil
	}); err != nil {
		return err
	}

	r.out.Result = result
	r.out.Resume = resume
	r.out.Job = job
	r.out.Decisions = decisions
	return nil
}

// assemble builds and checks the final result from the guarded pieces.
func assemble(
	rewritten types.StructuredResume,
	originalSkills []string,
	gap types.GapAnalysis,
	rewrite types.BulletRewrite,
	optimize types.SkillsOptimize,
) (*types.TailoringResult, error) {
	tailored := types.TailoredFrom(rewritten, optimize.Ordered())
	result := &types.TailoringResult{
		OriginalSkills: originalSkills,
		Tailored:       tailored,
		RenderedText:   rendering.RenderATSText(tailored),
		GapAnalysis:    gap,
		BulletRewrite:  rewrite,
		SkillsOptimize: optimize,
	}
	result.Normalize()

	if err := schemas.ValidateValue(schemas.TailoringResult, result); err != nil {
		return nil, &SchemaValidationError{Schema: schemas.TailoringResult, Cause: err}
	}
	return result, nil
}

// StructureResume structures one resume without running the rest of the
// pipeline. Parsed, when valid, is returned as is.
func (p *Pipeline) StructureResume(ctx context.Context, in ResumeInput) (types.StructuredResume, error) {
	in.OriginalText = ingestion.NormalizeText(in.OriginalText)
	if in.OriginalText == "" {
		return types.StructuredResume{}, &InputError{Field: "ResumeInput.originalText", Message: "empty after normalization"}
	}
	if p.gen == nil && !hasDocument(in.Parsed) {
		return types.StructuredResume{}, &llm.ProviderError{Reason: llm.ReasonNoProvider, Message: "pipeline has no generator"}
	}
	return p.structureResume(ctx, in)
}

// StructureJob structures one job description.
func (p *Pipeline) StructureJob(ctx context.Context, in JobInput) (types.StructuredJob, error) {
	in.RawText = ingestion.NormalizeText(in.RawText)
	if in.RawText == "" {
		return types.StructuredJob{}, &InputError{Field: "JobInput.rawText", Message: "empty after normalization"}
	}
	if p.gen == nil && !hasDocument(in.Structured) {
		return types.StructuredJob{}, &llm.ProviderError{Reason: llm.ReasonNoProvider, Message: "pipeline has no generator"}
	}
	return p.structureJob(ctx, in)
}

func (p *Pipeline) structureResume(ctx context.Context, in ResumeInput) (types.StructuredResume, error) {
	if hasDocument(in.Parsed) {
		resume, err := schemas.Decode[types.StructuredResume](schemas.StructuredResume, in.Parsed)
		if err == nil {
			return resume, nil
		}
		p.logger.Info("stored resume structure failed validation, structuring again", zap.Error(err))
	}
	if raw := p.cacheGet(ctx, CacheKindResume, p.cacheID(in.Filename, in.OriginalText)); raw != nil {
		resume, err := schemas.Decode[types.StructuredResume](schemas.StructuredResume, raw)
		if err == nil {
			return resume, nil
		}
		p.logger.Warn("cached resume structure failed validation", zap.Error(err))
	}

	resume, err := generate[types.StructuredResume](ctx, p, llm.TaskStructureResume, schemas.StructuredResume,
		map[string]string{"Filename": in.Filename, "ResumeText": in.OriginalText},
		llm.StructureResumeInput{Filename: in.Filename, Text: in.OriginalText})
	if err != nil {
		return types.StructuredResume{}, err
	}
	p.cachePut(ctx, CacheKindResume, p.cacheID(in.Filename, in.OriginalText), resume)
	return resume, nil
}

func (p *Pipeline) structureJob(ctx context.Context, in JobInput) (types.StructuredJob, error) {
	if hasDocument(in.Structured) {
		job, err := schemas.Decode[types.StructuredJob](schemas.StructuredJob, in.Structured)
		if err == nil {
			return job, nil
		}
		p.logger.Info("stored job structure failed validation, structuring again", zap.Error(err))
	}
	if raw := p.cacheGet(ctx, CacheKindJob, p.cacheID(in.SourceURL, in.RawText)); raw != nil {
		job, err := schemas.Decode[types.StructuredJob](schemas.StructuredJob, raw)
		if err == nil {
			return job, nil
		}
		p.logger.Warn("cached job structure failed validation", zap.Error(err))
	}

	job, err := generate[types.StructuredJob](ctx, p, llm.TaskStructureJob, schemas.StructuredJob,
		map[string]string{"SourceURL": in.SourceURL, "JobText": in.RawText},
		llm.StructureJobInput{SourceURL: in.SourceURL, Text: in.RawText})
	if err != nil {
		return types.StructuredJob{}, err
	}
	p.cachePut(ctx, CacheKindJob, p.cacheID(in.SourceURL, in.RawText), job)
	return job, nil
}

// cacheID identifies a structured document: the generator namespace, the
// prompt metadata (filename or source URL) and the normalized text.
func (p *Pipeline) cacheID(source, text string) string {
	return strings.Join([]string{p.cacheNS, source, text}, "\x00")
}

// cacheGet returns nil on a miss or when the cache is unavailable. Cache
// failures never fail a run.
func (p *Pipeline) cacheGet(ctx context.Context, kind, id string) []byte {
	if p.cache == nil {
		return nil
	}
	raw, ok, err := p.cache.Get(ctx, kind, id)
	if err != nil {
		p.logger.Warn("structure cache read failed", zap.String("kind", kind), zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	return raw
}

func (p *Pipeline) cachePut(ctx context.Context, kind, id string, v any) {
	if p.cache == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err == nil {
		err = p.cache.Put(ctx, kind, id, raw)
	}
	if err != nil {
		p.logger.Warn("structure cache write failed", zap.String("kind", kind), zap.Error(err))
	}
}

// generate builds the prompts for task and asks the generator for a T.
func generate[T any](ctx context.Context, p *Pipeline, task llm.Task, schema string, data map[string]string, input any) (T, error) {
	var zero T
	pair, err := prompts.Build(string(task), data)
	if err != nil {
		return zero, fmt.Errorf("failed to build %s prompt: %w", task, err)
	}

	out, err := llm.Generate[T](ctx, p.gen, llm.Request{
		Task:   task,
		System: pair.System,
		User:   pair.User,
		Schema: schema,
		Input:  input,
	})
	p.metrics.ProviderRequest(string(task), err)
	if err != nil {
		var perr *llm.ProviderError
		if errors.As(err, &perr) {
			p.logger.Warn("structured generation failed", zap.String("task", string(task)),
				zap.String("reason", string(perr.Reason)), zap.Error(err))
		}
		return zero, err
	}
	return out, nil
}

func promptJSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode prompt payload: %w", err)
	}
	return string(b), nil
}
