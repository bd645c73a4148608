package guardrail

import (
	"github.com/jonathan/resume-tailor/internal/skills"
	"github.com/jonathan/resume-tailor/internal/types"
	"go.uber.org/zap"
)

// Fallback sizes used when a sanitized list comes back empty.
const (
	FallbackSkillOrderSize = 30
	FallbackPrimarySize    = 12
)

// Rejection kinds passed to a Recorder.
const (
	KindBullet = "bullet"
	KindSkill  = "skill"
)

// Recorder receives a count of every dropped item.
type Recorder interface {
	GuardrailRejection(kind, reason string)
}

// Engine applies the guardrail rules and reports what it dropped.
type Engine struct {
	logger   *zap.Logger
	recorder Recorder
}

// New creates an Engine. Both arguments may be nil.
func New(logger *zap.Logger, recorder Recorder) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger, recorder: recorder}
}

// SanitizeGapAnalysis restricts SuggestedSkillOrder to the resume's skills.
// When nothing survives, the first 30 distinct resume skills are used.
func (e *Engine) SanitizeGapAnalysis(gap types.GapAnalysis, resumeSkills []string) types.GapAnalysis {
	out := gap
	allow := skills.BuildAllowMap(resumeSkills)

	filtered := skills.FilterToAllowed(gap.SuggestedSkillOrder, allow)
	e.recordSkills("suggestedSkillOrder", gap.SuggestedSkillOrder, allow)

	if len(filtered) == 0 {
		filtered = skills.FirstN(resumeSkills, FallbackSkillOrderSize)
		e.logger.Debug("suggested skill order empty after filtering, using resume skills",
			zap.Int("skills", len(filtered)))
	}
	out.SuggestedSkillOrder = filtered
	out.Normalize()
	return out
}

// SanitizeSkillsOptimize restricts all three tiers to currentSkills and
// removes cross-tier duplicates. When primary comes back empty, the first 12
// distinct current skills are used.
func (e *Engine) SanitizeSkillsOptimize(opt types.SkillsOptimize, currentSkills []string) types.SkillsOptimize {
	allow := skills.BuildAllowMap(currentSkills)
	e.recordSkills("primary", opt.Primary, allow)
	e.recordSkills("secondary", opt.Secondary, allow)
	e.recordSkills("other", opt.Other, allow)

	out := opt
	out.Primary, out.Secondary, out.Other = skills.Partition(opt.Primary, opt.Secondary, opt.Other, allow)
	if len(out.Primary) == 0 {
		out.Primary = skills.FirstN(currentSkills, FallbackPrimarySize)
		// keep tiers disjoint after the fallback
		_, out.Secondary, out.Other = skills.Partition(out.Primary, out.Secondary, out.Other, allow)
		e.logger.Debug("primary skills empty after filtering, using current skills",
			zap.Int("skills", len(out.Primary)))
	}
	out.Normalize()
	return out
}

func (e *Engine) recordBullet(d Decision) {
	if d.Accepted {
		return
	}
	e.logger.Debug("bullet edit dropped",
		zap.String("company", d.Company),
		zap.String("title", d.Title),
		zap.Int("index", d.Index),
		zap.String("reason", string(d.Reason)),
		zap.String("offending", d.Offending))
	if e.recorder != nil {
		e.recorder.GuardrailRejection(KindBullet, string(d.Reason))
	}
}

func (e *Engine) recordSkills(field string, candidates []string, allow skills.AllowMap) {
	for _, c := range candidates {
		if allow.Contains(c) {
			continue
		}
		e.logger.Debug("skill dropped", zap.String("field", field), zap.String("skill", c))
		if e.recorder != nil {
			e.recorder.GuardrailRejection(KindSkill, "not-in-resume")
		}
	}
}
