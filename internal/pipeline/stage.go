package pipeline

import (
	"fmt"
	"time"
)

// Stage is one step of a tailoring run. Stages only ever move forward.
type Stage int

// Stages in execution order.
const (
	StageStructuringResume Stage = iota
	StageStructuringJob
	StageGapAnalysis
	StageSkillAllowlistFilter
	StageBulletRewrite
	StageBulletGuardrailApply
	StageSkillsOptimize
	StageSkillsGuardrailFilter
	StageRender
	StageDone
)

var stageNames = [...]string{
	StageStructuringResume:     "STRUCTURING_RESUME",
	StageStructuringJob:        "STRUCTURING_JOB",
	StageGapAnalysis:           "GAP_ANALYSIS",
	StageSkillAllowlistFilter:  "SKILL_ALLOWLIST_FILTER",
	StageBulletRewrite:         "BULLET_REWRITE",
	StageBulletGuardrailApply:  "BULLET_GUARDRAIL_APPLY",
	StageSkillsOptimize:        "SKILLS_OPTIMIZE",
	StageSkillsGuardrailFilter: "SKILLS_GUARDRAIL_FILTER",
	StageRender:                "RENDER",
	StageDone:                  "DONE",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// MarshalText encodes the stage by name.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a stage name.
func (s *Stage) UnmarshalText(text []byte) error {
	for i, name := range stageNames {
		if name == string(text) {
			*s = Stage(i)
			return nil
		}
	}
	return fmt.Errorf("unknown stage %q", text)
}

// StageTiming is the wall time spent in one stage.
type StageTiming struct {
	Stage    Stage         `json:"stage"`
	Duration time.Duration `json:"duration"`
}

// tracker enforces the forward-only stage order of a single run.
type tracker struct {
	next Stage
}

// advance moves to s, which must be the stage directly after the last one.
func (t *tracker) advance(s Stage) error {
	if s != t.next {
		return fmt.Errorf("invalid stage transition to %s (expected %s)", s, t.next)
	}
	t.next = s + 1
	return nil
}
