package guardrail

import (
	"fmt"
	"testing"

	"github.com/jonathan/resume-tailor/internal/skills"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestSanitizeGapAnalysis_Closure(t *testing.T) {
	rec := &recorderStub{}
	eng := New(nil, rec)
	gap := types.GapAnalysis{
		MatchedKeywords:     []string{"Python"},
		MissingKeywords:     []string{"AWS"},
		SuggestedSkillOrder: []string{"python", "AWS", "SQL", "Python"},
	}

	got := eng.SanitizeGapAnalysis(gap, []string{"Python", "SQL"})

	assert.Equal(t, []string{"Python", "SQL"}, got.SuggestedSkillOrder)
	assert.Equal(t, []string{"AWS"}, got.MissingKeywords, "other fields pass through")
	assert.Equal(t, []string{"skill:not-in-resume"}, rec.got)
}

func TestSanitizeGapAnalysis_FallbackFirst30(t *testing.T) {
	eng := New(nil, nil)
	resumeSkills := make([]string, 0, 40)
	for i := range 40 {
		resumeSkills = append(resumeSkills, fmt.Sprintf("Skill%d", i))
	}
	resumeSkills = append([]string{"Skill0"}, resumeSkills...)

	got := eng.SanitizeGapAnalysis(types.GapAnalysis{SuggestedSkillOrder: []string{"Rust"}}, resumeSkills)

	assert.Len(t, got.SuggestedSkillOrder, FallbackSkillOrderSize)
	assert.Equal(t, "Skill0", got.SuggestedSkillOrder[0])
	assert.Equal(t, "Skill29", got.SuggestedSkillOrder[29])
}

func TestSanitizeSkillsOptimize_NoDuplicatesAcrossTiers(t *testing.T) {
	eng := New(nil, nil)
	opt := types.SkillsOptimize{
		Primary:   []string{"Python", "AWS"},
		Secondary: []string{"python", "SQL", "Docker"},
		Other:     []string{"SQL", "Go", "docker"},
		Rationale: []string{"kept"},
	}

	got := eng.SanitizeSkillsOptimize(opt, []string{"Python", "SQL", "Docker"})

	assert.Equal(t, []string{"Python"}, got.Primary)
	assert.Equal(t, []string{"SQL", "Docker"}, got.Secondary)
	assert.Empty(t, got.Other)
	assert.Equal(t, []string{"kept"}, got.Rationale)

	allow := skills.BuildAllowMap([]string{"Python", "SQL", "Docker"})
	for _, s := range got.Ordered() {
		assert.True(t, allow.Contains(s), s)
	}
}

func TestSanitizeSkillsOptimize_PrimaryFallback(t *testing.T) {
	eng := New(nil, nil)
	current := []string{"Python", "SQL", "Docker"}

	got := eng.SanitizeSkillsOptimize(types.SkillsOptimize{
		Primary:   []string{"Rust"},
		Secondary: []string{"SQL"},
		Other:     []string{"Docker"},
	}, current)

	assert.Equal(t, current, got.Primary)
	assert.Empty(t, got.Secondary)
	assert.Empty(t, got.Other)
}

func TestSanitizeSkillsOptimize_EmptyCurrentSkills(t *testing.T) {
	eng := New(nil, nil)

	got := eng.SanitizeSkillsOptimize(types.SkillsOptimize{Primary: []string{"Go"}}, nil)

	assert.NotNil(t, got.Primary)
	assert.Empty(t, got.Primary)
	assert.Empty(t, got.Ordered())
}
