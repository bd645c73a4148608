//nolint:revive // types is a standard Go package name pattern
package types

// GapAnalysis compares a resume against a job.
type GapAnalysis struct {
	MatchedKeywords        []string `json:"matchedKeywords"`
	MissingKeywords        []string `json:"missingKeywords"`
	Strengths              []string `json:"strengths"`
	Risks                  []string `json:"risks"`
	SuggestedSummaryPoints []string `json:"suggestedSummaryPoints"`
	SuggestedSkillOrder    []string `json:"suggestedSkillOrder"`
}

// Normalize replaces nil list fields with empty slices.
func (g *GapAnalysis) Normalize() {
	g.MatchedKeywords = nonNil(g.MatchedKeywords)
	g.MissingKeywords = nonNil(g.MissingKeywords)
	g.Strengths = nonNil(g.Strengths)
	g.Risks = nonNil(g.Risks)
	g.SuggestedSummaryPoints = nonNil(g.SuggestedSummaryPoints)
	g.SuggestedSkillOrder = nonNil(g.SuggestedSkillOrder)
}

// BulletEdit is one proposed bullet change. Index is 0-based into the
// matching experience entry's bullets.
type BulletEdit struct {
	Index     int    `json:"index"`
	Before    string `json:"before"`
	After     string `json:"after"`
	Rationale string `json:"rationale"`
}

// ExperienceRewrite groups proposed edits for the experience entry
// identified by Company and Title.
type ExperienceRewrite struct {
	Company          string       `json:"company"`
	Title            string       `json:"title"`
	RewrittenBullets []BulletEdit `json:"rewrittenBullets"`
}

// BulletRewrite is the full set of proposed bullet edits. It is kept
// verbatim in results as an audit trail, including edits the guardrail
// dropped.
type BulletRewrite struct {
	Experience []ExperienceRewrite `json:"experience"`
	Notes      string              `json:"notes,omitempty"`
}

// Normalize replaces nil list fields with empty slices.
func (b *BulletRewrite) Normalize() {
	b.Experience = nonNilSlice(b.Experience)
	for i := range b.Experience {
		b.Experience[i].RewrittenBullets = nonNilSlice(b.Experience[i].RewrittenBullets)
	}
}

// SkillsOptimize is a proposed skill ordering in three tiers.
type SkillsOptimize struct {
	Primary   []string `json:"primary"`
	Secondary []string `json:"secondary"`
	Other     []string `json:"other"`
	Rationale []string `json:"rationale"`
	Notes     string   `json:"notes,omitempty"`
}

// Normalize replaces nil list fields with empty slices.
func (s *SkillsOptimize) Normalize() {
	s.Primary = nonNil(s.Primary)
	s.Secondary = nonNil(s.Secondary)
	s.Other = nonNil(s.Other)
	s.Rationale = nonNil(s.Rationale)
}

// Ordered returns primary, secondary and other concatenated.
func (s SkillsOptimize) Ordered() []string {
	out := make([]string, 0, len(s.Primary)+len(s.Secondary)+len(s.Other))
	out = append(out, s.Primary...)
	out = append(out, s.Secondary...)
	return append(out, s.Other...)
}

// TailoringResult is the composite output of one pipeline run.
type TailoringResult struct {
	OriginalSkills []string       `json:"originalSkills"`
	Tailored       TailoredResume `json:"tailored"`
	RenderedText   string         `json:"renderedText"`
	GapAnalysis    GapAnalysis    `json:"gapAnalysis"`
	BulletRewrite  BulletRewrite  `json:"bulletRewrite"`
	SkillsOptimize SkillsOptimize `json:"skillsOptimize"`
}

// Normalize replaces nil list fields with empty slices throughout the result.
func (t *TailoringResult) Normalize() {
	t.OriginalSkills = nonNil(t.OriginalSkills)
	t.Tailored.Normalize()
	t.GapAnalysis.Normalize()
	t.BulletRewrite.Normalize()
	t.SkillsOptimize.Normalize()
}
