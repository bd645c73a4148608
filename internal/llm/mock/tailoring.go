package mock

import (
	"fmt"
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

// GapAnalysis compares job keywords against the resume's skills by
// case-insensitive equality.
func GapAnalysis(resume types.StructuredResume, job types.StructuredJob) types.GapAnalysis {
	resumeSkills := lowerSet(resume.Skills)
	jobKeywords := uniqueTrimmed(append(append([]string{}, job.Skills...), job.Keywords...))

	matched := make([]string, 0)
	missing := make([]string, 0)
	for _, k := range jobKeywords {
		if _, ok := resumeSkills[strings.ToLower(k)]; ok {
			matched = append(matched, k)
		} else {
			missing = append(missing, k)
		}
	}

	strengths := []string{"Resume does not clearly surface job keywords in the skills section."}
	if len(matched) > 0 {
		strengths = []string{fmt.Sprintf("Matches %d job keywords: %s.", len(matched), strings.Join(firstN(matched, 8), ", "))}
	}

	risks := []string{"No obvious keyword gaps detected."}
	if len(missing) > 0 {
		risks = []string{fmt.Sprintf("Missing/unclear keywords: %s.", strings.Join(firstN(missing, 10), ", "))}
	}

	points := []string{"Add a 1–2 line summary aligned to the role."}
	if len(matched) > 0 {
		points = []string{fmt.Sprintf("Highlight strengths in %s.", strings.Join(firstN(matched, 3), ", "))}
	}
	if len(missing) > 0 {
		points = append(points, fmt.Sprintf("If true, add evidence for %s.", strings.Join(firstN(missing, 3), ", ")))
	}
	points = append(points, "Quantify impact (latency, conversion, cost, reliability) where possible.")

	order := append(append(append([]string{}, matched...), missing...), resume.Skills...)

	gap := types.GapAnalysis{
		MatchedKeywords:        matched,
		MissingKeywords:        missing,
		Strengths:              strengths,
		Risks:                  risks,
		SuggestedSummaryPoints: uniqueTrimmed(points),
		SuggestedSkillOrder:    firstN(uniqueTrimmed(order), 30),
	}
	gap.Normalize()
	return gap
}

// BulletRewrite proposes an edit for the first two bullets of every entry,
// appending up to three gap keywords. Whatever the guardrail cannot trace
// back to the resume is dropped later.
func BulletRewrite(resume types.StructuredResume, gap types.GapAnalysis) types.BulletRewrite {
	highlight := firstN(uniqueTrimmed(append(append([]string{}, gap.MatchedKeywords...), gap.MissingKeywords...)), 3)

	addition := ""
	rationale := "Improved clarity and impact with a tighter phrasing."
	if len(highlight) > 0 {
		addition = " (" + strings.Join(highlight, ", ") + ")"
		rationale = fmt.Sprintf("Surfaced relevant keywords: %s.", strings.Join(highlight, ", "))
	}

	out := types.BulletRewrite{
		Experience: make([]types.ExperienceRewrite, 0, len(resume.Experience)),
		Notes:      "Heuristic rewrite preview; no text-generation provider is configured.",
	}
	for _, exp := range resume.Experience {
		edits := make([]types.BulletEdit, 0, 2)
		for i, before := range firstN(exp.Bullets, 2) {
			after := before
			if !strings.HasSuffix(after, ".") {
				after += "."
			}
			edits = append(edits, types.BulletEdit{
				Index:     i,
				Before:    before,
				After:     after + addition,
				Rationale: rationale,
			})
		}
		out.Experience = append(out.Experience, types.ExperienceRewrite{
			Company:          exp.Company,
			Title:            exp.Title,
			RewrittenBullets: edits,
		})
	}
	return out
}

// SkillsOptimize puts job skills first, remaining resume skills second, and
// gap keywords found in neither list last.
func SkillsOptimize(resumeSkills []string, job types.StructuredJob, gap types.GapAnalysis) types.SkillsOptimize {
	resume := uniqueTrimmed(resumeSkills)
	jobSkills := uniqueTrimmed(job.Skills)
	resumeSet := lowerSet(resume)
	jobSet := lowerSet(jobSkills)

	primary := firstN(jobSkills, 12)

	secondary := make([]string, 0)
	for _, s := range resume {
		if _, ok := jobSet[strings.ToLower(s)]; !ok {
			secondary = append(secondary, s)
		}
	}
	secondary = firstN(secondary, 12)

	other := make([]string, 0)
	for _, s := range uniqueTrimmed(append(append([]string{}, gap.MatchedKeywords...), gap.MissingKeywords...)) {
		key := strings.ToLower(s)
		_, inResume := resumeSet[key]
		_, inJob := jobSet[key]
		if !inResume && !inJob {
			other = append(other, s)
		}
	}
	other = firstN(other, 12)

	var rationale []string
	if len(primary) > 0 {
		rationale = append(rationale, fmt.Sprintf("Prioritized job-relevant skills first: %s.", strings.Join(firstN(primary, 5), ", ")))
	}
	if len(secondary) > 0 {
		rationale = append(rationale, "Kept additional resume skills as secondary.")
	}
	rationale = append(rationale, "Order skills by relevance to the target job description.")

	return types.SkillsOptimize{
		Primary:   primary,
		Secondary: secondary,
		Other:     other,
		Rationale: rationale,
		Notes:     "Heuristic ordering; no text-generation provider is configured.",
	}
}
