package mock

import (
	"regexp"
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

var (
	labelledFieldRe     = regexp.MustCompile(`(?i)^(job title|title|position|role|company|employer|location|employment type|job type)\s*:\s*(.+)$`)
	requirementsHeading = regexp.MustCompile(`(?i)^(requirements|qualifications|minimum qualifications|preferred qualifications|what you('ll)? bring|must have|nice to have)\s*:?$`)
	otherJobHeading     = regexp.MustCompile(`(?i)^(responsibilities|what you('ll)? do|about the role|about you|the role|duties)\s*:?$`)
)

// StructureJob parses job text with the keyword dictionary and line
// heuristics. Bullets under a requirements-style heading become
// requirements; all other bullets become responsibilities.
func StructureJob(text string) types.StructuredJob {
	keywords := extractKeywords(text)

	job := types.StructuredJob{
		Skills:   keywords,
		Keywords: uniqueTrimmed(keywords),
	}

	inRequirements := false
	var responsibilities, requirements []string
	for _, line := range splitLines(text) {
		if m := labelledFieldRe.FindStringSubmatch(line); m != nil {
			setJobField(&job, strings.ToLower(m[1]), strings.TrimSpace(m[2]))
			continue
		}
		switch {
		case requirementsHeading.MatchString(line):
			inRequirements = true
			continue
		case otherJobHeading.MatchString(line):
			inRequirements = false
			continue
		}

		bullet, ok := bulletText(line)
		if !ok {
			continue
		}
		if inRequirements {
			requirements = append(requirements, bullet)
		} else {
			responsibilities = append(responsibilities, bullet)
		}
	}

	job.Responsibilities = uniqueTrimmed(responsibilities)
	job.Requirements = uniqueTrimmed(requirements)
	job.Normalize()
	return job
}

func setJobField(job *types.StructuredJob, label, value string) {
	switch label {
	case "job title", "title", "position", "role":
		if job.Title == "" {
			job.Title = value
		}
	case "company", "employer":
		if job.Company == "" {
			job.Company = value
		}
	case "location":
		if job.Location == "" {
			job.Location = value
		}
	default:
		if job.EmploymentType == "" {
			job.EmploymentType = value
		}
	}
}
