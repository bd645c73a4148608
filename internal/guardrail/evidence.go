// Package guardrail decides which generated edits may touch a resume. Bullet
// edits must not introduce numbers, acronyms, links or technology names the
// resume cannot back up, and skill lists are closed over the resume's own
// skills. Rejections are silent drops, never errors.
package guardrail

import (
	"strings"

	"github.com/jonathan/resume-tailor/internal/skills"
	"github.com/jonathan/resume-tailor/internal/tokens"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Evidence concatenates every field of the resume that can vouch for a token.
func Evidence(r types.StructuredResume) string {
	var parts []string
	add := func(s ...string) {
		for _, v := range s {
			if v != "" {
				parts = append(parts, v)
			}
		}
	}

	add(r.Summary)
	add(strings.Join(r.Skills, "\n"))
	add(strings.Join(r.Certifications, "\n"))

	if b := r.Basics; b != nil {
		add(strings.Join(b.Links, "\n"), b.FullName, b.Email, b.Phone, b.Location)
	}
	for _, e := range r.Experience {
		add(e.Company, e.Title, strings.Join(e.Bullets, "\n"))
	}
	for _, p := range r.Projects {
		add(p.Name, p.Description, strings.Join(p.Bullets, "\n"), strings.Join(p.Links, "\n"))
	}
	for _, e := range r.Education {
		add(e.School, e.Degree, e.Field)
	}
	return strings.Join(parts, "\n")
}

// AllowSets are the tokens a bullet rewrite may use beyond those already in
// the bullet it replaces.
type AllowSets struct {
	Acronyms map[string]struct{}
	URLs     map[string]struct{}
	Tech     map[string]struct{}
}

// NewAllowSets extracts the allow sets from the resume's evidence text.
func NewAllowSets(r types.StructuredResume) AllowSets {
	return allowSetsFor(Evidence(r))
}

func allowSetsFor(text string) AllowSets {
	return AllowSets{
		Acronyms: tokens.Set(tokens.Acronyms(text), nil),
		URLs:     tokens.Set(tokens.URLs(text), tokens.URLKey),
		Tech:     tokens.Set(tokens.TechLike(text), skills.NormalizeKey),
	}
}
