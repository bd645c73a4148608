// Package rendering turns a tailored resume into plain ATS-friendly text and
// hands that text to export collaborators.
package rendering

import (
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

// Section headings, in output order.
const (
	HeadingSummary        = "SUMMARY"
	HeadingSkills         = "SKILLS"
	HeadingExperience     = "EXPERIENCE"
	HeadingProjects       = "PROJECTS"
	HeadingEducation      = "EDUCATION"
	HeadingCertifications = "CERTIFICATIONS"
)

// lineJoin joins the non-blank parts with " | ".
func lineJoin(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " | ")
}

func dateRange(start, end string) string {
	switch {
	case start != "" && end != "":
		return start + "–" + end
	case start != "":
		return start
	default:
		return end
	}
}

// RenderATSText renders the resume deterministically. Sections whose lists
// are empty are left out. The result ends with exactly one newline.
func RenderATSText(r types.TailoredResume) string {
	var lines []string
	push := func(s ...string) { lines = append(lines, s...) }

	if b := r.Basics; b != nil {
		if b.FullName != "" {
			push(b.FullName)
		}
		if contact := lineJoin(b.Email, b.Phone, b.Location); contact != "" {
			push(contact)
		}
		if len(b.Links) > 0 {
			push(strings.Join(b.Links, " | "))
		}
	}
	push("")

	if r.Summary != "" {
		push(HeadingSummary, r.Summary, "")
	}

	if len(r.Skills) > 0 {
		push(HeadingSkills, strings.Join(r.Skills, ", "), "")
	}

	if len(r.Experience) > 0 {
		push(HeadingExperience)
		for _, e := range r.Experience {
			push(lineJoin(
				e.Title+" — "+e.Company,
				lineJoin(e.Location, dateRange(e.StartDate, e.EndDate)),
			))
			for _, b := range e.Bullets {
				push("- " + b)
			}
			push("")
		}
	}

	if len(r.Projects) > 0 {
		push(HeadingProjects)
		for _, p := range r.Projects {
			push(p.Name)
			if p.Description != "" {
				push(p.Description)
			}
			for _, b := range p.Bullets {
				push("- " + b)
			}
			if len(p.Links) > 0 {
				push(strings.Join(p.Links, " | "))
			}
			push("")
		}
	}

	if len(r.Education) > 0 {
		push(HeadingEducation)
		for _, e := range r.Education {
			push(lineJoin(e.School, e.Degree, e.Field, lineJoin(e.StartDate, e.EndDate)))
		}
		push("")
	}

	if len(r.Certifications) > 0 {
		push(HeadingCertifications)
		for _, c := range r.Certifications {
			push("- " + c)
		}
		push("")
	}

	return strings.TrimSpace(strings.Join(lines, "\n")) + "\n"
}
