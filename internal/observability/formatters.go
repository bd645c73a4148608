// Package observability prints human-readable summaries of tailoring stages
// for the CLI's verbose mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-tailor/internal/guardrail"
	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	boxWidth       = 60
	maxItemsToShow = 5
)

// Printer writes boxed summaries to out.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a Printer that writes to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

//nolint:errcheck // verbose output only
func (p *Printer) printBox(title, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, boxWidth-4), boxWidth-4))
	}
	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// writeList writes up to limit items under label, then a count of the rest.
func writeList(sb *strings.Builder, label string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(label + ":\n")
	for _, item := range items[:min(len(items), limit)] {
		fmt.Fprintf(sb, "  • %s\n", item)
	}
	if len(items) > limit {
		fmt.Fprintf(sb, "  ... and %d more\n", len(items)-limit)
	}
	sb.WriteString("\n")
}

func finish(sb *strings.Builder) string {
	return strings.TrimRight(sb.String(), "\n")
}

// PrintStructuredResume summarizes a structured resume.
func (p *Printer) PrintStructuredResume(r *types.StructuredResume) {
	if r == nil {
		return
	}
	var sb strings.Builder
	if r.Basics != nil && r.Basics.FullName != "" {
		fmt.Fprintf(&sb, "Name:        %s\n", r.Basics.FullName)
	}
	fmt.Fprintf(&sb, "Experience:  %d entries\n", len(r.Experience))
	fmt.Fprintf(&sb, "Projects:    %d\n", len(r.Projects))
	fmt.Fprintf(&sb, "Education:   %d\n\n", len(r.Education))
	writeList(&sb, "Skills", r.Skills, maxItemsToShow)

	p.printBox("STRUCTURED RESUME", finish(&sb))
}

// PrintStructuredJob summarizes a structured job.
func (p *Printer) PrintStructuredJob(j *types.StructuredJob) {
	if j == nil {
		return
	}
	var sb strings.Builder
	if j.Title != "" {
		fmt.Fprintf(&sb, "Role:     %s\n", j.Title)
	}
	if j.Company != "" {
		fmt.Fprintf(&sb, "Company:  %s\n", j.Company)
	}
	if sb.Len() > 0 {
		sb.WriteString("\n")
	}
	writeList(&sb, "Requirements", j.Requirements, maxItemsToShow)
	writeList(&sb, "Skills", j.Skills, maxItemsToShow)
	if sb.Len() == 0 {
		sb.WriteString("(no details extracted)")
	}

	p.printBox("STRUCTURED JOB", finish(&sb))
}

// PrintGapAnalysis shows matched and missing keywords.
func (p *Printer) PrintGapAnalysis(g *types.GapAnalysis) {
	if g == nil {
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Matched: %d  Missing: %d\n\n", len(g.MatchedKeywords), len(g.MissingKeywords))
	writeList(&sb, "Matched", g.MatchedKeywords, maxItemsToShow)
	writeList(&sb, "Missing", g.MissingKeywords, maxItemsToShow)
	writeList(&sb, "Risks", g.Risks, 3)

	p.printBox("GAP ANALYSIS", finish(&sb))
}

// PrintDecisions lists applied bullet edits and the reason for each drop.
func (p *Printer) PrintDecisions(decisions []guardrail.Decision) {
	if len(decisions) == 0 {
		return
	}
	accepted := len(guardrail.Accepted(decisions))
	var sb strings.Builder
	fmt.Fprintf(&sb, "Applied: %d  Dropped: %d\n\n", accepted, len(decisions)-accepted)

	for i, d := range decisions {
		if i == maxItemsToShow*2 {
			fmt.Fprintf(&sb, "... and %d more\n", len(decisions)-i)
			break
		}
		status := "✓"
		if !d.Accepted {
			status = "✗ " + string(d.Reason)
			if d.Offending != "" {
				status += " (" + d.Offending + ")"
			}
		}
		fmt.Fprintf(&sb, "%s #%d %s\n", d.Company, d.Index, status)
		fmt.Fprintf(&sb, "    %s\n", d.After)
	}

	p.printBox("BULLET EDITS", finish(&sb))
}

// PrintSkills shows the final skill tiers against the original list.
func (p *Printer) PrintSkills(original []string, opt *types.SkillsOptimize) {
	if opt == nil {
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Original skills: %d  Tailored: %d\n\n", len(original), len(opt.Ordered()))
	writeList(&sb, "Primary", opt.Primary, maxItemsToShow*2)
	writeList(&sb, "Secondary", opt.Secondary, maxItemsToShow)
	writeList(&sb, "Other", opt.Other, maxItemsToShow)

	p.printBox("SKILLS", finish(&sb))
}
