package observability

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jonathan/resume-tailor/internal/guardrail"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintStructuredResume(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintStructuredResume(&types.StructuredResume{
		Basics:     &types.Basics{FullName: "Ada Lovelace"},
		Skills:     []string{"Python", "SQL", "Docker", "Go", "Rust", "Java", "C#"},
		Experience: []types.Experience{{Company: "Acme", Title: "Engineer"}},
	})
	output := buf.String()

	assert.Contains(t, output, "STRUCTURED RESUME")
	assert.Contains(t, output, "Ada Lovelace")
	assert.Contains(t, output, "1 entries")
	assert.Contains(t, output, "Python")
	assert.Contains(t, output, "... and 2 more")
	assert.NotContains(t, output, "Java")
}

func TestPrint_NilIsSilent(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintStructuredResume(nil)
	p.PrintStructuredJob(nil)
	p.PrintGapAnalysis(nil)
	p.PrintDecisions(nil)
	p.PrintSkills(nil, nil)

	assert.Empty(t, buf.String())
}

func TestPrintStructuredJob(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintStructuredJob(&types.StructuredJob{
		Title:        "Data Engineer",
		Company:      "Acme",
		Requirements: []string{"5 years of Python"},
		Skills:       []string{"Python", "AWS"},
	})
	output := buf.String()

	assert.Contains(t, output, "STRUCTURED JOB")
	assert.Contains(t, output, "Data Engineer")
	assert.Contains(t, output, "5 years of Python")
	assert.Contains(t, output, "AWS")
}

func TestPrintGapAnalysis(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintGapAnalysis(&types.GapAnalysis{
		MatchedKeywords: []string{"Python"},
		MissingKeywords: []string{"AWS"},
	})

	assert.Contains(t, buf.String(), "Matched: 1  Missing: 1")
	assert.Contains(t, buf.String(), "AWS")
}

func TestPrintDecisions(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintDecisions([]guardrail.Decision{
		{Company: "Acme", Index: 0, After: "Built ETL pipelines in Python.", Accepted: true},
		{Company: "Acme", Index: 1, After: "Cut runtime 50% on AWS", Reason: guardrail.ReasonNumbersChanged},
	})
	output := buf.String()

	assert.Contains(t, output, "Applied: 1  Dropped: 1")
	assert.Contains(t, output, "Acme #0 ✓")
	assert.Contains(t, output, "Acme #1 ✗ numbers-changed")
}

func TestPrintSkills(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSkills([]string{"SQL", "Python"}, &types.SkillsOptimize{
		Primary:   []string{"Python"},
		Secondary: []string{"SQL"},
	})

	assert.Contains(t, buf.String(), "Original skills: 2  Tailored: 2")
	assert.Contains(t, buf.String(), "Primary")
	assert.NotContains(t, buf.String(), "Other")
}

func TestPrintBox_TruncatesAndAligns(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("é", 100)+"\nshort")

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), line)
	}
	assert.Contains(t, buf.String(), "...")
}
