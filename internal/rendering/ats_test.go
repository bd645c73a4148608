package rendering

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullResume() types.TailoredResume {
	r := types.TailoredResume{
		Basics: &types.Basics{
			FullName: "Ada Lovelace",
			Email:    "ada@example.com",
			Location: "London",
			Links:    []string{"https://github.com/ada", "https://ada.dev"},
		},
		Summary: "Backend engineer.",
		Skills:  []string{"Python", "SQL"},
		Experience: []types.Experience{
			{Company: "Acme", Title: "Engineer", Location: "Remote", StartDate: "2020", EndDate: "Present", Bullets: []string{"Built ETL pipelines"}},
			{Company: "Initech", Title: "Analyst", StartDate: "2018"},
		},
		Projects: []types.Project{
			{Name: "ledger", Description: "A toy ledger.", Bullets: []string{"Wrote it in Python"}, Links: []string{"https://ledger.dev"}},
		},
		Education: []types.Education{
			{School: "State University", Degree: "B.S.", StartDate: "2013", EndDate: "2017"},
		},
		Certifications: []string{"AWS Certified Cloud Practitioner"},
	}
	r.Normalize()
	return r
}

func TestRenderATSText_AllSections(t *testing.T) {
	want := `Ada Lovelace
ada@example.com | London
https://github.com/ada | https://ada.dev

SUMMARY
Backend engineer.

SKILLS
Python, SQL

EXPERIENCE
Engineer — Acme | Remote | 2020–Present
- Built ETL pipelines

Analyst — Initech | 2018

PROJECTS
ledger
A toy ledger.
- Wrote it in Python
https://ledger.dev

EDUCATION
State University | B.S. | 2013 | 2017

CERTIFICATIONS
- AWS Certified Cloud Practitioner
`
	assert.Equal(t, want, RenderATSText(fullResume()))
}

func TestRenderATSText_OmitsEmptySections(t *testing.T) {
	r := types.TailoredResume{
		Basics: &types.Basics{FullName: "Ada Lovelace"},
		Skills: []string{"Python"},
	}
	r.Normalize()

	got := RenderATSText(r)

	assert.Equal(t, "Ada Lovelace\n\nSKILLS\nPython\n", got)
	for _, h := range []string{HeadingSummary, HeadingExperience, HeadingProjects, HeadingEducation, HeadingCertifications} {
		assert.NotContains(t, got, h)
	}
}

func TestRenderATSText_NoBasics(t *testing.T) {
	r := types.TailoredResume{Summary: "Engineer."}
	r.Normalize()

	assert.Equal(t, "SUMMARY\nEngineer.\n", RenderATSText(r))
}

func TestRenderATSText_Deterministic(t *testing.T) {
	r := fullResume()
	assert.Equal(t, RenderATSText(r), RenderATSText(r))
}

func TestDateRange(t *testing.T) {
	assert.Equal(t, "2020–2021", dateRange("2020", "2021"))
	assert.Equal(t, "2020", dateRange("2020", ""))
	assert.Equal(t, "2021", dateRange("", "2021"))
	assert.Equal(t, "", dateRange("", ""))
}

func TestTextExporter(t *testing.T) {
	doc, err := TextExporter{}.Export(context.Background(), "Ada\n")
	require.NoError(t, err)
	assert.Equal(t, []byte("Ada\n"), doc)

	_, err = TextExporter{}.Export(context.Background(), "  ")
	var exportErr *ExportError
	require.ErrorAs(t, err, &exportErr)
	assert.Equal(t, "txt", exportErr.Format)
}

func TestExportToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "resume.txt")

	require.NoError(t, ExportToFile(context.Background(), TextExporter{}, "Ada\n", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Ada\n", string(data))
}
