//nolint:revive // types is a standard Go package name pattern
package types

// StructuredJob is the parsed form of a job description.
type StructuredJob struct {
	Title            string   `json:"title,omitempty"`
	Company          string   `json:"company,omitempty"`
	Location         string   `json:"location,omitempty"`
	EmploymentType   string   `json:"employmentType,omitempty"`
	Summary          string   `json:"summary,omitempty"`
	Responsibilities []string `json:"responsibilities"`
	Requirements     []string `json:"requirements"`
	Skills           []string `json:"skills"`
	Keywords         []string `json:"keywords"`
}

// Normalize replaces nil list fields with empty slices.
func (j *StructuredJob) Normalize() {
	j.Responsibilities = nonNil(j.Responsibilities)
	j.Requirements = nonNil(j.Requirements)
	j.Skills = nonNil(j.Skills)
	j.Keywords = nonNil(j.Keywords)
}
