// Package types provides type definitions for structured data used throughout the resume-tailor system.
package types

// Basics holds the contact block at the top of a resume.
type Basics struct {
	FullName string   `json:"fullName,omitempty"`
	Email    string   `json:"email,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	Location string   `json:"location,omitempty"`
	Links    []string `json:"links,omitempty"`
}

// Experience is a single employment entry.
type Experience struct {
	Company   string   `json:"company"`
	Title     string   `json:"title"`
	StartDate string   `json:"startDate,omitempty"`
	EndDate   string   `json:"endDate,omitempty"`
	Location  string   `json:"location,omitempty"`
	Bullets   []string `json:"bullets"`
}

// Education is a single education entry.
type Education struct {
	School    string `json:"school"`
	Degree    string `json:"degree,omitempty"`
	Field     string `json:"field,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

// Project is a single project entry.
type Project struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Bullets     []string `json:"bullets"`
	Links       []string `json:"links,omitempty"`
}

// StructuredResume is the parsed form of a resume.
type StructuredResume struct {
	Basics         *Basics      `json:"basics,omitempty"`
	Summary        string       `json:"summary,omitempty"`
	Skills         []string     `json:"skills"`
	Experience     []Experience `json:"experience"`
	Education      []Education  `json:"education"`
	Projects       []Project    `json:"projects"`
	Certifications []string     `json:"certifications"`
}

// TailoredResume has the same shape as StructuredResume. Its skills are the
// guardrail-approved ordering and its bullets carry only accepted edits.
type TailoredResume StructuredResume

// Normalize replaces nil list fields with empty slices so that serialized
// documents never carry null or missing lists.
func (r *StructuredResume) Normalize() {
	r.Skills = nonNil(r.Skills)
	r.Experience = nonNilSlice(r.Experience)
	r.Education = nonNilSlice(r.Education)
	r.Projects = nonNilSlice(r.Projects)
	r.Certifications = nonNil(r.Certifications)
	for i := range r.Experience {
		r.Experience[i].Bullets = nonNil(r.Experience[i].Bullets)
	}
	for i := range r.Projects {
		r.Projects[i].Bullets = nonNil(r.Projects[i].Bullets)
	}
}

// Normalize replaces nil list fields with empty slices.
func (r *TailoredResume) Normalize() {
	(*StructuredResume)(r).Normalize()
}

// Clone returns a deep copy of the resume.
func (r StructuredResume) Clone() StructuredResume {
	out := r
	if r.Basics != nil {
		b := *r.Basics
		b.Links = cloneStrings(r.Basics.Links)
		out.Basics = &b
	}
	out.Skills = cloneStrings(r.Skills)
	out.Certifications = cloneStrings(r.Certifications)

	if r.Experience != nil {
		out.Experience = make([]Experience, len(r.Experience))
		for i, e := range r.Experience {
			e.Bullets = cloneStrings(e.Bullets)
			out.Experience[i] = e
		}
	}
	if r.Education != nil {
		out.Education = append([]Education{}, r.Education...)
	}
	if r.Projects != nil {
		out.Projects = make([]Project, len(r.Projects))
		for i, p := range r.Projects {
			p.Bullets = cloneStrings(p.Bullets)
			p.Links = cloneStrings(p.Links)
			out.Projects[i] = p
		}
	}
	return out
}

// TailoredFrom builds the tailored view of a resume with the given skill list.
func TailoredFrom(resume StructuredResume, skills []string) TailoredResume {
	out := resume.Clone()
	out.Skills = cloneStrings(skills)
	out.Normalize()
	return TailoredResume(out)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func nonNilSlice[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
