package mock

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

type section int

const (
	sectionHeader section = iota
	sectionSummary
	sectionSkills
	sectionExperience
	sectionProjects
	sectionEducation
	sectionCertifications
	sectionOther
)

var (
	emailRe  = regexp.MustCompile(`(?i)[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}`)
	phoneRe  = regexp.MustCompile(`(\+?\d{1,3}[\s.-]?)?(\(?\d{3}\)?[\s.-]?)\d{3}[\s.-]?\d{4}`)
	linkRe   = regexp.MustCompile(`(?i)(https?://[^\s)\]]+|www\.[^\s)\]]+)`)
	bulletRe = regexp.MustCompile(`^[-*•]\s+(.*)$`)
	yearRe   = regexp.MustCompile(`\d{4}`)

	headingRe      = regexp.MustCompile(`(?i)^(professional summary|summary|profile|objective|about me|technical skills|core skills|skills|work experience|professional experience|experience|employment history|employment|projects|personal projects|education|certifications|certification|certificates|licenses)\s*(?::\s*(.*))?$`)
	otherHeadingRe = regexp.MustCompile(`(?i)^(interests|hobbies|volunteering|volunteer experience|awards|honors|languages|publications|references|activities)\s*:?$`)
	nameHeadingRe  = regexp.MustCompile(`(?i)^(resume|curriculum vitae|cv|summary|experience|education|skills)\b`)

	dateRangeRe  = regexp.MustCompile(`(?i)((?:` + monthPattern + `\.?\s+)?(?:19|20)\d{2})\s*(?:-|–|—|to)\s*((?:` + monthPattern + `\.?\s+)?(?:19|20)\d{2}|present|current|now)`)
	skillSplitRe = regexp.MustCompile(`[,|/;•·]`)
)

const monthPattern = `(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*`

// headerSeparators split "Title — Company" style lines, tried in order.
var headerSeparators = []string{" at ", " — ", " – ", " - ", ", "}

// StructureResume parses resume text with line heuristics. Every value it
// returns is copied from the text or from the keyword dictionary.
func StructureResume(text string) types.StructuredResume {
	lines := splitLines(text)

	p := resumeParser{}
	start := 0
	if name, ok := pickNameCandidate(lines); ok {
		p.basics.FullName = name
		start = 1
	}

	for _, line := range lines[start:] {
		p.consume(line)
	}
	p.flush()

	p.basics.Email = extractEmail(text)
	p.basics.Phone = strings.TrimSpace(phoneRe.FindString(text))
	p.basics.Links = extractLinks(text)

	out := types.StructuredResume{
		Summary:        strings.Join(p.summary, " "),
		Skills:         uniqueTrimmed(append(p.skills, extractKeywords(text)...)),
		Experience:     p.experience,
		Education:      p.education,
		Projects:       p.projects,
		Certifications: uniqueTrimmed(p.certifications),
	}
	if p.basics.FullName != "" || p.basics.Email != "" || p.basics.Phone != "" || len(p.basics.Links) > 0 {
		b := p.basics
		out.Basics = &b
	}
	out.Normalize()
	return out
}

type resumeParser struct {
	section        section
	basics         types.Basics
	summary        []string
	skills         []string
	experience     []types.Experience
	education      []types.Education
	projects       []types.Project
	certifications []string

	// header lines seen since the last bullet in the experience flow
	pending []string
	current *types.Experience
	project *types.Project
}

func (p *resumeParser) consume(line string) {
	if sec, rest, ok := matchHeading(line); ok {
		p.flush()
		p.section = sec
		if rest != "" {
			p.consume(rest)
		}
		return
	}

	bullet, isBullet := bulletText(line)

	switch p.section {
	case sectionSummary:
		if isBullet {
			line = bullet
		}
		p.summary = append(p.summary, line)
	case sectionSkills:
		if isBullet {
			line = bullet
		}
		p.skills = append(p.skills, splitSkills(line)...)
	case sectionHeader, sectionExperience:
		p.consumeExperience(line, bullet, isBullet)
	case sectionProjects:
		p.consumeProject(line, bullet, isBullet)
	case sectionEducation:
		if !isBullet {
			p.consumeEducation(line)
		}
	case sectionCertifications:
		if isBullet {
			line = bullet
		}
		p.certifications = append(p.certifications, line)
	}
}

func (p *resumeParser) consumeExperience(line, bullet string, isBullet bool) {
	if !isBullet {
		if p.current != nil {
			p.experience = append(p.experience, *p.current)
			p.current = nil
		}
		p.pending = append(p.pending, line)
		return
	}
	if p.current == nil {
		if len(p.pending) == 0 {
			// bullets with no header line cannot be attributed
			return
		}
		e := parseExperienceHeader(p.pending)
		p.current = &e
		p.pending = nil
	}
	p.current.Bullets = append(p.current.Bullets, bullet)
}

func (p *resumeParser) consumeProject(line, bullet string, isBullet bool) {
	if isBullet {
		if p.project == nil {
			return
		}
		p.project.Bullets = append(p.project.Bullets, bullet)
		p.project.Links = append(p.project.Links, extractLinks(bullet)...)
		return
	}
	p.flushProject()

	name, desc := line, ""
	for _, sep := range []string{" — ", " – ", " - ", ": "} {
		if before, after, found := strings.Cut(line, sep); found {
			name, desc = strings.TrimSpace(before), strings.TrimSpace(after)
			break
		}
	}
	p.project = &types.Project{Name: name, Description: desc, Links: extractLinks(line)}
}

func (p *resumeParser) consumeEducation(line string) {
	start, end, rest := cutDateRange(line)
	if rest == "" {
		if len(p.education) > 0 {
			last := &p.education[len(p.education)-1]
			if last.StartDate == "" && last.EndDate == "" {
				last.StartDate, last.EndDate = start, end
			}
		}
		return
	}

	parts := splitSegments(rest, " | ", ", ")
	if len(parts) == 0 {
		return
	}
	e := types.Education{School: parts[0], StartDate: start, EndDate: end}
	if len(parts) > 1 {
		e.Degree = parts[1]
	}
	if len(parts) > 2 {
		e.Field = parts[2]
	}
	p.education = append(p.education, e)
}

// flush closes open entries at a section boundary.
func (p *resumeParser) flush() {
	if p.current != nil {
		p.experience = append(p.experience, *p.current)
		p.current = nil
	}
	if p.section == sectionExperience && len(p.pending) > 0 {
		p.experience = append(p.experience, parseExperienceHeader(p.pending))
	}
	p.pending = nil
	p.flushProject()
}

func (p *resumeParser) flushProject() {
	if p.project == nil {
		return
	}
	p.project.Links = uniqueTrimmed(p.project.Links)
	if len(p.project.Links) == 0 {
		p.project.Links = nil
	}
	p.projects = append(p.projects, *p.project)
	p.project = nil
}

// parseExperienceHeader turns the non-bullet lines above a bullet run into
// an entry. A single line is read as "Title — Company | Location | Dates";
// two or more lines are read as company then title.
func parseExperienceHeader(lines []string) types.Experience {
	var e types.Experience
	var rest []string
	for _, l := range lines {
		start, end, remaining := cutDateRange(l)
		if start != "" && e.StartDate == "" {
			e.StartDate, e.EndDate = start, end
		}
		if remaining != "" {
			rest = append(rest, remaining)
		}
	}

	switch len(rest) {
	case 0:
		e.Title = strings.Join(lines, " ")
		e.Company = e.Title
	case 1:
		segs := splitSegments(rest[0], " | ")
		e.Title, e.Company = splitTitleCompany(segs[0])
		if len(segs) > 1 {
			e.Location = segs[1]
		}
	default:
		companySegs := splitSegments(rest[0], " | ")
		e.Company = companySegs[0]
		if len(companySegs) > 1 {
			e.Location = companySegs[1]
		}
		e.Title = splitSegments(rest[1], " | ")[0]
	}
	return e
}

func splitTitleCompany(s string) (string, string) {
	for _, sep := range headerSeparators {
		if before, after, found := strings.Cut(s, sep); found {
			title, company := strings.TrimSpace(before), strings.TrimSpace(after)
			if title != "" && company != "" {
				return title, company
			}
		}
	}
	// no separator: the line names both
	return s, s
}

// cutDateRange removes a "2019 - Present" style range from line and returns
// its endpoints and the remaining text.
func cutDateRange(line string) (string, string, string) {
	loc := dateRangeRe.FindStringSubmatchIndex(line)
	if loc == nil {
		return "", "", line
	}
	start := strings.TrimSpace(line[loc[2]:loc[3]])
	end := strings.TrimSpace(line[loc[4]:loc[5]])
	rest := line[:loc[0]] + line[loc[1]:]
	return start, end, strings.Trim(strings.TrimSpace(rest), "|,–—- ")
}

func splitSegments(s string, seps ...string) []string {
	parts := []string{s}
	for _, sep := range seps {
		var next []string
		for _, p := range parts {
			next = append(next, strings.Split(p, sep)...)
		}
		parts = next
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.Trim(strings.TrimSpace(p), "|,–—- "); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

func splitSkills(line string) []string {
	// "Languages: Go, Python" keeps the list after the label
	if label, rest, found := strings.Cut(line, ":"); found && len(label) <= 25 {
		line = rest
	}
	var out []string
	for _, tok := range skillSplitRe.Split(line, -1) {
		tok = strings.TrimSpace(tok)
		if tok == "" || len(tok) > 40 || yearRe.MatchString(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func matchHeading(line string) (section, string, bool) {
	if m := headingRe.FindStringSubmatch(line); m != nil {
		return headingSection(strings.ToLower(m[1])), strings.TrimSpace(m[2]), true
	}
	if otherHeadingRe.MatchString(line) {
		return sectionOther, "", true
	}
	return 0, "", false
}

func headingSection(h string) section {
	switch {
	case strings.Contains(h, "summary"), h == "profile", h == "objective", h == "about me":
		return sectionSummary
	case strings.Contains(h, "skills"):
		return sectionSkills
	case strings.Contains(h, "experience"), strings.HasPrefix(h, "employment"):
		return sectionExperience
	case strings.Contains(h, "projects"):
		return sectionProjects
	case h == "education":
		return sectionEducation
	default:
		return sectionCertifications
	}
}

func bulletText(line string) (string, bool) {
	m := bulletRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	text := strings.TrimSpace(m[1])
	return text, text != ""
}

func pickNameCandidate(lines []string) (string, bool) {
	if len(lines) == 0 {
		return "", false
	}
	first := lines[0]
	if nameHeadingRe.MatchString(first) || strings.ContainsAny(first, "@:|0123456789") {
		return "", false
	}

	words := strings.Fields(first)
	letters := 0
	for _, r := range first {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			letters++
		}
	}
	if len(words) >= 2 && len(words) <= 5 && letters >= min(10, len(first)) {
		return first, true
	}
	return "", false
}

func extractLinks(text string) []string {
	matches := linkRe.FindAllString(text, -1)
	for i, m := range matches {
		matches[i] = strings.TrimRight(m, ".,;:")
	}
	return uniqueTrimmed(matches)
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// extractEmail returns the first address-like match that also parses as a
// bare RFC 5322 address, the same check the schema's email format applies.
func extractEmail(text string) string {
	for _, m := range emailRe.FindAllString(text, -1) {
		addr, err := mail.ParseAddress(m)
		if err == nil && addr.Address == m {
			return m
		}
	}
	return ""
}
