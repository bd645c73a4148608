package mock

import (
	"regexp"
	"strings"
)

type keywordPattern struct {
	label string
	re    *regexp.Regexp
}

// keywordPatterns is the fixed dictionary used to spot skills in free text.
// Order is significant: it is the output order.
var keywordPatterns = []keywordPattern{
	{"TypeScript", regexp.MustCompile(`(?i)\btypescript\b`)},
	{"JavaScript", regexp.MustCompile(`(?i)\bjavascript\b`)},
	{"React", regexp.MustCompile(`(?i)\breact\b`)},
	{"Next.js", regexp.MustCompile(`(?i)\bnext\.?js\b`)},
	{"Node.js", regexp.MustCompile(`(?i)\bnode(\.?js)?\b`)},
	{"Tailwind CSS", regexp.MustCompile(`(?i)\btailwind\b`)},
	{"HTML", regexp.MustCompile(`(?i)\bhtml\b`)},
	{"CSS", regexp.MustCompile(`(?i)\bcss\b`)},
	{"REST", regexp.MustCompile(`\bREST\b|(?i:\brestful\b)`)},
	{"GraphQL", regexp.MustCompile(`(?i)\bgraphql\b`)},
	{"SQL", regexp.MustCompile(`(?i)\bsql\b`)},
	{"PostgreSQL", regexp.MustCompile(`(?i)\bpostgres(ql)?\b`)},
	{"MongoDB", regexp.MustCompile(`(?i)\bmongo(db)?\b`)},
	{"AWS", regexp.MustCompile(`(?i)\baws\b|amazon web services`)},
	{"Docker", regexp.MustCompile(`(?i)\bdocker\b`)},
	{"Kubernetes", regexp.MustCompile(`(?i)\bkubernetes\b|\bk8s\b`)},
	{"Python", regexp.MustCompile(`(?i)\bpython\b`)},
	{"Java", regexp.MustCompile(`(?i)\bjava\b`)},
	{"C#", regexp.MustCompile(`(?i)\bc#`)},
	{"Testing", regexp.MustCompile(`(?i)\b(unit tests?|integration tests?|jest|vitest|playwright)\b`)},
	{"CI/CD", regexp.MustCompile(`(?i)\bci/?cd\b|continuous integration|continuous delivery`)},
	{"Agile", regexp.MustCompile(`(?i)\bagile\b|scrum|kanban`)},
	{"Communication", regexp.MustCompile(`(?i)\bcommunication\b`)},
	{"Leadership", regexp.MustCompile(`(?i)\bleadership\b`)},
}

// extractKeywords returns dictionary labels found in text, in dictionary order.
func extractKeywords(text string) []string {
	out := make([]string, 0)
	for _, p := range keywordPatterns {
		if p.re.MatchString(text) {
			out = append(out, p.label)
		}
	}
	return out
}

// uniqueTrimmed drops blanks and case-insensitive duplicates, returning
// trimmed values in first-seen order.
func uniqueTrimmed(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

func firstN(list []string, n int) []string {
	if len(list) > n {
		return list[:n]
	}
	return list
}

func lowerSet(list []string) map[string]struct{} {
	set := make(map[string]struct{}, len(list))
	for _, s := range list {
		set[strings.ToLower(s)] = struct{}{}
	}
	return set
}
