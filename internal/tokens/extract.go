// Package tokens extracts the fact-bearing tokens of a piece of text: numbers,
// URLs, acronyms and technology-like words. The guardrail compares these
// between an original bullet and its proposed rewrite.
package tokens

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	numberRe  = regexp.MustCompile(`[$€£]?\d[\d,]*(?:\.\d+)?%?`)
	urlRe     = regexp.MustCompile(`(?i)\b(https?://\S+|www\.[^\s)\]]+)\b`)
	acronymRe = regexp.MustCompile(`\b[A-Z]{2,}(?:[/-][A-Z]{2,})*\b`)
	techRe    = regexp.MustCompile(`\b[A-Za-z][A-Za-z0-9.+#/-]{1,}\b`)
	allCapsRe = regexp.MustCompile(`^[A-Z]{2,}$`)
)

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "into": {},
	"over": {}, "under": {}, "to": {}, "of": {}, "in": {}, "on": {},
	"at": {}, "by": {}, "as": {}, "a": {}, "an": {},
}

// Numbers returns every numeric token with thousands separators removed.
// Currency prefixes and percent suffixes are kept, so "$1,200" becomes "$1200".
func Numbers(text string) []string {
	matches := numberRe.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.ReplaceAll(m, ",", ""))
	}
	return out
}

// URLs returns http(s) and www. links in their original casing.
func URLs(text string) []string {
	return nonNil(urlRe.FindAllString(text, -1))
}

// URLKey is the comparison key for a URL.
func URLKey(u string) string {
	return strings.ToLower(u)
}

// Acronyms returns runs of two or more capital letters, optionally joined by
// "/" or "-" (e.g. "CI/CD"). Alphanumeric mixes such as "SOC2" are not matched.
func Acronyms(text string) []string {
	return nonNil(acronymRe.FindAllString(text, -1))
}

// TechLike returns words that look like technology names: tokens containing
// one of ".+#/-", a digit, all-caps words, mixed-case words, and names ending
// in ".js" or ".net". Common stopwords are dropped.
func TechLike(text string) []string {
	candidates := techRe.FindAllString(text, -1)
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if _, stop := stopwords[strings.ToLower(c)]; stop {
			continue
		}
		if isTechLike(c) {
			out = append(out, c)
		}
	}
	return out
}

func isTechLike(tok string) bool {
	if strings.ContainsAny(tok, ".+#/-") {
		return true
	}
	if strings.IndexFunc(tok, unicode.IsDigit) >= 0 {
		return true
	}
	if allCapsRe.MatchString(tok) {
		return true
	}
	if hasMixedCase(tok) {
		return true
	}
	lower := strings.ToLower(tok)
	return strings.HasSuffix(lower, ".js") || strings.HasSuffix(lower, ".net")
}

// hasMixedCase reports whether tok has both upper and lower case letters.
// Capitalized words ("Built") count, so a rewrite cannot introduce new
// proper nouns either.
func hasMixedCase(tok string) bool {
	return strings.ContainsFunc(tok, unicode.IsUpper) && strings.ContainsFunc(tok, unicode.IsLower)
}

// Set builds a membership set from tokens using key to normalize each one.
// A nil key keeps tokens as-is.
func Set(toks []string, key func(string) string) map[string]struct{} {
	set := make(map[string]struct{}, len(toks))
	for _, t := range toks {
		if key != nil {
			t = key(t)
		}
		set[t] = struct{}{}
	}
	return set
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
