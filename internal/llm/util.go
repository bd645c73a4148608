package llm

import "strings"

// ExtractFirstJSONObject returns the span from the first "{" to the last "}"
// in text. Models often wrap JSON in markdown fences or add a preamble even
// when told not to; this drops both.
func ExtractFirstJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
