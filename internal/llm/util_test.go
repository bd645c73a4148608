package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractFirstJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{
			name:     "plain JSON",
			input:    `{"key": "value"}`,
			expected: `{"key": "value"}`,
			ok:       true,
		},
		{
			name:     "json code block",
			input:    "```json\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
			ok:       true,
		},
		{
			name:     "preamble before JSON object",
			input:    "As requested, here is the JSON:\n{\"company\": \"Acme\"}",
			expected: `{"company": "Acme"}`,
			ok:       true,
		},
		{
			name:     "nested objects keep outer span",
			input:    `prefix {"a": {"b": 1}} suffix`,
			expected: `{"a": {"b": 1}}`,
			ok:       true,
		},
		{
			name:  "no braces",
			input: "I cannot help with that.",
			ok:    false,
		},
		{
			name:  "closing before opening",
			input: "} nothing {",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractFirstJSONObject(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}
