package schemas

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedSchemas_Compile(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			_, err := load(name)
			require.NoError(t, err)
		})
	}
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("nope", []byte(`{}`))
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestValidate_StructuredResume(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantError bool
	}{
		{"empty object defaults lists", `{}`, false},
		{"full resume", `{
			"basics": {"fullName": "Ada Lovelace", "email": "ada@example.com", "links": ["https://ada.dev"]},
			"summary": "Engineer",
			"skills": ["Python", "SQL"],
			"experience": [{"company": "Acme", "title": "Engineer", "bullets": ["Built pipelines"]}],
			"education": [{"school": "State University"}],
			"projects": [{"name": "Tool", "bullets": []}],
			"certifications": []
		}`, false},
		{"unknown key rejected", `{"skills": [], "hobbies": ["chess"]}`, true},
		{"empty skill rejected", `{"skills": [""]}`, true},
		{"bad email rejected", `{"basics": {"email": "not-an-email"}}`, true},
		{"short phone rejected", `{"basics": {"phone": "12"}}`, true},
		{"experience without company rejected", `{"experience": [{"title": "Engineer"}]}`, true},
		{"null summary rejected", `{"summary": null}`, true},
		{"not json", `{oops`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(StructuredResume, []byte(tt.doc))
			if tt.wantError {
				require.Error(t, err)
				var ve *ValidationError
				require.True(t, errors.As(err, &ve))
				assert.Equal(t, StructuredResume, ve.Schema)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidate_BulletRewrite(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantError bool
	}{
		{"valid", `{"experience": [{"company": "Acme", "title": "Engineer",
			"rewrittenBullets": [{"index": 0, "before": "a", "after": "b", "rationale": "c"}]}]}`, false},
		{"negative index", `{"experience": [{"company": "Acme", "title": "Engineer",
			"rewrittenBullets": [{"index": -1, "before": "a", "after": "b", "rationale": "c"}]}]}`, true},
		{"fractional index", `{"experience": [{"company": "Acme", "title": "Engineer",
			"rewrittenBullets": [{"index": 0.5, "before": "a", "after": "b", "rationale": "c"}]}]}`, true},
		{"empty after", `{"experience": [{"company": "Acme", "title": "Engineer",
			"rewrittenBullets": [{"index": 0, "before": "a", "after": "", "rationale": "c"}]}]}`, true},
		{"empty notes", `{"experience": [], "notes": ""}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(BulletRewrite, []byte(tt.doc))
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_TailoringResultRequiresRenderedText(t *testing.T) {
	res := types.TailoringResult{}
	res.Normalize()

	err := ValidateValue(TailoringResult, res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "renderedText")

	res.RenderedText = "Ada\n"
	assert.NoError(t, ValidateValue(TailoringResult, res))
}

func TestDecode_NormalizesAbsentLists(t *testing.T) {
	gap, err := Decode[types.GapAnalysis](GapAnalysis, []byte(`{"matchedKeywords": ["Python"]}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"Python"}, gap.MatchedKeywords)
	assert.NotNil(t, gap.MissingKeywords)
	assert.NotNil(t, gap.SuggestedSkillOrder)

	data, err := json.Marshal(gap)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "null")
}

func TestDecode_RejectsInvalid(t *testing.T) {
	_, err := Decode[types.StructuredJob](StructuredJob, []byte(`{"skills": "Python"}`))
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.NotEmpty(t, ve.Errors)
}

func TestValidateJSONString_Valid(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string"}
		}
	}`
	jsonContent := `{"name": "test"}`

	err := ValidateJSONString(schemaContent, jsonContent)
	assert.NoError(t, err)
}

func TestValidateJSONString_Invalid(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string"}
		}
	}`
	jsonContent := `{"age": 30}`

	err := ValidateJSONString(schemaContent, jsonContent)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Schema: GapAnalysis,
		Errors: []FieldError{
			{Field: "matchedKeywords.0", Message: "String length must be greater than or equal to 1"},
			{Field: "risks", Message: "Invalid type. Expected: array, given: string"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "gap_analysis validation failed")
	assert.Contains(t, errorMsg, "matchedKeywords.0")
	assert.Contains(t, errorMsg, "risks")
}
