package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/resume-tailor/internal/ingestion"
)

// ResumeInput is the resume side of a run. Parsed, when set, is a
// previously structured resume that is reused if it still validates.
type ResumeInput struct {
	Filename     string          `json:"filename,omitempty" validate:"max=255"`
	OriginalText string          `json:"originalText" validate:"required"`
	Parsed       json.RawMessage `json:"parsed,omitempty"`
}

// JobInput is the job side of a run. Structured, when set, is a previously
// structured job that is reused if it still validates.
type JobInput struct {
	SourceURL  string          `json:"sourceUrl,omitempty" validate:"omitempty,max=2048"`
	RawText    string          `json:"rawText" validate:"required"`
	Structured json.RawMessage `json:"structured,omitempty"`
}

// Input is everything one run needs.
type Input struct {
	Resume ResumeInput `json:"resume"`
	Job    JobInput    `json:"job"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// prepare validates in and returns a copy with both texts normalized.
func prepare(in Input) (Input, error) {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return in, &InputError{Field: fe.Namespace(), Message: "failed " + fe.Tag() + " check"}
		}
		return in, &InputError{Message: err.Error()}
	}

	out := in
	out.Resume.OriginalText = ingestion.NormalizeText(in.Resume.OriginalText)
	if out.Resume.OriginalText == "" {
		return in, &InputError{Field: "Input.resume.originalText", Message: "empty after normalization"}
	}
	out.Job.RawText = ingestion.NormalizeText(in.Job.RawText)
	if out.Job.RawText == "" {
		return in, &InputError{Field: "Input.job.rawText", Message: "empty after normalization"}
	}
	return out, nil
}

// hasDocument reports whether raw holds something other than nothing or null.
func hasDocument(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
