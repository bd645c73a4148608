package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubBackend struct {
	response string
	err      error
	system   string
	user     string
}

func (s *stubBackend) Name() string { return "stub" }

func (s *stubBackend) Complete(_ context.Context, system, user string) (string, error) {
	s.system, s.user = system, user
	return s.response, s.err
}

func gapRequest() Request {
	return Request{
		Task:   TaskGapAnalysis,
		System: "sys",
		User:   "usr",
		Schema: schemas.GapAnalysis,
	}
}

func TestJSONGenerator_Success(t *testing.T) {
	backend := &stubBackend{response: "Sure!\n```json\n{\"matchedKeywords\": [\"Python\"]}\n```"}
	gen := NewJSONGenerator(backend, zaptest.NewLogger(t))

	gap, err := Generate[types.GapAnalysis](context.Background(), gen, gapRequest())
	require.NoError(t, err)

	assert.Equal(t, []string{"Python"}, gap.MatchedKeywords)
	assert.NotNil(t, gap.MissingKeywords, "absent lists default to empty")
	assert.Equal(t, "sys", backend.system)
	assert.Equal(t, "usr", backend.user)
}

func TestJSONGenerator_Failures(t *testing.T) {
	tests := []struct {
		name    string
		backend Backend
		reason  Reason
	}{
		{"no backend", nil, ReasonNoProvider},
		{"backend error", &stubBackend{err: errors.New("boom")}, ReasonBackendFailure},
		{"no object", &stubBackend{response: "no json here"}, ReasonUnparseableOutput},
		{"broken object", &stubBackend{response: `{"matchedKeywords": [}`}, ReasonUnparseableOutput},
		{"schema violation", &stubBackend{response: `{"matchedKeywords": [""]}`}, ReasonSchemaViolation},
		{"unknown field", &stubBackend{response: `{"score": 3}`}, ReasonSchemaViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := NewJSONGenerator(tt.backend, nil)

			_, err := Generate[types.GapAnalysis](context.Background(), gen, gapRequest())
			require.Error(t, err)

			var pe *ProviderError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.reason, pe.Reason)
			assert.Equal(t, TaskGapAnalysis, pe.Task)
		})
	}
}

func TestJSONGenerator_ContextErrorIsWrapped(t *testing.T) {
	gen := NewJSONGenerator(&stubBackend{err: context.DeadlineExceeded}, nil)

	_, err := Generate[types.GapAnalysis](context.Background(), gen, gapRequest())

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestProviderError_Error(t *testing.T) {
	err := &ProviderError{Reason: ReasonSchemaViolation, Task: TaskBulletRewrite, Cause: errors.New("index must be >= 0")}

	msg := err.Error()
	assert.Contains(t, msg, "schema-violation")
	assert.Contains(t, msg, "bullet-rewrite")
	assert.Contains(t, msg, "index must be >= 0")
}
