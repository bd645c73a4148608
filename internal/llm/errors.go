package llm

import "fmt"

// Reason classifies a ProviderError.
type Reason string

// Reason constants.
const (
	// ReasonNoProvider means no backend is configured and the mock was not selected.
	ReasonNoProvider Reason = "no-provider"
	// ReasonUnparseableOutput means the response held no decodable JSON object.
	ReasonUnparseableOutput Reason = "unparseable-output"
	// ReasonSchemaViolation means the JSON object failed schema validation.
	ReasonSchemaViolation Reason = "schema-violation"
	// ReasonBackendFailure means the backend call itself failed.
	ReasonBackendFailure Reason = "backend-failure"
)

// ProviderError is returned when structured generation fails.
type ProviderError struct {
	Reason  Reason
	Task    Task
	Message string
	Cause   error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("provider error (%s)", e.Reason)
	if e.Task != "" {
		msg += " in " + string(e.Task)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}
