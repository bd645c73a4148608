package pipeline

import "fmt"

// InputError is returned when a run's input is missing or empty. Nothing is
// generated for such a run.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Message
	}
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Message)
}

// SchemaValidationError means the assembled result failed its own schema.
// This is a defect in the pipeline, not in the input or the provider.
type SchemaValidationError struct {
	Schema string
	Cause  error
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("assembled %s failed validation: %v", e.Schema, e.Cause)
}

func (e *SchemaValidationError) Unwrap() error {
	return e.Cause
}

// StageError attaches the failing stage to an error raised inside a run.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
