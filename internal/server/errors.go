package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/schemas"
)

// RequestError is a malformed request body or parameter.
type RequestError struct {
	Field   string
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Message)
}

// ErrNoStore is returned by endpoints that need persistence when none is
// configured.
var ErrNoStore = errors.New("persistence is not configured")

// HTTPStatus returns the status code for err.
func HTTPStatus(err error) int {
	var (
		reqErr    *RequestError
		inputErr  *pipeline.InputError
		schemaErr *schemas.ValidationError
		notFound  *db.NotFoundError
		provider  *llm.ProviderError
	)
	switch {
	case errors.As(err, &reqErr), errors.As(err, &inputErr):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &provider):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrNoStore):
		return http.StatusServiceUnavailable
	case errors.As(err, &schemaErr):
		// a stored or submitted document failed validation outside a run
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
