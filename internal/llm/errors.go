package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResponse is returned when the model answers with no text.
	ErrEmptyResponse = errors.New("empty response from model")

	// ErrMissingProject is returned when no Google Cloud project is configured.
	ErrMissingProject = errors.New("google cloud project ID is required")
)

// ParseError is a model answer that should have been JSON but was not.
type ParseError struct {
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse model response as JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError is a JSON answer that violates the response schema.
type ValidationError struct {
	Text string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("model response does not match schema: %v", e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }
