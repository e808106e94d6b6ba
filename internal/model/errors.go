package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrEmptyResponse is returned by a generator whose model produced no text.
var ErrEmptyResponse = errors.New("empty response from generation service")

// FinishError is an empty reply the model ended on purpose, such as a safety
// block or the token limit. The same prompt ends the same way, so it is final.
type FinishError struct {
	Reason string
}

func (e *FinishError) Error() string {
	return "model finished with " + e.Reason
}

func (e *FinishError) Unwrap() error {
	return ErrEmptyResponse
}

// ErrPackNotFound is returned by a PackStore for an unknown pack ID.
var ErrPackNotFound = errors.New("study pack not found")

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// ErrorKind classifies a failed pipeline step.
type ErrorKind int

const (
	// KindUpstream: the generation service failed or returned nothing.
	KindUpstream ErrorKind = iota + 1
	// KindExtraction: the notes could not be turned into text.
	KindExtraction
	// KindRender: the concept map could not be drawn.
	KindRender
	// KindInput: the request itself was unusable (empty text, unknown task, bad file type).
	KindInput
)

func (k ErrorKind) String() string {
	switch k {
	case KindUpstream:
		return "upstream"
	case KindExtraction:
		return "extraction"
	case KindRender:
		return "render"
	case KindInput:
		return "input"
	default:
		return "unknown"
	}
}

// StageError is the error variant of an Outcome. Message is user-facing and,
// apart from KindInput, starts with "Error".
type StageError struct {
	Kind    ErrorKind
	Message string
}

func (e *StageError) Error() string {
	return e.Message
}

// UpstreamError builds the error variant for a failed generation call.
func UpstreamError(err error) *StageError {
	if errors.Is(err, ErrEmptyResponse) {
		return &StageError{Kind: KindUpstream, Message: "Error: Empty response from generation service"}
	}
	return &StageError{
		Kind:    KindUpstream,
		Message: fmt.Sprintf("Error connecting to generation service: %v", err),
	}
}

// ExtractionError builds the error variant for a document that could not be read.
func ExtractionError(err error) *StageError {
	return &StageError{
		Kind:    KindExtraction,
		Message: fmt.Sprintf("Error reading file: %v", err),
	}
}
