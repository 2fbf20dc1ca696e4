// Package apperr defines the error taxonomy shared by the search, token and
// download paths. Handlers map these to HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks missing or malformed caller input.
	ErrValidation = errors.New("validation error")
	// ErrCredential marks a missing or unusable upstream access token.
	ErrCredential = errors.New("credential error")
)

// Validation returns an error wrapping ErrValidation.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Credential returns an error wrapping ErrCredential.
func Credential(msg string) error {
	return fmt.Errorf("%w: %s", ErrCredential, msg)
}

// UpstreamError is a failed call to the Graph API. Status is 0 when no response was received.
type UpstreamError struct {
	Status  int
	Body    []byte
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return "upstream request failed: " + e.Message
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.Message)
}

// FetchError is a failed asset download. Status is 0 for transport or filesystem failures.
type FetchError struct {
	URL    string
	Path   string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// BatchError reports that Failed of Total tasks in a batch did not complete.
type BatchError struct {
	Failed int
	Total  int
	Errs   []error
}

func (e *BatchError) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d of %d downloads failed: %s", e.Failed, e.Total, strings.Join(msgs, "; "))
}

// Unwrap exposes the individual task errors to errors.Is / errors.As.
func (e *BatchError) Unwrap() []error { return e.Errs }
