package services

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the failure kinds handlers need to branch on.
var (
	ErrUnsupportedFormat   = errors.New("unsupported file format: only .pdf and .docx are accepted")
	ErrExtraction          = errors.New("failed to extract text from document")
	ErrUpstreamRateLimited = errors.New("language model rate limited the request")
	ErrNoContent           = errors.New("language model returned no content")
	ErrUnsupportedTarget   = errors.New("unsupported export format")
	ErrNotFound            = errors.New("cv record not found")
)

// UpstreamError carries the HTTP status and body text of a failed language
// model call so operators can diagnose quota/auth/model issues. Status 0
// means the request never got a response (transport failure or timeout).
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("language model request failed: %s", e.Body)
	}
	return fmt.Sprintf("language model error (status %d): %s", e.Status, e.Body)
}

// Is lets errors.Is(err, ErrUpstreamRateLimited) match a 429 response.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamRateLimited && e.Status == http.StatusTooManyRequests
}

// Retryable reports whether the failure is worth retrying: rate limits and
// transport-level failures only. Definite upstream rejections (4xx/5xx with
// a response) are surfaced as-is.
func (e *UpstreamError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status == 0
}

// MalformedResponseError means the model output could not be reconciled with
// the canonical CV schema. Raw retains the original text for diagnosis.
type MalformedResponseError struct {
	Reason string
	Raw    string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed model response: %s", e.Reason)
}

// RenderError wraps an unrecoverable export layout failure.
type RenderError struct {
	Format string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render %s output: %v", e.Format, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
