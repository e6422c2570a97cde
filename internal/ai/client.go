package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrQuotaExceeded marks rate-limit and quota rejections from the API
var ErrQuotaExceeded = errors.New("gemini quota exhausted")

// Request is one text generation call
type Request struct {
	Prompt string
	// Search enables Google Search grounding for the call
	Search bool
}

// Client is the text generation capability the generator depends on
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// APIError is a non-2xx answer from the Gemini API
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini API error %d (%s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("gemini API error %d: %s", e.StatusCode, e.Message)
}

// Is lets errors.Is match quota rejections against ErrQuotaExceeded
func (e *APIError) Is(target error) bool {
	return target == ErrQuotaExceeded && isQuota(e.StatusCode, e.Status, e.Message)
}

func isQuota(code int, status, message string) bool {
	return code == http.StatusTooManyRequests ||
		strings.EqualFold(status, "RESOURCE_EXHAUSTED") ||
		strings.Contains(message, "RESOURCE_EXHAUSTED")
}

// IsQuotaError reports whether err is a recognized quota or rate-limit error
func IsQuotaError(err error) bool {
	return err != nil && errors.Is(err, ErrQuotaExceeded)
}
