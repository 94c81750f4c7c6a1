package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrEvaluationFailed matches every error returned by Evaluator.Evaluate.
var ErrEvaluationFailed = errors.New("evaluation failed")

// ErrRateLimit means the evaluation service answered 429.
type ErrRateLimit struct {
	Provider string
	Err      error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("%s: rate limited: %v", providerLabel(e.Provider), e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse means the service replied, but not with a usable
// evaluation: bad JSON, a schema violation, or a truncated reply.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid evaluation response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable means the service could not be reached or failed.
type ErrProviderUnavailable struct {
	Provider string
	Err      error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: evaluation service unavailable: %v", providerLabel(e.Provider), e.Err)
	}
	return providerLabel(e.Provider) + ": evaluation service unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// classifyStatus maps an HTTP status from any SDK to one of the error types above.
func classifyStatus(provider string, status int, err error) error {
	if status == http.StatusTooManyRequests {
		return &ErrRateLimit{Provider: provider, Err: err}
	}
	return &ErrProviderUnavailable{Provider: provider, Err: err}
}

func providerLabel(name string) string {
	if name == "" {
		return "llm"
	}
	return name
}
