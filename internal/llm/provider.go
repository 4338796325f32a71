package llm

import (
	"context"
	"fmt"
)

// Provider is the transport to an external reasoning agent. Complete sends a
// single prompt on behalf of the named agent and blocks until the agent's
// raw text reply or a failure. Providers perform no retries.
type Provider interface {
	Complete(ctx context.Context, agentID string, prompt string) (string, error)
	GetProviderName() string
}

// ProviderError represents an error from an agent provider.
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + " error: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + " error: " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Common error codes
// For current and future use across different providers
const (
	ErrCodeAPIKey       = "invalid_api_key"
	ErrCodeRateLimit    = "rate_limit_exceeded"
	ErrCodeServiceDown  = "service_unavailable"
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeTimeout      = "timeout"
)

// TransportError is returned when the upstream agent endpoint answers with a
// non-success HTTP status. Status and body are kept for diagnostics.
type TransportError struct {
	Agent      string
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("agent %s returned status %d: %s", e.Agent, e.StatusCode, e.Body)
}
