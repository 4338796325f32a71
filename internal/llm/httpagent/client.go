// Package httpagent implements the Provider interface over plain HTTP: each
// named agent is an endpoint under a shared base URL that accepts a prompt
// and answers with free text.
package httpagent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"

	"mockmate/interview/internal/llm"
)

type Config struct {
	BaseURL string
}

func NewConfig() (*Config, error) {
	baseURL := os.Getenv("AGENT_BASE_URL")
	if baseURL == "" {
		return nil, errors.New("AGENT_BASE_URL environment variable is required")
	}
	return &Config{BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

type Client struct {
	config     *Config
	httpClient *http.Client
}

func NewClient(config *Config) *Client {
	return &Client{
		config: config,
		// timeouts come from the caller's context
		httpClient: &http.Client{},
	}
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

// Complete posts the prompt to {baseURL}/{agentID} and returns the response
// body verbatim. Any non-2xx status becomes a TransportError carrying the
// upstream status and body.
func (c *Client) Complete(ctx context.Context, agentID string, prompt string) (string, error) {
	payload, err := json.Marshal(promptRequest{Prompt: prompt})
	if err != nil {
		return "", &llm.ProviderError{
			Provider: "http",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Failed to encode prompt",
			Err:      err,
		}
	}

	url := c.config.BaseURL + "/" + agentID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", &llm.ProviderError{
			Provider: "http",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Failed to build request for agent " + agentID,
			Err:      err,
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		code := llm.ErrCodeServiceDown
		if errors.Is(err, context.DeadlineExceeded) {
			code = llm.ErrCodeTimeout
		}
		return "", &llm.ProviderError{
			Provider: "http",
			Code:     code,
			Message:  "Agent " + agentID + " unreachable",
			Err:      err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &llm.ProviderError{
			Provider: "http",
			Code:     llm.ErrCodeServiceDown,
			Message:  "Failed to read response from agent " + agentID,
			Err:      err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &llm.TransportError{
			Agent:      agentID,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	return string(body), nil
}

func (c *Client) GetProviderName() string {
	return "http"
}
