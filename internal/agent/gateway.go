// Package agent is the fault-isolating choke point between the orchestrator
// and the external reasoning agents. Agents are black boxes whose output
// format cannot be trusted; everything fragile about talking to them lives
// here so callers can apply one uniform fallback policy.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mockmate/interview/internal/llm"
	"mockmate/interview/internal/metrics"
	"mockmate/interview/internal/utils"
)

// Named agents the orchestrator talks to.
const (
	Interviewer  = "interviewer"
	Evaluator    = "evaluator"
	CodeReviewer = "code-reviewer"
	Analyst      = "analyst"
)

// DefaultTimeout bounds a single agent call. Agent latency is otherwise
// unbounded and would stall the per-session critical section.
const DefaultTimeout = 45 * time.Second

type Gateway struct {
	provider llm.Provider
	timeout  time.Duration
	logger   *zap.Logger
}

func NewGateway(provider llm.Provider, timeout time.Duration, logger *zap.Logger) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{
		provider: provider,
		timeout:  timeout,
		logger:   logger,
	}
}

// Send issues a single synchronous call to the named agent and returns its
// raw text reply. The call is bounded by the gateway timeout; a failed
// attempt is reported upward, never retried here.
func (g *Gateway) Send(ctx context.Context, agentID string, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw, err := g.provider.Complete(callCtx, agentID, prompt)
	if err != nil {
		metrics.AgentCalls.WithLabelValues(agentID, "transport_error").Inc()
		g.logger.Warn("agent call failed",
			zap.String("agent", agentID),
			zap.String("provider", g.provider.GetProviderName()),
			zap.Error(err))
		return "", err
	}

	metrics.AgentCalls.WithLabelValues(agentID, "success").Inc()
	return raw, nil
}

// SendWithContext composes a prompt from a serialized context object and a
// natural-language instruction, calls the agent, and parses the reply into
// out using the JSON-recovery policy. Parse failures surface as
// AgentJSONError after recovery has been attempted.
func (g *Gateway) SendWithContext(ctx context.Context, agentID string, contextObj interface{}, instruction string, out interface{}) error {
	serialized, err := json.Marshal(contextObj)
	if err != nil {
		return fmt.Errorf("serialize agent context: %w", err)
	}

	prompt := instruction + "\n\nContext:\n" + string(serialized)

	raw, err := g.Send(ctx, agentID, prompt)
	if err != nil {
		return err
	}

	if err := utils.DecodeAgentJSON(raw, out); err != nil {
		metrics.AgentCalls.WithLabelValues(agentID, "parse_error").Inc()
		g.logger.Warn("agent reply unparsable",
			zap.String("agent", agentID),
			zap.Error(err))
		return err
	}
	return nil
}
