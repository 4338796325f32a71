package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"mockmate/interview/internal/llm"
	"mockmate/interview/internal/utils"
)

type mockProvider struct {
	completeFn func(ctx context.Context, agentID, prompt string) (string, error)
}

func (m *mockProvider) Complete(ctx context.Context, agentID, prompt string) (string, error) {
	if m.completeFn != nil {
		return m.completeFn(ctx, agentID, prompt)
	}
	return "", errors.New("not implemented")
}

func (m *mockProvider) GetProviderName() string { return "mock" }

func TestSendPassesPromptAndAgent(t *testing.T) {
	var gotAgent, gotPrompt string
	provider := &mockProvider{
		completeFn: func(ctx context.Context, agentID, prompt string) (string, error) {
			gotAgent = agentID
			gotPrompt = prompt
			return "raw reply", nil
		},
	}

	gateway := NewGateway(provider, time.Second, zap.NewNop())
	raw, err := gateway.Send(context.Background(), Interviewer, "the prompt")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if raw != "raw reply" {
		t.Fatalf("unexpected reply: %q", raw)
	}
	if gotAgent != Interviewer || gotPrompt != "the prompt" {
		t.Fatalf("prompt not forwarded, agent=%q prompt=%q", gotAgent, gotPrompt)
	}
}

func TestSendAppliesTimeout(t *testing.T) {
	provider := &mockProvider{
		completeFn: func(ctx context.Context, agentID, prompt string) (string, error) {
			deadline, ok := ctx.Deadline()
			if !ok {
				t.Errorf("expected a deadline on the call context")
			}
			if time.Until(deadline) > 2*time.Second {
				t.Errorf("deadline too far out: %v", time.Until(deadline))
			}
			return "ok", nil
		},
	}

	gateway := NewGateway(provider, time.Second, zap.NewNop())
	if _, err := gateway.Send(context.Background(), Evaluator, "p"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
}

func TestSendTransportErrorSurfaces(t *testing.T) {
	provider := &mockProvider{
		completeFn: func(ctx context.Context, agentID, prompt string) (string, error) {
			return "", &llm.TransportError{Agent: agentID, StatusCode: 502, Body: "bad gateway"}
		},
	}

	gateway := NewGateway(provider, time.Second, zap.NewNop())
	_, err := gateway.Send(context.Background(), Analyst, "p")

	var transportErr *llm.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if transportErr.StatusCode != 502 {
		t.Fatalf("status lost in transit: %d", transportErr.StatusCode)
	}
}

func TestSendWithContextParsesFencedJSON(t *testing.T) {
	provider := &mockProvider{
		completeFn: func(ctx context.Context, agentID, prompt string) (string, error) {
			return "```json\n{\"score\": 80}\n```", nil
		},
	}

	gateway := NewGateway(provider, time.Second, zap.NewNop())

	var out struct {
		Score int `json:"score"`
	}
	err := gateway.SendWithContext(context.Background(), Evaluator, map[string]string{"answer": "a"}, "evaluate", &out)
	if err != nil {
		t.Fatalf("SendWithContext failed: %v", err)
	}
	if out.Score != 80 {
		t.Fatalf("expected score 80, got %d", out.Score)
	}
}

func TestSendWithContextEmbedsSerializedContext(t *testing.T) {
	var gotPrompt string
	provider := &mockProvider{
		completeFn: func(ctx context.Context, agentID, prompt string) (string, error) {
			gotPrompt = prompt
			return "{}", nil
		},
	}

	gateway := NewGateway(provider, time.Second, zap.NewNop())

	var out map[string]interface{}
	err := gateway.SendWithContext(context.Background(), Interviewer, map[string]string{"history": "none"}, "ask a question", &out)
	if err != nil {
		t.Fatalf("SendWithContext failed: %v", err)
	}
	if !strings.HasPrefix(gotPrompt, "ask a question") {
		t.Fatalf("instruction must lead the prompt: %q", gotPrompt)
	}
	if !strings.Contains(gotPrompt, `"history":"none"`) {
		t.Fatalf("serialized context missing from prompt: %q", gotPrompt)
	}
}

func TestSendWithContextParseFailure(t *testing.T) {
	provider := &mockProvider{
		completeFn: func(ctx context.Context, agentID, prompt string) (string, error) {
			return "I refuse to answer in JSON", nil
		},
	}

	gateway := NewGateway(provider, time.Second, zap.NewNop())

	var out map[string]interface{}
	err := gateway.SendWithContext(context.Background(), Evaluator, nil, "evaluate", &out)

	var jsonErr *utils.AgentJSONError
	if !errors.As(err, &jsonErr) {
		t.Fatalf("expected AgentJSONError, got %v", err)
	}
}
