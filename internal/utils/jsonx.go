package utils

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AgentJSONError reports agent output that could not be parsed as JSON even
// after fence stripping and balanced-object recovery. Preview holds a
// truncated copy of the cleaned text for diagnostics.
type AgentJSONError struct {
	Preview string
	Err     error
}

func (e *AgentJSONError) Error() string {
	return fmt.Sprintf("agent returned unparsable JSON (preview: %q): %v", e.Preview, e.Err)
}

func (e *AgentJSONError) Unwrap() error {
	return e.Err
}

const previewLimit = 200

// DecodeAgentJSON parses raw agent text into out, applying the recovery
// policy for sloppy LLM output: trim, strip a surrounding code fence, and if
// the remainder still does not start with '{' or '[', fall back to the first
// balanced {...} substring. Parsing is strict; on failure an AgentJSONError
// with a truncated preview is returned. No retries happen at this layer.
func DecodeAgentJSON(raw string, out interface{}) error {
	cleaned := StripFences(raw)

	if !strings.HasPrefix(cleaned, "{") && !strings.HasPrefix(cleaned, "[") {
		if obj := firstJSONObject(cleaned); obj != "" {
			cleaned = obj
		}
	}

	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return &AgentJSONError{Preview: truncate(cleaned, previewLimit), Err: err}
	}
	return nil
}

// StripFences trims the input and removes a surrounding triple-backtick code
// fence, with or without a language tag such as "json".
func StripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	body := strings.TrimPrefix(trimmed, "```")
	if idx := strings.IndexByte(body, '\n'); idx >= 0 {
		// drop the language tag line if present
		firstLine := strings.TrimSpace(body[:idx])
		if firstLine == "" || isFenceTag(firstLine) {
			body = body[idx+1:]
		}
	}
	body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	return strings.TrimSpace(body)
}

func isFenceTag(line string) bool {
	for _, r := range line {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// firstJSONObject scans for the first balanced {...} substring, honoring
// strings and escapes so braces inside values don't break the count.
func firstJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			if inString {
				escaped = true
			}
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
