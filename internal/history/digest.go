// Package history renders a session's question/answer history into a
// prompt-ready textual digest for outbound agent requests. Digest is a pure
// function: the same session always produces the same text.
package history

import (
	"fmt"
	"strings"

	"mockmate/interview/internal/models"
)

// EmptySentinel is emitted when the session has no questions yet.
const EmptySentinel = "No previous questions yet."

const snippetLen = 80

// Digest produces the textual summary embedded in agent prompts: the list of
// already-used question titles (so the interviewer does not repeat itself)
// followed by every question with its answer and score.
func Digest(session *models.InterviewSession) string {
	if len(session.Questions) == 0 {
		return EmptySentinel
	}

	var b strings.Builder

	b.WriteString("Previously asked questions (do not repeat any of these):\n")
	for _, q := range session.Questions {
		b.WriteString("- ")
		b.WriteString(snippet(&q))
		b.WriteString("\n")
	}

	b.WriteString("\nQuestion and answer history:\n")
	for _, q := range session.Questions {
		fmt.Fprintf(&b, "[%s]: %s\n", q.Difficulty, q.Text)
		switch {
		case q.Skipped:
			b.WriteString("SKIPPED\n")
		case q.Answer != nil:
			fmt.Fprintf(&b, "Answer: %s\n", *q.Answer)
		}
		if q.Evaluation != nil {
			fmt.Fprintf(&b, "Score: %d/100 - %s\n", q.Evaluation.Score, q.Evaluation.Brief)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// snippet prefers the question title; untitled questions fall back to a
// truncated slice of the question text. Truncation counts runes so a
// multi-byte character is never split.
func snippet(q *models.QuestionRecord) string {
	if q.Title != "" {
		return q.Title
	}
	text := strings.TrimSpace(q.Text)
	runes := []rune(text)
	if len(runes) > snippetLen {
		return string(runes[:snippetLen]) + "..."
	}
	return text
}
