// Package orchestrator drives an interview session through its phases:
// first question, the spoken rounds, the coding round, and the final
// analysis. Every agent-backed transition degrades to a hand-authored
// substitute on failure, so a misbehaving agent can never strand a
// candidate mid-interview.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"mockmate/interview/internal/agent"
	"mockmate/interview/internal/history"
	"mockmate/interview/internal/metrics"
	"mockmate/interview/internal/models"
	"mockmate/interview/internal/prompts"
	"mockmate/interview/internal/store"
	"mockmate/interview/internal/utils"
)

// minMeaningfulCode is the smallest trimmed submission that is worth
// sending to the code reviewer.
const minMeaningfulCode = 10

// DefaultCodeLanguage is used when the caller does not name one.
const DefaultCodeLanguage = "javascript"

// Archiver persists completed sessions. Archival is best-effort: failures
// are logged, never surfaced to the candidate.
type Archiver interface {
	Save(session *models.InterviewSession) error
}

type Orchestrator struct {
	store   *store.SessionStore
	gateway *agent.Gateway
	prompts prompts.PromptProvider
	logger  *zap.Logger
	archive Archiver

	// delegateSession switches answer evaluation to the whole-session
	// strategy: the evaluator returns an entire replacement session that is
	// merged back through the store's reconciliation path.
	delegateSession bool

	// one mutex per session id so a whole operation is an atomic
	// read-modify-write; different sessions never contend
	locks sync.Map
}

type Options struct {
	DelegateSession bool
	Archive         Archiver
}

func New(sessions *store.SessionStore, gateway *agent.Gateway, promptManager prompts.PromptProvider, logger *zap.Logger, opts Options) *Orchestrator {
	return &Orchestrator{
		store:           sessions,
		gateway:         gateway,
		prompts:         promptManager,
		logger:          logger,
		archive:         opts.Archive,
		delegateSession: opts.DelegateSession,
	}
}

func (o *Orchestrator) lockSession(id string) func() {
	v, _ := o.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// interviewerQuestion is the shape the interviewer agent must return.
type interviewerQuestion struct {
	Title       string `json:"title"`
	Text        string `json:"text"`
	Difficulty  string `json:"difficulty"`
	StarterCode string `json:"starterCode"`
	Language    string `json:"language"`
}

// historyContext is the context object sent with interviewer prompts.
type historyContext struct {
	History string `json:"history"`
}

// Start creates a session and asks the interviewer agent for the first
// spoken question at medium difficulty. It always returns a usable
// question: agent failure substitutes the fixed fallback.
func (o *Orchestrator) Start(ctx context.Context, role, company string) (*models.StartResponse, error) {
	session := o.store.Create(role, company)
	metrics.SessionsStarted.Inc()

	question := o.requestVideoQuestion(ctx, session, "first")

	appended, err := o.store.AppendQuestion(session.ID, question)
	if err != nil {
		return nil, fmt.Errorf("append first question: %w", err)
	}

	o.logger.Info("interview started",
		zap.String("session_id", session.ID),
		zap.String("role", role))

	return &models.StartResponse{
		SessionID:       session.ID,
		Question:        &appended,
		TotalQuestions:  session.TotalVideoQuestions + 1,
		CurrentQuestion: appended.ID,
	}, nil
}

// SubmitAnswer records the transcript (or skip) for a video question,
// obtains its evaluation, and issues the next question: another spoken one
// at the possibly adjusted difficulty, or the single coding question once
// the spoken target is met.
func (o *Orchestrator) SubmitAnswer(ctx context.Context, sessionID string, questionID int, transcript string, skipped bool) (*models.AnswerResponse, error) {
	unlock := o.lockSession(sessionID)
	defer unlock()

	session, err := o.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	question := findByID(session, questionID)
	if question == nil {
		return nil, store.ErrQuestionNotFound
	}

	answer := transcript
	if skipped {
		answer = ""
	}
	if err := o.store.RecordAnswer(sessionID, questionID, answer, skipped); err != nil {
		return nil, err
	}

	evaluation := o.evaluateAnswer(ctx, session, question, transcript, skipped)
	if err := o.store.RecordEvaluation(sessionID, questionID, evaluation); err != nil {
		return nil, err
	}

	// re-read: difficulty (and under delegation the whole session) may have changed
	session, err = o.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	completedVideo := countCompletedVideo(session)
	isLast := completedVideo >= session.TotalVideoQuestions

	var next *models.QuestionRecord
	if isLast {
		if !hasCodeQuestion(session) {
			q := o.requestCodeQuestion(ctx, session)
			appended, err := o.store.AppendQuestion(sessionID, q)
			if err != nil {
				return nil, err
			}
			next = &appended
		}
	} else {
		q := o.requestVideoQuestion(ctx, session, "video")
		appended, err := o.store.AppendQuestion(sessionID, q)
		if err != nil {
			return nil, err
		}
		next = &appended
	}

	session, err = o.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	return &models.AnswerResponse{
		Evaluation:          &evaluation,
		NextQuestion:        next,
		IsLastVideoQuestion: isLast,
		CurrentQuestion:     session.CurrentQuestionIndex,
		TotalQuestions:      session.TotalVideoQuestions + 1,
	}, nil
}

// SubmitCode records a code submission and its review. Empty or placeholder
// submissions short-circuit to a zero-score review without an agent call.
func (o *Orchestrator) SubmitCode(ctx context.Context, sessionID string, questionID int, code, language string) (*models.SubmitCodeResponse, error) {
	unlock := o.lockSession(sessionID)
	defer unlock()

	session, err := o.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	question := findByID(session, questionID)
	if question == nil {
		return nil, store.ErrQuestionNotFound
	}

	if err := o.store.RecordAnswer(sessionID, questionID, code, false); err != nil {
		return nil, err
	}

	var review models.CodeReview
	if isTrivialSubmission(code) {
		review = noCodeReview()
	} else {
		review = o.reviewCode(ctx, session, question, code, language)
	}

	if err := o.store.RecordCodeReview(sessionID, questionID, review); err != nil {
		return nil, err
	}

	return &models.SubmitCodeResponse{Review: &review}, nil
}

// Complete produces the final analysis and marks the session completed. The
// elapsed time is computed locally and always wins over whatever the
// analyst returns.
func (o *Orchestrator) Complete(ctx context.Context, sessionID string) (*models.CompleteResponse, error) {
	unlock := o.lockSession(sessionID)
	defer unlock()

	session, err := o.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	totalTime := formatDuration(time.Since(session.StartedAt))
	analysis := o.analyzeSession(ctx, session, totalTime)

	if err := o.store.Complete(sessionID, analysis); err != nil {
		return nil, err
	}
	metrics.SessionsCompleted.Inc()

	if o.archive != nil {
		archived, err := o.store.Get(sessionID)
		if err == nil {
			if err := o.archive.Save(archived); err != nil {
				o.logger.Warn("failed to archive completed interview",
					zap.String("session_id", sessionID),
					zap.Error(err))
			}
		}
	}

	o.logger.Info("interview completed",
		zap.String("session_id", sessionID),
		zap.Int("overall_score", analysis.OverallScore),
		zap.String("recommendation", analysis.Recommendation))

	return &models.CompleteResponse{Analysis: &analysis}, nil
}

// Session returns a snapshot of the session for the debug accessor.
func (o *Orchestrator) Session(sessionID string) (*models.InterviewSession, error) {
	return o.store.Get(sessionID)
}

// Prune removes sessions started before the cutoff. Each removal takes the
// session's operation lock first, so an in-flight request finishes against a
// live session instead of hitting a mid-operation delete. The lock entry is
// dropped together with the session so the lock map cannot grow without
// bound.
func (o *Orchestrator) Prune(cutoff time.Time) int {
	removed := 0
	for _, id := range o.store.StaleSessions(cutoff) {
		unlock := o.lockSession(id)
		if o.store.RemoveIfStale(id, cutoff) {
			removed++
		}
		unlock()
		o.locks.Delete(id)
	}
	return removed
}

// requestVideoQuestion asks the interviewer agent for a spoken question at
// the session's current difficulty. variant is "first" or "video".
func (o *Orchestrator) requestVideoQuestion(ctx context.Context, session *models.InterviewSession, variant string) models.QuestionRecord {
	instruction, err := o.prompts.BuildPrompt("interviewer", variant, map[string]string{
		"Role":       session.Role,
		"Company":    companyOrDefault(session.Company),
		"Difficulty": session.CurrentDifficulty,
	})
	if err == nil {
		var parsed interviewerQuestion
		ctxObj := historyContext{History: history.Digest(session)}
		if err = o.gateway.SendWithContext(ctx, agent.Interviewer, ctxObj, instruction, &parsed); err == nil && strings.TrimSpace(parsed.Text) != "" {
			return models.QuestionRecord{
				Type:       models.QuestionTypeVideo,
				Title:      parsed.Title,
				Text:       parsed.Text,
				Difficulty: sanitizeDifficulty(parsed.Difficulty, session.CurrentDifficulty),
			}
		}
	}

	metrics.FallbacksServed.WithLabelValues("video_question").Inc()
	o.logger.Warn("using fallback video question",
		zap.String("session_id", session.ID),
		zap.Error(err))
	return fallbackVideoQuestion(session.CurrentDifficulty)
}

// requestCodeQuestion asks the interviewer agent for the single coding
// question, with the full session digest so it avoids repeats.
func (o *Orchestrator) requestCodeQuestion(ctx context.Context, session *models.InterviewSession) models.QuestionRecord {
	instruction, err := o.prompts.BuildPrompt("interviewer", "code", map[string]string{
		"Role":       session.Role,
		"Company":    companyOrDefault(session.Company),
		"Difficulty": session.CurrentDifficulty,
		"Language":   DefaultCodeLanguage,
	})
	if err == nil {
		var parsed interviewerQuestion
		ctxObj := historyContext{History: history.Digest(session)}
		if err = o.gateway.SendWithContext(ctx, agent.Interviewer, ctxObj, instruction, &parsed); err == nil && strings.TrimSpace(parsed.Text) != "" {
			q := models.QuestionRecord{
				Type:        models.QuestionTypeCode,
				Title:       parsed.Title,
				Text:        parsed.Text,
				Difficulty:  sanitizeDifficulty(parsed.Difficulty, session.CurrentDifficulty),
				StarterCode: parsed.StarterCode,
				Language:    utils.NormalizeLanguage(parsed.Language),
			}
			if q.StarterCode == "" {
				q.StarterCode = models.StarterCodePlaceholder
			}
			if q.Language == "" {
				q.Language = DefaultCodeLanguage
			}
			return q
		}
	}

	metrics.FallbacksServed.WithLabelValues("code_question").Inc()
	o.logger.Warn("using fallback coding question",
		zap.String("session_id", session.ID),
		zap.Error(err))
	return fallbackCodeQuestion(session.CurrentDifficulty, DefaultCodeLanguage)
}

// evaluatorContext is the context object for the narrow evaluation prompt.
type evaluatorContext struct {
	Question   string `json:"question"`
	Difficulty string `json:"difficulty"`
	Answer     string `json:"answer"`
}

// delegationContext is the context object for whole-session delegation.
type delegationContext struct {
	Session    *models.InterviewSession `json:"session"`
	QuestionID int                      `json:"questionId"`
	Answer     string                   `json:"answer"`
}

// delegationResult is what the evaluator returns in delegation mode.
type delegationResult struct {
	Session    *models.InterviewSession `json:"session"`
	Evaluation *models.Evaluation       `json:"evaluation"`
}

// evaluateAnswer produces the evaluation for a just-recorded answer.
// Skipped questions are scored locally; agent failures degrade to the
// zero-score "unavailable" evaluation with difficulty held constant.
func (o *Orchestrator) evaluateAnswer(ctx context.Context, session *models.InterviewSession, question *models.QuestionRecord, transcript string, skipped bool) models.Evaluation {
	if skipped {
		return skippedEvaluation(session.CurrentDifficulty)
	}

	if o.delegateSession {
		return o.evaluateByDelegation(ctx, session, question, transcript)
	}

	instruction, err := o.prompts.BuildPrompt("evaluator", "default", map[string]string{
		"Role": session.Role,
	})
	if err == nil {
		var eval models.Evaluation
		ctxObj := evaluatorContext{
			Question:   question.Text,
			Difficulty: question.Difficulty,
			Answer:     transcript,
		}
		if err = o.gateway.SendWithContext(ctx, agent.Evaluator, ctxObj, instruction, &eval); err == nil {
			eval.Score = clampScore(eval.Score)
			eval.NextDifficulty = sanitizeDifficulty(eval.NextDifficulty, session.CurrentDifficulty)
			return eval
		}
	}

	metrics.FallbacksServed.WithLabelValues("evaluation").Inc()
	o.logger.Warn("using fallback evaluation",
		zap.String("session_id", session.ID),
		zap.Int("question_id", question.ID),
		zap.Error(err))
	return unavailableEvaluation(session.CurrentDifficulty)
}

// evaluateByDelegation sends the entire session to the evaluator and merges
// the replacement it returns. Identity-critical fields survive the merge
// regardless of the payload; see SessionStore.MergeExternalUpdate.
func (o *Orchestrator) evaluateByDelegation(ctx context.Context, session *models.InterviewSession, question *models.QuestionRecord, transcript string) models.Evaluation {
	instruction, err := o.prompts.BuildPrompt("evaluator", "delegate", map[string]string{
		"Role":       session.Role,
		"QuestionID": fmt.Sprintf("%d", question.ID),
	})
	if err == nil {
		var result delegationResult
		ctxObj := delegationContext{
			Session:    session,
			QuestionID: question.ID,
			Answer:     transcript,
		}
		if err = o.gateway.SendWithContext(ctx, agent.Evaluator, ctxObj, instruction, &result); err == nil && result.Evaluation != nil {
			// the merge must still cover the answered question after
			// re-numbering, otherwise the evaluation could not be attached and
			// the request would hard-fail on the agent's account
			switch {
			case result.Session == nil:
			case len(result.Session.Questions) < question.ID:
				o.logger.Warn("delegated session dropped the answered question, discarding merge",
					zap.String("session_id", session.ID),
					zap.Int("question_id", question.ID))
			default:
				if _, mergeErr := o.store.MergeExternalUpdate(session.ID, result.Session); mergeErr != nil {
					o.logger.Warn("failed to merge delegated session",
						zap.String("session_id", session.ID),
						zap.Error(mergeErr))
				}
			}
			eval := *result.Evaluation
			eval.Score = clampScore(eval.Score)
			eval.NextDifficulty = sanitizeDifficulty(eval.NextDifficulty, session.CurrentDifficulty)
			return eval
		}
	}

	metrics.FallbacksServed.WithLabelValues("evaluation").Inc()
	o.logger.Warn("using fallback evaluation after delegation failure",
		zap.String("session_id", session.ID),
		zap.Int("question_id", question.ID),
		zap.Error(err))
	return unavailableEvaluation(session.CurrentDifficulty)
}

// reviewerContext is the context object for the code review prompt.
type reviewerContext struct {
	Question    string `json:"question"`
	StarterCode string `json:"starterCode"`
	Code        string `json:"code"`
}

func (o *Orchestrator) reviewCode(ctx context.Context, session *models.InterviewSession, question *models.QuestionRecord, code, language string) models.CodeReview {
	if language == "" {
		language = question.Language
	}
	if language == "" {
		language = DefaultCodeLanguage
	}

	instruction, err := o.prompts.BuildPrompt("code_review", "default", map[string]string{
		"Role":     session.Role,
		"Language": utils.NormalizeLanguage(language),
	})
	if err == nil {
		var review models.CodeReview
		ctxObj := reviewerContext{
			Question:    question.Text,
			StarterCode: question.StarterCode,
			Code:        code,
		}
		if err = o.gateway.SendWithContext(ctx, agent.CodeReviewer, ctxObj, instruction, &review); err == nil {
			review.Score = clampScore(review.Score)
			return review
		}
	}

	metrics.FallbacksServed.WithLabelValues("code_review").Inc()
	o.logger.Warn("using fallback code review",
		zap.String("session_id", session.ID),
		zap.Int("question_id", question.ID),
		zap.Error(err))
	return unavailableCodeReview()
}

func (o *Orchestrator) analyzeSession(ctx context.Context, session *models.InterviewSession, totalTime string) models.Analysis {
	instruction, err := o.prompts.BuildPrompt("analysis", "default", map[string]string{
		"Role":    session.Role,
		"Company": companyOrDefault(session.Company),
	})
	if err == nil {
		var analysis models.Analysis
		if err = o.gateway.SendWithContext(ctx, agent.Analyst, session, instruction, &analysis); err == nil {
			analysis.OverallScore = clampScore(analysis.OverallScore)
			// the locally computed duration always wins
			analysis.TotalTime = totalTime
			return analysis
		}
	}

	metrics.FallbacksServed.WithLabelValues("analysis").Inc()
	o.logger.Warn("using locally computed analysis",
		zap.String("session_id", session.ID),
		zap.Error(err))
	return localAnalysis(session, totalTime)
}

func findByID(session *models.InterviewSession, questionID int) *models.QuestionRecord {
	for i := range session.Questions {
		if session.Questions[i].ID == questionID {
			return &session.Questions[i]
		}
	}
	return nil
}

func countCompletedVideo(session *models.InterviewSession) int {
	count := 0
	for i := range session.Questions {
		q := &session.Questions[i]
		if q.Type == models.QuestionTypeVideo && q.Answered() {
			count++
		}
	}
	return count
}

func hasCodeQuestion(session *models.InterviewSession) bool {
	for i := range session.Questions {
		if session.Questions[i].Type == models.QuestionTypeCode {
			return true
		}
	}
	return false
}

// isTrivialSubmission reports whether the code is empty, the untouched
// starter placeholder, or too short to be a real attempt.
func isTrivialSubmission(code string) bool {
	trimmed := strings.TrimSpace(code)
	return trimmed == "" || trimmed == models.StarterCodePlaceholder || len(trimmed) < minMeaningfulCode
}

func sanitizeDifficulty(candidate, fallback string) string {
	normalized := utils.NormalizeDifficulty(candidate)
	if models.ValidDifficulties[normalized] {
		return normalized
	}
	return fallback
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func companyOrDefault(company string) string {
	if company == "" {
		return "a technology company"
	}
	return company
}

// formatDuration renders elapsed wall-clock time as minutes:seconds with
// the seconds zero-padded to two digits.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
