package store

import (
	"errors"
	"sync"
	"time"

	"mockmate/interview/internal/models"
	"mockmate/interview/internal/utils"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrQuestionNotFound = errors.New("question not found")
)

// SessionStore owns the canonical state of every in-progress interview for
// the lifetime of the process. It is the only writer of session state; all
// reads hand out deep copies.
type SessionStore struct {
	mu                  sync.RWMutex
	sessions            map[string]*entry
	totalVideoQuestions int
}

// entry pairs a session with its own mutex so mutations for different
// session ids never contend.
type entry struct {
	mu      sync.Mutex
	session *models.InterviewSession
}

// NewSessionStore creates an empty store. totalVideoQuestions is the number
// of spoken questions each new session targets before the coding question;
// values below 1 fall back to the default of 3.
func NewSessionStore(totalVideoQuestions int) *SessionStore {
	if totalVideoQuestions < 1 {
		totalVideoQuestions = models.DefaultTotalVideoQuestions
	}
	return &SessionStore{
		sessions:            make(map[string]*entry),
		totalVideoQuestions: totalVideoQuestions,
	}
}

// Create allocates a fresh session at medium difficulty with an empty
// question sequence and a generated unique id.
func (s *SessionStore) Create(role, company string) *models.InterviewSession {
	session := &models.InterviewSession{
		ID:                  uuid.New().String(),
		Role:                role,
		Company:             company,
		CurrentDifficulty:   models.DifficultyMedium,
		TotalVideoQuestions: s.totalVideoQuestions,
		Questions:           []models.QuestionRecord{},
		StartedAt:           time.Now(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = &entry{session: session}
	s.mu.Unlock()

	return session.Clone()
}

// Get returns a snapshot of the session, or ErrSessionNotFound.
func (s *SessionStore) Get(id string) (*models.InterviewSession, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Clone(), nil
}

// AppendQuestion assigns the next dense 1-based id to q, appends it to the
// session's question sequence and advances currentQuestionIndex.
func (s *SessionStore) AppendQuestion(id string, q models.QuestionRecord) (models.QuestionRecord, error) {
	e, err := s.lookup(id)
	if err != nil {
		return models.QuestionRecord{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	q.ID = len(e.session.Questions) + 1
	e.session.Questions = append(e.session.Questions, q)
	e.session.CurrentQuestionIndex = len(e.session.Questions)
	return *q.Clone(), nil
}

// RecordAnswer sets the answer (raw transcript or submitted code) and the
// skipped flag on the matching question record.
func (s *SessionStore) RecordAnswer(id string, questionID int, text string, skipped bool) error {
	return s.updateQuestion(id, questionID, func(q *models.QuestionRecord) {
		q.Answer = &text
		q.Skipped = skipped
	})
}

// RecordEvaluation sets the evaluation on the matching question record and
// propagates its nextDifficulty into the session. This is the sole path by
// which a session's difficulty changes; an unrecognized nextDifficulty
// leaves the difficulty untouched.
func (s *SessionStore) RecordEvaluation(id string, questionID int, eval models.Evaluation) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	q := findQuestion(e.session, questionID)
	if q == nil {
		return ErrQuestionNotFound
	}

	q.Evaluation = &eval
	next := utils.NormalizeDifficulty(eval.NextDifficulty)
	if models.ValidDifficulties[next] {
		e.session.CurrentDifficulty = next
	}
	return nil
}

// RecordCodeReview sets the code review on the matching question record.
// Code reviews never affect difficulty.
func (s *SessionStore) RecordCodeReview(id string, questionID int, review models.CodeReview) error {
	return s.updateQuestion(id, questionID, func(q *models.QuestionRecord) {
		q.CodeReview = &review
	})
}

// Complete marks the session completed and attaches the final analysis.
func (s *SessionStore) Complete(id string, analysis models.Analysis) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	e.session.CompletedAt = &now
	e.session.Analysis = &analysis
	return nil
}

// MergeExternalUpdate reconciles a session-shaped object returned by an
// external agent into the store. Identity-critical fields (id, role,
// company, startedAt) are always re-derived from the stored session and the
// question sequence is re-numbered 1..N regardless of what the external
// source supplied, so an untrusted payload can never corrupt identity or
// break the dense-id invariant. Recorded progress is sticky: where the
// payload omits the answer, evaluation or code review that the stored
// question at the same position already carries, the stored value is kept,
// so an agent that echoes a stale snapshot cannot erase what the candidate
// already did.
func (s *SessionStore) MergeExternalUpdate(id string, external *models.InterviewSession) (*models.InterviewSession, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	merged := external.Clone()
	merged.ID = e.session.ID
	merged.Role = e.session.Role
	merged.Company = e.session.Company
	merged.StartedAt = e.session.StartedAt
	if merged.TotalVideoQuestions < 1 {
		merged.TotalVideoQuestions = e.session.TotalVideoQuestions
	}
	for i := range merged.Questions {
		merged.Questions[i].ID = i + 1
		if i >= len(e.session.Questions) {
			continue
		}
		q := &merged.Questions[i]
		prev := e.session.Questions[i].Clone()
		if q.Answer == nil && !q.Skipped {
			q.Answer = prev.Answer
			q.Skipped = prev.Skipped
		}
		if q.Evaluation == nil {
			q.Evaluation = prev.Evaluation
		}
		if q.CodeReview == nil {
			q.CodeReview = prev.CodeReview
		}
	}
	merged.CurrentQuestionIndex = len(merged.Questions)

	diff := utils.NormalizeDifficulty(merged.CurrentDifficulty)
	if !models.ValidDifficulties[diff] {
		diff = e.session.CurrentDifficulty
	}
	merged.CurrentDifficulty = diff

	e.session = merged
	return merged.Clone(), nil
}

// StaleSessions lists the ids of sessions started before the cutoff.
func (s *SessionStore) StaleSessions(cutoff time.Time) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for id, e := range s.sessions {
		if e.session.StartedAt.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids
}

// RemoveIfStale drops the session if it still predates the cutoff and
// reports whether it did. Completed sessions live on in the archive;
// abandoned ones are simply forgotten.
func (s *SessionStore) RemoveIfStale(id string, cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok || !e.session.StartedAt.Before(cutoff) {
		return false
	}
	delete(s.sessions, id)
	return true
}

// Count returns the number of sessions currently held.
func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) lookup(id string) (*entry, error) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

func (s *SessionStore) updateQuestion(id string, questionID int, apply func(*models.QuestionRecord)) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	q := findQuestion(e.session, questionID)
	if q == nil {
		return ErrQuestionNotFound
	}
	apply(q)
	return nil
}

// findQuestion resolves a question by id. Ids are dense and 1-based, so the
// index is checked first; the scan covers sessions that went through an
// external merge before the invariant was restored.
func findQuestion(session *models.InterviewSession, questionID int) *models.QuestionRecord {
	if questionID >= 1 && questionID <= len(session.Questions) && session.Questions[questionID-1].ID == questionID {
		return &session.Questions[questionID-1]
	}
	for i := range session.Questions {
		if session.Questions[i].ID == questionID {
			return &session.Questions[i]
		}
	}
	return nil
}
