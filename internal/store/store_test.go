package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"mockmate/interview/internal/models"
)

func newVideoQuestion(text string) models.QuestionRecord {
	return models.QuestionRecord{
		Type:       models.QuestionTypeVideo,
		Title:      "q",
		Text:       text,
		Difficulty: models.DifficultyMedium,
	}
}

func TestCreateDefaults(t *testing.T) {
	s := NewSessionStore(3)
	session := s.Create("Backend Engineer", "Acme")

	if session.ID == "" {
		t.Fatalf("expected a generated id")
	}
	if session.CurrentDifficulty != models.DifficultyMedium {
		t.Fatalf("expected medium difficulty, got %s", session.CurrentDifficulty)
	}
	if session.TotalVideoQuestions != 3 {
		t.Fatalf("expected 3 video questions, got %d", session.TotalVideoQuestions)
	}
	if len(session.Questions) != 0 {
		t.Fatalf("expected empty question sequence")
	}
	if session.CompletedAt != nil || session.Analysis != nil {
		t.Fatalf("new session must not be completed")
	}
}

func TestGetUnknownSession(t *testing.T) {
	s := NewSessionStore(3)
	if _, err := s.Get("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestAppendQuestionDenseIDs(t *testing.T) {
	s := NewSessionStore(3)
	session := s.Create("", "")

	for i := 0; i < 4; i++ {
		q, err := s.AppendQuestion(session.ID, newVideoQuestion(fmt.Sprintf("question %d", i)))
		if err != nil {
			t.Fatalf("AppendQuestion failed: %v", err)
		}
		if q.ID != i+1 {
			t.Fatalf("expected id %d, got %d", i+1, q.ID)
		}
	}

	got, err := s.Get(session.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	for i, q := range got.Questions {
		if q.ID != i+1 {
			t.Fatalf("dense-id invariant broken at index %d: id %d", i, q.ID)
		}
	}
	if got.CurrentQuestionIndex != 4 {
		t.Fatalf("expected question index 4, got %d", got.CurrentQuestionIndex)
	}
}

func TestRecordAnswerAndSkip(t *testing.T) {
	s := NewSessionStore(3)
	session := s.Create("", "")
	s.AppendQuestion(session.ID, newVideoQuestion("q1"))

	if err := s.RecordAnswer(session.ID, 1, "my answer", false); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}

	got, _ := s.Get(session.ID)
	if got.Questions[0].Answer == nil || *got.Questions[0].Answer != "my answer" {
		t.Fatalf("answer not recorded")
	}
	if got.Questions[0].Skipped {
		t.Fatalf("question must not be marked skipped")
	}

	if err := s.RecordAnswer(session.ID, 99, "", true); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestRecordEvaluationPropagatesDifficulty(t *testing.T) {
	s := NewSessionStore(3)
	session := s.Create("", "")
	s.AppendQuestion(session.ID, newVideoQuestion("q1"))

	eval := models.Evaluation{Score: 90, NextDifficulty: models.DifficultyHard}
	if err := s.RecordEvaluation(session.ID, 1, eval); err != nil {
		t.Fatalf("RecordEvaluation failed: %v", err)
	}

	got, _ := s.Get(session.ID)
	if got.CurrentDifficulty != models.DifficultyHard {
		t.Fatalf("expected difficulty hard, got %s", got.CurrentDifficulty)
	}
	if got.Questions[0].Evaluation == nil || got.Questions[0].Evaluation.Score != 90 {
		t.Fatalf("evaluation not recorded")
	}
}

func TestRecordEvaluationInvalidDifficultyHolds(t *testing.T) {
	s := NewSessionStore(3)
	session := s.Create("", "")
	s.AppendQuestion(session.ID, newVideoQuestion("q1"))

	eval := models.Evaluation{Score: 50, NextDifficulty: "impossible"}
	if err := s.RecordEvaluation(session.ID, 1, eval); err != nil {
		t.Fatalf("RecordEvaluation failed: %v", err)
	}

	got, _ := s.Get(session.ID)
	if got.CurrentDifficulty != models.DifficultyMedium {
		t.Fatalf("invalid difficulty must be ignored, got %s", got.CurrentDifficulty)
	}
}

func TestRecordCodeReviewDoesNotTouchDifficulty(t *testing.T) {
	s := NewSessionStore(3)
	session := s.Create("", "")
	s.AppendQuestion(session.ID, models.QuestionRecord{Type: models.QuestionTypeCode, Text: "code q"})

	review := models.CodeReview{Score: 80, Correctness: true}
	if err := s.RecordCodeReview(session.ID, 1, review); err != nil {
		t.Fatalf("RecordCodeReview failed: %v", err)
	}

	got, _ := s.Get(session.ID)
	if got.CurrentDifficulty != models.DifficultyMedium {
		t.Fatalf("code review must not change difficulty")
	}
	if got.Questions[0].CodeReview == nil || got.Questions[0].CodeReview.Score != 80 {
		t.Fatalf("code review not recorded")
	}
}

func TestComplete(t *testing.T) {
	s := NewSessionStore(3)
	session := s.Create("", "")

	analysis := models.Analysis{OverallScore: 70, Recommendation: models.RecommendationHire, TotalTime: "4:05"}
	if err := s.Complete(session.ID, analysis); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	got, _ := s.Get(session.ID)
	if got.CompletedAt == nil {
		t.Fatalf("expected completedAt to be set")
	}
	if got.Analysis == nil || got.Analysis.OverallScore != 70 {
		t.Fatalf("analysis not recorded")
	}
}

func TestMergeExternalUpdateProtectsIdentity(t *testing.T) {
	s := NewSessionStore(3)
	session := s.Create("Frontend Engineer", "Acme")
	s.AppendQuestion(session.ID, newVideoQuestion("q1"))

	external := &models.InterviewSession{
		ID:                "attacker-chosen-id",
		Role:              "Different Role",
		Company:           "Different Co",
		CurrentDifficulty: "HARD",
		Questions: []models.QuestionRecord{
			{ID: 17, Type: models.QuestionTypeVideo, Text: "q1"},
			{ID: 3, Type: models.QuestionTypeVideo, Text: "q2"},
			{ID: 3, Type: models.QuestionTypeCode, Text: "q3"},
		},
	}

	merged, err := s.MergeExternalUpdate(session.ID, external)
	if err != nil {
		t.Fatalf("MergeExternalUpdate failed: %v", err)
	}

	if merged.ID != session.ID {
		t.Fatalf("external payload must not change the session id")
	}
	if merged.Role != "Frontend Engineer" || merged.Company != "Acme" {
		t.Fatalf("immutable fields were overwritten")
	}
	for i, q := range merged.Questions {
		if q.ID != i+1 {
			t.Fatalf("questions must be re-numbered densely, index %d has id %d", i, q.ID)
		}
	}
	if merged.CurrentDifficulty != models.DifficultyHard {
		t.Fatalf("difficulty should be normalized, got %s", merged.CurrentDifficulty)
	}
	if merged.CurrentQuestionIndex != 3 {
		t.Fatalf("question index must follow the merged sequence, got %d", merged.CurrentQuestionIndex)
	}

	stored, _ := s.Get(session.ID)
	if len(stored.Questions) != 3 {
		t.Fatalf("merge was not persisted")
	}
}

func TestMergeExternalUpdateInvalidDifficultyHolds(t *testing.T) {
	s := NewSessionStore(3)
	session := s.Create("", "")

	external := &models.InterviewSession{CurrentDifficulty: "extreme"}
	merged, err := s.MergeExternalUpdate(session.ID, external)
	if err != nil {
		t.Fatalf("MergeExternalUpdate failed: %v", err)
	}
	if merged.CurrentDifficulty != models.DifficultyMedium {
		t.Fatalf("unknown difficulty must fall back to the stored one")
	}
}

func TestStaleSessionsAndRemove(t *testing.T) {
	s := NewSessionStore(3)
	first := s.Create("", "")
	second := s.Create("", "")

	if ids := s.StaleSessions(time.Now().Add(-time.Hour)); len(ids) != 0 {
		t.Fatalf("fresh sessions must not be listed stale, got %v", ids)
	}

	cutoff := time.Now().Add(time.Hour)
	if ids := s.StaleSessions(cutoff); len(ids) != 2 {
		t.Fatalf("expected both sessions stale, got %v", ids)
	}

	if s.RemoveIfStale(first.ID, time.Now().Add(-time.Hour)) {
		t.Fatalf("session must survive a cutoff it postdates")
	}
	if !s.RemoveIfStale(first.ID, cutoff) {
		t.Fatalf("stale session must be removed")
	}
	if s.RemoveIfStale(first.ID, cutoff) {
		t.Fatalf("second removal must report false")
	}
	if !s.RemoveIfStale(second.ID, cutoff) {
		t.Fatalf("stale session must be removed")
	}
	if s.Count() != 0 {
		t.Fatalf("expected empty store after removals")
	}
}

func TestMergeExternalUpdatePreservesRecordedProgress(t *testing.T) {
	s := NewSessionStore(3)
	session := s.Create("", "")
	s.AppendQuestion(session.ID, newVideoQuestion("q1"))
	s.AppendQuestion(session.ID, newVideoQuestion("q2"))
	s.RecordAnswer(session.ID, 1, "my answer", false)
	s.RecordEvaluation(session.ID, 1, models.Evaluation{Score: 65, NextDifficulty: models.DifficultyMedium})

	// a stale echo: same questions, none of the recorded progress
	external := &models.InterviewSession{
		CurrentDifficulty: models.DifficultyMedium,
		Questions: []models.QuestionRecord{
			{ID: 1, Type: models.QuestionTypeVideo, Text: "q1", Difficulty: models.DifficultyMedium},
			{ID: 2, Type: models.QuestionTypeVideo, Text: "q2", Difficulty: models.DifficultyMedium},
		},
	}

	merged, err := s.MergeExternalUpdate(session.ID, external)
	if err != nil {
		t.Fatalf("MergeExternalUpdate failed: %v", err)
	}

	if merged.Questions[0].Answer == nil || *merged.Questions[0].Answer != "my answer" {
		t.Fatalf("merge must keep the recorded answer the payload omitted")
	}
	if merged.Questions[0].Evaluation == nil || merged.Questions[0].Evaluation.Score != 65 {
		t.Fatalf("merge must keep the recorded evaluation the payload omitted")
	}

	// a payload that does carry progress wins over the stored value
	freshAnswer := "revised answer"
	external.Questions[0].Answer = &freshAnswer
	merged, err = s.MergeExternalUpdate(session.ID, external)
	if err != nil {
		t.Fatalf("MergeExternalUpdate failed: %v", err)
	}
	if merged.Questions[0].Answer == nil || *merged.Questions[0].Answer != "revised answer" {
		t.Fatalf("payload-supplied answer must win, got %v", merged.Questions[0].Answer)
	}
}

func TestSnapshotsAreIsolated(t *testing.T) {
	s := NewSessionStore(3)
	session := s.Create("", "")
	s.AppendQuestion(session.ID, newVideoQuestion("q1"))

	snapshot, _ := s.Get(session.ID)
	snapshot.Questions[0].Text = "mutated"
	snapshot.CurrentDifficulty = models.DifficultyHard

	fresh, _ := s.Get(session.ID)
	if fresh.Questions[0].Text != "q1" || fresh.CurrentDifficulty != models.DifficultyMedium {
		t.Fatalf("snapshot mutation leaked into the store")
	}
}

func TestConcurrentAppendsKeepDenseIDs(t *testing.T) {
	s := NewSessionStore(3)
	session := s.Create("", "")

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(n int) {
			defer wg.Done()
			if _, err := s.AppendQuestion(session.ID, newVideoQuestion(fmt.Sprintf("q%d", n))); err != nil {
				t.Errorf("AppendQuestion failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	got, _ := s.Get(session.ID)
	if len(got.Questions) != workers {
		t.Fatalf("expected %d questions, got %d", workers, len(got.Questions))
	}
	for i, q := range got.Questions {
		if q.ID != i+1 {
			t.Fatalf("dense-id invariant broken under concurrency at index %d: id %d", i, q.ID)
		}
	}
}
