package models

import "time"

// Question types
const (
	QuestionTypeVideo = "video"
	QuestionTypeCode  = "code"
)

// Difficulty levels, ordered easy < medium < hard
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// DefaultTotalVideoQuestions is the number of spoken questions asked before
// the single trailing coding question.
const DefaultTotalVideoQuestions = 3

// StarterCodePlaceholder is the editor placeholder shipped with coding
// questions. Submissions equal to it are treated as "no code submitted".
const StarterCodePlaceholder = "// Write your solution here"

// InterviewSession is one candidate's complete interview run.
type InterviewSession struct {
	ID                   string           `json:"id"`
	Role                 string           `json:"role"`
	Company              string           `json:"company"`
	CurrentDifficulty    string           `json:"currentDifficulty"`
	CurrentQuestionIndex int              `json:"currentQuestionIndex"`
	TotalVideoQuestions  int              `json:"totalVideoQuestions"`
	Questions            []QuestionRecord `json:"questions"`
	StartedAt            time.Time        `json:"startedAt"`
	CompletedAt          *time.Time       `json:"completedAt,omitempty"`
	Analysis             *Analysis        `json:"analysis,omitempty"`
}

// QuestionRecord is one question instance with its eventual answer and scoring.
// IDs are 1-based and dense: Questions[i].ID == i+1 at all times.
type QuestionRecord struct {
	ID          int         `json:"id"`
	Type        string      `json:"type"`
	Text        string      `json:"text"`
	Title       string      `json:"title"`
	Difficulty  string      `json:"difficulty"`
	StarterCode string      `json:"starterCode,omitempty"`
	Language    string      `json:"language,omitempty"`
	Answer      *string     `json:"answer,omitempty"`
	Skipped     bool        `json:"skipped,omitempty"`
	Evaluation  *Evaluation `json:"evaluation,omitempty"`
	CodeReview  *CodeReview `json:"codeReview,omitempty"`
}

// Answered reports whether the candidate has responded to the question,
// either with content or by skipping it.
func (q *QuestionRecord) Answered() bool {
	return q.Answer != nil || q.Skipped
}

// Clone returns a deep copy of the session. The store hands out clones so
// callers can never mutate canonical state behind its back.
func (s *InterviewSession) Clone() *InterviewSession {
	if s == nil {
		return nil
	}
	out := *s
	out.Questions = make([]QuestionRecord, len(s.Questions))
	for i := range s.Questions {
		out.Questions[i] = *s.Questions[i].Clone()
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		out.CompletedAt = &t
	}
	out.Analysis = s.Analysis.Clone()
	return &out
}

// Clone returns a deep copy of the question record.
func (q *QuestionRecord) Clone() *QuestionRecord {
	if q == nil {
		return nil
	}
	out := *q
	if q.Answer != nil {
		a := *q.Answer
		out.Answer = &a
	}
	if q.Evaluation != nil {
		e := *q.Evaluation
		e.Strengths = append([]string(nil), q.Evaluation.Strengths...)
		e.Weaknesses = append([]string(nil), q.Evaluation.Weaknesses...)
		out.Evaluation = &e
	}
	if q.CodeReview != nil {
		r := *q.CodeReview
		r.Strengths = append([]string(nil), q.CodeReview.Strengths...)
		r.Issues = append([]string(nil), q.CodeReview.Issues...)
		out.CodeReview = &r
	}
	return &out
}

// Clone returns a deep copy of the analysis.
func (a *Analysis) Clone() *Analysis {
	if a == nil {
		return nil
	}
	out := *a
	out.SkillScores = append([]SkillScore(nil), a.SkillScores...)
	out.Feedback = append([]FeedbackItem(nil), a.Feedback...)
	return &out
}

// Evaluation scores a single answered (or skipped) video question.
type Evaluation struct {
	Score          int      `json:"score"`
	NextDifficulty string   `json:"nextDifficulty"`
	Strengths      []string `json:"strengths"`
	Weaknesses     []string `json:"weaknesses"`
	Brief          string   `json:"brief"`
}

// CodeReview scores the coding question after submission.
type CodeReview struct {
	Score           int      `json:"score"`
	Correctness     bool     `json:"correctness"`
	TimeComplexity  string   `json:"timeComplexity"`
	SpaceComplexity string   `json:"spaceComplexity"`
	Strengths       []string `json:"strengths"`
	Issues          []string `json:"issues"`
	Brief           string   `json:"brief"`
}

// Analysis is the final report produced when a session completes.
type Analysis struct {
	OverallScore   int            `json:"overallScore"`
	Recommendation string         `json:"recommendation"`
	TotalTime      string         `json:"totalTime"`
	SkillScores    []SkillScore   `json:"skillScores"`
	Feedback       []FeedbackItem `json:"feedback"`
	Summary        string         `json:"summary,omitempty"`
}

type SkillScore struct {
	Skill string `json:"skill"`
	Score int    `json:"score"`
}

// FeedbackItem is one line of the final report's feedback section.
// Type is "strength" or "improvement".
type FeedbackItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

const (
	FeedbackStrength    = "strength"
	FeedbackImprovement = "improvement"
)

// Recommendation labels used by the analyst agent and the local fallback.
const (
	RecommendationStrongHire = "Strong Hire"
	RecommendationHire       = "Hire"
	RecommendationMaybe      = "Maybe"
	RecommendationNoHire     = "No Hire"
)

// ValidDifficulties contains all difficulty levels (in lowercase).
var ValidDifficulties = map[string]bool{
	DifficultyEasy:   true,
	DifficultyMedium: true,
	DifficultyHard:   true,
}
