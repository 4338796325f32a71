package models

// StartResponse is returned by POST /interview/start.
type StartResponse struct {
	SessionID       string          `json:"sessionId"`
	Question        *QuestionRecord `json:"question"`
	TotalQuestions  int             `json:"totalQuestions"`
	CurrentQuestion int             `json:"currentQuestion"`
}

// AnswerResponse is returned by POST /interview/answer.
// NextQuestion is null only when the session has already run out of questions.
type AnswerResponse struct {
	Evaluation          *Evaluation     `json:"evaluation"`
	NextQuestion        *QuestionRecord `json:"nextQuestion"`
	IsLastVideoQuestion bool            `json:"isLastVideoQuestion"`
	CurrentQuestion     int             `json:"currentQuestion"`
	TotalQuestions      int             `json:"totalQuestions"`
}

// SubmitCodeResponse is returned by POST /interview/submit-code.
type SubmitCodeResponse struct {
	Review *CodeReview `json:"review"`
}

// CompleteResponse is returned by POST /interview/complete.
type CompleteResponse struct {
	Analysis *Analysis `json:"analysis"`
}

// SessionResponse is returned by the debug accessor GET /interview/session/{id}.
type SessionResponse struct {
	Session *InterviewSession `json:"session"`
}

// ErrorResponse is the uniform error body for all 4xx/5xx responses.
type ErrorResponse struct {
	Message string `json:"error"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}
