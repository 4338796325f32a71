package models

// StartRequest begins a new interview session.
// Both fields are optional free-text context for the interviewer agent.
type StartRequest struct {
	Role    string `json:"role"`
	Company string `json:"company"`
}

func (r *StartRequest) Validate() error {
	if r.Role == "" {
		r.Role = "Software Engineer"
	}
	return nil
}

// AnswerRequest submits a transcript (or a skip) for a video question.
type AnswerRequest struct {
	SessionID  string `json:"sessionId"`
	QuestionID int    `json:"questionId"`
	Transcript string `json:"transcript"`
	Skipped    bool   `json:"skipped"`
}

func (r *AnswerRequest) Validate() error {
	if r.SessionID == "" {
		return &ErrorResponse{Message: "sessionId is required"}
	}
	if r.QuestionID == 0 {
		return &ErrorResponse{Message: "questionId is required"}
	}
	return nil
}

// SubmitCodeRequest submits a solution for the coding question.
type SubmitCodeRequest struct {
	SessionID  string `json:"sessionId"`
	QuestionID int    `json:"questionId"`
	Code       string `json:"code"`
	Language   string `json:"language"`
}

func (r *SubmitCodeRequest) Validate() error {
	if r.SessionID == "" {
		return &ErrorResponse{Message: "sessionId is required"}
	}
	if r.QuestionID == 0 {
		return &ErrorResponse{Message: "questionId is required"}
	}
	if r.Code == "" {
		return &ErrorResponse{Message: "code is required"}
	}
	return nil
}

// CompleteRequest ends a session and requests the final analysis.
type CompleteRequest struct {
	SessionID string `json:"sessionId"`
}

func (r *CompleteRequest) Validate() error {
	if r.SessionID == "" {
		return &ErrorResponse{Message: "sessionId is required"}
	}
	return nil
}
