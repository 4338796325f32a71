package models

import (
	"time"

	"gorm.io/gorm"
)

// InterviewReport is the archived record of a completed interview.
// The full session (questions, answers, scores) is stored as serialized JSON
// so the report endpoint can replay it without keeping the session in memory.
type InterviewReport struct {
	gorm.Model
	SessionID      string    `gorm:"uniqueIndex;not null" json:"session_id"`
	Role           string    `gorm:"not null" json:"role"`
	Company        string    `json:"company"`
	OverallScore   int       `gorm:"not null" json:"overall_score"`
	Recommendation string    `gorm:"not null" json:"recommendation"`
	TotalTime      string    `gorm:"not null" json:"total_time"`
	Payload        string    `gorm:"type:text;not null" json:"-"`
	CompletedAt    time.Time `gorm:"not null;index" json:"completed_at"`
}
