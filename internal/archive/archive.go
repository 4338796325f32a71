// Package archive persists completed interviews so their reports outlive
// the in-memory session store. The service runs fine without it; callers
// treat a nil *Store as "archival disabled".
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"mockmate/interview/internal/models"
)

var ErrReportNotFound = errors.New("report not found")

type Store struct {
	db *gorm.DB
}

// New migrates the report table and returns a ready archive.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&models.InterviewReport{}); err != nil {
		return nil, fmt.Errorf("migrate interview reports: %w", err)
	}
	return &Store{db: db}, nil
}

// Save archives a completed session. Saving the same session again
// overwrites the earlier report, matching the store's idempotent-complete
// semantics.
func (s *Store) Save(session *models.InterviewSession) error {
	if session.Analysis == nil || session.CompletedAt == nil {
		return errors.New("session is not completed")
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("serialize session: %w", err)
	}

	report := models.InterviewReport{
		SessionID:      session.ID,
		Role:           session.Role,
		Company:        session.Company,
		OverallScore:   session.Analysis.OverallScore,
		Recommendation: session.Analysis.Recommendation,
		TotalTime:      session.Analysis.TotalTime,
		Payload:        string(payload),
		CompletedAt:    *session.CompletedAt,
	}

	var existing models.InterviewReport
	err = s.db.Where("session_id = ?", session.ID).First(&existing).Error
	switch {
	case err == nil:
		report.ID = existing.ID
		report.CreatedAt = existing.CreatedAt
		if err := s.db.Save(&report).Error; err != nil {
			return fmt.Errorf("update report: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.db.Create(&report).Error; err != nil {
			return fmt.Errorf("store report: %w", err)
		}
	default:
		return fmt.Errorf("look up report: %w", err)
	}

	return nil
}

// Get retrieves one archived report by session id.
func (s *Store) Get(sessionID string) (*models.InterviewReport, error) {
	var report models.InterviewReport
	err := s.db.Where("session_id = ?", sessionID).First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	return &report, nil
}

// Session decodes the archived session payload of a report.
func (s *Store) Session(report *models.InterviewReport) (*models.InterviewSession, error) {
	var session models.InterviewSession
	if err := json.Unmarshal([]byte(report.Payload), &session); err != nil {
		return nil, fmt.Errorf("decode archived session: %w", err)
	}
	return &session, nil
}

// List returns the most recently completed reports, newest first.
func (s *Store) List(limit int) ([]models.InterviewReport, error) {
	if limit <= 0 {
		limit = 20
	}
	var reports []models.InterviewReport
	if err := s.db.Order("completed_at DESC").Limit(limit).Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// CompletedSince counts reports archived after the given time, used by the
// readiness probe as a cheap connectivity check.
func (s *Store) CompletedSince(since time.Time) (int64, error) {
	var count int64
	if err := s.db.Model(&models.InterviewReport{}).Where("completed_at >= ?", since).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return count, nil
}
