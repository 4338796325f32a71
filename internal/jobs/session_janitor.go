package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// SessionPruner removes sessions started before the cutoff and returns how
// many were dropped. Implemented by the orchestrator, whose prune respects
// in-flight operations.
type SessionPruner interface {
	Prune(cutoff time.Time) int
}

// SessionJanitor periodically drops sessions that have outlived their
// usefulness: completed ones already handed to the archive, and abandoned
// ones whose candidate never came back.
type SessionJanitor struct {
	sessions SessionPruner
	config   *JanitorConfig
	cron     *cron.Cron
}

// JanitorConfig contains configuration for the janitor job.
type JanitorConfig struct {
	Schedule      string        // cron schedule (e.g. "*/30 * * * *")
	MaxSessionAge time.Duration // sessions started earlier than this are dropped
	Enabled       bool
}

// NewSessionJanitor creates a new janitor job.
func NewSessionJanitor(sessions SessionPruner, config *JanitorConfig) *SessionJanitor {
	return &SessionJanitor{
		sessions: sessions,
		config:   config,
		cron:     cron.New(),
	}
}

// Start begins the scheduled prune job.
func (sj *SessionJanitor) Start() error {
	if !sj.config.Enabled {
		log.Println("Session janitor is disabled, skipping scheduler")
		return nil
	}

	log.Printf("Starting session janitor with schedule: %s", sj.config.Schedule)

	_, err := sj.cron.AddFunc(sj.config.Schedule, func() {
		sj.RunPrune()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule janitor job: %w", err)
	}

	sj.cron.Start()
	return nil
}

// Stop stops the scheduled prune job.
func (sj *SessionJanitor) Stop() {
	if sj.cron != nil {
		sj.cron.Stop()
		log.Println("Session janitor stopped")
	}
}

// RunPrune performs a single prune pass.
func (sj *SessionJanitor) RunPrune() int {
	cutoff := time.Now().Add(-sj.config.MaxSessionAge)
	removed := sj.sessions.Prune(cutoff)
	if removed > 0 {
		log.Printf("Session janitor removed %d stale sessions", removed)
	}
	return removed
}
