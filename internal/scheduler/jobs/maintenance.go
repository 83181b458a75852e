package jobs

import (
	"context"

	"github.com/wonny/stockmarket/internal/session"
	"github.com/wonny/stockmarket/pkg/logger"
)

// SessionCleanupJob drops idle viewing sessions
type SessionCleanupJob struct {
	sessions *session.Manager
	logger   *logger.Logger
}

// NewSessionCleanupJob creates a new session cleanup job
func NewSessionCleanupJob(sessions *session.Manager, log *logger.Logger) *SessionCleanupJob {
	return &SessionCleanupJob{
		sessions: sessions,
		logger:   log,
	}
}

// Name returns the job name
func (j *SessionCleanupJob) Name() string {
	return "session_cleanup"
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *SessionCleanupJob) Schedule() string {
	return "0 */5 * * * *"
}

// Run executes the session cleanup
func (j *SessionCleanupJob) Run(ctx context.Context) error {
	count := j.sessions.Expire()

	if count > 0 {
		j.logger.WithFields(map[string]interface{}{
			"removed": count,
			"open":    j.sessions.Len(),
		}).Info("Session cleanup completed")
	}

	return nil
}
