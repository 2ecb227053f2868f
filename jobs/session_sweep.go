package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/advotecate/advotecate/internal/jobs"
	"github.com/advotecate/advotecate/internal/session"
)

// SessionSweepJob removes dangling session ids from per-user session sets.
// Redis expires session records on its own; set memberships linger until
// this job or an authenticated read cleans them up.
type SessionSweepJob struct {
	sessions *session.Manager
	logger   *slog.Logger
	metrics  *jobmetrics.Metrics
}

// NewSessionSweepJob constructs the sweep job. Metrics may be nil.
func NewSessionSweepJob(sessions *session.Manager, logger *slog.Logger, metrics *jobmetrics.Metrics) *SessionSweepJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionSweepJob{sessions: sessions, logger: logger, metrics: metrics}
}

// Handle processes TaskSessionSweep tasks.
func (j *SessionSweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SessionSweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := j.metrics.Track(TaskSessionSweep)
	removed, err := j.sessions.Sweep(ctx)
	if err != nil {
		j.logger.Error("session sweep", slog.Any("error", err))
		return tracker.End(err)
	}
	j.metrics.AddSweptSessions(removed)
	j.logger.Info("session sweep complete", slog.Int("removed", removed))
	return tracker.End(nil)
}
