package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionSweep repairs per-user session sets after redis expiry.
	TaskSessionSweep = "session:sweep"
)

// SessionSweepPayload is currently empty; it exists so the task schema can
// grow without changing the task type.
type SessionSweepPayload struct{}

// NewSessionSweepTask constructs an Asynq task for the session sweep.
func NewSessionSweepTask() (*asynq.Task, error) {
	data, err := json.Marshal(SessionSweepPayload{})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionSweep, data, asynq.Queue(QueueDefault)), nil
}
