package river

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"
)

// EventWorker processes booking event jobs from the River queue. For now
// it logs the event; notification delivery is the job of the external
// notification service once it consumes this queue.
type EventWorker struct {
	river.WorkerDefaults[EventJobArgs]
}

// Work processes a single event job.
func (w *EventWorker) Work(ctx context.Context, job *river.Job[EventJobArgs]) error {
	slog.InfoContext(ctx, "processing booking event",
		"event", job.Args.Event,
		"request_id", job.Args.RequestID,
		"user_id", job.Args.UserID,
		"unit_id", job.Args.UnitID,
		"status", job.Args.Status,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return nil
}
