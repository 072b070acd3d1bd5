package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"attendly/models"

	"github.com/hibiken/asynq"
)

const TypeReconcileOccurrence = "occurrence:reconcile"

// NewReconcileTask builds the post-event reconciliation task for an occurrence.
// The task id is derived from the occurrence so re-enqueueing is idempotent.
func NewReconcileTask(occurrenceID string, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	payload := models.ReconcilePayload{
		OccurrenceID: occurrenceID,
		FireDate:     fireAt.UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeReconcileOccurrence, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(ReconcileTaskID(occurrenceID, fireAt)),
		asynq.MaxRetry(5),
	}
	return task, opts, nil
}

// ReconcileTaskID keys the task on occurrence and fire time; moving an
// occurrence schedules a fresh task and the stale one finds nothing to do.
func ReconcileTaskID(occurrenceID string, fireAt time.Time) string {
	return fmt.Sprintf("reconcile:%s:%d", occurrenceID, fireAt.Unix())
}

// ParseReconcilePayload decodes a task body.
func ParseReconcilePayload(task *asynq.Task) (models.ReconcilePayload, error) {
	var p models.ReconcilePayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid reconcile payload: %w", err)
	}
	if p.OccurrenceID == "" {
		return p, errors.New("reconcile payload has no occurrenceId")
	}
	return p, nil
}

// Enqueuer schedules reconciliation for an occurrence.
type Enqueuer interface {
	EnqueueReconcile(ctx context.Context, occurrenceID string, fireAt time.Time) error
}

// AsynqEnqueuer enqueues onto the asynq Redis queue.
type AsynqEnqueuer struct {
	Client *asynq.Client
}

func NewAsynqEnqueuer(client *asynq.Client) *AsynqEnqueuer {
	return &AsynqEnqueuer{Client: client}
}

func (e *AsynqEnqueuer) EnqueueReconcile(ctx context.Context, occurrenceID string, fireAt time.Time) error {
	task, opts, err := NewReconcileTask(occurrenceID, fireAt)
	if err != nil {
		return err
	}
	if _, err := e.Client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("failed to enqueue reconcile task: %w", err)
	}
	return nil
}

// NoopEnqueuer drops every request. Used when no queue is configured.
type NoopEnqueuer struct{}

func (NoopEnqueuer) EnqueueReconcile(context.Context, string, time.Time) error { return nil }
