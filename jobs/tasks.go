package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/manzil-travel/manzil-console/internal/audit"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeAssignmentAudit records a permission assignment.
	TaskTypeAssignmentAudit = "audit:assignment"
)

// NewAssignmentAuditTask constructs an Asynq task for one assignment.
func NewAssignmentAuditTask(rec audit.Assignment) (*asynq.Task, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAssignmentAudit, data), nil
}

// AssignmentRecorder is the persistence slice the audit job needs.
type AssignmentRecorder interface {
	Record(ctx context.Context, a audit.Assignment) error
}

// AssignmentAuditJob processes TaskTypeAssignmentAudit tasks.
type AssignmentAuditJob struct {
	recorder AssignmentRecorder
	logger   *slog.Logger
}

// NewAssignmentAuditJob wires the job with its recorder.
func NewAssignmentAuditJob(recorder AssignmentRecorder, logger *slog.Logger) *AssignmentAuditJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssignmentAuditJob{recorder: recorder, logger: logger}
}

// Handle records the assignment. Malformed payloads and duplicate
// deliveries are not retried.
func (j *AssignmentAuditJob) Handle(ctx context.Context, t *asynq.Task) error {
	var rec audit.Assignment
	if err := json.Unmarshal(t.Payload(), &rec); err != nil {
		j.logger.Error("assignment audit payload", slog.Any("error", err))
		return asynq.SkipRetry
	}
	if err := j.recorder.Record(ctx, rec); err != nil {
		if errors.Is(err, audit.ErrDuplicate) {
			j.logger.Info("assignment audit duplicate", slog.String("id", rec.ID.String()))
			return nil
		}
		return err
	}
	j.logger.Info("assignment audit recorded",
		slog.String("id", rec.ID.String()),
		slog.Int64("group_id", rec.GroupID),
	)
	return nil
}
