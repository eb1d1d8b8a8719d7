package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/stormgraph/pkg/logger"

	"github.com/google/uuid"
)

const (
	ProgressRetrieving = 10
	ProgressExtracting = 30
	ProgressStoring    = 70
	ProgressDone       = 100
)

// Tracker enforces the job state machine on top of a Store:
//
//	queued -> running -> running ... -> done
//	queued | running -> error
//
// done and error are terminal.
type Tracker struct {
	store Store
	now   func() time.Time
}

func NewTracker(store Store) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// NewJobID returns a fresh job identifier.
func NewJobID() string {
	return "job-" + uuid.NewString()
}

// Enqueue creates a queued job for docID.
func (t *Tracker) Enqueue(ctx context.Context, docID string) (Job, error) {
	now := t.now().UTC()
	job := Job{
		ID:        NewJobID(),
		DocID:     docID,
		Status:    StatusQueued,
		Progress:  0,
		Message:   "Job queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.store.Create(ctx, job); err != nil {
		return Job{}, fmt.Errorf("failed to create job: %w", err)
	}
	logger.Debug("[Jobs] Job queued", "job_id", job.ID, "doc_id", docID)
	return job, nil
}

func (t *Tracker) Get(ctx context.Context, id string) (Job, error) {
	return t.store.Get(ctx, id)
}

// Advance moves the job to running with the given progress.
func (t *Tracker) Advance(ctx context.Context, id string, progress int, message string) error {
	return t.transition(ctx, id, StatusRunning, progress, message)
}

// Complete finishes the job successfully.
func (t *Tracker) Complete(ctx context.Context, id string, message string) error {
	return t.transition(ctx, id, StatusDone, ProgressDone, message)
}

// Fail finishes the job with an error. Progress is reset to 0.
func (t *Tracker) Fail(ctx context.Context, id string, message string) error {
	return t.transition(ctx, id, StatusError, 0, message)
}

func (t *Tracker) transition(ctx context.Context, id string, status Status, progress int, message string) error {
	job, err := t.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if job.Status.Terminal() {
		return fmt.Errorf("%w: %s is %s", ErrJobTerminal, id, job.Status)
	}
	if err := checkTransition(job, status, progress); err != nil {
		return err
	}

	job.Status = status
	job.Progress = progress
	job.Message = message
	job.UpdatedAt = t.now().UTC()
	if err := t.store.Update(ctx, job); err != nil {
		return fmt.Errorf("failed to update job %s: %w", id, err)
	}
	logger.Debug("[Jobs] Job updated", "job_id", id, "status", status, "progress", progress)
	return nil
}

func checkTransition(job Job, next Status, progress int) error {
	if progress < 0 || progress > 100 {
		return fmt.Errorf("%w: progress %d out of range", ErrInvalidTransition, progress)
	}
	switch next {
	case StatusRunning:
		if job.Status == StatusRunning && progress < job.Progress {
			return fmt.Errorf("%w: progress %d below %d", ErrInvalidTransition, progress, job.Progress)
		}
		return nil
	case StatusDone:
		if job.Status != StatusRunning {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, job.Status, next)
		}
		return nil
	case StatusError:
		return nil
	}
	return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, job.Status, next)
}
