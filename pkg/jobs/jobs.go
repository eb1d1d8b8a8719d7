package jobs

import (
	"context"
	"errors"
	"time"
)

var (
	ErrJobNotFound = errors.New("job not found")
	// ErrJobTerminal is returned when a finished job is updated again.
	ErrJobTerminal       = errors.New("job already finished")
	ErrInvalidTransition = errors.New("invalid job transition")
)

type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// Job is the progress record of one extraction run.
type Job struct {
	ID        string    `json:"job_id"`
	DocID     string    `json:"doc_id"`
	Status    Status    `json:"status"`
	Progress  int       `json:"progress"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists job records. Implementations must allow concurrent readers;
// every job has a single writer.
type Store interface {
	// Create stores a new job. Creating an existing id is an error.
	Create(ctx context.Context, job Job) error
	// Update replaces a stored job. It returns ErrJobNotFound for unknown ids.
	Update(ctx context.Context, job Job) error
	// Get returns ErrJobNotFound for unknown ids.
	Get(ctx context.Context, id string) (Job, error)
	Close() error
}
