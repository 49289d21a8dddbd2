package jobs

import (
	"context"
	"sync"
	"time"
)

// Type represents job type.
type Type string

const (
	TypePickFiles     Type = "pick-files"
	TypePickDirectory Type = "pick-directory"
	TypeSaveFile      Type = "save-file"
	TypeRestore       Type = "restore"
	TypeImport        Type = "import"
)

// Status represents job status.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// Func is the work a job performs. It must return once ctx is done.
type Func func(ctx context.Context) error

// Job holds a single queued pick operation.
type Job struct {
	// immutable fields
	ID    int64
	Type  Type
	Label string // shown in job lists, e.g. the accepted extensions
	run   Func

	// state
	mu          sync.RWMutex
	Status      Status
	Message     string
	Error       string
	EnqueuedAt  time.Time
	StartedAt   time.Time
	CompletedAt time.Time

	// cancellation
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// SetMessage records a progress note visible in snapshots.
func (j *Job) SetMessage(msg string) {
	j.mu.Lock()
	j.Message = msg
	j.mu.Unlock()
}

// Done is closed once the job reaches a final status.
func (j *Job) Done() <-chan struct{} { return j.done }

// Wait blocks until the job finishes or ctx is done and returns the final
// snapshot.
func (j *Job) Wait(ctx context.Context) (JobSnapshot, error) {
	select {
	case <-j.done:
		return j.Snapshot(), nil
	case <-ctx.Done():
		return j.Snapshot(), ctx.Err()
	}
}

// Snapshot returns a copy of important fields for UI.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return JobSnapshot{
		ID:          j.ID,
		Type:        j.Type,
		Label:       j.Label,
		Status:      j.Status,
		Message:     j.Message,
		Error:       j.Error,
		EnqueuedAt:  j.EnqueuedAt,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
	}
}

// JobSnapshot is a read-only view for UI.
type JobSnapshot struct {
	ID          int64
	Type        Type
	Label       string
	Status      Status
	Message     string
	Error       string
	EnqueuedAt  time.Time
	StartedAt   time.Time
	CompletedAt time.Time
}

// Finished reports whether the job reached a final status.
func (s JobSnapshot) Finished() bool {
	switch s.Status {
	case StatusCompleted, StatusFailed, StatusCanceled:
		return true
	}
	return false
}
