package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"pickfs/internal/logging"
)

// Manager serializes pick operations on a single worker. Hosts show one
// dialog at a time, so every pick goes through the queue.
type Manager struct {
	mu          sync.Mutex
	cond        *sync.Cond
	queue       []*Job
	closed      bool
	nextID      int64
	subscribers []func()
	current     *Job
	history     []*Job
	historyMax  int
	log         *zap.Logger
	stopped     chan struct{}
}

// DefaultHistory is the number of finished jobs kept for List.
const DefaultHistory = 100

// NewManager constructs and starts a Manager.
func NewManager(log *zap.Logger) *Manager {
	m := &Manager{
		historyMax: DefaultHistory,
		log:        logging.OrNop(log).Named("jobs"),
		stopped:    make(chan struct{}),
	}
	m.cond = sync.NewCond(&m.mu)
	go m.worker()
	m.log.Debug("manager created; worker started")
	return m
}

// Subscribe registers a callback called on state changes. Callbacks run on
// the worker goroutine; UI code must marshal to its own thread.
func (m *Manager) Subscribe(cb func()) {
	m.mu.Lock()
	m.subscribers = append(m.subscribers, cb)
	n := len(m.subscribers)
	m.mu.Unlock()
	m.log.Debug("subscriber added", zap.Int("total", n))
}

func (m *Manager) notify() {
	// call without holding the lock to avoid re-entrancy
	m.mu.Lock()
	subs := append([]func(){}, m.subscribers...)
	m.mu.Unlock()
	for _, cb := range subs {
		cb()
	}
}

// Enqueue adds a job running fn. It fails only after Close.
func (m *Manager) Enqueue(t Type, label string, fn Func) (*Job, error) {
	if fn == nil {
		return nil, fmt.Errorf("jobs: nil func for %s", t)
	}
	j := &Job{
		ID:         atomic.AddInt64(&m.nextID, 1),
		Type:       t,
		Label:      label,
		run:        fn,
		Status:     StatusPending,
		EnqueuedAt: time.Now(),
		done:       make(chan struct{}),
	}
	j.ctx, j.cancel = context.WithCancel(context.Background())

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		j.cancel()
		return nil, ErrClosed
	}
	m.queue = append(m.queue, j)
	m.mu.Unlock()
	m.log.Debug("enqueue", zap.Int64("id", j.ID), zap.String("type", string(t)), zap.String("label", label))
	m.notify()
	m.cond.Signal()
	return j, nil
}

// Run enqueues fn and waits for it. A ctx that ends while waiting cancels
// the job.
func (m *Manager) Run(ctx context.Context, t Type, label string, fn Func) error {
	j, err := m.Enqueue(t, label, fn)
	if err != nil {
		return err
	}
	snap, err := j.Wait(ctx)
	if err != nil {
		m.Cancel(j.ID)
		return err
	}
	switch snap.Status {
	case StatusCanceled:
		return context.Canceled
	case StatusFailed:
		return errors.New(snap.Error)
	}
	return nil
}

// Cancel cancels a job by ID.
func (m *Manager) Cancel(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	// pending in queue
	for i, j := range m.queue {
		if j.ID == id {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			j.finish(StatusCanceled, "")
			m.log.Debug("cancel pending", zap.Int64("id", id))
			m.addHistoryLocked(j)
			go m.notify()
			return true
		}
	}
	// currently running
	if m.current != nil && m.current.ID == id {
		m.current.cancel()
		m.log.Debug("cancel running", zap.Int64("id", id))
		go m.notify()
		return true
	}
	return false
}

// List returns snapshots: the running job first, then pending jobs, then
// history newest first.
func (m *Manager) List() []JobSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]JobSnapshot, 0, len(m.queue)+1+len(m.history))
	if m.current != nil {
		out = append(out, m.current.Snapshot())
	}
	for _, j := range m.queue {
		out = append(out, j.Snapshot())
	}
	for i := len(m.history) - 1; i >= 0; i-- {
		out = append(out, m.history[i].Snapshot())
	}
	return out
}

// Close cancels pending and running jobs and stops the worker.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		<-m.stopped
		return
	}
	m.closed = true
	pending := m.queue
	m.queue = nil
	for _, j := range pending {
		j.finish(StatusCanceled, "")
		m.addHistoryLocked(j)
	}
	if m.current != nil {
		m.current.cancel()
	}
	m.mu.Unlock()
	m.cond.Broadcast()
	<-m.stopped
	m.log.Debug("manager closed", zap.Int("dropped", len(pending)))
}

func (m *Manager) worker() {
	defer close(m.stopped)
	for {
		m.mu.Lock()
		for len(m.queue) == 0 && !m.closed {
			m.cond.Wait()
		}
		if m.closed {
			m.mu.Unlock()
			return
		}
		// pop head
		j := m.queue[0]
		m.queue = m.queue[1:]
		m.current = j
		m.mu.Unlock()

		j.mu.Lock()
		j.Status = StatusRunning
		j.StartedAt = time.Now()
		j.mu.Unlock()
		m.log.Debug("start job", zap.Int64("id", j.ID), zap.String("type", string(j.Type)))
		m.notify()

		err := m.runJob(j)
		switch {
		case err == nil:
			j.finish(StatusCompleted, "")
			m.log.Debug("job completed", zap.Int64("id", j.ID))
		case j.ctx.Err() != nil || errors.Is(err, context.Canceled):
			j.finish(StatusCanceled, "")
			m.log.Debug("job canceled", zap.Int64("id", j.ID))
		default:
			j.finish(StatusFailed, err.Error())
			m.log.Warn("job failed", zap.Int64("id", j.ID), zap.Error(err))
		}

		m.mu.Lock()
		m.current = nil
		m.addHistoryLocked(j)
		m.mu.Unlock()
		m.notify()
	}
}

// runJob runs one job, converting a panic into a failure so the worker
// survives misbehaving host code.
func (m *Manager) runJob(j *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	defer j.cancel()
	return j.run(j.ctx)
}

// addHistoryLocked appends a finished job to history and trims oldest; caller must hold m.mu
func (m *Manager) addHistoryLocked(j *Job) {
	m.history = append(m.history, j)
	if m.historyMax > 0 && len(m.history) > m.historyMax {
		drop := len(m.history) - m.historyMax
		m.history = append([]*Job{}, m.history[drop:]...)
	}
}

// ErrClosed is returned by Enqueue after Close.
var ErrClosed = errors.New("jobs: manager closed")

func (j *Job) finish(s Status, msg string) {
	j.mu.Lock()
	j.Status = s
	j.Error = msg
	j.CompletedAt = time.Now()
	j.mu.Unlock()
	j.cancel()
	close(j.done)
}
