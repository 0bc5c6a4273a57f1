package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TaskFn is the function signature for scheduled tasks. The context is
// cancelled when the task is removed or the scheduler stops.
type TaskFn func(ctx context.Context) error

// TaskInfo is a snapshot of one registered task.
type TaskInfo struct {
	Name      string        `json:"name"`
	Interval  time.Duration `json:"interval"`
	Runs      int64         `json:"runs"`
	Failures  int64         `json:"failures"`
	LastRun   *time.Time    `json:"last_run,omitempty"`
	LastError string        `json:"last_error,omitempty"`
}

// Scheduler runs named tasks on fixed intervals.
type Scheduler struct {
	mu      sync.Mutex
	tasks   map[string]*task
	logger  *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
}

type task struct {
	name     string
	interval time.Duration
	fn       TaskFn
	cancel   context.CancelFunc
	runMu    sync.Mutex // one run at a time per task

	statMu   sync.Mutex
	runs     int64
	failures int64
	lastRun  time.Time
	lastErr  string
}

// New creates a new Scheduler. Each run is bounded by runTimeout
// (0 means one minute).
func New(logger *zap.Logger, runTimeout time.Duration) *Scheduler {
	if runTimeout <= 0 {
		runTimeout = time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		tasks:   make(map[string]*task),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		timeout: runTimeout,
	}
}

// AddTicker registers a task to run on a fixed interval.
// If a task with the same name exists, it is replaced.
func (s *Scheduler) AddTicker(name string, interval time.Duration, fn TaskFn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.tasks[name]; ok {
		old.cancel()
		delete(s.tasks, name)
	}

	ctx, cancel := context.WithCancel(s.ctx)
	t := &task{name: name, interval: interval, fn: fn, cancel: cancel}
	s.tasks[name] = t

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.run(ctx, t)
			case <-ctx.Done():
				return
			}
		}
	}()
	s.logger.Info("scheduler task registered", zap.String("name", name), zap.Duration("interval", interval))
}

// RunNow runs a registered task immediately on the caller's goroutine and
// returns its error.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	t, ok := s.tasks[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("scheduler: no task %q", name)
	}
	return s.run(ctx, t)
}

func (s *Scheduler) run(ctx context.Context, t *task) (err error) {
	t.runMu.Lock()
	defer t.runMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduler task panicked",
				zap.String("task", t.name),
				zap.Any("recover", r))
			err = fmt.Errorf("scheduler: task %q panicked: %v", t.name, r)
		}
		t.record(err)
	}()

	err = t.fn(ctx)
	if err != nil {
		s.logger.Warn("scheduler task failed", zap.String("task", t.name), zap.Error(err))
	}
	return err
}

func (t *task) record(err error) {
	t.statMu.Lock()
	defer t.statMu.Unlock()
	t.runs++
	t.lastRun = time.Now()
	t.lastErr = ""
	if err != nil {
		t.failures++
		t.lastErr = err.Error()
	}
}

func (t *task) info() TaskInfo {
	t.statMu.Lock()
	defer t.statMu.Unlock()
	ti := TaskInfo{Name: t.name, Interval: t.interval, Runs: t.runs, Failures: t.failures, LastError: t.lastErr}
	if !t.lastRun.IsZero() {
		last := t.lastRun
		ti.LastRun = &last
	}
	return ti
}

// Remove stops and removes a task by name.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[name]; ok {
		t.cancel()
		delete(s.tasks, name)
	}
}

// Stop stops all tasks. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.cancel()
}

// Tasks returns a snapshot of every registered task, sorted by name.
func (s *Scheduler) Tasks() []TaskInfo {
	s.mu.Lock()
	tasks := make([]*task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, t)
	}
	s.mu.Unlock()

	out := make([]TaskInfo, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
