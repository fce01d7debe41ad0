// Package tasks implements the single-worker background pipeline: a FIFO
// queue of functions drained by one dedicated goroutine, with successful
// results scheduled back onto the owning goroutine as callbacks.
//
// The contract mirrors the rest of the core's threading model: the worker
// computes on its own inputs and never touches shared state; the owning
// goroutine drains Callbacks() and is the only place callbacks run. Task
// failures are swallowed at the worker boundary (logged, callback never
// fires). There is no cancellation and no per-task timeout: a hung task
// stalls every task queued behind it.
package tasks

import (
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
)

// State is the observable worker state.
type State int

const (
	// StateIdle means the worker is blocked waiting for tasks.
	StateIdle State = iota
	// StateExecuting means the worker is running a task function.
	StateExecuting
	// StateSchedulingCallback means the worker is handing a result to the
	// owning goroutine.
	StateSchedulingCallback
	// StateStopped means the worker has exited.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateExecuting:
		return "executing"
	case StateSchedulingCallback:
		return "scheduling-callback"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// LogLevel controls worker event log verbosity (GRID_WORKER_LOG_LEVEL).
type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelError:
		return "error"
	case LogLevelWarn:
		return "warn"
	case LogLevelInfo:
		return "info"
	case LogLevelDebug:
		return "debug"
	default:
		return "none"
	}
}

func parseLogLevel(raw string) LogLevel {
	switch strings.TrimSpace(strings.ToLower(raw)) {
	case "error", "err", "1":
		return LogLevelError
	case "warn", "warning", "2":
		return LogLevelWarn
	case "info", "3":
		return LogLevelInfo
	case "debug", "4":
		return LogLevelDebug
	default:
		return LogLevelNone
	}
}

// TaskError wraps a task failure with its name and time.
type TaskError struct {
	Task  string
	Cause error
	Time  time.Time
}

func (e TaskError) Error() string {
	return fmt.Sprintf("task %s failed: %v", e.Task, e.Cause)
}

func (e TaskError) Unwrap() error {
	return e.Cause
}

// task is owned by the queue until dequeued, then by the worker until its
// callback is scheduled.
type task struct {
	name     string
	run      func() (any, error)
	callback func(any)
}

// Option configures a Queue.
type Option func(*Queue)

// WithCallbackBuffer sets the buffer of the callback channel (default 8).
func WithCallbackBuffer(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.cbBuffer = n
		}
	}
}

// WithStopTimeout bounds how long Stop waits for the worker to drain.
func WithStopTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.stopTimeout = d
		}
	}
}

// Queue is the single-worker task pipeline.
type Queue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	pending  []task
	state    State
	started  bool
	stopping bool

	cbBuffer    int
	stopTimeout time.Duration
	cbCh        chan func()
	done        chan struct{}

	executed  atomic.Uint64
	failed    atomic.Uint64
	lastError atomic.Pointer[TaskError]

	logLevel LogLevel
	seq      atomic.Uint64
}

// New creates a queue. Call Start before submitting.
func New(opts ...Option) *Queue {
	q := &Queue{
		state:       StateIdle,
		cbBuffer:    8,
		stopTimeout: 5 * time.Second,
		logLevel:    parseLogLevel(os.Getenv("GRID_WORKER_LOG_LEVEL")),
	}
	q.cond = sync.NewCond(&q.mu)
	for _, opt := range opts {
		opt(q)
	}
	q.cbCh = make(chan func(), q.cbBuffer)
	q.done = make(chan struct{})
	return q
}

// Start launches the worker goroutine. Idempotent; returns an error only
// after Stop.
func (q *Queue) Start() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state == StateStopped || q.stopping {
		return fmt.Errorf("task queue has been stopped")
	}
	if q.started {
		return nil
	}
	q.started = true

	go q.loop()
	q.logEvent(LogLevelInfo, "worker_start", nil)
	return nil
}

// Stop asks the worker to finish the in-flight task, drain already-queued
// tasks, and exit. Idempotent. Waits up to the stop timeout, then logs and
// returns; tasks never run again either way because submission is closed.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.stopping || q.state == StateStopped {
		q.mu.Unlock()
		return
	}
	q.stopping = true
	wasStarted := q.started
	q.cond.Broadcast()
	q.mu.Unlock()

	if !wasStarted {
		q.mu.Lock()
		q.state = StateStopped
		q.mu.Unlock()
		close(q.done)
		return
	}

	select {
	case <-q.done:
	case <-time.After(q.stopTimeout):
		q.logEvent(LogLevelWarn, "shutdown_timeout", nil)
	}
	q.logEvent(LogLevelInfo, "worker_stop", nil)
}

// Submit enqueues fn and returns immediately. The queue is unbounded; there
// is no back-pressure. On success callback (if non-nil) is scheduled onto
// Callbacks() with fn's result; on failure it never fires. Submissions after
// Stop are dropped with a warning.
func (q *Queue) Submit(fn func() (any, error), callback func(any)) {
	q.SubmitNamed("task", fn, callback)
}

// SubmitNamed is Submit with a name used in logs.
func (q *Queue) SubmitNamed(name string, fn func() (any, error), callback func(any)) {
	if fn == nil {
		return
	}

	q.mu.Lock()
	if q.stopping || q.state == StateStopped {
		q.mu.Unlock()
		q.logEvent(LogLevelWarn, "submit_after_stop", map[string]any{"task": name})
		return
	}
	q.pending = append(q.pending, task{name: name, run: fn, callback: callback})
	depth := len(q.pending)
	q.cond.Signal()
	q.mu.Unlock()

	q.logEvent(LogLevelDebug, "task_enqueued", map[string]any{
		"task":        name,
		"queue_depth": depth,
	})
}

// Callbacks returns the channel the owning goroutine must drain. Each
// received function is one scheduled callback; invoke it on the owning
// goroutine. The channel is never closed; use Done to stop waiting.
func (q *Queue) Callbacks() <-chan func() {
	return q.cbCh
}

// Done is closed once the worker has exited.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

// State returns the current worker state.
func (q *Queue) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Depth returns the number of queued (not yet started) tasks.
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Stats returns how many tasks have been executed and how many failed.
func (q *Queue) Stats() (executed, failed uint64) {
	return q.executed.Load(), q.failed.Load()
}

// LastError returns the most recent task failure, or nil.
func (q *Queue) LastError() *TaskError {
	return q.lastError.Load()
}

func (q *Queue) loop() {
	defer close(q.done)

	for {
		q.mu.Lock()
		for len(q.pending) == 0 && !q.stopping {
			q.setStateLocked(StateIdle)
			q.cond.Wait()
		}
		if len(q.pending) == 0 {
			// Stopping with nothing left to drain.
			q.setStateLocked(StateStopped)
			q.mu.Unlock()
			return
		}
		t := q.pending[0]
		q.pending = q.pending[1:]
		q.setStateLocked(StateExecuting)
		q.mu.Unlock()

		start := time.Now()
		result, err := q.safeRun(t)
		q.executed.Add(1)

		if err != nil {
			q.failed.Add(1)
			te := &TaskError{Task: t.name, Cause: err, Time: time.Now()}
			q.lastError.Store(te)
			q.logEvent(LogLevelError, "task_failed", map[string]any{
				"task":  t.name,
				"error": err.Error(),
			})
			continue
		}
		q.lastError.Store(nil)
		q.logEvent(LogLevelInfo, "task_done", map[string]any{
			"task":     t.name,
			"total_ms": float64(time.Since(start).Microseconds()) / 1000.0,
		})

		if t.callback == nil {
			continue
		}
		q.mu.Lock()
		q.setStateLocked(StateSchedulingCallback)
		q.mu.Unlock()

		cb, res := t.callback, result
		q.cbCh <- func() { cb(res) }
	}
}

// safeRun executes the task function with panic recovery. A panic becomes an
// ordinary task error so the queue keeps draining.
func (q *Queue) safeRun(t task) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return t.run()
}

func (q *Queue) setStateLocked(s State) {
	if q.state == s {
		return
	}
	q.state = s
	q.logEvent(LogLevelDebug, "state_change", map[string]any{"state": s.String()})
}

// logEvent emits a one-line JSON event, in the same shape the rest of the
// tooling parses from worker logs.
func (q *Queue) logEvent(level LogLevel, event string, fields map[string]any) {
	if q.logLevel == LogLevelNone || level > q.logLevel {
		return
	}
	payload := map[string]any{
		"ts":        time.Now().UTC().Format(time.RFC3339Nano),
		"level":     level.String(),
		"component": "task_queue",
		"event":     event,
		"seq":       q.seq.Add(1),
	}
	for k, v := range fields {
		payload[k] = v
	}
	b, err := json.Marshal(payload)
	if err != nil {
		log.Printf("task queue: marshaling log event %s: %v", event, err)
		return
	}
	log.Printf("%s", b)
}
