package authsync

import (
	"context"
	"fmt"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// Task is a best effort side effect. Its error is logged, never returned
// to whoever scheduled it.
type Task func(ctx context.Context) error

// TaskErrorHandler observes failed tasks, useful for telemetry.
type TaskErrorHandler func(name string, err error)

// DispatcherOption customizes dispatcher construction.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger overrides the logger used for task failures.
func WithDispatcherLogger(logger Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithTaskTimeout bounds each task run. Zero leaves timeouts to the stores.
func WithTaskTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithTaskErrorHandler registers a callback invoked after a task fails.
func WithTaskErrorHandler(handler TaskErrorHandler) DispatcherOption {
	return func(d *Dispatcher) {
		d.onError = handler
	}
}

type scheduledTask struct {
	name string
	run  Task
}

// Dispatcher runs deferred side effects on a single worker goroutine.
//
// Schedule never blocks: the queue is unbounded and the caller returns
// before the task starts. Tasks run one at a time in FIFO order and a
// failing task does not affect the ones queued after it. Once scheduled
// a task always runs, Close drains the queue before returning.
type Dispatcher struct {
	logger  Logger
	timeout time.Duration
	onError TaskErrorHandler

	mu     sync.Mutex
	queue  []scheduledTask
	closed bool
	wake   chan struct{}
	done   chan struct{}
}

// NewDispatcher creates a dispatcher and starts its worker.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		logger: defLogger{},
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	go d.run()

	return d
}

// Schedule enqueues task under name.
func (d *Dispatcher) Schedule(name string, task Task) error {
	if task == nil {
		return nil
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDispatcherClosed
	}
	d.queue = append(d.queue, scheduledTask{name: name, run: task})
	d.mu.Unlock()

	d.signal()
	return nil
}

// Pending returns the number of queued tasks not yet started.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// Flush blocks until every task scheduled before the call has run.
func (d *Dispatcher) Flush(ctx context.Context) error {
	marker := make(chan struct{})
	err := d.Schedule("flush", func(context.Context) error {
		close(marker)
		return nil
	})
	if err != nil {
		return err
	}

	select {
	case <-marker:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting tasks and waits for the queue to drain.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.signal()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) signal() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for {
		d.mu.Lock()
		if len(d.queue) == 0 {
			closed := d.closed
			d.mu.Unlock()
			if closed {
				return
			}
			<-d.wake
			continue
		}

		next := d.queue[0]
		d.queue[0] = scheduledTask{}
		d.queue = d.queue[1:]
		d.mu.Unlock()

		d.execute(next)
	}
}

func (d *Dispatcher) execute(task scheduledTask) {
	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err := goerrors.New(fmt.Sprintf("side effect panicked: %v", r), goerrors.CategoryInternal).
				WithMetadata(map[string]any{"task": task.name})
			d.logger.Error("side effect panicked", "task", task.name, "panic", r)
			d.reportError(task.name, err)
		}
	}()

	if err := task.run(ctx); err != nil {
		d.logger.Warn("side effect failed", "task", task.name, "error", err)
		d.reportError(task.name, err)
	}
}

func (d *Dispatcher) reportError(name string, err error) {
	if d.onError == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("task error handler panicked", "task", name, "panic", r)
		}
	}()
	d.onError(name, err)
}
