package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrStopped is returned when work is handed to a stopped scheduler
	ErrStopped = errors.New("scheduler stopped")

	// ErrTaskPanicked is returned by Do when the task panicked
	ErrTaskPanicked = errors.New("scheduled task panicked")
)

// Timer is a pending task that can be cancelled
type Timer interface {
	// Stop prevents the task from running. Returns false if it already ran
	// or was already stopped.
	Stop() bool
}

// Scheduler runs tasks one at a time on a single logical thread.
// Every task, immediate or delayed, observes the effects of the tasks
// before it and never overlaps another task.
type Scheduler interface {
	// Do runs fn on the scheduler and waits for it to return.
	// It must not be called from inside a scheduled task.
	Do(fn func()) error

	// AfterFunc runs fn on the scheduler once d has elapsed
	AfterFunc(d time.Duration, fn func()) Timer
}

// Runner is a Scheduler whose owner can shut it down
type Runner interface {
	Scheduler
	Stop()
}

// Loop is a Scheduler backed by one goroutine and a task queue
type Loop struct {
	tasks    chan func()
	done     chan struct{}
	stopOnce sync.Once
	logger   *slog.Logger
}

// Ensure Loop implements Runner
var _ Runner = (*Loop)(nil)

// New starts a Loop. Call Stop to release its goroutine.
func New(logger *slog.Logger) *Loop {
	l := &Loop{
		tasks:  make(chan func(), 64),
		done:   make(chan struct{}),
		logger: logger,
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	for {
		select {
		case fn := <-l.tasks:
			l.exec(fn)
		case <-l.done:
			return
		}
	}
}

// exec runs fn. A panic is logged and returned as ErrTaskPanicked.
func (l *Loop) exec(fn func()) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			l.logger.Error("scheduled task panicked",
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, rec)
		}
	}()
	fn()
	return nil
}

func (l *Loop) post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do runs fn on the loop goroutine and blocks until it has finished
func (l *Loop) Do(fn func()) error {
	finished := make(chan struct{})
	var taskErr error
	if !l.post(func() {
		defer close(finished)
		taskErr = l.exec(fn)
	}) {
		return ErrStopped
	}
	select {
	case <-finished:
		return taskErr
	case <-l.done:
		return ErrStopped
	}
}

// AfterFunc queues fn on the loop after d. A timer stopped from inside the
// loop never runs, even if its deadline has already passed.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.post(func() {
			if t.cancelled.Load() {
				return
			}
			fn()
		})
	})
	return t
}

// Stop shuts the loop down; queued tasks are dropped
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.done)
	})
}

type loopTimer struct {
	timer     *time.Timer
	cancelled atomic.Bool
}

func (t *loopTimer) Stop() bool {
	if t.cancelled.Swap(true) {
		return false
	}
	return t.timer.Stop()
}
