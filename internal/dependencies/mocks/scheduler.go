package mocks

import (
	"fmt"
	"time"

	"github.com/mcoot/lettercrush/internal/dependencies/scheduler"
)

// ManualScheduler is a Scheduler driven by virtual time.
// Tasks run synchronously inside Advance, in deadline order.
type ManualScheduler struct {
	clock   *MockClock // optional, advanced in step with virtual time
	now     time.Duration
	seq     int
	tasks   []*manualTask
	stopped bool
}

// Ensure ManualScheduler implements Runner
var _ scheduler.Runner = (*ManualScheduler)(nil)

// NewManualScheduler creates a ManualScheduler. clock may be nil.
func NewManualScheduler(clock *MockClock) *ManualScheduler {
	return &ManualScheduler{clock: clock}
}

type manualTask struct {
	due  time.Duration
	seq  int
	fn   func()
	done bool
}

func (t *manualTask) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	return true
}

// Do runs fn immediately. A panic is returned as scheduler.ErrTaskPanicked.
func (s *ManualScheduler) Do(fn func()) (err error) {
	if s.stopped {
		return scheduler.ErrStopped
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", scheduler.ErrTaskPanicked, rec)
		}
	}()
	fn()
	return nil
}

// Stop cancels every pending task and rejects further work
func (s *ManualScheduler) Stop() {
	s.stopped = true
	for _, t := range s.tasks {
		t.done = true
	}
}

// Stopped reports whether Stop was called
func (s *ManualScheduler) Stopped() bool {
	return s.stopped
}

// AfterFunc queues fn to run once virtual time reaches now+d
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) scheduler.Timer {
	t := &manualTask{due: s.now + d, seq: s.seq, fn: fn, done: s.stopped}
	s.seq++
	s.tasks = append(s.tasks, t)
	return t
}

// Advance moves virtual time forward, running every task that falls due,
// including tasks scheduled by other tasks along the way
func (s *ManualScheduler) Advance(d time.Duration) {
	target := s.now + d
	for {
		next := s.nextDue(target)
		if next == nil {
			break
		}
		s.moveTo(next.due)
		next.done = true
		next.fn()
	}
	s.moveTo(target)
}

// RunPending runs tasks that are already due without moving time
func (s *ManualScheduler) RunPending() {
	s.Advance(0)
}

// Pending returns the number of tasks still waiting to run
func (s *ManualScheduler) Pending() int {
	count := 0
	for _, t := range s.tasks {
		if !t.done {
			count++
		}
	}
	return count
}

// Now returns the elapsed virtual time
func (s *ManualScheduler) Now() time.Duration {
	return s.now
}

func (s *ManualScheduler) moveTo(at time.Duration) {
	if at <= s.now {
		return
	}
	if s.clock != nil {
		s.clock.Advance(at - s.now)
	}
	s.now = at
}

func (s *ManualScheduler) nextDue(target time.Duration) *manualTask {
	var next *manualTask
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if t.done {
			continue
		}
		live = append(live, t)
		if t.due > target {
			continue
		}
		if next == nil || t.due < next.due || (t.due == next.due && t.seq < next.seq) {
			next = t
		}
	}
	s.tasks = live
	return next
}
