package vm

import (
	"math/rand"

	"github.com/kolkov/minidbg/internal/logs"
)

// Scheduler is the ready queue: FIFO admission, with a random chance of
// electing the second entry instead of the head.
//
// A pid is queued at most once; enqueuing a queued pid is a no-op.
type Scheduler struct {
	queue  []int
	queued map[int]bool
	rng    *rand.Rand
	log    *logs.Logger
}

// NewScheduler creates an empty queue drawing from rng.
func NewScheduler(rng *rand.Rand, log *logs.Logger) *Scheduler {
	if log == nil {
		log = logs.Discard()
	}
	return &Scheduler{
		queued: make(map[int]bool),
		rng:    rng,
		log:    log,
	}
}

// Enqueue appends pid at the tail.
func (s *Scheduler) Enqueue(pid int) {
	if s.queued[pid] {
		return
	}
	s.queued[pid] = true
	s.queue = append(s.queue, pid)
}

// EnqueueWaiting enqueues every process whose status is Waiting.
func (s *Scheduler) EnqueueWaiting(procs []*Process) {
	for _, p := range procs {
		if p.Status == Waiting {
			s.Enqueue(p.PID)
		}
	}
}

// Elect removes and returns the next pid. A uniform draw in [1, 5]
// of 4 or 5 with two or more entries queued elects the second entry
// and moves the head to the tail; otherwise the head is elected.
func (s *Scheduler) Elect() (int, bool) {
	if len(s.queue) == 0 {
		return 0, false
	}
	r := s.rng.Intn(5) + 1
	if s.log.Enabled(logs.Sched) {
		s.log.Debugf(logs.Sched, "elect", "queue", s.Snapshot(), "draw", r)
	}

	var pid int
	if r >= 4 && len(s.queue) >= 2 {
		head := s.queue[0]
		pid = s.queue[1]
		s.queue = append(s.queue[2:], head)
	} else {
		pid = s.queue[0]
		s.queue = s.queue[1:]
	}
	delete(s.queued, pid)
	return pid, true
}

// Len returns the number of queued pids.
func (s *Scheduler) Len() int {
	return len(s.queue)
}

// Snapshot returns a copy of the queue, head first.
func (s *Scheduler) Snapshot() []int {
	return append([]int(nil), s.queue...)
}
