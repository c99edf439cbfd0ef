package vm

import (
	"math/rand"
	"reflect"
	"testing"
)

// drawSource makes rand.Intn(5)+1 return the scripted draws in order.
type drawSource struct {
	draws []int
	i     int
}

func (s *drawSource) Int63() int64 {
	d := s.draws[s.i%len(s.draws)]
	s.i++
	return int64(d-1) << 32
}

func (s *drawSource) Seed(int64) {}

func newTestScheduler(draws ...int) *Scheduler {
	return NewScheduler(rand.New(&drawSource{draws: draws}), nil)
}

func TestElect(t *testing.T) {
	tests := []struct {
		name  string
		queue []int
		draw  int
		pid   int
		after []int
	}{
		{"head on low draw", []int{0, 1, 2}, 1, 0, []int{1, 2}},
		{"head on draw 3", []int{0, 1, 2}, 3, 0, []int{1, 2}},
		{"second on draw 4", []int{0, 1, 2}, 4, 1, []int{2, 0}},
		{"second on draw 5", []int{0, 1, 2}, 5, 1, []int{2, 0}},
		{"two entries", []int{3, 7}, 5, 7, []int{3}},
		{"single entry", []int{4}, 5, 4, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScheduler(tt.draw)
			for _, pid := range tt.queue {
				s.Enqueue(pid)
			}
			pid, ok := s.Elect()
			if !ok || pid != tt.pid {
				t.Errorf("Elect() = %d, %v; want %d", pid, ok, tt.pid)
			}
			if got := s.Snapshot(); !reflect.DeepEqual(got, tt.after) && !(len(got) == 0 && len(tt.after) == 0) {
				t.Errorf("queue = %v, want %v", got, tt.after)
			}
		})
	}
}

func TestElectEmpty(t *testing.T) {
	s := newTestScheduler(1)
	if _, ok := s.Elect(); ok {
		t.Error("Elect on an empty queue should fail")
	}
}

func TestEnqueueDedup(t *testing.T) {
	s := newTestScheduler(1)
	s.Enqueue(2)
	s.Enqueue(1)
	s.Enqueue(2)
	if got := s.Snapshot(); !reflect.DeepEqual(got, []int{2, 1}) {
		t.Fatalf("queue = %v", got)
	}
	s.Elect()
	s.Enqueue(2)
	if got := s.Snapshot(); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("queue = %v after requeue", got)
	}
}

func TestEnqueueWaiting(t *testing.T) {
	s := newTestScheduler(1)
	procs := []*Process{
		{PID: 0, Status: Waiting},
		{PID: 1, Status: Terminated},
		{PID: 2, Status: TraceEnd},
		{PID: 3, Status: Waiting},
	}
	s.EnqueueWaiting(procs)
	if got := s.Snapshot(); !reflect.DeepEqual(got, []int{0, 3}) {
		t.Errorf("queue = %v", got)
	}
}

// No ready process waits forever: with processes that requeue after
// every step, each is elected within a bounded window.
func TestElectFairness(t *testing.T) {
	s := NewScheduler(rand.New(rand.NewSource(42)), nil)
	const procs = 3
	for pid := 0; pid < procs; pid++ {
		s.Enqueue(pid)
	}

	last := make([]int, procs)
	counts := make([]int, procs)
	for round := 1; round <= 3000; round++ {
		pid, ok := s.Elect()
		if !ok {
			t.Fatal("queue drained")
		}
		counts[pid]++
		last[pid] = round
		s.Enqueue(pid)
		for other := range last {
			if round-last[other] > 40 {
				t.Fatalf("process %d not elected since round %d", other, last[other])
			}
		}
	}
	for pid, c := range counts {
		if c < 500 {
			t.Errorf("process %d elected %d times of 3000", pid, c)
		}
	}
}
