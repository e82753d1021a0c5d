package syntax

import "sync"

// Scheduler runs background parse work. The default spawns a goroutine per
// parse; tests substitute a manual scheduler to step parses
// deterministically.
type Scheduler interface {
	Go(fn func())
}

// GoroutineScheduler runs each task on its own goroutine.
type GoroutineScheduler struct{}

func (GoroutineScheduler) Go(fn func()) { go fn() }

// ManualScheduler queues tasks until Run is called. Pending work is
// observable via Len, which lets tests assert on the in-flight state
// before letting a parse complete.
type ManualScheduler struct {
	mu    sync.Mutex
	queue []func()
}

func NewManualScheduler() *ManualScheduler { return &ManualScheduler{} }

func (s *ManualScheduler) Go(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, fn)
}

// Run executes all queued tasks, including any they enqueue, and returns
// the number run.
func (s *ManualScheduler) Run() int {
	n := 0
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return n
		}
		fn := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		fn()
		n++
	}
}

// Len reports the number of queued tasks.
func (s *ManualScheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}
