package sched

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/TheContrappostoShop/klipper/pkg"
)

// Task is a named callback invoked by the scheduler.
type Task struct {
	Name string
	Fn   func()
}

// Scheduler runs init callbacks once and tasks repeatedly.
type Scheduler struct {
	mutex sync.Mutex
	inits []Task
	tasks []Task

	initOnce sync.Once

	// Set by WakeTask, consumed by Run before each pass.
	pending atomic.Bool
	idle    func()
}

// New creates an empty scheduler.
func New() *Scheduler {
	return &Scheduler{idle: runtime.Gosched}
}

// SetIdle sets the function Run calls while no task is woken. It must
// return promptly so a wake is not missed for long. The default yields the
// processor with runtime.Gosched.
func (s *Scheduler) SetIdle(fn func()) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.idle = fn
}

// AddInit registers a one-time init callback.
func (s *Scheduler) AddInit(name string, fn func()) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.inits = append(s.inits, Task{Name: name, Fn: fn})
}

// AddTask registers a task run on every pass.
func (s *Scheduler) AddTask(name string, fn func()) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.tasks = append(s.tasks, Task{Name: name, Fn: fn})
}

// WakeTask marks w and requests another task pass. It only performs
// atomic stores, so it is safe from interrupt context.
func (s *Scheduler) WakeTask(w *Wake) {
	w.Set()
	s.pending.Store(true)
}

// Init runs every registered init callback. Only the first call has any
// effect.
func (s *Scheduler) Init() {
	s.initOnce.Do(func() {
		s.mutex.Lock()
		inits := append([]Task(nil), s.inits...)
		s.mutex.Unlock()
		for _, t := range inits {
			pkg.LogDebug(pkg.ComponentSched, "init", "name", t.Name)
			t.Fn()
		}
	})
}

// RunOnce performs a single pass over all tasks, running init first if it
// has not run yet.
func (s *Scheduler) RunOnce() {
	s.Init()
	s.mutex.Lock()
	tasks := append([]Task(nil), s.tasks...)
	s.mutex.Unlock()
	for _, t := range tasks {
		t.Fn()
	}
}

// Run performs task passes until ctx is done. The first pass runs
// immediately; later passes run only after a WakeTask, with the idle
// function polled in between.
func (s *Scheduler) Run(ctx context.Context) error {
	pkg.LogInfo(pkg.ComponentSched, "scheduler started")
	s.mutex.Lock()
	idle := s.idle
	s.mutex.Unlock()

	s.pending.Store(true)
	for {
		if err := ctx.Err(); err != nil {
			pkg.LogInfo(pkg.ComponentSched, "scheduler stopped")
			return err
		}
		if !s.pending.Swap(false) {
			if idle != nil {
				idle()
			}
			continue
		}
		s.RunOnce()
	}
}

// Tasks returns the names of the registered tasks.
func (s *Scheduler) Tasks() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	names := make([]string, len(s.tasks))
	for i, t := range s.tasks {
		names[i] = t.Name
	}
	return names
}
