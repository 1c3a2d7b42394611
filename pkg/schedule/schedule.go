// Package schedule runs named background tasks on cron specs.
//
//	s := schedule.New()
//	_ = s.Hourly("home.warm", warmHome)
//	s.Start(ctx) // stops when ctx is done
//
// Specs use the standard five fields or the @hourly / @every 5m
// descriptors. A task still running when its next tick arrives is skipped,
// and a panicking task is logged without killing the scheduler.
package schedule

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shashiranjanraj/dailyfresh/pkg/logger"
)

// Task receives the context given to Start.
type Task func(ctx context.Context) error

type Entry struct {
	Name string
	Spec string
	Next time.Time
}

type Scheduler struct {
	cron *cron.Cron

	mu    sync.Mutex
	ctx   context.Context
	ids   map[string]cron.EntryID
	specs map[string]string
	tasks map[string]Task
}

func New() *Scheduler {
	l := cronLogger{}
	return &Scheduler{
		cron:  cron.New(cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)), cron.WithLogger(l)),
		ctx:   context.Background(),
		ids:   make(map[string]cron.EntryID),
		specs: make(map[string]string),
		tasks: make(map[string]Task),
	}
}

// Add registers task under name. Names are unique.
func (s *Scheduler) Add(name, spec string, task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.ids[name]; dup {
		return fmt.Errorf("schedule: %q already registered", name)
	}
	id, err := s.cron.AddFunc(spec, func() { s.run(name, task) })
	if err != nil {
		return fmt.Errorf("schedule: %s: bad spec %q: %w", name, spec, err)
	}
	s.ids[name] = id
	s.specs[name] = spec
	s.tasks[name] = task
	return nil
}

func (s *Scheduler) Hourly(name string, task Task) error {
	return s.Add(name, "@hourly", task)
}

func (s *Scheduler) run(name string, task Task) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	start := time.Now()
	if err := task(ctx); err != nil {
		logger.Error("schedule: task failed", "task", name, "error", err)
		return
	}
	logger.Info("schedule: task done", "task", name, "duration_ms", time.Since(start).Milliseconds())
}

// RunNow executes a registered task once on the caller's goroutine.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	task, ok := s.tasks[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("schedule: no task %q", name)
	}
	return task(ctx)
}

// Start runs the scheduler in the background until ctx is done. The
// returned channel closes once running tasks have finished.
func (s *Scheduler) Start(ctx context.Context) <-chan struct{} {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.cron.Start()
	logger.Info("schedule: started", "tasks", len(s.ids))

	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
		logger.Info("schedule: stopped")
		close(done)
	}()
	return done
}

// Entries lists the registered tasks by name. Before Start, Next is the
// first run after now.
func (s *Scheduler) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	out := make([]Entry, 0, len(s.ids))
	for name, id := range s.ids {
		e := s.cron.Entry(id)
		next := e.Next
		if next.IsZero() && e.Schedule != nil {
			next = e.Schedule.Next(now)
		}
		out = append(out, Entry{Name: name, Spec: s.specs[name], Next: next})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// cronLogger sends cron's own messages to slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, kv ...interface{}) {
	logger.Debug("schedule: "+msg, kv...)
}

func (cronLogger) Error(err error, msg string, kv ...interface{}) {
	logger.Error("schedule: "+msg, append(kv, "error", err)...)
}
