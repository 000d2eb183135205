package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// specParser accepts standard 5-field cron expressions.
var specParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// entry pairs a job with the mutex keeping its ticks from overlapping.
type entry struct {
	job  Job
	busy sync.Mutex
}

// Scheduler runs registered jobs on their cron schedules. A tick that
// fires while the previous run of the same job is still in flight is
// skipped, not queued.
type Scheduler struct {
	mu      sync.Mutex
	entries map[string]*entry
	runner  *cron.Cron
	logger  *slog.Logger
	cancel  context.CancelFunc
}

// NewScheduler returns an empty scheduler. Register jobs before Start.
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		entries: make(map[string]*entry),
		logger:  logger.With("component", "cron"),
	}
}

// RegisterJob adds a job and validates its schedule expression. Job
// names must be unique.
func (s *Scheduler) RegisterJob(j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := j.Name()
	if _, dup := s.entries[name]; dup {
		return fmt.Errorf("cron: job %q already registered", name)
	}
	if _, err := specParser.Parse(j.Schedule()); err != nil {
		return fmt.Errorf("cron: job %q schedule %q: %w", name, j.Schedule(), err)
	}
	s.entries[name] = &entry{job: j}
	return nil
}

// Start begins executing the registered jobs.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.runner = cron.New(cron.WithParser(specParser))

	for _, e := range s.entries {
		if _, err := s.runner.AddFunc(e.job.Schedule(), func() { s.tick(ctx, e) }); err != nil {
			cancel()
			return fmt.Errorf("cron: scheduling job %q: %w", e.job.Name(), err)
		}
	}

	s.runner.Start()
	s.logger.Info("scheduler started", "jobs", len(s.entries))
	return nil
}

// tick runs one execution of e's job unless the previous execution is
// still holding the entry.
func (s *Scheduler) tick(ctx context.Context, e *entry) {
	if !e.busy.TryLock() {
		s.logger.Warn("previous run still in flight, tick skipped", "job", e.job.Name())
		return
	}
	defer e.busy.Unlock()

	if err := e.job.Run(ctx); err != nil {
		s.logger.Error("job failed", "job", e.job.Name(), "error", err)
		return
	}
	s.logger.Debug("job completed", "job", e.job.Name())
}

// Stop cancels job contexts and waits for in-flight runs to finish.
func (s *Scheduler) Stop(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	if s.runner != nil {
		<-s.runner.Stop().Done()
		s.logger.Info("scheduler stopped")
	}
	return nil
}