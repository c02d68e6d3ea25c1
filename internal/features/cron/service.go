package cron_feature

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// jobTimeout bounds a single run. Every job gets a fresh context; a
// job that outlives it is cancelled, not killed.
const jobTimeout = 5 * time.Minute

// Job is a named unit of scheduled work. Spec takes the standard
// five-field cron syntax plus the @descriptors robfig/cron accepts.
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

// Scheduler runs the server's background jobs. Jobs are registered in
// code at startup; there is no job store.
type Scheduler interface {
	Register(job Job) error
	Unregister(name string)
	// RunNow executes a registered job immediately, outside its
	// schedule, and returns its error.
	RunNow(ctx context.Context, name string) error
	// Jobs returns the registered job names, sorted.
	Jobs() []string
	Start()
	// Stop waits for in-flight jobs to finish or for ctx to expire,
	// whichever comes first.
	Stop(ctx context.Context) error
}

type SchedulerImpl struct {
	Logger *zap.Logger

	cron    *cron.Cron
	mu      sync.Mutex
	entries map[string]registration
}

type registration struct {
	id  cron.EntryID
	job Job
}

func NewScheduler(logger *zap.Logger) Scheduler {
	return &SchedulerImpl{
		Logger:  logger,
		cron:    cron.New(),
		entries: make(map[string]registration),
	}
}

func (s *SchedulerImpl) Register(job Job) error {
	if job.Name == "" {
		return fmt.Errorf("job name is required")
	}
	if job.Run == nil {
		return fmt.Errorf("job %q has no run function", job.Name)
	}
	if _, err := cron.ParseStandard(job.Spec); err != nil {
		return fmt.Errorf("job %q has an invalid schedule %q: %w", job.Name, job.Spec, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[job.Name]; exists {
		return fmt.Errorf("job %q is already registered", job.Name)
	}

	id, err := s.cron.AddFunc(job.Spec, s.wrap(job))
	if err != nil {
		return fmt.Errorf("job %q not scheduled: %w", job.Name, err)
	}
	s.entries[job.Name] = registration{id: id, job: job}
	s.Logger.Info("job registered", zap.String("job", job.Name), zap.String("schedule", job.Spec))
	return nil
}

func (s *SchedulerImpl) Unregister(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, exists := s.entries[name]
	if !exists {
		return
	}
	s.cron.Remove(reg.id)
	delete(s.entries, name)
	s.Logger.Info("job unregistered", zap.String("job", name))
}

func (s *SchedulerImpl) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	reg, exists := s.entries[name]
	s.mu.Unlock()

	if !exists {
		return fmt.Errorf("job %q is not registered", name)
	}
	return s.run(ctx, reg.job)
}

func (s *SchedulerImpl) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *SchedulerImpl) Start() {
	s.cron.Start()
	s.Logger.Info("scheduler started", zap.Int("jobs", len(s.Jobs())))
}

func (s *SchedulerImpl) Stop(ctx context.Context) error {
	done := s.cron.Stop().Done()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// wrap gives a job its per-run context and logs the outcome.
func (s *SchedulerImpl) wrap(job Job) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if err := s.run(ctx, job); err != nil {
			s.Logger.Error("job failed", zap.String("job", job.Name), zap.Error(err))
		}
	}
}

func (s *SchedulerImpl) run(ctx context.Context, job Job) error {
	start := time.Now()
	err := job.Run(ctx)
	s.Logger.Info("job finished",
		zap.String("job", job.Name),
		zap.Duration("took", time.Since(start)),
		zap.Bool("ok", err == nil),
	)
	return err
}
