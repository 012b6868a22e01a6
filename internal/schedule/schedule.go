// Package schedule runs periodic jobs: the inbox sweep and the daily report.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled unit of work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler wraps a cron runner. Jobs share a context that is cancelled by Stop.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	jobs   map[string]cron.EntryID
}

func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	cl := cronLogger{logger: logger}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(map[string]cron.EntryID),
	}
}

// Add registers job under spec (standard five-field cron or a descriptor
// such as "@every 15m"). An empty spec disables the job and returns false.
func (s *Scheduler) Add(spec string, job Job) (bool, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		s.logger.Info("schedule.disabled", "job", job.Name())
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.jobs[job.Name()]; dup {
		return false, fmt.Errorf("job %q already scheduled", job.Name())
	}
	id, err := s.cron.AddFunc(spec, func() { s.run(job) })
	if err != nil {
		return false, fmt.Errorf("schedule %s %q: %w", job.Name(), spec, err)
	}
	s.jobs[job.Name()] = id
	s.logger.Info("schedule.added", "job", job.Name(), "spec", spec)
	return true, nil
}

func (s *Scheduler) run(job Job) {
	logger := s.logger.With("job", job.Name())
	if err := job.Run(s.ctx); err != nil {
		logger.Error("schedule.job.failed", "err", err)
		return
	}
	logger.Debug("schedule.job.ok")
}

// Start begins firing jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop prevents new runs, cancels running jobs' context and waits for them
// to return or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Validate reports whether spec parses as a standard cron expression. An
// empty spec is valid and means disabled.
func Validate(spec string) error {
	if strings.TrimSpace(spec) == "" {
		return nil
	}
	_, err := cron.ParseStandard(spec)
	return err
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
