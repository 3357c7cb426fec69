package reminders

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is how often the scheduler runs the evaluator.
const DefaultInterval = time.Minute

// Runner is one evaluator pass.
type Runner interface {
	Run(ctx context.Context) (Summary, error)
}

// Scheduler runs the evaluator once at start and then on every tick. At most
// one pass runs at a time: a tick that finds a pass in flight is skipped.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	log      *slog.Logger

	pass sync.Mutex // held for the duration of a pass

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewScheduler(runner Runner, interval time.Duration, log *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{runner: runner, interval: interval, log: log}
}

// Start launches the background loop. Calling Start on a running scheduler
// does nothing.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(ctx, s.done)
	s.log.Info("reminder scheduler started", "interval", s.interval)
}

// Stop cancels the loop and waits for an in-flight pass to return. It is safe
// to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	done := s.done
	s.mu.Unlock()

	<-done
	s.log.Info("reminder scheduler stopped")
}

// RunNow waits for any pass in flight and then runs one more.
func (s *Scheduler) RunNow(ctx context.Context) error {
	s.pass.Lock()
	defer s.pass.Unlock()
	return s.runPass(ctx)
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if !s.pass.TryLock() {
		s.log.Debug("reminder pass still running, skipping tick")
		return
	}
	defer s.pass.Unlock()

	// Stop cancels ctx; a pass already under way still runs to completion.
	if err := s.runPass(context.WithoutCancel(ctx)); err != nil {
		s.log.Error("reminder pass failed", "error", err)
	}
}

// runPass converts a panic inside the evaluator into an error so the loop
// survives it.
func (s *Scheduler) runPass(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reminder pass panicked: %v", r)
		}
	}()

	start := time.Now()
	sum, err := s.runner.Run(ctx)
	if err != nil {
		return err
	}

	level := slog.LevelDebug
	if sum.Notified > 0 || sum.Failed > 0 {
		level = slog.LevelInfo
	}
	s.log.Log(ctx, level, "reminder pass complete",
		"scanned", sum.Scanned,
		"notified", sum.Notified,
		"skipped", sum.Skipped,
		"failed", sum.Failed,
		"duration", time.Since(start),
	)
	return nil
}
