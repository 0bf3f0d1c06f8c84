package project

import (
	"context"
	"sync"
	"time"
)

// SaveMode selects how the AutoSaveScheduler triggers saves.
type SaveMode string

const (
	// SaveModeInterval fires a save attempt on a fixed period.
	SaveModeInterval SaveMode = "interval"

	// SaveModeInstant debounces rapid mutations into a single save shortly
	// after the last one.
	SaveModeInstant SaveMode = "instant"
)

const (
	// DefaultSaveInterval is the period between interval-mode save attempts.
	DefaultSaveInterval = 30 * time.Second

	// DefaultSaveDebounce is the instant-mode quiet period after the last
	// mutation before a save fires.
	DefaultSaveDebounce = 300 * time.Millisecond
)

// Saver is the save entry point driven by the scheduler. AutoSave is
// expected to skip itself when nothing is dirty, no write target exists,
// or another save is already in flight.
type Saver interface {
	AutoSave(ctx context.Context)
}

// AutoSaveScheduler triggers a Saver on a cadence (interval mode) or after
// a mutation burst settles (instant mode). Mode and periods are external
// configuration; the scheduler computes nothing itself.
type AutoSaveScheduler struct {
	mode     SaveMode
	interval time.Duration
	debounce time.Duration
	saver    Saver
	logger   Logger

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	timer   *time.Timer
}

// NewAutoSaveScheduler creates a scheduler in the given mode. Non-positive
// durations fall back to the defaults.
func NewAutoSaveScheduler(mode SaveMode, interval, debounce time.Duration, saver Saver, logger Logger) *AutoSaveScheduler {
	if interval <= 0 {
		interval = DefaultSaveInterval
	}
	if debounce <= 0 {
		debounce = DefaultSaveDebounce
	}
	return &AutoSaveScheduler{
		mode:     mode,
		interval: interval,
		debounce: debounce,
		saver:    saver,
		logger:   logger,
	}
}

// Start begins scheduling. Any previously running timer is cancelled first
// so duplicate timers cannot accumulate. The context bounds all save
// attempts issued by this scheduler run.
func (s *AutoSaveScheduler) Start(ctx context.Context) {
	s.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = true
	s.stop = make(chan struct{})

	if s.mode == SaveModeInterval {
		go s.runInterval(ctx, s.stop)
	}
	s.logger.Debug("autosave scheduler started", "mode", string(s.mode))
}

// Stop cancels scheduling. Stopping an already stopped scheduler is a
// no-op. A save that already started is allowed to complete; no further
// automatic attempts will be made.
func (s *AutoSaveScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	close(s.stop)
	s.stop = nil

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.logger.Debug("autosave scheduler stopped")
}

// Notify reports a mutation. In instant mode this (re)arms the debounce
// timer so a burst of mutations coalesces into exactly one save attempt
// reflecting the state at debounce expiry. In interval mode it is a no-op:
// the periodic tick picks the change up.
func (s *AutoSaveScheduler) Notify(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.mode != SaveModeInstant {
		return
	}

	if s.timer != nil {
		s.timer.Stop()
	}
	stop := s.stop
	s.timer = time.AfterFunc(s.debounce, func() {
		select {
		case <-stop:
			return
		default:
		}
		s.saver.AutoSave(ctx)
	})
}

// runInterval fires save attempts on the configured period until stopped.
// Ticks that land while a save is in flight are skipped by the Saver, not
// queued, which bounds write amplification.
func (s *AutoSaveScheduler) runInterval(ctx context.Context, stop chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.saver.AutoSave(ctx)
		}
	}
}
