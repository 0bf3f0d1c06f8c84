package project_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"frameforge/internal/project"
)

// countingSaver records AutoSave calls.
type countingSaver struct {
	mu    sync.Mutex
	calls int
}

func (s *countingSaver) AutoSave(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
}

func (s *countingSaver) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestAutoSaveScheduler_InstantMode(t *testing.T) {
	t.Run("a burst of notifications coalesces into one save", func(t *testing.T) {
		saver := &countingSaver{}
		sched := project.NewAutoSaveScheduler(project.SaveModeInstant, 0, 20*time.Millisecond, saver, project.NewNopLogger())
		sched.Start(context.Background())
		defer sched.Stop()

		for i := 0; i < 10; i++ {
			sched.Notify(context.Background())
			time.Sleep(2 * time.Millisecond)
		}

		time.Sleep(100 * time.Millisecond)
		if got := saver.Calls(); got != 1 {
			t.Errorf("AutoSave calls = %d, want 1", got)
		}
	})

	t.Run("separated notifications each trigger a save", func(t *testing.T) {
		saver := &countingSaver{}
		sched := project.NewAutoSaveScheduler(project.SaveModeInstant, 0, 10*time.Millisecond, saver, project.NewNopLogger())
		sched.Start(context.Background())
		defer sched.Stop()

		sched.Notify(context.Background())
		time.Sleep(50 * time.Millisecond)
		sched.Notify(context.Background())
		time.Sleep(50 * time.Millisecond)

		if got := saver.Calls(); got != 2 {
			t.Errorf("AutoSave calls = %d, want 2", got)
		}
	})

	t.Run("stop cancels a pending debounce", func(t *testing.T) {
		saver := &countingSaver{}
		sched := project.NewAutoSaveScheduler(project.SaveModeInstant, 0, 30*time.Millisecond, saver, project.NewNopLogger())
		sched.Start(context.Background())

		sched.Notify(context.Background())
		sched.Stop()

		time.Sleep(100 * time.Millisecond)
		if got := saver.Calls(); got != 0 {
			t.Errorf("AutoSave calls = %d after Stop, want 0", got)
		}
	})

	t.Run("notify before start is ignored", func(t *testing.T) {
		saver := &countingSaver{}
		sched := project.NewAutoSaveScheduler(project.SaveModeInstant, 0, 10*time.Millisecond, saver, project.NewNopLogger())

		sched.Notify(context.Background())
		time.Sleep(50 * time.Millisecond)

		if got := saver.Calls(); got != 0 {
			t.Errorf("AutoSave calls = %d before Start, want 0", got)
		}
	})
}

func TestAutoSaveScheduler_IntervalMode(t *testing.T) {
	t.Run("fires repeatedly on the period", func(t *testing.T) {
		saver := &countingSaver{}
		sched := project.NewAutoSaveScheduler(project.SaveModeInterval, 20*time.Millisecond, 0, saver, project.NewNopLogger())
		sched.Start(context.Background())
		defer sched.Stop()

		time.Sleep(110 * time.Millisecond)
		if got := saver.Calls(); got < 3 {
			t.Errorf("AutoSave calls = %d, want at least 3", got)
		}
	})

	t.Run("notify is a no-op in interval mode", func(t *testing.T) {
		saver := &countingSaver{}
		sched := project.NewAutoSaveScheduler(project.SaveModeInterval, time.Hour, 0, saver, project.NewNopLogger())
		sched.Start(context.Background())
		defer sched.Stop()

		sched.Notify(context.Background())
		time.Sleep(50 * time.Millisecond)

		if got := saver.Calls(); got != 0 {
			t.Errorf("AutoSave calls = %d, want 0", got)
		}
	})

	t.Run("stop halts the ticker", func(t *testing.T) {
		saver := &countingSaver{}
		sched := project.NewAutoSaveScheduler(project.SaveModeInterval, 10*time.Millisecond, 0, saver, project.NewNopLogger())
		sched.Start(context.Background())

		time.Sleep(35 * time.Millisecond)
		sched.Stop()
		after := saver.Calls()

		time.Sleep(50 * time.Millisecond)
		if got := saver.Calls(); got != after {
			t.Errorf("AutoSave calls = %d after Stop, want %d", got, after)
		}
	})

	t.Run("context cancellation halts the ticker", func(t *testing.T) {
		saver := &countingSaver{}
		sched := project.NewAutoSaveScheduler(project.SaveModeInterval, 10*time.Millisecond, 0, saver, project.NewNopLogger())
		ctx, cancel := context.WithCancel(context.Background())
		sched.Start(ctx)
		defer sched.Stop()

		cancel()
		time.Sleep(50 * time.Millisecond)
		after := saver.Calls()

		time.Sleep(50 * time.Millisecond)
		if got := saver.Calls(); got != after {
			t.Errorf("AutoSave calls = %d after cancel, want %d", got, after)
		}
	})
}

func TestAutoSaveScheduler_StopIdempotent(t *testing.T) {
	sched := project.NewAutoSaveScheduler(project.SaveModeInterval, time.Hour, 0, &countingSaver{}, project.NewNopLogger())
	sched.Stop() // never started
	sched.Start(context.Background())
	sched.Stop()
	sched.Stop()
}
