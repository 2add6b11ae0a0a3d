package daemon

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestReconciler_RunsCheckOnTick(t *testing.T) {
	var checks atomic.Int32
	post := func(f func()) bool {
		f()
		return true
	}
	r := NewReconciler(ReconcilerConfig{Interval: 5 * time.Millisecond}, post, func() error {
		checks.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for checks.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("only %d checks ran", checks.Load())
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestReconciler_StopsWhenLoopGone(t *testing.T) {
	r := NewReconciler(ReconcilerConfig{Interval: time.Millisecond}, func(func()) bool { return false }, func() error {
		t.Error("check should not run")
		return nil
	})

	done := make(chan struct{})
	go func() {
		r.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return when post failed")
	}
}

func TestReconciler_SurvivesPanicAndErrors(t *testing.T) {
	calls := 0
	r := NewReconciler(ReconcilerConfig{}, nil, func() error {
		calls++
		if calls == 1 {
			panic("boom")
		}
		return errors.New("drift")
	})

	r.ReconcileNow()
	r.ReconcileNow()
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if r.interval != 10*time.Second {
		t.Errorf("default interval = %v", r.interval)
	}
}
