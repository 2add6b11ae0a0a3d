package policy

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/imgoverlay/internal/geometry"
	"github.com/1broseidon/imgoverlay/internal/platform"
)

type fakeSurface struct {
	rect       geometry.Rect
	monitor    geometry.Rect
	desktop    geometry.Rect
	desktopErr error
	mode       platform.DecorationMode
	modeErr    error
	onTop      bool
	fullscreen bool

	sets      int
	iconified int
	modeLog   []platform.DecorationMode
}

func (f *fakeSurface) Rect() (geometry.Rect, error) { return f.rect, nil }

func (f *fakeSurface) SetPosition(x, y int) error {
	f.rect.X, f.rect.Y = x, y
	f.sets++
	return nil
}

func (f *fakeSurface) SetPositionAndSize(r geometry.Rect) error {
	f.rect = r
	f.sets++
	return nil
}

func (f *fakeSurface) DecorationMode() platform.DecorationMode { return f.mode }

func (f *fakeSurface) SetDecorationMode(mode platform.DecorationMode) error {
	if f.modeErr != nil {
		return f.modeErr
	}
	f.mode = mode
	f.modeLog = append(f.modeLog, mode)
	return nil
}

func (f *fakeSurface) Bounds(multiMonitor bool) (geometry.Rect, error) {
	if multiMonitor {
		return f.desktop, f.desktopErr
	}
	return f.monitor, nil
}

func (f *fakeSurface) SetOpacity(float64) error { return nil }
func (f *fakeSurface) AlwaysOnTop() bool        { return f.onTop }

func (f *fakeSurface) SetAlwaysOnTop(on bool) error {
	f.onTop = on
	return nil
}

func (f *fakeSurface) Fullscreen() bool { return f.fullscreen }

func (f *fakeSurface) SetFullscreen(on bool) error {
	f.fullscreen = on
	return nil
}

func (f *fakeSurface) Iconify() error {
	f.iconified++
	return nil
}

func (f *fakeSurface) Raise() error { return nil }
func (f *fakeSurface) Close() error { return nil }
func (f *fakeSurface) Valid() bool  { return true }

type fakeScheduler struct {
	queued []func()
}

func (s *fakeScheduler) Defer(f func()) { s.queued = append(s.queued, f) }

func (s *fakeScheduler) run() {
	queued := s.queued
	s.queued = nil
	for _, f := range queued {
		f()
	}
}

func newFixture(r geometry.Rect) (*fakeSurface, *fakeScheduler, *Engine) {
	screen := geometry.Rect{Width: 1920, Height: 1080}
	surface := &fakeSurface{rect: r, monitor: screen, desktop: screen}
	sched := &fakeScheduler{}
	return surface, sched, New(surface, sched, Settings{MultiMonitor: true}, nil)
}

func TestEngine_Center(t *testing.T) {
	surface, _, e := newFixture(geometry.Rect{Width: 10, Height: 10})

	if err := e.Center(geometry.Size{Width: 400, Height: 300}); err != nil {
		t.Fatalf("Center: %v", err)
	}
	want := geometry.Rect{X: 760, Y: 390, Width: 400, Height: 300}
	if diff := cmp.Diff(want, surface.rect); diff != "" {
		t.Fatalf("rect mismatch (-want +got):\n%s", diff)
	}
	if surface.sets != 1 {
		t.Fatalf("expected one atomic move/resize, got %d", surface.sets)
	}
}

func TestEngine_CenterOversized(t *testing.T) {
	surface, _, e := newFixture(geometry.Rect{})
	surface.monitor = geometry.Rect{Width: 800, Height: 600}

	if err := e.Center(geometry.Size{Width: 1000, Height: 700}); err != nil {
		t.Fatalf("Center: %v", err)
	}
	if got := surface.rect.Origin(); got != (geometry.Point{X: 10, Y: 10}) {
		t.Fatalf("expected oversized window pinned to 10,10, got %+v", got)
	}
}

func TestEngine_SnapIfClose(t *testing.T) {
	tests := []struct {
		name  string
		rect  geometry.Rect
		want  geometry.Rect
		moves int
	}{
		{
			name:  "near left edge",
			rect:  geometry.Rect{X: 20, Y: 400, Width: 400, Height: 300},
			want:  geometry.Rect{X: 10, Y: 400, Width: 400, Height: 300},
			moves: 1,
		},
		{
			name:  "away from every edge",
			rect:  geometry.Rect{X: 500, Y: 400, Width: 400, Height: 300},
			want:  geometry.Rect{X: 500, Y: 400, Width: 400, Height: 300},
			moves: 0,
		},
		{
			name:  "far off screen is not clamped",
			rect:  geometry.Rect{X: -300, Y: 400, Width: 400, Height: 300},
			want:  geometry.Rect{X: -300, Y: 400, Width: 400, Height: 300},
			moves: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			surface, _, e := newFixture(tt.rect)
			if err := e.SnapIfClose(DefaultSnapThreshold); err != nil {
				t.Fatalf("SnapIfClose: %v", err)
			}
			if diff := cmp.Diff(tt.want, surface.rect); diff != "" {
				t.Fatalf("rect mismatch (-want +got):\n%s", diff)
			}
			if surface.sets != tt.moves {
				t.Fatalf("expected %d moves, got %d", tt.moves, surface.sets)
			}
		})
	}
}

func TestEngine_EnsureOnScreen(t *testing.T) {
	surface, _, e := newFixture(geometry.Rect{X: -300, Y: 900, Width: 400, Height: 300})

	if err := e.EnsureOnScreen(); err != nil {
		t.Fatalf("EnsureOnScreen: %v", err)
	}
	want := geometry.Rect{X: 10, Y: 770, Width: 400, Height: 300}
	if diff := cmp.Diff(want, surface.rect); diff != "" {
		t.Fatalf("rect mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_ToggleDecorationsDefersSnap(t *testing.T) {
	surface, sched, e := newFixture(geometry.Rect{X: 5, Y: 400, Width: 400, Height: 300})

	mode, err := e.ToggleDecorations()
	if err != nil {
		t.Fatalf("ToggleDecorations: %v", err)
	}
	if mode != platform.Borderless || surface.mode != platform.Borderless {
		t.Fatalf("expected borderless, got %s (surface %s)", mode, surface.mode)
	}
	if surface.sets != 0 {
		t.Fatal("snap must wait for the settle point")
	}
	if len(sched.queued) != 1 {
		t.Fatalf("expected one deferred snap, got %d", len(sched.queued))
	}

	sched.run()
	if surface.rect.X != 1 {
		t.Fatalf("expected snap to borderless margin x=1, got %d", surface.rect.X)
	}

	mode, err = e.ToggleDecorations()
	if err != nil {
		t.Fatalf("ToggleDecorations: %v", err)
	}
	sched.run()
	if mode != platform.Decorated || surface.rect.X != 10 {
		t.Fatalf("expected decorated at x=10, got %s at x=%d", mode, surface.rect.X)
	}
}

func TestEngine_ToggleDecorationsPullsBackOnScreen(t *testing.T) {
	surface, sched, e := newFixture(geometry.Rect{X: -300, Y: 400, Width: 400, Height: 300})

	if _, err := e.ToggleDecorations(); err != nil {
		t.Fatalf("ToggleDecorations: %v", err)
	}
	sched.run()
	margin := platform.Borderless.Margin()
	if surface.rect.X < margin {
		t.Fatalf("window left off-screen after decoration toggle: x=%d", surface.rect.X)
	}
	if surface.rect.X != margin || surface.rect.Y != 400 {
		t.Fatalf("expected (%d, 400), got (%d, %d)", margin, surface.rect.X, surface.rect.Y)
	}
}

func TestEngine_ToggleDecorationsError(t *testing.T) {
	surface, sched, e := newFixture(geometry.Rect{X: 500, Y: 400, Width: 400, Height: 300})
	surface.modeErr = errors.New("remap failed")

	mode, err := e.ToggleDecorations()
	if err == nil {
		t.Fatal("expected error")
	}
	if mode != platform.Decorated {
		t.Fatalf("expected mode to stay decorated, got %s", mode)
	}
	if len(sched.queued) != 0 {
		t.Fatal("no snap should be queued after a failed toggle")
	}
}

func TestEngine_MinimizeForcesDecorated(t *testing.T) {
	surface, _, e := newFixture(geometry.Rect{X: 500, Y: 400, Width: 400, Height: 300})
	surface.mode = platform.Borderless

	if err := e.Minimize(); err != nil {
		t.Fatalf("Minimize: %v", err)
	}
	if surface.mode != platform.Decorated {
		t.Fatalf("expected decorated after minimize, got %s", surface.mode)
	}
	if surface.iconified != 1 {
		t.Fatalf("expected one iconify, got %d", surface.iconified)
	}

	// Already decorated: no mode change.
	if err := e.Minimize(); err != nil {
		t.Fatalf("Minimize: %v", err)
	}
	if len(surface.modeLog) != 1 || surface.iconified != 2 {
		t.Fatalf("unexpected mode changes %v / iconify %d", surface.modeLog, surface.iconified)
	}
}

func TestEngine_Toggles(t *testing.T) {
	surface, _, e := newFixture(geometry.Rect{X: 500, Y: 400, Width: 400, Height: 300})

	on, err := e.ToggleAlwaysOnTop()
	if err != nil || !on || !surface.onTop {
		t.Fatalf("expected always-on-top enabled, got %v (%v)", on, err)
	}
	on, err = e.ToggleAlwaysOnTop()
	if err != nil || on || surface.onTop {
		t.Fatalf("expected always-on-top disabled, got %v (%v)", on, err)
	}

	full, err := e.ToggleFullscreen()
	if err != nil || !full || !surface.fullscreen {
		t.Fatalf("expected fullscreen, got %v (%v)", full, err)
	}
}

func TestEngine_PositionRelativeTo(t *testing.T) {
	anchor, _, _ := newFixture(geometry.Rect{X: 1700, Y: 100, Width: 300, Height: 400})
	panel, _, e := newFixture(geometry.Rect{})

	size := geometry.Size{Width: 300, Height: 250}
	if err := e.PositionRelativeTo(anchor, size, geometry.Point{X: 10}); err != nil {
		t.Fatalf("PositionRelativeTo: %v", err)
	}
	want := geometry.Rect{X: 1390, Y: 100, Width: 300, Height: 250}
	if diff := cmp.Diff(want, panel.rect); diff != "" {
		t.Fatalf("rect mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_ContentGrowAndRestore(t *testing.T) {
	surface, _, e := newFixture(geometry.Rect{X: 1500, Y: 100, Width: 400, Height: 300})

	snap, err := e.ApplyContentSize(geometry.Size{Width: 800, Height: 600})
	if err != nil {
		t.Fatalf("ApplyContentSize: %v", err)
	}
	wantSnap := Snapshot{
		Before: geometry.Footprint{X: 1500, Y: 100, Width: 400, Height: 300},
		After:  geometry.Footprint{X: 1110, Y: 100, Width: 800, Height: 600},
	}
	if diff := cmp.Diff(wantSnap, snap); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}

	target := geometry.Size{Width: 400, Height: 300}
	if err := e.RestoreFootprint(snap.Before, snap.After, target); err != nil {
		t.Fatalf("RestoreFootprint: %v", err)
	}
	want := geometry.Rect{X: 1510, Y: 100, Width: 400, Height: 300}
	if diff := cmp.Diff(want, surface.rect); diff != "" {
		t.Fatalf("rect mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_RestoreFootprintScenario(t *testing.T) {
	surface, _, e := newFixture(geometry.Rect{X: 50, Y: 100, Width: 800, Height: 600})

	before := geometry.Footprint{X: 100, Y: 100, Width: 400, Height: 300}
	after := geometry.Footprint{X: 50, Y: 100, Width: 800, Height: 600}
	if err := e.RestoreFootprint(before, after, geometry.Size{Width: 400, Height: 300}); err != nil {
		t.Fatalf("RestoreFootprint: %v", err)
	}
	want := geometry.Rect{X: 450, Y: 100, Width: 400, Height: 300}
	if diff := cmp.Diff(want, surface.rect); diff != "" {
		t.Fatalf("rect mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_ResizeOnScreen(t *testing.T) {
	surface, _, e := newFixture(geometry.Rect{X: 1700, Y: 900, Width: 100, Height: 100})

	if err := e.ResizeOnScreen(geometry.Size{Width: 400, Height: 300}); err != nil {
		t.Fatalf("ResizeOnScreen: %v", err)
	}
	want := geometry.Rect{X: 1510, Y: 770, Width: 400, Height: 300}
	if diff := cmp.Diff(want, surface.rect); diff != "" {
		t.Fatalf("rect mismatch (-want +got):\n%s", diff)
	}
}
