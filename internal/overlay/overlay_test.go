package overlay

import (
	"errors"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/imgoverlay/internal/config"
	"github.com/1broseidon/imgoverlay/internal/geometry"
	"github.com/1broseidon/imgoverlay/internal/platform"
)

func TestClampTransparency(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.8, 0.8},
		{0.1, 0.5},
		{1.7, 1.0},
		{0.751, 0.75},
		{0.5, 0.5},
		{math.NaN(), 1.0},
		{math.Inf(-1), 0.5},
		{math.Inf(1), 1.0},
	}
	for _, tt := range tests {
		if got := ClampTransparency(tt.in); got != tt.want {
			t.Errorf("ClampTransparency(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		t.Fatalf("OptionsFromConfig: %v", err)
	}
	if opts.Size != (geometry.Size{Width: 400, Height: 300}) {
		t.Errorf("size = %+v", opts.Size)
	}
	if opts.Padding != (geometry.Size{Width: 20, Height: 50}) {
		t.Errorf("padding = %+v", opts.Padding)
	}

	cfg.Theme.Background = "nope"
	if _, err := OptionsFromConfig(cfg); err == nil {
		t.Error("expected theme error")
	}
}

func TestCreateContentCentersAndPaints(t *testing.T) {
	fx := newOverlayFixture(t)

	want := geometry.Rect{X: 760, Y: 390, Width: 400, Height: 300}
	if diff := cmp.Diff(want, fx.surface.rect); diff != "" {
		t.Errorf("rect (-want +got):\n%s", diff)
	}
	if fx.surface.opacity != 0.8 {
		t.Errorf("opacity = %v", fx.surface.opacity)
	}
	if got := fx.painter.last(t).Bounds().Size(); got.X != 400 || got.Y != 300 {
		t.Errorf("painted %v, want 400x300", got)
	}
}

func TestLoadImageGrowsInPlace(t *testing.T) {
	fx := newOverlayFixture(t)
	path := writePNG(t, t.TempDir(), "a.png", 200, 100, color.RGBA{R: 255, A: 255})

	if err := fx.overlay.LoadImage(path); err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	want := geometry.Rect{X: 760, Y: 390, Width: 220, Height: 150}
	if diff := cmp.Diff(want, fx.surface.rect); diff != "" {
		t.Errorf("rect (-want +got):\n%s", diff)
	}
	st, err := fx.overlay.Status()
	if err != nil {
		t.Fatal(err)
	}
	if !st.HasImage || st.ImagePath != path {
		t.Errorf("status = %+v", st)
	}
	if diff := cmp.Diff([]string{path}, fx.watcher.watched); diff != "" {
		t.Errorf("watched (-want +got):\n%s", diff)
	}
	if got := fx.painter.last(t).Bounds().Size(); got.X != 220 || got.Y != 150 {
		t.Errorf("painted %v, want 220x150", got)
	}
}

func TestLoadThenClearUndoesShift(t *testing.T) {
	fx := newOverlayFixture(t)
	fx.surface.rect = geometry.Rect{X: 1500, Y: 800, Width: 400, Height: 300}
	path := writePNG(t, t.TempDir(), "big.png", 600, 400, color.RGBA{G: 255, A: 255})

	if err := fx.overlay.LoadImage(path); err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	shifted := geometry.Rect{X: 1290, Y: 620, Width: 620, Height: 450}
	if diff := cmp.Diff(shifted, fx.surface.rect); diff != "" {
		t.Fatalf("after load (-want +got):\n%s", diff)
	}

	if err := fx.overlay.ClearImage(); err != nil {
		t.Fatalf("ClearImage: %v", err)
	}
	restored := geometry.Rect{X: 1510, Y: 770, Width: 400, Height: 300}
	if diff := cmp.Diff(restored, fx.surface.rect); diff != "" {
		t.Errorf("after clear (-want +got):\n%s", diff)
	}
	st, _ := fx.overlay.Status()
	if st.HasImage || st.ImagePath != "" {
		t.Errorf("image still set: %+v", st)
	}
	if got := fx.watcher.watched[len(fx.watcher.watched)-1]; got != "" {
		t.Errorf("watcher still on %q", got)
	}
}

func TestLoadImageFitsLargeImageToMonitor(t *testing.T) {
	fx := newOverlayFixture(t)
	path := writePNG(t, t.TempDir(), "huge.png", 3640, 1960, color.White)

	if err := fx.overlay.LoadImage(path); err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	// Fitted into 1820x980, then padded.
	if got := fx.surface.rect.Size(); got != (geometry.Size{Width: 1840, Height: 1030}) {
		t.Errorf("size = %+v", got)
	}
}

func TestLoadImageFailureLeavesOverlayUntouched(t *testing.T) {
	fx := newOverlayFixture(t)
	before := fx.surface.rect
	frames := len(fx.painter.frames)

	bad := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := fx.overlay.LoadImage(bad); err == nil {
		t.Fatal("expected decode error")
	}
	if err := fx.overlay.LoadImage(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatal("expected open error")
	}
	if fx.surface.rect != before {
		t.Errorf("rect changed to %+v", fx.surface.rect)
	}
	if len(fx.painter.frames) != frames {
		t.Error("failed load repainted")
	}
}

func TestClearWithoutImageResizesOnScreen(t *testing.T) {
	fx := newOverlayFixture(t)
	fx.surface.rect = geometry.Rect{X: 1800, Y: 100, Width: 900, Height: 700}

	if err := fx.overlay.ClearImage(); err != nil {
		t.Fatalf("ClearImage: %v", err)
	}
	want := geometry.Rect{X: 1510, Y: 100, Width: 400, Height: 300}
	if diff := cmp.Diff(want, fx.surface.rect); diff != "" {
		t.Errorf("rect (-want +got):\n%s", diff)
	}
}

func TestReloadImage(t *testing.T) {
	fx := newOverlayFixture(t)
	if err := fx.overlay.ReloadImage(); !errors.Is(err, ErrNoImage) {
		t.Fatalf("ReloadImage without image = %v, want ErrNoImage", err)
	}

	dir := t.TempDir()
	path := writePNG(t, dir, "a.png", 50, 50, color.White)
	if err := fx.overlay.LoadImage(path); err != nil {
		t.Fatal(err)
	}
	frames := len(fx.painter.frames)

	fx.overlay.OnImageChanged(filepath.Join(dir, "other.png"))
	if len(fx.painter.frames) != frames {
		t.Error("change to another file triggered a repaint")
	}
	fx.overlay.OnImageChanged(path)
	if len(fx.painter.frames) != frames+1 {
		t.Error("change to displayed file did not repaint")
	}
}

func TestOnResizeCoalesces(t *testing.T) {
	fx := newOverlayFixture(t)
	frames := len(fx.painter.frames)

	fx.overlay.OnResize(geometry.Size{Width: 500, Height: 300})
	fx.overlay.OnResize(geometry.Size{Width: 510, Height: 320})
	fx.overlay.OnResize(geometry.Size{Width: 520, Height: 340})
	if len(fx.sched.queued) != 1 {
		t.Fatalf("queued %d repaints, want 1", len(fx.sched.queued))
	}
	fx.sched.run()
	if len(fx.painter.frames) != frames+1 {
		t.Fatalf("painted %d frames, want 1", len(fx.painter.frames)-frames)
	}
	if got := fx.painter.last(t).Bounds().Size(); got.X != 520 || got.Y != 340 {
		t.Errorf("painted %v, want 520x340", got)
	}

	fx.overlay.OnResize(geometry.Size{Width: 520, Height: 340})
	if len(fx.sched.queued) != 0 {
		t.Error("same size queued a repaint")
	}
}

func TestSetTransparency(t *testing.T) {
	fx := newOverlayFixture(t)

	got, err := fx.overlay.SetTransparency(0.2)
	if err != nil || got != 0.5 {
		t.Fatalf("SetTransparency(0.2) = %v, %v", got, err)
	}
	if fx.surface.opacity != 0.5 || fx.overlay.Transparency() != 0.5 {
		t.Errorf("opacity not applied: surface %v overlay %v", fx.surface.opacity, fx.overlay.Transparency())
	}
}

func TestSetTransparencyNaN(t *testing.T) {
	fx := newOverlayFixture(t)

	got, err := fx.overlay.SetTransparency(math.NaN())
	if err != nil {
		t.Fatalf("SetTransparency(NaN): %v", err)
	}
	if got != 1.0 || fx.surface.opacity != 1.0 {
		t.Errorf("NaN applied as %v (surface %v), want 1.0", got, fx.surface.opacity)
	}
}

func TestToolbarClicks(t *testing.T) {
	fx := newOverlayFixture(t)

	settings := ToolbarButtons(400)[2].Bounds
	fx.overlay.OnClick(settings.Center())
	if !fx.overlay.settings.IsOpen() {
		t.Fatal("settings button did not open the panel")
	}

	fx.overlay.OnClick(geometry.Point{X: 200, Y: 200})
	if fx.surface.raised != 1 {
		t.Errorf("raised %d times, want 1", fx.surface.raised)
	}
}

func TestSettingsClicksAdjustTransparency(t *testing.T) {
	fx := newOverlayFixture(t)
	if err := fx.overlay.OpenSettings(); err != nil {
		t.Fatal(err)
	}
	buttons := SettingsButtons(300)

	fx.overlay.OnSettingsClick(buttons[1].Bounds.Center())
	if got := fx.overlay.Transparency(); got != 0.85 {
		t.Errorf("after + = %v, want 0.85", got)
	}
	fx.overlay.OnSettingsClick(buttons[0].Bounds.Center())
	fx.overlay.OnSettingsClick(buttons[0].Bounds.Center())
	if got := fx.overlay.Transparency(); got != 0.75 {
		t.Errorf("after - - = %v, want 0.75", got)
	}

	fx.overlay.OnSettingsClick(buttons[len(buttons)-1].Bounds.Center())
	if fx.overlay.settings.IsOpen() {
		t.Error("close button left the panel open")
	}
}

func TestToggleDecorationsKeepsPanel(t *testing.T) {
	fx := newOverlayFixture(t)
	if err := fx.overlay.OpenSettings(); err != nil {
		t.Fatal(err)
	}
	panel := fx.panels.current(t)
	panel.rect.X, panel.rect.Y = 50, 60

	mode, err := fx.overlay.ToggleDecorations()
	if err != nil || mode != platform.Borderless {
		t.Fatalf("ToggleDecorations = %v, %v", mode, err)
	}
	if panel.raised != 1 {
		t.Errorf("panel raised %d times, want 1", panel.raised)
	}
	if panel.rect.X != 50 || panel.rect.Y != 60 {
		t.Errorf("panel moved to %d,%d", panel.rect.X, panel.rect.Y)
	}
	if len(fx.sched.queued) != 1 {
		t.Errorf("expected a deferred snap pass, got %d", len(fx.sched.queued))
	}
}

func TestToggleDecorationsRecreatesLostPanel(t *testing.T) {
	fx := newOverlayFixture(t)
	if err := fx.overlay.OpenSettings(); err != nil {
		t.Fatal(err)
	}
	fx.panels.current(t).valid = false

	if _, err := fx.overlay.ToggleDecorations(); err != nil {
		t.Fatal(err)
	}
	if len(fx.panels.surfaces) != 2 {
		t.Fatalf("created %d panels, want 2", len(fx.panels.surfaces))
	}
	if fx.panels.painters[0].released != 1 {
		t.Error("lost panel painter not released")
	}
	if !fx.overlay.settings.IsOpen() {
		t.Error("panel not reopened")
	}
}

func TestToggleAlwaysOnTopPanelFollows(t *testing.T) {
	fx := newOverlayFixture(t)
	fx.surface.onTop = true
	if err := fx.overlay.OpenSettings(); err != nil {
		t.Fatal(err)
	}
	panel := fx.panels.current(t)
	if !panel.onTop {
		t.Fatal("panel should start on top with the overlay")
	}

	on, err := fx.overlay.ToggleAlwaysOnTop()
	if err != nil || on {
		t.Fatalf("ToggleAlwaysOnTop = %v, %v", on, err)
	}
	if panel.onTop {
		t.Error("panel did not follow")
	}
}

func TestMinimizeRestoresFrame(t *testing.T) {
	fx := newOverlayFixture(t)
	fx.surface.mode = platform.Borderless

	if err := fx.overlay.Minimize(); err != nil {
		t.Fatal(err)
	}
	if fx.surface.mode != platform.Decorated || fx.surface.iconified != 1 {
		t.Errorf("mode %v iconified %d", fx.surface.mode, fx.surface.iconified)
	}
}

func TestReconcile(t *testing.T) {
	fx := newOverlayFixture(t)
	if err := fx.overlay.OpenSettings(); err != nil {
		t.Fatal(err)
	}
	fx.panels.current(t).valid = false
	fx.surface.rect.X = -500

	if err := fx.overlay.Reconcile(); err != nil {
		t.Fatal(err)
	}
	if fx.overlay.settings.IsOpen() {
		t.Error("vanished panel still reported open")
	}
	if fx.surface.rect.X != 10 {
		t.Errorf("x = %d, want 10", fx.surface.rect.X)
	}

	fx.surface.fullscreen = true
	fx.surface.rect.X = -500
	if err := fx.overlay.Reconcile(); err != nil {
		t.Fatal(err)
	}
	if fx.surface.rect.X != -500 {
		t.Error("fullscreen overlay was moved")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	fx := newOverlayFixture(t)
	if err := fx.overlay.OpenSettings(); err != nil {
		t.Fatal(err)
	}
	panel := fx.panels.current(t)

	if err := fx.overlay.Close(); err != nil {
		t.Fatal(err)
	}
	if err := fx.overlay.Close(); err != nil {
		t.Fatal(err)
	}
	if fx.surface.closed != 1 || panel.closed != 1 {
		t.Errorf("surface closed %d, panel closed %d", fx.surface.closed, panel.closed)
	}
	if !fx.watcher.closed {
		t.Error("watcher not closed")
	}
	if fx.closedCB != 1 {
		t.Errorf("OnClose ran %d times", fx.closedCB)
	}
}
