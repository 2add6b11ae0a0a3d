package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/1broseidon/imgoverlay/internal/config"
	"github.com/1broseidon/imgoverlay/internal/geometry"
	"github.com/1broseidon/imgoverlay/internal/platform"
	"github.com/1broseidon/imgoverlay/internal/policy"
)

type fakeSurface struct {
	rect       geometry.Rect
	monitor    geometry.Rect
	mode       platform.DecorationMode
	onTop      bool
	fullscreen bool
	opacity    float64
	valid      bool

	raised    int
	closed    int
	iconified int
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		monitor: geometry.Rect{Width: 1920, Height: 1080},
		valid:   true,
	}
}

func (f *fakeSurface) Rect() (geometry.Rect, error) { return f.rect, nil }

func (f *fakeSurface) SetPosition(x, y int) error {
	f.rect.X, f.rect.Y = x, y
	return nil
}

func (f *fakeSurface) SetPositionAndSize(r geometry.Rect) error {
	f.rect = r
	return nil
}

func (f *fakeSurface) DecorationMode() platform.DecorationMode { return f.mode }

func (f *fakeSurface) SetDecorationMode(mode platform.DecorationMode) error {
	f.mode = mode
	return nil
}

func (f *fakeSurface) Bounds(bool) (geometry.Rect, error) { return f.monitor, nil }

func (f *fakeSurface) SetOpacity(v float64) error {
	f.opacity = v
	return nil
}

func (f *fakeSurface) AlwaysOnTop() bool { return f.onTop }

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

func (f *fakeSurface) Raise() error {
	f.raised++
	return nil
}

func (f *fakeSurface) Close() error {
	f.closed++
	f.valid = false
	return nil
}

func (f *fakeSurface) Valid() bool { return f.valid }

type fakePainter struct {
	frames   []image.Image
	released int
}

func (p *fakePainter) Paint(img image.Image) error {
	p.frames = append(p.frames, img)
	return nil
}

func (p *fakePainter) Release() { p.released++ }

func (p *fakePainter) last(t *testing.T) image.Image {
	t.Helper()
	if len(p.frames) == 0 {
		t.Fatal("nothing painted")
	}
	return p.frames[len(p.frames)-1]
}

type fakeScheduler struct {
	queued []func()
}

func (s *fakeScheduler) Defer(f func()) { s.queued = append(s.queued, f) }

func (s *fakeScheduler) run() {
	for len(s.queued) > 0 {
		queued := s.queued
		s.queued = nil
		for _, f := range queued {
			f()
		}
	}
}

type fakeWatcher struct {
	watched []string
	closed  bool
}

func (w *fakeWatcher) Watch(path string) error {
	w.watched = append(w.watched, path)
	return nil
}

func (w *fakeWatcher) Close() error {
	w.closed = true
	return nil
}

// panelFactory hands out fresh fake surfaces and records them.
type panelFactory struct {
	surfaces []*fakeSurface
	painters []*fakePainter
}

func (f *panelFactory) create(string, geometry.Size) (platform.Surface, Painter, error) {
	s := newFakeSurface()
	p := &fakePainter{}
	f.surfaces = append(f.surfaces, s)
	f.painters = append(f.painters, p)
	return s, p, nil
}

func (f *panelFactory) current(t *testing.T) *fakeSurface {
	t.Helper()
	if len(f.surfaces) == 0 {
		t.Fatal("no panel created")
	}
	return f.surfaces[len(f.surfaces)-1]
}

func testTheme(t *testing.T) config.Theme {
	t.Helper()
	theme, err := config.DefaultConfig().Theme.Parse()
	if err != nil {
		t.Fatalf("parse theme: %v", err)
	}
	return theme
}

type fixture struct {
	surface  *fakeSurface
	painter  *fakePainter
	sched    *fakeScheduler
	panels   *panelFactory
	watcher  *fakeWatcher
	overlay  *Overlay
	closedCB int
}

func newOverlayFixture(t *testing.T) *fixture {
	t.Helper()
	fx := &fixture{
		surface: newFakeSurface(),
		painter: &fakePainter{},
		sched:   &fakeScheduler{},
		panels:  &panelFactory{},
		watcher: &fakeWatcher{},
	}
	theme := testTheme(t)
	settings := policy.Settings{MultiMonitor: false, SnapThreshold: 25}
	engine := policy.New(fx.surface, fx.sched, settings, nil)
	fx.overlay = New(engine, fx.painter, fx.sched, Options{
		Title:        "Image Overlay",
		Size:         geometry.Size{Width: 400, Height: 300},
		Transparency: 0.8,
		MaxInset:     100,
		Padding:      geometry.Size{Width: 20, Height: 50},
		Theme:        theme,
	}, nil)
	fx.overlay.SetSettingsPanel(NewSettingsPanel(fx.panels.create, fx.sched, SettingsOptions{
		Size:   geometry.Size{Width: 300, Height: 250},
		Offset: 10,
		Theme:  theme,
		Policy: settings,
	}, nil))
	fx.overlay.SetWatcher(fx.watcher)
	fx.overlay.OnClose(func() { fx.closedCB++ })

	if err := fx.overlay.CreateContent(); err != nil {
		t.Fatalf("CreateContent: %v", err)
	}
	return fx
}

// writePNG writes a solid w x h PNG into dir and returns its path.
func writePNG(t *testing.T, dir, name string, w, h int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}
