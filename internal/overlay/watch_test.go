package overlay

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestWatcher(t *testing.T) (*Watcher, chan string) {
	t.Helper()
	changes := make(chan string, 8)
	w, err := NewWatcher(func(f func()) bool {
		f()
		return true
	}, func(path string) { changes <- path }, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	w.delay = 20 * time.Millisecond
	t.Cleanup(func() { w.Close() })
	return w, changes
}

func TestWatcherReportsRewrite(t *testing.T) {
	w, changes := newTestWatcher(t)
	dir := t.TempDir()
	path := writePNG(t, dir, "a.png", 4, 4, color.White)

	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	writePNG(t, dir, "a.png", 8, 8, color.Black)

	select {
	case got := <-changes:
		if got != path {
			t.Errorf("changed %q, want %q", got, path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcherIgnoresSiblings(t *testing.T) {
	w, changes := newTestWatcher(t)
	dir := t.TempDir()
	path := writePNG(t, dir, "a.png", 4, 4, color.White)
	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-changes:
		t.Fatalf("unexpected change %q", got)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherStop(t *testing.T) {
	w, changes := newTestWatcher(t)
	dir := t.TempDir()
	path := writePNG(t, dir, "a.png", 4, 4, color.White)
	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}
	if err := w.Watch(""); err != nil {
		t.Fatal(err)
	}
	if w.Path() != "" {
		t.Errorf("Path = %q after stop", w.Path())
	}

	writePNG(t, dir, "a.png", 8, 8, color.Black)
	select {
	case got := <-changes:
		t.Fatalf("unexpected change %q", got)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherCloseTwice(t *testing.T) {
	w, _ := newTestWatcher(t)
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
