// Package overlay is the image overlay window: its content, image lifecycle
// and settings panel, built on the policy engine.
package overlay

import "image"

// Renderable is a window that builds its own content once its surface
// exists.
type Renderable interface {
	CreateContent() error
}

// Painter shows a fully rendered frame on a surface.
type Painter interface {
	Paint(img image.Image) error
}

// Scheduler runs a task once the current event pass has finished.
type Scheduler interface {
	Defer(f func())
}
