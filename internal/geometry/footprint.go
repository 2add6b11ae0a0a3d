package geometry

// Footprint is a window's geometry at a point in time, captured around a
// content-driven resize so the resize can be undone when the content goes away.
type Footprint Rect

// Rect returns the footprint as a Rect.
func (f Footprint) Rect() Rect { return Rect(f) }

// RestoreOrigin computes where a window should sit after shrinking back to
// target, given the footprints recorded before and after it grew.
//
// Each axis is handled independently. When the window moved toward the
// leading edge while growing, the grow was pushed back from the trailing
// screen edge, so the current origin is shifted forward by the size it is
// giving back. Every other combination keeps the current origin.
func RestoreOrigin(before, after Footprint, current Point, target Size) Point {
	return Point{
		X: restoreAxis(before.X, after.X, before.Width, after.Width, current.X, target.Width),
		Y: restoreAxis(before.Y, after.Y, before.Height, after.Height, current.Y, target.Height),
	}
}

func restoreAxis(beforePos, afterPos, beforeSize, afterSize, current, target int) int {
	delta := afterPos - beforePos
	grew := afterSize-beforeSize > 0
	if delta < 0 && grew {
		return current + (afterSize - target)
	}
	return current
}

// FitWithin scales size down to fit inside limit while preserving its aspect
// ratio. Sizes already inside the limit are returned unchanged.
func FitWithin(size, limit Size) Size {
	if size.Width <= 0 || size.Height <= 0 {
		return Size{}
	}
	if size.Width <= limit.Width && size.Height <= limit.Height {
		return size
	}
	if limit.Width <= 0 || limit.Height <= 0 {
		return Size{}
	}
	scaleX := float64(limit.Width) / float64(size.Width)
	scaleY := float64(limit.Height) / float64(size.Height)
	scale := min(scaleX, scaleY)
	return Size{
		Width:  int(float64(size.Width) * scale),
		Height: int(float64(size.Height) * scale),
	}
}
