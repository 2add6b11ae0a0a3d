package geometry

// axis describes one dimension of a window against one dimension of its
// bounds. lo/hi are the bounds' start and one-past-end coordinates.
type axis struct {
	pos    int
	size   int
	lo     int
	hi     int
	margin int
}

// fits reports whether the window fits between the two margins.
func (a axis) fits() bool {
	return a.size <= (a.hi-a.lo)-2*a.margin
}

// minPos is the smallest origin that keeps the leading edge inside the margin.
func (a axis) minPos() int { return a.lo + a.margin }

// maxPos is the largest origin that keeps the trailing edge inside the margin.
func (a axis) maxPos() int { return a.hi - a.size - a.margin }

func (a axis) nearLo(pos, threshold int) bool {
	return abs(pos-a.lo) <= threshold
}

func (a axis) nearHi(pos, threshold int) bool {
	return abs(pos+a.size-a.hi) <= threshold
}

// clamp forces the origin inside the margins. Oversized windows pin to the
// leading margin so their top/left edge (title bar, controls) stays visible.
func (a axis) clamp() int {
	if !a.fits() {
		return a.minPos()
	}
	pos := a.pos
	if pos < a.minPos() {
		pos = a.minPos()
	}
	if pos > a.maxPos() {
		pos = a.maxPos()
	}
	return pos
}

// snap moves pos onto an edge when it is within threshold of it. The trailing
// edge wins when both qualify; a leading snap that lands within threshold of
// the trailing edge is carried through so the result is a fixed point.
func (a axis) snap(pos, threshold int) int {
	if threshold < 0 {
		return pos
	}
	if !a.fits() {
		if a.nearLo(pos, threshold) || a.nearHi(pos, threshold) {
			return a.minPos()
		}
		return pos
	}
	if a.nearHi(pos, threshold) {
		return a.maxPos()
	}
	if a.nearLo(pos, threshold) {
		if a.nearHi(a.minPos(), threshold) {
			return a.maxPos()
		}
		return a.minPos()
	}
	return pos
}

func (a axis) resolve(threshold int, forceOnScreen bool) int {
	pos := a.pos
	if forceOnScreen {
		pos = a.clamp()
		if !a.fits() {
			return pos
		}
	}
	return a.snap(pos, threshold)
}

func horizontal(r, b Rect, margin int) axis {
	return axis{pos: r.X, size: r.Width, lo: b.X, hi: b.Right(), margin: margin}
}

func vertical(r, b Rect, margin int) axis {
	return axis{pos: r.Y, size: r.Height, lo: b.Y, hi: b.Bottom(), margin: margin}
}

// ClampIntoBounds returns r moved so its edges lie within bounds inset by
// margin. A window larger than the interior on an axis is pinned to the
// leading margin on that axis.
func ClampIntoBounds(r, bounds Rect, margin int) Rect {
	r.X = horizontal(r, bounds, margin).clamp()
	r.Y = vertical(r, bounds, margin).clamp()
	return r
}

// SnapToEdges moves each edge of r that lies within threshold pixels of the
// matching bounds edge onto that edge, offset by margin. Axes are handled
// independently.
func SnapToEdges(r, bounds Rect, margin, threshold int) Rect {
	h := horizontal(r, bounds, margin)
	v := vertical(r, bounds, margin)
	r.X = h.snap(r.X, threshold)
	r.Y = v.snap(r.Y, threshold)
	return r
}

// ResolvePosition is the single positioning rule used both for gentle edge
// magnetism and for the hard safety clamp. With forceOnScreen the window is
// first clamped inside the margins (clamping wins over snapping); without it
// only the snap-if-close rule applies and a window well inside the bounds is
// left untouched.
func ResolvePosition(r, bounds Rect, margin, threshold int, forceOnScreen bool) Rect {
	r.X = horizontal(r, bounds, margin).resolve(threshold, forceOnScreen)
	r.Y = vertical(r, bounds, margin).resolve(threshold, forceOnScreen)
	return r
}

// Center returns the origin that centers a window of the given size in bounds.
func Center(size Size, bounds Rect) Point {
	return Point{
		X: bounds.X + (bounds.Width-size.Width)/2,
		Y: bounds.Y + (bounds.Height-size.Height)/2,
	}
}

// RelativePosition places a window of the given size beside anchor: to the
// right by offset.X, flipping to the left when that overflows the bounds and
// centering horizontally when neither side fits. Vertically it aligns with
// the anchor's top plus offset.Y, kept between the top and bottom margins.
func RelativePosition(anchor Rect, size Size, bounds Rect, offset Point, margin int) Point {
	x := anchor.Right() + offset.X
	if x+size.Width > bounds.Right() {
		x = anchor.X - size.Width - offset.X
		if x < bounds.X {
			x = bounds.X + (bounds.Width-size.Width)/2
		}
	}

	y := anchor.Y + offset.Y
	if maxY := bounds.Bottom() - size.Height - margin; y > maxY {
		y = maxY
	}
	if minY := bounds.Y + margin; y < minY {
		y = minY
	}

	return Point{X: x, Y: y}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
