package geometry

// Rect represents a window position and size in global (virtual desktop)
// pixel coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Point is a global pixel coordinate.
type Point struct {
	X int
	Y int
}

// Size is a width/height pair.
type Size struct {
	Width  int
	Height int
}

// NewRect builds a Rect, clamping negative dimensions to zero.
func NewRect(x, y, width, height int) Rect {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Right returns the x coordinate one past the right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the y coordinate one past the bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Origin returns the top-left corner.
func (r Rect) Origin() Point { return Point{X: r.X, Y: r.Y} }

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// Moved returns r with its origin replaced by p.
func (r Rect) Moved(p Point) Rect {
	r.X = p.X
	r.Y = p.Y
	return r
}

// Resized returns r with its dimensions replaced by s.
func (r Rect) Resized(s Size) Rect {
	return NewRect(r.X, r.Y, s.Width, s.Height)
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// Center returns the center point of r.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Intersect returns the overlapping region of r and o, or the zero Rect when
// they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	x1 := max(r.X, o.X)
	y1 := max(r.Y, o.Y)
	x2 := min(r.Right(), o.Right())
	y2 := min(r.Bottom(), o.Bottom())
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Union returns the bounding box of all non-empty rects. This is the virtual
// desktop when given every monitor.
func Union(rects ...Rect) Rect {
	var out Rect
	first := true
	for _, r := range rects {
		if r.Empty() {
			continue
		}
		if first {
			out = r
			first = false
			continue
		}
		x1 := min(out.X, r.X)
		y1 := min(out.Y, r.Y)
		x2 := max(out.Right(), r.Right())
		y2 := max(out.Bottom(), r.Bottom())
		out = Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
	}
	return out
}
