package geometry

import "math"

// Point is a position in logical desktop pixels.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a width/height pair in logical desktop pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether s has no area.
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Rect represents an element position and size
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RectAt builds a rect from a position and a size.
func RectAt(p Point, s Size) Rect {
	return Rect{X: p.X, Y: p.Y, Width: s.Width, Height: s.Height}
}

func (r Rect) Right() int  { return r.X + r.Width }
func (r Rect) Bottom() int { return r.Y + r.Height }

func (r Rect) Origin() Point { return Point{X: r.X, Y: r.Y} }
func (r Rect) Size() Size    { return Size{Width: r.Width, Height: r.Height} }

func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Translate returns r moved by dx, dy.
func (r Rect) Translate(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Snap rounds value to the nearest multiple of grid. Halves round towards
// positive infinity. A non-positive grid disables snapping.
func Snap(value, grid int) int {
	if grid <= 0 {
		return value
	}
	return int(math.Floor(float64(value)/float64(grid)+0.5)) * grid
}

// Clamp limits value to [min, max]. When max < min the result is min.
func Clamp(value, min, max int) int {
	if value > max {
		value = max
	}
	if value < min {
		value = min
	}
	return value
}

// SnapWithin snaps value to the grid and keeps the result inside [0, max]
// while staying grid-aligned.
func SnapWithin(value, grid, max int) int {
	if grid <= 0 {
		return Clamp(value, 0, max)
	}
	v := Snap(value, grid)
	if v > max {
		v = (max / grid) * grid
	}
	if v < 0 {
		v = 0
	}
	return v
}

// Intersects reports whether a and b overlap on both axes. Rectangles that
// only share an edge do not intersect.
func Intersects(a, b Rect) bool {
	return a.X < b.Right() && b.X < a.Right() && a.Y < b.Bottom() && b.Y < a.Bottom()
}

// Touches is the inclusive variant of Intersects: shared edges count.
func Touches(a, b Rect) bool {
	return a.X <= b.Right() && b.X <= a.Right() && a.Y <= b.Bottom() && b.Y <= a.Bottom()
}

// Normalize returns the rectangle spanned by two corner points.
func Normalize(a, b Point) Rect {
	x, w := a.X, b.X-a.X
	if w < 0 {
		x, w = b.X, -w
	}
	y, h := a.Y, b.Y-a.Y
	if h < 0 {
		y, h = b.Y, -h
	}
	return Rect{X: x, Y: y, Width: w, Height: h}
}

// FindFreeGridCell returns the first grid-aligned position, scanning row by
// row from the snapped desired point, whose box of the given size does not
// intersect any obstacle. Rows after the first restart at the desired
// column; when that pass fails the whole area is scanned from (0,0). If no
// free cell exists the clamped desired position is returned.
func FindFreeGridCell(desired Point, size Size, bounds Size, grid int, obstacles []Rect) Point {
	maxX := bounds.Width - size.Width
	if maxX < 0 {
		maxX = 0
	}
	maxY := bounds.Height - size.Height
	if maxY < 0 {
		maxY = 0
	}
	step := grid
	if step <= 0 {
		step = 1
	}

	start := Point{X: SnapWithin(desired.X, grid, maxX), Y: SnapWithin(desired.Y, grid, maxY)}

	free := func(x, y int) bool {
		box := Rect{X: x, Y: y, Width: size.Width, Height: size.Height}
		for _, o := range obstacles {
			if Intersects(box, o) {
				return false
			}
		}
		return true
	}

	for y := start.Y; y <= maxY; y += step {
		for x := start.X; x <= maxX; x += step {
			if free(x, y) {
				return Point{X: x, Y: y}
			}
		}
	}
	for y := 0; y <= maxY; y += step {
		for x := 0; x <= maxX; x += step {
			if free(x, y) {
				return Point{X: x, Y: y}
			}
		}
	}
	return start
}
