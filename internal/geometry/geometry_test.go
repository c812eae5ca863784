package geometry

import "testing"

func TestSnap(t *testing.T) {
	tests := []struct {
		value, grid, want int
	}{
		{0, 20, 0},
		{9, 20, 0},
		{10, 20, 20},
		{29, 20, 20},
		{31, 20, 40},
		{-9, 20, 0},
		{-11, 20, -20},
		{37, 0, 37},
		{37, -5, 37},
	}
	for _, tt := range tests {
		if got := Snap(tt.value, tt.grid); got != tt.want {
			t.Errorf("Snap(%d, %d) = %d, want %d", tt.value, tt.grid, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		value, min, max, want int
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
		{5, 10, 0, 10},
	}
	for _, tt := range tests {
		if got := Clamp(tt.value, tt.min, tt.max); got != tt.want {
			t.Errorf("Clamp(%d, %d, %d) = %d, want %d", tt.value, tt.min, tt.max, got, tt.want)
		}
	}
}

func TestSnapWithinStaysAligned(t *testing.T) {
	// max 1195 is not a grid multiple; the largest aligned value is 1180.
	if got := SnapWithin(1199, 20, 1195); got != 1180 {
		t.Fatalf("SnapWithin = %d, want 1180", got)
	}
	if got := SnapWithin(-30, 20, 1195); got != 0 {
		t.Fatalf("SnapWithin negative = %d, want 0", got)
	}
	if got := SnapWithin(47, 20, 1195); got != 40 {
		t.Fatalf("SnapWithin = %d, want 40", got)
	}
}

func TestIntersects_EdgeTouchIsNotOverlap(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 80, Height: 90}
	tests := []struct {
		name string
		b    Rect
		want bool
	}{
		{"same", a, true},
		{"right edge", Rect{X: 80, Y: 0, Width: 80, Height: 90}, false},
		{"bottom edge", Rect{X: 0, Y: 90, Width: 80, Height: 90}, false},
		{"one pixel in", Rect{X: 79, Y: 89, Width: 10, Height: 10}, true},
		{"far", Rect{X: 500, Y: 500, Width: 10, Height: 10}, false},
		{"x overlap only", Rect{X: 10, Y: 200, Width: 10, Height: 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Intersects(a, tt.b); got != tt.want {
				t.Fatalf("Intersects(%+v, %+v) = %v, want %v", a, tt.b, got, tt.want)
			}
			if got := Intersects(tt.b, a); got != tt.want {
				t.Fatalf("Intersects is not symmetric for %+v", tt.b)
			}
		})
	}
	if !Touches(a, Rect{X: 80, Y: 0, Width: 5, Height: 5}) {
		t.Fatalf("expected Touches to include shared edges")
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize(Point{X: 100, Y: 50}, Point{X: 40, Y: 80})
	want := Rect{X: 40, Y: 50, Width: 60, Height: 30}
	if got != want {
		t.Fatalf("Normalize = %+v, want %+v", got, want)
	}
}

func TestFindFreeGridCell_EmptyAreaReturnsSnappedDesired(t *testing.T) {
	bounds := Size{Width: 1280, Height: 800}
	size := Size{Width: 80, Height: 90}
	for _, desired := range []Point{{X: 0, Y: 0}, {X: 113, Y: 247}, {X: 641, Y: 9}} {
		got := FindFreeGridCell(desired, size, bounds, 20, nil)
		want := Point{X: Snap(desired.X, 20), Y: Snap(desired.Y, 20)}
		if got != want {
			t.Fatalf("FindFreeGridCell(%+v) = %+v, want %+v", desired, got, want)
		}
	}
}

func TestFindFreeGridCell_SkipsObstacles(t *testing.T) {
	bounds := Size{Width: 400, Height: 300}
	size := Size{Width: 80, Height: 90}
	obstacles := []Rect{{X: 0, Y: 0, Width: 80, Height: 90}}

	got := FindFreeGridCell(Point{X: 0, Y: 0}, size, bounds, 20, obstacles)
	if got != (Point{X: 80, Y: 0}) {
		t.Fatalf("got %+v, want {80 0}", got)
	}
	box := RectAt(got, size)
	for _, o := range obstacles {
		if Intersects(box, o) {
			t.Fatalf("result %+v overlaps obstacle %+v", box, o)
		}
	}
}

func TestFindFreeGridCell_WrapsToOrigin(t *testing.T) {
	bounds := Size{Width: 200, Height: 100}
	size := Size{Width: 100, Height: 100}
	// The desired column is blocked; only x=0 is free.
	obstacles := []Rect{{X: 100, Y: 0, Width: 100, Height: 100}}

	got := FindFreeGridCell(Point{X: 100, Y: 0}, size, bounds, 20, obstacles)
	if got != (Point{X: 0, Y: 0}) {
		t.Fatalf("got %+v, want origin", got)
	}
}

func TestFindFreeGridCell_NoRoomReturnsClampedDesired(t *testing.T) {
	bounds := Size{Width: 100, Height: 100}
	size := Size{Width: 100, Height: 100}
	obstacles := []Rect{{X: 0, Y: 0, Width: 100, Height: 100}}

	got := FindFreeGridCell(Point{X: 500, Y: -40}, size, bounds, 20, obstacles)
	if got != (Point{X: 0, Y: 0}) {
		t.Fatalf("got %+v, want clamped {0 0}", got)
	}
}
