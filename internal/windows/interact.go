package windows

import (
	"github.com/1broseidon/termdesk/internal/geometry"
)

// BeginDrag starts moving a window by its title bar. Maximized and
// minimized windows cannot be dragged.
func (m *Manager) BeginDrag(id string, pointer geometry.Point) bool {
	rec, ok := m.windows[id]
	if !ok || rec.Maximized || rec.Minimized {
		return false
	}
	m.focus(rec)
	m.resize = nil
	m.drag = &dragSession{
		id:     id,
		offset: geometry.Point{X: pointer.X - rec.Geometry.X, Y: pointer.Y - rec.Geometry.Y},
	}
	return true
}

// DragTo moves the dragged window so the grab point follows the pointer.
// The title bar never leaves the top of the work area.
func (m *Manager) DragTo(pointer geometry.Point) {
	if m.drag == nil {
		return
	}
	rec, ok := m.windows[m.drag.id]
	if !ok {
		m.drag = nil
		return
	}
	g := rec.Geometry
	g.X = pointer.X - m.drag.offset.X
	g.Y = pointer.Y - m.drag.offset.Y
	g.X = geometry.Clamp(g.X, minVisible-g.Width, m.bounds.Width-minVisible)
	g.Y = geometry.Clamp(g.Y, 0, m.bounds.Height-m.opts.Chrome.BorderY-m.opts.Chrome.TitleHeight)
	rec.Geometry = g
}

// BeginResize starts resizing a window from one of its frame handles.
func (m *Manager) BeginResize(id string, handle Handle, pointer geometry.Point) bool {
	rec, ok := m.windows[id]
	if !ok || rec.Maximized || rec.Minimized || handle == HandleNone {
		return false
	}
	m.focus(rec)
	m.drag = nil
	m.resize = &resizeSession{id: id, handle: handle, start: pointer, rect: rec.Geometry}
	return true
}

// ResizeTo applies the pointer delta to the edges named by the handle. The
// minimum size holds throughout; when a west or north edge hits it, the
// opposite edge stays where it was.
func (m *Manager) ResizeTo(pointer geometry.Point) {
	s := m.resize
	if s == nil {
		return
	}
	rec, ok := m.windows[s.id]
	if !ok {
		m.resize = nil
		return
	}
	rec.Geometry = resized(s.rect, s.handle, pointer.X-s.start.X, pointer.Y-s.start.Y, m.opts.MinSize)
}

func resized(start geometry.Rect, h Handle, dx, dy int, minSize geometry.Size) geometry.Rect {
	r := start
	switch {
	case h.east():
		r.Width = max(minSize.Width, start.Width+dx)
	case h.west():
		r.Width = max(minSize.Width, start.Width-dx)
		r.X = start.X + start.Width - r.Width
	}
	switch {
	case h.south():
		r.Height = max(minSize.Height, start.Height+dy)
	case h.north():
		r.Height = max(minSize.Height, start.Height-dy)
		r.Y = start.Y + start.Height - r.Height
	}
	return r
}

// Interacting reports whether a drag or resize is in progress.
func (m *Manager) Interacting() bool { return m.drag != nil || m.resize != nil }

// EndInteraction finishes any drag or resize and returns the window that
// was being changed.
func (m *Manager) EndInteraction() (string, bool) {
	var id string
	switch {
	case m.drag != nil:
		id = m.drag.id
	case m.resize != nil:
		id = m.resize.id
	default:
		return "", false
	}
	m.drag, m.resize = nil, nil
	return id, true
}

func inside(r geometry.Rect, p geometry.Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// HitTest finds the topmost visible window under p and the part of its
// frame that was hit.
func (m *Manager) HitTest(p geometry.Point) (Hit, bool) {
	stack := m.Stacking()
	for i := len(stack) - 1; i >= 0; i-- {
		rec := stack[i]
		if !inside(rec.Geometry, p) {
			continue
		}
		return m.regionOf(rec, p), true
	}
	return Hit{}, false
}

func (m *Manager) regionOf(rec Record, p geometry.Point) Hit {
	c := m.opts.Chrome
	g := rec.Geometry
	hit := Hit{ID: rec.ID}

	left := p.X < g.X+c.BorderX
	right := p.X >= g.Right()-c.BorderX
	top := p.Y < g.Y+c.BorderY
	bottom := p.Y >= g.Bottom()-c.BorderY

	if left || right || top || bottom {
		if rec.Maximized {
			hit.Region = RegionFrame
			return hit
		}
		hit.Region = RegionResize
		switch {
		case top && left:
			hit.Handle = HandleNW
		case top && right:
			hit.Handle = HandleNE
		case bottom && left:
			hit.Handle = HandleSW
		case bottom && right:
			hit.Handle = HandleSE
		case top:
			hit.Handle = HandleN
		case bottom:
			hit.Handle = HandleS
		case left:
			hit.Handle = HandleW
		default:
			hit.Handle = HandleE
		}
		return hit
	}

	titleTop := g.Y + c.BorderY
	if p.Y < titleTop+c.TitleHeight {
		closeX := g.Right() - c.BorderX - c.ButtonWidth
		maxX := closeX - c.ButtonWidth
		minX := maxX - c.ButtonWidth
		switch {
		case p.X >= closeX:
			hit.Region = RegionClose
		case p.X >= maxX:
			hit.Region = RegionMaximize
		case p.X >= minX:
			hit.Region = RegionMinimize
		default:
			hit.Region = RegionTitle
		}
		return hit
	}
	hit.Region = RegionContent
	return hit
}

// ContentRect returns the area inside the frame and below the title bar.
func (m *Manager) ContentRect(id string) (geometry.Rect, bool) {
	rec, ok := m.windows[id]
	if !ok {
		return geometry.Rect{}, false
	}
	return ContentOf(rec.Geometry, m.opts.Chrome), true
}

// ContentOf returns the content area of a window with the given frame.
func ContentOf(g geometry.Rect, c Chrome) geometry.Rect {
	return geometry.Rect{
		X:      g.X + c.BorderX,
		Y:      g.Y + c.BorderY + c.TitleHeight,
		Width:  max(0, g.Width-2*c.BorderX),
		Height: max(0, g.Height-2*c.BorderY-c.TitleHeight),
	}
}
