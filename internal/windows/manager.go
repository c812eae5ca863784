package windows

import (
	"fmt"
	"sort"

	"github.com/1broseidon/termdesk/internal/geometry"
)

// minVisible is how much of a dragged window must stay on the desktop.
const minVisible = 100

type dragSession struct {
	id     string
	offset geometry.Point
}

type resizeSession struct {
	id     string
	handle Handle
	start  geometry.Point
	rect   geometry.Rect
}

// Manager owns window lifecycle, stacking and drag/resize state.
type Manager struct {
	opts   Options
	bounds geometry.Size

	windows map[string]*Record
	order   []string
	z       int
	active  string

	drag   *dragSession
	resize *resizeSession
}

// NewManager creates a window layer for a work area of the given size.
func NewManager(opts Options, bounds geometry.Size) *Manager {
	if opts.MinSize.Width <= 0 || opts.MinSize.Height <= 0 {
		opts.MinSize = DefaultOptions().MinSize
	}
	if opts.DefaultSize.Width <= 0 || opts.DefaultSize.Height <= 0 {
		opts.DefaultSize = DefaultOptions().DefaultSize
	}
	return &Manager{
		opts:    opts,
		bounds:  bounds,
		windows: make(map[string]*Record),
		z:       opts.ZBase,
	}
}

func (m *Manager) Options() Options      { return m.opts }
func (m *Manager) Bounds() geometry.Size { return m.bounds }

// Open creates the window for app or, when it already exists, restores and
// focuses it. saved, when non-nil, replaces the default geometry of a new
// window. It reports whether a window was created.
func (m *Manager) Open(app, title string, saved *geometry.Rect) (Record, bool) {
	id := ID(app)
	if rec, ok := m.windows[id]; ok {
		rec.Minimized = false
		m.focus(rec)
		return *rec, false
	}

	var rect geometry.Rect
	if saved != nil && !saved.Empty() {
		rect = m.fit(*saved)
	} else {
		size := m.opts.DefaultSize
		if s, ok := m.opts.AppSizes[app]; ok {
			size = s
		}
		n := len(m.order)
		rect = m.fit(geometry.Rect{
			X:      m.opts.CascadeOrigin.X + m.opts.CascadeStep*n,
			Y:      m.opts.CascadeOrigin.Y + m.opts.CascadeStep*n,
			Width:  size.Width,
			Height: size.Height,
		})
	}

	if title == "" {
		title = app
	}
	rec := &Record{ID: id, App: app, Title: title, Geometry: rect}
	m.windows[id] = rec
	m.order = append(m.order, id)
	m.focus(rec)
	return *rec, true
}

// Focus raises a window to the top of the stack and makes it active.
func (m *Manager) Focus(id string) error {
	rec, ok := m.windows[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWindow, id)
	}
	rec.Minimized = false
	m.focus(rec)
	return nil
}

func (m *Manager) focus(rec *Record) {
	m.z++
	rec.Z = m.z
	m.active = rec.ID
}

// Minimize hides a window without forgetting its state.
func (m *Manager) Minimize(id string) error {
	rec, ok := m.windows[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWindow, id)
	}
	rec.Minimized = true
	m.endSessionsFor(id)
	if m.active == id {
		m.recomputeActive()
	}
	return nil
}

// Restore shows a minimized window and focuses it.
func (m *Manager) Restore(id string) error {
	return m.Focus(id)
}

// ToggleMaximize fills the work area, or returns to the geometry the
// window had before it was maximized.
func (m *Manager) ToggleMaximize(id string) error {
	rec, ok := m.windows[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWindow, id)
	}
	m.endSessionsFor(id)
	if rec.Maximized {
		rec.Geometry = rec.Saved
		rec.Maximized = false
	} else {
		rec.Saved = rec.Geometry
		rec.Geometry = geometry.Rect{Width: m.bounds.Width, Height: m.bounds.Height}
		rec.Maximized = true
	}
	rec.Minimized = false
	m.focus(rec)
	return nil
}

// Close destroys a window and forgets its state.
func (m *Manager) Close(id string) error {
	if _, ok := m.windows[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWindow, id)
	}
	m.endSessionsFor(id)
	delete(m.windows, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	if m.active == id {
		m.recomputeActive()
	}
	return nil
}

// TaskbarClick focuses an inactive window, minimizes the active one and
// restores a minimized one.
func (m *Manager) TaskbarClick(id string) error {
	rec, ok := m.windows[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWindow, id)
	}
	switch {
	case rec.Minimized:
		return m.Restore(id)
	case m.active == id:
		return m.Minimize(id)
	default:
		return m.Focus(id)
	}
}

// Active returns the id of the most recently focused visible window.
func (m *Manager) Active() string { return m.active }

func (m *Manager) recomputeActive() {
	m.active = ""
	best := -1
	for _, rec := range m.windows {
		if rec.Minimized {
			continue
		}
		if rec.Z > best {
			best = rec.Z
			m.active = rec.ID
		}
	}
}

// Taskbar lists one entry per open window in opening order.
func (m *Manager) Taskbar() []TaskbarEntry {
	out := make([]TaskbarEntry, 0, len(m.order))
	for _, id := range m.order {
		rec := m.windows[id]
		out = append(out, TaskbarEntry{
			ID:        id,
			App:       rec.App,
			Title:     rec.Title,
			Active:    id == m.active,
			Minimized: rec.Minimized,
		})
	}
	return out
}

// Get returns a copy of a window record.
func (m *Manager) Get(id string) (Record, bool) {
	rec, ok := m.windows[id]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// SetTitle changes the title shown in the frame and on the taskbar.
func (m *Manager) SetTitle(id, title string) {
	if rec, ok := m.windows[id]; ok {
		rec.Title = title
	}
}

// Windows returns all open windows in opening order.
func (m *Manager) Windows() []Record {
	out := make([]Record, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.windows[id])
	}
	return out
}

// Stacking returns the visible windows from bottom to top.
func (m *Manager) Stacking() []Record {
	var out []Record
	for _, id := range m.order {
		if rec := m.windows[id]; !rec.Minimized {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Z < out[j].Z })
	return out
}

// Summaries returns the persisted form of every open window.
func (m *Manager) Summaries() []Summary {
	out := make([]Summary, 0, len(m.order))
	for _, id := range m.order {
		rec := m.windows[id]
		g := rec.NormalGeometry()
		out = append(out, Summary{
			ID:          id,
			IsOpen:      true,
			IsMinimized: rec.Minimized,
			IsMaximized: rec.Maximized,
			X:           g.X,
			Y:           g.Y,
			Width:       g.Width,
			Height:      g.Height,
		})
	}
	return out
}

// SetBounds changes the work area. Maximized windows follow it.
func (m *Manager) SetBounds(bounds geometry.Size) {
	m.bounds = bounds
	for _, rec := range m.windows {
		if rec.Maximized {
			rec.Geometry = geometry.Rect{Width: bounds.Width, Height: bounds.Height}
		}
	}
}

// fit enforces the minimum size and pulls a rect inside the work area when
// it fits there.
func (m *Manager) fit(r geometry.Rect) geometry.Rect {
	if m.bounds.Width > 0 && r.Width > m.bounds.Width {
		r.Width = m.bounds.Width
	}
	if m.bounds.Height > 0 && r.Height > m.bounds.Height {
		r.Height = m.bounds.Height
	}
	r.Width = max(r.Width, m.opts.MinSize.Width)
	r.Height = max(r.Height, m.opts.MinSize.Height)
	r.X = geometry.Clamp(r.X, 0, m.bounds.Width-r.Width)
	r.Y = geometry.Clamp(r.Y, 0, m.bounds.Height-r.Height)
	return r
}

func (m *Manager) endSessionsFor(id string) {
	if m.drag != nil && m.drag.id == id {
		m.drag = nil
	}
	if m.resize != nil && m.resize.id == id {
		m.resize = nil
	}
}
