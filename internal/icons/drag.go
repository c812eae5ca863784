package icons

import (
	"github.com/1broseidon/termdesk/internal/geometry"
)

type dragSession struct {
	pressed     string
	wasSelected bool
	toggle      bool
	anchor      geometry.Point
	ids         []string
	initial     map[string]geometry.Point
	active      bool
}

type selectSession struct {
	anchor geometry.Point
	rect   geometry.Rect
	base   map[string]bool
}

// Click selects id, replacing the selection, or toggles it when toggle is
// set.
func (m *Manager) Click(id string, toggle bool) {
	if _, ok := m.records[id]; !ok {
		return
	}
	if toggle {
		if m.selected[id] {
			delete(m.selected, id)
		} else {
			m.selected[id] = true
		}
		return
	}
	m.selected = map[string]bool{id: true}
}

// ClickEmpty handles a click on bare desktop. The click that trails a
// rectangle selection is swallowed; any other clears the selection.
// It reports whether the selection was cleared.
func (m *Manager) ClickEmpty() bool {
	if m.suppressClick {
		m.suppressClick = false
		return false
	}
	m.ClearSelection()
	return true
}

func (m *Manager) SelectAll() {
	for _, id := range m.order {
		m.selected[id] = true
	}
}

func (m *Manager) ClearSelection() {
	m.selected = make(map[string]bool)
}

func (m *Manager) IsSelected(id string) bool { return m.selected[id] }

// Selected returns selected icon ids in stacking order.
func (m *Manager) Selected() []string {
	var out []string
	for _, id := range m.order {
		if m.selected[id] {
			out = append(out, id)
		}
	}
	return out
}

// SelectedEntries returns the selected file and folder icons.
func (m *Manager) SelectedEntries() []Record {
	var out []Record
	for _, id := range m.order {
		if rec := m.records[id]; m.selected[id] && rec.IsEntry() {
			out = append(out, *rec)
		}
	}
	return out
}

// BeginDrag starts a potential drag on icon id. An unselected icon is
// selected first, replacing the selection unless toggle is set.
func (m *Manager) BeginDrag(id string, pointer geometry.Point, toggle bool) {
	if _, ok := m.records[id]; !ok {
		return
	}
	was := m.selected[id]
	if !was {
		if toggle {
			m.selected[id] = true
		} else {
			m.selected = map[string]bool{id: true}
		}
	}
	s := &dragSession{
		pressed:     id,
		wasSelected: was,
		toggle:      toggle,
		anchor:      pointer,
		initial:     make(map[string]geometry.Point),
	}
	for _, sid := range m.Selected() {
		s.ids = append(s.ids, sid)
		s.initial[sid] = m.records[sid].Position()
	}
	m.drag = s
}

// Dragging reports whether icons are being moved.
func (m *Manager) Dragging() bool { return m.drag != nil && m.drag.active }

// DragTo moves every dragged icon by the pointer delta once the drag
// threshold has been passed.
func (m *Manager) DragTo(pointer geometry.Point) {
	s := m.drag
	if s == nil {
		return
	}
	dx, dy := pointer.X-s.anchor.X, pointer.Y-s.anchor.Y
	if !s.active {
		if abs(dx) < m.opts.DragThreshold && abs(dy) < m.opts.DragThreshold {
			return
		}
		s.active = true
	}
	for _, id := range s.ids {
		rec, ok := m.records[id]
		if !ok {
			continue
		}
		start := s.initial[id]
		pos := m.place(geometry.Point{X: start.X + dx, Y: start.Y + dy})
		rec.X, rec.Y = pos.X, pos.Y
	}
}

// EndDrag finishes the drag and resolves the drop. A press that never
// passed the threshold is treated as a click.
func (m *Manager) EndDrag(pointer geometry.Point) Drop {
	s := m.drag
	m.drag = nil
	if s == nil {
		return Drop{}
	}
	if !s.active {
		if s.toggle {
			if s.wasSelected {
				delete(m.selected, s.pressed)
			}
		} else {
			m.selected = map[string]bool{s.pressed: true}
		}
		return Drop{}
	}

	dragged := make(map[string]bool, len(s.ids))
	for _, id := range s.ids {
		dragged[id] = true
	}

	if folder, ok := m.folderAt(pointer, dragged); ok {
		var files []string
		for _, id := range s.ids {
			if rec, ok := m.records[id]; ok && rec.Kind == KindFile {
				files = append(files, rec.RawName)
			}
		}
		if len(files) > 0 {
			m.restore(s)
			return Drop{Folder: folder.RawName, Files: files}
		}
	}

	others := m.rectsExcept(dragged)
	overlap := false
	seen := append([]geometry.Rect(nil), others...)
	for _, id := range s.ids {
		r, ok := m.Rect(id)
		if !ok {
			continue
		}
		if intersectsAny(r, seen) {
			overlap = true
			break
		}
		seen = append(seen, r)
	}
	if !overlap {
		return Drop{Persist: true}
	}

	if m.opts.Policy == PolicyRevert {
		m.restore(s)
		return Drop{Reverted: true, Persist: true}
	}

	var relocated []string
	placed := append([]geometry.Rect(nil), others...)
	for _, id := range s.ids {
		rec, ok := m.records[id]
		if !ok {
			continue
		}
		r := geometry.RectAt(rec.Position(), m.opts.IconSize)
		if intersectsAny(r, placed) {
			pos := geometry.FindFreeGridCell(rec.Position(), m.opts.IconSize, m.bounds, m.opts.Grid, placed)
			pos = m.place(pos)
			rec.X, rec.Y = pos.X, pos.Y
			relocated = append(relocated, id)
			r = geometry.RectAt(pos, m.opts.IconSize)
		}
		placed = append(placed, r)
	}
	return Drop{Relocated: relocated, Persist: true}
}

// CancelDrag puts dragged icons back where the drag started.
func (m *Manager) CancelDrag() {
	if m.drag != nil {
		m.restore(m.drag)
		m.drag = nil
	}
}

func (m *Manager) restore(s *dragSession) {
	for _, id := range s.ids {
		if rec, ok := m.records[id]; ok {
			pos := m.place(s.initial[id])
			rec.X, rec.Y = pos.X, pos.Y
		}
	}
}

func (m *Manager) folderAt(p geometry.Point, exclude map[string]bool) (Record, bool) {
	for i := len(m.order) - 1; i >= 0; i-- {
		id := m.order[i]
		rec := m.records[id]
		if exclude[id] || rec.Kind != KindFolder {
			continue
		}
		if geometry.RectAt(rec.Position(), m.opts.IconSize).Contains(p) {
			return *rec, true
		}
	}
	return Record{}, false
}

// BeginSelection starts a rectangle selection at anchor. With extend set the
// current selection is kept and added to.
func (m *Manager) BeginSelection(anchor geometry.Point, extend bool) {
	base := make(map[string]bool)
	if extend {
		for id := range m.selected {
			base[id] = true
		}
	}
	m.sel = &selectSession{anchor: anchor, base: base, rect: geometry.Rect{X: anchor.X, Y: anchor.Y}}
	m.selected = copySet(base)
}

// UpdateSelection recomputes the rectangle and the icons it touches.
func (m *Manager) UpdateSelection(pointer geometry.Point) {
	if m.sel == nil {
		return
	}
	m.sel.rect = geometry.Normalize(m.sel.anchor, pointer)
	sel := copySet(m.sel.base)
	for _, id := range m.order {
		if geometry.Touches(geometry.RectAt(m.records[id].Position(), m.opts.IconSize), m.sel.rect) {
			sel[id] = true
		}
	}
	m.selected = sel
}

// EndSelection discards the rectangle and arms the one-shot click
// suppression.
func (m *Manager) EndSelection() {
	if m.sel == nil {
		return
	}
	m.sel = nil
	m.suppressClick = true
}

// SelectionRect returns the live selection rectangle.
func (m *Manager) SelectionRect() (geometry.Rect, bool) {
	if m.sel == nil {
		return geometry.Rect{}, false
	}
	return m.sel.rect, true
}

func (m *Manager) Selecting() bool { return m.sel != nil }

func intersectsAny(r geometry.Rect, others []geometry.Rect) bool {
	for _, o := range others {
		if geometry.Intersects(r, o) {
			return true
		}
	}
	return false
}

func copySet(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		if v {
			out[k] = true
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
