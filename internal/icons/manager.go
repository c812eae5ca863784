package icons

import (
	"sort"

	"github.com/1broseidon/termdesk/internal/geometry"
	"github.com/1broseidon/termdesk/internal/store"
)

const (
	appColumnX     = 20
	stackTop       = 20
	stackSpacing   = 110
	stackRightEdge = 120
)

// Manager owns desktop icon positions, selection and drag state.
type Manager struct {
	opts   Options
	bounds geometry.Size

	records map[string]*Record
	order   []string
	// saved holds positions from a layout snapshot for icons that have not
	// been created yet.
	saved map[string]Record

	selected map[string]bool
	drag     *dragSession
	sel      *selectSession
	// suppressClick swallows the click that trails a rectangle selection.
	suppressClick bool
}

// NewManager creates an empty icon layer for a desktop of the given size.
func NewManager(opts Options, bounds geometry.Size) *Manager {
	if opts.IconSize.Width <= 0 || opts.IconSize.Height <= 0 {
		opts.IconSize = DefaultOptions().IconSize
	}
	if opts.Policy == "" {
		opts.Policy = PolicyAutoArrange
	}
	return &Manager{
		opts:     opts,
		bounds:   bounds,
		records:  make(map[string]*Record),
		saved:    make(map[string]Record),
		selected: make(map[string]bool),
	}
}

func (m *Manager) Options() Options      { return m.opts }
func (m *Manager) Bounds() geometry.Size { return m.bounds }

// Load seeds saved positions, usually from the persisted layout.
func (m *Manager) Load(saved []Record) {
	for _, r := range saved {
		if r.ID == "" {
			continue
		}
		m.saved[r.ID] = r
	}
}

// EnsureApps creates icons for built-in applications that do not have one.
func (m *Manager) EnsureApps(apps []AppIcon) {
	for i, app := range apps {
		id := AppID(app.Name)
		if rec, ok := m.records[id]; ok {
			rec.Label = app.Label
			rec.Glyph = app.Glyph
			continue
		}
		pos := geometry.Point{X: appColumnX, Y: stackTop + stackSpacing*i}
		if s, ok := m.saved[id]; ok {
			pos = s.Position()
		}
		pos = m.place(pos)
		m.add(&Record{ID: id, Kind: KindApp, Label: app.Label, RawName: app.Name, Glyph: app.Glyph, X: pos.X, Y: pos.Y})
	}
}

// Refresh mirrors a listing of the store root. Known ids keep their
// position, new entries get a default slot in a stack along the right edge
// and icons whose entry disappeared are removed.
func (m *Manager) Refresh(entries []store.Entry) {
	present := make(map[string]bool, len(entries))
	var fresh []*Record
	for idx, e := range entries {
		id := EntryID(e.Name)
		present[id] = true
		kind := KindOf(e)
		if rec, ok := m.records[id]; ok {
			rec.Kind = kind
			rec.RawName = e.Name
			rec.Label = DisplayLabel(e.Name, kind, m.opts.NoteExtensions)
			continue
		}
		rec := &Record{ID: id, Kind: kind, RawName: e.Name, Label: DisplayLabel(e.Name, kind, m.opts.NoteExtensions)}
		if s, ok := m.saved[id]; ok {
			pos := m.place(s.Position())
			rec.X, rec.Y = pos.X, pos.Y
			m.add(rec)
			continue
		}
		slot := m.stackSlot(idx)
		rec.X, rec.Y = slot.X, slot.Y
		fresh = append(fresh, rec)
	}

	for _, id := range append([]string(nil), m.order...) {
		rec := m.records[id]
		if rec.IsEntry() && !present[id] {
			m.remove(id)
		}
	}
	for id, s := range m.saved {
		if s.Kind != KindApp && !present[id] {
			delete(m.saved, id)
		}
	}

	for _, rec := range fresh {
		pos := geometry.FindFreeGridCell(rec.Position(), m.opts.IconSize, m.bounds, m.opts.Grid, m.rectsExcept(nil))
		pos = m.place(pos)
		rec.X, rec.Y = pos.X, pos.Y
		m.add(rec)
	}

	m.sortOrder(entries)
}

// Place adds an icon for a freshly created entry, centred on at when that
// cell is free.
func (m *Manager) Place(rawName string, kind Kind, at geometry.Point) Record {
	id := EntryID(rawName)
	desired := geometry.Point{X: at.X - m.opts.IconSize.Width/2, Y: at.Y - m.opts.IconSize.Height/2}
	pos := geometry.FindFreeGridCell(m.place(desired), m.opts.IconSize, m.bounds, m.opts.Grid, m.rectsExcept(map[string]bool{id: true}))
	pos = m.place(pos)
	if rec, ok := m.records[id]; ok {
		rec.X, rec.Y = pos.X, pos.Y
		return *rec
	}
	rec := &Record{ID: id, Kind: kind, RawName: rawName, Label: DisplayLabel(rawName, kind, m.opts.NoteExtensions), X: pos.X, Y: pos.Y}
	m.add(rec)
	return *rec
}

// Rename moves an entry icon to its new identity, keeping its position and
// selection state.
func (m *Manager) Rename(oldRaw, newRaw string) bool {
	oldID, newID := EntryID(oldRaw), EntryID(newRaw)
	if oldID == newID {
		return false
	}
	rec, ok := m.records[oldID]
	if !ok {
		if s, ok := m.saved[oldID]; ok {
			delete(m.saved, oldID)
			s.ID, s.RawName = newID, newRaw
			m.saved[newID] = s
			return true
		}
		return false
	}
	if _, taken := m.records[newID]; taken {
		m.remove(newID)
	}
	delete(m.records, oldID)
	rec.ID = newID
	rec.RawName = newRaw
	rec.Label = DisplayLabel(newRaw, rec.Kind, m.opts.NoteExtensions)
	m.records[newID] = rec
	for i, id := range m.order {
		if id == oldID {
			m.order[i] = newID
		}
	}
	if m.selected[oldID] {
		delete(m.selected, oldID)
		m.selected[newID] = true
	}
	return true
}

// Remove drops an icon.
func (m *Manager) Remove(id string) {
	if _, ok := m.records[id]; ok {
		m.remove(id)
	}
	delete(m.saved, id)
}

// Get returns a copy of the record with the given id.
func (m *Manager) Get(id string) (Record, bool) {
	rec, ok := m.records[id]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Records returns all icons in stacking order (last is topmost).
func (m *Manager) Records() []Record {
	out := make([]Record, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.records[id])
	}
	return out
}

// Rect returns the bounding box of an icon.
func (m *Manager) Rect(id string) (geometry.Rect, bool) {
	rec, ok := m.records[id]
	if !ok {
		return geometry.Rect{}, false
	}
	return geometry.RectAt(rec.Position(), m.opts.IconSize), true
}

// HitTest returns the topmost icon under p.
func (m *Manager) HitTest(p geometry.Point) (string, bool) {
	for i := len(m.order) - 1; i >= 0; i-- {
		id := m.order[i]
		if geometry.RectAt(m.records[id].Position(), m.opts.IconSize).Contains(p) {
			return id, true
		}
	}
	return "", false
}

// SetBounds updates the desktop size and pulls icons back inside it.
func (m *Manager) SetBounds(bounds geometry.Size) {
	m.bounds = bounds
	for _, rec := range m.records {
		pos := m.place(rec.Position())
		rec.X, rec.Y = pos.X, pos.Y
	}
}

// SetOptions replaces placement options. Enabling snap-to-grid realigns
// every icon.
func (m *Manager) SetOptions(opts Options) {
	if opts.IconSize.Width <= 0 || opts.IconSize.Height <= 0 {
		opts.IconSize = m.opts.IconSize
	}
	if opts.Policy == "" {
		opts.Policy = PolicyAutoArrange
	}
	m.opts = opts
	for _, id := range m.order {
		rec := m.records[id]
		if rec.IsEntry() {
			rec.Label = DisplayLabel(rec.RawName, rec.Kind, opts.NoteExtensions)
		}
		pos := m.place(rec.Position())
		rec.X, rec.Y = pos.X, pos.Y
	}
}

func (m *Manager) maxPos() geometry.Point {
	return geometry.Point{
		X: max(0, m.bounds.Width-m.opts.IconSize.Width),
		Y: max(0, m.bounds.Height-m.opts.IconSize.Height),
	}
}

// place snaps (when enabled) and clamps a position to the desktop.
func (m *Manager) place(p geometry.Point) geometry.Point {
	limit := m.maxPos()
	if m.opts.SnapToGrid {
		return geometry.Point{
			X: geometry.SnapWithin(p.X, m.opts.Grid, limit.X),
			Y: geometry.SnapWithin(p.Y, m.opts.Grid, limit.Y),
		}
	}
	return geometry.Point{
		X: geometry.Clamp(p.X, 0, limit.X),
		Y: geometry.Clamp(p.Y, 0, limit.Y),
	}
}

// stackSlot is the default position of the idx-th store entry: a column
// along the right edge, continuing in the next column to the left.
func (m *Manager) stackSlot(idx int) geometry.Point {
	perColumn := (m.bounds.Height-stackTop-m.opts.IconSize.Height)/stackSpacing + 1
	if perColumn < 1 {
		perColumn = 1
	}
	col, row := idx/perColumn, idx%perColumn
	return m.place(geometry.Point{
		X: m.bounds.Width - stackRightEdge - col*stackSpacing,
		Y: stackTop + row*stackSpacing,
	})
}

func (m *Manager) rectsExcept(skip map[string]bool) []geometry.Rect {
	out := make([]geometry.Rect, 0, len(m.order))
	for _, id := range m.order {
		if skip[id] {
			continue
		}
		out = append(out, geometry.RectAt(m.records[id].Position(), m.opts.IconSize))
	}
	return out
}

func (m *Manager) add(rec *Record) {
	if _, ok := m.records[rec.ID]; !ok {
		m.order = append(m.order, rec.ID)
	}
	m.records[rec.ID] = rec
	delete(m.saved, rec.ID)
}

func (m *Manager) remove(id string) {
	delete(m.records, id)
	delete(m.selected, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// sortOrder keeps app icons first, then entries in listing order.
func (m *Manager) sortOrder(entries []store.Entry) {
	rank := make(map[string]int, len(entries))
	for i, e := range entries {
		rank[EntryID(e.Name)] = i
	}
	sort.SliceStable(m.order, func(i, j int) bool {
		a, b := m.records[m.order[i]], m.records[m.order[j]]
		if (a.Kind == KindApp) != (b.Kind == KindApp) {
			return a.Kind == KindApp
		}
		if a.Kind == KindApp {
			return false
		}
		return rank[a.ID] < rank[b.ID]
	})
}
