package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/1broseidon/termdesk/internal/apps"
	"github.com/1broseidon/termdesk/internal/desktop"
	"github.com/1broseidon/termdesk/internal/geometry"
	"github.com/1broseidon/termdesk/internal/icons"
	"github.com/1broseidon/termdesk/internal/overlay"
	"github.com/1broseidon/termdesk/internal/windows"
)

const (
	folderGlyph = "📁"
	fileGlyph   = "📄"
	startLabel  = " ⊞ Start "
	clockFormat = "15:04"
)

// renderer composes one frame of the desktop onto a canvas.
type renderer struct {
	c      *canvas
	d      *desktop.Desktop
	t      theme
	cw, ch int
}

// cells converts a desktop rect to a cell rect.
func (r *renderer) cells(g geometry.Rect) (col, row, width, height int) {
	col, row = g.X/r.cw, g.Y/r.ch
	return col, row, g.Right()/r.cw - col, g.Bottom()/r.ch - row
}

// render draws the desktop followed by the taskbar row.
func render(d *desktop.Desktop, cols, rows int, now time.Time) string {
	cw, ch := d.CellSize()
	r := &renderer{
		c:  newCanvas(cols, rows),
		d:  d,
		t:  themeFor(d.Appearance()),
		cw: cw,
		ch: ch,
	}
	r.c.fill(0, 0, cols, rows-1, ' ', r.t.desktop())
	r.icons()
	r.selection()
	for _, rec := range d.Windows().Stacking() {
		r.window(rec)
	}
	r.contextMenu()
	r.startMenu()
	r.modals()
	r.toasts()
	r.taskbar(rows-1, now)
	return r.c.String()
}

func (r *renderer) icons() {
	m := r.d.Icons()
	for _, rec := range m.Records() {
		g, ok := m.Rect(rec.ID)
		if !ok {
			continue
		}
		col, row, width, _ := r.cells(g)
		selected := m.IsSelected(rec.ID)
		glyph := rec.Glyph
		switch rec.Kind {
		case icons.KindFolder:
			glyph = folderGlyph
		case icons.KindFile:
			glyph = fileGlyph
		}
		r.c.text(col, row+1, centre(glyph, width), width, r.t.desktop())
		label := centre(rec.Label, width)
		r.c.text(col, row+3, label, width, r.t.iconLabel(selected))
	}
}

func (r *renderer) selection() {
	g, ok := r.d.Icons().SelectionRect()
	if !ok {
		return
	}
	col, row, width, height := r.cells(g)
	r.c.box(col, row, max(width, 2), max(height, 2), r.t.selectionBox())
}

func (r *renderer) window(rec windows.Record) {
	active := r.d.Windows().Active() == rec.ID
	chrome := r.d.Windows().Options().Chrome
	col, row, width, height := r.cells(rec.Geometry)

	r.c.fill(col, row, width, height, ' ', r.t.window())
	r.c.box(col, row, width, height, r.t.frame(active))

	titleRow := (rec.Geometry.Y + chrome.BorderY) / r.ch
	closeCol := (rec.Geometry.Right() - chrome.BorderX - chrome.ButtonWidth) / r.cw
	minCol := closeCol - 2*chrome.ButtonWidth/r.cw
	titleCol := col + chrome.BorderX/r.cw + 1
	title := rec.Title
	if rec.Maximized {
		title += " (maximized)"
	}
	r.c.text(titleCol, titleRow, title, minCol-titleCol-1, r.t.title(active))

	bw := chrome.ButtonWidth / r.cw
	for i, b := range []string{"_", "□", "x"} {
		at := minCol + i*bw
		r.c.text(at, titleRow, centre(b, bw), bw, r.t.frame(active))
	}

	content := windows.ContentOf(rec.Geometry, chrome)
	ccol, crow, cwidth, cheight := r.cells(content)
	if cwidth <= 0 || cheight <= 0 {
		return
	}
	view := r.d.Host().Render(rec.ID, cwidth, cheight)
	r.c.blit(ccol, crow, cwidth, cheight, view, r.t.window())
}

func (r *renderer) menuItems(items []overlay.MenuItem, g geometry.Rect, hover int) {
	col, row, width, _ := r.cells(g)
	rowsPer := max(g.Height/max(len(items), 1)/r.ch, 1)
	for i, it := range items {
		y := row + i*rowsPer
		style := r.t.menu(i == hover && !it.Disabled, !it.Disabled)
		r.c.fill(col, y, width, rowsPer, ' ', style)
		if it.IsDivider {
			r.c.text(col, y, strings.Repeat("─", width), width, r.t.menuFrame())
			continue
		}
		label := " " + it.Label
		r.c.text(col, y, label, width, style)
		if it.IsParent() {
			r.c.text(col+width-2, y, "▸", 1, style)
		}
	}
}

func (r *renderer) contextMenu() {
	menu := r.d.Menu()
	if !menu.IsOpen() {
		return
	}
	r.menuItems(menu.Items(), menu.Rect(), menu.Hovered())
	if items, g, hover, ok := menu.Submenu(); ok {
		r.menuItems(items, g, hover)
	}
}

func (r *renderer) startMenu() {
	sm := r.d.StartMenu()
	if !sm.IsOpen() {
		return
	}
	col, row, width, height := r.cells(r.d.StartMenuRect())
	r.c.fill(col, row, width, height, ' ', r.t.menu(false, true))
	r.c.box(col, row, width, height, r.t.menuFrame())
	r.c.text(col+1, row+1, " 🔍 "+sm.Query()+"▏", width-2, r.t.input())
	for i, e := range sm.Entries() {
		style := r.t.menu(i == sm.Cursor(), true)
		r.c.fill(col+1, row+2+i, width-2, 1, ' ', style)
		r.c.text(col+1, row+2+i, fmt.Sprintf(" %s  %s", e.Glyph, e.Label), width-2, style)
	}
}

func (r *renderer) modals() {
	size := r.d.Size()
	for _, m := range r.d.Modals().All() {
		l := m.Layout(size)
		col, row, width, height := r.cells(l.Box)
		r.c.fill(col, row, width, height, ' ', r.t.window())
		r.c.box(col, row, width, height, r.t.frame(true))
		r.c.text(col+2, row, " "+m.Title+" ", width-4, r.t.title(true))
		for i, line := range strings.Split(m.Message, "\n") {
			r.c.text(col+2, row+2+i, line, width-4, r.t.window())
		}
		if m.Kind == overlay.ModalPrompt {
			icol, irow, iwidth, _ := r.cells(l.Input)
			r.c.fill(icol, irow, iwidth, 1, ' ', r.t.input())
			r.c.text(icol, irow, promptValue(m, iwidth), iwidth, r.t.input())
		}
		r.button(l.OK, "OK", true)
		r.button(l.Cancel, "Cancel", false)
	}
}

// promptValue shows the tail of the value when it is wider than the field.
func promptValue(m *overlay.Modal, width int) string {
	v := m.Value() + "▏"
	if w := ansi.StringWidth(v); w > width {
		v = ansi.Cut(v, w-width, w)
	}
	return v
}

func (r *renderer) button(g geometry.Rect, label string, primary bool) {
	col, row, width, _ := r.cells(g)
	r.c.fill(col, row, width, 1, ' ', r.t.button(primary))
	r.c.text(col, row, centre(label, width), width, r.t.button(primary))
}

func (r *renderer) toasts() {
	toasts := r.d.Toasts()
	for i, g := range toasts.Layout(r.d.Size()) {
		t := toasts.Items()[i]
		col, row, width, height := r.cells(g)
		style := r.t.toast(t.Level)
		r.c.fill(col, row, width, height, ' ', style)
		r.c.text(col+1, row+height/2, t.Message, width-2, style)
	}
}

// taskSlot is a clickable span of the taskbar. An empty ID is the start
// button.
type taskSlot struct {
	ID        string
	Label     string
	Col       int
	Width     int
	Active    bool
	Minimized bool
}

const taskEntryWidth = 20

// taskbarSlots lays out the start button and one entry per window,
// leaving room for the clock at the right edge.
func taskbarSlots(d *desktop.Desktop, cols int) []taskSlot {
	startW := runewidth.StringWidth(startLabel)
	slots := []taskSlot{{Label: startLabel, Col: 0, Width: startW}}
	limit := cols - len(clockFormat) - 2
	col := startW + 1
	for _, e := range d.Windows().Taskbar() {
		w := min(taskEntryWidth, limit-col)
		if w < 4 {
			break
		}
		desc, _ := d.Host().Descriptor(e.App)
		slots = append(slots, taskSlot{
			ID:        e.ID,
			Label:     " " + appGlyph(desc) + " " + e.Title,
			Col:       col,
			Width:     w,
			Active:    e.Active,
			Minimized: e.Minimized,
		})
		col += w + 1
	}
	return slots
}

func (r *renderer) taskbar(row int, now time.Time) {
	cols := r.c.width
	r.c.fill(0, row, cols, 1, ' ', r.t.taskbar())
	for _, s := range taskbarSlots(r.d, cols) {
		style := r.t.taskEntry(s.Active, s.Minimized)
		if s.ID == "" {
			style = r.t.button(r.d.StartMenu().IsOpen())
		}
		r.c.fill(s.Col, row, s.Width, 1, ' ', style)
		r.c.text(s.Col, row, truncate(s.Label, s.Width), s.Width, style)
	}
	clock := now.Format(clockFormat)
	r.c.text(cols-len(clock)-1, row, clock, len(clock), r.t.taskbar())
}

// appGlyph falls back to a plain square for apps without a glyph.
func appGlyph(desc apps.Descriptor) string {
	if desc.Glyph != "" {
		return desc.Glyph
	}
	return "▪"
}
