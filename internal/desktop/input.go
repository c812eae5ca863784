package desktop

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/termdesk/internal/actionlog"
	"github.com/1broseidon/termdesk/internal/apps"
	"github.com/1broseidon/termdesk/internal/geometry"
	"github.com/1broseidon/termdesk/internal/overlay"
	"github.com/1broseidon/termdesk/internal/windows"
)

// Pointer is a mouse press in desktop pixels.
type Pointer struct {
	Point  geometry.Point
	Double bool
	Ctrl   bool
	Shift  bool
}

type pressTarget int

const (
	pressNone pressTarget = iota
	pressWindowDrag
	pressWindowResize
	pressIcons
	pressSelect
)

// Start menu layout in cells: a border row, the search row, then one row
// per entry and a closing border.
const (
	startMenuCols   = 28
	startMenuHeader = 2
)

// StartMenuRect is where the open start menu is drawn, anchored to the
// bottom-left corner of the desktop.
func (d *Desktop) StartMenuRect() geometry.Rect {
	cw, ch := d.CellSize()
	h := (len(d.start.Entries()) + startMenuHeader + 1) * ch
	return geometry.Rect{X: 0, Y: d.size.Height - h, Width: startMenuCols * cw, Height: h}
}

func (d *Desktop) startMenuRow(p geometry.Point) int {
	_, ch := d.CellSize()
	return (p.Y-d.StartMenuRect().Y)/ch - startMenuHeader
}

// pushModal opens a dialog, remembering who had the keyboard.
func (d *Desktop) pushModal(m *overlay.Modal) {
	m.Return = d.focus
	d.modals.Push(m)
	d.start.Close()
	d.menu.Close()
}

// afterModal restores the focus owner of a dialog that just closed.
func (d *Desktop) afterModal(closed *overlay.Modal) {
	if closed == nil {
		return
	}
	if closed.Return == FocusDesktop {
		d.focus = FocusDesktop
		return
	}
	if _, ok := d.windows.Get(closed.Return); ok {
		d.focus = closed.Return
		return
	}
	d.refocus()
}

// MouseDown handles a left button press. Overlays get the press first,
// then windows from the top down, then icons and the bare desktop.
func (d *Desktop) MouseDown(ev Pointer) tea.Cmd {
	p := ev.Point
	d.press = pressNone

	if d.modals.Active() {
		closed, cmd := d.modals.Click(p, d.size)
		d.afterModal(closed)
		return d.batch(cmd)
	}
	if id, ok := d.toasts.HitTest(p, d.size); ok {
		d.toasts.Dismiss(id)
		return nil
	}
	if d.start.IsOpen() {
		if d.StartMenuRect().Contains(p) {
			if e, ok := d.start.At(d.startMenuRow(p)); ok {
				return d.batch(d.launchStartEntry(e))
			}
			return nil
		}
		d.start.Close()
	}
	if d.menu.IsOpen() {
		if !d.menu.Contains(p) {
			d.menu.Close()
			return nil
		}
		if action := d.menu.Click(p); action != "" {
			return d.batch(d.runMenuAction(action))
		}
		return nil
	}

	if hit, ok := d.windows.HitTest(p); ok {
		return d.batch(d.pressWindow(hit, ev))
	}

	d.focus = FocusDesktop
	toggle := ev.Ctrl || ev.Shift
	if id, ok := d.icons.HitTest(p); ok {
		if ev.Double && !toggle {
			d.icons.Click(id, false)
			rec, _ := d.icons.Get(id)
			return d.batch(d.openIcon(rec))
		}
		d.icons.BeginDrag(id, p, toggle)
		d.press = pressIcons
		return nil
	}
	d.icons.BeginSelection(p, toggle)
	d.press = pressSelect
	return nil
}

func (d *Desktop) pressWindow(hit windows.Hit, ev Pointer) tea.Cmd {
	d.windows.Focus(hit.ID)
	d.focus = hit.ID

	switch hit.Region {
	case windows.RegionTitle:
		if ev.Double {
			d.windows.ToggleMaximize(hit.ID)
			return nil
		}
		if d.windows.BeginDrag(hit.ID, ev.Point) {
			d.press = pressWindowDrag
		}
	case windows.RegionMinimize:
		d.windows.Minimize(hit.ID)
		d.refocus()
	case windows.RegionMaximize:
		d.windows.ToggleMaximize(hit.ID)
	case windows.RegionClose:
		d.CloseWindow(hit.ID)
	case windows.RegionResize:
		if d.windows.BeginResize(hit.ID, hit.Handle, ev.Point) {
			d.press = pressWindowResize
		}
	case windows.RegionContent:
		r, ok := d.windows.ContentRect(hit.ID)
		if !ok {
			return nil
		}
		cw, ch := d.CellSize()
		return d.host.Send(hit.ID, apps.ClickMsg{
			Col:    (ev.Point.X - r.X) / cw,
			Row:    (ev.Point.Y - r.Y) / ch,
			Double: ev.Double,
			Ctrl:   ev.Ctrl,
			Shift:  ev.Shift,
		})
	}
	return nil
}

// MouseMove continues whatever the last press started, or tracks the
// pointer over the context menu.
func (d *Desktop) MouseMove(p geometry.Point) tea.Cmd {
	switch d.press {
	case pressWindowDrag:
		d.windows.DragTo(p)
	case pressWindowResize:
		d.windows.ResizeTo(p)
	case pressIcons:
		d.icons.DragTo(p)
	case pressSelect:
		d.icons.UpdateSelection(p)
	default:
		if d.menu.IsOpen() {
			return d.menu.Hover(p)
		}
	}
	return nil
}

// MouseUp ends the current press.
func (d *Desktop) MouseUp(p geometry.Point) tea.Cmd {
	press := d.press
	d.press = pressNone

	switch press {
	case pressWindowDrag, pressWindowResize:
		id, ok := d.windows.EndInteraction()
		if !ok {
			return nil
		}
		action := actionlog.ActionMove
		if press == pressWindowResize {
			action = actionlog.ActionResize
		}
		if rec, ok := d.windows.Get(id); ok {
			d.actions.Log(action, map[string]any{
				"id": id, "x": rec.Geometry.X, "y": rec.Geometry.Y,
				"width": rec.Geometry.Width, "height": rec.Geometry.Height,
			})
		}
	case pressIcons:
		moving := d.icons.Dragging()
		drop := d.icons.EndDrag(p)
		if drop.IsFolderMove() {
			return d.batch(d.moveIntoFolder(drop.Folder, drop.Files))
		}
		if moving && drop.Persist {
			d.actions.Log(actionlog.ActionMove, map[string]any{
				"icons":     len(d.icons.Selected()),
				"relocated": len(drop.Relocated),
				"reverted":  drop.Reverted,
			})
			return d.batch(d.saveIcons())
		}
	case pressSelect:
		// A terminal sends no click after the release; the release stands
		// in for the trailing click and consumes the suppression.
		d.icons.EndSelection()
		d.icons.ClickEmpty()
	}
	return nil
}

// RightClick opens the desktop context menu. Right-clicking an unselected
// icon selects it first; right-clicking a window does nothing.
func (d *Desktop) RightClick(p geometry.Point) tea.Cmd {
	if d.modals.Active() || d.press != pressNone {
		return nil
	}
	d.start.Close()
	if _, ok := d.windows.HitTest(p); ok {
		d.menu.Close()
		return nil
	}
	d.focus = FocusDesktop
	if id, ok := d.icons.HitTest(p); ok {
		if !d.icons.IsSelected(id) {
			d.icons.Click(id, false)
		}
	}
	d.menuPoint = p
	d.menu.Open(p, overlay.DesktopItems(len(d.icons.SelectedEntries())), d.size)
	return nil
}

// Key handles a key press. Dialogs, then the start menu, then the context
// menu get it first. A focused window receives everything except ctrl+q,
// and ctrl+w closes it unless a text field has the keys.
func (d *Desktop) Key(msg tea.KeyMsg) tea.Cmd {
	if d.modals.Active() {
		closed, cmd := d.modals.Update(msg)
		d.afterModal(closed)
		return d.batch(cmd)
	}
	key := msg.String()

	if d.start.IsOpen() {
		return d.batch(d.startMenuKey(msg))
	}
	if d.menu.IsOpen() {
		switch key {
		case "up", "k":
			d.menu.Move(-1)
		case "down", "j":
			d.menu.Move(1)
		case "right", "l":
			d.menu.Right()
		case "left", "h":
			d.menu.Left()
		case "enter":
			if action := d.menu.Activate(); action != "" {
				return d.batch(d.runMenuAction(action))
			}
		case "esc":
			d.menu.Close()
		}
		return nil
	}

	if key == "ctrl+q" {
		return func() tea.Msg { return QuitRequestedMsg{} }
	}
	if d.focus != FocusDesktop {
		if _, ok := d.windows.Get(d.focus); ok {
			if key == "ctrl+w" && !d.host.CapturesKeys(d.focus) {
				d.CloseWindow(d.focus)
				return nil
			}
			return d.batch(d.host.Send(d.focus, msg))
		}
		d.focus = FocusDesktop
	}

	switch key {
	case "ctrl+a":
		d.icons.SelectAll()
	case "delete":
		return d.batch(d.deleteSelected())
	case "f2":
		return d.batch(d.renameSelected())
	case "enter":
		return d.batch(d.openSelection())
	case "esc":
		d.icons.ClearSelection()
	case "f5":
		return d.Refresh()
	}
	return nil
}

func (d *Desktop) startMenuKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		d.start.Close()
	case tea.KeyUp:
		d.start.Move(-1)
	case tea.KeyDown, tea.KeyTab:
		d.start.Move(1)
	case tea.KeyEnter:
		if e, ok := d.start.Selected(); ok {
			return d.launchStartEntry(e)
		}
	case tea.KeyBackspace:
		d.start.Backspace()
	case tea.KeyRunes, tea.KeySpace:
		d.start.Type(string(msg.Runes))
	}
	return nil
}

// QuitRequestedMsg asks the terminal adapter to save and exit.
type QuitRequestedMsg struct{}

// Update handles messages produced by desktop and app commands.
func (d *Desktop) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case apps.ScopedMsg:
		return d.batch(d.host.Route(msg))

	case overlay.ToastExpiredMsg:
		d.toasts.Dismiss(msg.ID)
		return nil

	case overlay.SubmenuHideMsg:
		d.menu.HideSubmenu(msg.Gen)
		return nil

	case layoutSavedMsg:
		if msg.err != nil {
			d.logger.Error("layout save failed", "what", msg.what, "error", msg.err)
			d.actions.Log(actionlog.ActionLayoutError, map[string]any{"what": msg.what, "error": msg.err})
		}
		return nil

	case rootListedMsg, entryCreatedMsg, entriesDeletedMsg, entryRenamedMsg, entriesMovedMsg:
		return d.batch(d.handleStoreResult(msg))
	}
	return nil
}
