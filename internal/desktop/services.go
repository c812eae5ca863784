package desktop

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/termdesk/internal/actionlog"
	"github.com/1broseidon/termdesk/internal/apps"
	"github.com/1broseidon/termdesk/internal/icons"
	"github.com/1broseidon/termdesk/internal/layout"
	"github.com/1broseidon/termdesk/internal/overlay"
	"github.com/1broseidon/termdesk/internal/store"
)

// windowServices is the apps.Services handed to the app in one window.
// Side effects that need the event loop are queued on the desktop and
// drained when the current message has been handled.
type windowServices struct {
	d        *Desktop
	windowID string
}

var _ apps.Services = (*windowServices)(nil)

func (s *windowServices) Context() context.Context { return s.d.ctx }
func (s *windowServices) Store() *store.Client     { return s.d.store }

func (s *windowServices) Notify(message string, level overlay.Level, d time.Duration) {
	s.d.queue(s.d.Notify(message, level, d))
}

func (s *windowServices) Confirm(title, message string, fn func(ok bool) tea.Cmd) {
	id := s.windowID
	s.d.pushModal(overlay.NewConfirm(title, message, func(ok bool) tea.Cmd {
		return apps.Scoped(id, fn(ok))
	}))
}

func (s *windowServices) Prompt(title, message, initial string, fn func(value string, ok bool) tea.Cmd) {
	id := s.windowID
	s.d.pushModal(overlay.NewPrompt(title, message, initial, func(value string, ok bool) tea.Cmd {
		return apps.Scoped(id, fn(value, ok))
	}))
}

func (s *windowServices) OpenFile(path string) {
	s.d.queue(s.d.OpenFile(path))
}

func (s *windowServices) StoreChanged(dir string) {
	s.d.queue(s.d.storeChanged(dir, s.windowID))
}

func (s *windowServices) RenameEntry(oldPath, newPath string) {
	s.d.renameEntry(oldPath, newPath)
}

func (s *windowServices) Appearance() apps.Appearance { return s.d.appearance }

func (s *windowServices) SetAppearance(a apps.Appearance) {
	s.d.queue(s.d.SetAppearance(a))
}

func (s *windowServices) SetTitle(title string) {
	s.d.windows.SetTitle(s.windowID, title)
}

// storeChanged tells other windows about a store mutation under dir and
// refreshes the icon layer when the root changed.
func (d *Desktop) storeChanged(dir, except string) tea.Cmd {
	var cmds []tea.Cmd
	for _, id := range d.host.Running() {
		if id == except {
			continue
		}
		cmds = append(cmds, d.host.Send(id, apps.StoreChangedMsg{Dir: dir}))
	}
	if dir == "" {
		cmds = append(cmds, d.listRoot())
	}
	return tea.Batch(cmds...)
}

// renameEntry carries icon identity across a rename done outside the
// desktop, e.g. in the explorer.
func (d *Desktop) renameEntry(oldPath, newPath string) {
	oldDir, oldName := store.Split(oldPath)
	newDir, newName := store.Split(newPath)
	if oldDir != "" || newDir != "" {
		return
	}
	if d.icons.Rename(oldName, newName) {
		d.actions.Log(actionlog.ActionRename, map[string]any{"from": oldName, "to": newName})
		d.queue(d.saveIcons())
	}
}

// SetAppearance applies and persists a new look. Theme and wallpaper are
// saved; grid snapping and the overlap policy last for the session.
func (d *Desktop) SetAppearance(a apps.Appearance) tea.Cmd {
	prev := d.appearance
	d.appearance = a

	opts := d.icons.Options()
	opts.SnapToGrid = a.SnapToGrid
	if a.OverlapPolicy != "" {
		opts.Policy = icons.Policy(a.OverlapPolicy)
	}
	d.icons.SetOptions(opts)

	d.actions.Log(actionlog.ActionAppearance, map[string]any{
		"theme":     a.Theme,
		"wallpaper": a.Wallpaper,
		"color":     a.WallpaperColor,
	})

	cmds := []tea.Cmd{d.host.Broadcast(apps.AppearanceMsg{Appearance: a})}
	if prev.Theme != a.Theme || prev.Wallpaper != a.Wallpaper || prev.WallpaperColor != a.WallpaperColor {
		cmds = append(cmds, d.saveAppearance())
	}
	if prev.SnapToGrid != a.SnapToGrid {
		cmds = append(cmds, d.saveIcons())
	}
	return tea.Batch(cmds...)
}

// layoutSavedMsg reports the outcome of a layout write.
type layoutSavedMsg struct {
	what string
	err  error
}

func (d *Desktop) saveIcons() tea.Cmd {
	kv, ctx, recs := d.kv, d.ctx, d.icons.Records()
	return func() tea.Msg {
		return layoutSavedMsg{what: "icons", err: layout.SaveIcons(ctx, kv, recs)}
	}
}

func (d *Desktop) saveAppearance() tea.Cmd {
	kv, ctx, a := d.kv, d.ctx, d.appearance
	return func() tea.Msg {
		return layoutSavedMsg{what: "appearance", err: layout.SaveAppearance(ctx, kv, a.Theme, a.Wallpaper, a.WallpaperColor)}
	}
}
