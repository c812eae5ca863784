package desktop

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/termdesk/internal/actionlog"
	"github.com/1broseidon/termdesk/internal/apps"
	"github.com/1broseidon/termdesk/internal/geometry"
	"github.com/1broseidon/termdesk/internal/icons"
	"github.com/1broseidon/termdesk/internal/layout"
	"github.com/1broseidon/termdesk/internal/overlay"
	"github.com/1broseidon/termdesk/internal/store"
	"github.com/1broseidon/termdesk/internal/windows"
)

const (
	newNoteBase   = "untitled"
	newNoteExt    = ".txt"
	newFolderBase = "New Folder"
)

type rootListedMsg struct {
	res store.Result[[]store.Entry]
}

type entryCreatedMsg struct {
	name   string
	folder bool
	res    store.Ack
}

type entriesDeletedMsg struct {
	deleted []string
	failed  []string
}

type entryRenamedMsg struct {
	from, to string
	res      store.Ack
	// taken is set when the store already held the target name; the move
	// was not attempted.
	taken bool
	retry func()
}

type entriesMovedMsg struct {
	folder string
	moved  []string
	failed []string
}

func (d *Desktop) listRoot() tea.Cmd {
	if d.store == nil {
		return nil
	}
	client, ctx := d.store, d.ctx
	return func() tea.Msg {
		return rootListedMsg{res: client.List(ctx, "")}
	}
}

// Refresh re-lists the store root and rebuilds file icons.
func (d *Desktop) Refresh() tea.Cmd {
	d.actions.Log(actionlog.ActionRefresh, nil)
	return d.batch(d.listRoot(), d.host.Broadcast(apps.StoreChangedMsg{Dir: ""}))
}

// OpenApp opens or raises the window of a registered app.
func (d *Desktop) OpenApp(name string) (tea.Cmd, error) {
	cmd, err := d.openApp(name, nil)
	if err != nil {
		return nil, err
	}
	return d.batch(cmd), nil
}

func (d *Desktop) openApp(name string, saved *geometry.Rect) (tea.Cmd, error) {
	desc, ok := d.host.Descriptor(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", apps.ErrUnknownApp, name)
	}
	rec, created := d.windows.Open(name, desc.Title, saved)
	_, cmd, err := d.host.Start(name, &windowServices{d: d, windowID: rec.ID})
	if err != nil {
		d.windows.Close(rec.ID)
		return nil, err
	}
	d.windows.SetTitle(rec.ID, d.host.Title(rec.ID))
	d.focus = rec.ID
	d.start.Close()
	d.menu.Close()
	if created {
		d.actions.Log(actionlog.ActionOpen, map[string]any{"app": name, "id": rec.ID})
		d.logger.Debug("window opened", "id", rec.ID, "x", rec.Geometry.X, "y", rec.Geometry.Y)
	}
	return cmd, nil
}

// OpenFile shows a store file in the notes editor.
func (d *Desktop) OpenFile(path string) tea.Cmd {
	cmd, err := d.openApp("notes", nil)
	if err != nil {
		return d.Notify(err.Error(), overlay.LevelError, 0)
	}
	return tea.Batch(cmd, d.host.Send(windows.ID("notes"), apps.OpenPathMsg{Path: path}))
}

// OpenFolder shows a store folder in the explorer.
func (d *Desktop) OpenFolder(path string) tea.Cmd {
	cmd, err := d.openApp("explorer", nil)
	if err != nil {
		return d.Notify(err.Error(), overlay.LevelError, 0)
	}
	return tea.Batch(cmd, d.host.Send(windows.ID("explorer"), apps.OpenPathMsg{Path: path}))
}

// CloseWindow closes a window and stops its app.
func (d *Desktop) CloseWindow(id string) error {
	if err := d.windows.Close(id); err != nil {
		return err
	}
	d.host.Stop(id)
	d.actions.Log(actionlog.ActionClose, map[string]any{"id": id})
	d.refocus()
	return nil
}

// refocus hands the keyboard to the active window, or the desktop.
func (d *Desktop) refocus() {
	if active := d.windows.Active(); active != "" {
		d.focus = active
		return
	}
	d.focus = FocusDesktop
}

// TaskbarClick toggles a window from its taskbar button.
func (d *Desktop) TaskbarClick(id string) error {
	if err := d.windows.TaskbarClick(id); err != nil {
		return err
	}
	d.start.Close()
	d.menu.Close()
	d.refocus()
	return nil
}

// ToggleStartMenu opens or closes the start menu.
func (d *Desktop) ToggleStartMenu() {
	d.menu.Close()
	d.start.Toggle()
}

// launchStartEntry starts the selected start menu entry.
func (d *Desktop) launchStartEntry(e overlay.StartEntry) tea.Cmd {
	d.start.Close()
	cmd, err := d.openApp(e.Name, nil)
	if err != nil {
		return d.Notify(err.Error(), overlay.LevelError, 0)
	}
	return cmd
}

// openIcon opens whatever an icon stands for.
func (d *Desktop) openIcon(rec icons.Record) tea.Cmd {
	switch rec.Kind {
	case icons.KindApp:
		cmd, err := d.openApp(strings.TrimPrefix(rec.ID, icons.AppID("")), nil)
		if err != nil {
			return d.Notify(err.Error(), overlay.LevelError, 0)
		}
		return cmd
	case icons.KindFolder:
		return d.OpenFolder(rec.RawName)
	default:
		return d.OpenFile(rec.RawName)
	}
}

func (d *Desktop) openSelection() tea.Cmd {
	var cmds []tea.Cmd
	for _, id := range d.icons.Selected() {
		if rec, ok := d.icons.Get(id); ok {
			cmds = append(cmds, d.openIcon(rec))
		}
	}
	return tea.Batch(cmds...)
}

// runMenuAction performs a context menu action.
func (d *Desktop) runMenuAction(action string) tea.Cmd {
	switch action {
	case overlay.ActionNewNote:
		return d.createEntry(false)
	case overlay.ActionNewFolder:
		return d.createEntry(true)
	case overlay.ActionRefresh:
		return d.Refresh()
	case overlay.ActionWallpaper:
		a := d.appearance
		a.Wallpaper = layout.NextWallpaper(a.Wallpaper)
		return d.SetAppearance(a)
	case overlay.ActionDelete:
		return d.deleteSelected()
	case overlay.ActionRename:
		return d.renameSelected()
	}
	return nil
}

// createEntry makes a new note or folder in the store root under a free
// name and places its icon at the context menu point.
func (d *Desktop) createEntry(folder bool) tea.Cmd {
	if d.store == nil {
		return nil
	}
	taken := d.iconNames()
	client, ctx := d.store, d.ctx
	return func() tea.Msg {
		if res := client.List(ctx, ""); res.OK {
			for name := range store.Names(res.Value) {
				taken[name] = true
			}
		}
		if folder {
			name := store.UniqueName(taken, newFolderBase, "")
			return entryCreatedMsg{name: name, folder: true, res: client.CreateFolder(ctx, name)}
		}
		name := store.UniqueName(taken, newNoteBase, newNoteExt)
		return entryCreatedMsg{name: name, res: client.Write(ctx, name, "")}
	}
}

func (d *Desktop) iconNames() map[string]bool {
	taken := make(map[string]bool)
	for _, rec := range d.icons.Records() {
		if rec.IsEntry() {
			taken[rec.RawName] = true
		}
	}
	return taken
}

func (d *Desktop) deleteSelected() tea.Cmd {
	sel := d.icons.SelectedEntries()
	if len(sel) == 0 || d.store == nil {
		return nil
	}
	names := make([]string, len(sel))
	for i, rec := range sel {
		names[i] = rec.RawName
	}
	message := fmt.Sprintf("Delete %d item(s)?", len(names))
	if len(names) == 1 {
		message = fmt.Sprintf("Delete %q?", sel[0].Label)
	}

	client, ctx := d.store, d.ctx
	d.pushModal(overlay.NewConfirm("Delete", message, func(ok bool) tea.Cmd {
		if !ok {
			return nil
		}
		return func() tea.Msg {
			var msg entriesDeletedMsg
			for _, name := range names {
				if res := client.Delete(ctx, name); res.OK {
					msg.deleted = append(msg.deleted, name)
				} else {
					msg.failed = append(msg.failed, res.Err)
				}
			}
			return msg
		}
	}))
	return nil
}

func (d *Desktop) renameSelected() tea.Cmd {
	sel := d.icons.SelectedEntries()
	if len(sel) != 1 || d.store == nil {
		return nil
	}
	rec := sel[0]
	initial, ext := rec.RawName, ""
	if rec.Kind == icons.KindFile {
		initial, ext = store.SplitExt(rec.RawName)
	}
	d.promptRename(rec, initial, ext)
	return nil
}

// promptRename asks for a new name. The old extension is re-appended when
// omitted; invalid or taken names re-open the prompt with the rejected
// value.
func (d *Desktop) promptRename(rec icons.Record, initial, ext string) {
	d.pushModal(overlay.NewPrompt("Rename", "Enter new name:", initial, func(value string, ok bool) tea.Cmd {
		value = strings.TrimSpace(value)
		if !ok || value == "" {
			return nil
		}
		name := value
		if ext != "" && !strings.HasSuffix(strings.ToLower(value), strings.ToLower(ext)) {
			name = value + ext
		}
		if name == rec.RawName {
			return nil
		}
		if err := store.ValidateName(name); err != nil {
			d.promptRename(rec, value, ext)
			return d.Notify(err.Error(), overlay.LevelError, 0)
		}
		if d.iconNames()[name] {
			d.promptRename(rec, value, ext)
			return d.Notify(fmt.Sprintf("%q already exists", name), overlay.LevelError, 0)
		}
		from, client, ctx := rec.RawName, d.store, d.ctx
		retry := func() { d.promptRename(rec, value, ext) }
		return func() tea.Msg {
			if client.Exists(ctx, "", name) {
				return entryRenamedMsg{from: from, to: name, taken: true, retry: retry}
			}
			return entryRenamedMsg{from: from, to: name, res: client.Move(ctx, from, name)}
		}
	}))
}

// moveIntoFolder moves dropped files into a folder. Names already present
// in the folder are refused rather than overwritten.
func (d *Desktop) moveIntoFolder(folder string, files []string) tea.Cmd {
	if d.store == nil {
		return nil
	}
	client, ctx := d.store, d.ctx
	return func() tea.Msg {
		msg := entriesMovedMsg{folder: folder}
		for _, name := range files {
			if client.Exists(ctx, folder, name) {
				msg.failed = append(msg.failed, fmt.Sprintf("%q already exists in %s", name, folder))
				continue
			}
			if res := client.Move(ctx, name, store.Join(folder, name)); res.OK {
				msg.moved = append(msg.moved, name)
			} else {
				msg.failed = append(msg.failed, res.Err)
			}
		}
		return msg
	}
}

// handleStoreResult applies the outcome of a store request started by the
// desktop itself.
func (d *Desktop) handleStoreResult(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case rootListedMsg:
		if !msg.res.OK {
			return d.storeError("list", "", msg.res.Err)
		}
		d.icons.Refresh(msg.res.Value)
		return d.saveIcons()

	case entryCreatedMsg:
		if !msg.res.OK {
			return d.storeError("create", msg.name, msg.res.Err)
		}
		kind := icons.KindFile
		if msg.folder {
			kind = icons.KindFolder
		}
		rec := d.icons.Place(msg.name, kind, d.menuPoint)
		d.icons.Click(rec.ID, false)
		d.actions.Log(actionlog.ActionCreate, map[string]any{"path": msg.name, "folder": msg.folder})
		return tea.Batch(d.saveIcons(), d.storeChanged("", ""))

	case entriesDeletedMsg:
		for _, name := range msg.deleted {
			d.icons.Remove(icons.EntryID(name))
			d.actions.Log(actionlog.ActionDelete, map[string]any{"path": name})
		}
		cmds := []tea.Cmd{d.saveIcons(), d.storeChanged("", "")}
		if len(msg.failed) > 0 {
			cmds = append(cmds, d.storeError("delete", "", strings.Join(msg.failed, "; ")))
		}
		return tea.Batch(cmds...)

	case entryRenamedMsg:
		if msg.taken {
			// The listing was stale; pick up the new entry and ask again.
			msg.retry()
			return tea.Batch(d.Notify(fmt.Sprintf("%q already exists", msg.to), overlay.LevelError, 0), d.listRoot())
		}
		if !msg.res.OK {
			return d.storeError("rename", msg.from, msg.res.Err)
		}
		d.icons.Rename(msg.from, msg.to)
		d.actions.Log(actionlog.ActionRename, map[string]any{"from": msg.from, "to": msg.to})
		return tea.Batch(d.saveIcons(), d.storeChanged("", ""))

	case entriesMovedMsg:
		for _, name := range msg.moved {
			d.icons.Remove(icons.EntryID(name))
			d.actions.Log(actionlog.ActionMove, map[string]any{"path": name, "folder": msg.folder})
		}
		cmds := []tea.Cmd{d.saveIcons(), d.storeChanged("", ""), d.storeChanged(msg.folder, "")}
		if len(msg.failed) > 0 {
			cmds = append(cmds, d.storeError("move", msg.folder, strings.Join(msg.failed, "; ")))
		}
		return tea.Batch(cmds...)
	}
	return nil
}
