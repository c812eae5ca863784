package apps

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-enry/go-enry/v2"
	"github.com/mattn/go-runewidth"

	"github.com/1broseidon/termdesk/internal/geometry"
	"github.com/1broseidon/termdesk/internal/overlay"
	"github.com/1broseidon/termdesk/internal/store"
)

const (
	explorerToolbarRow = 0
	explorerCrumbRow   = 1
	explorerFilterRow  = 2
	explorerListTop    = 3

	crumbSeparator = " › "
	errorToast     = 2400 * time.Millisecond
)

var explorerButtons = []string{"Up", "New Folder", "New Note", "Rename", "Delete", "Refresh"}

type explorerListedMsg struct {
	dir string
	res store.Result[[]store.Entry]
}

type explorerDoneMsg struct {
	dir string
	res store.Ack
}

type explorerRenamedMsg struct {
	from, to string
	res      store.Ack
	// taken means the target appeared after the last listing; nothing moved.
	taken bool
	retry func()
}

// explorer browses one folder of the store at a time.
type explorer struct {
	svc      Services
	cwd      string
	entries  []store.Entry
	loading  bool
	err      string
	filter   textinput.Model
	selected map[string]bool
	cursor   int
	anchor   int
	offset   int
	height   int
}

func ExplorerDescriptor() Descriptor {
	return Descriptor{
		Name:        "explorer",
		Title:       "File Explorer",
		Glyph:       "▤",
		DefaultSize: geometry.Size{Width: 900, Height: 560},
		New:         func(svc Services) Instance { return newExplorer(svc) },
	}
}

func newExplorer(svc Services) *explorer {
	fi := textinput.New()
	fi.Prompt = ""
	fi.Placeholder = "press / to filter"
	fi.CharLimit = 128
	return &explorer{
		svc:      svc,
		filter:   fi,
		selected: make(map[string]bool),
		cursor:   -1,
		anchor:   -1,
	}
}

func (e *explorer) Init(string) tea.Cmd { return e.load() }

func (e *explorer) CapturesKeys() bool { return e.filter.Focused() }

func (e *explorer) Resize(width, height int) {
	e.filter.Width = max(1, width-len("Filter: ")-1)
	e.height = height
	e.ensureVisible()
}

func (e *explorer) Title() string {
	if e.cwd == "" {
		return "File Explorer"
	}
	_, name := store.Split(e.cwd)
	return "File Explorer - " + name
}

// Cwd returns the folder being shown.
func (e *explorer) Cwd() string { return e.cwd }

// Visible returns the entries that pass the filter, folders first.
func (e *explorer) Visible() []store.Entry {
	q := strings.ToLower(strings.TrimSpace(e.filter.Value()))
	if q == "" {
		return e.entries
	}
	out := make([]store.Entry, 0, len(e.entries))
	for _, en := range e.entries {
		if strings.Contains(strings.ToLower(en.Name), q) {
			out = append(out, en)
		}
	}
	return out
}

// Selected returns the selected entries in display order.
func (e *explorer) Selected() []store.Entry {
	var out []store.Entry
	for _, en := range e.Visible() {
		if e.selected[en.Name] {
			out = append(out, en)
		}
	}
	return out
}

func (e *explorer) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case OpenPathMsg:
		return e.navigate(msg.Path)

	case StoreChangedMsg:
		if msg.Dir == e.cwd {
			return e.load()
		}
		return nil

	case explorerListedMsg:
		if msg.dir != e.cwd {
			return nil
		}
		e.loading = false
		if !msg.res.OK {
			e.err = msg.res.Err
			e.entries = nil
			return nil
		}
		e.err = ""
		e.entries = msg.res.Value
		store.SortEntries(e.entries)
		e.pruneSelection()
		return nil

	case explorerDoneMsg:
		if !msg.res.OK {
			e.svc.Notify(msg.res.Err, overlay.LevelError, errorToast)
		}
		e.svc.StoreChanged(msg.dir)
		return e.load()

	case explorerRenamedMsg:
		if msg.taken {
			_, name := store.Split(msg.to)
			e.svc.Notify(fmt.Sprintf("%q already exists", name), overlay.LevelError, errorToast)
			msg.retry()
			return e.load()
		}
		if !msg.res.OK {
			e.svc.Notify("Rename failed: "+msg.res.Err, overlay.LevelError, errorToast)
			return nil
		}
		e.svc.RenameEntry(msg.from, msg.to)
		_, name := store.Split(msg.to)
		e.selected = map[string]bool{name: true}
		e.svc.StoreChanged(store.Parent(msg.to))
		return e.load()

	case ClickMsg:
		return e.click(msg)

	case tea.KeyMsg:
		if e.filter.Focused() {
			return e.filterKey(msg)
		}
		return e.key(msg)
	}

	if e.filter.Focused() {
		var cmd tea.Cmd
		e.filter, cmd = e.filter.Update(msg)
		return cmd
	}
	return nil
}

func (e *explorer) filterKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		e.filter.SetValue("")
		e.filter.Blur()
		e.clampCursor()
		return nil
	case "enter", "down":
		e.filter.Blur()
		e.clampCursor()
		return nil
	}
	var cmd tea.Cmd
	e.filter, cmd = e.filter.Update(msg)
	e.clampCursor()
	return cmd
}

func (e *explorer) key(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "/":
		return e.filter.Focus()
	case "up":
		e.move(-1, false)
	case "down":
		e.move(1, false)
	case "shift+up":
		e.move(-1, true)
	case "shift+down":
		e.move(1, true)
	case "home":
		e.move(-len(e.entries), false)
	case "end":
		e.move(len(e.entries), false)
	case "enter":
		if sel := e.Selected(); len(sel) > 0 {
			return e.open(sel[0])
		}
	case "backspace", "alt+up":
		return e.up()
	case "delete":
		return e.deleteSelected()
	case "f2":
		return e.renameSelected()
	case "f5":
		return e.load()
	case "ctrl+a":
		for _, en := range e.Visible() {
			e.selected[en.Name] = true
		}
	}
	return nil
}

func (e *explorer) click(msg ClickMsg) tea.Cmd {
	switch {
	case msg.Row == explorerToolbarRow:
		return e.toolbar(labelAt(explorerButtons, msg.Col))
	case msg.Row == explorerCrumbRow:
		for _, c := range crumbs(e.cwd) {
			if msg.Col >= c.start && msg.Col < c.end {
				return e.navigate(c.path)
			}
		}
		return nil
	case msg.Row == explorerFilterRow:
		return e.filter.Focus()
	}
	e.filter.Blur()
	visible := e.Visible()
	i := e.offset + msg.Row - explorerListTop
	if i < 0 || i >= len(visible) {
		e.selected = make(map[string]bool)
		e.cursor, e.anchor = -1, -1
		return nil
	}
	switch {
	case msg.Double:
		e.selected = map[string]bool{visible[i].Name: true}
		e.cursor, e.anchor = i, i
		return e.open(visible[i])
	case msg.Ctrl:
		name := visible[i].Name
		if e.selected[name] {
			delete(e.selected, name)
		} else {
			e.selected[name] = true
		}
		e.anchor = i
	case msg.Shift && e.anchor >= 0:
		e.selectRange(e.anchor, i)
	default:
		e.selected = map[string]bool{visible[i].Name: true}
		e.anchor = i
	}
	e.cursor = i
	return nil
}

func (e *explorer) toolbar(button string) tea.Cmd {
	switch button {
	case "Up":
		return e.up()
	case "New Folder":
		return e.newFolder()
	case "New Note":
		return e.newNote()
	case "Rename":
		return e.renameSelected()
	case "Delete":
		return e.deleteSelected()
	case "Refresh":
		return e.load()
	}
	return nil
}

// labelAt returns the "[label]" button under col in a toolbar row where
// buttons are separated by one space.
func labelAt(labels []string, col int) string {
	x := 0
	for _, l := range labels {
		w := runewidth.StringWidth(l) + 2
		if col >= x && col < x+w {
			return l
		}
		x += w + 1
	}
	return ""
}

func toolbarLine(labels []string) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = "[" + l + "]"
	}
	return strings.Join(parts, " ")
}

type crumb struct {
	label      string
	path       string
	start, end int
}

func crumbs(cwd string) []crumb {
	out := []crumb{{label: "Home", path: "", start: 0, end: 4}}
	if cwd == "" {
		return out
	}
	x := out[0].end
	acc := ""
	for _, part := range strings.Split(cwd, "/") {
		acc = store.Join(acc, part)
		x += runewidth.StringWidth(crumbSeparator)
		w := runewidth.StringWidth(part)
		out = append(out, crumb{label: part, path: acc, start: x, end: x + w})
		x += w
	}
	return out
}

func (e *explorer) load() tea.Cmd {
	e.loading = true
	dir := e.cwd
	client, ctx := e.svc.Store(), e.svc.Context()
	return func() tea.Msg {
		return explorerListedMsg{dir: dir, res: client.List(ctx, dir)}
	}
}

func (e *explorer) navigate(dir string) tea.Cmd {
	clean, err := store.Clean(dir)
	if err != nil {
		e.svc.Notify(err.Error(), overlay.LevelError, errorToast)
		return nil
	}
	e.cwd = clean
	e.entries = nil
	e.err = ""
	e.selected = make(map[string]bool)
	e.cursor, e.anchor, e.offset = -1, -1, 0
	e.filter.SetValue("")
	e.filter.Blur()
	e.svc.SetTitle(e.Title())
	return e.load()
}

func (e *explorer) up() tea.Cmd {
	if e.cwd == "" {
		return nil
	}
	return e.navigate(store.Parent(e.cwd))
}

func (e *explorer) open(en store.Entry) tea.Cmd {
	p := store.Join(e.cwd, en.Name)
	if en.IsFolder() {
		return e.navigate(p)
	}
	e.svc.OpenFile(p)
	return nil
}

func (e *explorer) newFolder() tea.Cmd {
	p := store.Join(e.cwd, store.UniqueName(store.Names(e.entries), "New Folder", ""))
	return e.mutate(func(ctx context.Context, c *store.Client) store.Ack {
		return c.CreateFolder(ctx, p)
	})
}

func (e *explorer) newNote() tea.Cmd {
	p := store.Join(e.cwd, store.UniqueName(store.Names(e.entries), "untitled", ".txt"))
	return e.mutate(func(ctx context.Context, c *store.Client) store.Ack {
		return c.Write(ctx, p, "")
	})
}

func (e *explorer) mutate(fn func(context.Context, *store.Client) store.Ack) tea.Cmd {
	dir := e.cwd
	client, ctx := e.svc.Store(), e.svc.Context()
	return func() tea.Msg {
		return explorerDoneMsg{dir: dir, res: fn(ctx, client)}
	}
}

func (e *explorer) deleteSelected() tea.Cmd {
	sel := e.Selected()
	if len(sel) == 0 {
		return nil
	}
	dir := e.cwd
	client, ctx := e.svc.Store(), e.svc.Context()
	e.svc.Confirm("Delete", fmt.Sprintf("Delete %d item(s)?", len(sel)), func(ok bool) tea.Cmd {
		if !ok {
			return nil
		}
		return func() tea.Msg {
			var failed []string
			for _, en := range sel {
				if res := client.Delete(ctx, store.Join(dir, en.Name)); !res.OK {
					failed = append(failed, res.Err)
				}
			}
			if len(failed) > 0 {
				return explorerDoneMsg{dir: dir, res: store.Ack{Err: strings.Join(failed, "; ")}}
			}
			return explorerDoneMsg{dir: dir, res: store.Ack{OK: true}}
		}
	})
	return nil
}

func (e *explorer) renameSelected() tea.Cmd {
	sel := e.Selected()
	if len(sel) != 1 {
		return nil
	}
	en := sel[0]
	initial, ext := en.Name, ""
	if !en.IsFolder() {
		initial, ext = store.SplitExt(en.Name)
	}
	e.promptRename(en, initial, ext)
	return nil
}

func (e *explorer) promptRename(en store.Entry, initial, ext string) {
	dir := e.cwd
	e.svc.Prompt("Rename", "Enter new name:", initial, func(value string, ok bool) tea.Cmd {
		value = strings.TrimSpace(value)
		if !ok || value == "" {
			return nil
		}
		name := value
		if ext != "" && !strings.HasSuffix(strings.ToLower(value), strings.ToLower(ext)) {
			name = value + ext
		}
		if name == en.Name {
			return nil
		}
		if err := store.ValidateName(name); err != nil {
			e.svc.Notify(err.Error(), overlay.LevelError, errorToast)
			e.promptRename(en, value, ext)
			return nil
		}
		if store.Names(e.entries)[name] {
			e.svc.Notify(fmt.Sprintf("%q already exists", name), overlay.LevelError, errorToast)
			e.promptRename(en, value, ext)
			return nil
		}
		from, to := store.Join(dir, en.Name), store.Join(dir, name)
		client, ctx := e.svc.Store(), e.svc.Context()
		retry := func() { e.promptRename(en, value, ext) }
		return func() tea.Msg {
			if client.Exists(ctx, dir, name) {
				return explorerRenamedMsg{from: from, to: to, taken: true, retry: retry}
			}
			return explorerRenamedMsg{from: from, to: to, res: client.Move(ctx, from, to)}
		}
	})
}

func (e *explorer) move(delta int, extend bool) {
	visible := e.Visible()
	if len(visible) == 0 {
		return
	}
	c := e.cursor
	if c < 0 {
		c = 0
		if delta > 0 {
			delta--
		}
	}
	c = min(max(c+delta, 0), len(visible)-1)
	if extend {
		if e.anchor < 0 {
			e.anchor = max(e.cursor, 0)
		}
		e.selectRange(e.anchor, c)
	} else {
		e.selected = map[string]bool{visible[c].Name: true}
		e.anchor = c
	}
	e.cursor = c
	e.ensureVisible()
}

func (e *explorer) selectRange(a, b int) {
	visible := e.Visible()
	if a > b {
		a, b = b, a
	}
	e.selected = make(map[string]bool)
	for i := max(a, 0); i <= b && i < len(visible); i++ {
		e.selected[visible[i].Name] = true
	}
}

func (e *explorer) pruneSelection() {
	names := store.Names(e.entries)
	for name := range e.selected {
		if !names[name] {
			delete(e.selected, name)
		}
	}
	e.clampCursor()
}

func (e *explorer) clampCursor() {
	n := len(e.Visible())
	if e.cursor >= n {
		e.cursor = n - 1
	}
	if e.anchor >= n {
		e.anchor = n - 1
	}
	e.ensureVisible()
}

func (e *explorer) ensureVisible() {
	rows := e.height - explorerListTop
	if rows <= 0 {
		e.offset = 0
		return
	}
	if e.cursor >= 0 && e.cursor < e.offset {
		e.offset = e.cursor
	}
	if e.cursor >= e.offset+rows {
		e.offset = e.cursor - rows + 1
	}
	if maxOffset := max(len(e.Visible())-rows, 0); e.offset > maxOffset {
		e.offset = maxOffset
	}
}

// entryLabel hides the .txt extension of notes.
func entryLabel(en store.Entry) string {
	if en.IsFolder() {
		return en.Name
	}
	return strings.TrimSuffix(en.Name, ".txt")
}

func entryType(en store.Entry) string {
	if en.IsFolder() {
		return "Folder"
	}
	if lang, _ := enry.GetLanguageByExtension(en.Name); lang != "" {
		return lang
	}
	return "File"
}

func (e *explorer) View(width, height int) string {
	lines := []string{
		toolbarLine(explorerButtons),
		crumbLine(e.cwd),
		"Filter: " + e.filter.View(),
	}
	visible := e.Visible()
	switch {
	case e.err != "":
		lines = append(lines, "Error: "+e.err)
	case e.loading && len(e.entries) == 0:
		lines = append(lines, "Loading...")
	case len(e.entries) == 0:
		lines = append(lines, "This folder is empty")
	case len(visible) == 0:
		lines = append(lines, "No items match the filter")
	default:
		typeCol := 14
		nameCol := max(width-typeCol-4, 8)
		for i := e.offset; i < len(visible) && len(lines) < height; i++ {
			en := visible[i]
			mark := "  "
			if e.selected[en.Name] {
				mark = "• "
			}
			if i == e.cursor {
				mark = "› "
				if e.selected[en.Name] {
					mark = "» "
				}
			}
			glyph := "▫ "
			if en.IsFolder() {
				glyph = "▸ "
			}
			name := runewidth.FillRight(runewidth.Truncate(entryLabel(en), nameCol, "…"), nameCol)
			lines = append(lines, runewidth.Truncate(mark+glyph+name+entryType(en), width, ""))
		}
	}
	if len(lines) > height && height > 0 {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func crumbLine(cwd string) string {
	var b strings.Builder
	for i, c := range crumbs(cwd) {
		if i > 0 {
			b.WriteString(crumbSeparator)
		}
		b.WriteString(c.label)
	}
	return b.String()
}
