package apps

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-enry/go-enry/v2"

	"github.com/1broseidon/termdesk/internal/geometry"
	"github.com/1broseidon/termdesk/internal/overlay"
	"github.com/1broseidon/termdesk/internal/store"
)

const defaultNoteName = "untitled.txt"

type noteLoadedMsg struct {
	path string
	res  store.Result[string]
}

type noteSavedMsg struct {
	path    string
	content string
	res     store.Ack
}

// notes is a plain text editor over the store.
type notes struct {
	svc    Services
	editor textarea.Model
	path   string
	saved  string
}

func NotesDescriptor() Descriptor {
	return Descriptor{
		Name:        "notes",
		Title:       "Notes",
		Glyph:       "✎",
		DefaultSize: geometry.Size{Width: 600, Height: 400},
		New:         func(svc Services) Instance { return newNotes(svc) },
	}
}

func newNotes(svc Services) *notes {
	ed := textarea.New()
	ed.Placeholder = "Start typing..."
	ed.CharLimit = 0
	ed.ShowLineNumbers = false
	ed.Prompt = ""
	return &notes{svc: svc, editor: ed}
}

func (n *notes) Init(string) tea.Cmd {
	n.editor.Focus()
	return textarea.Blink
}

func (n *notes) CapturesKeys() bool { return n.editor.Focused() }

func (n *notes) Resize(width, height int) {
	n.editor.SetWidth(max(1, width))
	n.editor.SetHeight(max(1, height-2))
}

func (n *notes) dirty() bool { return n.editor.Value() != n.saved }

func (n *notes) Title() string {
	name := "Untitled"
	if n.path != "" {
		_, name = store.Split(n.path)
	}
	if n.dirty() {
		name += "*"
	}
	return "Notes - " + name
}

func (n *notes) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case OpenPathMsg:
		return n.load(msg.Path)

	case noteLoadedMsg:
		if !msg.res.OK {
			n.svc.Notify("Failed to open file: "+msg.res.Err, overlay.LevelError, 2400*time.Millisecond)
			return nil
		}
		n.path = msg.path
		n.saved = msg.res.Value
		n.editor.SetValue(msg.res.Value)
		n.editor.Focus()
		n.svc.SetTitle(n.Title())
		return nil

	case noteSavedMsg:
		if !msg.res.OK {
			n.svc.Notify("Failed to save file: "+msg.res.Err, overlay.LevelError, 2400*time.Millisecond)
			return nil
		}
		n.path = msg.path
		n.saved = msg.content
		n.svc.Notify("File saved successfully!", overlay.LevelSuccess, 1800*time.Millisecond)
		n.svc.StoreChanged(store.Parent(msg.path))
		n.svc.SetTitle(n.Title())
		return nil

	case ClickMsg:
		if msg.Row == 0 {
			switch {
			case msg.Col < 5:
				return n.newFile()
			case msg.Col >= 6 && msg.Col < 12:
				return n.save()
			case msg.Col >= 13 && msg.Col < 22:
				return n.saveAs()
			}
			return nil
		}
		n.editor.Focus()
		return nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+n":
			return n.newFile()
		case "ctrl+s":
			return n.save()
		case "alt+s", "f12":
			return n.saveAs()
		case "esc":
			n.editor.Blur()
			return nil
		}
		if !n.editor.Focused() {
			n.editor.Focus()
		}
	}

	before := n.dirty()
	var cmd tea.Cmd
	n.editor, cmd = n.editor.Update(msg)
	if n.dirty() != before {
		n.svc.SetTitle(n.Title())
	}
	return cmd
}

func (n *notes) load(path string) tea.Cmd {
	client, ctx := n.svc.Store(), n.svc.Context()
	return func() tea.Msg {
		return noteLoadedMsg{path: path, res: client.Read(ctx, path)}
	}
}

func (n *notes) newFile() tea.Cmd {
	n.path = ""
	n.saved = ""
	n.editor.SetValue("")
	n.editor.Focus()
	n.svc.SetTitle(n.Title())
	return nil
}

func (n *notes) save() tea.Cmd {
	if n.path == "" {
		return n.saveAs()
	}
	return n.write(n.path)
}

func (n *notes) saveAs() tea.Cmd {
	initial := defaultNoteName
	if n.path != "" {
		_, initial = store.Split(n.path)
	}
	current := n.path
	n.svc.Prompt("Save As", "Enter file name (optionally include a path):", initial, func(value string, ok bool) tea.Cmd {
		value = strings.TrimSpace(value)
		if !ok || value == "" {
			return nil
		}
		target := value
		if !strings.Contains(value, "/") {
			target = store.Join(store.Parent(current), value)
		}
		return n.write(target)
	})
	return nil
}

func (n *notes) write(path string) tea.Cmd {
	client, ctx := n.svc.Store(), n.svc.Context()
	content := n.editor.Value()
	return func() tea.Msg {
		return noteSavedMsg{path: path, content: content, res: client.Write(ctx, path, content)}
	}
}

// languageOf names the language of a file for the status line.
func languageOf(path string) string {
	if lang, _ := enry.GetLanguageByExtension(path); lang != "" {
		return lang
	}
	return "Plain Text"
}

func (n *notes) View(width, height int) string {
	toolbar := "[New] [Save] [Save As]"
	if n.path != "" {
		toolbar += "  Editing: " + n.path
	}
	marker := ""
	if n.dirty() {
		marker = " (modified)"
	}
	lines := strings.Count(n.editor.Value(), "\n") + 1
	status := fmt.Sprintf("%s%s  %d lines", languageOf(n.path), marker, lines)
	return toolbar + "\n" + n.editor.View() + "\n" + status
}
