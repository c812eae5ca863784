package apps

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/termdesk/internal/geometry"
	"github.com/1broseidon/termdesk/internal/overlay"
	"github.com/1broseidon/termdesk/internal/store"
)

// ErrUnknownApp is returned when starting an app that is not registered.
var ErrUnknownApp = errors.New("unknown app")

// Descriptor describes a launchable application.
type Descriptor struct {
	Name        string
	Title       string
	Glyph       string
	DefaultSize geometry.Size
	New         func(svc Services) Instance
}

// Instance is a running application bound to one window.
type Instance interface {
	Init(windowID string) tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	// View renders the content area. It must not change the instance.
	View(width, height int) string
	// Resize is called before View whenever the content area changes.
	Resize(width, height int)
	// CapturesKeys reports whether a focused text field should receive
	// keys that would otherwise trigger desktop shortcuts.
	CapturesKeys() bool
}

// Titled is implemented by apps whose window title depends on state.
type Titled interface {
	Title() string
}

// Appearance is the user-editable look of the desktop.
type Appearance struct {
	Theme          string
	Wallpaper      string
	WallpaperColor string
	SnapToGrid     bool
	OverlapPolicy  string
}

// Services is what the desktop offers a running application. Every call
// happens on the event loop; commands returned by callbacks are routed
// back to the calling window.
type Services interface {
	Context() context.Context
	Store() *store.Client
	Notify(message string, level overlay.Level, d time.Duration)
	Confirm(title, message string, fn func(ok bool) tea.Cmd)
	Prompt(title, message, initial string, fn func(value string, ok bool) tea.Cmd)
	// OpenFile shows a file in the notes editor.
	OpenFile(path string)
	// StoreChanged tells the desktop that entries under dir changed.
	StoreChanged(dir string)
	// RenameEntry keeps desktop icon state when a root entry is renamed.
	RenameEntry(oldPath, newPath string)
	Appearance() Appearance
	SetAppearance(a Appearance)
	SetTitle(title string)
}

// ClickMsg is a press inside a window's content area, in cells relative to
// the content origin.
type ClickMsg struct {
	Col, Row int
	Double   bool
	Ctrl     bool
	Shift    bool
}

// OpenPathMsg asks an app to show a path: the editor loads a file, the
// explorer navigates to a folder.
type OpenPathMsg struct{ Path string }

// StoreChangedMsg is broadcast when the store changed under Dir.
type StoreChangedMsg struct{ Dir string }

// AppearanceMsg is broadcast when the desktop appearance changed.
type AppearanceMsg struct{ Appearance Appearance }

// ScopedMsg carries a message produced by one window's app back to it.
type ScopedMsg struct {
	WindowID string
	Msg      tea.Msg
}

// Scoped wraps cmd so that whatever it produces is delivered only to the
// app in windowID.
func Scoped(windowID string, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		msg := cmd()
		switch m := msg.(type) {
		case nil:
			return nil
		case tea.BatchMsg:
			cmds := make([]tea.Cmd, 0, len(m))
			for _, c := range m {
				if c != nil {
					cmds = append(cmds, Scoped(windowID, c))
				}
			}
			return tea.BatchMsg(cmds)
		}
		return ScopedMsg{WindowID: windowID, Msg: msg}
	}
}
