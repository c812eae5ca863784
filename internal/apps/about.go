package apps

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/termdesk/internal/geometry"
)

// Version is the desktop version shown in About.
const Version = "1.0.0"

var shortcuts = [][2]string{
	{"Double-click", "open an icon or file"},
	{"Right-click", "desktop context menu"},
	{"Ctrl+A", "select all icons"},
	{"Delete", "delete selected items"},
	{"F2", "rename the selected item"},
	{"Enter", "open the selection"},
	{"F5", "refresh the desktop"},
	{"Esc", "clear selection, close menus"},
	{"Ctrl+S", "save in Notes"},
	{"Ctrl+Q", "quit"},
}

type about struct{}

func AboutDescriptor() Descriptor {
	return Descriptor{
		Name:        "about",
		Title:       "About",
		Glyph:       "ⓘ",
		DefaultSize: geometry.Size{Width: 500, Height: 400},
		New:         func(Services) Instance { return about{} },
	}
}

func (about) Init(string) tea.Cmd   { return nil }
func (about) Update(tea.Msg) tea.Cmd { return nil }
func (about) Resize(int, int)        {}
func (about) CapturesKeys() bool     { return false }

func (about) View(width, height int) string {
	title := lipgloss.NewStyle().Bold(true).Render("termdesk " + Version)
	key := lipgloss.NewStyle().Width(14).Bold(true)
	lines := []string{
		title,
		"A desktop in your terminal.",
		"",
		"Keyboard shortcuts:",
	}
	for _, s := range shortcuts {
		lines = append(lines, "  "+key.Render(s[0])+s[1])
	}
	return strings.Join(lines, "\n")
}
