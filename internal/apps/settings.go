package apps

import (
	"fmt"
	"regexp"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/termdesk/internal/geometry"
)

// WallpaperPresets maps preset ids to their display names.
var WallpaperPresets = []struct{ ID, Name string }{
	{"wallpaper-1", "Purple"},
	{"wallpaper-2", "Pink"},
	{"wallpaper-3", "Blue"},
	{"wallpaper-4", "Green"},
}

const customWallpaper = "custom"

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ValidateColor accepts #rrggbb colours.
func ValidateColor(s string) error {
	if !hexColor.MatchString(strings.TrimSpace(s)) {
		return fmt.Errorf("colour must look like #667eea")
	}
	return nil
}

// settings shows the desktop appearance and edits it with a form.
type settings struct {
	svc     Services
	width   int
	height  int
	editing bool
	form    *huh.Form

	fTheme     string
	fWallpaper string
	fColor     string
	fSnap      bool
	fPolicy    string
}

func SettingsDescriptor() Descriptor {
	return Descriptor{
		Name:        "settings",
		Title:       "Settings",
		Glyph:       "⚙",
		DefaultSize: geometry.Size{Width: 600, Height: 400},
		New:         func(svc Services) Instance { return &settings{svc: svc} },
	}
}

func (s *settings) Init(string) tea.Cmd { return nil }

func (s *settings) CapturesKeys() bool { return s.editing }

func (s *settings) Resize(width, height int) {
	s.width, s.height = width, height
	if s.form != nil {
		s.form = s.form.WithWidth(max(width-4, 20))
	}
}

func (s *settings) Editing() bool { return s.editing }

func (s *settings) Update(msg tea.Msg) tea.Cmd {
	if s.editing {
		return s.updateEditing(msg)
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "e" || msg.String() == "enter" {
			s.startEditing()
			return s.form.Init()
		}
	case ClickMsg:
		if msg.Row == s.editRow() {
			s.startEditing()
			return s.form.Init()
		}
	}
	return nil
}

func (s *settings) updateEditing(msg tea.Msg) tea.Cmd {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		s.editing = false
		s.form = nil
		return nil
	}
	if _, ok := msg.(ClickMsg); ok {
		return nil
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	switch s.form.State {
	case huh.StateCompleted:
		s.applyForm()
		s.editing = false
		s.form = nil
		return nil
	case huh.StateAborted:
		s.editing = false
		s.form = nil
		return nil
	}
	return cmd
}

func (s *settings) startEditing() {
	a := s.svc.Appearance()
	s.fTheme = a.Theme
	s.fWallpaper = a.Wallpaper
	s.fColor = a.WallpaperColor
	s.fSnap = a.SnapToGrid
	s.fPolicy = a.OverlapPolicy

	wallpapers := make([]huh.Option[string], 0, len(WallpaperPresets)+1)
	for _, p := range WallpaperPresets {
		wallpapers = append(wallpapers, huh.NewOption(p.Name, p.ID))
	}
	wallpapers = append(wallpapers, huh.NewOption("Custom colour", customWallpaper))

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("theme").
				Title("Theme").
				Options(huh.NewOption("Light", "light"), huh.NewOption("Dark", "dark")).
				Value(&s.fTheme),

			huh.NewSelect[string]().
				Key("wallpaper").
				Title("Wallpaper").
				Options(wallpapers...).
				Value(&s.fWallpaper),

			huh.NewInput().
				Key("wallpaper_color").
				Title("Custom Colour").
				Description("Used when the wallpaper is set to Custom colour").
				Validate(ValidateColor).
				Value(&s.fColor),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Key("snap_to_grid").
				Title("Snap Icons To Grid").
				Value(&s.fSnap),

			huh.NewSelect[string]().
				Key("overlap_policy").
				Title("When Icons Overlap").
				Options(
					huh.NewOption("Move to a free cell", "auto-arrange"),
					huh.NewOption("Return to the old place", "revert"),
				).
				Value(&s.fPolicy),
		),
	).WithWidth(max(s.width-4, 20)).WithShowHelp(true).WithShowErrors(true)

	s.editing = true
}

func (s *settings) applyForm() {
	a := s.svc.Appearance()
	if s.fTheme != "" {
		a.Theme = s.fTheme
	}
	if s.fWallpaper != "" {
		a.Wallpaper = s.fWallpaper
	}
	if ValidateColor(s.fColor) == nil {
		a.WallpaperColor = strings.TrimSpace(s.fColor)
	}
	a.SnapToGrid = s.fSnap
	if s.fPolicy != "" {
		a.OverlapPolicy = s.fPolicy
	}
	s.svc.SetAppearance(a)
}

func wallpaperName(id, color string) string {
	if id == customWallpaper {
		return "Custom " + color
	}
	for _, p := range WallpaperPresets {
		if p.ID == id {
			return p.Name
		}
	}
	return id
}

// editRow is the row of the "edit" hint in the display view.
func (s *settings) editRow() int { return 7 }

func (s *settings) View(width, height int) string {
	if s.editing && s.form != nil {
		header := lipgloss.NewStyle().Bold(true).Render("Editing Settings") +
			lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("  (esc to cancel)")
		return header + "\n\n" + s.form.View()
	}

	a := s.svc.Appearance()
	label := lipgloss.NewStyle().Width(18).Align(lipgloss.Right).PaddingRight(2)
	value := lipgloss.NewStyle().Bold(true)
	row := func(l, v string) string { return label.Render(l) + value.Render(v) }
	snap := "off"
	if a.SnapToGrid {
		snap = "on"
	}

	lines := []string{
		"",
		row("Theme", a.Theme),
		row("Wallpaper", wallpaperName(a.Wallpaper, a.WallpaperColor)),
		row("Custom Colour", a.WallpaperColor),
		row("Snap To Grid", snap),
		row("Icon Overlap", a.OverlapPolicy),
		"",
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("  [Edit] or press 'e' to change settings"),
	}
	return strings.Join(lines, "\n")
}
