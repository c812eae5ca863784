package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/termdesk/internal/apps"
	"github.com/1broseidon/termdesk/internal/layout"
	"github.com/1broseidon/termdesk/internal/overlay"
)

// palette holds the colours of one theme.
type palette struct {
	windowBg     lipgloss.Color
	windowFg     lipgloss.Color
	frame        lipgloss.Color
	frameActive  lipgloss.Color
	titleFg      lipgloss.Color
	menuBg       lipgloss.Color
	menuFg       lipgloss.Color
	menuHover    lipgloss.Color
	disabled     lipgloss.Color
	taskbarBg    lipgloss.Color
	taskbarFg    lipgloss.Color
	taskActiveBg lipgloss.Color
	selection    lipgloss.Color
	iconFg       lipgloss.Color
}

var (
	lightPalette = palette{
		windowBg:     lipgloss.Color("255"),
		windowFg:     lipgloss.Color("235"),
		frame:        lipgloss.Color("250"),
		frameActive:  lipgloss.Color("62"),
		titleFg:      lipgloss.Color("236"),
		menuBg:       lipgloss.Color("254"),
		menuFg:       lipgloss.Color("235"),
		menuHover:    lipgloss.Color("153"),
		disabled:     lipgloss.Color("246"),
		taskbarBg:    lipgloss.Color("252"),
		taskbarFg:    lipgloss.Color("235"),
		taskActiveBg: lipgloss.Color("153"),
		selection:    lipgloss.Color("33"),
		iconFg:       lipgloss.Color("15"),
	}

	darkPalette = palette{
		windowBg:     lipgloss.Color("236"),
		windowFg:     lipgloss.Color("252"),
		frame:        lipgloss.Color("240"),
		frameActive:  lipgloss.Color("111"),
		titleFg:      lipgloss.Color("255"),
		menuBg:       lipgloss.Color("237"),
		menuFg:       lipgloss.Color("252"),
		menuHover:    lipgloss.Color("24"),
		disabled:     lipgloss.Color("243"),
		taskbarBg:    lipgloss.Color("234"),
		taskbarFg:    lipgloss.Color("252"),
		taskActiveBg: lipgloss.Color("24"),
		selection:    lipgloss.Color("75"),
		iconFg:       lipgloss.Color("255"),
	}
)

// Preset wallpapers are flat colours in the terminal.
var wallpaperColors = map[string]lipgloss.Color{
	"wallpaper-1": lipgloss.Color("#667eea"),
	"wallpaper-2": lipgloss.Color("#2d8f6f"),
	"wallpaper-3": lipgloss.Color("#c0562f"),
	"wallpaper-4": lipgloss.Color("#34495e"),
}

// theme resolves the styles used to draw the desktop.
type theme struct {
	p         palette
	wallpaper lipgloss.Color
}

func themeFor(a apps.Appearance) theme {
	t := theme{p: lightPalette}
	if a.Theme == "dark" {
		t.p = darkPalette
	}
	switch {
	case a.Wallpaper == layout.CustomWallpaper && a.WallpaperColor != "":
		t.wallpaper = lipgloss.Color(a.WallpaperColor)
	default:
		c, ok := wallpaperColors[a.Wallpaper]
		if !ok {
			c = wallpaperColors[layout.DefaultWallpaper]
		}
		t.wallpaper = c
	}
	return t
}

func (t theme) desktop() lipgloss.Style {
	return lipgloss.NewStyle().Background(t.wallpaper).Foreground(t.p.iconFg)
}

func (t theme) iconLabel(selected bool) lipgloss.Style {
	if selected {
		return lipgloss.NewStyle().Background(t.p.selection).Foreground(lipgloss.Color("15"))
	}
	return t.desktop()
}

func (t theme) window() lipgloss.Style {
	return lipgloss.NewStyle().Background(t.p.windowBg).Foreground(t.p.windowFg)
}

func (t theme) frame(active bool) lipgloss.Style {
	c := t.p.frame
	if active {
		c = t.p.frameActive
	}
	return lipgloss.NewStyle().Background(t.p.windowBg).Foreground(c)
}

func (t theme) title(active bool) lipgloss.Style {
	s := lipgloss.NewStyle().Background(t.p.windowBg).Foreground(t.p.titleFg)
	if active {
		s = s.Bold(true)
	}
	return s
}

func (t theme) menu(hovered, enabled bool) lipgloss.Style {
	s := lipgloss.NewStyle().Background(t.p.menuBg).Foreground(t.p.menuFg)
	if !enabled {
		s = s.Foreground(t.p.disabled)
	}
	if hovered {
		s = s.Background(t.p.menuHover)
	}
	return s
}

func (t theme) menuFrame() lipgloss.Style {
	return lipgloss.NewStyle().Background(t.p.menuBg).Foreground(t.p.frame)
}

func (t theme) selectionBox() lipgloss.Style {
	return lipgloss.NewStyle().Background(t.wallpaper).Foreground(t.p.selection)
}

func (t theme) taskbar() lipgloss.Style {
	return lipgloss.NewStyle().Background(t.p.taskbarBg).Foreground(t.p.taskbarFg)
}

func (t theme) taskEntry(active, minimized bool) lipgloss.Style {
	s := t.taskbar()
	if active {
		s = s.Background(t.p.taskActiveBg).Bold(true)
	}
	if minimized {
		s = s.Foreground(t.p.disabled)
	}
	return s
}

func (t theme) button(primary bool) lipgloss.Style {
	if primary {
		return lipgloss.NewStyle().Background(t.p.frameActive).Foreground(lipgloss.Color("15")).Bold(true)
	}
	return lipgloss.NewStyle().Background(t.p.frame).Foreground(t.p.windowFg)
}

func (t theme) input() lipgloss.Style {
	return lipgloss.NewStyle().Background(t.p.menuBg).Foreground(t.p.menuFg).Underline(true)
}

func (t theme) toast(level overlay.Level) lipgloss.Style {
	s := lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	switch level {
	case overlay.LevelError:
		return s.Background(lipgloss.Color("160"))
	case overlay.LevelSuccess:
		return s.Background(lipgloss.Color("28"))
	default:
		return s.Background(lipgloss.Color("62"))
	}
}
